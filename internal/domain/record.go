package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is the complete applicant profile edited by the wizard.
// JSON tags use the in-memory camelCase naming; the backend wire format is
// produced by the key-case transformer.
type Record struct {
	FirstName     string        `json:"firstName"`
	LastName      string        `json:"lastName"`
	Email         string        `json:"email"`
	MobileNumber  string        `json:"mobileNumber"`
	DateOfBirth   string        `json:"dateOfBirth"`
	StreetAddress string        `json:"streetAddress"`
	City          string        `json:"city"`
	State         string        `json:"state"`
	PostalCode    string        `json:"postalCode"`
	Country       string        `json:"country"`
	Title         Title         `json:"title"`
	MaritalStatus MaritalStatus `json:"maritalStatus"`
	Developer     string        `json:"developer"`
	Job           string        `json:"job"`

	Educations     []Education     `json:"educations"`
	JobExperiences []JobExperience `json:"jobExperiences"`
	Skills         []Skill         `json:"skills"`
	Certifications []Certification `json:"certifications"`
	Languages      []Language      `json:"languages"`
	Projects       []Project       `json:"projects"`
	References     []Reference     `json:"references"`

	PortfolioWebsite string `json:"portfolioWebsite"`
	GithubURL        string `json:"githubUrl"`
	LinkedinURL      string `json:"linkedinUrl"`

	PreferredWorkType WorkType `json:"preferredWorkType"`
	ExpectedSalary    string   `json:"expectedSalary"`
	PreferredLocation string   `json:"preferredLocation"`
	AvailabilityDate  string   `json:"availabilityDate"`
	CareerGoals       string   `json:"careerGoals"`

	ProfessionalSummary string `json:"professionalSummary"`
	Hobbies             string `json:"hobbies"`
	VolunteerWork       string `json:"volunteerWork"`
	AdditionalNotes     string `json:"additionalNotes"`
}

// StoredRecord is a Record as held by the backend
type StoredRecord struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Record
}

// NewEntryID generates a local list-reconciliation identifier
func NewEntryID() string {
	return uuid.New().String()
}

// NewRecord returns the create-mode default: empty scalars and one blank
// entry per repeated section.
func NewRecord() *Record {
	r := &Record{}
	for _, kind := range SectionKinds {
		r.Section(kind).Append(NewEntryID())
	}
	return r
}

// EnsureSections seeds any empty section with one blank entry. Records
// hydrated from the backend may arrive with empty arrays.
func (r *Record) EnsureSections() {
	for _, kind := range SectionKinds {
		s := r.Section(kind)
		if s.Len() == 0 {
			s.Append(NewEntryID())
		}
	}
}

// AssignEntryIDs gives every entry without an identifier a fresh one
func (r *Record) AssignEntryIDs() {
	for i := range r.Educations {
		if r.Educations[i].ID == "" {
			r.Educations[i].ID = NewEntryID()
		}
	}
	for i := range r.JobExperiences {
		if r.JobExperiences[i].ID == "" {
			r.JobExperiences[i].ID = NewEntryID()
		}
	}
	for i := range r.Skills {
		if r.Skills[i].ID == "" {
			r.Skills[i].ID = NewEntryID()
		}
	}
	for i := range r.Certifications {
		if r.Certifications[i].ID == "" {
			r.Certifications[i].ID = NewEntryID()
		}
	}
	for i := range r.Languages {
		if r.Languages[i].ID == "" {
			r.Languages[i].ID = NewEntryID()
		}
	}
	for i := range r.Projects {
		if r.Projects[i].ID == "" {
			r.Projects[i].ID = NewEntryID()
		}
	}
	for i := range r.References {
		if r.References[i].ID == "" {
			r.References[i].ID = NewEntryID()
		}
	}
}

// Clone returns a deep copy of the record
func (r *Record) Clone() *Record {
	c := *r
	c.Educations = append([]Education(nil), r.Educations...)
	c.JobExperiences = append([]JobExperience(nil), r.JobExperiences...)
	c.Skills = append([]Skill(nil), r.Skills...)
	c.Certifications = append([]Certification(nil), r.Certifications...)
	c.Languages = append([]Language(nil), r.Languages...)
	c.Projects = append([]Project(nil), r.Projects...)
	c.References = append([]Reference(nil), r.References...)
	return &c
}

// SetDeveloper applies the developer flag; "yes" clears the job title.
func (r *Record) SetDeveloper(value string) {
	r.Developer = value
	if value == DeveloperYes {
		r.Job = ""
	}
}

// Normalize re-applies the flag/date exclusivity invariants across the
// whole record. Stored records may violate them.
func (r *Record) Normalize() {
	if r.Developer == DeveloperYes {
		r.Job = ""
	}
	for i := range r.JobExperiences {
		if r.JobExperiences[i].IsPresentJob {
			r.JobExperiences[i].EndDate = ""
		}
	}
	for i := range r.Certifications {
		if !r.Certifications[i].HasExpiry {
			r.Certifications[i].ExpiryDate = ""
		}
	}
	for i := range r.Projects {
		if r.Projects[i].IsOngoing {
			r.Projects[i].EndDate = ""
		}
	}
}

// FullName joins first and last name
func (r *Record) FullName() string {
	switch {
	case r.FirstName == "":
		return r.LastName
	case r.LastName == "":
		return r.FirstName
	}
	return fmt.Sprintf("%s %s", r.FirstName, r.LastName)
}
