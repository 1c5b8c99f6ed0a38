package domain

import (
	"errors"
	"fmt"
	"strconv"
)

// Field path errors
var (
	ErrUnknownField    = errors.New("unknown field")
	ErrUnknownSection  = errors.New("unknown section")
	ErrInvalidValue    = errors.New("invalid field value")
	ErrIndexOutOfRange = errors.New("entry index out of range")
	ErrLastEntry       = errors.New("cannot remove the last remaining entry")
	ErrPinnedEntry     = errors.New("the first entry cannot be removed")
	ErrMalformedPath   = errors.New("malformed field path")
)

// Entry is one item of a repeated section, addressable by field name
type Entry interface {
	EntryID() string
	Fields() []string
	Get(field string) (any, bool)
	Set(field string, value any) error
}

func asString(field string, v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidValue, field, v)
	}
}

func asBool(field string, v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		b, err := strconv.ParseBool(t)
		if err != nil {
			return false, fmt.Errorf("%w: %s expects a boolean", ErrInvalidValue, field)
		}
		return b, nil
	default:
		return false, fmt.Errorf("%w: %s expects a boolean, got %T", ErrInvalidValue, field, v)
	}
}

func unknownField(section SectionKind, field string) error {
	return fmt.Errorf("%w: %s.%s", ErrUnknownField, section, field)
}

// Education is one entry of the educations section
type Education struct {
	ID             string     `json:"id"`
	UniversityName string     `json:"universityName"`
	DegreeType     DegreeType `json:"degreeType"`
	CourseName     string     `json:"courseName"`
}

func (e *Education) EntryID() string { return e.ID }

func (e *Education) Fields() []string {
	return []string{"universityName", "degreeType", "courseName"}
}

func (e *Education) Get(field string) (any, bool) {
	switch field {
	case "id":
		return e.ID, true
	case "universityName":
		return e.UniversityName, true
	case "degreeType":
		return string(e.DegreeType), true
	case "courseName":
		return e.CourseName, true
	}
	return nil, false
}

func (e *Education) Set(field string, value any) error {
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	switch field {
	case "universityName":
		e.UniversityName = s
	case "degreeType":
		e.DegreeType = DegreeType(s)
	case "courseName":
		e.CourseName = s
	default:
		return unknownField(SectionEducations, field)
	}
	return nil
}

// JobExperience is one entry of the jobExperiences section
type JobExperience struct {
	ID           string `json:"id"`
	JobTitle     string `json:"jobTitle"`
	CompanyName  string `json:"companyName"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	IsPresentJob bool   `json:"isPresentJob"`
	Description  string `json:"description"`
}

func (e *JobExperience) EntryID() string { return e.ID }

func (e *JobExperience) Fields() []string {
	return []string{"jobTitle", "companyName", "startDate", "endDate", "isPresentJob", "description"}
}

func (e *JobExperience) Get(field string) (any, bool) {
	switch field {
	case "id":
		return e.ID, true
	case "jobTitle":
		return e.JobTitle, true
	case "companyName":
		return e.CompanyName, true
	case "startDate":
		return e.StartDate, true
	case "endDate":
		return e.EndDate, true
	case "isPresentJob":
		return e.IsPresentJob, true
	case "description":
		return e.Description, true
	}
	return nil, false
}

func (e *JobExperience) Set(field string, value any) error {
	if field == "isPresentJob" {
		b, err := asBool(field, value)
		if err != nil {
			return err
		}
		e.IsPresentJob = b
		if b {
			e.EndDate = ""
		}
		return nil
	}
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	switch field {
	case "jobTitle":
		e.JobTitle = s
	case "companyName":
		e.CompanyName = s
	case "startDate":
		e.StartDate = s
	case "endDate":
		if e.IsPresentJob {
			// the date input is disabled while the job is current
			s = ""
		}
		e.EndDate = s
	case "description":
		e.Description = s
	default:
		return unknownField(SectionJobExperiences, field)
	}
	return nil
}

// Skill is one entry of the skills section
type Skill struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Level    SkillLevel `json:"level"`
	Category string     `json:"category"`
}

// DefaultSkillCategory is assigned to freshly appended skills
const DefaultSkillCategory = "Technical"

func (e *Skill) EntryID() string { return e.ID }

func (e *Skill) Fields() []string { return []string{"name", "level", "category"} }

func (e *Skill) Get(field string) (any, bool) {
	switch field {
	case "id":
		return e.ID, true
	case "name":
		return e.Name, true
	case "level":
		return string(e.Level), true
	case "category":
		return e.Category, true
	}
	return nil, false
}

func (e *Skill) Set(field string, value any) error {
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	switch field {
	case "name":
		e.Name = s
	case "level":
		e.Level = SkillLevel(s)
	case "category":
		e.Category = s
	default:
		return unknownField(SectionSkills, field)
	}
	return nil
}

// Certification is one entry of the certifications section
type Certification struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Issuer       string `json:"issuer"`
	DateObtained string `json:"dateObtained"`
	ExpiryDate   string `json:"expiryDate"`
	HasExpiry    bool   `json:"hasExpiry"`
}

func (e *Certification) EntryID() string { return e.ID }

func (e *Certification) Fields() []string {
	return []string{"name", "issuer", "dateObtained", "expiryDate", "hasExpiry"}
}

func (e *Certification) Get(field string) (any, bool) {
	switch field {
	case "id":
		return e.ID, true
	case "name":
		return e.Name, true
	case "issuer":
		return e.Issuer, true
	case "dateObtained":
		return e.DateObtained, true
	case "expiryDate":
		return e.ExpiryDate, true
	case "hasExpiry":
		return e.HasExpiry, true
	}
	return nil, false
}

func (e *Certification) Set(field string, value any) error {
	if field == "hasExpiry" {
		b, err := asBool(field, value)
		if err != nil {
			return err
		}
		e.HasExpiry = b
		if !b {
			e.ExpiryDate = ""
		}
		return nil
	}
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	switch field {
	case "name":
		e.Name = s
	case "issuer":
		e.Issuer = s
	case "dateObtained":
		e.DateObtained = s
	case "expiryDate":
		if !e.HasExpiry {
			s = ""
		}
		e.ExpiryDate = s
	default:
		return unknownField(SectionCertifications, field)
	}
	return nil
}

// Language is one entry of the languages section
type Language struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Proficiency ProficiencyLevel `json:"proficiency"`
}

func (e *Language) EntryID() string { return e.ID }

func (e *Language) Fields() []string { return []string{"name", "proficiency"} }

func (e *Language) Get(field string) (any, bool) {
	switch field {
	case "id":
		return e.ID, true
	case "name":
		return e.Name, true
	case "proficiency":
		return string(e.Proficiency), true
	}
	return nil, false
}

func (e *Language) Set(field string, value any) error {
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	switch field {
	case "name":
		e.Name = s
	case "proficiency":
		e.Proficiency = ProficiencyLevel(s)
	default:
		return unknownField(SectionLanguages, field)
	}
	return nil
}

// Project is one entry of the projects section
type Project struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	Technologies string `json:"technologies"`
	Link         string `json:"link"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	IsOngoing    bool   `json:"isOngoing"`
}

func (e *Project) EntryID() string { return e.ID }

func (e *Project) Fields() []string {
	return []string{"title", "description", "technologies", "link", "startDate", "endDate", "isOngoing"}
}

func (e *Project) Get(field string) (any, bool) {
	switch field {
	case "id":
		return e.ID, true
	case "title":
		return e.Title, true
	case "description":
		return e.Description, true
	case "technologies":
		return e.Technologies, true
	case "link":
		return e.Link, true
	case "startDate":
		return e.StartDate, true
	case "endDate":
		return e.EndDate, true
	case "isOngoing":
		return e.IsOngoing, true
	}
	return nil, false
}

func (e *Project) Set(field string, value any) error {
	if field == "isOngoing" {
		b, err := asBool(field, value)
		if err != nil {
			return err
		}
		e.IsOngoing = b
		if b {
			e.EndDate = ""
		}
		return nil
	}
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	switch field {
	case "title":
		e.Title = s
	case "description":
		e.Description = s
	case "technologies":
		e.Technologies = s
	case "link":
		e.Link = s
	case "startDate":
		e.StartDate = s
	case "endDate":
		if e.IsOngoing {
			s = ""
		}
		e.EndDate = s
	default:
		return unknownField(SectionProjects, field)
	}
	return nil
}

// Reference is one entry of the references section
type Reference struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Position string `json:"position"`
	Company  string `json:"company"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
}

func (e *Reference) EntryID() string { return e.ID }

func (e *Reference) Fields() []string {
	return []string{"name", "position", "company", "email", "phone"}
}

func (e *Reference) Get(field string) (any, bool) {
	switch field {
	case "id":
		return e.ID, true
	case "name":
		return e.Name, true
	case "position":
		return e.Position, true
	case "company":
		return e.Company, true
	case "email":
		return e.Email, true
	case "phone":
		return e.Phone, true
	}
	return nil, false
}

func (e *Reference) Set(field string, value any) error {
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	switch field {
	case "name":
		e.Name = s
	case "position":
		e.Position = s
	case "company":
		e.Company = s
	case "email":
		e.Email = s
	case "phone":
		e.Phone = s
	default:
		return unknownField(SectionReferences, field)
	}
	return nil
}
