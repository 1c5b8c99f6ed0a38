package wizard

import (
	"github.com/yigit/applicant-wizard/internal/domain"
)

// Step is one page of the wizard and the fields it owns
type Step struct {
	Index    int
	Name     string
	Fields   []string
	Sections []domain.SectionKind
}

// Steps is the fixed, ordered step table
var Steps = []Step{
	{
		Index: 0,
		Name:  "Personal Information",
		Fields: []string{
			"title", "maritalStatus", "firstName", "lastName", "email", "dateOfBirth", "mobileNumber",
			"streetAddress", "city", "state", "postalCode", "country", "developer", "job",
		},
	},
	{
		Index:    1,
		Name:     "Education & Experience",
		Sections: []domain.SectionKind{domain.SectionEducations, domain.SectionJobExperiences},
	},
	{
		Index:    2,
		Name:     "Skills & Certifications",
		Sections: []domain.SectionKind{domain.SectionSkills, domain.SectionCertifications, domain.SectionLanguages},
	},
	{
		Index: 3,
		Name:  "Portfolio & Projects",
		Fields: []string{
			"portfolioWebsite", "githubUrl", "linkedinUrl",
			"preferredWorkType", "expectedSalary", "preferredLocation", "availabilityDate", "careerGoals",
			"professionalSummary", "hobbies", "volunteerWork", "additionalNotes",
		},
		Sections: []domain.SectionKind{domain.SectionProjects, domain.SectionReferences},
	},
}

// FirstStep and LastStep bound the step index
const (
	FirstStep = 0
	LastStep  = 3
)

// StepOf locates the step that owns the path's field or section
func StepOf(p domain.FieldPath) (int, bool) {
	for _, s := range Steps {
		if s.owns(p) {
			return s.Index, true
		}
	}
	return 0, false
}

func (s Step) owns(p domain.FieldPath) bool {
	if p.IsScalar() {
		for _, f := range s.Fields {
			if f == p.Field {
				return true
			}
		}
		return false
	}
	for _, k := range s.Sections {
		if k == p.Section {
			return true
		}
	}
	return false
}

// Paths expands the step into the concrete field paths present in r
func (s Step) Paths(r *domain.Record) []domain.FieldPath {
	var out []domain.FieldPath
	for _, f := range s.Fields {
		out = append(out, domain.ScalarPath(f))
	}
	for _, k := range s.Sections {
		out = append(out, sectionPaths(r, k)...)
	}
	return out
}

// RecordPaths expands every step in order
func RecordPaths(r *domain.Record) []domain.FieldPath {
	var out []domain.FieldPath
	for _, s := range Steps {
		out = append(out, s.Paths(r)...)
	}
	return out
}

func sectionPaths(r *domain.Record, kind domain.SectionKind) []domain.FieldPath {
	sec := r.Section(kind)
	var out []domain.FieldPath
	for i := 0; i < sec.Len(); i++ {
		e, err := sec.Entry(i)
		if err != nil {
			continue
		}
		for _, f := range e.Fields() {
			out = append(out, domain.EntryPath(kind, i, f))
		}
	}
	return out
}
