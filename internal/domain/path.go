package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ScalarFields lists the non-repeated Record fields in wizard order
var ScalarFields = []string{
	"title", "maritalStatus", "firstName", "lastName", "email", "dateOfBirth", "mobileNumber",
	"streetAddress", "city", "state", "postalCode", "country", "developer", "job",
	"portfolioWebsite", "githubUrl", "linkedinUrl",
	"preferredWorkType", "expectedSalary", "preferredLocation", "availabilityDate", "careerGoals",
	"professionalSummary", "hobbies", "volunteerWork", "additionalNotes",
}

// FieldPath addresses a value inside a Record: a scalar field, a whole
// repeated section (Index -1, no Field), or a field of one section entry.
type FieldPath struct {
	Section SectionKind
	Index   int
	Field   string
}

// ScalarPath builds a path to a scalar field
func ScalarPath(field string) FieldPath {
	return FieldPath{Index: -1, Field: field}
}

// EntryPath builds a path to a field of a section entry
func EntryPath(section SectionKind, index int, field string) FieldPath {
	return FieldPath{Section: section, Index: index, Field: field}
}

// IsScalar reports whether the path addresses a scalar field
func (p FieldPath) IsScalar() bool { return p.Section == "" }

// IsSection reports whether the path addresses a whole section
func (p FieldPath) IsSection() bool { return p.Section != "" && p.Index < 0 }

// String renders the dotted form, e.g. educations.2.universityName
func (p FieldPath) String() string {
	switch {
	case p.IsScalar():
		return p.Field
	case p.IsSection():
		return string(p.Section)
	case p.Field == "":
		return fmt.Sprintf("%s.%d", p.Section, p.Index)
	}
	return fmt.Sprintf("%s.%d.%s", p.Section, p.Index, p.Field)
}

// ParsePath parses dotted (educations.2.universityName) or bracketed
// (educations[2].universityName) paths. It checks names, not index bounds.
func ParsePath(raw string) (FieldPath, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FieldPath{}, fmt.Errorf("%w: empty path", ErrMalformedPath)
	}
	normalized := strings.NewReplacer("[", ".", "]", "").Replace(raw)
	return ParseSegments(strings.Split(normalized, "."))
}

// ParseSegments parses an already split path
func ParseSegments(segs []string) (FieldPath, error) {
	if len(segs) == 0 || segs[0] == "" {
		return FieldPath{}, fmt.Errorf("%w: empty path", ErrMalformedPath)
	}
	head := segs[0]
	if kind, err := ParseSectionKind(head); err == nil {
		p := FieldPath{Section: kind, Index: -1}
		if len(segs) == 1 {
			return p, nil
		}
		idx, err := strconv.Atoi(segs[1])
		if err != nil || idx < 0 {
			return FieldPath{}, fmt.Errorf("%w: %q is not an entry index", ErrMalformedPath, segs[1])
		}
		p.Index = idx
		if len(segs) == 2 {
			return p, nil
		}
		if len(segs) > 3 {
			return FieldPath{}, fmt.Errorf("%w: %s", ErrMalformedPath, strings.Join(segs, "."))
		}
		p.Field = segs[2]
		if !entryHasField(kind, p.Field) {
			return FieldPath{}, unknownField(kind, p.Field)
		}
		return p, nil
	}
	if len(segs) != 1 {
		return FieldPath{}, fmt.Errorf("%w: %s", ErrMalformedPath, strings.Join(segs, "."))
	}
	if !isScalarField(head) {
		return FieldPath{}, fmt.Errorf("%w: %s", ErrUnknownField, head)
	}
	return ScalarPath(head), nil
}

func isScalarField(name string) bool {
	for _, f := range ScalarFields {
		if f == name {
			return true
		}
	}
	return false
}

func entryHasField(kind SectionKind, field string) bool {
	probe := NewRecord()
	e, _ := probe.Section(kind).Entry(0)
	for _, f := range e.Fields() {
		if f == field {
			return true
		}
	}
	return false
}

// Resolve checks the path against the record, including index bounds
func (r *Record) Resolve(p FieldPath) error {
	if p.IsScalar() {
		if !isScalarField(p.Field) {
			return fmt.Errorf("%w: %s", ErrUnknownField, p.Field)
		}
		return nil
	}
	s := r.Section(p.Section)
	if p.IsSection() {
		return nil
	}
	e, err := s.Entry(p.Index)
	if err != nil {
		return err
	}
	if p.Field == "" {
		return nil
	}
	if _, ok := e.Get(p.Field); !ok {
		return unknownField(p.Section, p.Field)
	}
	return nil
}

// Value returns the value at a scalar or entry field path
func (r *Record) Value(p FieldPath) (any, error) {
	if p.IsScalar() {
		v, ok := r.scalar(p.Field)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownField, p.Field)
		}
		return v, nil
	}
	if p.Field == "" {
		return nil, fmt.Errorf("%w: %s is not a field", ErrMalformedPath, p)
	}
	e, err := r.Section(p.Section).Entry(p.Index)
	if err != nil {
		return nil, err
	}
	v, ok := e.Get(p.Field)
	if !ok {
		return nil, unknownField(p.Section, p.Field)
	}
	return v, nil
}

// StringValue returns the value at p rendered as a string
func (r *Record) StringValue(p FieldPath) string {
	v, err := r.Value(p)
	if err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// SetValue writes a scalar or entry field, applying the flag invariants
func (r *Record) SetValue(p FieldPath, value any) error {
	if p.IsScalar() {
		return r.setScalar(p.Field, value)
	}
	if p.Field == "" {
		return fmt.Errorf("%w: %s is not a field", ErrMalformedPath, p)
	}
	e, err := r.Section(p.Section).Entry(p.Index)
	if err != nil {
		return err
	}
	return e.Set(p.Field, value)
}

func (r *Record) scalar(field string) (string, bool) {
	switch field {
	case "firstName":
		return r.FirstName, true
	case "lastName":
		return r.LastName, true
	case "email":
		return r.Email, true
	case "mobileNumber":
		return r.MobileNumber, true
	case "dateOfBirth":
		return r.DateOfBirth, true
	case "streetAddress":
		return r.StreetAddress, true
	case "city":
		return r.City, true
	case "state":
		return r.State, true
	case "postalCode":
		return r.PostalCode, true
	case "country":
		return r.Country, true
	case "title":
		return string(r.Title), true
	case "maritalStatus":
		return string(r.MaritalStatus), true
	case "developer":
		return r.Developer, true
	case "job":
		return r.Job, true
	case "portfolioWebsite":
		return r.PortfolioWebsite, true
	case "githubUrl":
		return r.GithubURL, true
	case "linkedinUrl":
		return r.LinkedinURL, true
	case "preferredWorkType":
		return string(r.PreferredWorkType), true
	case "expectedSalary":
		return r.ExpectedSalary, true
	case "preferredLocation":
		return r.PreferredLocation, true
	case "availabilityDate":
		return r.AvailabilityDate, true
	case "careerGoals":
		return r.CareerGoals, true
	case "professionalSummary":
		return r.ProfessionalSummary, true
	case "hobbies":
		return r.Hobbies, true
	case "volunteerWork":
		return r.VolunteerWork, true
	case "additionalNotes":
		return r.AdditionalNotes, true
	}
	return "", false
}

func (r *Record) setScalar(field string, value any) error {
	s, err := asString(field, value)
	if err != nil {
		return err
	}
	switch field {
	case "firstName":
		r.FirstName = s
	case "lastName":
		r.LastName = s
	case "email":
		r.Email = s
	case "mobileNumber":
		r.MobileNumber = s
	case "dateOfBirth":
		r.DateOfBirth = s
	case "streetAddress":
		r.StreetAddress = s
	case "city":
		r.City = s
	case "state":
		r.State = s
	case "postalCode":
		r.PostalCode = s
	case "country":
		r.Country = s
	case "title":
		r.Title = Title(s)
	case "maritalStatus":
		r.MaritalStatus = MaritalStatus(s)
	case "developer":
		r.SetDeveloper(s)
	case "job":
		r.Job = s
	case "portfolioWebsite":
		r.PortfolioWebsite = s
	case "githubUrl":
		r.GithubURL = s
	case "linkedinUrl":
		r.LinkedinURL = s
	case "preferredWorkType":
		r.PreferredWorkType = WorkType(s)
	case "expectedSalary":
		r.ExpectedSalary = s
	case "preferredLocation":
		r.PreferredLocation = s
	case "availabilityDate":
		r.AvailabilityDate = s
	case "careerGoals":
		r.CareerGoals = s
	case "professionalSummary":
		r.ProfessionalSummary = s
	case "hobbies":
		r.Hobbies = s
	case "volunteerWork":
		r.VolunteerWork = s
	case "additionalNotes":
		r.AdditionalNotes = s
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}
