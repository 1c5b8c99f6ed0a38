package domain

import "strings"

// Title is the honorific selected on the personal information step
type Title string

const (
	TitleMr   Title = "Mr"
	TitleMrs  Title = "Mrs"
	TitleMiss Title = "Miss"
	TitleDr   Title = "Dr"
)

// MaritalStatus is the applicant's marital status
type MaritalStatus string

const (
	MaritalStatusSingle    MaritalStatus = "Single"
	MaritalStatusMarried   MaritalStatus = "Married"
	MaritalStatusDivorced  MaritalStatus = "Divorced"
	MaritalStatusWidowed   MaritalStatus = "Widowed"
	MaritalStatusSeparated MaritalStatus = "Separated"
)

// DegreeType is the kind of qualification held for an education entry
type DegreeType string

const (
	DegreeBachelor    DegreeType = "Bachelor's Degree"
	DegreeMaster      DegreeType = "Master's Degree"
	DegreePhD         DegreeType = "PhD"
	DegreeDiploma     DegreeType = "Diploma"
	DegreeCertificate DegreeType = "Certificate"
	DegreeAssociate   DegreeType = "Associate Degree"
)

// SkillLevel grades a skill entry
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "Beginner"
	SkillIntermediate SkillLevel = "Intermediate"
	SkillAdvanced     SkillLevel = "Advanced"
	SkillExpert       SkillLevel = "Expert"
)

// ProficiencyLevel grades a language entry
type ProficiencyLevel string

const (
	ProficiencyBasic          ProficiencyLevel = "Basic"
	ProficiencyConversational ProficiencyLevel = "Conversational"
	ProficiencyFluent         ProficiencyLevel = "Fluent"
	ProficiencyNative         ProficiencyLevel = "Native"
)

// WorkType is the preferred working arrangement
type WorkType string

const (
	WorkTypeRemote WorkType = "Remote"
	WorkTypeOnsite WorkType = "On-site"
	WorkTypeHybrid WorkType = "Hybrid"
	WorkTypeAny    WorkType = "Any"
)

// Developer flag values
const (
	DeveloperYes = "yes"
	DeveloperNo  = "no"
)

// Closed value sets, in display order.
var (
	Titles            = []string{string(TitleMr), string(TitleMrs), string(TitleMiss), string(TitleDr)}
	MaritalStatuses   = []string{string(MaritalStatusSingle), string(MaritalStatusMarried), string(MaritalStatusDivorced), string(MaritalStatusWidowed), string(MaritalStatusSeparated)}
	DegreeTypes       = []string{string(DegreeBachelor), string(DegreeMaster), string(DegreePhD), string(DegreeDiploma), string(DegreeCertificate), string(DegreeAssociate)}
	SkillLevels       = []string{string(SkillBeginner), string(SkillIntermediate), string(SkillAdvanced), string(SkillExpert)}
	ProficiencyLevels = []string{string(ProficiencyBasic), string(ProficiencyConversational), string(ProficiencyFluent), string(ProficiencyNative)}
	WorkTypes         = []string{string(WorkTypeRemote), string(WorkTypeOnsite), string(WorkTypeHybrid), string(WorkTypeAny)}
	DeveloperOptions  = []string{DeveloperYes, DeveloperNo}
)

// InSet reports whether value is empty or one of allowed.
func InSet(value string, allowed []string) bool {
	if value == "" {
		return true
	}
	for _, a := range allowed {
		if a == value {
			return true
		}
	}
	return false
}

// SetLabel renders a closed set for messages.
func SetLabel(allowed []string) string {
	return strings.Join(allowed, ", ")
}
