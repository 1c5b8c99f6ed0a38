package wizard

import (
	"github.com/yigit/applicant-wizard/internal/domain"
	"github.com/yigit/applicant-wizard/internal/pkg/validation"
)

const descriptionTooShort = "Description must be at least 10 characters"

var emailRules = validation.FieldRules{
	validation.Required("Email is required"),
	validation.Pattern(validation.CompiledPatterns.Email, "Please enter a valid email address"),
}

// scalarRules holds the rule list of every validated scalar field.
// Fields without an entry are free text and always valid.
var scalarRules = map[string]validation.FieldRules{
	"title": {
		validation.Required("Title is required"),
		validation.OneOf("Title", domain.Titles),
	},
	"maritalStatus": {
		validation.Required("Status is required"),
		validation.OneOf("Marital status", domain.MaritalStatuses),
	},
	"firstName": {
		validation.Required("First name is required"),
		validation.MaxLength(80, "First name must be less than 80 characters"),
	},
	"lastName": {
		validation.Required("Last name is required"),
		validation.MaxLength(100, "Last name must be less than 100 characters"),
	},
	"email": emailRules,
	"mobileNumber": {
		validation.Required("Mobile number is required"),
		validation.MinLength(6, "Mobile number must be at least 6 digits"),
		validation.MaxLength(12, "Mobile number must be less than 12 digits"),
		validation.Pattern(validation.CompiledPatterns.Digits, "Mobile number must contain only numbers"),
	},
	"city":    {validation.Required("City is required")},
	"country": {validation.Required("Country is required")},
	"developer": {
		validation.Required("Please select if you are a developer"),
		validation.OneOf("Developer", domain.DeveloperOptions),
	},
	"job": {
		validation.RequiredIf(validation.FieldEquals("developer", domain.DeveloperNo), "Job title is required"),
	},
	"preferredWorkType": {
		validation.Required("Preferred work type is required"),
		validation.OneOf("Preferred work type", domain.WorkTypes),
	},
	"expectedSalary":    {validation.Required("Expected salary is required")},
	"preferredLocation": {validation.Required("Preferred location is required")},
	"availabilityDate":  {validation.Required("Availability date is required")},
}

// entryRules holds per-section field rules. Conditional rules look up
// sibling fields of the same entry.
var entryRules = map[domain.SectionKind]map[string]validation.FieldRules{
	domain.SectionEducations: {
		"universityName": {validation.Required("University name is required")},
		"degreeType": {
			validation.Required("Degree type is required"),
			validation.OneOf("Degree type", domain.DegreeTypes),
		},
		"courseName": {validation.Required("Course name is required")},
	},
	domain.SectionJobExperiences: {
		"jobTitle":    {validation.Required("Job title is required")},
		"companyName": {validation.Required("Company name is required")},
		"startDate":   {validation.Required("Start date is required")},
		"endDate": {
			validation.RequiredIf(validation.FieldNotEquals("isPresentJob", "true"), "End date is required"),
		},
		"description": {
			validation.Required("Job description is required"),
			validation.MinLength(10, descriptionTooShort),
		},
	},
	domain.SectionSkills: {
		"name": {validation.Required("Skill name is required")},
		"level": {
			validation.Required("Level is required"),
			validation.OneOf("Level", domain.SkillLevels),
		},
	},
	domain.SectionCertifications: {
		"name":         {validation.Required("Certification name is required")},
		"issuer":       {validation.Required("Issuer is required")},
		"dateObtained": {validation.Required("Date obtained is required")},
		"expiryDate": {
			validation.RequiredIf(validation.FieldEquals("hasExpiry", "true"), "Expiry date is required"),
		},
	},
	domain.SectionLanguages: {
		"name": {validation.Required("Language is required")},
		"proficiency": {
			validation.Required("Proficiency is required"),
			validation.OneOf("Proficiency", domain.ProficiencyLevels),
		},
	},
	domain.SectionProjects: {
		"title": {validation.Required("Project title is required")},
		"description": {
			validation.Required("Project description is required"),
			validation.MinLength(10, descriptionTooShort),
		},
	},
	domain.SectionReferences: {
		"name":     {validation.Required("Name is required")},
		"position": {validation.Required("Position is required")},
		"company":  {validation.Required("Company is required")},
		"email":    emailRules,
	},
}

// RulesFor returns the rules of a field path; nil means always valid
func RulesFor(p domain.FieldPath) validation.FieldRules {
	if p.IsScalar() {
		return scalarRules[p.Field]
	}
	return entryRules[p.Section][p.Field]
}

// ValidateField evaluates one path against the live record
func ValidateField(r *domain.Record, p domain.FieldPath) string {
	rules := RulesFor(p)
	if len(rules) == 0 {
		return ""
	}
	return rules.Validate(r.StringValue(p), lookupFor(r, p))
}

// dependents lists fields whose conditional rule reads the given field
var dependents = map[string]string{
	"developer":    "job",
	"isPresentJob": "endDate",
	"hasExpiry":    "expiryDate",
	"isOngoing":    "endDate",
}

// Dependent returns the path gated by p, if any
func Dependent(p domain.FieldPath) (domain.FieldPath, bool) {
	f, ok := dependents[p.Field]
	if !ok {
		return domain.FieldPath{}, false
	}
	if p.IsScalar() {
		return domain.ScalarPath(f), true
	}
	return domain.EntryPath(p.Section, p.Index, f), true
}

func lookupFor(r *domain.Record, p domain.FieldPath) validation.Lookup {
	if p.IsScalar() {
		return func(field string) string {
			return r.StringValue(domain.ScalarPath(field))
		}
	}
	return func(field string) string {
		return r.StringValue(domain.EntryPath(p.Section, p.Index, field))
	}
}
