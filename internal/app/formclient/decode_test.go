package formclient

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/yigit/applicant-wizard/internal/domain"
)

func fullRecord(flag bool, developer string) *domain.Record {
	r := &domain.Record{
		FirstName:     "Grace",
		LastName:      "Hopper",
		Email:         "grace@example.com",
		MobileNumber:  "+1 555 0100",
		DateOfBirth:   "1906-12-09",
		StreetAddress: "1 Navy Yard",
		City:          "Arlington",
		State:         "VA",
		PostalCode:    "22202",
		Country:       "USA",
		Title:         domain.TitleDr,
		MaritalStatus: domain.MaritalStatusMarried,
		Developer:     developer,
		Educations: []domain.Education{
			{ID: "edu-1", UniversityName: "Yale", DegreeType: domain.DegreePhD, CourseName: "Mathematics"},
			{ID: "edu-2", UniversityName: "Vassar", DegreeType: domain.DegreeBachelor, CourseName: "Physics"},
		},
		JobExperiences: []domain.JobExperience{
			{ID: "job-1", JobTitle: "Rear Admiral", CompanyName: "US Navy", StartDate: "1943-12-01", IsPresentJob: flag, Description: "COBOL"},
			{ID: "job-2", JobTitle: "Engineer", CompanyName: "Remington Rand", StartDate: "1949-01-01", EndDate: "1967-01-01"},
		},
		Skills: []domain.Skill{
			{ID: "skill-1", Name: "Compilers", Level: domain.SkillExpert, Category: "Systems"},
		},
		Certifications: []domain.Certification{
			{ID: "cert-1", Name: "Naval Reserve", Issuer: "USN", DateObtained: "1944-06-01", HasExpiry: flag},
		},
		Languages: []domain.Language{
			{ID: "lang-1", Name: "English", Proficiency: domain.ProficiencyNative},
		},
		Projects: []domain.Project{
			{ID: "proj-1", Title: "FLOW-MATIC", Description: "English-like language", Technologies: "UNIVAC", Link: "https://example.com/flow", StartDate: "1955-01-01", IsOngoing: flag},
		},
		References: []domain.Reference{
			{ID: "ref-1", Name: "Howard Aiken", Position: "Director", Company: "Harvard", Email: "aiken@example.com", Phone: "555-0101"},
		},
		PortfolioWebsite:    "https://example.com",
		GithubURL:           "https://github.com/grace",
		LinkedinURL:         "https://linkedin.com/in/grace",
		PreferredWorkType:   domain.WorkTypeHybrid,
		ExpectedSalary:      "100000",
		PreferredLocation:   "Washington",
		AvailabilityDate:    "2025-01-01",
		CareerGoals:         "Teach",
		ProfessionalSummary: "Pioneer",
		Hobbies:             "Clocks",
		VolunteerWork:       "Scouts",
		AdditionalNotes:     "Nanoseconds",
	}
	if developer == domain.DeveloperNo {
		r.Job = "Admiral"
	}
	if flag {
		r.Certifications[0].ExpiryDate = "1986-08-14"
	} else {
		r.JobExperiences[0].EndDate = "1986-08-14"
		r.Projects[0].EndDate = "1959-01-01"
	}
	return r
}

func TestEncodeDecodeRecordPreservesEveryField(t *testing.T) {
	tests := []struct {
		name      string
		flag      bool
		developer string
	}{
		{"flags set developer", true, domain.DeveloperYes},
		{"flags cleared non developer", false, domain.DeveloperNo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			want := fullRecord(tt.flag, tt.developer)

			body, err := encodeRecord(want)
			require.NoError(t, err)

			wire := gjson.ParseBytes(body)
			assert.Equal(t, tt.flag, wire.Get("job_experiences.0.is_present_job").Bool())
			assert.Equal(t, tt.flag, wire.Get("certifications.0.has_expiry").Bool())
			assert.Equal(t, tt.flag, wire.Get("projects.0.is_ongoing").Bool())
			assert.Equal(t, "https://github.com/grace", wire.Get("github_url").String())
			assert.False(t, wire.Get("jobExperiences").Exists())

			got, err := decodeRecord(payload(body))
			require.NoError(t, err)
			assert.Equal(t, *want, got.Record)
		})
	}
}

func TestDecodeRecordReadsWrapperMetadata(t *testing.T) {
	body, err := encodeRecord(fullRecord(true, domain.DeveloperYes))
	require.NoError(t, err)
	wrapped := `{"success":true,"data":{"id":"rec-9","created_at":"2024-03-04T05:06:07Z","form_data":` + string(body) + `}}`

	got, err := decodeRecord(payload([]byte(wrapped)))
	require.NoError(t, err)
	assert.Equal(t, "rec-9", got.ID)
	assert.True(t, got.CreatedAt.Equal(time.Date(2024, time.March, 4, 5, 6, 7, 0, time.UTC)))
	assert.Equal(t, *fullRecord(true, domain.DeveloperYes), got.Record)
}
