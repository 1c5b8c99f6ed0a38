package keycase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToSnake(t *testing.T) {
	tests := map[string]string{
		"firstName":      "first_name",
		"githubUrl":      "github_url",
		"isPresentJob":   "is_present_job",
		"dateOfBirth":    "date_of_birth",
		"HTTPServer":     "http_server",
		"already_snake":  "already_snake",
		"id":             "id",
		"jobExperiences": "job_experiences",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToSnake(in), in)
	}
}

func TestToCamel(t *testing.T) {
	tests := map[string]string{
		"first_name":      "firstName",
		"github_url":      "githubUrl",
		"is_present_job":  "isPresentJob",
		"alreadyCamel":    "alreadyCamel",
		"_private":        "_private",
		"job_experiences": "jobExperiences",
	}
	for in, want := range tests {
		assert.Equal(t, want, ToCamel(in), in)
	}
}

func TestRoundTripOfRecordKeys(t *testing.T) {
	for _, key := range []string{"maritalStatus", "postalCode", "linkedinUrl", "hasExpiry", "dateObtained", "preferredWorkType"} {
		assert.Equal(t, key, ToCamel(ToSnake(key)))
	}
}

func TestTransformRecursesIntoNestedValues(t *testing.T) {
	in := map[string]any{
		"first_name": "Jane",
		"job_experiences": []any{
			map[string]any{"job_title": "Engineer", "is_present_job": true},
		},
		"tags":  []any{"snake_value", 3.0},
		"empty": nil,
	}

	out := Transform(in, ToCamel).(map[string]any)

	assert.Equal(t, "Jane", out["firstName"])
	jobs := out["jobExperiences"].([]any)
	assert.Equal(t, map[string]any{"jobTitle": "Engineer", "isPresentJob": true}, jobs[0])
	assert.Equal(t, []any{"snake_value", 3.0}, out["tags"], "values are never rewritten")
	assert.Contains(t, out, "empty")
	assert.Contains(t, in, "first_name", "input is left untouched")
}

func TestSegments(t *testing.T) {
	assert.Equal(t, []string{"jobExperiences", "0", "endDate"}, Segments([]string{"job_experiences", "0", "end_date"}, ToCamel))
	assert.Equal(t, []string{"educations", "1", "courseName"}, Segments([]string{"educations", "1", "course_name"}, ToCamel))
}
