package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecordSeedsOneEntryPerSection(t *testing.T) {
	r := NewRecord()
	for _, kind := range SectionKinds {
		assert.Equal(t, 1, r.Section(kind).Len(), kind)
	}
	assert.Equal(t, DefaultSkillCategory, r.Skills[0].Category)
	assert.NotEmpty(t, r.Educations[0].ID)
	assert.NotEqual(t, r.Educations[0].ID, r.JobExperiences[0].ID)
}

func TestSectionRemovalPolicy(t *testing.T) {
	tests := []struct {
		name    string
		kind    SectionKind
		entries int
		index   int
		wantErr error
	}{
		{"skills keeps the last entry", SectionSkills, 1, 0, ErrLastEntry},
		{"skills allows removing index 0", SectionSkills, 2, 0, nil},
		{"languages allows removing index 0", SectionLanguages, 3, 0, nil},
		{"educations pins the first entry", SectionEducations, 2, 0, ErrPinnedEntry},
		{"educations removes later entries", SectionEducations, 2, 1, nil},
		{"projects keeps the last entry", SectionProjects, 1, 0, ErrLastEntry},
		{"references pins the first entry", SectionReferences, 3, 0, ErrPinnedEntry},
		{"out of range", SectionCertifications, 2, 5, ErrIndexOutOfRange},
		{"negative index", SectionJobExperiences, 2, -1, ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Record{}
			s := r.Section(tt.kind)
			for i := 0; i < tt.entries; i++ {
				s.Append(NewEntryID())
			}

			err := s.Remove(tt.index)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.entries, s.Len(), "rejected removal must not change the section")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.entries-1, s.Len())
		})
	}
}

func TestRemoveKeepsOrder(t *testing.T) {
	r := &Record{}
	s := r.Section(SectionSkills)
	for _, name := range []string{"Go", "SQL", "Rust"} {
		e := s.Append(NewEntryID())
		require.NoError(t, e.Set("name", name))
	}

	require.NoError(t, s.Remove(1))
	require.Len(t, r.Skills, 2)
	assert.Equal(t, "Go", r.Skills[0].Name)
	assert.Equal(t, "Rust", r.Skills[1].Name)
}

func TestRemoveDoesNotAliasClones(t *testing.T) {
	r := &Record{}
	s := r.Section(SectionLanguages)
	for _, name := range []string{"English", "German", "French"} {
		e := s.Append(NewEntryID())
		require.NoError(t, e.Set("name", name))
	}
	snapshot := r.Clone()

	require.NoError(t, r.Section(SectionLanguages).Remove(0))
	assert.Equal(t, "English", snapshot.Languages[0].Name)
	assert.Len(t, snapshot.Languages, 3)
}

func TestEntryFlagInvariants(t *testing.T) {
	r := NewRecord()

	job, err := r.Section(SectionJobExperiences).Entry(0)
	require.NoError(t, err)
	require.NoError(t, job.Set("endDate", "2023-01-01"))
	require.NoError(t, job.Set("isPresentJob", true))
	assert.Empty(t, r.JobExperiences[0].EndDate)
	require.NoError(t, job.Set("endDate", "2024-01-01"))
	assert.Empty(t, r.JobExperiences[0].EndDate, "end date stays empty while the job is current")

	cert, err := r.Section(SectionCertifications).Entry(0)
	require.NoError(t, err)
	require.NoError(t, cert.Set("hasExpiry", "true"))
	require.NoError(t, cert.Set("expiryDate", "2026-05-01"))
	assert.Equal(t, "2026-05-01", r.Certifications[0].ExpiryDate)
	require.NoError(t, cert.Set("hasExpiry", false))
	assert.Empty(t, r.Certifications[0].ExpiryDate)

	proj, err := r.Section(SectionProjects).Entry(0)
	require.NoError(t, err)
	require.NoError(t, proj.Set("endDate", "2022-02-02"))
	require.NoError(t, proj.Set("isOngoing", true))
	assert.Empty(t, r.Projects[0].EndDate)
}

func TestEntrySetRejectsBadInput(t *testing.T) {
	r := NewRecord()
	e, err := r.Section(SectionSkills).Entry(0)
	require.NoError(t, err)

	assert.ErrorIs(t, e.Set("nope", "x"), ErrUnknownField)
	assert.ErrorIs(t, e.Set("name", 42), ErrInvalidValue)

	job, _ := r.Section(SectionJobExperiences).Entry(0)
	assert.ErrorIs(t, job.Set("isPresentJob", "maybe"), ErrInvalidValue)
}

func TestParseSectionKind(t *testing.T) {
	kind, err := ParseSectionKind("jobExperiences")
	require.NoError(t, err)
	assert.Equal(t, SectionJobExperiences, kind)
	assert.Equal(t, PinFirst, kind.Policy())

	_, err = ParseSectionKind("hobbies")
	assert.ErrorIs(t, err, ErrUnknownSection)
}
