package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/applicant-wizard/internal/app/formclient"
	"github.com/yigit/applicant-wizard/internal/app/models/dto"
	"github.com/yigit/applicant-wizard/internal/domain"
	"github.com/yigit/applicant-wizard/internal/pkg/apperrors"
)

type fakeSource struct {
	records formclient.Records
	fetched formclient.Fetched
	err     error
}

func (f *fakeSource) List(ctx context.Context) (formclient.Records, error) {
	return f.records, f.err
}

func (f *fakeSource) Get(ctx context.Context, id string) (formclient.Fetched, error) {
	return f.fetched, f.err
}

var base = time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)

func stored(id, first, last, email string, workType domain.WorkType, createdDay int) domain.StoredRecord {
	r := domain.StoredRecord{ID: id, CreatedAt: base.AddDate(0, 0, createdDay), UpdatedAt: base.AddDate(0, 0, 10-createdDay)}
	r.FirstName, r.LastName, r.Email, r.PreferredWorkType = first, last, email, workType
	return r
}

func ids(rows []dto.FormRow) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r.ID)
	}
	return out
}

func TestListFormsSorting(t *testing.T) {
	items := []domain.StoredRecord{
		stored("a", "bob", "Stone", "b@x.io", domain.WorkTypeRemote, 1),
		stored("b", "Alice", "Zed", "c@x.io", domain.WorkTypeHybrid, 3),
		stored("c", "alice", "zed", "a@x.io", "", 2),
	}
	svc := NewFormService(&fakeSource{records: formclient.Records{Items: items}}, zerolog.Nop())

	tests := []struct {
		name  string
		query dto.FormListQuery
		want  []string
	}{
		{"default is newest first", dto.FormListQuery{}, []string{"b", "c", "a"}},
		{"created ascending", dto.FormListQuery{Sort: SortCreated, Direction: "ascending"}, []string{"a", "c", "b"}},
		{"name ties keep fetch order", dto.FormListQuery{Sort: SortName, Direction: DirectionAsc}, []string{"b", "c", "a"}},
		{"name descending ties keep fetch order", dto.FormListQuery{Sort: SortName, Direction: DirectionDesc}, []string{"a", "b", "c"}},
		{"email", dto.FormListQuery{Sort: SortEmail, Direction: DirectionAsc}, []string{"c", "a", "b"}},
		{"work type", dto.FormListQuery{Sort: SortWorkType, Direction: DirectionAsc}, []string{"c", "b", "a"}},
		{"updated", dto.FormListQuery{Sort: SortUpdated, Direction: DirectionAsc}, []string{"b", "c", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.ListForms(context.Background(), tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res.Items))
		})
	}
}

func TestListFormsEqualCreatedAtKeepFetchOrder(t *testing.T) {
	items := []domain.StoredRecord{
		stored("d", "Dora", "Lee", "d@x.io", "", 2),
		stored("e", "Eve", "Ng", "e@x.io", "", 1),
		stored("f", "Finn", "Ode", "f@x.io", "", 2),
		stored("g", "Gus", "Poe", "g@x.io", "", 1),
	}
	svc := NewFormService(&fakeSource{records: formclient.Records{Items: items}}, zerolog.Nop())

	tests := []struct {
		name  string
		query dto.FormListQuery
		want  []string
	}{
		{"default newest first", dto.FormListQuery{}, []string{"d", "f", "e", "g"}},
		{"created descending", dto.FormListQuery{Sort: SortCreated, Direction: DirectionDesc}, []string{"d", "f", "e", "g"}},
		{"created ascending", dto.FormListQuery{Sort: SortCreated, Direction: DirectionAsc}, []string{"e", "g", "d", "f"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for i := 0; i < 20; i++ {
				res, err := svc.ListForms(context.Background(), tt.query)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ids(res.Items))
			}
		})
	}
}

func TestListFormsPagination(t *testing.T) {
	var items []domain.StoredRecord
	for i := 0; i < 24; i++ {
		items = append(items, stored(fmt.Sprintf("f%02d", i), "N", "M", "e@x.io", domain.WorkTypeAny, i))
	}
	svc := NewFormService(&fakeSource{records: formclient.Records{Items: items, Demo: true}}, zerolog.Nop())

	res, err := svc.ListForms(context.Background(), dto.FormListQuery{Sort: SortCreated, Direction: DirectionAsc, Page: 3})
	require.NoError(t, err)
	assert.Len(t, res.Items, 4)
	assert.Equal(t, "f20", res.Items[0].ID)
	assert.Equal(t, 3, res.Pagination.TotalPages)
	assert.Equal(t, int64(24), res.Pagination.TotalItems)
	assert.True(t, res.Demo)

	res, err = svc.ListForms(context.Background(), dto.FormListQuery{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestListFormsRowFields(t *testing.T) {
	r := stored("x1", "Jane", "Smith", "jane@x.io", "", 0)
	r.JobExperiences = []domain.JobExperience{
		{JobTitle: "Lead", CompanyName: "Acme"},
		{JobTitle: "Dev", CompanyName: "Initech"},
	}
	svc := NewFormService(&fakeSource{records: formclient.Records{Items: []domain.StoredRecord{r}}}, zerolog.Nop())

	res, err := svc.ListForms(context.Background(), dto.FormListQuery{})
	require.NoError(t, err)
	row := res.Items[0]
	assert.Equal(t, "Jane Smith", row.Name)
	assert.Equal(t, "Not specified", row.WorkType)
	assert.Equal(t, "Lead at Acme +1 more", row.Experience.Label)
	assert.Equal(t, "Jan 1, 2024, 09:00 AM", row.Created)
	assert.Equal(t, "/wizard/edit/x1", row.EditURL)
}

func TestSummarizeExperience(t *testing.T) {
	assert.Equal(t, "No experience", SummarizeExperience(nil).Label)
	one := SummarizeExperience([]domain.JobExperience{{JobTitle: "Chef"}})
	assert.Equal(t, "Chef", one.Label)
	assert.Equal(t, 0, one.More)
}

func TestListFormsSurfacesSourceError(t *testing.T) {
	svc := NewFormService(&fakeSource{err: apperrors.ErrBackendUnavailable}, zerolog.Nop())
	_, err := svc.ListForms(context.Background(), dto.FormListQuery{})
	assert.ErrorIs(t, err, apperrors.ErrBackendUnavailable)
}

func cardByHeading(t *testing.T, cards []dto.DetailCard, heading string) dto.DetailCard {
	t.Helper()
	for _, c := range cards {
		if c.Heading == heading {
			return c
		}
	}
	t.Fatalf("card %q not found", heading)
	return dto.DetailCard{}
}

func TestGetFormDetail(t *testing.T) {
	rec := validRecord()
	rec.ID = "form-1"
	rec.CreatedAt = base
	rec.DateOfBirth = "1906-12-09"
	rec.Skills = append(rec.Skills, domain.Skill{Name: "FLOW-MATIC"})
	rec.Languages = nil
	rec.GithubURL = "https://github.com/grace"
	svc := NewFormService(&fakeSource{fetched: formclient.Fetched{Record: rec}}, zerolog.Nop())

	res, err := svc.GetFormDetail(context.Background(), "form-1")
	require.NoError(t, err)
	assert.Equal(t, "Grace Hopper", res.Name)
	assert.Equal(t, "/wizard/edit/form-1", res.EditURL)

	var headings []string
	for _, c := range res.Cards {
		headings = append(headings, c.Heading)
	}
	assert.Equal(t, []string{
		"Personal Information", "Address", "Education", "Experience", "Skills", "Certifications",
		"Languages", "Projects", "Portfolio", "References", "Preferences", "Additional Information",
	}, headings)

	personal := cardByHeading(t, res.Cards, "Personal Information")
	assert.Equal(t, "Dr Grace Hopper", personal.Fields[0].Value)
	assert.Equal(t, "December 9, 1906", personal.Fields[1].Value)
	assert.Equal(t, "mailto:grace@navy.mil", personal.Fields[2].Href)

	address := cardByHeading(t, res.Cards, "Address")
	assert.Equal(t, "Not specified", address.Fields[0].Value)

	skills := cardByHeading(t, res.Cards, "Skills")
	require.Len(t, skills.Fields, 2)
	assert.Equal(t, "COBOL (Expert)", skills.Fields[0].Value)
	assert.Equal(t, "FLOW-MATIC", skills.Fields[1].Value)

	experience := cardByHeading(t, res.Cards, "Experience")
	require.Len(t, experience.Items, 1)
	assert.Equal(t, "Present", experience.Items[0].Fields[3].Value)

	languages := cardByHeading(t, res.Cards, "Languages")
	assert.True(t, languages.Empty)
	assert.Equal(t, "No languages listed", languages.EmptyMessage)

	portfolio := cardByHeading(t, res.Cards, "Portfolio")
	require.Len(t, portfolio.Fields, 1)
	assert.Equal(t, "GitHub Profile", portfolio.Fields[0].Label)

	extra := cardByHeading(t, res.Cards, "Additional Information")
	assert.True(t, extra.Empty)
}

func TestGetFormDetailErrors(t *testing.T) {
	svc := NewFormService(&fakeSource{err: apperrors.NewResourceNotFoundError("form not found")}, zerolog.Nop())

	_, err := svc.GetFormDetail(context.Background(), " ")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = svc.GetFormDetail(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}
