package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/applicant-wizard/internal/app/formclient"
	"github.com/yigit/applicant-wizard/internal/app/models/dto"
	"github.com/yigit/applicant-wizard/internal/domain"
	"github.com/yigit/applicant-wizard/internal/pkg/apperrors"
	"github.com/yigit/applicant-wizard/internal/pkg/helpers"
)

// Listing sort keys
const (
	SortName     = "name"
	SortEmail    = "email"
	SortWorkType = "work_type"
	SortCreated  = "created"
	SortUpdated  = "updated"

	DirectionAsc  = "asc"
	DirectionDesc = "desc"
)

const notSpecified = "Not specified"

// FormSource reads records from the backend
type FormSource interface {
	List(ctx context.Context) (formclient.Records, error)
	Get(ctx context.Context, id string) (formclient.Fetched, error)
}

// FormService defines the listing and detail projections
type FormService interface {
	ListForms(ctx context.Context, query dto.FormListQuery) (*dto.FormListResponse, error)
	GetFormDetail(ctx context.Context, id string) (*dto.FormDetailResponse, error)
}

type formServiceImpl struct {
	source FormSource
	logger zerolog.Logger
}

// NewFormService creates a new form service instance
func NewFormService(source FormSource, logger zerolog.Logger) FormService {
	return &formServiceImpl{
		source: source,
		logger: logger.With().Str("service", "forms").Logger(),
	}
}

// normalizeDirection maps the accepted spellings onto asc/desc
func normalizeDirection(direction string) string {
	switch strings.ToLower(direction) {
	case DirectionAsc, "ascending":
		return DirectionAsc
	default:
		return DirectionDesc
	}
}

// ListForms fetches all records, sorts them and returns one page
func (s *formServiceImpl) ListForms(ctx context.Context, query dto.FormListQuery) (*dto.FormListResponse, error) {
	records, err := s.source.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to fetch forms")
		return nil, fmt.Errorf("failed to fetch forms: %w", err)
	}

	sortKey := query.Sort
	if sortKey == "" {
		sortKey = SortCreated
	}
	direction := DirectionDesc
	if query.Direction != "" {
		direction = normalizeDirection(query.Direction)
	}

	items := append([]domain.StoredRecord(nil), records.Items...)
	SortRecords(items, sortKey, direction)

	page, size := helpers.NormalizePage(query.Page, query.Size)
	start, end := helpers.CalculateSliceIndices(page, size, len(items))

	rows := make([]dto.FormRow, 0, end-start)
	for i := range items[start:end] {
		rows = append(rows, newFormRow(&items[start+i]))
	}

	return &dto.FormListResponse{
		Items:      rows,
		Pagination: helpers.NewPaginationInfo(int64(len(items)), page, size),
		Sort:       sortKey,
		Direction:  direction,
		Demo:       records.Demo,
	}, nil
}

// SortRecords orders records in place. The sort is stable so equal keys
// keep their fetch order in both directions.
func SortRecords(items []domain.StoredRecord, key, direction string) {
	desc := normalizeDirection(direction) == DirectionDesc

	var less func(a, b *domain.StoredRecord) int
	switch key {
	case SortName:
		less = func(a, b *domain.StoredRecord) int {
			return strings.Compare(strings.ToLower(a.FullName()), strings.ToLower(b.FullName()))
		}
	case SortEmail:
		less = func(a, b *domain.StoredRecord) int {
			return strings.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email))
		}
	case SortWorkType:
		less = func(a, b *domain.StoredRecord) int {
			return strings.Compare(string(a.PreferredWorkType), string(b.PreferredWorkType))
		}
	case SortUpdated:
		less = func(a, b *domain.StoredRecord) int { return a.UpdatedAt.Compare(b.UpdatedAt) }
	default:
		less = func(a, b *domain.StoredRecord) int { return a.CreatedAt.Compare(b.CreatedAt) }
	}

	sort.SliceStable(items, func(i, j int) bool {
		c := less(&items[i], &items[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
}

func newFormRow(r *domain.StoredRecord) dto.FormRow {
	workType := string(r.PreferredWorkType)
	if workType == "" {
		workType = notSpecified
	}
	return dto.FormRow{
		ID:         r.ID,
		Name:       r.FullName(),
		Email:      r.Email,
		WorkType:   workType,
		Experience: SummarizeExperience(r.JobExperiences),
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
		Created:    helpers.FormatTimestamp(r.CreatedAt),
		ViewURL:    "/forms/" + r.ID,
		EditURL:    "/wizard/edit/" + r.ID,
	}
}

// SummarizeExperience describes the first listed job and how many follow it
func SummarizeExperience(jobs []domain.JobExperience) dto.ExperienceSummary {
	if len(jobs) == 0 {
		return dto.ExperienceSummary{Label: "No experience"}
	}
	first := jobs[0]
	sum := dto.ExperienceSummary{
		Count:   len(jobs),
		Title:   first.JobTitle,
		Company: first.CompanyName,
		More:    len(jobs) - 1,
	}
	sum.Label = first.JobTitle
	if first.CompanyName != "" {
		sum.Label += " at " + first.CompanyName
	}
	if sum.More > 0 {
		sum.Label += fmt.Sprintf(" +%d more", sum.More)
	}
	return sum
}

// GetFormDetail fetches one record and groups it into cards
func (s *formServiceImpl) GetFormDetail(ctx context.Context, id string) (*dto.FormDetailResponse, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperrors.NewBadRequestError("form id is required")
	}

	fetched, err := s.source.Get(ctx, id)
	if err != nil {
		s.logger.Error().Err(err).Str("formID", id).Msg("Failed to fetch form")
		return nil, fmt.Errorf("failed to fetch form %s: %w", id, err)
	}

	r := &fetched.Record
	if r.ID == "" {
		r.ID = id
	}
	return &dto.FormDetailResponse{
		ID:        r.ID,
		Name:      r.FullName(),
		Cards:     DetailCards(r),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
		EditURL:   "/wizard/edit/" + r.ID,
		BackURL:   "/forms",
		Demo:      fetched.Demo,
	}, nil
}

func field(label, value, kind string) dto.DetailField {
	if strings.TrimSpace(value) == "" {
		return dto.DetailField{Label: label, Value: notSpecified, Type: "text"}
	}
	f := dto.DetailField{Label: label, Value: value, Type: kind}
	switch kind {
	case "date":
		f.Value = helpers.FormatLongDate(value)
	case "email":
		f.Href = "mailto:" + value
	case "phone":
		f.Href = "tel:" + value
	case "link":
		f.Href = value
	}
	return f
}

func timestampField(label string, t time.Time) dto.DetailField {
	if t.IsZero() {
		return dto.DetailField{Label: label, Value: notSpecified, Type: "text"}
	}
	return dto.DetailField{Label: label, Value: t.Format("January 2, 2006"), Type: "date"}
}

func card(heading string, fields []dto.DetailField, empty string) dto.DetailCard {
	c := dto.DetailCard{Heading: heading, Fields: fields}
	if len(fields) == 0 {
		c.Empty = true
		c.EmptyMessage = empty
	}
	return c
}

func itemCard(heading string, items []dto.DetailItem, empty string) dto.DetailCard {
	c := dto.DetailCard{Heading: heading, Items: items}
	if len(items) == 0 {
		c.Empty = true
		c.EmptyMessage = empty
	}
	return c
}

func numbered(label string, i int) string {
	return fmt.Sprintf("%s %d", label, i+1)
}

// DetailCards groups a record into read-only cards following the wizard layout
func DetailCards(r *domain.StoredRecord) []dto.DetailCard {
	fullName := strings.TrimSpace(strings.Join([]string{string(r.Title), r.FirstName, r.LastName}, " "))

	cards := []dto.DetailCard{
		card("Personal Information", []dto.DetailField{
			field("Full Name", fullName, "text"),
			field("Date of Birth", r.DateOfBirth, "date"),
			field("Email", r.Email, "email"),
			field("Mobile Number", r.MobileNumber, "phone"),
			field("Marital Status", string(r.MaritalStatus), "text"),
			field("Developer", r.Developer, "text"),
			field("Job", r.Job, "text"),
		}, ""),
		card("Address", []dto.DetailField{
			field("Street Address", r.StreetAddress, "text"),
			field("City", r.City, "text"),
			field("State", r.State, "text"),
			field("Postal Code", r.PostalCode, "text"),
			field("Country", r.Country, "text"),
		}, ""),
	}

	var educations []dto.DetailItem
	for i, e := range r.Educations {
		if e.UniversityName == "" && e.CourseName == "" && e.DegreeType == "" {
			continue
		}
		educations = append(educations, dto.DetailItem{ID: e.ID, Title: numbered("Education", i), Fields: []dto.DetailField{
			field("University", e.UniversityName, "text"),
			field("Degree", string(e.DegreeType), "text"),
			field("Course", e.CourseName, "text"),
		}})
	}
	cards = append(cards, itemCard("Education", educations, "No education records"))

	var jobs []dto.DetailItem
	for i, j := range r.JobExperiences {
		if j.JobTitle == "" && j.CompanyName == "" {
			continue
		}
		end := field("End Date", j.EndDate, "date")
		if j.IsPresentJob {
			end = dto.DetailField{Label: "End Date", Value: "Present", Type: "text"}
		}
		fields := []dto.DetailField{
			field("Job Title", j.JobTitle, "text"),
			field("Company", j.CompanyName, "text"),
			field("Start Date", j.StartDate, "date"),
			end,
		}
		if j.Description != "" {
			fields = append(fields, field("Description", j.Description, "text"))
		}
		jobs = append(jobs, dto.DetailItem{ID: j.ID, Title: numbered("Experience", i), Fields: fields})
	}
	cards = append(cards, itemCard("Experience", jobs, "No job experience records"))

	var skills []dto.DetailField
	for _, sk := range r.Skills {
		if sk.Name == "" {
			continue
		}
		value := sk.Name
		if sk.Level != "" {
			value = fmt.Sprintf("%s (%s)", sk.Name, sk.Level)
		}
		skills = append(skills, dto.DetailField{Label: sk.Category, Value: value, Type: "chip"})
	}
	cards = append(cards, card("Skills", skills, "No skills listed"))

	var certs []dto.DetailItem
	for i, c := range r.Certifications {
		if c.Name == "" {
			continue
		}
		fields := []dto.DetailField{
			field("Certification Name", c.Name, "text"),
			field("Issuer", c.Issuer, "text"),
			field("Date Obtained", c.DateObtained, "date"),
		}
		if c.HasExpiry && c.ExpiryDate != "" {
			fields = append(fields, field("Expiry Date", c.ExpiryDate, "date"))
		}
		certs = append(certs, dto.DetailItem{ID: c.ID, Title: numbered("Certification", i), Fields: fields})
	}
	cards = append(cards, itemCard("Certifications", certs, "No certifications listed"))

	var languages []dto.DetailField
	for _, l := range r.Languages {
		if l.Name == "" {
			continue
		}
		value := l.Name
		if l.Proficiency != "" {
			value = fmt.Sprintf("%s (%s)", l.Name, l.Proficiency)
		}
		languages = append(languages, dto.DetailField{Value: value, Type: "chip"})
	}
	cards = append(cards, card("Languages", languages, "No languages listed"))

	var projects []dto.DetailItem
	for i, p := range r.Projects {
		if p.Title == "" {
			continue
		}
		end := field("End Date", p.EndDate, "date")
		if p.IsOngoing {
			end = dto.DetailField{Label: "End Date", Value: "Ongoing", Type: "text"}
		}
		fields := []dto.DetailField{
			field("Project Title", p.Title, "text"),
			field("Technologies", p.Technologies, "text"),
			field("Start Date", p.StartDate, "date"),
			end,
		}
		if p.Description != "" {
			fields = append(fields, field("Description", p.Description, "text"))
		}
		if p.Link != "" {
			fields = append(fields, field("View Project", p.Link, "link"))
		}
		projects = append(projects, dto.DetailItem{ID: p.ID, Title: numbered("Project", i), Fields: fields})
	}
	cards = append(cards, itemCard("Projects", projects, "No projects listed"))

	var links []dto.DetailField
	for _, l := range []struct{ label, url string }{
		{"Portfolio Website", r.PortfolioWebsite},
		{"LinkedIn Profile", r.LinkedinURL},
		{"GitHub Profile", r.GithubURL},
	} {
		if l.url != "" {
			links = append(links, field(l.label, l.url, "link"))
		}
	}
	cards = append(cards, card("Portfolio", links, "No portfolio links provided"))

	var refs []dto.DetailItem
	for i, ref := range r.References {
		if ref.Name == "" {
			continue
		}
		fields := []dto.DetailField{
			field("Name", ref.Name, "text"),
			field("Position", ref.Position, "text"),
			field("Company", ref.Company, "text"),
			field("Email", ref.Email, "email"),
		}
		if ref.Phone != "" {
			fields = append(fields, field("Phone", ref.Phone, "phone"))
		}
		refs = append(refs, dto.DetailItem{ID: ref.ID, Title: numbered("Reference", i), Fields: fields})
	}
	cards = append(cards, itemCard("References", refs, "No references provided"))

	cards = append(cards,
		card("Preferences", []dto.DetailField{
			field("Preferred Work Type", string(r.PreferredWorkType), "text"),
			field("Expected Salary", r.ExpectedSalary, "text"),
			field("Preferred Location", r.PreferredLocation, "text"),
			field("Availability Date", r.AvailabilityDate, "date"),
			field("Career Goals", r.CareerGoals, "text"),
			timestampField("Created", r.CreatedAt),
			timestampField("Last Updated", r.UpdatedAt),
		}, ""),
	)

	var extra []dto.DetailField
	for _, f := range []struct{ label, value string }{
		{"Professional Summary", r.ProfessionalSummary},
		{"Hobbies", r.Hobbies},
		{"Volunteer Work", r.VolunteerWork},
		{"Additional Notes", r.AdditionalNotes},
	} {
		if strings.TrimSpace(f.value) != "" {
			extra = append(extra, field(f.label, f.value, "text"))
		}
	}
	cards = append(cards, card("Additional Information", extra, "No additional information provided"))

	return cards
}
