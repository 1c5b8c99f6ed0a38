package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/applicant-wizard/internal/app/formclient"
	"github.com/yigit/applicant-wizard/internal/app/repositories"
	"github.com/yigit/applicant-wizard/internal/app/wizard"
	"github.com/yigit/applicant-wizard/internal/domain"
	"github.com/yigit/applicant-wizard/internal/pkg/apperrors"
	"github.com/yigit/applicant-wizard/internal/pkg/auth"
	"github.com/yigit/applicant-wizard/internal/pkg/websocket"
)

type fakeBackend struct {
	mu      sync.Mutex
	getErrs []error
	record  domain.StoredRecord
	gate    chan struct{}
	gets    int
	creates int
	updates int
}

func (f *fakeBackend) Get(ctx context.Context, id string) (formclient.Fetched, error) {
	f.mu.Lock()
	f.gets++
	var err error
	if len(f.getErrs) > 0 {
		err, f.getErrs = f.getErrs[0], f.getErrs[1:]
	}
	gate, rec := f.gate, f.record
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return formclient.Fetched{}, ctx.Err()
		}
	}
	if err != nil {
		return formclient.Fetched{}, err
	}
	rec.ID = id
	return formclient.Fetched{Record: rec}, nil
}

func (f *fakeBackend) Create(ctx context.Context, r *domain.Record) (formclient.Submitted, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	return formclient.Submitted{ID: "new-form"}, nil
}

func (f *fakeBackend) Update(ctx context.Context, id string, r *domain.Record) (formclient.Submitted, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates++
	return formclient.Submitted{ID: id}, nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []websocket.Event
}

func (r *eventRecorder) Publish(e websocket.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *eventRecorder) types() []websocket.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []websocket.EventType
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

func (r *eventRecorder) waitFor(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return len(r.types()) >= n }, 2*time.Second, 5*time.Millisecond)
}

func validRecord() domain.StoredRecord {
	r := domain.NewRecord()
	r.Title = domain.TitleDr
	r.MaritalStatus = domain.MaritalStatusSingle
	r.FirstName = "Grace"
	r.LastName = "Hopper"
	r.Email = "grace@navy.mil"
	r.MobileNumber = "5551234567"
	r.City = "Arlington"
	r.Country = "USA"
	r.Developer = domain.DeveloperYes
	r.Educations[0] = domain.Education{ID: r.Educations[0].ID, UniversityName: "Yale", DegreeType: domain.DegreePhD, CourseName: "Mathematics"}
	r.JobExperiences[0] = domain.JobExperience{ID: r.JobExperiences[0].ID, JobTitle: "Rear Admiral", CompanyName: "US Navy",
		StartDate: "1943-12-01", IsPresentJob: true, Description: "Wrote the first compiler."}
	r.Skills[0] = domain.Skill{ID: r.Skills[0].ID, Name: "COBOL", Level: domain.SkillExpert, Category: domain.DefaultSkillCategory}
	r.Certifications[0] = domain.Certification{ID: r.Certifications[0].ID, Name: "Naval Reserve", Issuer: "US Navy", DateObtained: "1943-12-01"}
	r.Languages[0] = domain.Language{ID: r.Languages[0].ID, Name: "English", Proficiency: domain.ProficiencyNative}
	r.Projects[0] = domain.Project{ID: r.Projects[0].ID, Title: "UNIVAC", Description: "Programming the UNIVAC I."}
	r.References[0] = domain.Reference{ID: r.References[0].ID, Name: "Howard Aiken", Position: "Director", Company: "Harvard", Email: "aiken@harvard.edu"}
	r.PreferredWorkType = domain.WorkTypeOnsite
	r.ExpectedSalary = "100"
	r.PreferredLocation = "DC"
	r.AvailabilityDate = "1944-01-01"
	return domain.StoredRecord{Record: *r}
}

type harness struct {
	svc     *wizardServiceImpl
	repo    *repositories.MemorySessionRepository
	backend *fakeBackend
	events  *eventRecorder
	tokens  *auth.JWTService
}

func newHarness(t *testing.T, backend *fakeBackend) *harness {
	t.Helper()
	h := &harness{
		repo:    repositories.NewMemorySessionRepository(),
		backend: backend,
		events:  &eventRecorder{},
		tokens:  auth.NewJWTService(auth.JWTConfig{SecretKey: "secret", SessionTTL: time.Minute}),
	}
	h.svc = NewWizardService(h.repo, backend, h.tokens, h.events, WizardConfig{Scope: wizard.ScopeStep}, zerolog.Nop()).(*wizardServiceImpl)
	t.Cleanup(h.svc.Close)
	return h
}

func (h *harness) waitState(t *testing.T, id string, want wizard.State) wizard.View {
	t.Helper()
	var v wizard.View
	require.Eventually(t, func() bool {
		var err error
		v, err = h.svc.GetSession(context.Background(), id)
		return err == nil && v.State == want
	}, 2*time.Second, 5*time.Millisecond)
	return v
}

func TestCreateSessionEditing(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, &fakeBackend{})

	started, err := h.svc.StartSession(ctx, wizard.ModeCreate, "")
	require.NoError(t, err)
	assert.Equal(t, wizard.StateReady, started.View.State)
	id := started.Token.SessionID

	claims, err := h.tokens.ValidateAndExtractClaims(started.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, id, claims.SessionID)

	res, err := h.svc.SetField(ctx, id, "firstName", "")
	require.NoError(t, err)
	assert.Equal(t, "First name is required", res.Message)

	entry, err := h.svc.AddEntry(ctx, id, "job_experiences")
	require.NoError(t, err)
	assert.Equal(t, "jobExperiences", entry.Section)
	assert.Equal(t, 1, entry.Index)

	view, err := h.svc.RemoveEntry(ctx, id, "jobExperiences", 1)
	require.NoError(t, err)
	assert.Len(t, view.Record.JobExperiences, 1)

	_, err = h.svc.RemoveEntry(ctx, id, "jobExperiences", 0)
	assert.ErrorIs(t, err, apperrors.ErrEntryRejected)

	_, err = h.svc.AddEntry(ctx, id, "hobbies")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	adv, err := h.svc.Next(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, wizard.AdvanceInvalid, adv.Status)
	assert.NotEmpty(t, adv.Summary)

	stored, err := h.repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Contains(t, stored.Snapshot.Errors, "firstName")
}

func TestCancelDeletesSession(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, &fakeBackend{})

	started, err := h.svc.StartSession(ctx, wizard.ModeCreate, "")
	require.NoError(t, err)
	id := started.Token.SessionID

	redirect, err := h.svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/forms", redirect)

	_, err = h.svc.GetSession(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
	assert.Equal(t, []websocket.EventType{websocket.EventCancelled}, h.events.types())
}

func TestStartSessionRejectsBadInput(t *testing.T) {
	h := newHarness(t, &fakeBackend{})

	_, err := h.svc.StartSession(context.Background(), wizard.ModeEdit, "  ")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)

	_, err = h.svc.StartSession(context.Background(), wizard.Mode("copy"), "")
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
	assert.Equal(t, 0, h.repo.Len())
}

func TestEditSessionHydratesAndSubmits(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, &fakeBackend{record: validRecord()})

	started, err := h.svc.StartSession(ctx, wizard.ModeEdit, "form-7")
	require.NoError(t, err)
	assert.Equal(t, wizard.StateLoading, started.View.State)
	id := started.Token.SessionID

	v := h.waitState(t, id, wizard.StateReady)
	assert.Equal(t, "Grace", v.Record.FirstName)
	h.events.waitFor(t, 1)

	_, err = h.svc.SetField(ctx, id, "firstName", "Amazing Grace")
	require.NoError(t, err)

	_, err = h.svc.Submit(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrInvalidStep)

	for step := 1; step <= wizard.LastStep; step++ {
		adv, err := h.svc.Next(ctx, id)
		require.NoError(t, err)
		require.Equal(t, wizard.AdvanceDone, adv.Status)
		assert.Equal(t, step, adv.Step)
	}

	out, err := h.svc.Submit(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, wizard.SubmitSucceeded, out.Status)
	assert.Equal(t, "/forms/form-7", out.Redirect)
	assert.Equal(t, 1, h.backend.updates)

	_, err = h.svc.SetField(ctx, id, "firstName", "y")
	assert.ErrorIs(t, err, apperrors.ErrSessionClosed)

	stored, err := h.repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, wizard.StateSubmitted, stored.Snapshot.State)

	types := h.events.types()
	assert.Equal(t, websocket.EventHydrated, types[0])
	assert.Equal(t, websocket.EventSubmitted, types[len(types)-1])
}

func TestEditSessionRetryAfterFailure(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{record: validRecord(), getErrs: []error{apperrors.ErrBackendUnavailable}}
	h := newHarness(t, backend)

	started, err := h.svc.StartSession(ctx, wizard.ModeEdit, "form-1")
	require.NoError(t, err)
	id := started.Token.SessionID

	failed := h.waitState(t, id, wizard.StateFailed)
	assert.Contains(t, failed.LoadError, "unavailable")
	h.events.waitFor(t, 1)

	_, err = h.svc.SetField(ctx, id, "firstName", "x")
	assert.ErrorIs(t, err, apperrors.ErrSessionNotReady)

	_, err = h.svc.RetryLoad(ctx, id)
	require.NoError(t, err)
	h.waitState(t, id, wizard.StateReady)

	_, err = h.svc.RetryLoad(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	h.events.waitFor(t, 2)
	assert.Equal(t, []websocket.EventType{websocket.EventLoadFailed, websocket.EventHydrated}, h.events.types())
}

func TestLoadCompletingAfterCancelIsDropped(t *testing.T) {
	ctx := context.Background()
	backend := &fakeBackend{record: validRecord(), gate: make(chan struct{})}
	h := newHarness(t, backend)

	started, err := h.svc.StartSession(ctx, wizard.ModeEdit, "form-2")
	require.NoError(t, err)
	id := started.Token.SessionID

	redirect, err := h.svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "/forms/form-2", redirect)
	close(backend.gate)

	h.svc.Close()
	assert.Equal(t, []websocket.EventType{websocket.EventCancelled}, h.events.types())
	assert.Equal(t, 0, h.repo.Len())
}

func TestSessionRestoredFromRepository(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, &fakeBackend{})

	started, err := h.svc.StartSession(ctx, wizard.ModeCreate, "")
	require.NoError(t, err)
	id := started.Token.SessionID
	_, err = h.svc.SetField(ctx, id, "city", "Lisbon")
	require.NoError(t, err)

	other := NewWizardService(h.repo, h.backend, h.tokens, nil, WizardConfig{}, zerolog.Nop())
	t.Cleanup(other.Close)

	v, err := other.GetSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Lisbon", v.Record.City)
	assert.Contains(t, v.Touched, "city")
}

func TestRestoredLoadingSessionResumesHydration(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewMemorySessionRepository()
	ctrl := wizard.NewEdit("form-9", wizard.Options{})
	require.NoError(t, repo.Create(ctx, &repositories.SessionRecord{
		ID: "s-loading", Snapshot: ctrl.Snapshot(), ExpiresAt: time.Now().Add(time.Minute),
	}))

	backend := &fakeBackend{record: validRecord()}
	svc := NewWizardService(repo, backend, auth.NewJWTService(auth.JWTConfig{SecretKey: "s"}), nil, WizardConfig{}, zerolog.Nop())
	t.Cleanup(svc.Close)

	_, err := svc.GetSession(ctx, "s-loading")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		v, err := svc.GetSession(ctx, "s-loading")
		return err == nil && v.State == wizard.StateReady
	}, 2*time.Second, 5*time.Millisecond)
}

func TestSweepExpiredSessions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, &fakeBackend{})

	started, err := h.svc.StartSession(ctx, wizard.ModeCreate, "")
	require.NoError(t, err)
	id := started.Token.SessionID

	n, err := h.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	h.svc.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	n, err = h.svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 0, h.repo.Len())
	assert.Equal(t, []websocket.EventType{websocket.EventExpired}, h.events.types())

	_, err = h.svc.GetSession(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

func TestStartSessionSweeperRejectsBadSchedule(t *testing.T) {
	h := newHarness(t, &fakeBackend{})
	_, err := StartSessionSweeper(h.svc, "not a schedule", zerolog.Nop())
	assert.Error(t, err)

	c, err := StartSessionSweeper(h.svc, "@every 1h", zerolog.Nop())
	require.NoError(t, err)
	c.Stop()
}
