package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/applicant-wizard/internal/app/formclient"
	"github.com/yigit/applicant-wizard/internal/app/models/dto"
	"github.com/yigit/applicant-wizard/internal/app/repositories"
	"github.com/yigit/applicant-wizard/internal/app/wizard"
	"github.com/yigit/applicant-wizard/internal/domain"
	"github.com/yigit/applicant-wizard/internal/pkg/apperrors"
	"github.com/yigit/applicant-wizard/internal/pkg/auth"
	"github.com/yigit/applicant-wizard/internal/pkg/keycase"
	"github.com/yigit/applicant-wizard/internal/pkg/websocket"
)

const (
	defaultLoadTimeout = 15 * time.Second
	persistTimeout     = 5 * time.Second
)

// WizardConfig tunes wizard sessions
type WizardConfig struct {
	Debounce    time.Duration
	Scope       wizard.Scope
	LoadTimeout time.Duration
}

// FormBackend loads records for edit sessions and accepts submissions
type FormBackend interface {
	wizard.Submitter
	Get(ctx context.Context, id string) (formclient.Fetched, error)
}

// EventPublisher fans session events out to watchers
type EventPublisher interface {
	Publish(event websocket.Event)
}

// StartedSession is a new session with its signed token
type StartedSession struct {
	Token auth.SessionToken
	View  wizard.View
}

// WizardService defines wizard session operations
type WizardService interface {
	StartSession(ctx context.Context, mode wizard.Mode, formID string) (*StartedSession, error)
	GetSession(ctx context.Context, sessionID string) (wizard.View, error)
	RetryLoad(ctx context.Context, sessionID string) (wizard.View, error)
	SetField(ctx context.Context, sessionID, path string, value interface{}) (wizard.FieldResult, error)
	AddEntry(ctx context.Context, sessionID, section string) (*dto.EntryResponse, error)
	RemoveEntry(ctx context.Context, sessionID, section string, index int) (wizard.View, error)
	Next(ctx context.Context, sessionID string) (wizard.Advance, error)
	Back(ctx context.Context, sessionID string) (int, error)
	Submit(ctx context.Context, sessionID string) (wizard.SubmitOutcome, error)
	Cancel(ctx context.Context, sessionID string) (string, error)
	SweepExpired(ctx context.Context) (int, error)
	Close()
}

// liveSession is a session held in memory with its own lifetime context.
// Background work for the session stops when ctx is cancelled.
type liveSession struct {
	id        string
	ctrl      *wizard.Controller
	ctx       context.Context
	cancel    context.CancelFunc
	createdAt time.Time
	expiresAt time.Time

	saveMu sync.Mutex
}

type wizardServiceImpl struct {
	repo    repositories.SessionRepository
	backend FormBackend
	tokens  *auth.JWTService
	events  EventPublisher
	cfg     WizardConfig
	logger  zerolog.Logger

	root     context.Context
	stop     context.CancelFunc
	mu       sync.Mutex
	sessions map[string]*liveSession
	wg       sync.WaitGroup
	now      func() time.Time
}

// NewWizardService creates a new wizard service instance
func NewWizardService(
	repo repositories.SessionRepository,
	backend FormBackend,
	tokens *auth.JWTService,
	events EventPublisher,
	cfg WizardConfig,
	logger zerolog.Logger,
) WizardService {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = defaultLoadTimeout
	}
	root, stop := context.WithCancel(context.Background())
	return &wizardServiceImpl{
		repo:     repo,
		backend:  backend,
		tokens:   tokens,
		events:   events,
		cfg:      cfg,
		logger:   logger.With().Str("service", "wizard").Logger(),
		root:     root,
		stop:     stop,
		sessions: make(map[string]*liveSession),
		now:      time.Now,
	}
}

func (s *wizardServiceImpl) options() wizard.Options {
	return wizard.Options{Debounce: s.cfg.Debounce, Scope: s.cfg.Scope}
}

func (s *wizardServiceImpl) newLive(id string, ctrl *wizard.Controller, createdAt, expiresAt time.Time) *liveSession {
	ctx, cancel := context.WithCancel(s.root)
	return &liveSession{id: id, ctrl: ctrl, ctx: ctx, cancel: cancel, createdAt: createdAt, expiresAt: expiresAt}
}

// StartSession opens a create or edit session. Edit sessions start loading
// the record in the background and report state "loading" until it lands.
func (s *wizardServiceImpl) StartSession(ctx context.Context, mode wizard.Mode, formID string) (*StartedSession, error) {
	formID = strings.TrimSpace(formID)

	var ctrl *wizard.Controller
	switch mode {
	case wizard.ModeCreate:
		ctrl = wizard.NewCreate(s.options())
	case wizard.ModeEdit:
		if formID == "" {
			return nil, apperrors.NewBadRequestError("formId is required in edit mode")
		}
		ctrl = wizard.NewEdit(formID, s.options())
	default:
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown wizard mode %q", mode))
	}

	id := auth.NewSessionID()
	token, err := s.tokens.GenerateSessionToken(id, string(mode))
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	ls := s.newLive(id, ctrl, s.now(), token.ExpiresAt)
	rec := &repositories.SessionRecord{ID: id, Snapshot: ctrl.Snapshot(), CreatedAt: ls.createdAt, ExpiresAt: ls.expiresAt}
	if err := s.repo.Create(ctx, rec); err != nil {
		ls.cancel()
		return nil, fmt.Errorf("failed to store session: %w", err)
	}

	s.mu.Lock()
	s.sessions[id] = ls
	s.mu.Unlock()

	log := s.logger.With().Str("sessionID", id).Str("mode", string(mode)).Logger()
	log.Info().Str("formID", formID).Msg("Wizard session started")

	if mode == wizard.ModeEdit {
		s.startHydration(ls, ctrl.Generation())
	}
	return &StartedSession{Token: token, View: ctrl.View()}, nil
}

// session resolves a live session, restoring it from the repository when
// this process has not seen it yet.
func (s *wizardServiceImpl) session(ctx context.Context, id string) (*liveSession, error) {
	now := s.now()

	s.mu.Lock()
	ls, ok := s.sessions[id]
	if ok && !now.Before(ls.expiresAt) {
		delete(s.sessions, id)
		s.mu.Unlock()
		s.expire(ls)
		return nil, apperrors.ErrSessionNotFound
	}
	s.mu.Unlock()
	if ok {
		return ls, nil
	}

	rec, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	restored := s.newLive(id, wizard.Restore(rec.Snapshot, s.options()), rec.CreatedAt, rec.ExpiresAt)

	s.mu.Lock()
	if existing, ok := s.sessions[id]; ok {
		s.mu.Unlock()
		restored.cancel()
		return existing, nil
	}
	s.sessions[id] = restored
	s.mu.Unlock()

	s.logger.Debug().Str("sessionID", id).Str("state", string(restored.ctrl.State())).Msg("Wizard session restored")
	if restored.ctrl.State() == wizard.StateLoading {
		s.startHydration(restored, restored.ctrl.Generation())
	}
	return restored, nil
}

// persist saves the latest snapshot. Snapshots are taken under saveMu so a
// slower save never overwrites a newer one.
func (s *wizardServiceImpl) persist(ctx context.Context, ls *liveSession) error {
	ls.saveMu.Lock()
	defer ls.saveMu.Unlock()
	err := s.repo.Save(ctx, &repositories.SessionRecord{
		ID:        ls.id,
		Snapshot:  ls.ctrl.Snapshot(),
		CreatedAt: ls.createdAt,
		ExpiresAt: ls.expiresAt,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("sessionID", ls.id).Msg("Failed to persist wizard session")
		return fmt.Errorf("failed to persist session: %w", err)
	}
	return nil
}

func (s *wizardServiceImpl) publish(ls *liveSession, eventType websocket.EventType, message string) {
	if s.events == nil {
		return
	}
	v := ls.ctrl.View()
	s.events.Publish(websocket.Event{
		Type:      eventType,
		SessionID: ls.id,
		State:     string(v.State),
		Step:      v.Step,
		Message:   message,
	})
}

func (s *wizardServiceImpl) startHydration(ls *liveSession, generation int) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.hydrate(ls, generation)
	}()
}

// hydrate fetches the edited record for one load attempt. Results for a
// closed session or a superseded attempt are dropped by the controller.
func (s *wizardServiceImpl) hydrate(ls *liveSession, generation int) {
	log := s.logger.With().Str("sessionID", ls.id).Str("formID", ls.ctrl.FormID()).Int("attempt", generation).Logger()

	ctx, cancel := context.WithTimeout(ls.ctx, s.cfg.LoadTimeout)
	defer cancel()

	fetched, err := s.backend.Get(ctx, ls.ctrl.FormID())

	eventType, message := websocket.EventHydrated, ""
	if err != nil {
		if ferr := ls.ctrl.FailLoad(generation, err); ferr != nil {
			log.Debug().Err(ferr).Msg("Discarding load failure")
			return
		}
		log.Warn().Err(err).Msg("Loading form failed")
		eventType, message = websocket.EventLoadFailed, err.Error()
	} else {
		if herr := ls.ctrl.Hydrate(generation, fetched.Record.Record, fetched.Demo); herr != nil {
			log.Debug().Err(herr).Msg("Discarding loaded form")
			return
		}
		log.Info().Bool("demo", fetched.Demo).Msg("Form loaded into session")
	}

	saveCtx, cancelSave := context.WithTimeout(context.Background(), persistTimeout)
	defer cancelSave()
	_ = s.persist(saveCtx, ls)
	s.publish(ls, eventType, message)
}

// GetSession returns the session view
func (s *wizardServiceImpl) GetSession(ctx context.Context, sessionID string) (wizard.View, error) {
	ls, err := s.session(ctx, sessionID)
	if err != nil {
		return wizard.View{}, err
	}
	return ls.ctrl.View(), nil
}

// RetryLoad restarts loading after a failed attempt
func (s *wizardServiceImpl) RetryLoad(ctx context.Context, sessionID string) (wizard.View, error) {
	ls, err := s.session(ctx, sessionID)
	if err != nil {
		return wizard.View{}, err
	}
	generation, err := ls.ctrl.Retry()
	if err != nil {
		return wizard.View{}, err
	}
	if err := s.persist(ctx, ls); err != nil {
		return wizard.View{}, err
	}
	s.startHydration(ls, generation)
	return ls.ctrl.View(), nil
}

// SetField writes one field and returns its validation result
func (s *wizardServiceImpl) SetField(ctx context.Context, sessionID, path string, value interface{}) (wizard.FieldResult, error) {
	ls, err := s.session(ctx, sessionID)
	if err != nil {
		return wizard.FieldResult{}, err
	}
	res, err := ls.ctrl.SetField(path, value)
	if err != nil {
		return wizard.FieldResult{}, err
	}
	if err := s.persist(ctx, ls); err != nil {
		return wizard.FieldResult{}, err
	}
	return res, nil
}

// parseSection accepts section names in either key case
func parseSection(section string) (domain.SectionKind, error) {
	kind, err := domain.ParseSectionKind(keycase.ToCamel(section))
	if err != nil {
		return "", apperrors.NewBadRequestError(err.Error())
	}
	return kind, nil
}

// AddEntry appends a blank entry to a repeated section
func (s *wizardServiceImpl) AddEntry(ctx context.Context, sessionID, section string) (*dto.EntryResponse, error) {
	kind, err := parseSection(section)
	if err != nil {
		return nil, err
	}
	ls, err := s.session(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	index, id, err := ls.ctrl.AddEntry(kind)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, ls); err != nil {
		return nil, err
	}
	return &dto.EntryResponse{Section: string(kind), Index: index, ID: id}, nil
}

// RemoveEntry removes an entry under the section's removal policy
func (s *wizardServiceImpl) RemoveEntry(ctx context.Context, sessionID, section string, index int) (wizard.View, error) {
	kind, err := parseSection(section)
	if err != nil {
		return wizard.View{}, err
	}
	ls, err := s.session(ctx, sessionID)
	if err != nil {
		return wizard.View{}, err
	}
	if err := ls.ctrl.RemoveEntry(kind, index); err != nil {
		return wizard.View{}, err
	}
	if err := s.persist(ctx, ls); err != nil {
		return wizard.View{}, err
	}
	return ls.ctrl.View(), nil
}

// Next validates and advances one step
func (s *wizardServiceImpl) Next(ctx context.Context, sessionID string) (wizard.Advance, error) {
	ls, err := s.session(ctx, sessionID)
	if err != nil {
		return wizard.Advance{}, err
	}
	adv, err := ls.ctrl.Next(ctx)
	if err != nil {
		return wizard.Advance{}, err
	}
	if adv.Status == wizard.AdvanceIgnored {
		return adv, nil
	}
	if err := s.persist(ctx, ls); err != nil {
		return wizard.Advance{}, err
	}
	if adv.Status == wizard.AdvanceDone {
		s.publish(ls, websocket.EventAdvanced, "")
	}
	return adv, nil
}

// Back moves one step back
func (s *wizardServiceImpl) Back(ctx context.Context, sessionID string) (int, error) {
	ls, err := s.session(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	step, err := ls.ctrl.Back()
	if err != nil {
		return 0, err
	}
	if err := s.persist(ctx, ls); err != nil {
		return 0, err
	}
	return step, nil
}

// Submit validates the record and sends it to the backend
func (s *wizardServiceImpl) Submit(ctx context.Context, sessionID string) (wizard.SubmitOutcome, error) {
	ls, err := s.session(ctx, sessionID)
	if err != nil {
		return wizard.SubmitOutcome{}, err
	}
	out, err := ls.ctrl.Submit(ctx, s.backend)
	if err != nil {
		return wizard.SubmitOutcome{}, err
	}

	log := s.logger.With().Str("sessionID", sessionID).Str("status", string(out.Status)).Logger()
	switch out.Status {
	case wizard.SubmitSucceeded:
		log.Info().Str("formID", out.FormID).Bool("simulated", out.Simulated).Msg("Form submitted")
	case wizard.SubmitInvalid:
		log.Debug().Ints("steps", out.Steps).Msg("Submission blocked by validation")
	default:
		log.Warn().Str("message", out.Message).Msg("Submission failed")
	}

	if err := s.persist(ctx, ls); err != nil {
		return wizard.SubmitOutcome{}, err
	}
	if out.Status == wizard.SubmitSucceeded {
		ls.cancel()
		s.publish(ls, websocket.EventSubmitted, out.Message)
	}
	return out, nil
}

// Cancel discards the session and returns the redirect target
func (s *wizardServiceImpl) Cancel(ctx context.Context, sessionID string) (string, error) {
	ls, err := s.session(ctx, sessionID)
	if err != nil {
		return "", err
	}
	redirect := ls.ctrl.Cancel()
	ls.cancel()

	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if err := s.repo.Delete(ctx, sessionID); err != nil {
		s.logger.Error().Err(err).Str("sessionID", sessionID).Msg("Failed to delete cancelled session")
		return "", fmt.Errorf("failed to delete session: %w", err)
	}
	s.publish(ls, websocket.EventCancelled, "")
	s.logger.Info().Str("sessionID", sessionID).Msg("Wizard session cancelled")
	return redirect, nil
}

// expire closes a session that outlived its deadline
func (s *wizardServiceImpl) expire(ls *liveSession) {
	ls.ctrl.Cancel()
	ls.cancel()
	s.publish(ls, websocket.EventExpired, "session expired")
}

// SweepExpired drops every expired session from memory and the repository
func (s *wizardServiceImpl) SweepExpired(ctx context.Context) (int, error) {
	now := s.now()

	ids, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	expired := make(map[string]bool, len(ids))
	for _, id := range ids {
		expired[id] = true
	}

	var dropped []*liveSession
	s.mu.Lock()
	for id, ls := range s.sessions {
		if expired[id] || !now.Before(ls.expiresAt) {
			expired[id] = true
			dropped = append(dropped, ls)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, ls := range dropped {
		s.expire(ls)
	}
	if len(expired) > 0 {
		s.logger.Info().Int("count", len(expired)).Msg("Expired wizard sessions swept")
	}
	return len(expired), nil
}

// Close stops background loads and waits for them to finish
func (s *wizardServiceImpl) Close() {
	s.stop()
	s.wg.Wait()
}

