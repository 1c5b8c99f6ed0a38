package wizard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/yigit/applicant-wizard/internal/app/formclient"
	"github.com/yigit/applicant-wizard/internal/domain"
	"github.com/yigit/applicant-wizard/internal/pkg/apperrors"
)

// Mode tells whether the wizard creates a new record or edits a stored one
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

// Scope selects what Next validates
type Scope string

const (
	ScopeStep   Scope = "step"
	ScopeRecord Scope = "record"
)

// State is the lifecycle of a session's record
type State string

const (
	StateLoading   State = "loading"
	StateReady     State = "ready"
	StateFailed    State = "failed"
	StateSubmitted State = "submitted"
	StateCancelled State = "cancelled"
)

// DefaultDebounce is the settle delay between a passing Next and the advance
const DefaultDebounce = 150 * time.Millisecond

// ErrStaleLoad is returned when a hydration result belongs to a superseded attempt
var ErrStaleLoad = errors.New("stale hydration result")

// Options tune controller behaviour
type Options struct {
	Debounce time.Duration
	Scope    Scope
}

func (o Options) withDefaults() Options {
	if o.Debounce < 0 {
		o.Debounce = 0
	}
	if o.Scope == "" {
		o.Scope = ScopeStep
	}
	return o
}

// Submitter hands a valid record to the backend
type Submitter interface {
	Create(ctx context.Context, r *domain.Record) (formclient.Submitted, error)
	Update(ctx context.Context, id string, r *domain.Record) (formclient.Submitted, error)
}

// Controller is the wizard state machine of one session. It is the only
// writer of its record; all methods are safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	opts       Options
	mode       Mode
	formID     string
	state      State
	loadErr    string
	generation int

	record     *domain.Record
	step       int
	errors     FieldErrors
	touched    mapset.Set[string]
	submitting bool
	pending    bool
	demo       bool
}

// NewCreate starts a create-mode wizard on the default record
func NewCreate(opts Options) *Controller {
	return &Controller{
		opts:    opts.withDefaults(),
		mode:    ModeCreate,
		state:   StateReady,
		record:  domain.NewRecord(),
		errors:  make(FieldErrors),
		touched: mapset.NewSet[string](),
	}
}

// NewEdit starts an edit-mode wizard that waits for Hydrate
func NewEdit(formID string, opts Options) *Controller {
	return &Controller{
		opts:       opts.withDefaults(),
		mode:       ModeEdit,
		formID:     formID,
		state:      StateLoading,
		generation: 1,
		errors:     make(FieldErrors),
		touched:    mapset.NewSet[string](),
	}
}

// Mode returns the wizard mode
func (c *Controller) Mode() Mode { return c.mode }

// FormID returns the edited record id, empty in create mode
func (c *Controller) FormID() string { return c.formID }

// Generation returns the current hydration attempt
func (c *Controller) Generation() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// State returns the lifecycle state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Hydrate installs a fetched record. Results for a closed session or a
// superseded attempt are dropped and reported.
func (c *Controller) Hydrate(generation int, rec domain.Record, demo bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closedLocked() {
		return apperrors.ErrSessionClosed
	}
	if generation != c.generation || c.state != StateLoading {
		return ErrStaleLoad
	}
	r := rec.Clone()
	r.AssignEntryIDs()
	r.EnsureSections()
	c.record = r
	c.demo = demo
	c.state = StateReady
	c.loadErr = ""
	return nil
}

// FailLoad records a failed hydration attempt
func (c *Controller) FailLoad(generation int, cause error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closedLocked() {
		return apperrors.ErrSessionClosed
	}
	if generation != c.generation || c.state != StateLoading {
		return ErrStaleLoad
	}
	c.state = StateFailed
	c.loadErr = cause.Error()
	return nil
}

// Retry moves a failed session back to loading and returns the new attempt
func (c *Controller) Retry() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closedLocked() {
		return 0, apperrors.ErrSessionClosed
	}
	if c.state != StateFailed {
		return 0, apperrors.NewConflictError(fmt.Sprintf("session is %s, only failed sessions can be retried", c.state))
	}
	c.generation++
	c.state = StateLoading
	c.loadErr = ""
	return c.generation, nil
}

func (c *Controller) closedLocked() bool {
	return c.state == StateSubmitted || c.state == StateCancelled
}

// readyLocked guards every editing operation
func (c *Controller) readyLocked() error {
	switch c.state {
	case StateReady:
		return nil
	case StateSubmitted, StateCancelled:
		return apperrors.ErrSessionClosed
	case StateFailed:
		return apperrors.NewCustomError(apperrors.ErrSessionNotReady, "loading the form failed, retry to continue")
	}
	return apperrors.ErrSessionNotReady
}

// FieldResult is the validation outcome of an edited field
type FieldResult struct {
	Path      string       `json:"path"`
	Valid     bool         `json:"valid"`
	Message   string       `json:"message,omitempty"`
	Dependent *FieldResult `json:"dependent,omitempty"`
}

// SetField writes a value, marks the field touched and re-validates it.
// Writing a gating flag also re-validates the field it gates.
func (c *Controller) SetField(rawPath string, value any) (FieldResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return FieldResult{}, err
	}

	p, err := domain.ParsePath(rawPath)
	if err != nil {
		return FieldResult{}, apperrors.NewBadRequestError(err.Error())
	}
	if p.IsSection() || (!p.IsScalar() && p.Field == "") {
		return FieldResult{}, apperrors.NewBadRequestError(fmt.Sprintf("%s is not a field", p))
	}
	if err := c.record.SetValue(p, value); err != nil {
		if errors.Is(err, domain.ErrIndexOutOfRange) {
			return FieldResult{}, apperrors.NewResourceNotFoundError(err.Error())
		}
		return FieldResult{}, apperrors.NewBadRequestError(err.Error())
	}

	c.touched.Add(p.String())
	res := c.revalidateLocked(p)
	if dep, ok := Dependent(p); ok {
		depKey := dep.String()
		if c.touched.Contains(depKey) || c.errors[depKey] != "" {
			d := c.revalidateLocked(dep)
			res.Dependent = &d
		}
	}
	return res, nil
}

func (c *Controller) revalidateLocked(p domain.FieldPath) FieldResult {
	key := p.String()
	msg := ValidateField(c.record, p)
	if msg == "" {
		delete(c.errors, key)
	} else {
		c.errors[key] = msg
	}
	return FieldResult{Path: key, Valid: msg == "", Message: msg}
}

// AddEntry appends a blank entry. The new entry is not validated.
func (c *Controller) AddEntry(kind domain.SectionKind) (int, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return 0, "", err
	}
	sec := c.record.Section(kind)
	e := sec.Append(domain.NewEntryID())
	return sec.Len() - 1, e.EntryID(), nil
}

// RemoveEntry removes one entry under the section's removal policy. A
// rejected removal leaves the section untouched.
func (c *Controller) RemoveEntry(kind domain.SectionKind, index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return err
	}
	if err := c.record.Section(kind).Remove(index); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrEntryRejected, err)
	}
	c.errors.applyRemove(kind, index)

	moves := rekeyAfterRemove(c.touched.ToSlice(), kind, index)
	for from := range moves {
		c.touched.Remove(from)
	}
	for _, to := range moves {
		if to != "" {
			c.touched.Add(to)
		}
	}
	return nil
}

// AdvanceStatus describes what Next did
type AdvanceStatus string

const (
	AdvanceDone    AdvanceStatus = "advanced"
	AdvanceInvalid AdvanceStatus = "invalid"
	AdvanceIgnored AdvanceStatus = "ignored"
)

// Advance is the outcome of Next
type Advance struct {
	Status  AdvanceStatus `json:"status"`
	Step    int           `json:"step"`
	Summary string        `json:"summary,omitempty"`
	Errors  FieldErrors   `json:"errors,omitempty"`
}

// Next validates the configured scope and, when it passes, advances one
// step after the debounce delay. A Next arriving while an advance is
// pending is ignored.
func (c *Controller) Next(ctx context.Context) (Advance, error) {
	c.mu.Lock()
	if err := c.readyLocked(); err != nil {
		c.mu.Unlock()
		return Advance{}, err
	}
	if c.pending {
		step := c.step
		c.mu.Unlock()
		return Advance{Status: AdvanceIgnored, Step: step}, nil
	}
	if c.step >= LastStep {
		c.mu.Unlock()
		return Advance{}, apperrors.NewStepError("already on the last step, submit instead")
	}

	paths := Steps[c.step].Paths(c.record)
	if c.opts.Scope == ScopeRecord {
		paths = RecordPaths(c.record)
	}
	failed := c.validateLocked(paths)
	if len(failed) > 0 {
		out := Advance{Status: AdvanceInvalid, Step: c.step, Errors: failed, Summary: Summarize(failed.Messages(c.record))}
		c.mu.Unlock()
		return out, nil
	}
	c.pending = true
	delay := c.opts.Debounce
	c.mu.Unlock()

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
		c.mu.Lock()
		c.pending = false
		c.mu.Unlock()
		return Advance{}, ctx.Err()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	if err := c.readyLocked(); err != nil {
		return Advance{}, err
	}
	if c.step < LastStep {
		c.step++
	}
	return Advance{Status: AdvanceDone, Step: c.step}, nil
}

// validateLocked marks the paths touched, refreshes their errors and
// returns the failing subset.
func (c *Controller) validateLocked(paths []domain.FieldPath) FieldErrors {
	failed := make(FieldErrors)
	for _, p := range paths {
		key := p.String()
		c.touched.Add(key)
		if msg := ValidateField(c.record, p); msg != "" {
			c.errors[key] = msg
			failed[key] = msg
		} else {
			delete(c.errors, key)
		}
	}
	return failed
}

// Back moves one step back without validating
func (c *Controller) Back() (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.readyLocked(); err != nil {
		return 0, err
	}
	if c.step > FirstStep {
		c.step--
	}
	return c.step, nil
}

// SubmitStatus describes what Submit did
type SubmitStatus string

const (
	SubmitSucceeded SubmitStatus = "submitted"
	SubmitInvalid   SubmitStatus = "invalid"
	SubmitRejected  SubmitStatus = "rejected"
	SubmitFailed    SubmitStatus = "failed"
)

// SubmitOutcome is the result of Submit
type SubmitOutcome struct {
	Status    SubmitStatus `json:"status"`
	FormID    string       `json:"formId,omitempty"`
	Redirect  string       `json:"redirect,omitempty"`
	Message   string       `json:"message"`
	Summary   string       `json:"summary,omitempty"`
	Steps     []int        `json:"steps,omitempty"`
	Errors    FieldErrors  `json:"errors,omitempty"`
	Simulated bool         `json:"simulated,omitempty"`
}

// Submit normalises and validates the whole record, then hands it to sub.
// An invalid record never reaches the backend.
func (c *Controller) Submit(ctx context.Context, sub Submitter) (SubmitOutcome, error) {
	c.mu.Lock()
	if err := c.readyLocked(); err != nil {
		c.mu.Unlock()
		return SubmitOutcome{}, err
	}
	if c.step != LastStep {
		c.mu.Unlock()
		return SubmitOutcome{}, apperrors.NewStepError("submit is only available on the last step")
	}
	if c.submitting {
		c.mu.Unlock()
		return SubmitOutcome{}, apperrors.ErrSubmitInProgress
	}

	c.record.Normalize()
	failed := c.validateLocked(RecordPaths(c.record))
	if len(failed) > 0 {
		out := SubmitOutcome{
			Status:  SubmitInvalid,
			Message: "Please fix the following errors:",
			Summary: Summarize(failed.Messages(c.record)),
			Steps:   stepsOf(failed),
			Errors:  failed,
		}
		c.mu.Unlock()
		return out, nil
	}

	c.submitting = true
	snapshot := c.record.Clone()
	mode, formID := c.mode, c.formID
	c.mu.Unlock()

	var (
		res formclient.Submitted
		err error
	)
	if mode == ModeEdit {
		res, err = sub.Update(ctx, formID, snapshot)
	} else {
		res, err = sub.Create(ctx, snapshot)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitting = false
	if err != nil {
		return c.failureLocked(err), nil
	}

	if c.state == StateReady {
		c.state = StateSubmitted
	}
	out := SubmitOutcome{Status: SubmitSucceeded, FormID: res.ID, Message: res.Message, Simulated: res.Simulated}
	out.Redirect = "/forms"
	if res.ID != "" {
		out.Redirect = "/forms/" + res.ID
	}
	if out.Message == "" {
		out.Message = "Form submitted successfully!"
		if mode == ModeEdit {
			out.Message = "Form updated successfully!"
		}
	}
	return out, nil
}

// failureLocked maps a backend failure onto the session. Structured field
// errors land on their fields; the user stays on the current step.
func (c *Controller) failureLocked(err error) SubmitOutcome {
	var verr *formclient.ValidationError
	if !errors.As(err, &verr) {
		if errors.Is(err, apperrors.ErrBackendUnavailable) {
			return SubmitOutcome{Status: SubmitFailed, Message: "Could not reach the form service. Your changes were kept, please try again."}
		}
		return SubmitOutcome{Status: SubmitFailed, Message: err.Error()}
	}

	mapped := make(FieldErrors)
	var lines []string
	for _, fe := range verr.Fields {
		lines = append(lines, fmt.Sprintf("%s: %s", Humanize(fe.Path()), fe.Message))
		p, perr := domain.ParseSegments(fe.Loc)
		if perr != nil || c.record.Resolve(p) != nil {
			continue
		}
		key := p.String()
		c.errors[key] = fe.Message
		c.touched.Add(key)
		mapped[key] = fe.Message
	}

	out := SubmitOutcome{Status: SubmitRejected, Summary: Summarize(lines), Errors: mapped, Steps: stepsOf(mapped)}
	switch {
	case len(mapped) == 0:
		out.Message = "Form submission failed!"
		if verr.Message != "" {
			out.Message = verr.Message
		}
	case verr.Structured:
		out.Message = "Please fix the following errors:"
	default:
		out.Message = "Please fix the validation errors and try again."
	}
	return out
}

func stepsOf(fe FieldErrors) []int {
	seen := make(map[int]bool)
	var steps []int
	for k := range fe {
		p, err := domain.ParsePath(k)
		if err != nil {
			continue
		}
		if s, ok := StepOf(p); ok && !seen[s] {
			seen[s] = true
			steps = append(steps, s)
		}
	}
	sort.Ints(steps)
	return steps
}

// Cancel discards the session and returns where to go next
func (c *Controller) Cancel() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closedLocked() {
		c.state = StateCancelled
	}
	return c.cancelRedirectLocked()
}

func (c *Controller) cancelRedirectLocked() string {
	if c.mode == ModeEdit && c.formID != "" {
		return "/forms/" + c.formID
	}
	return "/forms"
}
