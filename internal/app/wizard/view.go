package wizard

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/yigit/applicant-wizard/internal/domain"
)

// View is a read-only picture of a session
type View struct {
	Mode       Mode                          `json:"mode"`
	FormID     string                        `json:"formId,omitempty"`
	State      State                         `json:"state"`
	LoadError  string                        `json:"loadError,omitempty"`
	Step       int                           `json:"step"`
	StepName   string                        `json:"stepName"`
	TotalSteps int                           `json:"totalSteps"`
	Record     *domain.Record                `json:"record,omitempty"`
	Errors     FieldErrors                   `json:"errors"`
	Summary    string                        `json:"summary,omitempty"`
	Touched    []string                      `json:"touched"`
	Removable  map[domain.SectionKind][]bool `json:"removable,omitempty"`
	Submitting bool                          `json:"submitting"`
	Pending    bool                          `json:"pending"`
	Demo       bool                          `json:"demo"`
}

// View renders the current session state
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		Mode:       c.mode,
		FormID:     c.formID,
		State:      c.state,
		LoadError:  c.loadErr,
		Step:       c.step,
		StepName:   Steps[c.step].Name,
		TotalSteps: len(Steps),
		Errors:     c.errors.Clone(),
		Touched:    c.touched.ToSlice(),
		Submitting: c.submitting,
		Pending:    c.pending,
		Demo:       c.demo,
	}
	sort.Strings(v.Touched)
	if c.record != nil {
		v.Record = c.record.Clone()
		v.Summary = Summarize(c.errors.Messages(c.record))
		v.Removable = make(map[domain.SectionKind][]bool, len(domain.SectionKinds))
		for _, kind := range domain.SectionKinds {
			sec := c.record.Section(kind)
			flags := make([]bool, sec.Len())
			for i := range flags {
				flags[i] = sec.CanRemove(i) == nil
			}
			v.Removable[kind] = flags
		}
	}
	return v
}

// Snapshot is the persistable form of a session
type Snapshot struct {
	Mode       Mode           `json:"mode"`
	FormID     string         `json:"formId,omitempty"`
	State      State          `json:"state"`
	LoadError  string         `json:"loadError,omitempty"`
	Generation int            `json:"generation"`
	Step       int            `json:"step"`
	Record     *domain.Record `json:"record,omitempty"`
	Errors     FieldErrors    `json:"errors,omitempty"`
	Touched    []string       `json:"touched,omitempty"`
	Demo       bool           `json:"demo,omitempty"`
}

// Snapshot captures the session. In-flight flags are not persisted.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{
		Mode:       c.mode,
		FormID:     c.formID,
		State:      c.state,
		LoadError:  c.loadErr,
		Generation: c.generation,
		Step:       c.step,
		Errors:     c.errors.Clone(),
		Touched:    c.touched.ToSlice(),
		Demo:       c.demo,
	}
	sort.Strings(s.Touched)
	if c.record != nil {
		s.Record = c.record.Clone()
	}
	return s
}

// Restore rebuilds a controller from a snapshot
func Restore(s Snapshot, opts Options) *Controller {
	c := &Controller{
		opts:       opts.withDefaults(),
		mode:       s.Mode,
		formID:     s.FormID,
		state:      s.State,
		loadErr:    s.LoadError,
		generation: s.Generation,
		step:       s.Step,
		errors:     make(FieldErrors),
		touched:    mapset.NewSet[string](s.Touched...),
		demo:       s.Demo,
	}
	if c.step < FirstStep || c.step > LastStep {
		c.step = FirstStep
	}
	for k, v := range s.Errors {
		c.errors[k] = v
	}
	if s.Record != nil {
		c.record = s.Record.Clone()
		c.record.EnsureSections()
	} else if c.state == StateReady {
		c.record = domain.NewRecord()
	}
	return c
}

// Clone returns a snapshot sharing no mutable state with s
func (s Snapshot) Clone() Snapshot {
	out := s
	out.Errors = s.Errors.Clone()
	out.Touched = append([]string(nil), s.Touched...)
	if s.Record != nil {
		out.Record = s.Record.Clone()
	}
	return out
}
