// Package session owns the live case model. Every mutation is serialized,
// committed in memory, then saved before the call returns.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ppiankov/casefile/internal/casemodel"
	"github.com/ppiankov/casefile/internal/logger"
	"github.com/ppiankov/casefile/internal/model"
	"github.com/ppiankov/casefile/internal/persist"
)

var (
	// ErrStaleTicket means the case was reset or replaced after the ticket was taken
	ErrStaleTicket = errors.New("analysis discarded: case changed since the request started")

	// ErrSectionHeld means a section could not be read at open and is not
	// written until a reset or replace, so stored data is never overwritten
	ErrSectionHeld = errors.New("section not saved: it could not be read when the case was opened")
)

// Notifier receives failures and informational notices
type Notifier interface {
	Notify(model.Event)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(model.Event)

// Notify calls f(ev)
func (f NotifierFunc) Notify(ev model.Event) { f(ev) }

// Ticket identifies the case generation a long-running request started against
type Ticket struct {
	generation uint64
}

// Mutation derives the next model from the current one
type Mutation func(casemodel.Model) (casemodel.Model, []model.Event, error)

// Session is the single owner of the case model
type Session struct {
	mu         sync.Mutex
	current    casemodel.Model
	generation uint64
	held       map[string]bool // sections whose stored value could not be read

	persist *persist.Adapter
	notify  Notifier
	log     *logger.Logger
	now     func() time.Time
}

// Options configures a session
type Options struct {
	Logger   *logger.Logger
	Notifier Notifier
	Now      func() time.Time
}

// Open loads the persisted case and board, repairing whatever does not hold
// together. Load problems are reported as events; the session always opens.
// A section the store could not read is held: the session works on defaults
// for it but never saves it until Reset or Replace.
func Open(ctx context.Context, adapter *persist.Adapter, opts Options) (*Session, []model.Event) {
	s := &Session{
		held:    map[string]bool{},
		persist: adapter,
		notify:  opts.Notifier,
		log:     opts.Logger,
		now:     opts.Now,
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	if s.notify == nil {
		s.notify = NotifierFunc(func(model.Event) {})
	}
	if s.now == nil {
		s.now = time.Now
	}

	var events []model.Event
	caseData, err := persist.Load(ctx, adapter, persist.SectionCase, model.DefaultCase())
	if err != nil {
		events = append(events, model.EventFromError(err))
		s.holdIfUnread(persist.SectionCase, err)
	}
	board, err := persist.Load(ctx, adapter, persist.SectionBoard, model.DefaultBoard())
	if err != nil {
		events = append(events, model.EventFromError(err))
		s.holdIfUnread(persist.SectionBoard, err)
	}

	loaded, cleared := casemodel.Model{Case: caseData, Board: board}.Reconcile()
	s.current = loaded
	events = append(events, cleared...)

	for _, ev := range events {
		s.log.Warn("case loaded with issues", "kind", ev.Kind, "section", ev.Section, "message", ev.Message)
		s.notify.Notify(ev)
	}
	return s, events
}

// Snapshot returns a deep copy of the current model
func (s *Session) Snapshot() casemodel.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.Clone()
}

// Ticket captures the current generation for a request that will merge later
func (s *Session) Ticket() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Ticket{generation: s.generation}
}

// Now returns the session clock
func (s *Session) Now() time.Time {
	return s.now()
}

// Update applies fn and persists the result. When fn fails nothing changes.
// When saving fails the in-memory change stays and the failure is returned.
func (s *Session) Update(ctx context.Context, fn Mutation) error {
	s.mu.Lock()
	next, events, err := fn(s.current)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = next
	saveErr := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(events, saveErr)
	return saveErr
}

// MergeAnalysis applies a normalized analysis unless the ticket is stale
func (s *Session) MergeAnalysis(ctx context.Context, t Ticket, result *model.AnalysisResult) ([]model.Event, error) {
	s.mu.Lock()
	if t.generation != s.generation {
		s.mu.Unlock()
		s.log.Info("discarding stale analysis", "ticket", t.generation)
		return nil, ErrStaleTicket
	}
	next, events, err := s.current.ApplyAnalysis(result)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.current = next
	saveErr := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(events, saveErr)
	return events, saveErr
}

// Reset discards the case and starts over; outstanding tickets become stale
func (s *Session) Reset(ctx context.Context) error {
	return s.Replace(ctx, casemodel.New())
}

// Replace installs m (repaired as needed); outstanding tickets become stale.
// Held sections are released since the whole case is being overwritten.
func (s *Session) Replace(ctx context.Context, m casemodel.Model) error {
	next, events := m.Reconcile()

	s.mu.Lock()
	s.current = next
	s.generation++
	s.held = map[string]bool{}
	saveErr := s.saveLocked(ctx)
	s.mu.Unlock()

	s.emit(events, saveErr)
	return saveErr
}

// Held reports whether a section is held after a failed read
func (s *Session) Held(section string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.held[section]
}

func (s *Session) holdIfUnread(section string, err error) {
	if model.KindOf(err) == model.FailureReadFailed {
		s.held[section] = true
	}
}

// saveLocked writes case then board; both are attempted even if the first fails
func (s *Session) saveLocked(ctx context.Context) error {
	return errors.Join(
		s.saveSection(ctx, persist.SectionCase, s.current.Case),
		s.saveSection(ctx, persist.SectionBoard, s.current.Board),
	)
}

func (s *Session) saveSection(ctx context.Context, section string, v any) error {
	if s.held[section] {
		return &model.Failure{
			Kind:    model.FailureWriteFailed,
			Section: section,
			Message: "reopen the case once the store is reachable, or reset it",
			Err:     ErrSectionHeld,
		}
	}
	return s.persist.Save(ctx, section, v)
}

func (s *Session) emit(events []model.Event, saveErr error) {
	for _, ev := range events {
		s.log.Info("reference cleared", "section", ev.Section, "message", ev.Message, "data", ev.Data)
		s.notify.Notify(ev)
	}
	if saveErr == nil {
		return
	}
	for _, err := range unjoin(saveErr) {
		ev := model.EventFromError(err)
		s.log.Error("save failed", "kind", ev.Kind, "section", ev.Section, "error", err)
		s.notify.Notify(ev)
	}
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
