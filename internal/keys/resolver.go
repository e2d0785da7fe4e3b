package keys

import (
	"time"

	"github.com/famish99/mpdc/internal/mpdlog"
	"github.com/famish99/mpdc/internal/scheduler"
)

// Mode selects which trie and timeout duration the resolver consults.
type Mode int

const (
	ModeNormal Mode = iota
	ModeInsert
)

// Sink receives the resolver's two possible outputs. Implementations
// must not block — the resolver is invoked from the main event loop
// and its side effects are expected to be sequenced onto the main
// event channel.
type Sink interface {
	ActionResolved(actions []Action)
	InsertModeFlush(actions []Action, buffered KeySequence)
}

// Scheduler is the subset of scheduler.Scheduler the resolver needs,
// parameterised so tests can supply a fake.
type Scheduler interface {
	ScheduleReplace(id string, runAt time.Time, cb func())
	Cancel(id string)
}

// schedulerAdapter adapts a *scheduler.Scheduler[Args] to Scheduler by
// wrapping each callback in a func(Args) that ignores the shared Args
// value, so the resolver's callback signature stays argument-free
// regardless of what the rest of the application threads through the
// scheduler.
type schedulerAdapter[Args any] struct {
	sched *scheduler.Scheduler[Args]
	args  Args
}

// NewSchedulerAdapter wraps a concrete Scheduler for use by a Resolver.
func NewSchedulerAdapter[Args any](sched *scheduler.Scheduler[Args]) Scheduler {
	return &schedulerAdapter[Args]{sched: sched}
}

func (a *schedulerAdapter[Args]) ScheduleReplace(id string, runAt time.Time, cb func()) {
	a.sched.ScheduleReplace(id, runAt, func(Args) { cb() })
}

func (a *schedulerAdapter[Args]) Cancel(id string) { a.sched.Cancel(id) }

const timeoutJobID = "keys.resolver.timeout"

// Resolver accepts a stream of keys and, per the current Mode, emits
// resolved actions or an insert-mode flush through Sink. It holds no
// lock; callers must only invoke it from the thread that owns the
// mode and buffer (the main event loop).
type Resolver struct {
	normalRoot *KeyTreeNode
	insertRoot *KeyTreeNode

	normalTimeout time.Duration
	insertTimeout time.Duration

	sched Scheduler
	now   func() time.Time

	buffer KeySequence
	mode   Mode
}

// NewResolver builds a resolver from the two mode tries. Timeouts
// default to 500ms per the dispatch algorithm's stated default.
func NewResolver(normalRoot, insertRoot *KeyTreeNode, sched Scheduler) *Resolver {
	return &Resolver{
		normalRoot:    normalRoot,
		insertRoot:    insertRoot,
		normalTimeout: 500 * time.Millisecond,
		insertTimeout: 500 * time.Millisecond,
		sched:         sched,
		now:           time.Now,
	}
}

// SetTimeouts overrides the per-mode disambiguation timeout.
func (r *Resolver) SetTimeouts(normal, insert time.Duration) {
	r.normalTimeout = normal
	r.insertTimeout = insert
}

// SetMode switches between normal and insert-mode dispatch tables.
// Switching mode does not itself flush or clear the buffer; callers
// that want a clean slate across a mode switch should do so
// explicitly.
func (r *Resolver) SetMode(m Mode) { r.mode = m }

// Buffer returns the keys accumulated since the last dispatch.
func (r *Resolver) Buffer() KeySequence { return r.buffer }

func (r *Resolver) rootForMode() *KeyTreeNode {
	if r.mode == ModeInsert {
		return r.insertRoot
	}
	return r.normalRoot
}

func (r *Resolver) timeoutForMode() time.Duration {
	if r.mode == ModeInsert {
		return r.insertTimeout
	}
	return r.normalTimeout
}

// HandleKey runs the dispatch algorithm for one incoming key.
func (r *Resolver) HandleKey(k Key, sink Sink) {
	r.sched.Cancel(timeoutJobID)
	r.buffer = append(r.buffer, k)

	outcome, actions := Traverse(r.rootForMode(), r.buffer)

	switch r.mode {
	case ModeNormal:
		switch outcome {
		case OutcomeExact:
			sink.ActionResolved(actions)
			r.buffer = nil
		case OutcomeAmbiguous, OutcomePrefix:
			r.scheduleTimeout(sink)
		case OutcomeMismatch:
			r.buffer = nil
		}
	case ModeInsert:
		switch outcome {
		case OutcomeExact:
			sink.InsertModeFlush(actions, r.takeBuffer())
		case OutcomeAmbiguous, OutcomePrefix:
			r.scheduleTimeout(sink)
		case OutcomeMismatch:
			sink.InsertModeFlush(nil, r.takeBuffer())
		}
	}
}

// HandleTimeout runs when the scheduler's disambiguation timer fires.
// A stray timeout against an already-empty buffer (e.g. raced by a
// key event that resolved first) is a silent no-op.
func (r *Resolver) HandleTimeout(sink Sink) {
	mpdlog.Logger.Trace().Str("buffer", r.buffer.String()).Msg("key sequence timeout")
	if len(r.buffer) == 0 {
		return
	}

	outcome, actions := Traverse(r.rootForMode(), r.buffer)
	switch r.mode {
	case ModeNormal:
		switch outcome {
		case OutcomeExact, OutcomeAmbiguous:
			sink.ActionResolved(actions)
		case OutcomePrefix, OutcomeMismatch:
		}
	case ModeInsert:
		switch outcome {
		case OutcomeExact, OutcomeAmbiguous:
			sink.InsertModeFlush(actions, r.buffer)
		case OutcomePrefix, OutcomeMismatch:
			sink.InsertModeFlush(nil, r.buffer)
		}
	}
	r.buffer = nil
}

func (r *Resolver) scheduleTimeout(sink Sink) {
	timeout := r.timeoutForMode()
	r.sched.ScheduleReplace(timeoutJobID, r.now().Add(timeout), func() {
		r.HandleTimeout(sink)
	})
}

func (r *Resolver) takeBuffer() KeySequence {
	buf := r.buffer
	r.buffer = nil
	return buf
}
