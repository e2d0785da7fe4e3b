// Package scheduler runs callbacks at chosen future instants on a
// single background goroutine. It supports one-shot scheduling,
// one-shot scheduling with replace-by-id semantics, repeating
// scheduling with a cancellation guard, and graceful stop.
package scheduler

import (
	"container/heap"
	"sync"
	"time"

	"github.com/famish99/mpdc/internal/mpdlog"
)

// TimeProvider abstracts the clock so tests can drive the scheduler
// with an injected sequence of instants instead of the wall clock.
type TimeProvider interface {
	Now() time.Time
}

// DefaultTimeProvider reads the OS monotonic clock via time.Now.
type DefaultTimeProvider struct{}

func (DefaultTimeProvider) Now() time.Time { return time.Now() }

// Callback is run on the scheduler's own goroutine with the
// scheduler's shared Args value. Callbacks must not block — they
// should hand off work to another goroutine if the work itself may
// block.
type Callback[Args any] func(args Args)

type entry[Args any] struct {
	id       string
	runAt    time.Time
	callback Callback[Args]
	repeat   *time.Duration // nil for one-shot jobs
}

type jobHeap[Args any] []*entry[Args]

func (h jobHeap[Args]) Len() int            { return len(h) }
func (h jobHeap[Args]) Less(i, j int) bool  { return h[i].runAt.Before(h[j].runAt) }
func (h jobHeap[Args]) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *jobHeap[Args]) Push(x interface{}) { *h = append(*h, x.(*entry[Args])) }
func (h *jobHeap[Args]) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

type commandKind int

const (
	cmdAddJob commandKind = iota
	cmdAddRepeatedJob
	cmdCancelJob
	cmdStop
)

type command[Args any] struct {
	kind    commandKind
	id      string
	runAt   time.Time
	repeat  time.Duration
	callback Callback[Args]
}

// Scheduler owns one worker goroutine and a time-ordered job queue.
// Construct with New, call Start once, and Stop when done (or rely on
// Close, its io.Closer-shaped alias, from a defer).
type Scheduler[Args any] struct {
	args Args
	tp   TimeProvider

	commands chan command[Args]
	stopped  chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
}

// New constructs a Scheduler parameterised over a shared Args value
// passed by value to every callback (callers typically bundle an
// event-loop sender and other handles into Args).
func New[Args any](args Args, tp TimeProvider) *Scheduler[Args] {
	if tp == nil {
		tp = DefaultTimeProvider{}
	}
	return &Scheduler[Args]{
		args:     args,
		tp:       tp,
		commands: make(chan command[Args], 64),
		stopped:  make(chan struct{}),
	}
}

// Start spawns the worker goroutine. Idempotent if already running.
func (s *Scheduler[Args]) Start() {
	s.startOnce.Do(func() {
		go s.run()
	})
}

// Schedule queues a one-shot callback to run at runAt.
func (s *Scheduler[Args]) Schedule(id string, runAt time.Time, cb Callback[Args]) {
	s.commands <- command[Args]{kind: cmdAddJob, id: id, runAt: runAt, callback: cb}
}

// ScheduleReplace is an alias for Schedule: any existing entry with
// the same id is removed before the new one is inserted, which is
// Schedule's actual behaviour — named separately here to mirror the
// upstream API's schedule_replace and make the replace semantics
// explicit at call sites that depend on it.
func (s *Scheduler[Args]) ScheduleReplace(id string, runAt time.Time, cb Callback[Args]) {
	s.Schedule(id, runAt, cb)
}

// TaskGuard cancels a repeated job when Cancel is called or the guard
// is dropped via a defer. Cancellation is best-effort: a callback
// already running when Cancel is called still completes; no further
// runs occur.
type TaskGuard struct {
	cancel func()
	once   sync.Once
}

// Cancel stops future runs of the guarded repeated job.
func (g *TaskGuard) Cancel() {
	g.once.Do(g.cancel)
}

// Repeated schedules a repeating callback with the given interval,
// first firing at tp.Now()+interval, and returns a guard that cancels
// it.
func (s *Scheduler[Args]) Repeated(id string, interval time.Duration, cb Callback[Args]) *TaskGuard {
	s.commands <- command[Args]{
		kind:     cmdAddRepeatedJob,
		id:       id,
		runAt:    s.tp.Now().Add(interval),
		repeat:   interval,
		callback: cb,
	}
	return &TaskGuard{cancel: func() { s.Cancel(id) }}
}

// Cancel removes any pending one-shot or repeated entry matching id.
func (s *Scheduler[Args]) Cancel(id string) {
	s.commands <- command[Args]{kind: cmdCancelJob, id: id}
}

// Stop sends a stop command and blocks until the worker goroutine has
// exited — including letting any in-flight callback finish. The
// pending heap is dropped without running its remaining jobs. Safe to
// call more than once.
func (s *Scheduler[Args]) Stop() {
	s.stopOnce.Do(func() {
		s.commands <- command[Args]{kind: cmdStop}
		<-s.stopped
	})
}

// Close is Stop under an io.Closer-compatible name, for embedding in
// defer chains alongside other resources.
func (s *Scheduler[Args]) Close() error {
	s.Stop()
	return nil
}

func (s *Scheduler[Args]) run() {
	defer close(s.stopped)

	h := &jobHeap[Args]{}
	heap.Init(h)
	byID := make(map[string]*entry[Args])

	remove := func(id string) {
		if e, ok := byID[id]; ok {
			delete(byID, id)
			for i, cand := range *h {
				if cand == e {
					heap.Remove(h, i)
					break
				}
			}
		}
	}

	for {
		var timer *time.Timer
		var timerC <-chan time.Time
		if h.Len() > 0 {
			wait := (*h)[0].runAt.Sub(s.tp.Now())
			if wait < 0 {
				wait = 0
			}
			timer = time.NewTimer(wait)
			timerC = timer.C
		}

		// Biased toward the command channel: a job scheduled for
		// exactly the pending timer's instant must not be starved by
		// a simultaneous timeout.
		select {
		case cmd := <-s.commands:
			if timer != nil {
				timer.Stop()
			}
			if !s.handleCommand(cmd, h, byID, remove) {
				return
			}

		default:
			select {
			case cmd := <-s.commands:
				if timer != nil {
					timer.Stop()
				}
				if !s.handleCommand(cmd, h, byID, remove) {
					return
				}
			case <-timerC:
				s.fireDue(h, byID)
			}
		}
	}
}

func (s *Scheduler[Args]) handleCommand(cmd command[Args], h *jobHeap[Args], byID map[string]*entry[Args], remove func(string)) bool {
	switch cmd.kind {
	case cmdAddJob:
		remove(cmd.id)
		e := &entry[Args]{id: cmd.id, runAt: cmd.runAt, callback: cmd.callback}
		byID[cmd.id] = e
		heap.Push(h, e)
	case cmdAddRepeatedJob:
		remove(cmd.id)
		repeat := cmd.repeat
		e := &entry[Args]{id: cmd.id, runAt: cmd.runAt, callback: cmd.callback, repeat: &repeat}
		byID[cmd.id] = e
		heap.Push(h, e)
	case cmdCancelJob:
		remove(cmd.id)
	case cmdStop:
		return false
	}
	return true
}

func (s *Scheduler[Args]) fireDue(h *jobHeap[Args], byID map[string]*entry[Args]) {
	now := s.tp.Now()
	for h.Len() > 0 && !(*h)[0].runAt.After(now) {
		e := heap.Pop(h).(*entry[Args])
		delete(byID, e.id)
		s.runCallback(e)
		if e.repeat != nil {
			e.runAt = s.tp.Now().Add(*e.repeat)
			byID[e.id] = e
			heap.Push(h, e)
		}
	}
}

func (s *Scheduler[Args]) runCallback(e *entry[Args]) {
	defer func() {
		if r := recover(); r != nil {
			mpdlog.Logger.Error().Interface("panic", r).Str("job_id", e.id).Msg("scheduler callback panicked")
		}
	}()
	e.callback(s.args)
}
