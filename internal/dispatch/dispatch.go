// Package dispatch implements the Query Dispatcher: it shields the
// single-threaded Protocol Client from concurrent callers while
// giving UI code a "submit a query, receive a UiEvent later" pattern,
// and carries the idle subscription that turns MPD subsystem changes
// into UiEvents.
package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/famish99/mpdc/internal/event"
	"github.com/famish99/mpdc/internal/mpderr"
	"github.com/famish99/mpdc/internal/mpdlog"
	"github.com/famish99/mpdc/internal/mpdproto"
)

// Query is one unit of work run against the Protocol Client. ID
// identifies the result for the UI pane that submitted it; ReplaceID,
// when non-empty, drops any still-pending (not yet running) query
// sharing the same ReplaceID in favor of this one.
type Query struct {
	ID        string
	ReplaceID string
	Pane      string
	Run       func(*mpdproto.Client) (any, error)
}

// Dispatcher owns the Protocol Client and runs exactly one goroutine
// that ever issues commands on it (the coordinator), plus a
// short-lived read goroutine per idle cycle that exists only to block
// inside ReadIdleResult so the coordinator stays responsive to new queries
// via SignalNoIdle. The client is therefore never touched by two
// goroutines at once except for that one sanctioned noidle write.
// Both goroutines are tracked by an errgroup so Stop can wait for a
// clean shutdown instead of leaking them.
type Dispatcher struct {
	client *mpdproto.Client
	events chan<- event.UiEvent

	idleSubsystems []string

	maxReconnectAttempts int
	reconnectBackoff     time.Duration

	mu      sync.Mutex
	pending []*Query

	wake chan struct{}

	group  *errgroup.Group
	cancel context.CancelFunc
}

// New constructs a Dispatcher. events is the main event channel;
// UiEvents are sent there and must be drained by the main loop or the
// dispatcher will stall once the channel's buffer fills.
func New(client *mpdproto.Client, events chan<- event.UiEvent) *Dispatcher {
	return &Dispatcher{
		client:               client,
		events:               events,
		maxReconnectAttempts: 5,
		reconnectBackoff:     time.Second,
		wake:                 make(chan struct{}, 1),
	}
}

// SetReconnectPolicy overrides the default reconnect attempt count and
// backoff between attempts.
func (d *Dispatcher) SetReconnectPolicy(maxAttempts int, backoff time.Duration) {
	d.maxReconnectAttempts = maxAttempts
	d.reconnectBackoff = backoff
}

// Start spawns the coordinator goroutine under a fresh errgroup.
func (d *Dispatcher) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	d.cancel = cancel
	d.group = group
	group.Go(func() error {
		d.run(ctx)
		return nil
	})
}

// Stop cancels the coordinator and waits for it (and any in-flight
// idle-read goroutine) to exit.
func (d *Dispatcher) Stop() {
	if d.cancel == nil {
		return
	}
	d.cancel()
	_ = d.group.Wait()
}

// Submit enqueues a query for execution. Safe to call from any
// goroutine.
func (d *Dispatcher) Submit(q *Query) {
	d.mu.Lock()
	if q.ReplaceID != "" {
		filtered := d.pending[:0]
		for _, p := range d.pending {
			if p.ReplaceID != q.ReplaceID {
				filtered = append(filtered, p)
			}
		}
		d.pending = filtered
	}
	d.pending = append(d.pending, q)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) popPending() (*Query, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.pending) == 0 {
		return nil, false
	}
	q := d.pending[0]
	d.pending = d.pending[1:]
	return q, true
}

type idleOutcome struct {
	events []mpdproto.IdleEvent
	err    error
}

func (d *Dispatcher) run(ctx context.Context) {
	idling := false
	var idleResult chan idleOutcome

	for {
		if !idling {
			if q, ok := d.popPending(); ok {
				d.runQuery(ctx, q)
				continue
			}
		}

		if !idling {
			if err := d.client.Conn().EnterIdle(d.idleSubsystems...); err != nil {
				d.handleIOError(ctx, err)
				continue
			}
			idling = true
			idleResult = make(chan idleOutcome, 1)
			d.group.Go(func() error {
				events, err := d.client.Conn().ReadIdleResult()
				idleResult <- idleOutcome{events: events, err: err}
				return nil
			})
		}

		select {
		case <-ctx.Done():
			return
		case out := <-idleResult:
			idling = false
			if out.err != nil {
				d.handleIOError(ctx, out.err)
				continue
			}
			d.emitSubsystemChanges(ctx, out.events)
		case <-d.wake:
			if idling {
				if err := d.client.Conn().SignalNoIdle(); err != nil {
					d.handleIOError(ctx, err)
					continue
				}
				out := <-idleResult
				idling = false
				if out.err != nil {
					d.handleIOError(ctx, out.err)
					continue
				}
				d.emitSubsystemChanges(ctx, out.events)
			}
		}
	}
}

func (d *Dispatcher) runQuery(ctx context.Context, q *Query) {
	result, err := q.Run(d.client)
	if err != nil {
		mpdlog.Logger.Warn().Err(err).Str("query_id", q.ID).Msg("query failed")
		d.sendCtx(ctx, event.QueryFailed(q.ID, q.Pane, err))
		var ioErr *mpderr.IOError
		if errors.As(err, &ioErr) {
			d.reconnect(ctx)
		}
		return
	}
	d.sendCtx(ctx, event.QueryResult(q.ID, q.Pane, result))
}

func (d *Dispatcher) emitSubsystemChanges(ctx context.Context, events []mpdproto.IdleEvent) {
	for _, e := range events {
		d.sendCtx(ctx, event.SubsystemChanged(event.Subsystem(e.Subsystem)))
	}
}

func (d *Dispatcher) handleIOError(ctx context.Context, err error) {
	mpdlog.Logger.Error().Err(err).Msg("protocol client I/O error, reconnecting")
	d.reconnect(ctx)
}

func (d *Dispatcher) reconnect(ctx context.Context) {
	for attempt := 1; attempt <= d.maxReconnectAttempts; attempt++ {
		if err := d.client.Reconnect(); err != nil {
			mpdlog.Logger.Warn().Err(err).Int("attempt", attempt).Msg("reconnect attempt failed")
			time.Sleep(d.reconnectBackoff)
			continue
		}
		mpdlog.Logger.Info().Msg("reconnected to mpd")
		d.sendCtx(ctx, event.Reconnected())
		return
	}
	mpdlog.Logger.Error().Int("attempts", d.maxReconnectAttempts).Msg("exhausted reconnect attempts")
}

func (d *Dispatcher) sendCtx(ctx context.Context, e event.UiEvent) {
	select {
	case d.events <- e:
	case <-ctx.Done():
	}
}
