package keys

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeScheduler is a deterministic double for the resolver's timeout
// scheduling: it records the last scheduled callback instead of
// running it on a real clock, so tests fire timeouts explicitly.
type fakeScheduler struct {
	pending  map[string]func()
	canceled []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{pending: make(map[string]func())}
}

func (f *fakeScheduler) ScheduleReplace(id string, _ time.Time, cb func()) {
	f.pending[id] = cb
}

func (f *fakeScheduler) Cancel(id string) {
	f.canceled = append(f.canceled, id)
	delete(f.pending, id)
}

func (f *fakeScheduler) fire(id string) {
	cb, ok := f.pending[id]
	if !ok {
		return
	}
	delete(f.pending, id)
	cb()
}

// recordingSink captures resolver output instead of acting on it.
type recordingSink struct {
	resolved     [][]Action
	flushActions []Action
	flushBuffer  KeySequence
	flushed      bool
}

func (s *recordingSink) ActionResolved(actions []Action) {
	s.resolved = append(s.resolved, actions)
}

func (s *recordingSink) InsertModeFlush(actions []Action, buffered KeySequence) {
	s.flushed = true
	s.flushActions = actions
	s.flushBuffer = buffered
}

func newTestResolver(t *testing.T, normal, insert []Binding) (*Resolver, *fakeScheduler) {
	t.Helper()
	normalRoot, err := BuildTrie(normal)
	require.NoError(t, err)
	insertRoot, err := BuildTrie(insert)
	require.NoError(t, err)
	sched := newFakeScheduler()
	return NewResolver(normalRoot, insertRoot, sched), sched
}

func TestResolverExactFiresImmediatelyNoTimer(t *testing.T) {
	r, sched := newTestResolver(t, []Binding{
		{Sequence: seq(t, "x"), Actions: []Action{"Up"}},
	}, nil)

	sink := &recordingSink{}
	r.HandleKey(seq(t, "x")[0], sink)

	require.Len(t, sink.resolved, 1)
	assert.Equal(t, []Action{"Up"}, sink.resolved[0])
	assert.Empty(t, r.Buffer())
	assert.Empty(t, sched.pending)
}

func TestResolverAmbiguousSchedulesTimeoutThenFiresShorterOnTimeout(t *testing.T) {
	r, sched := newTestResolver(t, []Binding{
		{Sequence: seq(t, "g"), Actions: []Action{"Down"}},
		{Sequence: seq(t, "gd"), Actions: []Action{"DownHalf"}},
	}, nil)

	sink := &recordingSink{}
	r.HandleKey(seq(t, "g")[0], sink)

	assert.Empty(t, sink.resolved)
	assert.NotEmpty(t, sched.pending)

	sched.fire(timeoutJobID)
	require.Len(t, sink.resolved, 1)
	assert.Equal(t, []Action{"Down"}, sink.resolved[0])
	assert.Empty(t, r.Buffer())
}

func TestResolverAmbiguousExtendedBeforeTimeoutFiresLonger(t *testing.T) {
	r, sched := newTestResolver(t, []Binding{
		{Sequence: seq(t, "g"), Actions: []Action{"Down"}},
		{Sequence: seq(t, "gd"), Actions: []Action{"DownHalf"}},
	}, nil)

	sink := &recordingSink{}
	r.HandleKey(seq(t, "g")[0], sink)
	r.HandleKey(seq(t, "d")[0], sink)

	require.Len(t, sink.resolved, 1)
	assert.Equal(t, []Action{"DownHalf"}, sink.resolved[0])
	assert.Empty(t, sched.pending)
}

func TestResolverPrefixDiscardsSilentlyOnTimeout(t *testing.T) {
	r, sched := newTestResolver(t, []Binding{
		{Sequence: seq(t, "gd"), Actions: []Action{"DownHalf"}},
	}, nil)

	sink := &recordingSink{}
	r.HandleKey(seq(t, "g")[0], sink)
	assert.Empty(t, sink.resolved)

	sched.fire(timeoutJobID)
	assert.Empty(t, sink.resolved)
	assert.Empty(t, r.Buffer())
}

func TestResolverMismatchClearsBufferImmediately(t *testing.T) {
	r, sched := newTestResolver(t, []Binding{
		{Sequence: seq(t, "gd"), Actions: []Action{"DownHalf"}},
	}, nil)

	sink := &recordingSink{}
	r.HandleKey(seq(t, "g")[0], sink)
	r.HandleKey(seq(t, "x")[0], sink)

	assert.Empty(t, sink.resolved)
	assert.Empty(t, r.Buffer())
	assert.Empty(t, sched.pending)
}

func TestResolverStrayTimeoutOnEmptyBufferIsNoop(t *testing.T) {
	r, sched := newTestResolver(t, nil, nil)
	sink := &recordingSink{}

	sched.pending[timeoutJobID] = func() { r.HandleTimeout(sink) }
	sched.fire(timeoutJobID)

	assert.Empty(t, sink.resolved)
	assert.False(t, sink.flushed)
}

func TestResolverInsertModeMismatchFlushesWithoutActions(t *testing.T) {
	r, _ := newTestResolver(t, nil, []Binding{
		{Sequence: seq(t, "<Esc>"), Actions: []Action{"Close"}},
	})
	r.SetMode(ModeInsert)

	sink := &recordingSink{}
	r.HandleKey(seq(t, "x")[0], sink)

	assert.True(t, sink.flushed)
	assert.Nil(t, sink.flushActions)
	assert.Equal(t, seq(t, "x"), sink.flushBuffer)
	assert.Empty(t, r.Buffer())
}

func TestResolverInsertModeExactFlushesWithActions(t *testing.T) {
	r, _ := newTestResolver(t, nil, []Binding{
		{Sequence: seq(t, "<Esc>"), Actions: []Action{"Close"}},
	})
	r.SetMode(ModeInsert)

	sink := &recordingSink{}
	r.HandleKey(seq(t, "<Esc>")[0], sink)

	assert.True(t, sink.flushed)
	assert.Equal(t, []Action{"Close"}, sink.flushActions)
	assert.Equal(t, seq(t, "<Esc>"), sink.flushBuffer)
}

func TestResolverInsertModeAmbiguousSchedulesThenFlushesOnTimeout(t *testing.T) {
	r, sched := newTestResolver(t, nil, []Binding{
		{Sequence: seq(t, "j"), Actions: []Action{"Down"}},
		{Sequence: seq(t, "jj"), Actions: []Action{"Escape"}},
	})
	r.SetMode(ModeInsert)

	sink := &recordingSink{}
	r.HandleKey(seq(t, "j")[0], sink)
	assert.False(t, sink.flushed)

	sched.fire(timeoutJobID)
	assert.True(t, sink.flushed)
	assert.Equal(t, []Action{"Down"}, sink.flushActions)
}
