package dispatch

import (
	"bufio"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/famish99/mpdc/internal/event"
	"github.com/famish99/mpdc/internal/mpderr"
	"github.com/famish99/mpdc/internal/mpdproto"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestDispatcher() *Dispatcher {
	return &Dispatcher{
		maxReconnectAttempts: 5,
		wake:                 make(chan struct{}, 1),
	}
}

func TestSubmitOrdersFIFO(t *testing.T) {
	d := newTestDispatcher()
	a := &Query{ID: "a"}
	b := &Query{ID: "b"}

	d.Submit(a)
	d.Submit(b)

	got, ok := d.popPending()
	require.True(t, ok)
	assert.Equal(t, "a", got.ID)

	got, ok = d.popPending()
	require.True(t, ok)
	assert.Equal(t, "b", got.ID)

	_, ok = d.popPending()
	assert.False(t, ok)
}

func TestSubmitReplaceIDDropsOlderPendingWithSameID(t *testing.T) {
	d := newTestDispatcher()
	d.Submit(&Query{ID: "status-1", ReplaceID: "status"})
	d.Submit(&Query{ID: "other", ReplaceID: "transport"})
	d.Submit(&Query{ID: "status-2", ReplaceID: "status"})

	var order []string
	for {
		q, ok := d.popPending()
		if !ok {
			break
		}
		order = append(order, q.ID)
	}
	assert.Equal(t, []string{"other", "status-2"}, order)
}

func TestSubmitWithoutReplaceIDNeverDropsOlderQueries(t *testing.T) {
	d := newTestDispatcher()
	d.Submit(&Query{ID: "x"})
	d.Submit(&Query{ID: "y"})

	var order []string
	for {
		q, ok := d.popPending()
		if !ok {
			break
		}
		order = append(order, q.ID)
	}
	assert.Equal(t, []string{"x", "y"}, order)
}

func TestSubmitWakesCoordinatorAtMostOnce(t *testing.T) {
	d := newTestDispatcher()
	d.Submit(&Query{ID: "a"})
	d.Submit(&Query{ID: "b"})

	select {
	case <-d.wake:
	default:
		t.Fatal("expected wake signal after first submit")
	}

	select {
	case <-d.wake:
		t.Fatal("wake channel should be coalesced to a single pending signal")
	default:
	}
}

func TestStopWithoutStartIsNoop(t *testing.T) {
	d := newTestDispatcher()
	d.Stop()
}

// handshakeServer performs the Conn.init handshake (greeting, no
// password, no partition, commands, binarylimit) against the server
// side of an accepted connection and returns its buffered reader for
// scripting whatever comes next.
func handshakeServer(conn net.Conn) *bufio.Reader {
	r := bufio.NewReader(conn)
	conn.Write([]byte("OK MPD 0.23.5\n"))
	r.ReadString('\n') // commands
	conn.Write([]byte("OK\n"))
	r.ReadString('\n') // binarylimit
	conn.Write([]byte("OK\n"))
	return r
}

// TestRunInterruptsIdleForPendingQueryAndResumes drives a real
// Dispatcher coordinator over a loopback TCP connection through one
// full idle/noidle/query cycle: a query submitted while the
// coordinator is idling must interrupt the idle, run, and hand the
// coordinator back to idling afterward.
func TestRunInterruptsIdleForPendingQueryAndResumes(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	addr := mpdproto.NewTCPAddress(host, port)

	idleEntered := make(chan struct{})
	serverDone := make(chan struct{})
	go func() {
		defer close(serverDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		r := handshakeServer(conn)

		r.ReadString('\n') // idle
		close(idleEntered)
		r.ReadString('\n') // noidle
		conn.Write([]byte("OK\n"))

		r.ReadString('\n') // next
		conn.Write([]byte("OK\n"))

		r.ReadString('\n') // second idle, deliberately left hanging
	}()

	mpConn, err := mpdproto.Dial(addr, mpdproto.Options{})
	require.NoError(t, err)
	client := mpdproto.NewClient(mpConn)

	events := make(chan event.UiEvent, 4)
	d := New(client, events)
	d.Start()

	select {
	case <-idleEntered:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for coordinator to enter idle")
	}

	d.Submit(&Query{
		ID: "next-query",
		Run: func(c *mpdproto.Client) (any, error) {
			return nil, c.Next()
		},
	})

	select {
	case e := <-events:
		assert.Equal(t, event.KindQueryResult, e.Kind)
		assert.Equal(t, "next-query", e.QueryID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for query result")
	}

	// The coordinator has already looped back into a second idle by
	// now. Cancel before tearing down the connection so it observes
	// ctx.Done rather than racing the idle-read goroutine's error.
	d.cancel()
	time.Sleep(20 * time.Millisecond)
	mpConn.Close()

	waited := make(chan struct{})
	go func() {
		d.group.Wait()
		close(waited)
	}()
	select {
	case <-waited:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatcher did not shut down")
	}

	<-serverDone
}

// TestRunQueryIOErrorTriggersReconnectAndEmitsReconnected exercises
// runQuery's error path directly: an *mpderr.IOError from a query
// must trigger reconnect, which succeeds against a live listener and
// emits event.Reconnected after the failure event.
func TestRunQueryIOErrorTriggersReconnectAndEmitsReconnected(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	host, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	addr := mpdproto.NewTCPAddress(host, port)

	accepted := make(chan struct{}, 2)
	go func() {
		for i := 0; i < 2; i++ {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			handshakeServer(conn)
			accepted <- struct{}{}
		}
	}()

	mpConn, err := mpdproto.Dial(addr, mpdproto.Options{})
	require.NoError(t, err)
	<-accepted

	client := mpdproto.NewClient(mpConn)
	events := make(chan event.UiEvent, 4)
	d := New(client, events)
	d.SetReconnectPolicy(3, time.Millisecond)

	ioErr := &mpderr.IOError{Op: "read", Err: errors.New("connection reset")}
	d.runQuery(context.Background(), &Query{
		ID: "broken",
		Run: func(c *mpdproto.Client) (any, error) {
			return nil, ioErr
		},
	})

	select {
	case <-accepted:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reconnect dial")
	}

	select {
	case e := <-events:
		assert.Equal(t, event.KindQueryFailed, e.Kind)
		assert.Equal(t, "broken", e.QueryID)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for query-failed event")
	}

	select {
	case e := <-events:
		assert.Equal(t, event.KindReconnected, e.Kind)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reconnected event")
	}

	mpConn.Close()
}
