package mpdproto

import "strings"

// EnterIdle writes the idle command (optionally scoped to specific
// subsystems) and returns without reading: the caller's read loop
// blocks on the socket afterwards, and is woken either by the server
// pushing changes or by SignalNoIdle being written from another goroutine
// sharing this Conn under a mutex.
func (c *Conn) EnterIdle(subsystems ...string) error {
	line := "idle"
	if len(subsystems) > 0 {
		line = "idle " + strings.Join(subsystems, " ")
	}
	return c.writeLine(line)
}

// ReadIdleResult reads the response to a pending idle command: zero
// or more "changed: <subsystem>" lines followed by OK. Call this only
// after EnterIdle.
func (c *Conn) ReadIdleResult() ([]IdleEvent, error) {
	kvs, err := c.readOK()
	if err != nil {
		return nil, err
	}
	events := make([]IdleEvent, 0, len(kvs))
	for _, p := range kvs {
		if p.Key == "changed" {
			events = append(events, IdleEvent{Subsystem: p.Value})
		}
	}
	return events, nil
}

// SignalNoIdle writes noidle without reading a response. It is the
// one sanctioned exception to "one writer at a time" on a Conn: while
// the idle worker is blocked inside ReadIdleResult holding no lock (a
// blocking read can take arbitrarily long), the dispatcher calls this
// from a different goroutine to unblock it. The pending
// ReadIdleResult call — not this one — receives noidle's response, so
// SignalNoIdle and ReadIdleResult always appear in pairs across the
// two goroutines. Guarded by its own mutex since it is the only write
// path allowed to run concurrently with a pending read.
func (c *Conn) SignalNoIdle() error {
	c.noidleMu.Lock()
	defer c.noidleMu.Unlock()
	return c.writeLine("noidle")
}
