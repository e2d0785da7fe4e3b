package mpdproto

import "github.com/famish99/mpdc/internal/mpderr"

// CommandList accumulates commands to send as one pipelined batch:
// every Queue call only writes, matching the wire requirement that a
// command list's body is sent in one unbroken burst before any
// response is read. Two modes: strict (command_list_begin) gives a
// single terminating OK for the whole batch with no per-item
// boundary; ok_begin (command_list_ok_begin) emits one list_OK per
// queued command plus a final OK, letting the caller correlate
// successes and failures per item.
type CommandList struct {
	conn    *Conn
	okBegin bool
	queued  int
	closed  bool
}

// BeginCommandList opens a command list in strict or ok_begin mode.
func (c *Conn) BeginCommandList(okBegin bool) (*CommandList, error) {
	verb := "command_list_begin"
	if okBegin {
		verb = "command_list_ok_begin"
	}
	if err := c.writeLine(verb); err != nil {
		return nil, err
	}
	return &CommandList{conn: c, okBegin: okBegin}, nil
}

// Queue writes one already-encoded command line without reading a
// response.
func (l *CommandList) Queue(line string) error {
	if l.closed {
		return &mpderr.GenericError{Message: "command list already closed"}
	}
	if err := l.conn.writeLine(line); err != nil {
		return err
	}
	l.queued++
	return nil
}

// Close writes command_list_end. It does not read anything: callers
// read the batch's response(s) afterwards with ReadStrict (strict
// mode) or NextItem/ReadFinal (ok_begin mode).
func (l *CommandList) Close() error {
	if l.closed {
		return nil
	}
	if err := l.conn.writeLine("command_list_end"); err != nil {
		return err
	}
	l.closed = true
	return nil
}

// ReadStrict reads the single OK-terminated response for a strict
// command list, returning every key/value line queued commands
// produced, concatenated with no boundary between commands.
func (l *CommandList) ReadStrict() ([]kv, error) {
	if l.okBegin {
		return nil, &mpderr.GenericError{Message: "ReadStrict called on an ok_begin list"}
	}
	return l.conn.readOK()
}

// NextItem reads one list_OK-terminated response from an ok_begin
// list. Call it once per queued command, in order. The server aborts
// the remainder of the list on the first ACK, so a returned error
// means no further items will be produced by this list; the caller
// must open a fresh list to retry whatever was not yet read.
func (l *CommandList) NextItem() ([]kv, error) {
	if !l.okBegin {
		return nil, &mpderr.GenericError{Message: "NextItem called on a strict list"}
	}
	return l.conn.readListItem()
}

// ReadFinal reads the trailing OK that follows the last list_OK. Call
// only after NextItem has been called exactly once for every queued
// command and none of them errored.
func (l *CommandList) ReadFinal() error {
	_, err := l.conn.readOK()
	return err
}
