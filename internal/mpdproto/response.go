package mpdproto

import (
	"strconv"
	"strings"

	"github.com/famish99/mpdc/internal/mpderr"
)

// kv is one parsed "key: value" response line.
type kv struct {
	Key   string
	Value string
}

type sentinel int

const (
	sentinelOK sentinel = iota
	sentinelListOK
)

func splitKV(line string) (string, string, bool) {
	idx := strings.Index(line, ": ")
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], line[idx+2:], true
}

// parseAck parses an "ACK [<code>@<index>] {<command>} <message>" line
// into an *mpderr.MpdError.
func parseAck(line string) error {
	rest, ok := strings.CutPrefix(line, "ACK ")
	if !ok {
		return &mpderr.ParseError{Context: "ack line", Line: line}
	}

	atIdx := strings.Index(rest, "]")
	bracketIdx := strings.Index(rest, "[")
	braceOpen := strings.Index(rest, "{")
	braceClose := strings.Index(rest, "}")
	if bracketIdx != 0 || atIdx < 0 || braceOpen < 0 || braceClose < 0 {
		return &mpderr.ParseError{Context: "ack line", Line: line}
	}

	codePart := rest[1:atIdx]
	codeAndIndex := strings.SplitN(codePart, "@", 2)
	if len(codeAndIndex) != 2 {
		return &mpderr.ParseError{Context: "ack line", Line: line}
	}
	code, err := strconv.Atoi(codeAndIndex[0])
	if err != nil {
		return &mpderr.ParseError{Context: "ack code", Line: line}
	}
	index, err := strconv.Atoi(codeAndIndex[1])
	if err != nil {
		return &mpderr.ParseError{Context: "ack index", Line: line}
	}

	command := rest[braceOpen+1 : braceClose]
	message := strings.TrimSpace(rest[braceClose+1:])

	return &mpderr.MpdError{
		Code:    mpderr.CodeFromWire(code),
		Index:   index,
		Command: command,
		Message: message,
	}
}

// readSection reads key/value lines until OK, list_OK or an ACK.
func (c *Conn) readSection() ([]kv, sentinel, error) {
	var kvs []kv
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, 0, &mpderr.IOError{Op: "read", Err: err}
		}
		line = strings.TrimRight(line, "\n")
		line = strings.TrimRight(line, "\r")

		switch {
		case line == "OK":
			return kvs, sentinelOK, nil
		case line == "list_OK":
			return kvs, sentinelListOK, nil
		case strings.HasPrefix(line, "ACK "):
			return nil, 0, parseAck(line)
		default:
			k, v, ok := splitKV(line)
			if !ok {
				return nil, 0, &mpderr.ParseError{Context: "response line", Line: line}
			}
			kvs = append(kvs, kv{Key: k, Value: v})
		}
	}
}

// readOK reads one section and requires it to end in a plain OK.
func (c *Conn) readOK() ([]kv, error) {
	kvs, sent, err := c.readSection()
	if err != nil {
		return nil, err
	}
	if sent != sentinelOK {
		return nil, &mpderr.ParseError{Context: "expected OK, got list_OK"}
	}
	return kvs, nil
}

// readListItem reads one section expecting list_OK (used while
// draining a command_list_ok_begin list item by item). The server
// aborts the remainder of the list on the first ACK, so an error here
// ends the whole batch, not just this item.
func (c *Conn) readListItem() ([]kv, error) {
	kvs, sent, err := c.readSection()
	if err != nil {
		return nil, err
	}
	if sent != sentinelListOK {
		return nil, &mpderr.ParseError{Context: "expected list_OK, got OK"}
	}
	return kvs, nil
}

func lookup(kvs []kv, key string) (string, bool) {
	for _, p := range kvs {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

func values(kvs []kv, key string) []string {
	var out []string
	for _, p := range kvs {
		if p.Key == key {
			out = append(out, p.Value)
		}
	}
	return out
}
