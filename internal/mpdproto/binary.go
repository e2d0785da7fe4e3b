package mpdproto

import (
	"io"
	"strconv"
	"strings"

	"github.com/famish99/mpdc/internal/mpderr"
)

// readBinarySection is like readSection but recognizes a "binary: n"
// line as the signal to read n raw bytes (plus the trailing newline
// the server appends) instead of parsing it as a plain key/value
// line.
func (c *Conn) readBinarySection() ([]kv, []byte, error) {
	var kvs []kv
	var payload []byte
	for {
		line, err := c.reader.ReadString('\n')
		if err != nil {
			return nil, nil, &mpderr.IOError{Op: "read", Err: err}
		}
		line = strings.TrimRight(line, "\n")
		line = strings.TrimRight(line, "\r")

		switch {
		case line == "OK":
			return kvs, payload, nil
		case strings.HasPrefix(line, "ACK "):
			return nil, nil, parseAck(line)
		default:
			k, v, ok := splitKV(line)
			if !ok {
				return nil, nil, &mpderr.ParseError{Context: "binary response line", Line: line}
			}
			if k == "binary" {
				n, err := strconv.Atoi(v)
				if err != nil {
					return nil, nil, &mpderr.ParseError{Context: "binary length", Line: line}
				}
				buf := make([]byte, n)
				if _, err := io.ReadFull(c.reader, buf); err != nil {
					return nil, nil, &mpderr.IOError{Op: "read binary payload", Err: err}
				}
				if _, err := c.reader.ReadByte(); err != nil { // trailing \n
					return nil, nil, &mpderr.IOError{Op: "read binary trailer", Err: err}
				}
				payload = buf
				continue
			}
			kvs = append(kvs, kv{Key: k, Value: v})
		}
	}
}

// FetchBinary issues cmd repeatedly with an incrementing byte offset
// ("albumart <uri> <offset>" or "readpicture <uri> <offset>"),
// concatenating chunks until their total reaches the server-reported
// size. Returns (nil, false, nil) if the server reports no binary
// data (no "size" key on the first chunk).
func (c *Conn) FetchBinary(cmd, uri string) ([]byte, bool, error) {
	var data []byte
	offset := 0
	for {
		line := cmd + " " + QuoteAndEscape(uri) + " " + strconv.Itoa(offset)
		if err := c.writeLine(line); err != nil {
			return nil, false, err
		}
		kvs, payload, err := c.readBinarySection()
		if err != nil {
			return nil, false, err
		}
		sizeStr, hasSize := lookup(kvs, "size")
		if !hasSize {
			return nil, false, nil
		}
		total, err := strconv.Atoi(sizeStr)
		if err != nil {
			return nil, false, &mpderr.ParseError{Context: "binary size", Line: sizeStr}
		}
		data = append(data, payload...)
		offset += len(payload)
		if offset >= total || len(payload) == 0 {
			break
		}
	}
	return data, true, nil
}
