// Package mpdproto implements the synchronous MPD text protocol:
// connect and handshake, typed command encoding, structured and
// binary response parsing, command-list pipelining, and the
// idle/noidle push-notification dance. It owns exactly one
// bidirectional stream per Conn and is not safe for concurrent use by
// more than one caller at a time — serialising access is the Query
// Dispatcher's job, not this package's.
package mpdproto

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/famish99/mpdc/internal/mpderr"
	"github.com/famish99/mpdc/internal/mpdlog"
)

// initialBinaryLimit is set right after a fresh handshake.
const initialBinaryLimit = 256 * 1024

// reconnectBinaryLimit is set after Reconnect. The upstream client
// this package is modeled on uses a different, larger limit here (5
// MiB) than on the initial handshake; the discrepancy's intent is
// unclear and is preserved rather than "fixed" — see DESIGN.md.
const reconnectBinaryLimit = 5 * 1024 * 1024

// Options configures a Conn at dial time.
type Options struct {
	Password            string
	Partition           string
	PartitionAutocreate bool
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
}

// Conn is one MPD connection: a stream, a buffered line reader over
// that same stream, the negotiated server version,
// and the set of server-supported command names.
type Conn struct {
	addr    Address
	opts    Options
	conn    net.Conn
	reader  *bufio.Reader
	version Version
	commands map[string]bool

	noidleMu sync.Mutex
}

// Dial opens a new connection and performs the full handshake.
func Dial(addr Address, opts Options) (*Conn, error) {
	c := &Conn{addr: addr, opts: opts}
	if err := c.open(); err != nil {
		return nil, err
	}
	if err := c.init(initialBinaryLimit); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Conn) open() error {
	conn, err := net.Dial(c.addr.Network(), c.addr.DialAddr())
	if err != nil {
		return &mpderr.IOError{Op: "dial", Err: err}
	}
	c.conn = conn
	c.reader = bufio.NewReader(conn)
	return nil
}

// Close shuts down the underlying stream. Safe to call more than
// once.
func (c *Conn) Close() error {
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Version returns the negotiated server version.
func (c *Conn) Version() Version { return c.version }

// SupportsCommand reports whether the server advertised cmd among its
// supported command names.
func (c *Conn) SupportsCommand(cmd string) bool { return c.commands[cmd] }

// RequireVersion returns an UnsupportedVersionError before writing
// anything if the negotiated server version is older than min.
func (c *Conn) RequireVersion(min Version, reason string) error {
	if c.version.Less(min) {
		return &mpderr.UnsupportedVersionError{Reason: reason}
	}
	return nil
}

// RequireCommand returns an UnsupportedVersionError if the server did
// not advertise the named command (used for optional capabilities
// like "stringnormalization").
func (c *Conn) RequireCommand(cmd, reason string) error {
	if !c.commands[cmd] {
		return &mpderr.UnsupportedVersionError{Reason: reason}
	}
	return nil
}

// init performs the handshake: read the greeting, authenticate,
// select a partition, query supported commands, set the binary
// limit.
func (c *Conn) init(binaryLimit int) error {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return &mpderr.IOError{Op: "greeting", Err: err}
	}
	line = strings.TrimRight(line, "\n")

	rest, ok := strings.CutPrefix(line, "OK MPD ")
	if !ok {
		return &mpderr.HandshakeError{Reason: fmt.Sprintf("unexpected greeting %q", line)}
	}
	version, err := ParseVersion(rest)
	if err != nil {
		return &mpderr.HandshakeError{Reason: err.Error()}
	}
	c.version = version

	if c.opts.Password != "" {
		if _, err := c.do(fmt.Sprintf("password %s", QuoteAndEscape(c.opts.Password))); err != nil {
			return err
		}
	}

	if c.opts.Partition != "" {
		if err := c.selectPartition(c.opts.Partition, c.opts.PartitionAutocreate); err != nil {
			return err
		}
	}

	cmdKvs, err := c.do("commands")
	if err != nil {
		return err
	}
	c.commands = make(map[string]bool, len(cmdKvs))
	for _, name := range values(cmdKvs, "command") {
		c.commands[name] = true
	}

	if _, err := c.do(fmt.Sprintf("binarylimit %d", binaryLimit)); err != nil {
		return err
	}

	return nil
}

func (c *Conn) selectPartition(name string, autocreate bool) error {
	_, err := c.do(fmt.Sprintf("partition %s", QuoteAndEscape(name)))
	if err == nil {
		return nil
	}
	if autocreate && mpderr.IsCode(err, mpderr.CodeNoExist) {
		if _, cerr := c.do(fmt.Sprintf("newpartition %s", QuoteAndEscape(name))); cerr != nil {
			return cerr
		}
		_, err = c.do(fmt.Sprintf("partition %s", QuoteAndEscape(name)))
		return err
	}
	return err
}

// Reconnect tears down and rebuilds the connection: re-dials,
// re-authenticates, re-selects the partition, re-queries supported
// commands, and resets the binary limit (to reconnectBinaryLimit, not
// initialBinaryLimit — see the comment on that constant).
func (c *Conn) Reconnect() error {
	c.Close()
	if err := c.open(); err != nil {
		return err
	}
	if err := c.init(reconnectBinaryLimit); err != nil {
		c.Close()
		return err
	}
	mpdlog.Logger.Info().Str("addr", c.addr.String()).Msg("reconnected to mpd server")
	return nil
}

// writeLine writes one command line terminated by a bare \n, as MPD
// requires (not \r\n).
func (c *Conn) writeLine(line string) error {
	if c.conn == nil {
		return &mpderr.IOError{Op: "write", Err: fmt.Errorf("connection closed")}
	}
	if _, err := fmt.Fprintf(c.conn, "%s\n", line); err != nil {
		return &mpderr.IOError{Op: "write", Err: err}
	}
	return nil
}

// do writes a single command and reads its single-line-terminated
// response, outside of any open command list.
func (c *Conn) do(line string) ([]kv, error) {
	if err := c.writeLine(line); err != nil {
		return nil, err
	}
	return c.readOK()
}

// SetDeadlines applies the given read/write timeouts to the
// underlying stream; a zero or negative value clears that deadline.
// Nothing in this package calls it: Dial, the command paths and
// EnterIdle leave both deadlines unset, and Options.ReadTimeout and
// Options.WriteTimeout are not applied to the stream.
func (c *Conn) SetDeadlines(read, write time.Duration) error {
	if c.conn == nil {
		return nil
	}
	if read > 0 {
		if err := c.conn.SetReadDeadline(time.Now().Add(read)); err != nil {
			return &mpderr.IOError{Op: "set read deadline", Err: err}
		}
	} else {
		_ = c.conn.SetReadDeadline(time.Time{})
	}
	if write > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(write)); err != nil {
			return &mpderr.IOError{Op: "set write deadline", Err: err}
		}
	} else {
		_ = c.conn.SetWriteDeadline(time.Time{})
	}
	return nil
}
