package mpdproto

import (
	"bufio"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitHandshakeSequence(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })

	c := &Conn{conn: client, reader: bufio.NewReader(client), opts: Options{Password: "secret"}}

	lines := make(chan string, 8)
	go func() {
		r := bufio.NewReader(server)
		server.Write([]byte("OK MPD 0.23.5\n"))

		line, _ := r.ReadString('\n')
		lines <- line
		server.Write([]byte("OK\n"))

		line, _ = r.ReadString('\n')
		lines <- line
		server.Write([]byte("command playid\ncommand status\nOK\n"))

		line, _ = r.ReadString('\n')
		lines <- line
		server.Write([]byte("OK\n"))
	}()

	err := c.init(initialBinaryLimit)
	require.NoError(t, err)

	assert.Equal(t, Version{0, 23, 5}, c.Version())
	assert.Equal(t, "password \"secret\"\n", <-lines)
	assert.Equal(t, "commands\n", <-lines)
	assert.Equal(t, "binarylimit 262144\n", <-lines)
	assert.True(t, c.SupportsCommand("playid"))
	assert.True(t, c.SupportsCommand("status"))
	assert.False(t, c.SupportsCommand("no-such-command"))
}

func TestInitRejectsMalformedGreeting(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })

	c := &Conn{conn: client, reader: bufio.NewReader(client)}

	go server.Write([]byte("HELLO not mpd\n"))

	err := c.init(initialBinaryLimit)
	assert.Error(t, err)
}

func TestInitRejectsUnparsableVersion(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })

	c := &Conn{conn: client, reader: bufio.NewReader(client)}

	go server.Write([]byte("OK MPD notaversion\n"))

	err := c.init(initialBinaryLimit)
	assert.Error(t, err)
}
