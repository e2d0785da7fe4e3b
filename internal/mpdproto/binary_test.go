package mpdproto

import (
	"bufio"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipedConn(t *testing.T) (*Conn, net.Conn) {
	t.Helper()
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })
	return &Conn{conn: client, reader: bufio.NewReader(client)}, server
}

func TestFetchBinarySingleChunk(t *testing.T) {
	c, server := newPipedConn(t)

	go func() {
		buf := make([]byte, 4096)
		n, _ := server.Read(buf)
		_ = n
		server.Write([]byte("size: 4\nbinary: 4\n"))
		server.Write([]byte("abcd"))
		server.Write([]byte("\n"))
		server.Write([]byte("OK\n"))
	}()

	data, ok, err := c.FetchBinary("readpicture", "song.flac")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("abcd"), data)
}

func TestFetchBinaryNoSizeMeansNoData(t *testing.T) {
	c, server := newPipedConn(t)

	go func() {
		buf := make([]byte, 4096)
		server.Read(buf)
		server.Write([]byte("OK\n"))
	}()

	data, ok, err := c.FetchBinary("albumart", "song.flac")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, data)
}

func TestFetchBinaryMultipleChunks(t *testing.T) {
	c, server := newPipedConn(t)

	go func() {
		buf := make([]byte, 4096)
		server.Read(buf)
		server.Write([]byte("size: 6\nbinary: 3\n"))
		server.Write([]byte("abc"))
		server.Write([]byte("\nOK\n"))

		server.Read(buf)
		server.Write([]byte("size: 6\nbinary: 3\n"))
		server.Write([]byte("def"))
		server.Write([]byte("\nOK\n"))
	}()

	data, ok, err := c.FetchBinary("readpicture", "song.flac")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("abcdef"), data)
}

func TestReadBinarySectionPropagatesAck(t *testing.T) {
	c, server := newPipedConn(t)

	go func() {
		server.Write([]byte("ACK [50@0] {readpicture} No such song\n"))
	}()

	_, _, _, err := readBinaryHelper(c)
	require.Error(t, err)
}

func readBinaryHelper(c *Conn) ([]kv, []byte, bool, error) {
	kvs, payload, err := c.readBinarySection()
	return kvs, payload, err == nil, err
}

func TestWriteLineOnClosedConnReturnsIOError(t *testing.T) {
	c := &Conn{}
	err := c.writeLine("ping")
	assert.Error(t, err)
}
