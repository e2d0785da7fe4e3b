package mpdproto

import (
	"bufio"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchSongStickersRetriesAfterPartialFailure(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })

	c := NewClient(&Conn{conn: client, reader: bufio.NewReader(client)})

	go func() {
		r := bufio.NewReader(server)
		for i := 0; i < 5; i++ {
			r.ReadString('\n')
		}
		server.Write([]byte("sticker: mood=happy\nlist_OK\n"))
		server.Write([]byte("ACK [50@1] {sticker} no such sticker\n"))

		for i := 0; i < 3; i++ {
			r.ReadString('\n')
		}
		server.Write([]byte("sticker: mood=sad\nlist_OK\n"))
		server.Write([]byte("OK\n"))
	}()

	result, err := c.FetchSongStickers([]string{"u1", "u2", "u3"})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"mood": "happy"}, result["u1"])
	_, hasU2 := result["u2"]
	assert.False(t, hasU2)
	assert.Equal(t, map[string]string{"mood": "sad"}, result["u3"])
}

func TestFetchSongStickersEmptyInput(t *testing.T) {
	c := NewClient(&Conn{})
	result, err := c.FetchSongStickers(nil)
	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestGetStickerNoExistReturnsFalseWithoutError(t *testing.T) {
	client, server := net.Pipe()
	t.Cleanup(func() { client.Close(); server.Close() })

	c := NewClient(&Conn{conn: client, reader: bufio.NewReader(client)})

	go func() {
		r := bufio.NewReader(server)
		r.ReadString('\n')
		server.Write([]byte("ACK [50@0] {sticker get} no such sticker\n"))
	}()

	value, ok, err := c.GetSticker("song.flac", "mood")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)
}
