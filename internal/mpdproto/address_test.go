package mpdproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTCPAddress(t *testing.T) {
	a := NewTCPAddress("localhost", "6600")
	assert.Equal(t, "tcp", a.Network())
	assert.Equal(t, "localhost:6600", a.DialAddr())
	assert.Equal(t, "localhost:6600", a.String())
}

func TestUnixPathAddress(t *testing.T) {
	a := NewUnixPathAddress("/run/mpd/socket")
	assert.Equal(t, "unix", a.Network())
	assert.Equal(t, "/run/mpd/socket", a.DialAddr())
	assert.Equal(t, "/run/mpd/socket", a.String())
}

func TestUnixAbstractAddress(t *testing.T) {
	a := NewUnixAbstractAddress("mpd")
	assert.Equal(t, "unix", a.Network())
	assert.Equal(t, "@mpd", a.DialAddr())
	assert.Equal(t, "abstract:mpd", a.String())
}
