package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHolderGetReturnsInitialConfig(t *testing.T) {
	cfg := DefaultConfig()
	h := NewHolder(cfg, "/unused")
	assert.Same(t, cfg, h.Get())
}

func TestHolderReloadReplacesConfigAndNotifiesListeners(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mpdc.yaml")
	require.NoError(t, SaveConfig(path, DefaultConfig()))

	h := NewHolder(DefaultConfig(), path)
	ch := make(chan *Config, 1)
	h.RegisterListener(ch)

	updated := DefaultConfig()
	updated.Address = "newhost:6600"
	require.NoError(t, SaveConfig(path, updated))

	require.NoError(t, h.Reload())
	assert.Equal(t, "newhost:6600", h.Get().Address)

	select {
	case notified := <-ch:
		assert.Equal(t, "newhost:6600", notified.Address)
	case <-time.After(time.Second):
		t.Fatal("listener was not notified of reload")
	}
}

func TestHolderReloadOnMissingFileSwapsInDefaultConfig(t *testing.T) {
	h := NewHolder(DefaultConfig(), filepath.Join(t.TempDir(), "never-written.yaml"))
	before := h.Get()

	require.NoError(t, h.Reload())
	assert.NotSame(t, before, h.Get())
	assert.Equal(t, DefaultConfig(), h.Get())
}

func TestHolderReloadOnInvalidFilePropagatesErrorAndKeepsPreviousConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("address: [broken"), 0o644))

	original := DefaultConfig()
	h := NewHolder(original, path)

	err := h.Reload()
	assert.Error(t, err)
	assert.Same(t, original, h.Get())
}

func TestHolderNotifyListenerDropsWhenChannelFull(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mpdc.yaml")
	require.NoError(t, SaveConfig(path, DefaultConfig()))

	h := NewHolder(DefaultConfig(), path)
	full := make(chan *Config, 1)
	full <- DefaultConfig()
	h.RegisterListener(full)

	require.NoError(t, h.Reload())
	assert.Len(t, full, 1)
}
