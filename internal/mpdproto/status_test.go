package mpdproto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusFull(t *testing.T) {
	kvs := []kv{
		{Key: "partition", Value: "default"},
		{Key: "state", Value: "play"},
		{Key: "volume", Value: "80"},
		{Key: "repeat", Value: "1"},
		{Key: "random", Value: "0"},
		{Key: "single", Value: "oneshot"},
		{Key: "consume", Value: "1"},
		{Key: "song", Value: "3"},
		{Key: "songid", Value: "42"},
		{Key: "nextsong", Value: "4"},
		{Key: "nextsongid", Value: "43"},
		{Key: "elapsed", Value: "12.5"},
		{Key: "duration", Value: "200.0"},
		{Key: "updating_db", Value: "7"},
	}
	st := parseStatus(kvs)

	assert.Equal(t, "default", st.Partition)
	assert.Equal(t, StatePlay, st.State)
	assert.Equal(t, 80, st.Volume)
	assert.True(t, st.HasVolume)
	assert.True(t, st.Repeat)
	assert.False(t, st.Random)
	assert.Equal(t, TriOneshot, st.Single)
	assert.Equal(t, TriOn, st.Consume)
	assert.Equal(t, int32(3), st.Song)
	assert.True(t, st.HasSong)
	assert.Equal(t, int32(42), st.SongID)
	assert.Equal(t, int32(4), st.NextSong)
	assert.True(t, st.HasNextSong)
	assert.Equal(t, int32(43), st.NextSongID)
	assert.InDelta(t, 12.5, st.Elapsed.Seconds(), 0.001)
	assert.InDelta(t, 200.0, st.Duration.Seconds(), 0.001)
	require.NotNil(t, st.UpdatingDB)
	assert.Equal(t, 7, *st.UpdatingDB)
}

func TestParseStatusMissingFieldsLeaveZeroValues(t *testing.T) {
	st := parseStatus(nil)
	assert.False(t, st.HasVolume)
	assert.False(t, st.HasSong)
	assert.False(t, st.HasNextSong)
	assert.Nil(t, st.UpdatingDB)
	assert.Equal(t, TriOff, st.Single)
}

func TestTriStateCycle(t *testing.T) {
	assert.Equal(t, TriOn, TriOff.Cycle())
	assert.Equal(t, TriOneshot, TriOn.Cycle())
	assert.Equal(t, TriOff, TriOneshot.Cycle())
}

func TestTriStateCycleSkipOneshot(t *testing.T) {
	assert.Equal(t, TriOn, TriOff.CycleSkipOneshot())
	assert.Equal(t, TriOff, TriOn.CycleSkipOneshot())
	assert.Equal(t, TriOn, TriOneshot.CycleSkipOneshot())
}

func TestValueChangeWireEncoding(t *testing.T) {
	assert.Equal(t, "5", SetValue(5).wire())
	assert.Equal(t, "+2.5", IncreaseValue(2.5).wire())
	assert.Equal(t, "-10", DecreaseValue(10).wire())
}

func TestParseOutputs(t *testing.T) {
	kvs := []kv{
		{Key: "outputid", Value: "0"},
		{Key: "outputname", Value: "speakers"},
		{Key: "outputenabled", Value: "1"},
		{Key: "plugin", Value: "alsa"},
		{Key: "outputid", Value: "1"},
		{Key: "outputname", Value: "muted"},
		{Key: "outputenabled", Value: "0"},
	}
	outs := parseOutputs(kvs)
	require.Len(t, outs, 2)
	assert.Equal(t, Output{ID: 0, Name: "speakers", Enabled: true, Plugin: "alsa"}, outs[0])
	assert.Equal(t, Output{ID: 1, Name: "muted", Enabled: false}, outs[1])
}

func TestParseDecoders(t *testing.T) {
	kvs := []kv{
		{Key: "plugin", Value: "flac"},
		{Key: "suffix", Value: "flac"},
		{Key: "mime_type", Value: "audio/x-flac"},
		{Key: "plugin", Value: "mad"},
		{Key: "suffix", Value: "mp3"},
	}
	decoders := parseDecoders(kvs)
	require.Len(t, decoders, 2)
	assert.Equal(t, "flac", decoders[0].Plugin)
	assert.Equal(t, []string{"flac"}, decoders[0].Suffixes)
	assert.Equal(t, []string{"audio/x-flac"}, decoders[0].MimeTypes)
	assert.Equal(t, "mad", decoders[1].Plugin)
	assert.Equal(t, []string{"mp3"}, decoders[1].Suffixes)
}
