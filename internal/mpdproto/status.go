package mpdproto

import (
	"strconv"
	"time"
)

// State is the player's play/pause/stop state.
type State string

const (
	StatePlay  State = "play"
	StatePause State = "pause"
	StateStop  State = "stop"
)

// TriState models MPD's three-valued single/consume modes: off, on,
// or oneshot (oneshot requires server ≥0.24.0, see RequireVersion
// calls in client.go).
type TriState int

const (
	TriOff TriState = iota
	TriOn
	TriOneshot
)

func (t TriState) wire() string {
	switch t {
	case TriOn:
		return "1"
	case TriOneshot:
		return "oneshot"
	default:
		return "0"
	}
}

func parseTriState(s string) TriState {
	switch s {
	case "1":
		return TriOn
	case "oneshot":
		return TriOneshot
	default:
		return TriOff
	}
}

// Cycle advances off -> on -> oneshot -> off.
func (t TriState) Cycle() TriState { return (t + 1) % 3 }

// CycleSkipOneshot advances off -> on -> off, used against servers
// too old to support the oneshot value.
func (t TriState) CycleSkipOneshot() TriState {
	if t == TriOn {
		return TriOff
	}
	return TriOn
}

// ValueChange models a relative-or-absolute numeric change, used for
// seek and volume commands.
type ValueChange struct {
	kind  valueChangeKind
	value float64
}

type valueChangeKind int

const (
	vcSet valueChangeKind = iota
	vcIncrease
	vcDecrease
)

func SetValue(v float64) ValueChange      { return ValueChange{vcSet, v} }
func IncreaseValue(v float64) ValueChange { return ValueChange{vcIncrease, v} }
func DecreaseValue(v float64) ValueChange { return ValueChange{vcDecrease, v} }

func (v ValueChange) wire() string {
	switch v.kind {
	case vcIncrease:
		return "+" + formatFloat(v.value)
	case vcDecrease:
		return "-" + formatFloat(v.value)
	default:
		return formatFloat(v.value)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Status is the parsed response to the "status" command.
type Status struct {
	Partition    string
	State        State
	Volume       int
	HasVolume    bool
	Repeat       bool
	Random       bool
	Single       TriState
	Consume      TriState
	Song         int32
	SongID       int32
	HasSong      bool
	Elapsed      time.Duration
	Duration     time.Duration
	UpdatingDB   *int
	NextSong     int32
	NextSongID   int32
	HasNextSong  bool
}

func parseStatus(kvs []kv) *Status {
	st := &Status{}
	for _, p := range kvs {
		switch p.Key {
		case "partition":
			st.Partition = p.Value
		case "state":
			st.State = State(p.Value)
		case "volume":
			if n, err := strconv.Atoi(p.Value); err == nil {
				st.Volume = n
				st.HasVolume = true
			}
		case "repeat":
			st.Repeat = p.Value == "1"
		case "random":
			st.Random = p.Value == "1"
		case "single":
			st.Single = parseTriState(p.Value)
		case "consume":
			st.Consume = parseTriState(p.Value)
		case "song":
			if n, err := strconv.Atoi(p.Value); err == nil {
				st.Song = int32(n)
				st.HasSong = true
			}
		case "songid":
			if n, err := strconv.Atoi(p.Value); err == nil {
				st.SongID = int32(n)
			}
		case "nextsong":
			if n, err := strconv.Atoi(p.Value); err == nil {
				st.NextSong = int32(n)
				st.HasNextSong = true
			}
		case "nextsongid":
			if n, err := strconv.Atoi(p.Value); err == nil {
				st.NextSongID = int32(n)
			}
		case "elapsed":
			if f, err := strconv.ParseFloat(p.Value, 64); err == nil {
				st.Elapsed = time.Duration(f * float64(time.Second))
			}
		case "duration":
			if f, err := strconv.ParseFloat(p.Value, 64); err == nil {
				st.Duration = time.Duration(f * float64(time.Second))
			}
		case "updating_db":
			if n, err := strconv.Atoi(p.Value); err == nil {
				st.UpdatingDB = &n
			}
		}
	}
	return st
}

// Output describes one playback output as returned by "outputs".
type Output struct {
	ID      uint32
	Name    string
	Enabled bool
	Plugin  string
}

func parseOutputs(kvs []kv) []Output {
	var outs []Output
	var cur *Output
	for _, p := range kvs {
		switch p.Key {
		case "outputid":
			if n, err := strconv.Atoi(p.Value); err == nil {
				outs = append(outs, Output{ID: uint32(n)})
				cur = &outs[len(outs)-1]
			}
		case "outputname":
			if cur != nil {
				cur.Name = p.Value
			}
		case "outputenabled":
			if cur != nil {
				cur.Enabled = p.Value == "1"
			}
		case "plugin":
			if cur != nil {
				cur.Plugin = p.Value
			}
		}
	}
	return outs
}

// Decoder describes one entry from the "decoders" command.
type Decoder struct {
	Plugin    string
	Suffixes  []string
	MimeTypes []string
}

func parseDecoders(kvs []kv) []Decoder {
	var decoders []Decoder
	var cur *Decoder
	for _, p := range kvs {
		switch p.Key {
		case "plugin":
			decoders = append(decoders, Decoder{Plugin: p.Value})
			cur = &decoders[len(decoders)-1]
		case "suffix":
			if cur != nil {
				cur.Suffixes = append(cur.Suffixes, p.Value)
			}
		case "mime_type":
			if cur != nil {
				cur.MimeTypes = append(cur.MimeTypes, p.Value)
			}
		}
	}
	return decoders
}
