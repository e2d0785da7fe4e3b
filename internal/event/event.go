// Package event defines the UiEvent union consumed by the main event
// loop: key-derived action events, insert-mode flushes, query
// results, and idle-derived subsystem change notifications.
package event

import (
	"github.com/famish99/mpdc/internal/keys"
	"github.com/famish99/mpdc/internal/mpdproto"
)

// Kind discriminates the UiEvent union.
type Kind int

const (
	KindActionResolved Kind = iota
	KindInsertModeFlush
	KindQueryResult
	KindQueryFailed
	KindReconnected
	KindSubsystemChanged
	KindKeyTimeout
)

// Subsystem mirrors an MPD idle subsystem name as a typed constant so
// callers can switch on it instead of comparing strings.
type Subsystem string

const (
	SubsystemDatabase       Subsystem = mpdproto.SubsystemDatabase
	SubsystemUpdate         Subsystem = mpdproto.SubsystemUpdate
	SubsystemStoredPlaylist Subsystem = mpdproto.SubsystemStoredPlaylist
	SubsystemPlaylist       Subsystem = mpdproto.SubsystemPlaylist
	SubsystemPlayer         Subsystem = mpdproto.SubsystemPlayer
	SubsystemMixer          Subsystem = mpdproto.SubsystemMixer
	SubsystemOutput         Subsystem = mpdproto.SubsystemOutput
	SubsystemOptions        Subsystem = mpdproto.SubsystemOptions
	SubsystemPartition      Subsystem = mpdproto.SubsystemPartition
	SubsystemSticker        Subsystem = mpdproto.SubsystemSticker
	SubsystemSubscription   Subsystem = mpdproto.SubsystemSubscription
	SubsystemMessage        Subsystem = mpdproto.SubsystemMessage
	SubsystemNeighbor       Subsystem = mpdproto.SubsystemNeighbor
	SubsystemMount          Subsystem = mpdproto.SubsystemMount
)

// UiEvent is the single type flowing through the main event channel.
// Exactly one of the payload fields is meaningful, selected by Kind.
type UiEvent struct {
	Kind Kind

	// KindActionResolved
	Actions []keys.Action

	// KindInsertModeFlush
	FlushActions []keys.Action
	BufferedKeys keys.KeySequence

	// KindQueryResult / KindQueryFailed
	QueryID string
	Pane    string
	Result  any
	Err     error

	// KindSubsystemChanged
	Changed Subsystem
}

func ActionResolved(actions []keys.Action) UiEvent {
	return UiEvent{Kind: KindActionResolved, Actions: actions}
}

func InsertModeFlush(actions []keys.Action, buffered keys.KeySequence) UiEvent {
	return UiEvent{Kind: KindInsertModeFlush, FlushActions: actions, BufferedKeys: buffered}
}

func QueryResult(id, pane string, result any) UiEvent {
	return UiEvent{Kind: KindQueryResult, QueryID: id, Pane: pane, Result: result}
}

func QueryFailed(id, pane string, err error) UiEvent {
	return UiEvent{Kind: KindQueryFailed, QueryID: id, Pane: pane, Err: err}
}

func Reconnected() UiEvent {
	return UiEvent{Kind: KindReconnected}
}

func SubsystemChanged(s Subsystem) UiEvent {
	return UiEvent{Kind: KindSubsystemChanged, Changed: s}
}

func KeyTimeout() UiEvent {
	return UiEvent{Kind: KindKeyTimeout}
}
