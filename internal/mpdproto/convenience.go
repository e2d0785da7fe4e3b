package mpdproto

import (
	"math/rand"

	"github.com/famish99/mpdc/internal/mpderr"
	"github.com/famish99/mpdc/internal/mpdlog"
)

// Position is the insertion point for a batch enqueue, distinct from
// QueuePosition (which is the wire rendering of a single numeric
// slot): Position additionally expresses "relative to wherever the
// current song ends up being", which EnqueueMultiple resolves against
// the queue state passed to it.
type Position int

const (
	PositionAfterCurrentSong Position = iota
	PositionBeforeCurrentSong
	PositionStartOfQueue
	PositionEndOfQueue
	PositionReplace
)

// EnqueueKind tags which of the three Enqueue variants a batch item
// is.
type EnqueueKind int

const (
	EnqueueFile EnqueueKind = iota
	EnqueuePlaylist
	EnqueueFind
)

// EnqueueItem is one unit of a batch enqueue: a library file path, a
// stored playlist name, or a filter expression whose matches should
// all be enqueued.
type EnqueueItem struct {
	Kind     EnqueueKind
	Path     string
	Playlist string
	Filters  []Filter
}

func EnqueueFileItem(path string) EnqueueItem     { return EnqueueItem{Kind: EnqueueFile, Path: path} }
func EnqueuePlaylistItem(name string) EnqueueItem { return EnqueueItem{Kind: EnqueuePlaylist, Playlist: name} }
func EnqueueFindItem(filters []Filter) EnqueueItem {
	return EnqueueItem{Kind: EnqueueFind, Filters: filters}
}

// AutoplayKind tags which autoplay policy EnqueueMultiple should
// apply once the batch has been added.
type AutoplayKind int

const (
	AutoplayNone AutoplayKind = iota
	AutoplayFirst
	AutoplayHovered
	AutoplayHoveredOrFirst
)

// Autoplay carries the queue-state inputs EnqueueMultiple needs to
// compute which row to play after a batch enqueue. CurrentSongIdx and
// HoveredSongIdx are nil when there is no current/hovered row.
type Autoplay struct {
	Kind           AutoplayKind
	QueueLen       int
	CurrentSongIdx *int
	HoveredSongIdx *int
}

// PlayPositionSafe plays the given queue index, swallowing an
// Argument ACK (another client raced a queue mutation) as a warning
// rather than an error — a perfect re-fetch-and-search recovery would
// be more robust but this is judged good enough.
func (c *Client) PlayPositionSafe(idx int) error {
	err := c.PlayPos(idx)
	if err == nil {
		return nil
	}
	if mpderr.IsCode(err, mpderr.CodeArgument) {
		mpdlog.Logger.Warn().Msg("failed to autoplay song")
		return nil
	}
	return err
}

// EnqueueMultiple adds items to the queue as one command list, then
// optionally plays the computed autoplay row. Items destined for the
// "after current song" (+0) and "start of queue" (0) insertion points
// are added in reverse order, since each add at a fixed slot pushes the
// previous one back, so the server ends up with them in the caller's
// original order.
func (c *Client) EnqueueMultiple(items []EnqueueItem, position Position, autoplay Autoplay) error {
	if len(items) == 0 {
		return nil
	}

	shouldReverse := position == PositionAfterCurrentSong || position == PositionStartOfQueue
	if shouldReverse {
		items = reversedItems(items)
	}

	autoplayIdx, skip := resolveAutoplayIndex(position, autoplay)
	if skip {
		return nil
	}

	list, err := c.conn.BeginCommandList(false)
	if err != nil {
		return err
	}
	if position == PositionReplace {
		if err := list.Queue("clear"); err != nil {
			return err
		}
	}

	wirePos := positionToQueuePosition(position)
	for _, item := range items {
		var line string
		switch item.Kind {
		case EnqueueFile:
			line = "add " + QuoteAndEscape(item.Path)
		case EnqueuePlaylist:
			line = "load " + QuoteAndEscape(item.Playlist)
		case EnqueueFind:
			line = "findadd " + QuoteAndEscape(EncodeFilters(item.Filters))
		}
		if wirePos != nil {
			line += " " + wirePos.String()
		}
		if err := list.Queue(line); err != nil {
			return err
		}
	}
	if err := list.Close(); err != nil {
		return err
	}
	if _, err := list.ReadStrict(); err != nil {
		return err
	}

	if autoplayIdx != nil {
		return c.PlayPositionSafe(*autoplayIdx)
	}
	return nil
}

func positionToQueuePosition(p Position) *QueuePosition {
	switch p {
	case PositionAfterCurrentSong:
		pos := RelativeAddPosition(0)
		return &pos
	case PositionBeforeCurrentSong:
		pos := RelativeSubPosition(0)
		return &pos
	case PositionStartOfQueue:
		pos := AbsolutePosition(0)
		return &pos
	default: // EndOfQueue, Replace: MPD appends at the end with no position argument.
		return nil
	}
}

func resolveAutoplayIndex(position Position, a Autoplay) (idx *int, skip bool) {
	ip := func(n int) *int { return &n }

	switch a.Kind {
	case AutoplayNone:
		return nil, false

	case AutoplayFirst:
		if a.CurrentSongIdx == nil {
			switch position {
			case PositionAfterCurrentSong, PositionBeforeCurrentSong:
				return nil, true
			case PositionStartOfQueue:
				return ip(0), false
			case PositionEndOfQueue:
				return ip(a.QueueLen), false
			default: // Replace
				return ip(0), false
			}
		}
		cur := *a.CurrentSongIdx
		switch position {
		case PositionAfterCurrentSong:
			return ip(cur + 1), false
		case PositionBeforeCurrentSong:
			return ip(cur), false
		case PositionStartOfQueue:
			return ip(0), false
		case PositionEndOfQueue:
			return ip(a.QueueLen), false
		default:
			return ip(0), false
		}

	case AutoplayHovered:
		switch position {
		case PositionAfterCurrentSong:
			if a.CurrentSongIdx == nil {
				return nil, true
			}
			if a.HoveredSongIdx == nil {
				return nil, false
			}
			return ip(*a.HoveredSongIdx + 1 + *a.CurrentSongIdx), false
		case PositionBeforeCurrentSong:
			if a.CurrentSongIdx == nil {
				return nil, true
			}
			if a.HoveredSongIdx == nil {
				return nil, false
			}
			return ip(*a.HoveredSongIdx + *a.CurrentSongIdx), false
		case PositionStartOfQueue:
			if a.HoveredSongIdx == nil {
				return nil, false
			}
			return ip(*a.HoveredSongIdx), false
		case PositionEndOfQueue:
			if a.HoveredSongIdx == nil {
				return nil, false
			}
			return ip(*a.HoveredSongIdx + a.QueueLen), false
		default: // Replace
			if a.HoveredSongIdx == nil {
				return nil, false
			}
			return ip(*a.HoveredSongIdx), false
		}

	default: // AutoplayHoveredOrFirst
		switch position {
		case PositionAfterCurrentSong:
			if a.CurrentSongIdx == nil {
				return nil, true
			}
			if a.HoveredSongIdx != nil {
				return ip(*a.HoveredSongIdx + 1 + *a.CurrentSongIdx), false
			}
			return ip(*a.CurrentSongIdx + 1), false
		case PositionBeforeCurrentSong:
			if a.CurrentSongIdx == nil {
				return nil, true
			}
			if a.HoveredSongIdx != nil {
				return ip(*a.HoveredSongIdx + *a.CurrentSongIdx), false
			}
			return ip(*a.CurrentSongIdx), false
		case PositionStartOfQueue:
			if a.HoveredSongIdx != nil {
				return ip(*a.HoveredSongIdx), false
			}
			return ip(0), false
		case PositionEndOfQueue:
			if a.HoveredSongIdx != nil {
				return ip(*a.HoveredSongIdx + a.QueueLen), false
			}
			return ip(a.QueueLen), false
		default: // Replace
			if a.HoveredSongIdx != nil {
				return ip(*a.HoveredSongIdx), false
			}
			return ip(0), false
		}
	}
}

func reversedItems(items []EnqueueItem) []EnqueueItem {
	out := make([]EnqueueItem, len(items))
	for i, item := range items {
		out[len(items)-1-i] = item
	}
	return out
}

// DeleteTarget tags one element of a batch delete: a range within a
// stored playlist, or an entire stored playlist by name.
type DeleteTarget struct {
	IsPlaylist   bool
	PlaylistName string
	Range        SingleOrRange
	Name         string
}

func DeleteSongInPlaylist(playlist string, r SingleOrRange) DeleteTarget {
	return DeleteTarget{PlaylistName: playlist, Range: r}
}

func DeleteWholePlaylist(name string) DeleteTarget {
	return DeleteTarget{IsPlaylist: true, Name: name}
}

// DeleteMultiple removes items in reverse order (so earlier indices
// in a playlist are not shifted out from under later deletes) inside
// one command list.
func (c *Client) DeleteMultiple(items []DeleteTarget) error {
	if len(items) == 0 {
		return nil
	}
	list, err := c.conn.BeginCommandList(false)
	if err != nil {
		return err
	}
	for i := len(items) - 1; i >= 0; i-- {
		item := items[i]
		var line string
		if item.IsPlaylist {
			line = "rm " + QuoteAndEscape(item.Name)
		} else {
			line = "playlistdelete " + QuoteAndEscape(item.PlaylistName) + " " + item.Range.String()
		}
		if err := list.Queue(line); err != nil {
			return err
		}
	}
	if err := list.Close(); err != nil {
		return err
	}
	_, err = list.ReadStrict()
	return err
}

// AddToPlaylistMultiple appends songPaths to a stored playlist in one
// command list. Absolute filesystem paths are given a file:// scheme
// since MPD's stored-playlist format requires a URI scheme for
// out-of-library entries.
func (c *Client) AddToPlaylistMultiple(playlistName string, songPaths []string) error {
	if len(songPaths) == 0 {
		return nil
	}
	list, err := c.conn.BeginCommandList(false)
	if err != nil {
		return err
	}
	for _, path := range songPaths {
		uri := path
		if len(path) > 0 && path[0] == '/' {
			uri = "file://" + path
		}
		line := "playlistadd " + QuoteAndEscape(playlistName) + " " + QuoteAndEscape(uri)
		if err := list.Queue(line); err != nil {
			return err
		}
	}
	if err := list.Close(); err != nil {
		return err
	}
	_, err = list.ReadStrict()
	return err
}

// CreatePlaylist creates a stored playlist with the given items. MPD
// cannot create an empty stored playlist directly, so the queue is
// saved under the new name and then cleared before the real items are
// appended — all inside one command list.
func (c *Client) CreatePlaylist(name string, items []string) error {
	if len(items) == 0 {
		return nil
	}
	list, err := c.conn.BeginCommandList(false)
	if err != nil {
		return err
	}
	if err := list.Queue("save " + QuoteAndEscape(name)); err != nil {
		return err
	}
	if err := list.Queue("playlistclear " + QuoteAndEscape(name)); err != nil {
		return err
	}
	for _, item := range items {
		if err := list.Queue("playlistadd " + QuoteAndEscape(name) + " " + QuoteAndEscape(item)); err != nil {
			return err
		}
	}
	if err := list.Close(); err != nil {
		return err
	}
	_, err = list.ReadStrict()
	return err
}

// NextKeepState skips to the next track; if keep is set and the
// player is currently paused, the skip and a pause are sent in one
// command list so the new track is never audibly started.
func (c *Client) NextKeepState(keep bool, state State) error {
	return c.skipKeepState("next", keep, state)
}

// PrevKeepState is NextKeepState's mirror for the previous command.
func (c *Client) PrevKeepState(keep bool, state State) error {
	return c.skipKeepState("previous", keep, state)
}

func (c *Client) skipKeepState(verb string, keep bool, state State) error {
	if !keep || state == StatePlay {
		_, err := c.conn.do(verb)
		return err
	}
	if state == StateStop {
		return nil
	}
	list, err := c.conn.BeginCommandList(false)
	if err != nil {
		return err
	}
	if err := list.Queue(verb); err != nil {
		return err
	}
	if err := list.Queue("pause 1"); err != nil {
		return err
	}
	if err := list.Close(); err != nil {
		return err
	}
	_, err = list.ReadStrict()
	return err
}

// PartitionedOutputKind distinguishes an output belonging to the
// current partition (actionable) from one reported only because MPD
// lists all outputs on the default partition (informational).
type PartitionedOutputKind int

const (
	OtherPartitionOutput PartitionedOutputKind = iota
	CurrentPartitionOutput
)

type PartitionedOutput struct {
	ID      uint32
	Name    string
	Enabled bool
	Plugin  string
	Kind    PartitionedOutputKind
}

// ListPartitionedOutputs reconciles MPD's quirk that "outputs" only
// enumerates every output when issued on the "default" partition: on
// any other partition the client switches to default, lists, switches
// back, lists again, and matches entries by name to tell which
// outputs are actionable from the current partition.
func (c *Client) ListPartitionedOutputs(currentPartition string) ([]PartitionedOutput, error) {
	if currentPartition == "default" {
		outs, err := c.Outputs()
		if err != nil {
			return nil, err
		}
		result := make([]PartitionedOutput, len(outs))
		for i, o := range outs {
			kind := CurrentPartitionOutput
			enabled := o.Enabled
			if o.Plugin == "dummy" {
				kind = OtherPartitionOutput
				enabled = false
			}
			result[i] = PartitionedOutput{ID: o.ID, Name: o.Name, Enabled: enabled, Plugin: o.Plugin, Kind: kind}
		}
		return result, nil
	}

	list, err := c.conn.BeginCommandList(true)
	if err != nil {
		return nil, err
	}
	if err := list.Queue("partition default"); err != nil {
		return nil, err
	}
	if err := list.Queue("outputs"); err != nil {
		return nil, err
	}
	if err := list.Queue("partition " + QuoteAndEscape(currentPartition)); err != nil {
		return nil, err
	}
	if err := list.Queue("outputs"); err != nil {
		return nil, err
	}
	if err := list.Close(); err != nil {
		return nil, err
	}

	if _, err := list.NextItem(); err != nil { // switch to default
		return nil, err
	}
	allKvs, err := list.NextItem()
	if err != nil {
		return nil, err
	}
	allOutputs := parseOutputs(allKvs)

	if _, err := list.NextItem(); err != nil { // switch back
		return nil, err
	}
	curKvs, err := list.NextItem()
	if err != nil {
		return nil, err
	}
	currentOutputs := parseOutputs(curKvs)

	if err := list.ReadFinal(); err != nil {
		return nil, err
	}

	result := make([]PartitionedOutput, 0, len(allOutputs))
	for _, output := range allOutputs {
		matched := false
		for _, cur := range currentOutputs {
			if cur.Name == output.Name && cur.Plugin != "dummy" {
				result = append(result, PartitionedOutput{
					ID: cur.ID, Name: cur.Name, Enabled: cur.Enabled, Plugin: cur.Plugin,
					Kind: CurrentPartitionOutput,
				})
				matched = true
				break
			}
		}
		if !matched {
			result = append(result, PartitionedOutput{
				ID: output.ID, Name: output.Name, Enabled: false, Plugin: output.Plugin,
				Kind: OtherPartitionOutput,
			})
		}
	}
	return result, nil
}

// AddRandomSongs shuffles the whole library and enqueues count of
// them in one command list.
func (c *Client) AddRandomSongs(count int) error {
	uris, err := c.List(TagFile, nil)
	if err != nil {
		// "file" is not a listable tag on every server; fall back to a
		// full library scan via find with an always-true filter on "any".
		songs, ferr := c.Find([]Filter{NewFilter(TagAny, "", FilterContains)})
		if ferr != nil {
			return err
		}
		uris = make([]string, len(songs))
		for i, s := range songs {
			uris[i] = s.File
		}
	}
	return c.addRandomURIs(uris, count)
}

// AddRandomTag shuffles the distinct values of tag and enqueues count
// of the matching songs (one song per chosen value) in one command
// list.
func (c *Client) AddRandomTag(count int, tag Tag) error {
	values, err := c.List(tag, nil)
	if err != nil {
		return err
	}
	rand.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	if count > len(values) {
		count = len(values)
	}

	list, err := c.conn.BeginCommandList(false)
	if err != nil {
		return err
	}
	for _, v := range values[:count] {
		line := "findadd " + QuoteAndEscape(EncodeFilters([]Filter{NewFilter(tag, v, FilterExact)}))
		if err := list.Queue(line); err != nil {
			return err
		}
	}
	if err := list.Close(); err != nil {
		return err
	}
	_, err = list.ReadStrict()
	return err
}

func (c *Client) addRandomURIs(uris []string, count int) error {
	rand.Shuffle(len(uris), func(i, j int) { uris[i], uris[j] = uris[j], uris[i] })
	if count > len(uris) {
		count = len(uris)
	}
	list, err := c.conn.BeginCommandList(false)
	if err != nil {
		return err
	}
	for _, uri := range uris[:count] {
		if err := list.Queue("add " + QuoteAndEscape(uri)); err != nil {
			return err
		}
	}
	if err := list.Close(); err != nil {
		return err
	}
	_, err = list.ReadStrict()
	return err
}

// SetStickerMultiple sets one sticker across every song resolved from
// items (files, playlist contents, or find-filter matches).
func (c *Client) SetStickerMultiple(key, value string, items []EnqueueItem) error {
	uris, err := c.resolveURIs(items)
	if err != nil {
		return err
	}
	list, err := c.conn.BeginCommandList(false)
	if err != nil {
		return err
	}
	for _, uri := range uris {
		line := "sticker set song " + QuoteAndEscape(uri) + " " + QuoteAndEscape(key) + " " + QuoteAndEscape(value)
		if err := list.Queue(line); err != nil {
			return err
		}
	}
	if err := list.Close(); err != nil {
		return err
	}
	_, err = list.ReadStrict()
	return err
}

// DeleteStickerMultiple deletes one sticker across every song
// resolved from items, tolerating a NoExist ACK per song.
func (c *Client) DeleteStickerMultiple(key string, items []EnqueueItem) error {
	uris, err := c.resolveURIs(items)
	if err != nil {
		return err
	}
	for _, uri := range uris {
		if err := c.DeleteSticker(uri, key); err != nil {
			return err
		}
	}
	return nil
}

func (c *Client) resolveURIs(items []EnqueueItem) ([]string, error) {
	var uris []string
	for _, item := range items {
		switch item.Kind {
		case EnqueueFile:
			uris = append(uris, item.Path)
		case EnqueuePlaylist:
			entries, err := c.ListPlaylist(item.Playlist)
			if err != nil {
				return nil, err
			}
			uris = append(uris, entries...)
		case EnqueueFind:
			songs, err := c.Find(item.Filters)
			if err != nil {
				return nil, err
			}
			for _, s := range songs {
				uris = append(uris, s.File)
			}
		}
	}
	return uris, nil
}
