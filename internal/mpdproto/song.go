package mpdproto

import "time"

// Tag enumerates the metadata keys a Filter or Song can carry. Field
// names mirror the wire spelling the server uses in response lines
// (see tagFieldNames below), lower-cased.
type Tag string

const (
	TagAny         Tag = "any"
	TagArtist      Tag = "artist"
	TagAlbum       Tag = "album"
	TagAlbumArtist Tag = "albumartist"
	TagTitle       Tag = "title"
	TagTrack       Tag = "track"
	TagDate        Tag = "date"
	TagGenre       Tag = "genre"
	TagComposer    Tag = "composer"
	TagPerformer   Tag = "performer"
	TagDisc        Tag = "disc"
	TagFile        Tag = "file"
)

// tagFieldNames maps a Tag to the capitalized field name the server
// emits in key/value response lines.
var tagFieldNames = map[Tag]string{
	TagArtist:      "Artist",
	TagAlbum:       "Album",
	TagAlbumArtist: "AlbumArtist",
	TagTitle:       "Title",
	TagTrack:       "Track",
	TagDate:        "Date",
	TagGenre:       "Genre",
	TagComposer:    "Composer",
	TagPerformer:   "Performer",
	TagDisc:        "Disc",
}

// fieldTags is the inverse of tagFieldNames, built once at init for
// the response parser.
var fieldTags = func() map[string]Tag {
	m := make(map[string]Tag, len(tagFieldNames))
	for tag, field := range tagFieldNames {
		m[field] = tag
	}
	return m
}()

// Song is a parsed library entry. Identity is the server-assigned
// 32-bit queue id (unique within a queue session, not across
// library-wide results where Id is unset).
type Song struct {
	File     string
	Duration time.Duration
	HasID    bool
	ID       int32
	Pos      int32
	// Tags holds multi-valued tags in server-emitted order; every
	// entry has at least one value.
	Tags map[Tag][]string
}

func newSong(file string) *Song {
	return &Song{File: file, Tags: make(map[Tag][]string)}
}

// TagValue returns the first value for tag, if any.
func (s *Song) TagValue(tag Tag) (string, bool) {
	vs, ok := s.Tags[tag]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

func (s *Song) addTag(tag Tag, value string) {
	s.Tags[tag] = append(s.Tags[tag], value)
}
