package mpdproto

import (
	"fmt"
	"strconv"

	"github.com/famish99/mpdc/internal/mpderr"
)

// Client is the typed command façade over a Conn. Most methods write
// one fully encoded command and read its response; a few (such as
// SearchIgnoringDiacritics and the batch helpers) send a command list,
// and AlbumArt/ReadPicture repeat their command once per chunk. Callers
// needing their own pipelined batch use BeginCommandList directly.
type Client struct {
	conn *Conn
}

func NewClient(conn *Conn) *Client { return &Client{conn: conn} }

func (c *Client) Conn() *Conn         { return c.conn }
func (c *Client) Version() Version    { return c.conn.Version() }
func (c *Client) Reconnect() error    { return c.conn.Reconnect() }

func (c *Client) Ping() error {
	_, err := c.conn.do("ping")
	return err
}

func (c *Client) GetStatus() (*Status, error) {
	kvs, err := c.conn.do("status")
	if err != nil {
		return nil, err
	}
	return parseStatus(kvs), nil
}

func (c *Client) CurrentSong() (*Song, error) {
	kvs, err := c.conn.do("currentsong")
	if err != nil {
		return nil, err
	}
	return parseSingleSong(kvs), nil
}

func (c *Client) PlaylistInfo() ([]*Song, error) {
	kvs, err := c.conn.do("playlistinfo")
	if err != nil {
		return nil, err
	}
	return parseSongs(kvs), nil
}

func (c *Client) Find(filters []Filter) ([]*Song, error) {
	return c.findLike("find", filters)
}

func (c *Client) Search(filters []Filter) ([]*Song, error) {
	return c.findLike("search", filters)
}

func (c *Client) findLike(verb string, filters []Filter) ([]*Song, error) {
	line := fmt.Sprintf("%s %s", verb, QuoteAndEscape(EncodeFilters(filters)))
	kvs, err := c.conn.do(line)
	if err != nil {
		return nil, err
	}
	return parseSongs(kvs), nil
}

// SearchIgnoringDiacritics issues search inside a strict list between
// enabling and disabling strip_diacritics, gated on the server advertising the
// "stringnormalization" capability queried during the handshake.
// Wrapped in a list because the upstream client this mirrors sends the
// diacritics toggle and the search itself as one unit so a stale
// toggle can never leak onto an unrelated later command.
func (c *Client) SearchIgnoringDiacritics(filters []Filter) ([]*Song, error) {
	if !c.conn.commands["stringnormalization"] {
		return nil, &mpderr.UnsupportedVersionError{Reason: "server does not advertise stringnormalization"}
	}
	list, err := c.conn.BeginCommandList(false)
	if err != nil {
		return nil, err
	}
	if err := list.Queue("stringnormalization enable strip_diacritics"); err != nil {
		return nil, err
	}
	if err := list.Queue(fmt.Sprintf("search %s", QuoteAndEscape(EncodeFilters(filters)))); err != nil {
		return nil, err
	}
	if err := list.Queue("stringnormalization disable strip_diacritics"); err != nil {
		return nil, err
	}
	if err := list.Close(); err != nil {
		return nil, err
	}
	out, err := list.ReadStrict()
	if err != nil {
		return nil, err
	}
	return parseSongs(out), nil
}

func (c *Client) List(tag Tag, filters []Filter) ([]string, error) {
	line := fmt.Sprintf("list %s", tag)
	if len(filters) > 0 {
		line += " " + QuoteAndEscape(EncodeFilters(filters))
	}
	kvs, err := c.conn.do(line)
	if err != nil {
		return nil, err
	}
	field := tagFieldNames[tag]
	if field == "" {
		field = string(tag)
	}
	return values(kvs, field), nil
}

func (c *Client) Add(uri string, pos *QueuePosition) error {
	return c.sendPositional("add", uri, pos)
}

func (c *Client) AddID(uri string, pos *QueuePosition) (int32, error) {
	line := "addid " + QuoteAndEscape(uri)
	if pos != nil {
		line += " " + pos.String()
	}
	kvs, err := c.conn.do(line)
	if err != nil {
		return 0, err
	}
	idStr, _ := lookup(kvs, "Id")
	id, _ := strconv.Atoi(idStr)
	return int32(id), nil
}

func (c *Client) sendPositional(verb, uri string, pos *QueuePosition) error {
	line := verb + " " + QuoteAndEscape(uri)
	if pos != nil {
		line += " " + pos.String()
	}
	_, err := c.conn.do(line)
	return err
}

func (c *Client) Clear() error {
	_, err := c.conn.do("clear")
	return err
}

func (c *Client) Delete(r SingleOrRange) error {
	_, err := c.conn.do("delete " + r.String())
	return err
}

func (c *Client) DeleteID(id int32) error {
	_, err := c.conn.do(fmt.Sprintf("deleteid %d", id))
	return err
}

func (c *Client) Move(from SingleOrRange, to QueuePosition) error {
	_, err := c.conn.do(fmt.Sprintf("move %s %s", from.String(), to.String()))
	return err
}

func (c *Client) MoveID(id int32, to QueuePosition) error {
	_, err := c.conn.do(fmt.Sprintf("moveid %d %s", id, to.String()))
	return err
}

func (c *Client) Play() error {
	_, err := c.conn.do("play")
	return err
}

func (c *Client) PlayPos(pos int) error {
	_, err := c.conn.do(fmt.Sprintf("play %d", pos))
	return err
}

func (c *Client) PlayID(id int32) error {
	_, err := c.conn.do(fmt.Sprintf("playid %d", id))
	return err
}

func (c *Client) Pause() error {
	_, err := c.conn.do("pause 1")
	return err
}

func (c *Client) Unpause() error {
	_, err := c.conn.do("pause 0")
	return err
}

func (c *Client) PauseToggle() error {
	_, err := c.conn.do("pause")
	return err
}

func (c *Client) Stop() error {
	_, err := c.conn.do("stop")
	return err
}

func (c *Client) Next() error {
	_, err := c.conn.do("next")
	return err
}

func (c *Client) Previous() error {
	_, err := c.conn.do("previous")
	return err
}

func (c *Client) SeekCurrent(v ValueChange) error {
	_, err := c.conn.do("seekcur " + v.wire())
	return err
}

func (c *Client) Random(on bool) error {
	_, err := c.conn.do("random " + boolWire(on))
	return err
}

func (c *Client) Repeat(on bool) error {
	_, err := c.conn.do("repeat " + boolWire(on))
	return err
}

func (c *Client) Single(v TriState) error {
	if v == TriOneshot {
		if err := c.conn.RequireVersion(NewVersion(0, 24, 0), "single oneshot requires mpd >= 0.24.0"); err != nil {
			return err
		}
	}
	_, err := c.conn.do("single " + v.wire())
	return err
}

func (c *Client) Consume(v TriState) error {
	if v == TriOneshot {
		if err := c.conn.RequireVersion(NewVersion(0, 24, 0), "consume oneshot requires mpd >= 0.24.0"); err != nil {
			return err
		}
	}
	_, err := c.conn.do("consume " + v.wire())
	return err
}

func (c *Client) GetVolume() (int, error) {
	if err := c.conn.RequireVersion(NewVersion(0, 23, 0), "getvol requires mpd >= 0.23.0"); err != nil {
		return 0, err
	}
	kvs, err := c.conn.do("getvol")
	if err != nil {
		return 0, err
	}
	volStr, _ := lookup(kvs, "volume")
	vol, _ := strconv.Atoi(volStr)
	return vol, nil
}

func (c *Client) SetVolume(v int) error {
	_, err := c.conn.do(fmt.Sprintf("setvol %d", v))
	return err
}

func (c *Client) Outputs() ([]Output, error) {
	kvs, err := c.conn.do("outputs")
	if err != nil {
		return nil, err
	}
	return parseOutputs(kvs), nil
}

func (c *Client) Decoders() ([]Decoder, error) {
	kvs, err := c.conn.do("decoders")
	if err != nil {
		return nil, err
	}
	return parseDecoders(kvs), nil
}

// Update triggers a database update and returns the job id, used by
// callers that want to wait for a matching idle(update) notification
// whose updating_db has advanced past it.
func (c *Client) Update(path string) (int, error) {
	return c.updateLike("update", path)
}

func (c *Client) Rescan(path string) (int, error) {
	return c.updateLike("rescan", path)
}

func (c *Client) updateLike(verb, path string) (int, error) {
	line := verb
	if path != "" {
		line += " " + QuoteAndEscape(path)
	}
	kvs, err := c.conn.do(line)
	if err != nil {
		return 0, err
	}
	jobStr, _ := lookup(kvs, "updating_db")
	job, _ := strconv.Atoi(jobStr)
	return job, nil
}

func (c *Client) SwitchPartition(name string) error {
	_, err := c.conn.do("partition " + QuoteAndEscape(name))
	return err
}

func (c *Client) NewPartition(name string) error {
	_, err := c.conn.do("newpartition " + QuoteAndEscape(name))
	return err
}

func (c *Client) ListPartitions() ([]string, error) {
	kvs, err := c.conn.do("listpartitions")
	if err != nil {
		return nil, err
	}
	return values(kvs, "partition"), nil
}

func (c *Client) AlbumArt(uri string) ([]byte, bool, error) {
	return c.conn.FetchBinary("albumart", uri)
}

func (c *Client) ReadPicture(uri string) ([]byte, bool, error) {
	return c.conn.FetchBinary("readpicture", uri)
}

func boolWire(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
