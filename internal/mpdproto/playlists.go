package mpdproto

import "fmt"

// SaveMode controls whether SaveQueueAsPlaylist creates or replaces a
// stored playlist. Append/replace-by-mode requires mpd >= 0.24.0; on
// older servers only the implicit "create or fail" behaviour exists.
type SaveMode int

const (
	SaveCreate SaveMode = iota
	SaveReplace
	SaveAppend
)

func (m SaveMode) wire() string {
	switch m {
	case SaveReplace:
		return "replace"
	case SaveAppend:
		return "append"
	default:
		return ""
	}
}

func (c *Client) ListPlaylists() ([]string, error) {
	kvs, err := c.conn.do("listplaylists")
	if err != nil {
		return nil, err
	}
	return values(kvs, "playlist"), nil
}

func (c *Client) ListPlaylist(name string) ([]string, error) {
	kvs, err := c.conn.do("listplaylist " + QuoteAndEscape(name))
	if err != nil {
		return nil, err
	}
	return values(kvs, "file"), nil
}

func (c *Client) ListPlaylistInfo(name string, r *SingleOrRange) ([]*Song, error) {
	line := "listplaylistinfo " + QuoteAndEscape(name)
	if r != nil {
		if err := c.conn.RequireVersion(NewVersion(0, 24, 0), "ranged listplaylistinfo requires mpd >= 0.24.0"); err != nil {
			return nil, err
		}
		line += " " + r.String()
	}
	kvs, err := c.conn.do(line)
	if err != nil {
		return nil, err
	}
	return parseSongs(kvs), nil
}

func (c *Client) LoadPlaylist(name string, pos *QueuePosition) error {
	return c.sendPositional("load", name, pos)
}

func (c *Client) SaveQueueAsPlaylist(name string, mode SaveMode) error {
	line := "save " + QuoteAndEscape(name)
	if mode != SaveCreate {
		if err := c.conn.RequireVersion(NewVersion(0, 24, 0), "save mode requires mpd >= 0.24.0"); err != nil {
			return err
		}
		line += " " + mode.wire()
	}
	_, err := c.conn.do(line)
	return err
}

func (c *Client) ClearPlaylist(name string) error {
	_, err := c.conn.do("playlistclear " + QuoteAndEscape(name))
	return err
}

func (c *Client) AddToPlaylist(name, uri string, pos *QueuePosition) error {
	line := fmt.Sprintf("playlistadd %s %s", QuoteAndEscape(name), QuoteAndEscape(uri))
	if pos != nil {
		line += " " + pos.String()
	}
	_, err := c.conn.do(line)
	return err
}

func (c *Client) DeleteFromPlaylist(name string, r SingleOrRange) error {
	_, err := c.conn.do(fmt.Sprintf("playlistdelete %s %s", QuoteAndEscape(name), r.String()))
	return err
}

func (c *Client) RenamePlaylist(oldName, newName string) error {
	_, err := c.conn.do(fmt.Sprintf("rename %s %s", QuoteAndEscape(oldName), QuoteAndEscape(newName)))
	return err
}

func (c *Client) DeletePlaylist(name string) error {
	_, err := c.conn.do("rm " + QuoteAndEscape(name))
	return err
}
