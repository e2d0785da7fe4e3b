package mpdproto

import (
	"fmt"
	"strings"

	"github.com/famish99/mpdc/internal/mpderr"
)

func (c *Client) SetSticker(uri, key, value string) error {
	line := fmt.Sprintf("sticker set song %s %s %s", QuoteAndEscape(uri), QuoteAndEscape(key), QuoteAndEscape(value))
	_, err := c.conn.do(line)
	return err
}

// GetSticker returns (value, true, nil) on success, ("", false, nil)
// when the server reports NoExist (no such sticker), and a non-nil
// error for anything else.
func (c *Client) GetSticker(uri, key string) (string, bool, error) {
	line := fmt.Sprintf("sticker get song %s %s", QuoteAndEscape(uri), QuoteAndEscape(key))
	kvs, err := c.conn.do(line)
	if err != nil {
		if mpderr.IsCode(err, mpderr.CodeNoExist) {
			return "", false, nil
		}
		return "", false, err
	}
	raw, ok := lookup(kvs, "sticker")
	if !ok {
		return "", false, nil
	}
	_, value, found := strings.Cut(raw, "=")
	if !found {
		return "", false, &mpderr.ParseError{Context: "sticker value", Line: raw}
	}
	return value, true, nil
}

// DeleteSticker deletes one sticker. A NoExist ACK (nothing to
// delete) is treated as success, matching delete_sticker_multiple's
// tolerance in the convenience layer.
func (c *Client) DeleteSticker(uri, key string) error {
	line := fmt.Sprintf("sticker delete song %s %s", QuoteAndEscape(uri), QuoteAndEscape(key))
	_, err := c.conn.do(line)
	if err != nil && mpderr.IsCode(err, mpderr.CodeNoExist) {
		return nil
	}
	return err
}

// ListStickers returns every sticker attached to uri as a key->value
// map.
func (c *Client) ListStickers(uri string) (map[string]string, error) {
	kvs, err := c.conn.do("sticker list song " + QuoteAndEscape(uri))
	if err != nil {
		return nil, err
	}
	return parseStickerList(kvs), nil
}

func parseStickerList(kvs []kv) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, p := range kvs {
		if p.Key != "sticker" {
			continue
		}
		key, value, ok := strings.Cut(p.Value, "=")
		if !ok {
			continue
		}
		out[key] = value
	}
	return out
}

// FetchSongStickers fetches stickers for many URIs in batches via
// command_list_ok_begin, correlating each per-URI success or
// NoExist-tolerant failure without failing the whole batch.
func (c *Client) FetchSongStickers(uris []string) (map[string]map[string]string, error) {
	result := make(map[string]map[string]string, len(uris))
	if len(uris) == 0 {
		return result, nil
	}

	i := 0
	listEndedWithErr := false
	for i < len(uris) {
		list, err := c.conn.BeginCommandList(true)
		if err != nil {
			return nil, err
		}
		for _, uri := range uris[i:] {
			if err := list.Queue("sticker list song " + QuoteAndEscape(uri)); err != nil {
				return nil, err
			}
		}
		if err := list.Close(); err != nil {
			return nil, err
		}

		listEndedWithErr = false
		for _, uri := range uris[i:] {
			kvs, err := list.NextItem()
			if err != nil {
				if !mpderr.IsCode(err, mpderr.CodeNoExist) {
					return nil, err
				}
				listEndedWithErr = true
				i++
				break
			}
			result[uri] = parseStickerList(kvs)
			i++
		}

		// When every queued item succeeded, the server still owes us
		// the trailing OK for the list as a whole.
		if !listEndedWithErr {
			if err := list.ReadFinal(); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}
