package mpdproto

// Sticker is a (uri, key, value) triple. Multiple stickers may exist
// per URI; value is an arbitrary UTF-8 string.
type Sticker struct {
	URI   string
	Key   string
	Value string
}
