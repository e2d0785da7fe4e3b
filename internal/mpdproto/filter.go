package mpdproto

import "strings"

// FilterKind enumerates the comparison operators a Filter expression
// may use against a tag value.
type FilterKind int

const (
	FilterExact FilterKind = iota
	FilterNotExact
	FilterStartsWith
	FilterContains
	FilterRegex
	FilterNotRegex
)

// Filter is a single (tag, value, kind) clause. A Query accepts a
// slice of Filters, AND-combined into one "(... ) (...)" expression.
type Filter struct {
	Tag   Tag
	Value string
	Kind  FilterKind
}

func NewFilter(tag Tag, value string, kind FilterKind) Filter {
	return Filter{Tag: tag, Value: value, Kind: kind}
}

// operator returns the MPD filter operator token for this Filter's
// Kind.
func (f Filter) operator() string {
	switch f.Kind {
	case FilterExact:
		return "=="
	case FilterNotExact:
		return "!="
	case FilterContains:
		return "contains"
	case FilterStartsWith:
		return "starts_with"
	case FilterRegex:
		return "=~"
	case FilterNotRegex:
		return "!~"
	default:
		return "=="
	}
}

func (f Filter) tagName() string {
	if f.Tag == TagAny {
		return "any"
	}
	if name, ok := tagFieldNames[f.Tag]; ok {
		return name
	}
	return string(f.Tag)
}

// Encode renders a single filter clause, e.g. (Artist == "foo").
// The value is escaped with EscapeFilter and quoted with
// QuoteAndEscape, matching the server's nested-parser expectations.
func (f Filter) Encode() string {
	var b strings.Builder
	b.WriteByte('(')
	b.WriteString(f.tagName())
	b.WriteByte(' ')
	b.WriteString(f.operator())
	b.WriteByte(' ')
	b.WriteString(QuoteAndEscape(EscapeFilter(f.Value)))
	b.WriteByte(')')
	return b.String()
}

// EncodeFilters AND-combines filters into one expression string, not
// including the surrounding quotes the caller must add when sending
// the whole expression as a single command argument (it is itself
// quote_and_escape'd once more by the command encoder).
func EncodeFilters(filters []Filter) string {
	parts := make([]string, len(filters))
	for i, f := range filters {
		parts[i] = f.Encode()
	}
	return strings.Join(parts, " ")
}
