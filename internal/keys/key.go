// Package keys implements the key encoding grammar used by
// configuration files and on-screen display, and the trie-based
// resolver that turns a stream of keys into resolved actions.
package keys

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/famish99/mpdc/internal/mpderr"
)

// Modifier is a bitset of held modifier keys. Order of precedence for
// both parsing and display is fixed: Control, Alt, Shift.
type Modifier uint8

const (
	ModNone    Modifier = 0
	ModControl Modifier = 1 << iota
	ModAlt
	ModShift
)

func (m Modifier) has(bit Modifier) bool { return m&bit != 0 }

// Code names a key independent of any modifier held with it.
type Code int

const (
	CodeChar Code = iota
	CodeBackspace
	CodeEnter
	CodeLeft
	CodeRight
	CodeUp
	CodeDown
	CodeHome
	CodeEnd
	CodePageUp
	CodePageDown
	CodeTab
	CodeBackTab
	CodeDelete
	CodeInsert
	CodeEsc
	CodeF
	CodeNull
)

// Key is one keypress: a code plus the modifiers held with it. Char
// and FNum are only meaningful when Code is CodeChar or CodeF
// respectively.
type Key struct {
	Code      Code
	Char      rune
	FNum      int
	Modifiers Modifier
}

// CharKey builds a plain character key, applying the "uppercase
// implies shift" rule from the grammar.
func CharKey(c rune) Key {
	if unicode.IsUpper(c) {
		return Key{Code: CodeChar, Char: unicode.ToUpper(c), Modifiers: ModShift}
	}
	return Key{Code: CodeChar, Char: c, Modifiers: ModNone}
}

func (k Key) withModifier(m Modifier) Key {
	if m == ModShift && k.Code == CodeTab {
		k.Code = CodeBackTab
	}
	k.Modifiers |= m
	return k
}

func isAlphaChar(k Key) bool {
	return k.Code == CodeChar && unicode.IsLetter(k.Char)
}

// String renders the key using the bracketed `<[C-][A-][S-]NAME>` or
// bare-character form described by the key encoding grammar.
func (k Key) String() string {
	hasCtrl := k.Modifiers.has(ModControl)
	hasAlt := k.Modifiers.has(ModAlt)
	hasShift := k.Modifiers.has(ModShift)
	noModifiers := !hasCtrl && !hasAlt && !hasShift
	bracketed := hasCtrl || hasAlt || (hasShift && !isAlphaChar(k))

	var b strings.Builder
	if bracketed {
		b.WriteByte('<')
	}
	if hasCtrl {
		b.WriteString("C-")
	}
	if hasAlt {
		b.WriteString("A-")
	}
	if hasShift && !isAlphaChar(k) {
		b.WriteString("S-")
	}

	switch k.Code {
	case CodeBackspace:
		b.WriteString(bracketIf(noModifiers, "BS"))
	case CodeEnter:
		b.WriteString(bracketIf(noModifiers, "CR"))
	case CodeLeft:
		b.WriteString(bracketIf(noModifiers, "Left"))
	case CodeRight:
		b.WriteString(bracketIf(noModifiers, "Right"))
	case CodeUp:
		b.WriteString(bracketIf(noModifiers, "Up"))
	case CodeDown:
		b.WriteString(bracketIf(noModifiers, "Down"))
	case CodeHome:
		b.WriteString(bracketIf(noModifiers, "Home"))
	case CodeEnd:
		b.WriteString(bracketIf(noModifiers, "End"))
	case CodePageUp:
		b.WriteString(bracketIf(noModifiers, "PageUp"))
	case CodePageDown:
		b.WriteString(bracketIf(noModifiers, "PageDown"))
	case CodeTab, CodeBackTab:
		b.WriteString(bracketIf(noModifiers, "Tab"))
	case CodeDelete:
		b.WriteString(bracketIf(noModifiers, "Del"))
	case CodeInsert:
		b.WriteString(bracketIf(noModifiers, "Insert"))
	case CodeEsc:
		b.WriteString(bracketIf(noModifiers, "Esc"))
	case CodeF:
		name := "F" + strconv.Itoa(k.FNum)
		b.WriteString(bracketIf(noModifiers, name))
	case CodeChar:
		if k.Char == ' ' {
			b.WriteString(bracketIf(noModifiers, "Space"))
		} else {
			b.WriteRune(k.Char)
		}
	case CodeNull:
	}

	if bracketed {
		b.WriteByte('>')
	}
	return b.String()
}

// bracketIf wraps name in its own angle brackets when the key carries
// no modifiers — matching the grammar's bare special-key display
// ("<Tab>" alone, but "C-Tab" inside an outer bracket already opened
// by the caller).
func bracketIf(noModifiers bool, name string) string {
	if noModifiers {
		return "<" + name + ">"
	}
	return name
}

// KeySequence is a concatenation of keys with no separator, as typed
// by the user or written in a configuration file.
type KeySequence []Key

func (s KeySequence) String() string {
	var b strings.Builder
	for _, k := range s {
		b.WriteString(k.String())
	}
	return b.String()
}

var specialKeyNames = map[string]Key{
	"BS":        {Code: CodeBackspace},
	"Backspace": {Code: CodeBackspace},
	"CR":        {Code: CodeEnter},
	"Enter":     {Code: CodeEnter},
	"Left":      {Code: CodeLeft},
	"Right":     {Code: CodeRight},
	"Up":        {Code: CodeUp},
	"Down":      {Code: CodeDown},
	"Home":      {Code: CodeHome},
	"End":       {Code: CodeEnd},
	"PageUp":    {Code: CodePageUp},
	"PageDown":  {Code: CodePageDown},
	"Tab":       {Code: CodeTab},
	"Del":       {Code: CodeDelete},
	"Insert":    {Code: CodeInsert},
	"Esc":       {Code: CodeEsc},
	"Space":     {Code: CodeChar, Char: ' '},
	"F1":        {Code: CodeF, FNum: 1},
	"F2":        {Code: CodeF, FNum: 2},
	"F3":        {Code: CodeF, FNum: 3},
	"F4":        {Code: CodeF, FNum: 4},
	"F5":        {Code: CodeF, FNum: 5},
	"F6":        {Code: CodeF, FNum: 6},
	"F7":        {Code: CodeF, FNum: 7},
	"F8":        {Code: CodeF, FNum: 8},
	"F9":        {Code: CodeF, FNum: 9},
	"F10":       {Code: CodeF, FNum: 10},
	"F11":       {Code: CodeF, FNum: 11},
	"F12":       {Code: CodeF, FNum: 12},
}

// orderedSpecialNames lists the names parseKeyBody accepts. Each is
// compared for exact equality with the whole bracket body, so "F10"
// never matches "F1" and the order of the list does not matter.
var orderedSpecialNames = []string{
	"Backspace", "BS", "CR", "Enter", "Left", "Right", "Up", "Down",
	"Home", "End", "PageUp", "PageDown", "Tab", "Del", "Insert", "Esc",
	"Space", "F10", "F11", "F12", "F1", "F2", "F3", "F4", "F5", "F6",
	"F7", "F8", "F9",
}

// ParseKeySequence parses a concatenation of keys: bare characters and
// bracketed `<[C-][A-][S-]NAME>` forms back to back with no separator.
func ParseKeySequence(s string) (KeySequence, error) {
	var seq KeySequence
	for len(s) > 0 {
		k, rest, err := parseOneKey(s)
		if err != nil {
			return nil, err
		}
		seq = append(seq, k)
		s = rest
	}
	if len(seq) == 0 {
		return nil, &mpderr.ParseError{Context: "key sequence", Line: s}
	}
	return seq, nil
}

func parseOneKey(s string) (Key, string, error) {
	if strings.HasPrefix(s, "<") {
		end := strings.IndexByte(s, '>')
		if end < 0 {
			return Key{}, "", &mpderr.ParseError{Context: "key", Line: s}
		}
		inner, rest := s[1:end], s[end+1:]
		k, err := parseBracketed(inner)
		if err != nil {
			return Key{}, "", err
		}
		return k, rest, nil
	}

	r, size := decodeFirstRune(s)
	return CharKey(r), s[size:], nil
}

func decodeFirstRune(s string) (rune, int) {
	for _, r := range s {
		return r, len(string(r))
	}
	return 0, 0
}

func parseBracketed(inner string) (Key, error) {
	var mods Modifier
	for {
		switch {
		case strings.HasPrefix(inner, "C-"):
			mods |= ModControl
			inner = inner[2:]
		case strings.HasPrefix(inner, "A-"):
			mods |= ModAlt
			inner = inner[2:]
		case strings.HasPrefix(inner, "S-"):
			mods |= ModShift
			inner = inner[2:]
		default:
			goto doneModifiers
		}
	}
doneModifiers:

	base, err := parseKeyBody(inner)
	if err != nil {
		return Key{}, err
	}
	base.Modifiers |= mods
	if mods.has(ModShift) && base.Code == CodeTab {
		base.Code = CodeBackTab
	}
	return base, nil
}

func parseKeyBody(s string) (Key, error) {
	if s == "" {
		return Key{Code: CodeNull}, nil
	}
	for _, name := range orderedSpecialNames {
		if s == name {
			return specialKeyNames[name], nil
		}
	}
	if r := []rune(s); len(r) == 1 {
		if unicode.IsUpper(r[0]) {
			return Key{Code: CodeChar, Char: r[0], Modifiers: ModShift}, nil
		}
		return Key{Code: CodeChar, Char: r[0]}, nil
	}
	return Key{}, &mpderr.ParseError{Context: "special key name", Line: s}
}

// MustParseKeySequence panics on invalid input; intended for building
// default keymaps from string literals, not for parsing user input.
func MustParseKeySequence(s string) KeySequence {
	seq, err := ParseKeySequence(s)
	if err != nil {
		panic(fmt.Sprintf("keys: invalid default key sequence %q: %v", s, err))
	}
	return seq
}
