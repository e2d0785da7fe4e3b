// Package mpderr implements the error taxonomy shared by every layer
// of the protocol client: transport failures, handshake failures,
// response parse failures, server ACK failures, version gate
// failures, and a generic catch-all for configuration/programmer
// errors detected at runtime.
package mpderr

import (
	"errors"
	"fmt"
)

// ErrorCode enumerates the MPD server's ACK numeric codes.
type ErrorCode int

const (
	CodeUnknown ErrorCode = iota
	CodeNotList
	CodeArgument
	CodePassword
	CodePermission
	CodeUnknownCmd
	CodeNoExist
	CodePlaylistMax
	CodeSystem
	CodePlaylistLoad
	CodeUpdateAlready
	CodePlayerSync
	CodeExist
)

// mpdCodeTable maps the server's numeric ACK codes to ErrorCode. See
// the MPD protocol reference for the canonical numbering.
var mpdCodeTable = map[int]ErrorCode{
	1:  CodeNotList,
	2:  CodeArgument,
	3:  CodePassword,
	4:  CodePermission,
	5:  CodeUnknownCmd,
	50: CodeNoExist,
	51: CodePlaylistMax,
	52: CodeSystem,
	53: CodePlaylistLoad,
	54: CodeUpdateAlready,
	55: CodePlayerSync,
	56: CodeExist,
}

// CodeFromWire converts a raw ACK numeric code to an ErrorCode,
// defaulting to CodeUnknown for codes the table does not recognize.
func CodeFromWire(raw int) ErrorCode {
	if code, ok := mpdCodeTable[raw]; ok {
		return code
	}
	return CodeUnknown
}

// IOError wraps a transport failure: connect, read or write.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string { return fmt.Sprintf("mpd io: %s: %v", e.Op, e.Err) }
func (e *IOError) Unwrap() error { return e.Err }

// HandshakeError signals a missing or malformed greeting banner, or
// an unparseable server version.
type HandshakeError struct {
	Reason string
}

func (e *HandshakeError) Error() string { return fmt.Sprintf("mpd handshake: %s", e.Reason) }

// ParseError signals a response line that could not be parsed into
// the expected structured form.
type ParseError struct {
	Context string
	Line    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("mpd parse: %s: %q", e.Context, e.Line)
}

// MpdError wraps a server ACK response.
type MpdError struct {
	Code    ErrorCode
	Index   int
	Command string
	Message string
}

func (e *MpdError) Error() string {
	return fmt.Sprintf("mpd ack [%d@%d] {%s} %s", e.Code, e.Index, e.Command, e.Message)
}

// UnsupportedVersionError signals that the local client refused to
// send a command because the negotiated server version is too old.
type UnsupportedVersionError struct {
	Reason string
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("mpd unsupported version: %s", e.Reason)
}

// GenericError is the catch-all for configuration and programmer
// errors detected at runtime.
type GenericError struct {
	Message string
}

func (e *GenericError) Error() string { return e.Message }

// IsCode reports whether err is an *MpdError carrying the given code.
func IsCode(err error, code ErrorCode) bool {
	var mpdErr *MpdError
	if errors.As(err, &mpdErr) {
		return mpdErr.Code == code
	}
	return false
}
