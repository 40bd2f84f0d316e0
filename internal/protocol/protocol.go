// Package protocol implements the Bitboxing transfer protocol (BBTP),
// a line-oriented text format over a reliable byte stream.
//
// A request is two or three CRLF-terminated lines:
//
//	sender|version
//	method|arg0|arg1|...
//	free-text body (optional)
//
// A response is a status line optionally followed by one body line.
// CRLF is the only frame delimiter, so any CRLF embedded in an argument
// or body is folded to a bare LF on encode. This is lossy: original CRLF
// and LF inside payload text cannot be distinguished after a round trip.
package protocol

import "strings"

const (
	// DelimInline separates tokens within a line.
	DelimInline = "|"
	// DelimEndline terminates each line.
	DelimEndline = "\r\n"

	// Version is the single protocol version this codebase speaks.
	Version = "0.1"

	// MaxMessageSize bounds a message to one read/write. A request is
	// exactly one bounded read and a response exactly one bounded write;
	// there is no reassembly and no pipelining.
	MaxMessageSize = 2048
)

// Status codes carried on a response's first line.
const (
	StatusOK                = "OK"
	StatusIncorrect         = "Incorrect"
	StatusWithoutChange     = "Without Change"
	StatusNotFound          = "Not Found"
	StatusOutOfOrder        = "Out of Order"
	StatusBadRequest        = "Bad Request"
	StatusUnauthenticated   = "Unauthenticated"
	StatusUnrecognized      = "Unrecognized Method"
	StatusVersionNotSupport = "Version Not Supported"
	StatusWrongNumOfParams  = "Wrong Number of Parameters"
	StatusException         = "Exception"
)

// Methods in the fixed request vocabulary.
const (
	MethodRegister         = "REGISTER"
	MethodLogin            = "LOGIN"
	MethodFind             = "FIND"
	MethodHint             = "HINT"
	MethodSolve            = "SOLVE"
	MethodScore            = "SCORE"
	MethodLeaderboard      = "LEADERBOARD"
	MethodCacheLeaderboard = "CACHE_LEADERBOARD"
)

// Arity is the argument count a method accepts.
type Arity struct {
	Min int
	Max int
}

// Accepts reports whether n arguments satisfy the arity.
func (a Arity) Accepts(n int) bool {
	return n >= a.Min && n <= a.Max
}

var methodArity = map[string]Arity{
	MethodRegister:         {Min: 1, Max: 1},
	MethodLogin:            {Min: 1, Max: 1},
	MethodFind:             {Min: 1, Max: 1},
	MethodHint:             {Min: 1, Max: 1},
	MethodSolve:            {Min: 2, Max: 2},
	MethodScore:            {Min: 1, Max: 1},
	MethodLeaderboard:      {Min: 0, Max: 1},
	MethodCacheLeaderboard: {Min: 1, Max: 2},
}

// IsValidMethod reports whether s is in the method vocabulary.
func IsValidMethod(s string) bool {
	_, ok := methodArity[s]
	return ok
}

// MethodArity returns the arity for a method.
func MethodArity(s string) (Arity, bool) {
	a, ok := methodArity[s]
	return a, ok
}

// Request is a decoded BBTP request.
type Request struct {
	Sender  string
	Version string
	Method  string
	Args    []string
	Body    string
}

// Response is a decoded BBTP response.
type Response struct {
	Status string
	Body   string
}

// fold replaces embedded frame delimiters so a token stays on one line.
func fold(s string) string {
	return strings.ReplaceAll(s, DelimEndline, "\n")
}

// EncodeRequest builds the wire form of a request.
func EncodeRequest(sender, version, method string, args []string, body string) string {
	var b strings.Builder
	b.WriteString(sender)
	b.WriteString(DelimInline)
	b.WriteString(version)
	b.WriteString(DelimEndline)

	b.WriteString(method)
	for _, arg := range args {
		b.WriteString(DelimInline)
		b.WriteString(fold(arg))
	}
	b.WriteString(DelimEndline)

	if body != "" {
		b.WriteString(fold(body))
		b.WriteString(DelimEndline)
	}

	return b.String()
}

// EncodeResponse builds the wire form of a response.
func EncodeResponse(status, body string) string {
	var b strings.Builder
	b.WriteString(status)
	b.WriteString(DelimEndline)
	if body != "" {
		b.WriteString(fold(body))
		b.WriteString(DelimEndline)
	}
	return b.String()
}

// DecodeRequest parses the wire form of a request.
//
// A header line that does not split into exactly two tokens yields an
// empty sender and version. That single uniform signal covers every
// malformed header; callers treat it as an invalid request rather than
// a decode failure.
func DecodeRequest(msg string) Request {
	lines := strings.Split(msg, DelimEndline)

	var req Request
	req.Sender, req.Version = parseHeader(lines[0])
	if len(lines) > 1 {
		tokens := strings.Split(lines[1], DelimInline)
		req.Method = tokens[0]
		req.Args = tokens[1:]
	}
	if len(lines) > 2 {
		req.Body = lines[2]
	}
	return req
}

func parseHeader(line string) (sender, version string) {
	tokens := strings.Split(line, DelimInline)
	if len(tokens) != 2 {
		return "", ""
	}
	return tokens[0], tokens[1]
}

// DecodeResponse parses the wire form of a response. A response with no
// body line yields an empty body.
func DecodeResponse(msg string) Response {
	lines := strings.Split(msg, DelimEndline)

	resp := Response{Status: lines[0]}
	if len(lines) > 1 {
		resp.Body = lines[1]
	}
	return resp
}
