// errors.go: diagnostic taxonomy and caret-snippet rendering
//
// What this file does
// -------------------
// This module defines the single diagnostic type produced by the lexer and
// parser, and turns it into readable, Python-style error snippets with a
// caret pointing at the offending column. The primary entry point is
// `WrapErrorWithSource`, which recognizes `*Error`, formats it, and returns a
// new `error` that contains a multi-line snippet:
//
//	SYNTAX ERROR at 3:12: expected ',' after struct field
//
//	   2 | @ver(1) struct P {
//	   3 |   x: u8
//	       |        ^
//	   4 | }
//
// The snippet includes up to one line of context before and after the error,
// numbers the lines, and places a caret under the 1-based column.
//
// Taxonomy
// --------
//   - DiagLex:    the scanner hit a malformed character sequence.
//   - DiagSyntax: the token stream matches no grammar alternative; Msg names
//     the expected token set.
//   - DiagPolicy: a structurally valid @add/@rem tag used in a container kind
//     whose versioning policy forbids it; Msg names directive and container.
//   - DiagRange:  a numeric literal exceeds its target width, or a minor
//     version literal is not of the form digits '.' digits.
//   - DiagEmpty:  end of input where more content is structurally required.
//
// Errors never accumulate: the first one aborts the whole unit and is
// forwarded unchanged to the caller of Parse/ParseTokens.
package define

import (
	"fmt"
	"strings"
)

/* ===========================
   PUBLIC API
   =========================== */

// ErrKind discriminates the diagnostic classes above.
type ErrKind int

const (
	DiagLex ErrKind = iota
	DiagSyntax
	DiagPolicy
	DiagRange
	DiagEmpty
)

func (k ErrKind) String() string {
	switch k {
	case DiagLex:
		return "LEXICAL ERROR"
	case DiagSyntax:
		return "SYNTAX ERROR"
	case DiagPolicy:
		return "POLICY ERROR"
	case DiagRange:
		return "RANGE ERROR"
	case DiagEmpty:
		return "EMPTY INPUT ERROR"
	}
	return "ERROR"
}

// Error is the one diagnostic produced by this package. Line is 1-based and
// Col is 0-based, matching token coordinates; the renderer converts to
// 1-based columns for display.
type Error struct {
	Kind ErrKind
	Msg  string
	Line int
	Col  int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %d:%d: %s", e.Kind, e.Line, e.Col+1, e.Msg)
}

// IsSyntax reports whether err is a grammar mismatch diagnostic.
func IsSyntax(err error) bool { return hasKind(err, DiagSyntax) }

// IsPolicy reports whether err is an add/rem container-policy diagnostic.
func IsPolicy(err error) bool { return hasKind(err, DiagPolicy) }

// IsRange reports whether err is a numeric width/shape diagnostic.
func IsRange(err error) bool { return hasKind(err, DiagRange) }

// IsEmptyInput reports whether err means the input ended where more content
// was structurally required. Interactive callers (the repl) use this to keep
// reading instead of failing.
func IsEmptyInput(err error) bool { return hasKind(err, DiagEmpty) }

// WrapErrorWithSource returns an error augmented with a caret-annotated
// snippet of the provided source. It recognizes *Error and leaves other
// errors untouched.
func WrapErrorWithSource(err error, src string) error {
	// Fall back to a name-less header (won't show "in <src>").
	return WrapErrorWithName(err, "", src)
}

// WrapErrorWithName is WrapErrorWithSource with a source name ("in <name>")
// in the header, for tools that process multiple files.
func WrapErrorWithName(err error, srcName string, src string) error {
	e, ok := err.(*Error)
	if !ok {
		return err
	}
	// Col is 0-based; render as 1-based.
	return fmt.Errorf("%s", prettyErrorStringLabeled(src, e.Kind.String(), srcName, e.Line, e.Col+1, e.Msg))
}

//// END_OF_PUBLIC

/* ===========================
   PRIVATE: helpers & rendering
   =========================== */

func hasKind(err error, k ErrKind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == k
}

// prettyErrorStringLabeled builds a Python-like snippet with a header and a
// caret. It shows at most one previous and one next line when available.
// Coordinates are treated as 1-based and clamped to the source bounds.
func prettyErrorStringLabeled(src, header, name string, line, col int, msg string) string {
	lines := strings.Split(src, "\n")
	if line < 1 {
		line = 1
	}
	if col < 1 {
		col = 1
	}
	if len(lines) == 0 {
		lines = []string{""}
	}
	if line > len(lines) {
		line = len(lines)
	}
	lineTxt := lines[line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "%s in %s at %d:%d: %s\n\n", header, name, line, col, msg)
	} else {
		fmt.Fprintf(&b, "%s at %d:%d: %s\n\n", header, line, col, msg)
	}
	if line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", line-1, lines[line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", line, lineTxt)
	caretPad := col - 1
	if caretPad < 0 {
		caretPad = 0
	}
	fmt.Fprintf(&b, "     | %s^\n", strings.Repeat(" ", caretPad))
	if line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", line+1, lines[line])
	}
	return b.String()
}
