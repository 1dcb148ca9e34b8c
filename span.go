// span.go — source spans for schema ASTs.
//
// Spans are half-open byte intervals [StartByte, EndByte) relative to the
// original UTF-8 source. They exist purely for diagnostics: every AST node
// carries one, and every Equal method in ast.go ignores them. Line/column
// coordinates are not stored; PositionAt derives them on demand from the
// original source text.
package define

import "strings"

// Span represents a half-open byte interval [StartByte, EndByte) in the
// original source text. EndByte is exclusive.
type Span struct {
	StartByte int // inclusive
	EndByte   int // exclusive
}

// IsZero reports whether the span carries no position (synthetic node).
func (s Span) IsZero() bool { return s.StartByte == 0 && s.EndByte == 0 }

func tokenSpan(t Token) Span {
	return Span{StartByte: t.StartByte, EndByte: t.EndByte}
}

// joinSpans returns the smallest span covering both arguments. A zero span
// does not contribute.
func joinSpans(a, b Span) Span {
	if a.IsZero() {
		return b
	}
	if b.IsZero() {
		return a
	}
	out := a
	if b.StartByte < out.StartByte {
		out.StartByte = b.StartByte
	}
	if b.EndByte > out.EndByte {
		out.EndByte = b.EndByte
	}
	return out
}

// PositionAt maps a byte offset into (line, col), both 1-based, clamping the
// offset to the source bounds. It is the bridge between byte spans and the
// caret renderer in errors.go.
func PositionAt(src string, b int) (line, col int) {
	if b < 0 {
		b = 0
	}
	if b > len(src) {
		b = len(src)
	}
	line = 1 + strings.Count(src[:b], "\n")
	lastNL := strings.LastIndex(src[:b], "\n")
	if lastNL < 0 {
		return line, b + 1
	}
	return line, b - lastNL
}
