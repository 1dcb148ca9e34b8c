// lexer.go — scanner for schema definition source.
//
// The scanner turns one scheme unit into a flat []Token (EOF included). The
// token set is small and fixed: the punctuation in token.go, identifiers,
// integer and decimal literals, and double-quoted string literals. Line
// comments start with "//" and run to end of line.
//
// Numeric literals are not range-checked here; the scanner keeps the raw
// digits and the parser's literal validators (literals.go) apply the target
// width. A run of digits containing one or more '.' is scanned as a single
// DECIMAL token so that malformed minor-version literals like "1.2.3" reach
// the validator intact and fail there with a range error rather than here.
package define

import (
	"fmt"
	"unicode/utf8"
)

// Lexer scans a scheme source string into tokens.
type Lexer struct {
	src    string
	start  int // start index of current token
	cur    int // current index
	line   int // 1-based
	col    int // 0-based column within line
	tokens []Token

	// precise token start position
	tokStartLine int
	tokStartCol  int
}

// NewLexer creates a new lexer for the given source.
func NewLexer(src string) *Lexer {
	return &Lexer{
		src:  src,
		line: 1,
		col:  0,
	}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	return l.src[l.cur], true
}

func (l *Lexer) advance() (byte, bool) {
	if l.isAtEnd() {
		return 0, false
	}
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
	return ch, true
}

func (l *Lexer) rewindToStart() {
	// Rewind within the current token, restoring the position recorded before
	// scanning began so the re-scan does not count the first byte twice.
	l.cur = l.start
	l.line = l.tokStartLine
	l.col = l.tokStartCol
}

func (l *Lexer) addToken(tt TokenType, lit interface{}) Token {
	lex := l.src[l.start:l.cur]
	tok := Token{
		Type:      tt,
		Lexeme:    lex,
		Literal:   lit,
		Line:      l.tokStartLine,
		Col:       l.tokStartCol,
		StartByte: l.start,
		EndByte:   l.cur,
	}
	l.tokens = append(l.tokens, tok)
	l.start = l.cur
	return tok
}

func (l *Lexer) skipWhitespace() {
	for !l.isAtEnd() {
		ch, _ := l.peek()
		switch ch {
		case ' ', '\r', '\n', '\t':
			l.advance()
			l.start = l.cur
		default:
			return
		}
	}
}

// helpers

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b == '_'
}

func (l *Lexer) err(msg string) error {
	return &Error{Kind: DiagLex, Msg: msg, Line: l.line, Col: l.col}
}

// ----- scanners -----

// scanString parses a double-quoted string literal with a small escape set.
func (l *Lexer) scanString() (string, error) {
	if l.src[l.start] != '"' {
		return "", l.err("internal: scanString without quote")
	}
	// consume the delimiter
	l.advance()

	var out []rune
	for !l.isAtEnd() {
		ch, _ := l.advance()
		if ch == '"' {
			return string(out), nil
		}
		if ch == '\n' {
			return "", l.err("string was not terminated")
		}
		if ch == '\\' {
			if l.isAtEnd() {
				return "", l.err("unfinished escape sequence")
			}
			esc, _ := l.advance()
			switch esc {
			case '"':
				out = append(out, '"')
			case '\\':
				out = append(out, '\\')
			case 'n':
				out = append(out, '\n')
			case 'r':
				out = append(out, '\r')
			case 't':
				out = append(out, '\t')
			default:
				return "", l.err(fmt.Sprintf("invalid escape sequence: \\%c", esc))
			}
			continue
		}
		if ch < utf8.RuneSelf {
			out = append(out, rune(ch))
			continue
		}
		// Non-ASCII byte: back up one byte and decode the rune from source.
		// advance already counted one column for the lead byte; the rune's
		// continuation bytes occupy no further columns, so carets on lines
		// with multi-byte characters stay aligned.
		l.cur--
		r, size := utf8.DecodeRuneInString(l.src[l.cur:])
		if r == utf8.RuneError && size == 1 {
			return "", l.err("invalid UTF-8 in source")
		}
		out = append(out, r)
		l.cur += size
	}
	return "", l.err("string was not terminated")
}

// scanIdentifier parses [A-Za-z_][A-Za-z0-9_]*
func (l *Lexer) scanIdentifier() string {
	for {
		b, ok := l.peek()
		if !ok || !isAlphaNum(b) {
			break
		}
		l.advance()
	}
	return l.src[l.start:l.cur]
}

// scanNumber parses a digit run into INTEGER, or into DECIMAL once a '.'
// appears. Every '.' that follows the digits is folded into the same token,
// so "1.2" and the malformed "1.2.3" both come out as one DECIMAL lexeme.
func (l *Lexer) scanNumber() (TokenType, interface{}) {
	sawDot := false
	for {
		b, ok := l.peek()
		if ok && isDigit(b) {
			l.advance()
			continue
		}
		if ok && b == '.' {
			l.advance()
			sawDot = true
			continue
		}
		break
	}
	lex := l.src[l.start:l.cur]
	if sawDot {
		return DECIMAL, lex
	}
	return INTEGER, lex
}

// ignoreUntilNewline eats until '\n' or EOF.
func (l *Lexer) ignoreUntilNewline() {
	for {
		b, ok := l.peek()
		if !ok || b == '\n' {
			return
		}
		l.advance()
	}
}

// ----- main scanner -----

func (l *Lexer) scanToken() (Token, error) {
	for {
		l.skipWhitespace()
		l.tokStartLine = l.line
		l.tokStartCol = l.col
		l.start = l.cur

		if l.isAtEnd() {
			return l.addToken(EOF, nil), nil
		}

		ch, _ := l.advance()

		switch ch {
		case '@':
			return l.addToken(AT, "@"), nil
		case '(':
			return l.addToken(LROUND, "("), nil
		case ')':
			return l.addToken(RROUND, ")"), nil
		case '[':
			return l.addToken(LSQUARE, "["), nil
		case ']':
			return l.addToken(RSQUARE, "]"), nil
		case '{':
			return l.addToken(LCURLY, "{"), nil
		case '}':
			return l.addToken(RCURLY, "}"), nil
		case ';':
			return l.addToken(SEMI, ";"), nil
		case ',':
			return l.addToken(COMMA, ","), nil
		case '?':
			return l.addToken(QUESTION, "?"), nil
		case '&':
			return l.addToken(AMP, "&"), nil
		case '=':
			return l.addToken(ASSIGN, "="), nil
		case ':':
			if b, ok := l.peek(); ok && b == ':' {
				l.advance()
				return l.addToken(COLONCOLON, "::"), nil
			}
			return l.addToken(COLON, ":"), nil
		case '-':
			if b, ok := l.peek(); ok && b == '>' {
				l.advance()
				return l.addToken(ARROW, "->"), nil
			}
			return Token{}, l.err("unexpected character: '-'")
		case '/':
			if b, ok := l.peek(); ok && b == '/' {
				l.ignoreUntilNewline()
				l.start = l.cur
				continue
			}
			return Token{}, l.err("unexpected character: '/'")
		}

		// Strings
		if ch == '"' {
			l.rewindToStart()
			text, err := l.scanString()
			if err != nil {
				return Token{}, err
			}
			return l.addToken(STRING, text), nil
		}

		// Numbers
		if isDigit(ch) {
			l.rewindToStart()
			tt, lit := l.scanNumber()
			return l.addToken(tt, lit), nil
		}

		// Identifiers / Keywords
		if isAlpha(ch) {
			l.rewindToStart()
			lex := l.scanIdentifier()
			if tt, ok := keywords[lex]; ok {
				return l.addToken(tt, lex), nil
			}
			return l.addToken(ID, lex), nil
		}

		return Token{}, l.err(fmt.Sprintf("unexpected character: %q", ch))
	}
}

// Scan tokenizes the entire source and returns tokens (EOF included).
func (l *Lexer) Scan() ([]Token, error) {
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		if tok.Type == EOF {
			return l.tokens, nil
		}
	}
}
