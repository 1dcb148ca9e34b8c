// token.go — token kinds for the schema definition language.
//
// The lexer (lexer.go) produces a flat []Token for one scheme unit; the
// parser (parser.go) consumes it with one token of lookahead. Tokens carry
// both line/column coordinates (for caret snippets, see errors.go) and byte
// offsets (for AST spans, see span.go).
package define

import "fmt"

// TokenType represents the kind of token.
type TokenType int

const (
	// Special
	EOF TokenType = iota
	ILLEGAL

	// Punctuation
	AT         // "@"
	LROUND     // "("
	RROUND     // ")"
	LSQUARE    // "["
	RSQUARE    // "]"
	LCURLY     // "{"
	RCURLY     // "}"
	COLON      // ":"
	COLONCOLON // "::"
	SEMI       // ";"
	COMMA      // ","
	QUESTION   // "?"
	AMP        // "&"
	ARROW      // "->"
	ASSIGN     // "="

	// Literals & identifiers
	ID
	STRING  // quoted scheme name; Literal holds the decoded value
	INTEGER // Literal holds the raw digits; range checks happen in literals.go
	DECIMAL // digits '.' digits (and any further '.' runs); Literal holds raw text

	// Keywords
	SCH
	VER
	ADD
	REM
	OBJ
	CMD
	ANY
	USE
	AS
	STRUCT
	UNION
	ENUM
	FN
)

// Token is a lexical token with optional literal value.
type Token struct {
	Type      TokenType
	Lexeme    string      // raw text slice
	Literal   interface{} // decoded value for literals
	Line      int         // 1-based
	Col       int         // 0-based column within line
	StartByte int
	EndByte   int
}

// keywords map
var keywords = map[string]TokenType{
	"sch":    SCH,
	"ver":    VER,
	"add":    ADD,
	"rem":    REM,
	"obj":    OBJ,
	"cmd":    CMD,
	"any":    ANY,
	"use":    USE,
	"as":     AS,
	"struct": STRUCT,
	"union":  UNION,
	"enum":   ENUM,
	"fn":     FN,
}

// isKeyword reports whether tt is one of the reserved words. Import paths may
// begin with a reserved root segment, so the parser needs to recognize these
// in identifier position.
func isKeyword(tt TokenType) bool {
	return tt >= SCH && tt <= FN
}

func (tt TokenType) String() string {
	switch tt {
	case EOF:
		return "end of input"
	case AT:
		return "'@'"
	case LROUND:
		return "'('"
	case RROUND:
		return "')'"
	case LSQUARE:
		return "'['"
	case RSQUARE:
		return "']'"
	case LCURLY:
		return "'{'"
	case RCURLY:
		return "'}'"
	case COLON:
		return "':'"
	case COLONCOLON:
		return "'::'"
	case SEMI:
		return "';'"
	case COMMA:
		return "','"
	case QUESTION:
		return "'?'"
	case AMP:
		return "'&'"
	case ARROW:
		return "'->'"
	case ASSIGN:
		return "'='"
	case ID:
		return "identifier"
	case STRING:
		return "string literal"
	case INTEGER:
		return "integer literal"
	case DECIMAL:
		return "decimal literal"
	case SCH, VER, ADD, REM, OBJ, CMD, ANY, USE, AS, STRUCT, UNION, ENUM, FN:
		return "keyword"
	}
	return fmt.Sprintf("token(%d)", int(tt))
}
