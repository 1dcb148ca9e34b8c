// literals.go — literal and version validators.
//
// Major versions are parenthesized base-10 integers range-checked to u16.
// Minor versions are parenthesized decimal literals of the exact shape
// <digits> '.' <digits>, each half range-checked to u16; any other shape
// (no dot, multiple dots, empty half, overflow) is a range error. Bare
// integers for fixed-array sizes and explicit enum discriminants are
// range-checked to u32.
package define

import "strconv"

// needMajorVersion parses '(' INTEGER ')' into a MajorVersion.
func (p *parser) needMajorVersion() (MajorVersion, error) {
	if _, err := p.need(LROUND, "expected '(' before version"); err != nil {
		return 0, err
	}
	t, err := p.need(INTEGER, "expected integer version literal")
	if err != nil {
		return 0, err
	}
	v, convErr := strconv.ParseUint(t.Lexeme, 10, 16)
	if convErr != nil {
		return 0, p.errAt(t, DiagRange, "major version must be a valid u16 value")
	}
	if _, err := p.need(RROUND, "expected ')' after version"); err != nil {
		return 0, err
	}
	return MajorVersion(v), nil
}

// needMinorVersion parses '(' DECIMAL ')' into a MinorVersion.
func (p *parser) needMinorVersion() (MinorVersion, error) {
	if _, err := p.need(LROUND, "expected '(' before version"); err != nil {
		return MinorVersion{}, err
	}
	t := p.peek()
	switch t.Type {
	case DECIMAL:
		p.i++
	case INTEGER:
		// A bare integer has no '.'; the minor-version shape is mandatory.
		return MinorVersion{}, p.errAt(t, DiagRange, "minor version must be of the form <major>.<minor>")
	default:
		return MinorVersion{}, p.syntaxErr("expected decimal version literal")
	}

	major, minor, ok := splitMinorLexeme(t.Lexeme)
	if !ok {
		return MinorVersion{}, p.errAt(t, DiagRange, "minor version must be of the form <major>.<minor>")
	}
	hi, errHi := strconv.ParseUint(major, 10, 16)
	lo, errLo := strconv.ParseUint(minor, 10, 16)
	if major == "" || minor == "" || errHi != nil || errLo != nil {
		return MinorVersion{}, p.errAt(t, DiagRange, "major and minor versions must be valid u16 values")
	}
	if _, err := p.need(RROUND, "expected ')' after version"); err != nil {
		return MinorVersion{}, err
	}
	return MinorVersion{Major: uint16(hi), Minor: uint16(lo)}, nil
}

// splitMinorLexeme splits a decimal lexeme at its single '.'. More than one
// dot fails the shape check.
func splitMinorLexeme(lex string) (major, minor string, ok bool) {
	dot := -1
	for i := 0; i < len(lex); i++ {
		if lex[i] != '.' {
			continue
		}
		if dot >= 0 {
			return "", "", false
		}
		dot = i
	}
	if dot < 0 {
		return "", "", false
	}
	return lex[:dot], lex[dot+1:], true
}

// needUint32 parses a bare INTEGER range-checked to u32. msg names the
// literal's role ("invalid array size literal", "invalid enum int literal").
func (p *parser) needUint32(msg string) (uint32, error) {
	t, err := p.need(INTEGER, "expected integer literal")
	if err != nil {
		return 0, err
	}
	v, convErr := strconv.ParseUint(t.Lexeme, 10, 32)
	if convErr != nil {
		return 0, p.errAt(t, DiagRange, msg)
	}
	return uint32(v), nil
}
