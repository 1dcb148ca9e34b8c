// parser.go — recursive-descent parser for versioned schema definitions.
//
// OVERVIEW
// --------
// This module turns one scheme unit into the typed AST in ast.go. The
// pipeline is: token stream → scheme grammar → ordered type declarations.
// Parsing is single-threaded, synchronous, and side-effect free over an
// immutable token stream; every branch point is decided with one token of
// lookahead (keyword vs. '@', bracket-content disambiguation, body-shape
// disambiguation). The first error aborts the whole unit: every parse step
// returns a result its caller forwards unchanged, with no recovery and no
// partial AST.
//
// Grammar sketch:
//
//	Scheme    := 'sch' STRING ';' ( Use | TypeDecl )*
//	Use       := 'use' Path ('as' ID)? ';'
//	TypeDecl  := '@' 'ver' '(' INT ')' (Struct|Union|Enum|Fn|Cmd|Obj)
//	Struct    := 'struct' ID Body
//	Body      := '{' StructItems '}' | '(' TupleItems ')' | Unit
//	FieldType := Primitive | NamedType | '?' FieldType | '&' FieldType
//	           | '[' FieldType ( ';' INT | ':' FieldType )? ']'
//	           | '(' TupleItems ')'
//
// VERSIONING POLICY (the central mechanism)
// -----------------------------------------
// Container item lists accept three item forms: bare, minor-tagged
// ('@add(m.n)' / '@rem(m.n)'), and includes ('@ver(N) { ... }'). Which minor
// tag is legal depends on the container kind:
//
//	struct fields, tuple fields, fn/cmd params : @add yes, @rem no
//	union variants, enum members               : @add no,  @rem yes
//
// Additive containers stay forward-compatible when items are appended at a
// minor version, but removing one mid-version risks silent positional
// corruption, so removal needs a major bump. Exhaustively matched containers
// are the mirror image. Includes accept both @add(name) and @rem(name)
// adjustments in every container kind: adjustments reference existing names
// rather than introduce or remove field definitions.
//
// Dependencies (other files)
// --------------------------
//   - lexer.go / token.go (token stream)
//   - ast.go (node types), literals.go (version/width validators)
//   - errors.go (*Error, Diag* kinds), span.go (Span)
package define

import "fmt"

// Version of the language front end, surfaced by the CLI.
const Version = "0.2.0"

////////////////////////////////////////////////////////////////////////////////
//                                  PUBLIC API
////////////////////////////////////////////////////////////////////////////////

// Parse scans and parses one scheme unit from source.
func Parse(src string) (*Scheme, error) {
	lex := NewLexer(src)
	toks, err := lex.Scan()
	if err != nil {
		return nil, err
	}
	return ParseTokens(toks)
}

// ParseTokens parses one scheme unit from an already scanned token stream.
// The stream must end with an EOF token (Scan produces one). Independent
// scheme units share no state and may be parsed concurrently.
func ParseTokens(toks []Token) (*Scheme, error) {
	if len(toks) == 0 || toks[0].Type == EOF {
		return nil, &Error{Kind: DiagEmpty, Msg: "expected 'sch'", Line: 1, Col: 0}
	}
	p := &parser{toks: toks}
	return p.scheme()
}

//// END_OF_PUBLIC

////////////////////////////////////////////////////////////////////////////////
///////////////////////////// PRIVATE IMPLEMENTATION ///////////////////////////
////////////////////////////////////////////////////////////////////////////////

type parser struct {
	toks []Token
	i    int
}

// ─────────────────────────── token basics & helpers ─────────────────────────

func (p *parser) atEnd() bool { return p.peek().Type == EOF }
func (p *parser) peek() Token {
	if p.i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i]
}
func (p *parser) prev() Token { return p.toks[p.i-1] }

func (p *parser) check(tt TokenType) bool { return p.peek().Type == tt }

func (p *parser) match(tt ...TokenType) bool {
	if p.atEnd() {
		return false
	}
	for _, t := range tt {
		if p.peek().Type == t {
			p.i++
			return true
		}
	}
	return false
}

// need consumes a token of the given type or fails. At end of input the
// diagnostic is DiagEmpty (more content was structurally required);
// otherwise it is DiagSyntax at the offending token.
func (p *parser) need(t TokenType, msg string) (Token, error) {
	if p.match(t) {
		return p.prev(), nil
	}
	return Token{}, p.syntaxErr(msg)
}

// syntaxErr builds a grammar-mismatch diagnostic at the current token,
// downgrading to DiagEmpty when the input simply ran out.
func (p *parser) syntaxErr(msg string) error {
	g := p.peek()
	kind := DiagSyntax
	if g.Type == EOF {
		kind = DiagEmpty
	}
	return &Error{Kind: kind, Msg: msg, Line: g.Line, Col: g.Col}
}

func (p *parser) errAt(t Token, kind ErrKind, msg string) error {
	return &Error{Kind: kind, Msg: msg, Line: t.Line, Col: t.Col}
}

// ───────────────────────────── container kinds ─────────────────────────────

// containerKind selects the add/rem policy for one item list.
type containerKind int

const (
	structFields containerKind = iota
	tupleFields
	functionParams
	commandParams
	unionVariants
	enumMembers
)

func (c containerKind) String() string {
	switch c {
	case structFields:
		return "struct fields"
	case tupleFields:
		return "tuple fields"
	case functionParams:
		return "function params"
	case commandParams:
		return "command params"
	case unionVariants:
		return "union variants"
	case enumMembers:
		return "enum members"
	}
	return "items"
}

// addValid reports whether '@add' minor tags are legal for this container;
// '@rem' is legal exactly when '@add' is not.
func (c containerKind) addValid() bool {
	switch c {
	case unionVariants, enumMembers:
		return false
	default:
		return true
	}
}

// ───────────────────────────── scheme top level ─────────────────────────────

func (p *parser) scheme() (*Scheme, error) {
	if _, err := p.need(SCH, "expected 'sch'"); err != nil {
		return nil, err
	}
	nameTok, err := p.need(STRING, "expected scheme name string")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(SEMI, "expected ';' after scheme name"); err != nil {
		return nil, err
	}

	sch := &Scheme{Name: nameTok.Literal.(string)}
	for !p.atEnd() {
		if p.match(USE) {
			u, err := p.use()
			if err != nil {
				return nil, err
			}
			sch.Uses = append(sch.Uses, u)
			continue
		}
		if !p.check(AT) {
			return nil, p.syntaxErr("expected 'use' import or '@ver' type declaration")
		}
		t, err := p.typeDecl()
		if err != nil {
			return nil, err
		}
		sch.Types = append(sch.Types, t)
	}
	return sch, nil
}

// use parses the path and optional alias after the 'use' keyword. The first
// segment may be a reserved root word; later segments are plain identifiers.
func (p *parser) use() (Use, error) {
	var u Use
	first := p.peek()
	if first.Type != ID && !isKeyword(first.Type) {
		return u, p.syntaxErr("expected import path")
	}
	p.i++
	u.Span = tokenSpan(first)
	u.Segments = append(u.Segments, first.Lexeme)

	if p.atEnd() {
		return u, p.syntaxErr("expected ';', or '::identifier'")
	}

	for {
		if p.match(SEMI) {
			u.Span = joinSpans(u.Span, tokenSpan(p.prev()))
			return u, nil
		}
		if p.match(AS) {
			alias, err := p.need(ID, "expected alias identifier after 'as'")
			if err != nil {
				return u, err
			}
			u.Alias = alias.Lexeme
			if _, err := p.need(SEMI, "expected ';' after import alias"); err != nil {
				return u, err
			}
			u.Span = joinSpans(u.Span, tokenSpan(p.prev()))
			return u, nil
		}
		if _, err := p.need(COLONCOLON, "expected ';', 'as', or '::'"); err != nil {
			return u, err
		}
		seg, err := p.need(ID, "expected identifier after '::'")
		if err != nil {
			return u, err
		}
		u.Segments = append(u.Segments, seg.Lexeme)
	}
}

// ─────────────────────────── type declarations ─────────────────────────────

// typeDecl dispatches on the keyword after '@ver(N)'. All six forms share
// the version and a name; neither needs to be unique across the scheme —
// recurrence encodes successive versions of one logical type.
func (p *parser) typeDecl() (Type, error) {
	if _, err := p.need(AT, "expected '@'"); err != nil {
		return nil, err
	}
	if _, err := p.need(VER, "expected 'ver' after '@'"); err != nil {
		return nil, err
	}
	ver, err := p.needMajorVersion()
	if err != nil {
		return nil, err
	}

	switch p.peek().Type {
	case STRUCT:
		p.i++
		return p.structDecl(ver)
	case UNION:
		p.i++
		return p.unionDecl(ver)
	case ENUM:
		p.i++
		return p.enumDecl(ver)
	case FN:
		p.i++
		return p.fnDecl(ver)
	case CMD:
		p.i++
		return p.cmdDecl(ver)
	case OBJ:
		p.i++
		return p.objDecl(ver)
	}
	return nil, p.syntaxErr("expected 'struct', 'union', 'enum', 'fn', 'cmd', or 'obj'")
}

// objDecl parses 'obj' '(' kind ')' and hands off to the body grammar the
// kind selects. The representation kind is fixed for this declaration but a
// different major version of the same name may pick another one.
func (p *parser) objDecl(ver MajorVersion) (Type, error) {
	if _, err := p.need(LROUND, "expected '(' after 'obj'"); err != nil {
		return nil, err
	}
	kindTok := p.peek()
	switch kindTok.Type {
	case STRUCT, UNION, ENUM:
		p.i++
	default:
		return nil, p.syntaxErr("expected 'struct', 'union', or 'enum'")
	}
	if _, err := p.need(RROUND, "expected ')' after object kind"); err != nil {
		return nil, err
	}

	var repr Type
	var err error
	switch kindTok.Type {
	case STRUCT:
		repr, err = p.structDecl(ver)
	case UNION:
		repr, err = p.unionDecl(ver)
	case ENUM:
		repr, err = p.enumDecl(ver)
	}
	if err != nil {
		return nil, err
	}
	return &Object{Repr: repr}, nil
}

func (p *parser) structDecl(ver MajorVersion) (*Struct, error) {
	nameTok, err := p.need(ID, "expected struct name")
	if err != nil {
		return nil, err
	}
	body, err := p.structBody(false)
	if err != nil {
		return nil, err
	}
	return &Struct{
		Version:  ver,
		NameSpan: tokenSpan(nameTok),
		Name:     nameTok.Lexeme,
		Body:     body,
	}, nil
}

func (p *parser) unionDecl(ver MajorVersion) (*Union, error) {
	nameTok, err := p.need(ID, "expected union name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(LCURLY, "expected '{' after union name"); err != nil {
		return nil, err
	}

	var items []UnionItem
	for !p.check(RCURLY) {
		inc, minor, err := p.itemPrefix(unionVariants)
		if err != nil {
			return nil, err
		}
		if inc != nil {
			items = append(items, inc)
		} else {
			f, err := p.unionField(minor)
			if err != nil {
				return nil, err
			}
			items = append(items, f)
		}
		if _, err := p.need(COMMA, "expected ',' after union variant"); err != nil {
			return nil, err
		}
	}
	p.i++ // '}'

	return &Union{
		Version:  ver,
		NameSpan: tokenSpan(nameTok),
		Name:     nameTok.Lexeme,
		Items:    items,
	}, nil
}

func (p *parser) unionField(minor *MinorVersion) (*UnionField, error) {
	nameTok, err := p.need(ID, "expected union variant name")
	if err != nil {
		return nil, err
	}
	body, err := p.structBody(true)
	if err != nil {
		return nil, err
	}
	return &UnionField{
		Version:  minor,
		NameSpan: tokenSpan(nameTok),
		Name:     nameTok.Lexeme,
		Body:     body,
	}, nil
}

func (p *parser) enumDecl(ver MajorVersion) (*Enum, error) {
	nameTok, err := p.need(ID, "expected enum name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(LCURLY, "expected '{' after enum name"); err != nil {
		return nil, err
	}

	var items []EnumItem
	for !p.check(RCURLY) {
		inc, minor, err := p.itemPrefix(enumMembers)
		if err != nil {
			return nil, err
		}
		if inc != nil {
			items = append(items, inc)
		} else {
			f, err := p.enumField(minor)
			if err != nil {
				return nil, err
			}
			items = append(items, f)
		}
		if _, err := p.need(COMMA, "expected ',' after enum member"); err != nil {
			return nil, err
		}
	}
	p.i++ // '}'

	return &Enum{
		Version:  ver,
		NameSpan: tokenSpan(nameTok),
		Name:     nameTok.Lexeme,
		Items:    items,
	}, nil
}

func (p *parser) enumField(minor *MinorVersion) (*EnumField, error) {
	nameTok, err := p.need(ID, "expected enum member name")
	if err != nil {
		return nil, err
	}
	var value *uint32
	if p.match(ASSIGN) {
		v, err := p.needUint32("invalid enum int literal")
		if err != nil {
			return nil, err
		}
		value = &v
	}
	return &EnumField{
		Version:  minor,
		NameSpan: tokenSpan(nameTok),
		Name:     nameTok.Lexeme,
		Value:    value,
	}, nil
}

func (p *parser) fnDecl(ver MajorVersion) (*Function, error) {
	nameTok, err := p.need(ID, "expected function name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(LROUND, "expected '(' after function name"); err != nil {
		return nil, err
	}
	params, err := p.structItems(RROUND, functionParams)
	if err != nil {
		return nil, err
	}

	var ret FieldType
	if p.match(ARROW) {
		ret, err = p.fieldType()
		if err != nil {
			return nil, err
		}
	}
	return &Function{
		Version:  ver,
		NameSpan: tokenSpan(nameTok),
		Name:     nameTok.Lexeme,
		Params:   params,
		Return:   ret,
	}, nil
}

func (p *parser) cmdDecl(ver MajorVersion) (*Command, error) {
	nameTok, err := p.need(ID, "expected command name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(LROUND, "expected '(' after command name"); err != nil {
		return nil, err
	}
	params, err := p.structItems(RROUND, commandParams)
	if err != nil {
		return nil, err
	}
	return &Command{
		Version:  ver,
		NameSpan: tokenSpan(nameTok),
		Name:     nameTok.Lexeme,
		Params:   params,
	}, nil
}

// ─────────────────────────── struct bodies & items ──────────────────────────

// structBody disambiguates the record shape with one token: '{' named
// fields, '(' positional tuple, otherwise unit. A top-level unit struct is
// closed by ';' (consumed); a unit union-variant body is closed by the
// item's ',' which stays for the variant loop.
func (p *parser) structBody(isUnionField bool) (StructBody, error) {
	switch {
	case p.check(LCURLY):
		open := p.peek()
		p.i++
		items, err := p.structItems(RCURLY, structFields)
		if err != nil {
			return nil, err
		}
		return &FieldsBody{
			Span:  Span{StartByte: open.StartByte, EndByte: p.prev().EndByte},
			Items: items,
		}, nil
	case p.check(LROUND):
		open := p.peek()
		p.i++
		items, err := p.tupleItems()
		if err != nil {
			return nil, err
		}
		return &TupleBody{
			Span:  Span{StartByte: open.StartByte, EndByte: p.prev().EndByte},
			Items: items,
		}, nil
	case isUnionField && p.check(COMMA):
		return &UnitBody{}, nil
	case !isUnionField && p.check(SEMI):
		p.i++
		return &UnitBody{}, nil
	}
	if isUnionField {
		return nil, p.syntaxErr("expected '{', '(', or ',' after union variant name")
	}
	return nil, p.syntaxErr("expected '{', '(', or ';' after struct name")
}

// structItems parses comma-terminated named-field items up to (and
// including) the closing token. Used for struct bodies ('}') and fn/cmd
// parameter lists (')'); the trailing comma is mandatory on every item.
func (p *parser) structItems(close TokenType, kind containerKind) ([]StructItem, error) {
	var items []StructItem
	for !p.check(close) {
		inc, minor, err := p.itemPrefix(kind)
		if err != nil {
			return nil, err
		}
		if inc != nil {
			items = append(items, inc)
		} else {
			f, err := p.structField(minor)
			if err != nil {
				return nil, err
			}
			items = append(items, f)
		}
		if _, err := p.need(COMMA, fmt.Sprintf("expected ',' in %s", kind)); err != nil {
			return nil, err
		}
	}
	p.i++ // closing token
	return items, nil
}

func (p *parser) structField(minor *MinorVersion) (*StructField, error) {
	nameTok, err := p.need(ID, "expected field name")
	if err != nil {
		return nil, err
	}
	if _, err := p.need(COLON, "expected ':' after field name"); err != nil {
		return nil, err
	}
	ft, err := p.fieldType()
	if err != nil {
		return nil, err
	}
	return &StructField{
		Version:  minor,
		NameSpan: tokenSpan(nameTok),
		Name:     nameTok.Lexeme,
		Type:     ft,
	}, nil
}

// tupleItems parses positional items up to (and including) the closing ')'.
// Unlike every other container, the final item's trailing comma is optional.
func (p *parser) tupleItems() ([]TupleItem, error) {
	var items []TupleItem
	for !p.check(RROUND) {
		inc, minor, err := p.itemPrefix(tupleFields)
		if err != nil {
			return nil, err
		}
		if inc != nil {
			items = append(items, inc)
		} else {
			ft, err := p.fieldType()
			if err != nil {
				return nil, err
			}
			items = append(items, &TupleField{Version: minor, Type: ft})
		}
		if p.check(RROUND) {
			break
		}
		if _, err := p.need(COMMA, "expected ',' in tuple fields"); err != nil {
			return nil, err
		}
	}
	if _, err := p.need(RROUND, "expected ')' after tuple fields"); err != nil {
		return nil, err
	}
	return items, nil
}

// ───────────────────── item prefixes: minor tags & includes ─────────────────

// itemPrefix handles the '@' forms that may open a container item. It
// returns exactly one of an *Include ('@ver') or a *MinorVersion ('@add' /
// '@rem'), or neither when the item is bare. The per-container policy table
// lives in containerKind.addValid; includes are legal everywhere.
func (p *parser) itemPrefix(kind containerKind) (*Include, *MinorVersion, error) {
	if !p.match(AT) {
		return nil, nil, nil
	}
	atTok := p.prev()

	switch p.peek().Type {
	case VER:
		p.i++
		inc, err := p.include(atTok)
		return inc, nil, err
	case ADD:
		if !kind.addValid() {
			return nil, nil, p.errAt(p.peek(), DiagPolicy,
				fmt.Sprintf("@add directive is not allowed for %s", kind))
		}
		p.i++
		mv, err := p.needMinorVersion()
		if err != nil {
			return nil, nil, err
		}
		return nil, &mv, nil
	case REM:
		if kind.addValid() {
			return nil, nil, p.errAt(p.peek(), DiagPolicy,
				fmt.Sprintf("@rem directive is not allowed for %s", kind))
		}
		p.i++
		mv, err := p.needMinorVersion()
		if err != nil {
			return nil, nil, err
		}
		return nil, &mv, nil
	}
	return nil, nil, p.syntaxErr("expected 'ver', 'add', or 'rem' after '@'")
}

// include parses '(' major ')' and the optional brace-enclosed adjustment
// list. Adjustment entries are comma-terminated and accept both directions
// regardless of the enclosing container's policy.
func (p *parser) include(atTok Token) (*Include, error) {
	ver, err := p.needMajorVersion()
	if err != nil {
		return nil, err
	}
	inc := &Include{Version: ver}

	if p.match(LCURLY) {
		for !p.check(RCURLY) {
			if _, err := p.need(AT, "expected '@add' or '@rem' adjustment"); err != nil {
				return nil, err
			}
			var op AdjustOp
			switch p.peek().Type {
			case ADD:
				op = AdjustAdd
			case REM:
				op = AdjustRem
			default:
				return nil, p.syntaxErr("expected 'add' or 'rem' after '@'")
			}
			p.i++
			if _, err := p.need(LROUND, "expected '(' before adjusted name"); err != nil {
				return nil, err
			}
			nameTok, err := p.need(ID, "expected adjusted field name")
			if err != nil {
				return nil, err
			}
			if _, err := p.need(RROUND, "expected ')' after adjusted name"); err != nil {
				return nil, err
			}
			if _, err := p.need(COMMA, "expected ',' after include adjustment"); err != nil {
				return nil, err
			}
			inc.Adjust = append(inc.Adjust, Adjustment{Op: op, Name: nameTok.Lexeme})
		}
		p.i++ // '}'
	}

	inc.Span = Span{StartByte: atTok.StartByte, EndByte: p.prev().EndByte}
	return inc, nil
}

// ───────────────────────────── field types ─────────────────────────────────

// fieldType parses the recursive type grammar. The bracket form is
// disambiguated by the token following the element type: ';' fixed array,
// ':' map, ']' list.
func (p *parser) fieldType() (FieldType, error) {
	t := p.peek()
	switch t.Type {
	case ID, ANY:
		p.i++
		if prim, ok := primitives[t.Lexeme]; ok {
			return &PrimitiveType{Span: tokenSpan(t), Kind: prim}, nil
		}
		return p.namedType(t)

	case QUESTION:
		p.i++
		elem, err := p.fieldType()
		if err != nil {
			return nil, err
		}
		return &OptionalType{Span: joinSpans(tokenSpan(t), elem.TypeSpan()), Elem: elem}, nil

	case AMP:
		p.i++
		elem, err := p.fieldType()
		if err != nil {
			return nil, err
		}
		return &ReferenceType{Span: joinSpans(tokenSpan(t), elem.TypeSpan()), Elem: elem}, nil

	case LSQUARE:
		p.i++
		return p.bracketType(t)

	case LROUND:
		p.i++
		items, err := p.tupleItems()
		if err != nil {
			return nil, err
		}
		return &TupleType{
			Span:  Span{StartByte: t.StartByte, EndByte: p.prev().EndByte},
			Items: items,
		}, nil
	}
	return nil, p.syntaxErr("expected field type")
}

// namedType parses the tail of 'Ident' : an optional '::' qualifier and an
// optional '@ver(N)' pin. A missing pin means resolve-to-latest, which is a
// downstream concern.
func (p *parser) namedType(first Token) (FieldType, error) {
	nt := &NamedType{Span: tokenSpan(first), Name: first.Lexeme}

	if p.match(COLONCOLON) {
		second, err := p.need(ID, "expected type name after '::'")
		if err != nil {
			return nil, err
		}
		nt.Module = first.Lexeme
		nt.Name = second.Lexeme
		nt.Span = joinSpans(nt.Span, tokenSpan(second))
	}

	if p.match(AT) {
		if _, err := p.need(VER, "expected 'ver' after '@'"); err != nil {
			return nil, err
		}
		v, err := p.needMajorVersion()
		if err != nil {
			return nil, err
		}
		nt.Version = &v
		nt.Span = joinSpans(nt.Span, tokenSpan(p.prev()))
	}
	return nt, nil
}

// bracketType parses the '[' forms after the opening bracket was consumed.
func (p *parser) bracketType(open Token) (FieldType, error) {
	elem, err := p.fieldType()
	if err != nil {
		return nil, err
	}
	switch {
	case p.match(RSQUARE):
		return &ListType{
			Span: Span{StartByte: open.StartByte, EndByte: p.prev().EndByte},
			Elem: elem,
		}, nil
	case p.match(SEMI):
		size, err := p.needUint32("invalid array size literal")
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RSQUARE, "expected ']' after array size"); err != nil {
			return nil, err
		}
		return &ArrayType{
			Span: Span{StartByte: open.StartByte, EndByte: p.prev().EndByte},
			Elem: elem,
			Size: size,
		}, nil
	case p.match(COLON):
		value, err := p.fieldType()
		if err != nil {
			return nil, err
		}
		if _, err := p.need(RSQUARE, "expected ']' after map value type"); err != nil {
			return nil, err
		}
		return &MapType{
			Span:  Span{StartByte: open.StartByte, EndByte: p.prev().EndByte},
			Key:   elem,
			Value: value,
		}, nil
	}
	return nil, p.syntaxErr("expected ']', ';', or ':'")
}
