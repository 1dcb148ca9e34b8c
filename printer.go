// printer.go — canonical formatter for parsed schemes.
//
// Format renders a *Scheme back to source in one deterministic shape; the
// formatter is idempotent and re-parsing its output yields an AST equal to
// the original (spans aside). Pretty is the source→source convenience used
// by the fmt tool and the repl.
//
// Canonical shape: one declaration per block separated by blank lines,
// two-space indentation, named-field and variant lists one item per line
// with mandatory trailing commas, struct tuple bodies one field per line,
// union variant tuple bodies and tuple field types inline.
package define

import (
	"fmt"
	"strings"
)

/* ---------- small writer with indentation ---------- */

type out struct {
	b     *strings.Builder
	depth int
}

func (o *out) write(s string) { o.b.WriteString(s) }
func (o *out) nl()            { o.b.WriteByte('\n') }
func (o *out) pad() {
	for i := 0; i < o.depth; i++ {
		o.b.WriteString("  ")
	}
}
func (o *out) line(s string)        { o.pad(); o.b.WriteString(s) }
func (o *out) withIndent(fn func()) { o.depth++; fn(); o.depth-- }

func quoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '"':
			b.WriteString(`\"`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}

/* ---------- source -> pretty ---------- */

// Pretty parses scheme source and returns its canonical formatting.
func Pretty(src string) (string, error) {
	sch, err := Parse(src)
	if err != nil {
		return "", WrapErrorWithSource(err, src)
	}
	return Format(sch), nil
}

// Format renders a scheme in canonical form.
func Format(s *Scheme) string {
	var b strings.Builder
	p := pp{out: out{b: &b}}
	p.printScheme(s)
	return strings.TrimRight(b.String(), "\n") + "\n"
}

/* ---------- printer ---------- */

type pp struct {
	out
}

func (p *pp) printScheme(s *Scheme) {
	p.write("sch " + quoteString(s.Name) + ";")
	p.nl()

	if len(s.Uses) > 0 {
		p.nl()
		for _, u := range s.Uses {
			p.write("use " + strings.Join(u.Segments, "::"))
			if u.Alias != "" {
				p.write(" as " + u.Alias)
			}
			p.write(";")
			p.nl()
		}
	}

	for _, t := range s.Types {
		p.nl()
		p.printType(t)
		p.nl()
	}
}

func (p *pp) printType(t Type) {
	p.write(fmt.Sprintf("@ver(%d)", t.TypeVersion()))
	p.nl()
	switch d := t.(type) {
	case *Struct:
		p.write("struct " + d.Name)
		p.printBody(d.Body)
	case *Union:
		p.write("union " + d.Name + " {")
		p.nl()
		p.printUnionItems(d.Items)
		p.line("}")
	case *Enum:
		p.write("enum " + d.Name + " {")
		p.nl()
		p.printEnumItems(d.Items)
		p.line("}")
	case *Function:
		p.write("fn " + d.Name + " ")
		p.printParams(d.Params)
		if d.Return != nil {
			p.write(" -> " + p.fieldType(d.Return))
		}
	case *Command:
		p.write("cmd " + d.Name + " ")
		p.printParams(d.Params)
	case *Object:
		p.write(fmt.Sprintf("obj(%s) ", d.Kind()))
		switch r := d.Repr.(type) {
		case *Struct:
			p.write(r.Name)
			p.printBody(r.Body)
		case *Union:
			p.write(r.Name + " {")
			p.nl()
			p.printUnionItems(r.Items)
			p.line("}")
		case *Enum:
			p.write(r.Name + " {")
			p.nl()
			p.printEnumItems(r.Items)
			p.line("}")
		}
	}
}

// printBody renders a top-level struct body. Unit bodies close the
// declaration with ';'.
func (p *pp) printBody(b StructBody) {
	switch body := b.(type) {
	case *FieldsBody:
		if len(body.Items) == 0 {
			p.write(" {}")
			return
		}
		p.write(" {")
		p.nl()
		p.printStructItems(body.Items)
		p.line("}")
	case *TupleBody:
		if len(body.Items) == 0 {
			p.write(" ()")
			return
		}
		p.write(" (")
		p.nl()
		p.withIndent(func() {
			for _, it := range body.Items {
				p.line(p.tupleItem(it) + ",")
				p.nl()
			}
		})
		p.line(")")
	case *UnitBody:
		p.write(";")
	}
}

func (p *pp) printParams(items []StructItem) {
	if len(items) == 0 {
		p.write("()")
		return
	}
	p.write("(")
	p.nl()
	p.printStructItems(items)
	p.line(")")
}

func (p *pp) printStructItems(items []StructItem) {
	p.withIndent(func() {
		for _, it := range items {
			switch f := it.(type) {
			case *StructField:
				p.line(minorTag(f.Version, AdjustAdd) + f.Name + ": " + p.fieldType(f.Type) + ",")
			case *Include:
				p.line(p.include(f) + ",")
			}
			p.nl()
		}
	})
}

func (p *pp) printUnionItems(items []UnionItem) {
	p.withIndent(func() {
		for _, it := range items {
			switch f := it.(type) {
			case *UnionField:
				p.line(minorTag(f.Version, AdjustRem) + f.Name)
				p.printVariantBody(f.Body)
				p.write(",")
			case *Include:
				p.line(p.include(f) + ",")
			}
			p.nl()
		}
	})
}

// printVariantBody renders a union variant's payload. Tuple payloads stay
// inline; named-field payloads nest; unit payloads render nothing.
func (p *pp) printVariantBody(b StructBody) {
	switch body := b.(type) {
	case *FieldsBody:
		if len(body.Items) == 0 {
			p.write(" {}")
			return
		}
		p.write(" {")
		p.nl()
		p.printStructItems(body.Items)
		p.pad()
		p.write("}")
	case *TupleBody:
		p.write("(" + p.tupleItemsInline(body.Items) + ")")
	case *UnitBody:
	}
}

func (p *pp) printEnumItems(items []EnumItem) {
	p.withIndent(func() {
		for _, it := range items {
			switch f := it.(type) {
			case *EnumField:
				s := minorTag(f.Version, AdjustRem) + f.Name
				if f.Value != nil {
					s += fmt.Sprintf(" = %d", *f.Value)
				}
				p.line(s + ",")
			case *Include:
				p.line(p.include(f) + ",")
			}
			p.nl()
		}
	})
}

func (p *pp) include(inc *Include) string {
	s := fmt.Sprintf("@ver(%d)", inc.Version)
	if len(inc.Adjust) == 0 {
		return s
	}
	parts := make([]string, 0, len(inc.Adjust))
	for _, a := range inc.Adjust {
		dir := "add"
		if a.Op == AdjustRem {
			dir = "rem"
		}
		parts = append(parts, fmt.Sprintf("@%s(%s),", dir, a.Name))
	}
	return s + " { " + strings.Join(parts, " ") + " }"
}

// minorTag renders an optional minor-version tag. The directive is implied
// by the container kind, so the caller passes the one its policy allows.
func minorTag(v *MinorVersion, op AdjustOp) string {
	if v == nil {
		return ""
	}
	dir := "add"
	if op == AdjustRem {
		dir = "rem"
	}
	return fmt.Sprintf("@%s(%d.%d) ", dir, v.Major, v.Minor)
}

func (p *pp) tupleItem(it TupleItem) string {
	switch f := it.(type) {
	case *TupleField:
		// Tuple containers are additive everywhere, even inside union
		// variants, so the tag is always @add.
		return minorTag(f.Version, AdjustAdd) + p.fieldType(f.Type)
	case *Include:
		return p.include(f)
	}
	return ""
}

func (p *pp) tupleItemsInline(items []TupleItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, p.tupleItem(it))
	}
	return strings.Join(parts, ", ")
}

func (p *pp) fieldType(t FieldType) string {
	switch ft := t.(type) {
	case *PrimitiveType:
		return ft.Kind.String()
	case *NamedType:
		s := ft.Name
		if ft.Module != "" {
			s = ft.Module + "::" + ft.Name
		}
		if ft.Version != nil {
			s += fmt.Sprintf("@ver(%d)", *ft.Version)
		}
		return s
	case *OptionalType:
		return "?" + p.fieldType(ft.Elem)
	case *ReferenceType:
		return "&" + p.fieldType(ft.Elem)
	case *ArrayType:
		return fmt.Sprintf("[%s; %d]", p.fieldType(ft.Elem), ft.Size)
	case *ListType:
		return "[" + p.fieldType(ft.Elem) + "]"
	case *MapType:
		return "[" + p.fieldType(ft.Key) + ": " + p.fieldType(ft.Value) + "]"
	case *TupleType:
		return "(" + p.tupleItemsInline(ft.Items) + ")"
	}
	return ""
}
