// parser_test.go
package define

import (
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

func mustParse(t *testing.T, src string) *Scheme {
	t.Helper()
	sch, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse error: %v\nsource:\n%s", err, src)
	}
	return sch
}

func mustFailParse(t *testing.T, src string, kind ErrKind, substr string) *Error {
	t.Helper()
	_, err := Parse(src)
	if err == nil {
		t.Fatalf("expected %s containing %q, got nil\nsource:\n%s", kind, substr, src)
	}
	e, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T: %v\nsource:\n%s", err, err, src)
	}
	if e.Kind != kind {
		t.Fatalf("expected %s, got %s: %v\nsource:\n%s", kind, e.Kind, err, src)
	}
	if substr != "" && !strings.Contains(e.Msg, substr) {
		t.Fatalf("expected message containing %q, got %q\nsource:\n%s", substr, e.Msg, src)
	}
	return e
}

func mustEmptyInput(t *testing.T, src string) {
	t.Helper()
	_, err := Parse(src)
	if err == nil || !IsEmptyInput(err) {
		t.Fatalf("expected empty-input diagnostic, got %v\nsource:\n%s", err, src)
	}
}

// oneType parses a scheme expected to hold exactly one declaration and
// returns it.
func oneType(t *testing.T, src string) Type {
	t.Helper()
	sch := mustParse(t, src)
	if len(sch.Types) != 1 {
		t.Fatalf("want 1 type, got %d\nsource:\n%s", len(sch.Types), src)
	}
	return sch.Types[0]
}

// inScheme wraps a declaration in a minimal scheme header.
func inScheme(decl string) string {
	return "sch \"t\";\n" + decl
}

func wantStruct(t *testing.T, ty Type) *Struct {
	t.Helper()
	s, ok := ty.(*Struct)
	if !ok {
		t.Fatalf("want *Struct, got %T", ty)
	}
	return s
}

func wantFieldsBody(t *testing.T, b StructBody) *FieldsBody {
	t.Helper()
	fb, ok := b.(*FieldsBody)
	if !ok {
		t.Fatalf("want *FieldsBody, got %T", b)
	}
	return fb
}

func minor(major, min uint16) *MinorVersion {
	return &MinorVersion{Major: major, Minor: min}
}

// --- scheme top level ------------------------------------------------------

func Test_Parser_SchemeHeader(t *testing.T) {
	sch := mustParse(t, `sch "chat protocol";`)
	if sch.Name != "chat protocol" {
		t.Fatalf("want scheme name %q, got %q", "chat protocol", sch.Name)
	}
	if len(sch.Uses) != 0 || len(sch.Types) != 0 {
		t.Fatalf("want empty scheme, got %d uses %d types", len(sch.Uses), len(sch.Types))
	}
}

func Test_Parser_EmptyInput(t *testing.T) {
	mustEmptyInput(t, "")
	mustEmptyInput(t, "   \n\t ")
	mustEmptyInput(t, "// just a comment\n")
}

func Test_Parser_EmptyInput_MidConstruct(t *testing.T) {
	// Running out of tokens inside a construct is an empty-input diagnostic,
	// not a syntax error; the repl relies on this to keep prompting.
	for _, src := range []string{
		`sch "t";
@ver(1) struct Point {`,
		`sch "t";
@ver(1) union Shape {
  Circle(f64,`,
		`sch "t"`,
		`sch`,
	} {
		mustEmptyInput(t, src)
	}
}

func Test_Parser_HeaderErrors(t *testing.T) {
	mustFailParse(t, `"t";`, DiagSyntax, "expected 'sch'")
	mustFailParse(t, `sch name;`, DiagSyntax, "expected scheme name string")
	mustFailParse(t, `sch "t" use x;`, DiagSyntax, "expected ';' after scheme name")
	mustFailParse(t, inScheme(`struct P;`), DiagSyntax, "expected 'use' import or '@ver' type declaration")
}

// --- use imports -----------------------------------------------------------

func Test_Parser_Use_Forms(t *testing.T) {
	sch := mustParse(t, `sch "t";
use common;
use std::net::addr;
use legacy::types as old;
`)
	want := []Use{
		{Segments: []string{"common"}},
		{Segments: []string{"std", "net", "addr"}},
		{Segments: []string{"legacy", "types"}, Alias: "old"},
	}
	if len(sch.Uses) != len(want) {
		t.Fatalf("want %d uses, got %d", len(want), len(sch.Uses))
	}
	for i := range want {
		if !sch.Uses[i].Equal(&want[i]) {
			t.Fatalf("use %d mismatch: got %+v want %+v", i, sch.Uses[i], want[i])
		}
	}
}

func Test_Parser_Use_KeywordRoot(t *testing.T) {
	// The first path segment may be a reserved word; later segments may not.
	sch := mustParse(t, inScheme(`use sch::meta;`))
	if got := sch.Uses[0].Segments; len(got) != 2 || got[0] != "sch" || got[1] != "meta" {
		t.Fatalf("segments mismatch: %v", got)
	}
	mustFailParse(t, inScheme(`use meta::struct;`), DiagSyntax, "expected identifier after '::'")
}

func Test_Parser_Use_Errors(t *testing.T) {
	mustFailParse(t, inScheme(`use a b;`), DiagSyntax, "expected ';', 'as', or '::'")
	mustFailParse(t, inScheme(`use a as;`), DiagSyntax, "expected alias identifier after 'as'")
	mustFailParse(t, inScheme(`use a as b`), DiagEmpty, "expected ';' after import alias")
	mustEmptyInput(t, inScheme(`use a`))
}

// --- struct declarations ---------------------------------------------------

func Test_Parser_Struct_NamedFields(t *testing.T) {
	s := wantStruct(t, oneType(t, inScheme(`@ver(1) struct Point {
  x: f64,
  y: f64,
  @add(1.2) label: ?str,
}`)))
	if s.Version != 1 || s.Name != "Point" {
		t.Fatalf("header mismatch: %+v", s)
	}
	fb := wantFieldsBody(t, s.Body)
	if len(fb.Items) != 3 {
		t.Fatalf("want 3 fields, got %d", len(fb.Items))
	}
	f0 := fb.Items[0].(*StructField)
	if f0.Name != "x" || f0.Version != nil {
		t.Fatalf("field 0 mismatch: %+v", f0)
	}
	if _, ok := f0.Type.(*PrimitiveType); !ok {
		t.Fatalf("field 0 type: want primitive, got %T", f0.Type)
	}
	f2 := fb.Items[2].(*StructField)
	if !minorEqual(f2.Version, minor(1, 2)) {
		t.Fatalf("field 2 version mismatch: %+v", f2.Version)
	}
	opt, ok := f2.Type.(*OptionalType)
	if !ok {
		t.Fatalf("field 2 type: want optional, got %T", f2.Type)
	}
	if p, ok := opt.Elem.(*PrimitiveType); !ok || p.Kind != String {
		t.Fatalf("field 2 elem mismatch: %+v", opt.Elem)
	}
}

func Test_Parser_Struct_Tuple(t *testing.T) {
	s := wantStruct(t, oneType(t, inScheme(`@ver(2) struct Pair (i32, @add(2.1) str,)`)))
	tb, ok := s.Body.(*TupleBody)
	if !ok {
		t.Fatalf("want tuple body, got %T", s.Body)
	}
	if len(tb.Items) != 2 {
		t.Fatalf("want 2 tuple fields, got %d", len(tb.Items))
	}
	f1 := tb.Items[1].(*TupleField)
	if !minorEqual(f1.Version, minor(2, 1)) {
		t.Fatalf("tuple field version mismatch: %+v", f1.Version)
	}
}

func Test_Parser_Struct_Unit(t *testing.T) {
	s := wantStruct(t, oneType(t, inScheme(`@ver(1) struct Ping;`)))
	if _, ok := s.Body.(*UnitBody); !ok {
		t.Fatalf("want unit body, got %T", s.Body)
	}
}

func Test_Parser_Struct_EmptyBodies(t *testing.T) {
	s := wantStruct(t, oneType(t, inScheme(`@ver(1) struct E {}`)))
	if fb := wantFieldsBody(t, s.Body); len(fb.Items) != 0 {
		t.Fatalf("want 0 fields, got %d", len(fb.Items))
	}
	s = wantStruct(t, oneType(t, inScheme(`@ver(1) struct T ()`)))
	if tb := s.Body.(*TupleBody); len(tb.Items) != 0 {
		t.Fatalf("want 0 tuple fields, got %d", len(tb.Items))
	}
}

func Test_Parser_Struct_TrailingCommaMandatory(t *testing.T) {
	mustFailParse(t, inScheme(`@ver(1) struct P { x: f64 }`), DiagSyntax, "expected ',' in struct fields")
	mustFailParse(t, inScheme(`@ver(1) struct P { x: f64, y: f64 }`), DiagSyntax, "expected ',' in struct fields")
}

func Test_Parser_Tuple_FinalCommaOptional(t *testing.T) {
	a := mustParse(t, inScheme(`@ver(1) struct P (i32, str)`))
	b := mustParse(t, inScheme(`@ver(1) struct P (i32, str,)`))
	if !a.Equal(b) {
		t.Fatalf("tuple with and without final comma should be equal")
	}
	mustFailParse(t, inScheme(`@ver(1) struct P (i32 str)`), DiagSyntax, "expected ',' in tuple fields")
}

func Test_Parser_Struct_BodyErrors(t *testing.T) {
	mustFailParse(t, inScheme(`@ver(1) struct P = {}`), DiagSyntax, "expected '{', '(', or ';' after struct name")
	mustFailParse(t, inScheme(`@ver(1) struct P { x f64, }`), DiagSyntax, "expected ':' after field name")
	mustFailParse(t, inScheme(`@ver(1) struct P { x: , }`), DiagSyntax, "expected field type")
}

// --- union declarations ----------------------------------------------------

func Test_Parser_Union_VariantShapes(t *testing.T) {
	ty := oneType(t, inScheme(`@ver(1) union Shape {
  Circle(f64,),
  Rect { w: f64, h: f64, },
  @rem(1.3) Point,
}`))
	u, ok := ty.(*Union)
	if !ok {
		t.Fatalf("want *Union, got %T", ty)
	}
	if len(u.Items) != 3 {
		t.Fatalf("want 3 variants, got %d", len(u.Items))
	}
	v0 := u.Items[0].(*UnionField)
	if _, ok := v0.Body.(*TupleBody); !ok {
		t.Fatalf("variant 0: want tuple body, got %T", v0.Body)
	}
	v1 := u.Items[1].(*UnionField)
	if fb := wantFieldsBody(t, v1.Body); len(fb.Items) != 2 {
		t.Fatalf("variant 1: want 2 fields, got %d", len(fb.Items))
	}
	v2 := u.Items[2].(*UnionField)
	if _, ok := v2.Body.(*UnitBody); !ok {
		t.Fatalf("variant 2: want unit body, got %T", v2.Body)
	}
	if !minorEqual(v2.Version, minor(1, 3)) {
		t.Fatalf("variant 2 version mismatch: %+v", v2.Version)
	}
}

func Test_Parser_Union_Errors(t *testing.T) {
	mustFailParse(t, inScheme(`@ver(1) union U;`), DiagSyntax, "expected '{' after union name")
	mustFailParse(t, inScheme(`@ver(1) union U { A }`), DiagSyntax, "expected '{', '(', or ',' after union variant name")
	mustFailParse(t, inScheme(`@ver(1) union U { A, B }`), DiagSyntax, "expected '{', '(', or ',' after union variant name")
}

// --- enum declarations -----------------------------------------------------

func Test_Parser_Enum_Members(t *testing.T) {
	ty := oneType(t, inScheme(`@ver(1) enum Color {
  Red,
  Green = 5,
  @rem(1.1) Blue = 4294967295,
}`))
	e, ok := ty.(*Enum)
	if !ok {
		t.Fatalf("want *Enum, got %T", ty)
	}
	m0 := e.Items[0].(*EnumField)
	if m0.Value != nil {
		t.Fatalf("member 0: want implicit value, got %d", *m0.Value)
	}
	m1 := e.Items[1].(*EnumField)
	if m1.Value == nil || *m1.Value != 5 {
		t.Fatalf("member 1 value mismatch: %+v", m1.Value)
	}
	m2 := e.Items[2].(*EnumField)
	if m2.Value == nil || *m2.Value != 4294967295 {
		t.Fatalf("member 2 value mismatch: %+v", m2.Value)
	}
	if !minorEqual(m2.Version, minor(1, 1)) {
		t.Fatalf("member 2 version mismatch: %+v", m2.Version)
	}
}

func Test_Parser_Enum_Errors(t *testing.T) {
	mustFailParse(t, inScheme(`@ver(1) enum E { A = x, }`), DiagSyntax, "expected integer literal")
	mustFailParse(t, inScheme(`@ver(1) enum E { A = 1 B, }`), DiagSyntax, "expected ',' after enum member")
}

// --- fn and cmd declarations -----------------------------------------------

func Test_Parser_Function(t *testing.T) {
	ty := oneType(t, inScheme(`@ver(1) fn resolve(name: str, @add(1.1) timeout: u32,) -> ?Addr`))
	f, ok := ty.(*Function)
	if !ok {
		t.Fatalf("want *Function, got %T", ty)
	}
	if f.Name != "resolve" || len(f.Params) != 2 {
		t.Fatalf("header mismatch: %+v", f)
	}
	opt, ok := f.Return.(*OptionalType)
	if !ok {
		t.Fatalf("return: want optional, got %T", f.Return)
	}
	if nt, ok := opt.Elem.(*NamedType); !ok || nt.Name != "Addr" {
		t.Fatalf("return elem mismatch: %+v", opt.Elem)
	}
}

func Test_Parser_Function_NoReturn(t *testing.T) {
	f := oneType(t, inScheme(`@ver(1) fn ping()`)).(*Function)
	if f.Return != nil {
		t.Fatalf("want nil return, got %+v", f.Return)
	}
	if len(f.Params) != 0 {
		t.Fatalf("want 0 params, got %d", len(f.Params))
	}
}

func Test_Parser_Command(t *testing.T) {
	c := oneType(t, inScheme(`@ver(3) cmd shutdown(grace_secs: u16,)`)).(*Command)
	if c.Version != 3 || c.Name != "shutdown" || len(c.Params) != 1 {
		t.Fatalf("command mismatch: %+v", c)
	}
}

func Test_Parser_Command_NoReturnAllowed(t *testing.T) {
	mustFailParse(t, inScheme(`@ver(1) cmd stop() -> bool`), DiagSyntax, "expected 'use' import or '@ver' type declaration")
}

// --- obj declarations ------------------------------------------------------

func Test_Parser_Object_Kinds(t *testing.T) {
	for _, tc := range []struct {
		src  string
		kind ReprKind
	}{
		{`@ver(1) obj(struct) S { x: u8, }`, ReprStruct},
		{`@ver(1) obj(union) U { A, }`, ReprUnion},
		{`@ver(1) obj(enum) E { A, }`, ReprEnum},
	} {
		ty := oneType(t, inScheme(tc.src))
		o, ok := ty.(*Object)
		if !ok {
			t.Fatalf("want *Object, got %T\nsource:\n%s", ty, tc.src)
		}
		if o.Kind() != tc.kind {
			t.Fatalf("want kind %s, got %s\nsource:\n%s", tc.kind, o.Kind(), tc.src)
		}
	}
}

func Test_Parser_Object_Errors(t *testing.T) {
	mustFailParse(t, inScheme(`@ver(1) obj(fn) F()`), DiagSyntax, "expected 'struct', 'union', or 'enum'")
	mustFailParse(t, inScheme(`@ver(1) obj struct S;`), DiagSyntax, "expected '(' after 'obj'")
}

// --- versioning policy -----------------------------------------------------

func Test_Parser_Policy_RemForbiddenInAdditiveContainers(t *testing.T) {
	for _, tc := range []struct {
		src       string
		container string
	}{
		{`@ver(1) struct P { @rem(1.1) x: u8, }`, "struct fields"},
		{`@ver(1) struct P (@rem(1.1) u8,)`, "tuple fields"},
		{`@ver(1) fn f(@rem(1.1) x: u8,)`, "function params"},
		{`@ver(1) cmd c(@rem(1.1) x: u8,)`, "command params"},
	} {
		e := mustFailParse(t, inScheme(tc.src), DiagPolicy, "@rem directive is not allowed for "+tc.container)
		if !IsPolicy(e) {
			t.Fatalf("IsPolicy should hold: %v", e)
		}
	}
}

func Test_Parser_Policy_AddForbiddenInExhaustiveContainers(t *testing.T) {
	for _, tc := range []struct {
		src       string
		container string
	}{
		{`@ver(1) union U { @add(1.1) A, }`, "union variants"},
		{`@ver(1) enum E { @add(1.1) A, }`, "enum members"},
	} {
		mustFailParse(t, inScheme(tc.src), DiagPolicy, "@add directive is not allowed for "+tc.container)
	}
}

func Test_Parser_Policy_TupleInsideUnionVariantIsAdditive(t *testing.T) {
	// Tuple containers are additive even when nested in a union variant.
	mustParse(t, inScheme(`@ver(1) union U { A(@add(1.1) u8,), }`))
	mustFailParse(t, inScheme(`@ver(1) union U { A(@rem(1.1) u8,), }`),
		DiagPolicy, "@rem directive is not allowed for tuple fields")
}

func Test_Parser_Policy_UnknownDirective(t *testing.T) {
	mustFailParse(t, inScheme(`@ver(1) struct P { @mod(1.1) x: u8, }`), DiagSyntax, "expected 'ver', 'add', or 'rem' after '@'")
}

// --- includes ----------------------------------------------------------------

func Test_Parser_Include_Bare(t *testing.T) {
	s := wantStruct(t, oneType(t, inScheme(`@ver(2) struct P {
  @ver(1),
  z: f64,
}`)))
	fb := wantFieldsBody(t, s.Body)
	inc, ok := fb.Items[0].(*Include)
	if !ok {
		t.Fatalf("item 0: want *Include, got %T", fb.Items[0])
	}
	if inc.Version != 1 || len(inc.Adjust) != 0 {
		t.Fatalf("include mismatch: %+v", inc)
	}
}

func Test_Parser_Include_Adjustments(t *testing.T) {
	s := wantStruct(t, oneType(t, inScheme(`@ver(3) struct P {
  @ver(2) { @rem(label), @add(tag), },
}`)))
	fb := wantFieldsBody(t, s.Body)
	inc := fb.Items[0].(*Include)
	want := []Adjustment{
		{Op: AdjustRem, Name: "label"},
		{Op: AdjustAdd, Name: "tag"},
	}
	if len(inc.Adjust) != len(want) {
		t.Fatalf("want %d adjustments, got %d", len(want), len(inc.Adjust))
	}
	for i := range want {
		if inc.Adjust[i] != want[i] {
			t.Fatalf("adjustment %d mismatch: got %+v want %+v", i, inc.Adjust[i], want[i])
		}
	}
}

func Test_Parser_Include_BothDirectionsEverywhere(t *testing.T) {
	// Adjustment entries accept both directions regardless of the enclosing
	// container's add/rem policy.
	mustParse(t, inScheme(`@ver(2) union U { @ver(1) { @add(A), @rem(B), }, }`))
	mustParse(t, inScheme(`@ver(2) enum E { @ver(1) { @add(A), @rem(B), }, }`))
	mustParse(t, inScheme(`@ver(2) struct P (@ver(1) { @add(a), @rem(b), },)`))
	mustParse(t, inScheme(`@ver(2) fn f(@ver(1) { @rem(x), },)`))
}

func Test_Parser_Include_Errors(t *testing.T) {
	mustFailParse(t, inScheme(`@ver(2) struct P { @ver(1) { @ver(0), }, }`), DiagSyntax, "expected 'add' or 'rem' after '@'")
	mustFailParse(t, inScheme(`@ver(2) struct P { @ver(1) { @add(x) }, }`), DiagSyntax, "expected ',' after include adjustment")
	mustFailParse(t, inScheme(`@ver(2) struct P { @ver(1) { add(x), }, }`), DiagSyntax, "expected '@add' or '@rem' adjustment")
}

// --- version literal ranges --------------------------------------------------

func Test_Parser_MajorVersion_Range(t *testing.T) {
	mustParse(t, inScheme(`@ver(65535) struct P;`))
	e := mustFailParse(t, inScheme(`@ver(65536) struct P;`), DiagRange, "major version must be a valid u16 value")
	if !IsRange(e) {
		t.Fatalf("IsRange should hold: %v", e)
	}
}

func Test_Parser_MinorVersion_Shapes(t *testing.T) {
	mustParse(t, inScheme(`@ver(1) struct P { @add(65535.65535) x: u8, }`))
	mustFailParse(t, inScheme(`@ver(1) struct P { @add(1) x: u8, }`), DiagRange, "minor version must be of the form <major>.<minor>")
	mustFailParse(t, inScheme(`@ver(1) struct P { @add(1.2.3) x: u8, }`), DiagRange, "minor version must be of the form <major>.<minor>")
	mustFailParse(t, inScheme(`@ver(1) struct P { @add(1.) x: u8, }`), DiagRange, "major and minor versions must be valid u16 values")
	mustFailParse(t, inScheme(`@ver(1) struct P { @add(1.65536) x: u8, }`), DiagRange, "major and minor versions must be valid u16 values")
	mustFailParse(t, inScheme(`@ver(1) struct P { @add(65536.1) x: u8, }`), DiagRange, "major and minor versions must be valid u16 values")
}

func Test_Parser_Uint32_Ranges(t *testing.T) {
	mustParse(t, inScheme(`@ver(1) struct P { b: [u8; 4294967295], }`))
	mustFailParse(t, inScheme(`@ver(1) struct P { b: [u8; 4294967296], }`), DiagRange, "invalid array size literal")
	mustFailParse(t, inScheme(`@ver(1) enum E { A = 4294967296, }`), DiagRange, "invalid enum int literal")
}

func Test_Parser_NamedTypePin_Range(t *testing.T) {
	mustFailParse(t, inScheme(`@ver(1) struct P { x: Addr@ver(65536), }`), DiagRange, "major version must be a valid u16 value")
}

// --- field types -------------------------------------------------------------

func Test_Parser_FieldType_Primitives(t *testing.T) {
	src := inScheme(`@ver(1) struct P {
  a: i8, b: i16, c: i32, d: i64,
  e: u8, f: u16, g: u32, h: u64,
  i: f32, j: f64, k: bool, l: str, m: bytes, n: any,
}`)
	s := wantStruct(t, oneType(t, src))
	fb := wantFieldsBody(t, s.Body)
	want := []Primitive{
		Int8, Int16, Int32, Int64,
		UInt8, UInt16, UInt32, UInt64,
		Float32, Float64, Boolean, String, Bytes, AnyValue,
	}
	if len(fb.Items) != len(want) {
		t.Fatalf("want %d fields, got %d", len(want), len(fb.Items))
	}
	for i, kind := range want {
		f := fb.Items[i].(*StructField)
		p, ok := f.Type.(*PrimitiveType)
		if !ok || p.Kind != kind {
			t.Fatalf("field %d: want %s, got %+v", i, kind, f.Type)
		}
	}
}

func Test_Parser_FieldType_CaseSensitivePrimitives(t *testing.T) {
	// "Str" is not a primitive; it parses as a named type.
	s := wantStruct(t, oneType(t, inScheme(`@ver(1) struct P { x: Str, }`)))
	f := wantFieldsBody(t, s.Body).Items[0].(*StructField)
	nt, ok := f.Type.(*NamedType)
	if !ok || nt.Name != "Str" {
		t.Fatalf("want named type Str, got %+v", f.Type)
	}
}

func Test_Parser_FieldType_Named(t *testing.T) {
	s := wantStruct(t, oneType(t, inScheme(`@ver(1) struct P {
  a: Addr,
  b: net::Addr,
  c: net::Addr@ver(2),
  d: Addr@ver(3),
}`)))
	fb := wantFieldsBody(t, s.Body)
	v2, v3 := MajorVersion(2), MajorVersion(3)
	want := []*NamedType{
		{Name: "Addr"},
		{Module: "net", Name: "Addr"},
		{Module: "net", Name: "Addr", Version: &v2},
		{Name: "Addr", Version: &v3},
	}
	for i, w := range want {
		got := fb.Items[i].(*StructField).Type
		if !fieldTypeEqual(got, w) {
			t.Fatalf("field %d mismatch: got %+v want %+v", i, got, w)
		}
	}
}

func Test_Parser_FieldType_PrefixesStack(t *testing.T) {
	s := wantStruct(t, oneType(t, inScheme(`@ver(1) struct P { x: ?&?str, }`)))
	f := wantFieldsBody(t, s.Body).Items[0].(*StructField)
	want := &OptionalType{Elem: &ReferenceType{Elem: &OptionalType{Elem: &PrimitiveType{Kind: String}}}}
	if !FieldTypeEqual(f.Type, want) {
		t.Fatalf("prefix stack mismatch: %+v", f.Type)
	}
}

func Test_Parser_FieldType_Brackets(t *testing.T) {
	s := wantStruct(t, oneType(t, inScheme(`@ver(1) struct P {
  a: [u8],
  b: [u8; 16],
  c: [str: ?Addr],
  d: [[u8]: [Addr; 2]],
}`)))
	fb := wantFieldsBody(t, s.Body)
	want := []FieldType{
		&ListType{Elem: &PrimitiveType{Kind: UInt8}},
		&ArrayType{Elem: &PrimitiveType{Kind: UInt8}, Size: 16},
		&MapType{
			Key:   &PrimitiveType{Kind: String},
			Value: &OptionalType{Elem: &NamedType{Name: "Addr"}},
		},
		&MapType{
			Key:   &ListType{Elem: &PrimitiveType{Kind: UInt8}},
			Value: &ArrayType{Elem: &NamedType{Name: "Addr"}, Size: 2},
		},
	}
	for i, w := range want {
		got := fb.Items[i].(*StructField).Type
		if !FieldTypeEqual(got, w) {
			t.Fatalf("field %d mismatch: got %+v want %+v", i, got, w)
		}
	}
}

func Test_Parser_FieldType_Tuple(t *testing.T) {
	s := wantStruct(t, oneType(t, inScheme(`@ver(1) struct P { x: (u8, @add(1.1) str, @ver(0),), }`)))
	f := wantFieldsBody(t, s.Body).Items[0].(*StructField)
	tt, ok := f.Type.(*TupleType)
	if !ok {
		t.Fatalf("want tuple type, got %T", f.Type)
	}
	if len(tt.Items) != 3 {
		t.Fatalf("want 3 tuple items, got %d", len(tt.Items))
	}
	if f1 := tt.Items[1].(*TupleField); !minorEqual(f1.Version, minor(1, 1)) {
		t.Fatalf("tuple item 1 version mismatch: %+v", f1.Version)
	}
	if inc := tt.Items[2].(*Include); inc.Version != 0 {
		t.Fatalf("tuple item 2 include mismatch: %+v", inc)
	}
}

func Test_Parser_FieldType_BracketErrors(t *testing.T) {
	mustFailParse(t, inScheme(`@ver(1) struct P { x: [u8 u8], }`), DiagSyntax, "expected ']', ';', or ':'")
	mustFailParse(t, inScheme(`@ver(1) struct P { x: [u8; x], }`), DiagSyntax, "expected integer literal")
}

// --- whole-unit corpus -------------------------------------------------------

func Test_Parser_FullScheme(t *testing.T) {
	src := `sch "device control";

// shared imports
use common::geo;
use legacy::wire as v0;

@ver(1)
struct Point {
  x: f64,
  y: f64,
  @add(1.2) label: ?str,
}

@ver(2)
struct Point {
  @ver(1) { @rem(label), },
  z: f64,
}

@ver(1)
union Event {
  Moved(geo::Point@ver(2),),
  Resized { w: f64, h: f64, },
  @rem(1.4) Closed,
}

@ver(1)
enum Status {
  Idle,
  Busy = 2,
  @rem(1.1) Stale,
}

@ver(1)
obj(struct) Device {
  id: [u8; 16],
  tags: [str],
  attrs: [str: any],
}

@ver(1)
fn query(filter: ?str, @add(1.3) limit: u32,) -> [Device]

@ver(1)
cmd reset(hard: bool,)
`
	sch := mustParse(t, src)
	if sch.Name != "device control" {
		t.Fatalf("scheme name mismatch: %q", sch.Name)
	}
	if len(sch.Uses) != 2 || len(sch.Types) != 7 {
		t.Fatalf("shape mismatch: %d uses, %d types", len(sch.Uses), len(sch.Types))
	}

	// Recurring names carry distinct major versions.
	p1, p2 := sch.Types[0].(*Struct), sch.Types[1].(*Struct)
	if p1.Name != "Point" || p2.Name != "Point" || p1.Version != 1 || p2.Version != 2 {
		t.Fatalf("recurring declaration mismatch: %v / %v", p1, p2)
	}

	names := []string{"Point", "Point", "Event", "Status", "Device", "query", "reset"}
	for i, want := range names {
		if got := sch.Types[i].TypeName(); got != want {
			t.Fatalf("type %d: want name %q, got %q", i, want, got)
		}
	}
}

// mixedCorpus exercises every declaration form, body shape, and versioning
// construct together in one unit: recurring names across majors, includes
// with and without adjustments, tagged tuple items, and one obj switching
// representation kind on every major version.
const mixedCorpus = `sch "scheme/name";

use external_crate::some_path::scheme as extern_scheme;
use super_root::scheme as super_scheme;
use crate_root::some_path::types;

@ver(1)
struct Struct {
  signed_int8: i8,
  signed_int16: i16,
  signed_int32: i32,
  signed_int64: i64,

  unsigned_int8: u8,
  unsigned_int16: u16,
  unsigned_int32: u32,
  unsigned_int64: u64,

  float32: f32,
  float64: f64,

  boolean: bool,
  string: str,
  optional: ?str,

  array: [u8; 32],
  list: [u8],
  map: [u8: u8],
  tuple: (u8, u8),
  byte_list: bytes,

  extern_struct: types::Struct@ver(1),
  extern_object: &types::Object,
}

@ver(2)
struct Struct {
  @ver(1) {
    @rem(list),
    @rem(byte_list),
  },

  array: [u16; 32],
  map: [u16: u16],
  tuple: (u16, u16),

  extern_struct: extern_scheme::Struct@ver(2),
}

@ver(1)
struct NewTypeStruct (
  Struct@ver(1),
)

@ver(2)
struct NewTypeStruct (
  Struct@ver(2),
)

@ver(1)
struct TupleStruct (
  types::Struct@ver(2),
  super_scheme::Enum@ver(1),

  @add(1.1)
  types::Union@ver(1),
)

@ver(2)
struct TupleStruct (
  types::Struct@ver(3),
  super_scheme::Enum@ver(2),
  types::Union@ver(2),
)

@ver(1)
enum Enum {
  @rem(1.1)
  Zero,

  One = 10,
  Two = 20,
  Three = 30,
}

@ver(2)
enum Enum {
  One = 100,
  Two = 200,
  Three = 300,

  @rem(2.1)
  Four = 400,
}

@ver(1)
union Union {
  NewType(u8),
  Tuple(
    u8,
    bool,

    @add(1.1)
    u16,
  ),
  Struct {
    new_type: NewTypeStruct@ver(1),
    tuple: TupleStruct@ver(1),
    extern_type: extern_scheme::Union@ver(1),
  },

  @rem(1.2)
  None,
}

@ver(2)
union Union {
  @ver(1),
  None2,
}

@ver(1)
obj(struct) Object {
  struct_: Struct@ver(1),
}

@ver(2)
obj(struct) Object (
  Enum@ver(1),
)

@ver(3)
obj(union) Object {
  Struct {
    extern_object: &types::Object,
  },
}

@ver(4)
obj(enum) Object {
  Zero,
}

@ver(1)
fn Function (
  one: Struct@ver(1),
  two: &Object,
  three: bytes,
) -> Struct@ver(1)

@ver(1)
cmd Command (
  one: &Object,
  two: &types::Object,
)
`

func Test_Parser_MixedVersionCorpus(t *testing.T) {
	sch := mustParse(t, mixedCorpus)
	if sch.Name != "scheme/name" {
		t.Fatalf("scheme name mismatch: %q", sch.Name)
	}
	if len(sch.Uses) != 3 {
		t.Fatalf("want 3 uses, got %d", len(sch.Uses))
	}
	if sch.Uses[0].Alias != "extern_scheme" || sch.Uses[2].Alias != "" {
		t.Fatalf("use aliases mismatch: %+v", sch.Uses)
	}
	if len(sch.Types) != 16 {
		t.Fatalf("want 16 declarations, got %d", len(sch.Types))
	}

	// Struct@2 leads with an include carrying removal adjustments.
	s2 := sch.Types[1].(*Struct)
	inc := wantFieldsBody(t, s2.Body).Items[0].(*Include)
	if inc.Version != 1 || len(inc.Adjust) != 2 ||
		inc.Adjust[0] != (Adjustment{Op: AdjustRem, Name: "list"}) ||
		inc.Adjust[1] != (Adjustment{Op: AdjustRem, Name: "byte_list"}) {
		t.Fatalf("include mismatch: %+v", inc)
	}

	// TupleStruct@1's last positional item carries an @add tag.
	ts1 := sch.Types[4].(*Struct)
	tb := ts1.Body.(*TupleBody)
	if last := tb.Items[2].(*TupleField); !minorEqual(last.Version, minor(1, 1)) {
		t.Fatalf("tuple item tag mismatch: %+v", last.Version)
	}

	// Union@2 combines a bare include with a fresh variant.
	u2 := sch.Types[9].(*Union)
	if inc := u2.Items[0].(*Include); inc.Version != 1 || len(inc.Adjust) != 0 {
		t.Fatalf("union include mismatch: %+v", inc)
	}
	if v := u2.Items[1].(*UnionField); v.Name != "None2" {
		t.Fatalf("union variant mismatch: %+v", v)
	}

	// One obj name switches representation kind on every major version,
	// including a tuple-bodied struct representation at @ver(2).
	wantKinds := []ReprKind{ReprStruct, ReprStruct, ReprUnion, ReprEnum}
	for i, want := range wantKinds {
		o := sch.Types[10+i].(*Object)
		if o.TypeName() != "Object" || o.TypeVersion() != MajorVersion(i+1) {
			t.Fatalf("obj %d header mismatch: %v@%d", i, o.TypeName(), o.TypeVersion())
		}
		if o.Kind() != want {
			t.Fatalf("obj @ver(%d): want kind %s, got %s", i+1, want, o.Kind())
		}
	}
	if _, ok := sch.Types[11].(*Object).Repr.(*Struct).Body.(*TupleBody); !ok {
		t.Fatalf("obj @ver(2) should have a tuple body")
	}

	// Function return type pins a major version.
	f := sch.Types[14].(*Function)
	if nt, ok := f.Return.(*NamedType); !ok || nt.Name != "Struct" || nt.Version == nil || *nt.Version != 1 {
		t.Fatalf("function return mismatch: %+v", f.Return)
	}
	if c := sch.Types[15].(*Command); len(c.Params) != 2 {
		t.Fatalf("command params mismatch: %+v", c)
	}

	roundTrip(t, mixedCorpus)
}

func Test_Parser_StructuralEquality_IgnoresSpans(t *testing.T) {
	compact := `sch "t"; @ver(1) struct P { x: f64, y: ?str, }`
	spread := `sch "t";

// same declaration, different layout
@ver(1)
struct P {
  x: f64,
  y: ?str,
}`
	a, b := mustParse(t, compact), mustParse(t, spread)
	if !a.Equal(b) {
		t.Fatalf("layout must not affect equality")
	}
}

func Test_Parser_Inequality(t *testing.T) {
	base := mustParse(t, inScheme(`@ver(1) struct P { x: f64, }`))
	for _, src := range []string{
		`@ver(2) struct P { x: f64, }`,
		`@ver(1) struct Q { x: f64, }`,
		`@ver(1) struct P { x: f32, }`,
		`@ver(1) struct P { y: f64, }`,
		`@ver(1) struct P { @add(1.1) x: f64, }`,
		`@ver(1) struct P (f64,)`,
		`@ver(1) obj(struct) P { x: f64, }`,
	} {
		other := mustParse(t, inScheme(src))
		if base.Equal(other) {
			t.Fatalf("schemes should differ:\n%s", src)
		}
	}
}

func Test_Parser_ParseTokens_Direct(t *testing.T) {
	toks, err := NewLexer(`sch "t"; @ver(1) struct P;`).Scan()
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	sch, err := ParseTokens(toks)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(sch.Types) != 1 {
		t.Fatalf("want 1 type, got %d", len(sch.Types))
	}
	if _, err := ParseTokens(nil); err == nil || !IsEmptyInput(err) {
		t.Fatalf("nil token stream: want empty-input, got %v", err)
	}
}

func Test_Parser_ErrorPosition(t *testing.T) {
	e := mustFailParse(t, "sch \"t\";\n@ver(1) struct P {\n  x f64,\n}", DiagSyntax, "expected ':' after field name")
	if e.Line != 3 {
		t.Fatalf("want error on line 3, got %d", e.Line)
	}
}
