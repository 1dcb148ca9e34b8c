// ast.go — the versioned schema AST.
//
// One parsed scheme unit is a *Scheme: a name, its import bindings, and a
// flat, ordered list of type declarations. A name may recur across multiple
// major-version declarations; declarations are never unified here, that is a
// downstream pass. Every node that came from source carries a Span for
// diagnostics, and every Equal method ignores it: equality is structural
// only.
//
// Container item lists (struct fields, tuple fields, function/command params,
// union variants, enum members) hold items that are each exactly one of a
// bare field/variant, a field/variant tagged with a MinorVersion, or an
// *Include. The item interfaces below enforce the "exactly one of" shape at
// the type level; *Include satisfies all four of them.
package define

// MajorVersion identifies an incompatible revision of a named type.
type MajorVersion uint16

// MinorVersion is a (major, minor) pair tagging an item's introduction (@add)
// or removal (@rem) within one major version's lifetime.
type MinorVersion struct {
	Major uint16
	Minor uint16
}

// Scheme is one schema source unit.
type Scheme struct {
	Name  string
	Uses  []Use
	Types []Type
}

// Equal reports structural equality, ignoring spans.
func (s *Scheme) Equal(o *Scheme) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Name != o.Name || len(s.Uses) != len(o.Uses) || len(s.Types) != len(o.Types) {
		return false
	}
	for i := range s.Uses {
		if !s.Uses[i].Equal(&o.Uses[i]) {
			return false
		}
	}
	for i := range s.Types {
		if !typeEqual(s.Types[i], o.Types[i]) {
			return false
		}
	}
	return true
}

// Use is an import binding: ordered path segments plus an optional alias.
// Resolution happens downstream; the first segment may be a reserved root.
type Use struct {
	Span     Span
	Segments []string
	Alias    string // "" when absent
}

func (u *Use) Equal(o *Use) bool {
	if u.Alias != o.Alias || len(u.Segments) != len(o.Segments) {
		return false
	}
	for i := range u.Segments {
		if u.Segments[i] != o.Segments[i] {
			return false
		}
	}
	return true
}

// Type is the tagged union over the six declaration forms. Every variant
// carries a major version and a name.
type Type interface {
	TypeName() string
	TypeVersion() MajorVersion
	typeNode()
}

func typeEqual(a, b Type) bool {
	switch at := a.(type) {
	case *Struct:
		bt, ok := b.(*Struct)
		return ok && at.Equal(bt)
	case *Union:
		bt, ok := b.(*Union)
		return ok && at.Equal(bt)
	case *Enum:
		bt, ok := b.(*Enum)
		return ok && at.Equal(bt)
	case *Function:
		bt, ok := b.(*Function)
		return ok && at.Equal(bt)
	case *Command:
		bt, ok := b.(*Command)
		return ok && at.Equal(bt)
	case *Object:
		bt, ok := b.(*Object)
		return ok && at.Equal(bt)
	}
	return false
}

// ReprKind is the physical representation an Object declaration selects.
type ReprKind int

const (
	ReprStruct ReprKind = iota
	ReprUnion
	ReprEnum
)

func (k ReprKind) String() string {
	switch k {
	case ReprStruct:
		return "struct"
	case ReprUnion:
		return "union"
	case ReprEnum:
		return "enum"
	}
	return "repr(?)"
}

// Object is a declaration whose representation kind is chosen explicitly per
// major version. Repr is one of *Struct, *Union, *Enum; a later declaration
// of the same name may pick a different kind.
type Object struct {
	Repr Type
}

func (o *Object) TypeName() string          { return o.Repr.TypeName() }
func (o *Object) TypeVersion() MajorVersion { return o.Repr.TypeVersion() }
func (o *Object) typeNode()                 {}

// Kind reports which representation this declaration selected.
func (o *Object) Kind() ReprKind {
	switch o.Repr.(type) {
	case *Union:
		return ReprUnion
	case *Enum:
		return ReprEnum
	default:
		return ReprStruct
	}
}

func (o *Object) Equal(b *Object) bool {
	return typeEqual(o.Repr, b.Repr)
}

// Struct is a named-field, tuple, or unit record declaration.
type Struct struct {
	Version  MajorVersion
	NameSpan Span
	Name     string
	Body     StructBody
}

func (s *Struct) TypeName() string          { return s.Name }
func (s *Struct) TypeVersion() MajorVersion { return s.Version }
func (s *Struct) typeNode()                 {}

func (s *Struct) Equal(o *Struct) bool {
	return s.Version == o.Version && s.Name == o.Name && bodyEqual(s.Body, o.Body)
}

// StructBody is the tagged union over record shapes: named fields, a
// positional tuple, or unit (no payload).
type StructBody interface {
	structBody()
}

// FieldsBody is the named-field shape: { name: type, ... }.
type FieldsBody struct {
	Span  Span
	Items []StructItem
}

// TupleBody is the positional shape: ( type, ... ).
type TupleBody struct {
	Span  Span
	Items []TupleItem
}

// UnitBody is the payload-less shape.
type UnitBody struct{}

func (*FieldsBody) structBody() {}
func (*TupleBody) structBody()  {}
func (*UnitBody) structBody()   {}

func bodyEqual(a, b StructBody) bool {
	switch at := a.(type) {
	case *FieldsBody:
		bt, ok := b.(*FieldsBody)
		return ok && structItemsEqual(at.Items, bt.Items)
	case *TupleBody:
		bt, ok := b.(*TupleBody)
		return ok && tupleItemsEqual(at.Items, bt.Items)
	case *UnitBody:
		_, ok := b.(*UnitBody)
		return ok
	}
	return false
}

// StructItem is one entry of a named-field container: a *StructField or an
// *Include.
type StructItem interface {
	structItem()
}

// TupleItem is one entry of a positional container: a *TupleField or an
// *Include.
type TupleItem interface {
	tupleItem()
}

// UnionItem is one entry of a union variant list: a *UnionField or an
// *Include.
type UnionItem interface {
	unionItem()
}

// EnumItem is one entry of an enum member list: an *EnumField or an *Include.
type EnumItem interface {
	enumItem()
}

// StructField is a named field, optionally tagged with the minor version
// that introduced it.
type StructField struct {
	Version  *MinorVersion
	NameSpan Span
	Name     string
	Type     FieldType
}

func (*StructField) structItem() {}

func (f *StructField) Equal(o *StructField) bool {
	return minorEqual(f.Version, o.Version) && f.Name == o.Name && fieldTypeEqual(f.Type, o.Type)
}

// TupleField is a positional field, optionally tagged with the minor version
// that introduced it.
type TupleField struct {
	Version *MinorVersion
	Type    FieldType
}

func (*TupleField) tupleItem() {}

func (f *TupleField) Equal(o *TupleField) bool {
	return minorEqual(f.Version, o.Version) && fieldTypeEqual(f.Type, o.Type)
}

// UnionField is one variant, optionally tagged with the minor version that
// removed it. Its body may itself be any struct-body shape.
type UnionField struct {
	Version  *MinorVersion
	NameSpan Span
	Name     string
	Body     StructBody
}

func (*UnionField) unionItem() {}

func (f *UnionField) Equal(o *UnionField) bool {
	return minorEqual(f.Version, o.Version) && f.Name == o.Name && bodyEqual(f.Body, o.Body)
}

// EnumField is one member, optionally tagged with the minor version that
// removed it, with an optional explicit discriminant. Discriminant
// uniqueness is not checked here.
type EnumField struct {
	Version  *MinorVersion
	NameSpan Span
	Name     string
	Value    *uint32
}

func (*EnumField) enumItem() {}

func (f *EnumField) Equal(o *EnumField) bool {
	if !minorEqual(f.Version, o.Version) || f.Name != o.Name {
		return false
	}
	if (f.Value == nil) != (o.Value == nil) {
		return false
	}
	return f.Value == nil || *f.Value == *o.Value
}

// AdjustOp is the direction of a name-level include adjustment.
type AdjustOp int

const (
	AdjustAdd AdjustOp = iota
	AdjustRem
)

// Adjustment is one @add(name) or @rem(name) entry inside an include block.
// Both directions are accepted in every container kind: adjustments
// reference existing names, they do not introduce or remove fields directly.
type Adjustment struct {
	Op   AdjustOp
	Name string
}

// Include reuses, structurally, the entire item set of the referenced major
// version of the same container, plus ordered name-level adjustments that a
// downstream resolver applies. Whether the referenced names exist is not
// validated here.
type Include struct {
	Span    Span
	Version MajorVersion
	Adjust  []Adjustment
}

func (*Include) structItem() {}
func (*Include) tupleItem()  {}
func (*Include) unionItem()  {}
func (*Include) enumItem()   {}

func (inc *Include) Equal(o *Include) bool {
	if inc.Version != o.Version || len(inc.Adjust) != len(o.Adjust) {
		return false
	}
	for i := range inc.Adjust {
		if inc.Adjust[i] != o.Adjust[i] {
			return false
		}
	}
	return true
}

// Union is an exhaustively matched variant declaration.
type Union struct {
	Version  MajorVersion
	NameSpan Span
	Name     string
	Items    []UnionItem
}

func (u *Union) TypeName() string          { return u.Name }
func (u *Union) TypeVersion() MajorVersion { return u.Version }
func (u *Union) typeNode()                 {}

func (u *Union) Equal(o *Union) bool {
	if u.Version != o.Version || u.Name != o.Name || len(u.Items) != len(o.Items) {
		return false
	}
	for i := range u.Items {
		if !unionItemEqual(u.Items[i], o.Items[i]) {
			return false
		}
	}
	return true
}

// Enum is an exhaustively matched member declaration.
type Enum struct {
	Version  MajorVersion
	NameSpan Span
	Name     string
	Items    []EnumItem
}

func (e *Enum) TypeName() string          { return e.Name }
func (e *Enum) TypeVersion() MajorVersion { return e.Version }
func (e *Enum) typeNode()                 {}

func (e *Enum) Equal(o *Enum) bool {
	if e.Version != o.Version || e.Name != o.Name || len(e.Items) != len(o.Items) {
		return false
	}
	for i := range e.Items {
		if !enumItemEqual(e.Items[i], o.Items[i]) {
			return false
		}
	}
	return true
}

// Function is a callable declaration with named params and an optional
// return type (nil when absent).
type Function struct {
	Version  MajorVersion
	NameSpan Span
	Name     string
	Params   []StructItem
	Return   FieldType
}

func (f *Function) TypeName() string          { return f.Name }
func (f *Function) TypeVersion() MajorVersion { return f.Version }
func (f *Function) typeNode()                 {}

func (f *Function) Equal(o *Function) bool {
	if f.Version != o.Version || f.Name != o.Name || !structItemsEqual(f.Params, o.Params) {
		return false
	}
	if (f.Return == nil) != (o.Return == nil) {
		return false
	}
	return f.Return == nil || fieldTypeEqual(f.Return, o.Return)
}

// Command is a callable declaration with named params and no return value.
type Command struct {
	Version  MajorVersion
	NameSpan Span
	Name     string
	Params   []StructItem
}

func (c *Command) TypeName() string          { return c.Name }
func (c *Command) TypeVersion() MajorVersion { return c.Version }
func (c *Command) typeNode()                 {}

func (c *Command) Equal(o *Command) bool {
	return c.Version == o.Version && c.Name == o.Name && structItemsEqual(c.Params, o.Params)
}

/* ---------- field types ---------- */

// Primitive enumerates the fixed, case-sensitive primitive keyword set.
type Primitive int

const (
	Int8 Primitive = iota
	Int16
	Int32
	Int64

	UInt8
	UInt16
	UInt32
	UInt64

	Float32
	Float64

	Boolean
	String
	Bytes

	AnyValue
)

// primitives maps the source keyword to the primitive kind. Any identifier
// not in this table is a named type.
var primitives = map[string]Primitive{
	"i8":    Int8,
	"i16":   Int16,
	"i32":   Int32,
	"i64":   Int64,
	"u8":    UInt8,
	"u16":   UInt16,
	"u32":   UInt32,
	"u64":   UInt64,
	"f32":   Float32,
	"f64":   Float64,
	"bool":  Boolean,
	"str":   String,
	"bytes": Bytes,
	"any":   AnyValue,
}

func (p Primitive) String() string {
	for name, kind := range primitives {
		if kind == p {
			return name
		}
	}
	return "primitive(?)"
}

// FieldType is the recursive tagged union over field type shapes.
type FieldType interface {
	fieldType()
	// TypeSpan is the source span of the type expression, for diagnostics.
	TypeSpan() Span
}

// PrimitiveType is one of the fixed primitive kinds.
type PrimitiveType struct {
	Span Span
	Kind Primitive
}

// NamedType names a scheme type, optionally module-qualified and optionally
// pinned to a major version. A nil Version means resolve-to-latest, which is
// deferred downstream.
type NamedType struct {
	Span    Span
	Module  string // "" when the type is named directly
	Name    string
	Version *MajorVersion
}

// OptionalType marks its element as optional ('?' prefix). Prefixes stack.
type OptionalType struct {
	Span Span
	Elem FieldType
}

// ReferenceType marks its element as a reference ('&' prefix).
type ReferenceType struct {
	Span Span
	Elem FieldType
}

// ArrayType is a fixed-size array: [T; N].
type ArrayType struct {
	Span Span
	Elem FieldType
	Size uint32
}

// ListType is a dynamically sized list: [T].
type ListType struct {
	Span Span
	Elem FieldType
}

// MapType is a key/value mapping: [K: V].
type MapType struct {
	Span  Span
	Key   FieldType
	Value FieldType
}

// TupleType is a fixed-arity heterogeneous tuple: (T, U, ...). Its items run
// through the same container grammar as tuple struct bodies, so they may
// carry @add tags and includes.
type TupleType struct {
	Span  Span
	Items []TupleItem
}

func (*PrimitiveType) fieldType() {}
func (*NamedType) fieldType()     {}
func (*OptionalType) fieldType()  {}
func (*ReferenceType) fieldType() {}
func (*ArrayType) fieldType()     {}
func (*ListType) fieldType()      {}
func (*MapType) fieldType()       {}
func (*TupleType) fieldType()     {}

func (t *PrimitiveType) TypeSpan() Span { return t.Span }
func (t *NamedType) TypeSpan() Span     { return t.Span }
func (t *OptionalType) TypeSpan() Span  { return t.Span }
func (t *ReferenceType) TypeSpan() Span { return t.Span }
func (t *ArrayType) TypeSpan() Span     { return t.Span }
func (t *ListType) TypeSpan() Span      { return t.Span }
func (t *MapType) TypeSpan() Span       { return t.Span }
func (t *TupleType) TypeSpan() Span     { return t.Span }

/* ---------- equality helpers ---------- */

func minorEqual(a, b *MinorVersion) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func majorPtrEqual(a, b *MajorVersion) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

func structItemsEqual(a, b []StructItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !structItemEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func structItemEqual(a, b StructItem) bool {
	switch at := a.(type) {
	case *StructField:
		bt, ok := b.(*StructField)
		return ok && at.Equal(bt)
	case *Include:
		bt, ok := b.(*Include)
		return ok && at.Equal(bt)
	}
	return false
}

func tupleItemsEqual(a, b []TupleItem) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !tupleItemEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

func tupleItemEqual(a, b TupleItem) bool {
	switch at := a.(type) {
	case *TupleField:
		bt, ok := b.(*TupleField)
		return ok && at.Equal(bt)
	case *Include:
		bt, ok := b.(*Include)
		return ok && at.Equal(bt)
	}
	return false
}

func unionItemEqual(a, b UnionItem) bool {
	switch at := a.(type) {
	case *UnionField:
		bt, ok := b.(*UnionField)
		return ok && at.Equal(bt)
	case *Include:
		bt, ok := b.(*Include)
		return ok && at.Equal(bt)
	}
	return false
}

func enumItemEqual(a, b EnumItem) bool {
	switch at := a.(type) {
	case *EnumField:
		bt, ok := b.(*EnumField)
		return ok && at.Equal(bt)
	case *Include:
		bt, ok := b.(*Include)
		return ok && at.Equal(bt)
	}
	return false
}

// fieldTypeEqual is structural equality over field types, ignoring spans.
func fieldTypeEqual(a, b FieldType) bool {
	switch at := a.(type) {
	case *PrimitiveType:
		bt, ok := b.(*PrimitiveType)
		return ok && at.Kind == bt.Kind
	case *NamedType:
		bt, ok := b.(*NamedType)
		return ok && at.Module == bt.Module && at.Name == bt.Name && majorPtrEqual(at.Version, bt.Version)
	case *OptionalType:
		bt, ok := b.(*OptionalType)
		return ok && fieldTypeEqual(at.Elem, bt.Elem)
	case *ReferenceType:
		bt, ok := b.(*ReferenceType)
		return ok && fieldTypeEqual(at.Elem, bt.Elem)
	case *ArrayType:
		bt, ok := b.(*ArrayType)
		return ok && at.Size == bt.Size && fieldTypeEqual(at.Elem, bt.Elem)
	case *ListType:
		bt, ok := b.(*ListType)
		return ok && fieldTypeEqual(at.Elem, bt.Elem)
	case *MapType:
		bt, ok := b.(*MapType)
		return ok && fieldTypeEqual(at.Key, bt.Key) && fieldTypeEqual(at.Value, bt.Value)
	case *TupleType:
		bt, ok := b.(*TupleType)
		return ok && tupleItemsEqual(at.Items, bt.Items)
	}
	return false
}

// FieldTypeEqual reports structural equality of two field types, ignoring
// source spans. Exported for downstream passes that compare resolved types.
func FieldTypeEqual(a, b FieldType) bool { return fieldTypeEqual(a, b) }
