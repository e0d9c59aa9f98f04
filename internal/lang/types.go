package lang

import (
	"slices"

	"github.com/google/uuid"
)

// ID identifies a node, type spec, function, or argument definition.
// uuid.Nil means "no id".
type ID = uuid.UUID

// NilID is the zero ID, used for "nothing selected" and absent references.
var NilID = uuid.Nil

// NewID returns a fresh, process-unique ID.
func NewID() ID {
	return uuid.New()
}

// builtinNamespace seeds deterministic IDs for builtin type specs and
// functions so that persisted documents keep resolving across runs.
var builtinNamespace = uuid.MustParse("6f1c2d0e-5a3b-4c8e-9d17-2b4f8a6e3c51")

// BuiltinID derives the stable ID of a builtin declaration from its name.
func BuiltinID(name string) ID {
	return uuid.NewSHA1(builtinNamespace, []byte("builtin:"+name))
}

// TypeKind classifies a TypeSpec.
type TypeKind int

const (
	KindNull TypeKind = iota
	KindString
	KindNumber
	KindBoolean
	KindList
	KindAny
	KindAnonFunc
	KindGeneric
	KindStruct
	KindEnum
)

var typeKindNames = map[TypeKind]string{
	KindNull:     "null",
	KindString:   "string",
	KindNumber:   "number",
	KindBoolean:  "boolean",
	KindList:     "list",
	KindAny:      "any",
	KindAnonFunc: "anon_func",
	KindGeneric:  "generic",
	KindStruct:   "struct",
	KindEnum:     "enum",
}

func (k TypeKind) String() string {
	if name, ok := typeKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// StructField is one declared field of a struct TypeSpec.
type StructField struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// EnumVariant is one declared variant of an enum TypeSpec. A nil Type means
// the variant carries no payload.
type EnumVariant struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Type *Type  `json:"type,omitempty"`
}

// TypeSpec declares a type constructor. Builtin specs have fixed IDs;
// structs and enums are user-defined.
type TypeSpec struct {
	ID        ID            `json:"id"`
	Name      string        `json:"name"`
	Symbol    string        `json:"symbol"`
	Kind      TypeKind      `json:"kind"`
	NumParams int           `json:"num_params"`
	Fields    []StructField `json:"fields,omitempty"`
	Variants  []EnumVariant `json:"variants,omitempty"`
}

// FindField returns the struct field with the given ID.
func (ts *TypeSpec) FindField(id ID) (StructField, bool) {
	for _, f := range ts.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return StructField{}, false
}

// FindVariant returns the enum variant with the given ID.
func (ts *TypeSpec) FindVariant(id ID) (EnumVariant, bool) {
	for _, v := range ts.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return EnumVariant{}, false
}

// Type is an applied type: a spec plus its type parameters.
type Type struct {
	SpecID ID     `json:"spec_id"`
	Params []Type `json:"params,omitempty"`
}

// NewType applies a spec to params.
func NewType(specID ID, params ...Type) Type {
	return Type{SpecID: specID, Params: params}
}

// Equal reports structural equality.
func (t Type) Equal(other Type) bool {
	if t.SpecID != other.SpecID || len(t.Params) != len(other.Params) {
		return false
	}
	for i := range t.Params {
		if !t.Params[i].Equal(other.Params[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (t Type) Clone() Type {
	out := Type{SpecID: t.SpecID}
	if len(t.Params) > 0 {
		out.Params = make([]Type, len(t.Params))
		for i, p := range t.Params {
			out.Params[i] = p.Clone()
		}
	}
	return out
}

// Contains reports whether specID appears anywhere in t.
func (t Type) Contains(specID ID) bool {
	if t.SpecID == specID {
		return true
	}
	return slices.ContainsFunc(t.Params, func(p Type) bool { return p.Contains(specID) })
}

// Builtin type spec IDs.
var (
	NullTypeID     = BuiltinID("Null")
	StringTypeID   = BuiltinID("String")
	NumberTypeID   = BuiltinID("Number")
	BooleanTypeID  = BuiltinID("Boolean")
	ListTypeID     = BuiltinID("List")
	AnyTypeID      = BuiltinID("Any")
	AnonFuncTypeID = BuiltinID("AnonFunc")
	GenericTID     = BuiltinID("T")
	GenericUID     = BuiltinID("U")
)

func NullType() Type    { return NewType(NullTypeID) }
func StringType() Type  { return NewType(StringTypeID) }
func NumberType() Type  { return NewType(NumberTypeID) }
func BooleanType() Type { return NewType(BooleanTypeID) }
func AnyType() Type     { return NewType(AnyTypeID) }

// ListOf returns List<elem>.
func ListOf(elem Type) Type { return NewType(ListTypeID, elem) }

// AnonFuncType returns the type of an anonymous function taking arg and
// returning ret.
func AnonFuncType(arg, ret Type) Type { return NewType(AnonFuncTypeID, arg, ret) }

// BuiltinTypeSpecs returns the type specs every catalog starts with.
func BuiltinTypeSpecs() []*TypeSpec {
	return []*TypeSpec{
		{ID: NullTypeID, Name: "Null", Symbol: "∅", Kind: KindNull},
		{ID: StringTypeID, Name: "String", Symbol: "✑", Kind: KindString},
		{ID: NumberTypeID, Name: "Number", Symbol: "#", Kind: KindNumber},
		{ID: BooleanTypeID, Name: "Boolean", Symbol: "?", Kind: KindBoolean},
		{ID: ListTypeID, Name: "List", Symbol: "[]", Kind: KindList, NumParams: 1},
		{ID: AnyTypeID, Name: "Any", Symbol: "*", Kind: KindAny},
		{ID: AnonFuncTypeID, Name: "Function", Symbol: "λ", Kind: KindAnonFunc, NumParams: 2},
		{ID: GenericTID, Name: "T", Symbol: "T", Kind: KindGeneric},
		{ID: GenericUID, Name: "U", Symbol: "U", Kind: KindGeneric},
	}
}

// ArgumentDefinition declares a parameter of a function or anonymous
// function.
type ArgumentDefinition struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	Type Type   `json:"type"`
}
