package catalog

import "github.com/jward/sapling/internal/lang"

// OptionTypeID is the builtin Option<T> enum.
var OptionTypeID = lang.BuiltinID("Option")

// Builtin function IDs.
var (
	PrintID      = lang.BuiltinID("Print")
	CapitalizeID = lang.BuiltinID("Capitalize")
	ConcatID     = lang.BuiltinID("Concat")
	LengthID     = lang.BuiltinID("Length")
	IsEmptyID    = lang.BuiltinID("IsEmpty")
	IdentityID   = lang.BuiltinID("Identity")
	MapID        = lang.BuiltinID("Map")
)

var (
	optionSomeID = lang.BuiltinID("Option.Some")
	optionNoneID = lang.BuiltinID("Option.None")
)

func builtinEnums() []*lang.TypeSpec {
	t := lang.NewType(lang.GenericTID)
	return []*lang.TypeSpec{{
		ID:        OptionTypeID,
		Name:      "Option",
		Symbol:    "?",
		Kind:      lang.KindEnum,
		NumParams: 1,
		Variants: []lang.EnumVariant{
			{ID: optionSomeID, Name: "Some", Type: &t},
			{ID: optionNoneID, Name: "None"},
		},
	}}
}

// builtinArg derives a stable argument definition id from the function and
// parameter names.
func builtinArg(fn, name string, typ lang.Type) lang.ArgumentDefinition {
	return lang.ArgumentDefinition{ID: lang.BuiltinID(fn + "." + name), Name: name, Type: typ}
}

func builtinFunctions() []*Function {
	t := lang.NewType(lang.GenericTID)
	u := lang.NewType(lang.GenericUID)
	return []*Function{
		{
			ID: PrintID, Name: "Print", Kind: BuiltinPrint,
			Description: "Writes text to the console",
			Args:        []lang.ArgumentDefinition{builtinArg("Print", "text", lang.StringType())},
			Returns:     lang.NullType(),
		},
		{
			ID: CapitalizeID, Name: "Capitalize", Kind: BuiltinCapitalize,
			Description: "Upper-cases the first letter of text",
			Args:        []lang.ArgumentDefinition{builtinArg("Capitalize", "text", lang.StringType())},
			Returns:     lang.StringType(),
		},
		{
			ID: ConcatID, Name: "Concat", Kind: BuiltinConcat,
			Description: "Joins two strings",
			Args: []lang.ArgumentDefinition{
				builtinArg("Concat", "first", lang.StringType()),
				builtinArg("Concat", "second", lang.StringType()),
			},
			Returns: lang.StringType(),
		},
		{
			ID: LengthID, Name: "Length", Kind: BuiltinLength,
			Description: "Counts the elements of a list",
			Args:        []lang.ArgumentDefinition{builtinArg("Length", "list", lang.ListOf(t))},
			Returns:     lang.NumberType(),
		},
		{
			ID: IsEmptyID, Name: "IsEmpty", Kind: BuiltinIsEmpty,
			Description: "Reports whether text has no characters",
			Args:        []lang.ArgumentDefinition{builtinArg("IsEmpty", "text", lang.StringType())},
			Returns:     lang.BooleanType(),
		},
		{
			ID: IdentityID, Name: "Identity", Kind: BuiltinIdentity,
			Description: "Returns its argument",
			Args:        []lang.ArgumentDefinition{builtinArg("Identity", "value", t)},
			Returns:     t,
		},
		{
			ID: MapID, Name: "Map", Kind: BuiltinMap,
			Description: "Applies a function to every element of a list",
			Args: []lang.ArgumentDefinition{
				builtinArg("Map", "list", lang.ListOf(t)),
				builtinArg("Map", "fn", lang.AnonFuncType(t, u)),
			},
			Returns: lang.ListOf(u),
		},
	}
}
