package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jward/sapling/internal/lang"
)

func TestNewRegistry_Builtins(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	fn, ok := r.FindFunction(CapitalizeID)
	require.True(t, ok)
	assert.Equal(t, "Capitalize", fn.Name)
	assert.Equal(t, BuiltinCapitalize, fn.Kind)
	assert.True(t, lang.StringType().Equal(fn.Returns))

	argType, ok := r.GetTypeForArg(fn.Args[0].ID)
	require.True(t, ok)
	assert.True(t, lang.StringType().Equal(argType))

	byName, ok := r.FindFunctionByName("print")
	require.True(t, ok)
	assert.Equal(t, PrintID, byName.ID)

	_, ok = r.FindEnum(OptionTypeID)
	assert.True(t, ok)
	_, ok = r.FindStruct(OptionTypeID)
	assert.False(t, ok)
}

func TestListFunctions_SortedByName(t *testing.T) {
	t.Parallel()
	r := NewRegistry()

	var names []string
	for _, fn := range r.ListFunctions() {
		names = append(names, fn.Name)
	}
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, "Map")
}

func TestRegisterFunction_UserDefined(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	body := lang.NewBlock()
	arg := lang.ArgumentDefinition{ID: lang.NewID(), Name: "who", Type: lang.StringType()}
	fn := &Function{ID: lang.NewID(), Name: "Greet", Kind: UserDefined, Args: []lang.ArgumentDefinition{arg}, Returns: lang.StringType(), CodeID: body.NodeID}

	require.NoError(t, r.RegisterFunction(fn))
	assert.Equal(t, []lang.ArgumentDefinition{arg}, r.CodeTakesArgs(body.NodeID))
	assert.Empty(t, r.CodeTakesArgs(lang.NewID()))

	// Re-registering drops the old argument definitions.
	renamed := *fn
	renamed.Args = nil
	require.NoError(t, r.RegisterFunction(&renamed))
	_, ok := r.GetTypeForArg(arg.ID)
	assert.False(t, ok)

	require.Error(t, r.RegisterFunction(&Function{Name: "NoID"}))
	require.Error(t, r.RegisterFunction(&Function{ID: lang.NewID()}))
}

func TestRemoveFunction(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	body := lang.NewBlock()
	fn := &Function{ID: lang.NewID(), Name: "Greet", Kind: UserDefined, Returns: lang.NullType(), CodeID: body.NodeID,
		Args: []lang.ArgumentDefinition{{ID: lang.NewID(), Name: "who", Type: lang.StringType()}}}
	require.NoError(t, r.RegisterFunction(fn))

	assert.True(t, r.RemoveFunction(fn.ID))
	_, ok := r.FindFunction(fn.ID)
	assert.False(t, ok)
	assert.Empty(t, r.CodeTakesArgs(body.NodeID))
	assert.False(t, r.RemoveFunction(fn.ID))

	assert.False(t, r.RemoveFunction(PrintID), "builtins stay registered")
	_, ok = r.FindFunction(PrintID)
	assert.True(t, ok)
}

func TestRegisterTypeSpec(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	point := &lang.TypeSpec{ID: lang.NewID(), Name: "Point", Kind: lang.KindStruct,
		Fields: []lang.StructField{{ID: lang.NewID(), Name: "x", Type: lang.NumberType()}}}

	require.NoError(t, r.RegisterTypeSpec(point))
	got, ok := r.FindStruct(point.ID)
	require.True(t, ok)
	assert.Equal(t, "Point", got.Name)

	err := r.RegisterTypeSpec(&lang.TypeSpec{ID: lang.NewID(), Name: "Str", Kind: lang.KindString})
	require.Error(t, err)
}

func TestMatches(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	tGen := lang.NewType(lang.GenericTID)

	tests := []struct {
		name      string
		target    lang.Type
		candidate lang.Type
		want      bool
	}{
		{"same", lang.StringType(), lang.StringType(), true},
		{"different", lang.StringType(), lang.NumberType(), false},
		{"any target", lang.AnyType(), lang.NumberType(), true},
		{"generic target", tGen, lang.NumberType(), true},
		{"generic candidate", lang.StringType(), tGen, true},
		{"list params", lang.ListOf(lang.StringType()), lang.ListOf(lang.StringType()), true},
		{"list param mismatch", lang.ListOf(lang.StringType()), lang.ListOf(lang.NumberType()), false},
		{"list of generic", lang.ListOf(lang.StringType()), lang.ListOf(tGen), true},
		{"list vs scalar", lang.ListOf(lang.StringType()), lang.StringType(), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Matches(r, tt.target, tt.candidate))
		})
	}
}

func TestDescribe(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	assert.Equal(t, "List<String>", Describe(r, lang.ListOf(lang.StringType())))
	assert.Equal(t, "Function<T, U>", Describe(r, lang.AnonFuncType(lang.NewType(lang.GenericTID), lang.NewType(lang.GenericUID))))
	assert.Equal(t, "?", Describe(r, lang.NewType(lang.NewID())))
	assert.True(t, ContainsGeneric(r, lang.ListOf(lang.NewType(lang.GenericUID))))
	assert.False(t, ContainsGeneric(r, lang.ListOf(lang.StringType())))
}

const goDeclSource = `package greet

import "strings"

// Shout upper-cases a message.
// It never fails.
func Shout(msg string) string {
	return strings.ToUpper(msg)
}

func Sum(a, b int) (int, error) {
	return a + b, nil
}

func Words(s string, seps ...string) []string { return nil }

func Check(bool) {}

func private(x int) int { return x }

func Pick[T any](v T) T { return v }

type Box struct{}

func (b *Box) Open() string { return "" }
`

func TestParseGoDeclarations(t *testing.T) {
	t.Parallel()

	fns, err := ParseGoDeclarations(context.Background(), "greet.go", []byte(goDeclSource))
	require.NoError(t, err)

	byName := make(map[string]*Function)
	for _, fn := range fns {
		byName[fn.Name] = fn
	}
	require.Len(t, byName, 4, "private, generic and method declarations are skipped")

	shout := byName["Shout"]
	require.NotNil(t, shout)
	assert.Equal(t, External, shout.Kind)
	assert.Equal(t, "Shout upper-cases a message. It never fails.", shout.Description)
	assert.Equal(t, "greet.go:7", shout.Source)
	require.Len(t, shout.Args, 1)
	assert.Equal(t, "msg", shout.Args[0].Name)
	assert.True(t, lang.StringType().Equal(shout.Returns))

	sum := byName["Sum"]
	require.Len(t, sum.Args, 2)
	assert.Equal(t, "a", sum.Args[0].Name)
	assert.Equal(t, "b", sum.Args[1].Name)
	assert.NotEqual(t, sum.Args[0].ID, sum.Args[1].ID)
	assert.True(t, lang.NumberType().Equal(sum.Returns), "error results are dropped")

	words := byName["Words"]
	require.Len(t, words.Args, 2)
	assert.True(t, lang.ListOf(lang.StringType()).Equal(words.Args[1].Type))
	assert.True(t, lang.ListOf(lang.StringType()).Equal(words.Returns))

	check := byName["Check"]
	require.Len(t, check.Args, 1)
	assert.Equal(t, "arg0", check.Args[0].Name)
	assert.True(t, lang.NullType().Equal(check.Returns))

	// Stable ids across imports.
	again, err := ParseGoDeclarations(context.Background(), "greet.go", []byte(goDeclSource))
	require.NoError(t, err)
	for _, fn := range again {
		assert.Equal(t, byName[fn.Name].ID, fn.ID)
	}
}
