// Package catalog holds the type and function declarations that edited code
// refers to by id: builtin functions, user-defined functions, functions
// imported from external Go declarations, and struct/enum type specs.
package catalog

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/jward/sapling/internal/lang"
)

// FunctionKind distinguishes builtin functions from user-defined and
// imported ones. Builtins each get their own kind so callers can switch on
// them without any downcasting.
type FunctionKind int

const (
	BuiltinPrint FunctionKind = iota
	BuiltinCapitalize
	BuiltinConcat
	BuiltinLength
	BuiltinIsEmpty
	BuiltinIdentity
	BuiltinMap
	UserDefined
	External
)

func (k FunctionKind) String() string {
	switch k {
	case UserDefined:
		return "user"
	case External:
		return "external"
	}
	return "builtin"
}

// Function describes something a FunctionCall can invoke.
type Function struct {
	ID          lang.ID
	Name        string
	Kind        FunctionKind
	Description string
	Args        []lang.ArgumentDefinition
	Returns     lang.Type

	// CodeID is the root block of a user-defined function's body.
	CodeID lang.ID
	// Source is the declaration an External function was imported from.
	Source string
}

// Catalog is the read-only view of declarations the editing core needs.
type Catalog interface {
	FindFunction(id lang.ID) (*Function, bool)
	ListFunctions() []*Function
	FindTypeSpec(id lang.ID) (*lang.TypeSpec, bool)
	FindStruct(id lang.ID) (*lang.TypeSpec, bool)
	FindEnum(id lang.ID) (*lang.TypeSpec, bool)
	ListTypeSpecs() []*lang.TypeSpec
	// GetTypeForArg returns the declared type of an argument definition.
	GetTypeForArg(argDefID lang.ID) (lang.Type, bool)
	// CodeTakesArgs returns the parameters of the function whose body is
	// the block codeID. Scripts take none.
	CodeTakesArgs(codeID lang.ID) []lang.ArgumentDefinition
}

// Registry is the in-memory Catalog. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	functions map[lang.ID]*Function
	typeSpecs map[lang.ID]*lang.TypeSpec
	args      map[lang.ID]lang.ArgumentDefinition
	byCode    map[lang.ID]*Function
}

// Compile-time check: *Registry satisfies Catalog.
var _ Catalog = (*Registry)(nil)

// NewRegistry returns a registry holding the builtin type specs and
// functions.
func NewRegistry() *Registry {
	r := &Registry{
		functions: make(map[lang.ID]*Function),
		typeSpecs: make(map[lang.ID]*lang.TypeSpec),
		args:      make(map[lang.ID]lang.ArgumentDefinition),
		byCode:    make(map[lang.ID]*Function),
	}
	for _, ts := range lang.BuiltinTypeSpecs() {
		r.typeSpecs[ts.ID] = ts
	}
	for _, ts := range builtinEnums() {
		r.typeSpecs[ts.ID] = ts
	}
	for _, fn := range builtinFunctions() {
		r.register(fn)
	}
	return r
}

// RegisterFunction adds or replaces a function.
func (r *Registry) RegisterFunction(fn *Function) error {
	if fn.ID == lang.NilID {
		return fmt.Errorf("register function %q: missing id", fn.Name)
	}
	if fn.Name == "" {
		return fmt.Errorf("register function %s: missing name", fn.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.functions[fn.ID]; ok {
		r.unregister(old)
	}
	r.register(fn)
	return nil
}

// RegisterTypeSpec adds or replaces a struct or enum type spec.
func (r *Registry) RegisterTypeSpec(ts *lang.TypeSpec) error {
	if ts.Kind != lang.KindStruct && ts.Kind != lang.KindEnum {
		return fmt.Errorf("register type %q: only struct and enum types can be declared, got %s", ts.Name, ts.Kind)
	}
	if ts.ID == lang.NilID {
		return fmt.Errorf("register type %q: missing id", ts.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.typeSpecs[ts.ID] = ts
	return nil
}

// RemoveFunction drops a function. Builtins cannot be removed.
func (r *Registry) RemoveFunction(id lang.ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn, ok := r.functions[id]
	if !ok || fn.Kind < UserDefined {
		return false
	}
	r.unregister(fn)
	return true
}

func (r *Registry) register(fn *Function) {
	r.functions[fn.ID] = fn
	for _, a := range fn.Args {
		r.args[a.ID] = a
	}
	if fn.CodeID != lang.NilID {
		r.byCode[fn.CodeID] = fn
	}
}

func (r *Registry) unregister(fn *Function) {
	delete(r.functions, fn.ID)
	for _, a := range fn.Args {
		delete(r.args, a.ID)
	}
	if fn.CodeID != lang.NilID {
		delete(r.byCode, fn.CodeID)
	}
}

func (r *Registry) FindFunction(id lang.ID) (*Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.functions[id]
	return fn, ok
}

// FindFunctionByName does a case-insensitive lookup by name.
func (r *Registry) FindFunctionByName(name string) (*Function, bool) {
	for _, fn := range r.ListFunctions() {
		if strings.EqualFold(fn.Name, name) {
			return fn, true
		}
	}
	return nil, false
}

// ListFunctions returns every function ordered by name.
func (r *Registry) ListFunctions() []*Function {
	r.mu.RLock()
	out := make([]*Function, 0, len(r.functions))
	for _, fn := range r.functions {
		out = append(out, fn)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Function) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID.String(), b.ID.String())
	})
	return out
}

func (r *Registry) FindTypeSpec(id lang.ID) (*lang.TypeSpec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ts, ok := r.typeSpecs[id]
	return ts, ok
}

func (r *Registry) FindStruct(id lang.ID) (*lang.TypeSpec, bool) {
	ts, ok := r.FindTypeSpec(id)
	if !ok || ts.Kind != lang.KindStruct {
		return nil, false
	}
	return ts, true
}

func (r *Registry) FindEnum(id lang.ID) (*lang.TypeSpec, bool) {
	ts, ok := r.FindTypeSpec(id)
	if !ok || ts.Kind != lang.KindEnum {
		return nil, false
	}
	return ts, true
}

// ListTypeSpecs returns every type spec ordered by name.
func (r *Registry) ListTypeSpecs() []*lang.TypeSpec {
	r.mu.RLock()
	out := make([]*lang.TypeSpec, 0, len(r.typeSpecs))
	for _, ts := range r.typeSpecs {
		out = append(out, ts)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b *lang.TypeSpec) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func (r *Registry) GetTypeForArg(argDefID lang.ID) (lang.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.args[argDefID]
	return a.Type, ok
}

// FindArgument returns the full argument definition.
func (r *Registry) FindArgument(argDefID lang.ID) (lang.ArgumentDefinition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.args[argDefID]
	return a, ok
}

func (r *Registry) CodeTakesArgs(codeID lang.ID) []lang.ArgumentDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if fn, ok := r.byCode[codeID]; ok {
		return fn.Args
	}
	return nil
}

// IsGeneric reports whether specID names a generic type parameter.
func IsGeneric(cat Catalog, specID lang.ID) bool {
	ts, ok := cat.FindTypeSpec(specID)
	return ok && ts.Kind == lang.KindGeneric
}

// ContainsGeneric reports whether any part of t is a generic parameter.
func ContainsGeneric(cat Catalog, t lang.Type) bool {
	if IsGeneric(cat, t.SpecID) {
		return true
	}
	return slices.ContainsFunc(t.Params, func(p lang.Type) bool { return ContainsGeneric(cat, p) })
}

// Matches reports whether a value of type candidate can fill a slot of type
// target. Any and unresolved generics on either side match everything.
func Matches(cat Catalog, target, candidate lang.Type) bool {
	if target.SpecID == lang.AnyTypeID || IsGeneric(cat, target.SpecID) || IsGeneric(cat, candidate.SpecID) {
		return true
	}
	if target.SpecID != candidate.SpecID || len(target.Params) != len(candidate.Params) {
		return false
	}
	for i := range target.Params {
		if !Matches(cat, target.Params[i], candidate.Params[i]) {
			return false
		}
	}
	return true
}

// Describe renders a type for display, e.g. "List<String>".
func Describe(cat Catalog, t lang.Type) string {
	name := "?"
	if ts, ok := cat.FindTypeSpec(t.SpecID); ok {
		name = ts.Name
	}
	if len(t.Params) == 0 {
		return name
	}
	params := make([]string, len(t.Params))
	for i, p := range t.Params {
		params[i] = Describe(cat, p)
	}
	return name + "<" + strings.Join(params, ", ") + ">"
}
