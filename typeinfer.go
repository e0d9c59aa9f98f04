package sapling

import (
	"fmt"

	"github.com/jward/sapling/internal/catalog"
	"github.com/jward/sapling/internal/lang"
)

// GuessTypeWithoutResolvingGenerics infers node's type structurally. Generic
// parameters in declared types are left as they are.
//
// A reference to something the tree or catalog no longer holds returns an
// error wrapping ErrFunctionNotFound or ErrDeclarationNotFound; callers
// should show the gap rather than abort.
func (g *Genie) GuessTypeWithoutResolvingGenerics(node CodeNode, cat Catalog) (Type, error) {
	switch n := node.(type) {
	case *lang.FunctionCall:
		fn, ok := cat.FindFunction(n.Reference.FunctionID)
		if !ok {
			return Type{}, fmt.Errorf("%w: %s", ErrFunctionNotFound, n.Reference.FunctionID)
		}
		return fn.Returns, nil
	case *lang.FunctionReference, *lang.ReassignListIndex, *lang.NullLiteral:
		return lang.NullType(), nil
	case *lang.Argument:
		t, ok := cat.GetTypeForArg(n.ArgumentDefinitionID)
		if !ok {
			return Type{}, fmt.Errorf("%w: argument definition %s", ErrDeclarationNotFound, n.ArgumentDefinitionID)
		}
		return t, nil
	case *lang.Assignment:
		return g.GuessTypeWithoutResolvingGenerics(n.Expr, cat)
	case *lang.Reassignment:
		return g.GuessTypeWithoutResolvingGenerics(n.Expr, cat)
	case *lang.Block:
		if len(n.Statements) == 0 {
			return lang.NullType(), nil
		}
		return g.GuessTypeWithoutResolvingGenerics(n.Statements[len(n.Statements)-1], cat)
	case *lang.VariableReference:
		return g.variableType(n.AssignmentID, cat)
	case *lang.Placeholder:
		return n.Type, nil
	case *lang.StringLiteral:
		return lang.StringType(), nil
	case *lang.NumberLiteral:
		return lang.NumberType(), nil
	case *lang.StructLiteral:
		return lang.NewType(n.StructID), nil
	case *lang.StructLiteralField:
		return g.structFieldType(n, cat)
	case *lang.ListLiteral:
		return lang.ListOf(n.ElementType), nil
	case *lang.ListIndex:
		listType, err := g.GuessTypeWithoutResolvingGenerics(n.List, cat)
		if err != nil {
			return Type{}, err
		}
		if listType.SpecID != lang.ListTypeID || len(listType.Params) != 1 {
			return lang.AnyType(), nil
		}
		return listType.Params[0], nil
	case *lang.Conditional:
		return g.GuessTypeWithoutResolvingGenerics(n.TrueBranch, cat)
	case *lang.Match:
		if len(n.Branches) == 0 {
			return lang.NullType(), nil
		}
		return g.GuessTypeWithoutResolvingGenerics(n.Branches[0].Block, cat)
	case *lang.AnonymousFunction:
		return lang.AnonFuncType(n.TakesArg.Type, n.Returns), nil
	}
	return Type{}, fmt.Errorf("%w: cannot type %T", ErrInvariantViolation, node)
}

// GuessType infers node's type and then substitutes whatever generic
// parameters the surrounding call sites pin down.
func (g *Genie) GuessType(node CodeNode, cat Catalog) (Type, error) {
	t, err := g.GuessTypeWithoutResolvingGenerics(node, cat)
	if err != nil {
		return Type{}, err
	}
	return g.TryToResolveAllGenerics(node, t, cat), nil
}

// variableType resolves the declaration a VariableReference points at:
// an assignment, an anonymous function argument, a match binding, or a
// parameter of the enclosing function.
func (g *Genie) variableType(declID ID, cat Catalog) (Type, error) {
	if a, ok := g.FindAssignment(declID); ok {
		return g.GuessTypeWithoutResolvingGenerics(a, cat)
	}
	if af, ok := g.findAnonFuncByArg(declID); ok {
		return af.TakesArg.Type, nil
	}
	if scope, ok := g.findMatchBinding(declID); ok {
		return g.matchBindingType(scope, cat)
	}
	if t, ok := cat.GetTypeForArg(declID); ok {
		return t, nil
	}
	return Type{}, fmt.Errorf("%w: variable %s", ErrDeclarationNotFound, declID)
}

func (g *Genie) matchBindingType(scope MatchScope, cat Catalog) (Type, error) {
	variant, err := g.matchVariant(scope, cat)
	if err != nil {
		return Type{}, err
	}
	if variant.Type == nil {
		return lang.NullType(), nil
	}
	return *variant.Type, nil
}

// matchVariant looks up the enum variant a match branch handles.
func (g *Genie) matchVariant(scope MatchScope, cat Catalog) (lang.EnumVariant, error) {
	matcheeType, err := g.GuessTypeWithoutResolvingGenerics(scope.Match.Matchee, cat)
	if err != nil {
		return lang.EnumVariant{}, err
	}
	enum, ok := cat.FindEnum(matcheeType.SpecID)
	if !ok {
		return lang.EnumVariant{}, fmt.Errorf("%w: enum %s", ErrDeclarationNotFound, matcheeType.SpecID)
	}
	variant, ok := enum.FindVariant(scope.Branch.VariantID)
	if !ok {
		return lang.EnumVariant{}, fmt.Errorf("%w: variant %s", ErrDeclarationNotFound, scope.Branch.VariantID)
	}
	return variant, nil
}

func (g *Genie) structFieldType(field *lang.StructLiteralField, cat Catalog) (Type, error) {
	parent, ok := g.FindParent(field.NodeID)
	if !ok {
		return Type{}, fmt.Errorf("%w: struct literal field %s has no parent", ErrNodeNotFound, field.NodeID)
	}
	lit, ok := parent.(*lang.StructLiteral)
	if !ok {
		return Type{}, fmt.Errorf("%w: struct literal field inside %s", ErrInvariantViolation, parent.Kind())
	}
	spec, ok := cat.FindStruct(lit.StructID)
	if !ok {
		return Type{}, fmt.Errorf("%w: %s", ErrStructNotFound, lit.StructID)
	}
	f, ok := spec.FindField(field.StructFieldID)
	if !ok {
		return Type{}, fmt.Errorf("%w: field %s of %s", ErrDeclarationNotFound, field.StructFieldID, spec.Name)
	}
	return f.Type, nil
}

// TryToResolveAllGenerics substitutes the generic parameters of unresolved
// using the argument types supplied at contextNode's call site. Parameters
// that no argument pins down are left in place.
func (g *Genie) TryToResolveAllGenerics(contextNode CodeNode, unresolved Type, cat Catalog) Type {
	if !catalog.ContainsGeneric(cat, unresolved) {
		return unresolved
	}
	call := g.callSiteFor(contextNode)
	if call == nil {
		return unresolved
	}
	bindings := g.bindCallGenerics(call, cat)
	return substitute(unresolved, bindings)
}

// callSiteFor finds the function call whose signature gives contextNode its
// generic parameters.
func (g *Genie) callSiteFor(node CodeNode) *lang.FunctionCall {
	switch n := node.(type) {
	case *lang.FunctionCall:
		return n
	case *lang.Assignment:
		return g.callSiteFor(n.Expr)
	case *lang.Reassignment:
		return g.callSiteFor(n.Expr)
	case *lang.Argument:
		if call, ok := g.parentCall(n.NodeID); ok {
			return call
		}
	case *lang.AnonymousFunction:
		if parent, ok := g.FindParent(n.NodeID); ok {
			if arg, ok := parent.(*lang.Argument); ok {
				return g.callSiteFor(arg)
			}
		}
	}
	return nil
}

func (g *Genie) parentCall(argID ID) (*lang.FunctionCall, bool) {
	parent, ok := g.FindParent(argID)
	if !ok {
		return nil, false
	}
	call, ok := parent.(*lang.FunctionCall)
	return call, ok
}

// bindCallGenerics unifies each declared argument type of call's function
// against the type of the expression actually passed. The first concrete
// binding of a parameter wins.
func (g *Genie) bindCallGenerics(call *lang.FunctionCall, cat Catalog) map[ID]Type {
	bindings := make(map[ID]Type)
	for _, arg := range call.Args {
		declared, ok := cat.GetTypeForArg(arg.ArgumentDefinitionID)
		if !ok {
			continue
		}
		var actual Type
		var err error
		if _, isAnon := arg.Expr.(*lang.AnonymousFunction); isAnon {
			// An anonymous function's own signature is what is being
			// resolved here; reading it back would only bind its
			// parameters to themselves.
			actual, err = g.GuessTypeWithoutResolvingGenerics(arg.Expr, cat)
		} else {
			actual, err = g.GuessType(arg.Expr, cat)
		}
		if err != nil {
			continue
		}
		unify(declared, actual, bindings, cat)
	}
	return bindings
}

func unify(declared, actual Type, bindings map[ID]Type, cat Catalog) {
	if catalog.IsGeneric(cat, declared.SpecID) {
		if _, bound := bindings[declared.SpecID]; bound {
			return
		}
		if catalog.ContainsGeneric(cat, actual) {
			return
		}
		bindings[declared.SpecID] = actual
		return
	}
	if declared.SpecID != actual.SpecID || len(declared.Params) != len(actual.Params) {
		return
	}
	for i := range declared.Params {
		unify(declared.Params[i], actual.Params[i], bindings, cat)
	}
}

func substitute(t Type, bindings map[ID]Type) Type {
	if bound, ok := bindings[t.SpecID]; ok && len(t.Params) == 0 {
		return bound.Clone()
	}
	out := Type{SpecID: t.SpecID}
	for _, p := range t.Params {
		out.Params = append(out.Params, substitute(p, bindings))
	}
	return out
}
