package sapling

import (
	"iter"

	"github.com/jward/sapling/internal/lang"
)

// AntecedentKind records how a variable came into scope.
type AntecedentKind int

const (
	AntecedentAssignment AntecedentKind = iota
	AntecedentAnonFuncArgument
	AntecedentArgument
	AntecedentMatchVariant
)

func (k AntecedentKind) String() string {
	switch k {
	case AntecedentAssignment:
		return "assignment"
	case AntecedentAnonFuncArgument:
		return "anon_func_argument"
	case AntecedentArgument:
		return "argument"
	case AntecedentMatchVariant:
		return "match_variant"
	}
	return "unknown"
}

// Antecedent is the declaration that introduced a Variable. Only the ids
// relevant to Kind are set.
type Antecedent struct {
	Kind AntecedentKind
	// AssignmentID is set for AntecedentAssignment.
	AssignmentID ID
	// AnonFuncID is set for AntecedentAnonFuncArgument.
	AnonFuncID ID
	// MatchID and VariantID are set for AntecedentMatchVariant.
	MatchID   ID
	VariantID ID
}

// Variable is a name visible at some point of the tree. ID is what a
// VariableReference to it holds.
type Variable struct {
	ID         ID
	Name       string
	Type       Type
	Antecedent Antecedent
}

// SearchPosition is the point a locals search looks back from.
type SearchPosition struct {
	BeforeCodeID ID
	Inclusive    bool
}

// SearchPositionFor converts an insertion point to the position whose
// preceding declarations are in scope for the inserted code.
func SearchPositionFor(ip InsertionPoint) SearchPosition {
	switch ip.Kind {
	case InsertAfter:
		return SearchPosition{BeforeCodeID: ip.ID, Inclusive: true}
	default:
		return SearchPosition{BeforeCodeID: ip.ID}
	}
}

// FindAllLocalsPreceding yields every variable in scope at pos: earlier
// assignments, parameters of the function being edited, bindings of the
// match branches around pos and the arguments of enclosing anonymous
// functions. Types are not generic-resolved. The sequence is lazy; each
// source is only computed once iteration reaches it.
func FindAllLocalsPreceding(pos SearchPosition, g *Genie, cat Catalog) iter.Seq[Variable] {
	return func(yield func(Variable) bool) {
		for _, a := range g.FindAssignmentsThatComeBeforeCode(pos.BeforeCodeID, pos.Inclusive) {
			t, err := g.GuessTypeWithoutResolvingGenerics(a, cat)
			if err != nil {
				t = lang.NullType()
			}
			v := Variable{
				ID:         a.NodeID,
				Name:       a.Name,
				Type:       t,
				Antecedent: Antecedent{Kind: AntecedentAssignment, AssignmentID: a.NodeID},
			}
			if !yield(v) {
				return
			}
		}

		for _, arg := range cat.CodeTakesArgs(g.Root().ID()) {
			v := Variable{ID: arg.ID, Name: arg.Name, Type: arg.Type, Antecedent: Antecedent{Kind: AntecedentArgument}}
			if !yield(v) {
				return
			}
		}

		for _, scope := range g.FindMatchBindingsFor(pos.BeforeCodeID) {
			v, ok := matchVariable(g, scope, cat)
			if !ok {
				continue
			}
			if !yield(v) {
				return
			}
		}

		for _, af := range g.FindAnonFuncParents(pos.BeforeCodeID) {
			v := Variable{
				ID:         af.TakesArg.ID,
				Name:       af.TakesArg.Name,
				Type:       af.TakesArg.Type,
				Antecedent: Antecedent{Kind: AntecedentAnonFuncArgument, AnonFuncID: af.NodeID},
			}
			if !yield(v) {
				return
			}
		}
	}
}

func matchVariable(g *Genie, scope MatchScope, cat Catalog) (Variable, bool) {
	variant, err := g.matchVariant(scope, cat)
	if err != nil {
		return Variable{}, false
	}
	t := lang.NullType()
	if variant.Type != nil {
		t = *variant.Type
	}
	return Variable{
		ID:   lang.MatchVariantBindingID(scope.Match.NodeID, scope.Branch.VariantID),
		Name: variant.Name,
		Type: t,
		Antecedent: Antecedent{
			Kind:      AntecedentMatchVariant,
			MatchID:   scope.Match.NodeID,
			VariantID: scope.Branch.VariantID,
		},
	}, true
}

// FindAllLocalsPrecedingWithResolvingGenerics is FindAllLocalsPreceding
// with every type passed through ResolveGenerics.
func FindAllLocalsPrecedingWithResolvingGenerics(pos SearchPosition, g *Genie, cat Catalog) iter.Seq[Variable] {
	return func(yield func(Variable) bool) {
		for v := range FindAllLocalsPreceding(pos, g, cat) {
			v.Type = ResolveGenerics(v, g, cat)
			if !yield(v) {
				return
			}
		}
	}
}

// ResolveGenerics returns v's type with generic parameters substituted where
// the surrounding call sites allow. Function parameters and match bindings
// are returned as declared.
func ResolveGenerics(v Variable, g *Genie, cat Catalog) Type {
	switch v.Antecedent.Kind {
	case AntecedentAssignment:
		node, ok := g.FindNode(v.Antecedent.AssignmentID)
		if !ok {
			return v.Type
		}
		return g.TryToResolveAllGenerics(node, v.Type, cat)
	case AntecedentAnonFuncArgument:
		node, ok := g.FindNode(v.Antecedent.AnonFuncID)
		if !ok {
			return v.Type
		}
		full, err := g.GuessTypeWithoutResolvingGenerics(node, cat)
		if err != nil {
			return v.Type
		}
		resolved := g.TryToResolveAllGenerics(node, full, cat)
		if resolved.SpecID != lang.AnonFuncTypeID || len(resolved.Params) == 0 {
			return v.Type
		}
		return resolved.Params[0]
	}
	return v.Type
}
