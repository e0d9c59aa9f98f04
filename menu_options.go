package sapling

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jward/sapling/internal/catalog"
	"github.com/jward/sapling/internal/lang"
)

func containsFold(name, lowerInput string) bool {
	return strings.Contains(strings.ToLower(name), lowerInput)
}

// variableGenerator offers references to locals of the target type. It only
// runs when filling a slot that has a type.
type variableGenerator struct{}

func (variableGenerator) options(params CodeSearchParams, g *Genie, cat Catalog) []InsertCodeMenuOption {
	if params.ReturnType == nil || params.WrapsType != nil {
		return nil
	}
	input := params.LowerInput()
	var out []InsertCodeMenuOption
	for v := range FindAllLocalsPrecedingWithResolvingGenerics(params.Position, g, cat) {
		if !containsFold(v.Name, input) || !catalog.Matches(cat, *params.ReturnType, v.Type) {
			continue
		}
		out = append(out, InsertCodeMenuOption{
			Label:       v.Name,
			Description: fmt.Sprintf("%s (%s)", catalog.Describe(cat, v.Type), v.Antecedent.Kind),
			Node:        lang.NewVariableReference(v.ID),
		})
	}
	return out
}

// functionGenerator offers calls to catalog functions. When wrapping, the
// wrapped node is moved into the first argument that accepts it.
type functionGenerator struct{}

func (functionGenerator) options(params CodeSearchParams, g *Genie, cat Catalog) []InsertCodeMenuOption {
	input := params.LowerInput()
	var out []InsertCodeMenuOption
	for _, fn := range cat.ListFunctions() {
		if !containsFold(fn.Name, input) {
			continue
		}
		if params.ReturnType != nil && !catalog.Matches(cat, *params.ReturnType, fn.Returns) {
			continue
		}
		call := lang.NewFunctionCallWithPlaceholderArgs(fn.ID, fn.Args)
		if params.WrapsType != nil {
			if !wrapInto(call, fn, params, g, cat) {
				continue
			}
		}
		out = append(out, InsertCodeMenuOption{
			Label:       fn.Name,
			Description: Signature(fn, cat),
			Node:        call,
		})
	}
	return out
}

func wrapInto(call *lang.FunctionCall, fn *Function, params CodeSearchParams, g *Genie, cat Catalog) bool {
	target, ok := g.FindNode(params.InsertionPoint.ID)
	if !ok {
		return false
	}
	for i, def := range fn.Args {
		if catalog.Matches(cat, def.Type, *params.WrapsType) {
			call.Args[i].Expr = target
			return true
		}
	}
	return false
}

// Signature renders fn like "Concat(first String, second String) String".
func Signature(fn *Function, cat Catalog) string {
	args := make([]string, len(fn.Args))
	for i, a := range fn.Args {
		args[i] = a.Name + " " + catalog.Describe(cat, a.Type)
	}
	return fmt.Sprintf("%s(%s) %s", fn.Name, strings.Join(args, ", "), catalog.Describe(cat, fn.Returns))
}

// literalGenerator offers literals of the target type and, always, a
// placeholder so the slot can be left open.
type literalGenerator struct{}

func (literalGenerator) options(params CodeSearchParams, g *Genie, cat Catalog) []InsertCodeMenuOption {
	if params.ReturnType == nil || params.WrapsType != nil {
		return nil
	}
	target := *params.ReturnType
	input := strings.TrimSpace(params.Input)
	fits := func(t Type) bool { return catalog.Matches(cat, target, t) }

	var out []InsertCodeMenuOption
	if fits(lang.StringType()) {
		out = append(out, InsertCodeMenuOption{
			Label:       strconv.Quote(params.Input),
			Description: "String",
			Node:        lang.NewStringLiteral(params.Input),
		})
	}
	if fits(lang.NumberType()) {
		if n, err := strconv.ParseInt(input, 10, 64); err == nil {
			out = append(out, InsertCodeMenuOption{Label: input, Description: "Number", Node: lang.NewNumberLiteral(n)})
		}
	}
	if fits(lang.NullType()) && containsFold("null", strings.ToLower(input)) {
		out = append(out, InsertCodeMenuOption{Label: "null", Description: "Null", Node: lang.NewNullLiteral()})
	}
	if spec, ok := cat.FindStruct(target.SpecID); ok {
		out = append(out, InsertCodeMenuOption{
			Label:       spec.Name,
			Description: "new " + spec.Name,
			Node:        lang.NewStructLiteralWithPlaceholders(spec),
		})
	}
	if target.SpecID == lang.ListTypeID && len(target.Params) == 1 {
		label := catalog.Describe(cat, target)
		out = append(out, InsertCodeMenuOption{
			Label:       label,
			Description: "new " + label,
			Node:        lang.NewListLiteral(target.Params[0].Clone()),
		})
	}
	if target.SpecID == lang.AnonFuncTypeID && len(target.Params) == 2 {
		arg := lang.ArgumentDefinition{ID: lang.NewID(), Name: "item", Type: target.Params[0].Clone()}
		out = append(out, InsertCodeMenuOption{
			Label:       "func",
			Description: catalog.Describe(cat, target),
			Node:        lang.NewAnonymousFunction(arg, target.Params[1].Clone()),
		})
	}

	description := input
	if description == "" {
		description = catalog.Describe(cat, target)
	}
	out = append(out, InsertCodeMenuOption{
		Label:       "Placeholder",
		Description: catalog.Describe(cat, target),
		Node:        lang.NewPlaceholder(description, target.Clone()),
	})
	return out
}

// statementGenerator offers new statements. It only runs where the
// inserted code becomes a statement of a block.
type statementGenerator struct{}

func (statementGenerator) options(params CodeSearchParams, g *Genie, cat Catalog) []InsertCodeMenuOption {
	if !params.InsertionPoint.IsBlockExpression() {
		return nil
	}
	input := params.LowerInput()
	var out []InsertCodeMenuOption

	if name, ok := assignmentName(params.Input); ok {
		out = append(out, InsertCodeMenuOption{
			Label:       name + " =",
			Description: "new variable",
			Node:        lang.NewAssignment(name, lang.NewPlaceholder(name, lang.AnyType())),
		})
	}
	if input != "" && strings.HasPrefix("if", input) {
		out = append(out, InsertCodeMenuOption{
			Label:       "if",
			Description: "conditional",
			Node:        lang.NewConditional(lang.NewPlaceholder("condition", lang.BooleanType())),
		})
	}
	if input != "" && strings.HasPrefix("match", input) {
		for v := range FindAllLocalsPreceding(params.Position, g, cat) {
			enum, ok := cat.FindEnum(v.Type.SpecID)
			if !ok {
				continue
			}
			out = append(out, InsertCodeMenuOption{
				Label:       "match " + v.Name,
				Description: catalog.Describe(cat, v.Type),
				Node:        lang.NewMatch(lang.NewVariableReference(v.ID), enum.Variants),
			})
		}
	}
	return out
}

// assignmentName reads "name =" input.
func assignmentName(input string) (string, bool) {
	name, rest, found := strings.Cut(input, "=")
	if !found || strings.TrimSpace(rest) != "" {
		return "", false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", false
	}
	for i, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return "", false
	}
	return name, true
}
