package sapling

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jward/sapling/internal/catalog"
	"github.com/jward/sapling/internal/lang"
)

// OutlineEntry is one node of a rendered outline.
type OutlineEntry struct {
	ID       ID     `json:"id"`
	Kind     string `json:"kind"`
	Depth    int    `json:"depth"`
	Label    string `json:"label"`
	Type     string `json:"type,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

// Outline flattens the tree into pre-order entries. Types that cannot be
// inferred are shown as "?".
func Outline(g *Genie, cat Catalog, selected ID) []OutlineEntry {
	var out []OutlineEntry
	var visit func(n CodeNode, depth int)
	visit = func(n CodeNode, depth int) {
		entry := OutlineEntry{
			ID:       n.ID(),
			Kind:     string(n.Kind()),
			Depth:    depth,
			Label:    NodeLabel(n, g, cat),
			Selected: n.ID() == selected,
		}
		if t, err := g.GuessType(n, cat); err == nil {
			entry.Type = catalog.Describe(cat, t)
		} else {
			entry.Type = "?"
		}
		out = append(out, entry)
		for _, c := range n.Children() {
			visit(c, depth+1)
		}
	}
	visit(g.Root(), 0)
	return out
}

// WriteOutline renders Outline as indented text, one node per line.
func WriteOutline(w io.Writer, g *Genie, cat Catalog, selected ID) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, e := range Outline(g, cat, selected) {
		marker := "  "
		if e.Selected {
			marker = "> "
		}
		fmt.Fprintf(tw, "%s%s%s\t%s\t%s\n", marker, strings.Repeat("  ", e.Depth), e.Label, e.Type, shortID(e.ID))
	}
	return tw.Flush()
}

func shortID(id ID) string {
	return id.String()[:8]
}

// NodeLabel is a one-line description of n alone, without its children.
func NodeLabel(n CodeNode, g *Genie, cat Catalog) string {
	switch v := n.(type) {
	case *lang.FunctionCall:
		return functionName(v.Reference.FunctionID, cat) + "()"
	case *lang.FunctionReference:
		return functionName(v.FunctionID, cat)
	case *lang.Argument:
		if a, ok := findArgument(cat, v.ArgumentDefinitionID); ok {
			return a.Name + ":"
		}
		return "<missing argument>:"
	case *lang.Assignment:
		return v.Name + " ="
	case *lang.Reassignment:
		return variableName(g, cat, v.AssignmentID) + " ="
	case *lang.ReassignListIndex:
		return variableName(g, cat, v.AssignmentID) + "[] ="
	case *lang.Block:
		return "block"
	case *lang.VariableReference:
		return variableName(g, cat, v.AssignmentID)
	case *lang.Placeholder:
		return "<" + v.Description + ">"
	case *lang.StringLiteral:
		return strconv.Quote(v.Value)
	case *lang.NumberLiteral:
		return strconv.FormatInt(v.Value, 10)
	case *lang.NullLiteral:
		return "null"
	case *lang.StructLiteral:
		if spec, ok := cat.FindStruct(v.StructID); ok {
			return spec.Name + "{}"
		}
		return "<missing struct>{}"
	case *lang.StructLiteralField:
		if t, ok := g.FindParent(v.NodeID); ok {
			if lit, ok := t.(*lang.StructLiteral); ok {
				if spec, ok := cat.FindStruct(lit.StructID); ok {
					if f, ok := spec.FindField(v.StructFieldID); ok {
						return f.Name + ":"
					}
				}
			}
		}
		return "<missing field>:"
	case *lang.ListLiteral:
		return "[]"
	case *lang.ListIndex:
		return "index"
	case *lang.Conditional:
		return "if"
	case *lang.Match:
		return "match"
	case *lang.AnonymousFunction:
		return "func(" + v.TakesArg.Name + ")"
	}
	return string(n.Kind())
}

func functionName(id ID, cat Catalog) string {
	if fn, ok := cat.FindFunction(id); ok {
		return fn.Name
	}
	return "<missing function>"
}

func findArgument(cat Catalog, argDefID ID) (ArgumentDefinition, bool) {
	for _, fn := range cat.ListFunctions() {
		for _, a := range fn.Args {
			if a.ID == argDefID {
				return a, true
			}
		}
	}
	return ArgumentDefinition{}, false
}

// variableName names the declaration id refers to, searching the same
// places type inference does.
func variableName(g *Genie, cat Catalog, id ID) string {
	if a, ok := g.FindAssignment(id); ok {
		return a.Name
	}
	if af, ok := g.findAnonFuncByArg(id); ok {
		return af.TakesArg.Name
	}
	if scope, ok := g.findMatchBinding(id); ok {
		if variant, err := g.matchVariant(scope, cat); err == nil {
			return variant.Name
		}
	}
	if a, ok := findArgument(cat, id); ok {
		return a.Name
	}
	return "<missing variable>"
}
