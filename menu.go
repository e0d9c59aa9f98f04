package sapling

import (
	"slices"
	"strings"

	"github.com/jward/sapling/internal/lang"
)

// InsertCodeMenuOption is one candidate the menu offers. Node is freshly
// built for every listing and is inserted as is.
type InsertCodeMenuOption struct {
	Label       string
	Description string
	Node        CodeNode
}

// CodeSearchParams is what the option generators filter on.
type CodeSearchParams struct {
	// ReturnType is the type the inserted code must have, nil when any
	// statement will do.
	ReturnType *Type
	// WrapsType is set when wrapping: the inserted code must accept a value
	// of this type.
	WrapsType      *Type
	Input          string
	InsertionPoint InsertionPoint
	Position       SearchPosition
}

// LowerInput is the search text for case-insensitive matching.
func (p CodeSearchParams) LowerInput() string {
	return strings.ToLower(strings.TrimSpace(p.Input))
}

// optionGenerator produces candidates for one family of code.
type optionGenerator interface {
	options(params CodeSearchParams, g *Genie, cat Catalog) []InsertCodeMenuOption
}

// InsertCodeMenu is the completion menu shown while an insertion point is
// being edited.
type InsertCodeMenu struct {
	insertionPoint InsertionPoint
	search         string
	selectedIndex  int
	generators     []optionGenerator
}

// NewInsertCodeMenu returns the menu for ip, or nil for an in-place leaf
// edit, which has no menu.
func NewInsertCodeMenu(ip InsertionPoint) *InsertCodeMenu {
	if ip.Kind == InsertEditing {
		return nil
	}
	return &InsertCodeMenu{
		insertionPoint: ip,
		generators: []optionGenerator{
			variableGenerator{},
			functionGenerator{},
			literalGenerator{},
			statementGenerator{},
		},
	}
}

func (m *InsertCodeMenu) InsertionPoint() InsertionPoint { return m.insertionPoint }
func (m *InsertCodeMenu) Search() string                 { return m.search }
func (m *InsertCodeMenu) SelectedIndex() int             { return m.selectedIndex }

// SetSearch replaces the search text and moves the selection to the top.
func (m *InsertCodeMenu) SetSearch(input string) {
	m.search = input
	m.selectedIndex = 0
}

func (m *InsertCodeMenu) SelectNext() { m.selectedIndex++ }
func (m *InsertCodeMenu) SelectPrev() { m.selectedIndex-- }

// SearchParams works out what the code inserted at the menu's insertion
// point has to look like.
func (m *InsertCodeMenu) SearchParams(g *Genie, cat Catalog) CodeSearchParams {
	ip := m.insertionPoint
	params := CodeSearchParams{
		Input:          m.search,
		InsertionPoint: ip,
		Position:       SearchPositionFor(ip),
	}
	switch ip.Kind {
	case InsertArgument, InsertStructLiteralField, InsertListLiteralElement:
		params.ReturnType = holeType(ip.ID, g, cat)
	case InsertReplace:
		params.ReturnType = replacementType(ip.ID, g, cat)
	case InsertWrap:
		params.ReturnType = replacementType(ip.ID, g, cat)
		if target, ok := g.FindNode(ip.ID); ok {
			if t, err := g.GuessType(target, cat); err == nil {
				params.WrapsType = &t
			}
		}
	}
	return params
}

// holeType is the type of the value that belongs in a hole or list.
func holeType(id ID, g *Genie, cat Catalog) *Type {
	n, ok := g.FindNode(id)
	if !ok {
		return nil
	}
	switch h := n.(type) {
	case *lang.Argument:
		declared, ok := cat.GetTypeForArg(h.ArgumentDefinitionID)
		if !ok {
			return nil
		}
		t := g.TryToResolveAllGenerics(h, declared, cat)
		return &t
	case *lang.StructLiteralField:
		t, err := g.GuessType(h, cat)
		if err != nil {
			return nil
		}
		return &t
	case *lang.ListLiteral:
		t := h.ElementType.Clone()
		return &t
	}
	return nil
}

// replacementType is the type whatever replaces id must have, judged by
// where id sits.
func replacementType(id ID, g *Genie, cat Catalog) *Type {
	parent, ok := g.FindParent(id)
	if !ok {
		return nil
	}
	switch parent.(type) {
	case *lang.Argument, *lang.StructLiteralField, *lang.ListLiteral:
		return holeType(parent.ID(), g, cat)
	case *lang.Assignment, *lang.Reassignment:
		t := lang.AnyType()
		return &t
	}
	return nil
}

// ListOptions returns every candidate for the current search, best match
// first.
func (m *InsertCodeMenu) ListOptions(g *Genie, cat Catalog) []InsertCodeMenuOption {
	params := m.SearchParams(g, cat)
	var all []InsertCodeMenuOption
	for _, gen := range m.generators {
		all = append(all, gen.options(params, g, cat)...)
	}
	input := params.LowerInput()
	slices.SortStableFunc(all, func(a, b InsertCodeMenuOption) int {
		return matchRank(a.Label, input) - matchRank(b.Label, input)
	})
	return all
}

// matchRank orders labels: exact match, then prefix, then anything else.
func matchRank(label, input string) int {
	l := strings.ToLower(label)
	switch {
	case input == "":
		return 0
	case l == input:
		return 0
	case strings.HasPrefix(l, input):
		return 1
	case strings.Contains(l, input):
		return 2
	}
	return 3
}

// SelectedOption returns the highlighted option. The index wraps around the
// option count in both directions.
func (m *InsertCodeMenu) SelectedOption(g *Genie, cat Catalog) (InsertCodeMenuOption, bool) {
	opts := m.ListOptions(g, cat)
	if len(opts) == 0 {
		return InsertCodeMenuOption{}, false
	}
	return opts[wrapIndex(m.selectedIndex, len(opts))], true
}

// SelectedPosition is the index SelectedOption would pick from a listing
// of n options.
func (m *InsertCodeMenu) SelectedPosition(n int) int {
	if n == 0 {
		return -1
	}
	return wrapIndex(m.selectedIndex, n)
}

func wrapIndex(i, n int) int {
	return ((i % n) + n) % n
}
