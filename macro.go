package sapling

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jward/sapling/internal/catalog"
	"github.com/jward/sapling/internal/runtime"
)

// macroEditor lets a macro drive a Session.
type macroEditor struct {
	sess *Session
}

var _ runtime.Editor = (*macroEditor)(nil)

func newMacroEditor(sess *Session) *macroEditor {
	return &macroEditor{sess: sess}
}

func (m *macroEditor) Press(key string) error {
	k, err := ParseKeypress(key)
	if err != nil {
		return err
	}
	return m.sess.HandleKeypress(k)
}

func (m *macroEditor) Select(ref string) error {
	id, err := ResolveNodeRef(m.sess.Genie(), m.sess.Catalog(), ref)
	if err != nil {
		return err
	}
	return m.sess.SelectNode(id)
}

func (m *macroEditor) Selected() string {
	if id := m.sess.SelectedNodeID(); id != NilID {
		return id.String()
	}
	return ""
}

func (m *macroEditor) Search(text string) error { return m.sess.SetSearch(text) }
func (m *macroEditor) Confirm() error           { return m.sess.ConfirmMenu() }
func (m *macroEditor) EditLeaf(text string) error {
	return m.sess.UpdateEditedLeaf(text)
}
func (m *macroEditor) Undo() bool { return m.sess.Undo() }
func (m *macroEditor) Redo() bool { return m.sess.Redo() }
func (m *macroEditor) Cancel()    { m.sess.Cancel() }

func (m *macroEditor) Options() []runtime.MenuOption {
	opts, selected := m.sess.MenuOptions()
	out := make([]runtime.MenuOption, len(opts))
	for i, o := range opts {
		out[i] = runtime.MenuOption{Label: o.Label, Description: o.Description, Selected: i == selected}
	}
	return out
}

func (m *macroEditor) Outline() string {
	var b strings.Builder
	if err := WriteOutline(&b, m.sess.Genie(), m.sess.Catalog(), m.sess.SelectedNodeID()); err != nil {
		return ""
	}
	return b.String()
}

func (m *macroEditor) Find(label string) []string {
	var ids []string
	for _, id := range FindByLabel(m.sess.Genie(), m.sess.Catalog(), label) {
		ids = append(ids, id.String())
	}
	return ids
}

func (m *macroEditor) Locals() []runtime.Local {
	g, cat := m.sess.Genie(), m.sess.Catalog()
	pos := SearchPosition{BeforeCodeID: m.sess.SelectedNodeID()}
	if ip, ok := m.sess.InsertionPoint(); ok {
		pos = SearchPositionFor(ip)
	}
	if pos.BeforeCodeID == NilID {
		pos.BeforeCodeID = g.Root().ID()
	}
	var out []runtime.Local
	for v := range FindAllLocalsPrecedingWithResolvingGenerics(pos, g, cat) {
		out = append(out, runtime.Local{
			Name: v.Name,
			Type: catalog.Describe(cat, v.Type),
			Kind: v.Antecedent.Kind.String(),
		})
	}
	return out
}

// FindByLabel returns the nodes whose NodeLabel is label, in tree order.
func FindByLabel(g *Genie, cat Catalog, label string) []ID {
	var ids []ID
	for _, n := range g.AllNodes() {
		if NodeLabel(n, g, cat) == label {
			ids = append(ids, n.ID())
		}
	}
	return ids
}

// ResolveNodeRef turns a full id, a unique id prefix, or a node label into
// a node id. A label must name exactly one node.
func ResolveNodeRef(g *Genie, cat Catalog, ref string) (ID, error) {
	if id, err := uuid.Parse(ref); err == nil {
		if _, ok := g.FindNode(id); ok {
			return id, nil
		}
		return NilID, fmt.Errorf("node %s: %w", ref, ErrNodeNotFound)
	}

	var byPrefix []ID
	if ref != "" {
		for _, n := range g.AllNodes() {
			if strings.HasPrefix(n.ID().String(), strings.ToLower(ref)) {
				byPrefix = append(byPrefix, n.ID())
			}
		}
	}
	if len(byPrefix) == 1 {
		return byPrefix[0], nil
	}

	byLabel := FindByLabel(g, cat, ref)
	switch {
	case len(byLabel) == 1:
		return byLabel[0], nil
	case len(byLabel) > 1:
		return NilID, fmt.Errorf("node %q: %d nodes have this label", ref, len(byLabel))
	case len(byPrefix) > 1:
		return NilID, fmt.Errorf("node %q: ambiguous id prefix", ref)
	}
	return NilID, fmt.Errorf("node %q: %w", ref, ErrNodeNotFound)
}
