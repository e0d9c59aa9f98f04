package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/risor-io/risor/object"
)

// Editor is the editing surface a macro drives. Node references are full
// ids, unique id prefixes, or node labels as shown in the outline.
type Editor interface {
	// Press runs one key, written as ParseKeypress accepts it.
	Press(key string) error
	Select(ref string) error
	// Selected returns the selected node id, or "" when nothing is selected.
	Selected() string
	Search(text string) error
	Options() []MenuOption
	Confirm() error
	// EditLeaf replaces the text of the leaf being edited in place.
	EditLeaf(text string) error
	Undo() bool
	Redo() bool
	Cancel()
	Outline() string
	// Find returns the ids of nodes whose label equals label, in tree order.
	Find(label string) []string
	// Locals lists the variables visible at the selection.
	Locals() []Local
}

// MenuOption is one insert-menu entry as a macro sees it.
type MenuOption struct {
	Label       string
	Description string
	Selected    bool
}

// Local is one variable visible at the selection.
type Local struct {
	Name string
	Type string
	Kind string
}

// editorGlobals exposes ed to scripts. Commands that fail raise a script
// error.
func editorGlobals(ed Editor) map[string]any {
	cancel := func() error {
		ed.Cancel()
		return nil
	}
	return map[string]any{
		"press":       makePressFn(ed),
		"select_node": makeStringCommandFn("select_node", ed.Select),
		"selected":    makeSelectedFn(ed),
		"search":      makeStringCommandFn("search", ed.Search),
		"options":     makeOptionsFn(ed),
		"confirm":     makeNullaryCommandFn("confirm", ed.Confirm),
		"insert":      makeInsertFn(ed),
		"edit":        makeStringCommandFn("edit", ed.EditLeaf),
		"undo":        makeBoolFn("undo", ed.Undo),
		"redo":        makeBoolFn("redo", ed.Redo),
		"cancel":      makeNullaryCommandFn("cancel", cancel),
		"outline":     makeOutlineFn(ed),
		"find":        makeFindFn(ed),
		"locals":      makeLocalsFn(ed),
	}
}

// makePressFn creates the "press" host function.
//
// press(keys...) → nil
//
// Each argument may hold several space-separated keys: press("j j c").
func makePressFn(ed Editor) *object.Builtin {
	return object.NewBuiltin("press", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) == 0 {
			return object.Errorf("press: expected at least 1 argument, got 0")
		}
		for _, arg := range args {
			s, err := toString(arg)
			if err != nil {
				return object.Errorf("press: %v", err)
			}
			for _, key := range strings.Fields(s) {
				if err := ed.Press(key); err != nil {
					return object.Errorf("press %s: %v", key, err)
				}
			}
		}
		return object.Nil
	})
}

func makeStringCommandFn(name string, fn func(string) error) *object.Builtin {
	return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError(name, 1, len(args))
		}
		s, err := toString(args[0])
		if err != nil {
			return object.Errorf("%s: %v", name, err)
		}
		if err := fn(s); err != nil {
			return object.Errorf("%s: %v", name, err)
		}
		return object.Nil
	})
}

func makeNullaryCommandFn(name string, fn func() error) *object.Builtin {
	return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError(name, 0, len(args))
		}
		if err := fn(); err != nil {
			return object.Errorf("%s: %v", name, err)
		}
		return object.Nil
	})
}

func makeBoolFn(name string, fn func() bool) *object.Builtin {
	return object.NewBuiltin(name, func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError(name, 0, len(args))
		}
		return object.NewBool(fn())
	})
}

// makeInsertFn creates "insert", which searches the open menu and confirms
// the best match.
//
// insert(text) → nil
func makeInsertFn(ed Editor) *object.Builtin {
	return object.NewBuiltin("insert", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("insert", 1, len(args))
		}
		text, err := toString(args[0])
		if err != nil {
			return object.Errorf("insert: %v", err)
		}
		if err := ed.Search(text); err != nil {
			return object.Errorf("insert %q: %v", text, err)
		}
		if err := ed.Confirm(); err != nil {
			return object.Errorf("insert %q: %v", text, err)
		}
		return object.Nil
	})
}

// selected() → id string or nil
func makeSelectedFn(ed Editor) *object.Builtin {
	return object.NewBuiltin("selected", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("selected", 0, len(args))
		}
		id := ed.Selected()
		if id == "" {
			return object.Nil
		}
		return object.NewString(id)
	})
}

// options() → [{label, description, selected}]
func makeOptionsFn(ed Editor) *object.Builtin {
	return object.NewBuiltin("options", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("options", 0, len(args))
		}
		results := []object.Object{}
		for _, opt := range ed.Options() {
			results = append(results, object.NewMap(map[string]object.Object{
				"label":       object.NewString(opt.Label),
				"description": object.NewString(opt.Description),
				"selected":    object.NewBool(opt.Selected),
			}))
		}
		return object.NewList(results)
	})
}

func makeOutlineFn(ed Editor) *object.Builtin {
	return object.NewBuiltin("outline", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("outline", 0, len(args))
		}
		return object.NewString(ed.Outline())
	})
}

// find(label) → [id]
func makeFindFn(ed Editor) *object.Builtin {
	return object.NewBuiltin("find", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("find", 1, len(args))
		}
		label, err := toString(args[0])
		if err != nil {
			return object.Errorf("find: %v", err)
		}
		results := []object.Object{}
		for _, id := range ed.Find(label) {
			results = append(results, object.NewString(id))
		}
		return object.NewList(results)
	})
}

// locals() → [{name, type, kind}]
func makeLocalsFn(ed Editor) *object.Builtin {
	return object.NewBuiltin("locals", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("locals", 0, len(args))
		}
		results := []object.Object{}
		for _, l := range ed.Locals() {
			results = append(results, object.NewMap(map[string]object.Object{
				"name": object.NewString(l.Name),
				"type": object.NewString(l.Type),
				"kind": object.NewString(l.Kind),
			}))
		}
		return object.NewList(results)
	})
}

// logObject provides log.info/warn/error methods for Risor scripts.
type logObject struct {
	prefix string
}

func (l *logObject) Info(msg string) {
	fmt.Printf("[%s] INFO: %s\n", l.prefix, msg)
}

func (l *logObject) Warn(msg string) {
	fmt.Printf("[%s] WARN: %s\n", l.prefix, msg)
}

func (l *logObject) Error(msg string) {
	fmt.Printf("[%s] ERROR: %s\n", l.prefix, msg)
}
