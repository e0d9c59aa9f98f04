// Package sapling is a structural code editor engine. Code is a tree of
// typed nodes edited through a cursor and a completion menu; there is no
// text to parse, so a document is never syntactically invalid.
//
// # Editing
//
// A [Session] owns one code tree, the selected node and the undo history.
// Commands arrive as keys (see [Session.HandleKeypress]) or as direct calls:
//
//	sess := sapling.NewSession(root, registry)
//	_ = sess.InsertLine(false)      // open the insert menu on a new line
//	_ = sess.SetSearch("Print")     // filter the menu
//	_ = sess.ConfirmMenu()          // insert Print(<text>) and edit its argument
//
// Every change goes through an [InsertionPoint]: before or after a
// statement, the beginning of a block, an argument or struct field hole, a
// list position, or replacing or wrapping an existing node. The
// [InsertCodeMenu] offers only code whose type fits the point, drawing on
// the locals in scope ([FindAllLocalsPreceding]), catalog functions,
// literals and new statements.
//
// # Workspace
//
// An [Engine] keeps code documents (scripts and user-defined function
// bodies), user-defined types and imported Go declarations in SQLite:
//
//	e, err := sapling.New(".sapling/workspace.db")
//	if err != nil { ... }
//	defer e.Close()
//
//	doc, err := e.CreateScript("hello")
//	sess := e.OpenSession(doc)
//	...
//	doc.Root = sess.Root()
//	changed, err := e.SaveDocument(doc)
//
// [Engine.ImportDeclarations] registers exported Go functions as External
// catalog functions. Unchanged files are skipped by content hash and
// function ids are stable across re-imports.
//
// # Macros
//
// Edit macros are Risor scripts that drive a session with the same
// commands a user has: press, search, insert, select_node, edit, undo and
// so on. Run them with [Engine.RunMacro] or [Engine.RunMacroSource]. See the
// internal/runtime package for the full set of globals exposed to scripts.
package sapling
