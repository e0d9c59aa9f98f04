package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jward/sapling"
	"github.com/jward/sapling/internal/catalog"
	"github.com/jward/sapling/internal/lang"
	"github.com/jward/sapling/internal/store"
	"github.com/jward/sapling/scripts"
	"github.com/spf13/cobra"
)

var (
	flagFunction bool
	flagArgs     []string
	flagReturns  string
	flagKind     string
	flagEval     string
)

var newCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create a script or user-defined function",
	Long:  "Creates an empty script, or with --function an empty function body. Arguments are written name:Type, for example --arg text:String --arg items:List<Number>.",
	Args:  cobra.ExactArgs(1),
	RunE:  runNew,
}

func init() {
	newCmd.Flags().BoolVar(&flagFunction, "function", false, "create a user-defined function instead of a script")
	newCmd.Flags().StringArrayVar(&flagArgs, "arg", nil, "function argument as name:Type (repeatable)")
	newCmd.Flags().StringVar(&flagReturns, "returns", "Null", "function return type")
}

func runNew(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(true)
	if err != nil {
		return outputError("new", err)
	}
	defer engine.Close()

	if !flagFunction {
		if len(flagArgs) > 0 {
			return outputError("new", fmt.Errorf("--arg requires --function"))
		}
		doc, err := engine.CreateScript(args[0])
		if err != nil {
			return outputError("new", err)
		}
		return outputResult(CLIResult{Command: "new", Results: toCLIDocument(doc)})
	}

	var defs []sapling.ArgumentDefinition
	for _, spec := range flagArgs {
		name, typeText, err := parseArgSpec(spec)
		if err != nil {
			return outputError("new", err)
		}
		t, err := engine.ParseType(typeText)
		if err != nil {
			return outputError("new", err)
		}
		defs = append(defs, sapling.ArgumentDefinition{Name: name, Type: t})
	}
	returns, err := engine.ParseType(flagReturns)
	if err != nil {
		return outputError("new", err)
	}
	doc, _, err := engine.CreateFunction(args[0], defs, returns)
	if err != nil {
		return outputError("new", err)
	}
	return outputResult(CLIResult{Command: "new", Results: toCLIDocument(doc)})
}

// parseArgSpec splits "name:Type".
func parseArgSpec(spec string) (name, typeText string, err error) {
	name, typeText, ok := strings.Cut(spec, ":")
	name, typeText = strings.TrimSpace(name), strings.TrimSpace(typeText)
	if !ok || name == "" || typeText == "" {
		return "", "", fmt.Errorf("invalid argument %q: want name:Type", spec)
	}
	return name, typeText, nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List documents in the workspace",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&flagKind, "kind", "", "filter by kind: script|function")
}

func runList(cmd *cobra.Command, args []string) error {
	switch flagKind {
	case "", store.KindScript, store.KindFunction:
	default:
		return outputError("list", fmt.Errorf("invalid kind %q: must be %s or %s", flagKind, store.KindScript, store.KindFunction))
	}
	engine, err := openEngine(false)
	if err != nil {
		return outputError("list", err)
	}
	defer engine.Close()

	docs, err := engine.Documents(flagKind)
	if err != nil {
		return outputError("list", err)
	}
	out := make([]CLIDocument, len(docs))
	for i, d := range docs {
		out[i] = toCLIDocument(d)
	}
	total := len(out)
	return outputResult(CLIResult{Command: "list", Results: out, TotalCount: &total})
}

var showCmd = &cobra.Command{
	Use:   "show <document>",
	Short: "Print a document's outline",
	Long:  "Prints every node of a document in tree order with its inferred type. Types that cannot be inferred are shown as ?.",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(false)
	if err != nil {
		return outputError("show", err)
	}
	defer engine.Close()

	doc, err := engine.Document(args[0])
	if err != nil {
		return outputError("show", err)
	}
	g := sapling.NewGenie(doc.Root)
	return outputResult(CLIResult{Command: "show", Results: sapling.Outline(g, engine.Catalog(), sapling.NilID)})
}

var deleteCmd = &cobra.Command{
	Use:   "delete <document>",
	Short: "Delete a document",
	Long:  "Deletes a script, or a user-defined function together with its catalog entry.",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func runDelete(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(false)
	if err != nil {
		return outputError("delete", err)
	}
	defer engine.Close()

	doc, err := engine.Document(args[0])
	if err != nil {
		return outputError("delete", err)
	}
	if err := engine.DeleteDocument(doc.ID.String()); err != nil {
		return outputError("delete", err)
	}
	return outputResult(CLIResult{Command: "delete", Results: toCLIDocument(doc)})
}

var runCmd = &cobra.Command{
	Use:   "run <document> [macro]",
	Short: "Run a macro against a document",
	Long:  "Runs a named macro, or Risor source given with --eval, against a document. The document is saved only if the macro succeeds.",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&flagEval, "eval", "", "inline Risor source to run instead of a named macro")
}

func runRun(cmd *cobra.Command, args []string) error {
	if (len(args) == 2) == (flagEval != "") {
		return outputError("run", fmt.Errorf("requires either a macro name or --eval"))
	}
	engine, err := openEngine(false)
	if err != nil {
		return outputError("run", err)
	}
	defer engine.Close()

	ctx := context.Background()
	var res *sapling.MacroResult
	if flagEval != "" {
		res, err = engine.RunMacroSource(ctx, args[0], flagEval)
	} else {
		res, err = engine.RunMacro(ctx, args[0], args[1])
	}
	if err != nil {
		return outputError("run", err)
	}
	out := CLIRun{Document: res.Document.Name, Changed: res.Changed}
	if res.Selected != sapling.NilID {
		out.Selected = res.Selected.String()
	}
	return outputResult(CLIResult{Command: "run", Results: out})
}

var macrosCmd = &cobra.Command{
	Use:   "macros",
	Short: "List available macros",
	Args:  cobra.NoArgs,
	RunE:  runMacros,
}

func runMacros(cmd *cobra.Command, args []string) error {
	var fsys fs.FS = scripts.FS
	if flagScriptsDir != "" {
		fsys = os.DirFS(flagScriptsDir)
	}
	names, err := listMacros(fsys)
	if err != nil {
		return outputError("macros", err)
	}
	out := make([]CLIMacro, len(names))
	for i, n := range names {
		out[i] = CLIMacro{Name: n}
	}
	total := len(out)
	return outputResult(CLIResult{Command: "macros", Results: out, TotalCount: &total})
}

// listMacros returns the macro names under macros/, sorted.
func listMacros(fsys fs.FS) ([]string, error) {
	matches, err := fs.Glob(fsys, "macros/*.risor")
	if err != nil {
		return nil, err
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = strings.TrimSuffix(filepath.Base(m), ".risor")
	}
	sort.Strings(names)
	return names, nil
}

var localsCmd = &cobra.Command{
	Use:   "locals <document> <node>",
	Short: "List variables visible at a node",
	Long:  "Lists the variables code at a node can refer to. The node is a full id, a unique id prefix, or a node label from 'sapling show'.",
	Args:  cobra.ExactArgs(2),
	RunE:  runLocals,
}

func runLocals(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(false)
	if err != nil {
		return outputError("locals", err)
	}
	defer engine.Close()

	doc, err := engine.Document(args[0])
	if err != nil {
		return outputError("locals", err)
	}
	id, err := sapling.ResolveNodeRef(sapling.NewGenie(doc.Root), engine.Catalog(), args[1])
	if err != nil {
		return outputError("locals", err)
	}
	vars, err := engine.Locals(doc.Name, id)
	if err != nil {
		return outputError("locals", err)
	}
	out := make([]CLILocal, len(vars))
	for i, v := range vars {
		out[i] = CLILocal{
			ID:   v.ID.String(),
			Name: v.Name,
			Type: catalog.Describe(engine.Catalog(), v.Type),
			Kind: v.Antecedent.Kind.String(),
		}
	}
	total := len(out)
	return outputResult(CLIResult{Command: "locals", Results: out, TotalCount: &total})
}

func toCLIDocument(doc *sapling.Document) CLIDocument {
	return CLIDocument{
		ID:        doc.ID.String(),
		Name:      doc.Name,
		Kind:      doc.Kind,
		Nodes:     sapling.NewGenie(doc.Root).NodeCount(),
		UpdatedAt: doc.UpdatedAt,
	}
}

// describeMembers lists a struct's fields or an enum's variants.
func describeMembers(cat sapling.Catalog, ts *sapling.TypeSpec) []string {
	var out []string
	for _, f := range ts.Fields {
		out = append(out, f.Name+" "+catalog.Describe(cat, f.Type))
	}
	for _, v := range ts.Variants {
		if v.Type == nil {
			out = append(out, v.Name)
			continue
		}
		out = append(out, v.Name+" "+catalog.Describe(cat, *v.Type))
	}
	return out
}

func isUserType(ts *sapling.TypeSpec) bool {
	return (ts.Kind == lang.KindStruct || ts.Kind == lang.KindEnum) && ts.ID != catalog.OptionTypeID
}
