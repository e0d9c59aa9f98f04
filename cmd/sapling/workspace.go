package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jward/sapling"
	"github.com/jward/sapling/internal/catalog"
	"github.com/jward/sapling/internal/lang"
	"github.com/jward/sapling/internal/store"
	"github.com/spf13/cobra"
)

var (
	flagSerial       bool
	flagFunctionKind string
)

var functionsCmd = &cobra.Command{
	Use:   "functions [search]",
	Short: "List catalog functions",
	Long:  "Lists builtin, user-defined and imported functions. An optional search keeps names containing it, ignoring case.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFunctions,
}

func init() {
	functionsCmd.Flags().StringVar(&flagFunctionKind, "kind", "", "filter by kind: builtin|user|external")
}

func runFunctions(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(true)
	if err != nil {
		return outputError("functions", err)
	}
	defer engine.Close()

	search := ""
	if len(args) > 0 {
		search = strings.ToLower(args[0])
	}
	cat := engine.Catalog()
	out := []CLIFunction{}
	for _, fn := range cat.ListFunctions() {
		if flagFunctionKind != "" && fn.Kind.String() != flagFunctionKind {
			continue
		}
		if !strings.Contains(strings.ToLower(fn.Name), search) {
			continue
		}
		out = append(out, CLIFunction{
			ID:        fn.ID.String(),
			Name:      fn.Name,
			Kind:      fn.Kind.String(),
			Signature: sapling.Signature(fn, cat),
			Source:    fn.Source,
		})
	}
	total := len(out)
	return outputResult(CLIResult{Command: "functions", Results: out, TotalCount: &total})
}

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List defined structs and enums",
	Args:  cobra.NoArgs,
	RunE:  runTypes,
}

func runTypes(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(true)
	if err != nil {
		return outputError("types", err)
	}
	defer engine.Close()

	cat := engine.Catalog()
	out := []CLITypeSpec{}
	for _, ts := range cat.ListTypeSpecs() {
		if !isUserType(ts) {
			continue
		}
		out = append(out, toCLITypeSpec(cat, ts))
	}
	total := len(out)
	return outputResult(CLIResult{Command: "types", Results: out, TotalCount: &total})
}

func toCLITypeSpec(cat sapling.Catalog, ts *sapling.TypeSpec) CLITypeSpec {
	return CLITypeSpec{
		ID:      ts.ID.String(),
		Name:    ts.Name,
		Kind:    ts.Kind.String(),
		Members: describeMembers(cat, ts),
	}
}

var defineCmd = &cobra.Command{
	Use:   "define",
	Short: "Declare struct and enum types",
	Long:  "Declares a struct or enum. Redefining a name keeps its type id, so code already using the type keeps resolving.",
}

func init() {
	defineCmd.AddCommand(defineStructCmd)
	defineCmd.AddCommand(defineEnumCmd)
}

var defineStructCmd = &cobra.Command{
	Use:   "struct <name> [field:Type...]",
	Short: "Declare a struct",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDefineStruct,
}

func runDefineStruct(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(true)
	if err != nil {
		return outputError("define struct", err)
	}
	defer engine.Close()

	var fields []lang.StructField
	for _, spec := range args[1:] {
		name, typeText, err := parseArgSpec(spec)
		if err != nil {
			return outputError("define struct", err)
		}
		t, err := engine.ParseType(typeText)
		if err != nil {
			return outputError("define struct", err)
		}
		fields = append(fields, lang.StructField{Name: name, Type: t})
	}
	ts, err := engine.DefineStruct(args[0], fields)
	if err != nil {
		return outputError("define struct", err)
	}
	return outputResult(CLIResult{Command: "define struct", Results: toCLITypeSpec(engine.Catalog(), ts)})
}

var defineEnumCmd = &cobra.Command{
	Use:   "enum <name> <Variant[:Type]...>",
	Short: "Declare an enum",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runDefineEnum,
}

func runDefineEnum(cmd *cobra.Command, args []string) error {
	engine, err := openEngine(true)
	if err != nil {
		return outputError("define enum", err)
	}
	defer engine.Close()

	var variants []lang.EnumVariant
	for _, spec := range args[1:] {
		v, err := parseVariant(engine, spec)
		if err != nil {
			return outputError("define enum", err)
		}
		variants = append(variants, v)
	}
	ts, err := engine.DefineEnum(args[0], variants)
	if err != nil {
		return outputError("define enum", err)
	}
	return outputResult(CLIResult{Command: "define enum", Results: toCLITypeSpec(engine.Catalog(), ts)})
}

// parseVariant reads "Name" or "Name:Type".
func parseVariant(engine *sapling.Engine, spec string) (lang.EnumVariant, error) {
	if !strings.Contains(spec, ":") {
		name := strings.TrimSpace(spec)
		if name == "" {
			return lang.EnumVariant{}, fmt.Errorf("invalid variant %q", spec)
		}
		return lang.EnumVariant{Name: name}, nil
	}
	name, typeText, err := parseArgSpec(spec)
	if err != nil {
		return lang.EnumVariant{}, err
	}
	t, err := engine.ParseType(typeText)
	if err != nil {
		return lang.EnumVariant{}, err
	}
	return lang.EnumVariant{Name: name, Type: &t}, nil
}

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Import Go function declarations as external functions",
	Long:  "Parses Go files with tree-sitter and registers their exported functions in the catalog. Unchanged files are skipped; files gone since the last import are forgotten.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runImport,
}

func init() {
	importCmd.Flags().BoolVar(&flagSerial, "serial", false, "parse files one at a time")
}

func runImport(cmd *cobra.Command, args []string) error {
	start := time.Now()

	targetDir, err := resolveTargetDir(args)
	if err != nil {
		return outputError("import", err)
	}
	engine, err := openEngine(true, sapling.WithParallel(!flagSerial))
	if err != nil {
		return outputError("import", err)
	}
	defer engine.Close()

	res, err := engine.ImportDirectory(context.Background(), targetDir)
	if err != nil {
		return outputError("import", fmt.Errorf("importing: %w", err))
	}

	fmt.Fprintf(os.Stderr, "Imported %s in %s\n", targetDir, time.Since(start).Round(time.Millisecond))
	return outputResult(CLIResult{Command: "import", Results: *res})
}

var forgetCmd = &cobra.Command{
	Use:   "forget <file>",
	Short: "Remove an imported file and its functions",
	Args:  cobra.ExactArgs(1),
	RunE:  runForget,
}

func runForget(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return outputError("forget", fmt.Errorf("resolving file path %q: %w", args[0], err))
	}
	engine, err := openEngine(false)
	if err != nil {
		return outputError("forget", err)
	}
	defer engine.Close()

	removed, err := engine.ForgetSource(path)
	if err != nil {
		return outputError("forget", err)
	}
	if removed == nil {
		removed = []string{}
	}
	return outputResult(CLIResult{Command: "forget", Results: CLIForget{Path: path, Removed: removed}})
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the workspace",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	dbPath, err := workspacePath()
	if err != nil {
		return outputError("status", err)
	}
	engine, err := openEngine(false)
	if err != nil {
		return outputError("status", err)
	}
	defer engine.Close()

	scriptDocs, err := engine.Documents(store.KindScript)
	if err != nil {
		return outputError("status", err)
	}
	st := CLIStatus{Database: dbPath, Scripts: len(scriptDocs)}
	for _, fn := range engine.Catalog().ListFunctions() {
		switch fn.Kind {
		case catalog.UserDefined:
			st.UserFunctions++
		case catalog.External:
			st.ExternalFunctions++
		default:
			st.BuiltinFunctions++
		}
	}
	for _, ts := range engine.Catalog().ListTypeSpecs() {
		if isUserType(ts) {
			st.Types++
		}
	}
	last, ok, err := engine.LastImport()
	if err != nil {
		return outputError("status", err)
	}
	if ok {
		st.LastImport = &last
	}
	return outputResult(CLIResult{Command: "status", Results: st})
}
