package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jward/sapling"
	"github.com/jward/sapling/scripts"
	"github.com/spf13/cobra"
)

var (
	flagDB         string
	flagFormat     string
	flagScriptsDir string
)

// errorHandled is set by outputError so main() doesn't double-print.
var errorHandled bool

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "sapling",
	Short:         "Structural editor for typed code trees",
	Long:          "Sapling keeps code as typed trees in a SQLite workspace and edits them with Risor macros that press the same keys and pick from the same insert-code menu a person would.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return validateFormat(flagFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "workspace path (default: .sapling/workspace.db relative to repo root)")
	rootCmd.PersistentFlags().StringVar(&flagFormat, "format", "json", "output format: json|text")
	rootCmd.PersistentFlags().StringVar(&flagScriptsDir, "scripts-dir", "", "load macros from disk path instead of embedded")

	rootCmd.AddCommand(newCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(macrosCmd)
	rootCmd.AddCommand(localsCmd)
	rootCmd.AddCommand(functionsCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(defineCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(statusCmd)
}

// workspacePath resolves the database path for the current directory.
func workspacePath() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}
	return resolveDBPath(findRepoRoot(cwd)), nil
}

// openEngine opens the workspace. With create set, a missing workspace is
// created; otherwise it is an error.
func openEngine(create bool, opts ...sapling.Option) (*sapling.Engine, error) {
	dbPath, err := workspacePath()
	if err != nil {
		return nil, err
	}
	if create {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating %s: %w", dir, err)
		}
	} else if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("workspace not found: %s (run 'sapling new' or 'sapling import' first)", dbPath)
	}

	// Macro source: --scripts-dir overrides embedded FS.
	if flagScriptsDir != "" {
		opts = append(opts, sapling.WithScriptsDir(flagScriptsDir))
	} else {
		opts = append(opts, sapling.WithScriptsFS(scripts.FS))
	}

	engine, err := sapling.New(dbPath, opts...)
	if err != nil {
		return nil, fmt.Errorf("opening workspace: %w", err)
	}
	return engine, nil
}

// resolveTargetDir returns the absolute path of the directory to import.
func resolveTargetDir(args []string) (string, error) {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("not a directory: %s", abs)
	}
	return abs, nil
}

// findRepoRoot walks up from startDir looking for a .git directory.
// Returns the directory containing .git, or startDir if not found.
func findRepoRoot(startDir string) string {
	dir := startDir
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return startDir
		}
		dir = parent
	}
}

// resolveDBPath returns the database path from the --db flag or the default.
func resolveDBPath(repoRoot string) string {
	if flagDB != "" {
		if filepath.IsAbs(flagDB) {
			return flagDB
		}
		return filepath.Join(repoRoot, flagDB)
	}
	return filepath.Join(repoRoot, ".sapling", "workspace.db")
}
