package runtime

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"

	"github.com/jward/sapling/internal/store"
)

// Runtime embeds a Risor VM and runs edit macros: scripts that drive an
// Editor through the same commands a user issues with the keyboard.
type Runtime struct {
	store      *store.Store
	scriptsDir string
	fsys       fs.FS
	logPrefix  string
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Also configures the Risor importer to use
// FSImporter for import statement resolution.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithLogPrefix sets the prefix printed by the script-visible log object.
func WithLogPrefix(prefix string) RuntimeOption {
	return func(r *Runtime) {
		r.logPrefix = prefix
	}
}

// NewRuntime creates a Runtime wired to the given Store and scripts directory.
// The Store may be nil, in which case the workspace globals are omitted.
func NewRuntime(s *store.Store, scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		store:      s,
		scriptsDir: scriptsDir,
		logPrefix:  "sapling",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript loads and executes a macro with all standard globals plus any
// extra globals provided by the caller. A nil Editor leaves the editing
// commands undefined.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, ed Editor, extraGlobals map[string]any) error {
	src, err := r.LoadScript(scriptPath)
	if err != nil {
		return err
	}
	return r.eval(ctx, src, scriptPath, ed, extraGlobals)
}

// RunSource executes Risor source code directly with all standard globals
// plus any extra globals.
func (r *Runtime) RunSource(ctx context.Context, source string, ed Editor, extraGlobals map[string]any) error {
	return r.eval(ctx, source, "<inline>", ed, extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, source, label string, ed Editor, extraGlobals map[string]any) error {
	globals := r.buildGlobals(ed, extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	// Wire importer so Risor import statements resolve correctly.
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	_, err := risor.Eval(ctx, source, opts...)
	if err != nil {
		return fmt.Errorf("runtime: script %s: %w", label, err)
	}
	return nil
}

// buildImporter returns a Risor importer configured for the Runtime's script source.
// Returns nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// LoadScript reads a .risor file and returns its source code.
// When an fs.FS is configured, uses fs.ReadFile on the embedded filesystem.
// Otherwise, uses os.ReadFile with scriptsDir as the base directory.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// MacroScriptPath returns the path of a named macro inside the scripts
// directory.
func MacroScriptPath(name string) string {
	if strings.HasSuffix(name, ".risor") {
		return filepath.Join("macros", name)
	}
	return filepath.Join("macros", name+".risor")
}

// buildGlobals constructs the full set of globals exposed to Risor scripts.
func (r *Runtime) buildGlobals(ed Editor, extra map[string]any) map[string]any {
	globals := map[string]any{
		"log": mustProxy(&logObject{prefix: r.logPrefix}),
	}

	if ed != nil {
		for name, fn := range editorGlobals(ed) {
			globals[name] = fn
		}
	}

	// Workspace queries are read-only: macros change code only through the
	// editor.
	if r.store != nil {
		globals["documents"] = makeDocumentsFn(r.store)
		globals["functions"] = makeFunctionsFn(r.store)
		globals["metadata"] = makeMetadataFn(r.store)
		globals["db_query"] = makeDBQueryFn(r.store)
	}

	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
