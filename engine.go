package sapling

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/jward/sapling/internal/catalog"
	"github.com/jward/sapling/internal/lang"
	"github.com/jward/sapling/internal/runtime"
	"github.com/jward/sapling/internal/store"
)

// Engine is a sapling workspace: persisted code documents, the catalog of
// functions and types they refer to, and the macro runtime that edits them.
type Engine struct {
	store      *store.Store
	registry   *catalog.Registry
	runtime    *runtime.Runtime
	scriptsDir string
	scriptsFS  fs.FS
	extra      []*Function

	// useParallel enables the parallel import pipeline.
	useParallel bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithCatalog replaces the default registry. Persisted functions and types
// are loaded into it.
func WithCatalog(r *Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithFunctions registers additional functions for this Engine only. They
// are not persisted.
func WithFunctions(fns ...*Function) Option {
	return func(e *Engine) {
		e.extra = append(e.extra, fns...)
	}
}

// WithParallel controls parallel import. When true (default),
// ImportDeclarations parses files on a worker pool and commits each file's
// functions in one transaction. Set to false for serial mode.
func WithParallel(parallel bool) Option {
	return func(e *Engine) {
		e.useParallel = parallel
	}
}

// WithScriptsDir sets the directory macros are loaded from.
func WithScriptsDir(dir string) Option {
	return func(e *Engine) {
		e.scriptsDir = dir
	}
}

// WithScriptsFS configures the Engine to load macros from the given
// filesystem instead of from the scripts directory on disk. This enables
// embedding macros via go:embed.
func WithScriptsFS(fsys fs.FS) Option {
	return func(e *Engine) {
		e.scriptsFS = fsys
	}
}

// New opens or creates a workspace backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("sapling: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("sapling: migrate: %w", err)
	}

	e := &Engine{
		store:       s,
		useParallel: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.registry == nil {
		e.registry = catalog.NewRegistry()
	}
	if err := e.loadCatalog(); err != nil {
		s.Close()
		return nil, fmt.Errorf("sapling: load catalog: %w", err)
	}
	for _, fn := range e.extra {
		if err := e.registry.RegisterFunction(fn); err != nil {
			s.Close()
			return nil, fmt.Errorf("sapling: %w", err)
		}
	}

	var rtOpts []runtime.RuntimeOption
	if e.scriptsFS != nil {
		rtOpts = append(rtOpts, runtime.WithRuntimeFS(e.scriptsFS))
	}
	e.runtime = runtime.NewRuntime(s, e.scriptsDir, rtOpts...)

	return e, nil
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *store.Store {
	return e.store
}

// Catalog returns the registry code in this workspace resolves against.
func (e *Engine) Catalog() *Registry {
	return e.registry
}

// loadCatalog registers every persisted type spec, then every persisted
// function. Rows that no longer decode are skipped with a warning.
func (e *Engine) loadCatalog() error {
	specs, err := e.store.ListTypeSpecs()
	if err != nil {
		return err
	}
	for _, rec := range specs {
		var ts lang.TypeSpec
		if err := json.Unmarshal([]byte(rec.Body), &ts); err != nil {
			log.Printf("warning: skipping type %s: %v", rec.Name, err)
			continue
		}
		if err := e.registry.RegisterTypeSpec(&ts); err != nil {
			log.Printf("warning: skipping type %s: %v", rec.Name, err)
		}
	}

	fns, err := e.store.ListFunctions()
	if err != nil {
		return err
	}
	for _, rec := range fns {
		fn, err := recordToFunction(rec)
		if err != nil {
			log.Printf("warning: skipping function %s: %v", rec.Name, err)
			continue
		}
		if err := e.registry.RegisterFunction(fn); err != nil {
			log.Printf("warning: skipping function %s: %v", rec.Name, err)
		}
	}
	return nil
}

// functionToRecord encodes fn for the functions table.
func functionToRecord(fn *Function, sourceID *int64, documentID *string) (*store.Function, error) {
	body, err := json.Marshal(fn)
	if err != nil {
		return nil, fmt.Errorf("encode function %s: %w", fn.Name, err)
	}
	return &store.Function{
		ID:            fn.ID.String(),
		Name:          fn.Name,
		Kind:          fn.Kind.String(),
		SourceID:      sourceID,
		DocumentID:    documentID,
		SignatureHash: signatureHash(fn),
		Body:          string(body),
	}, nil
}

func recordToFunction(rec *store.Function) (*Function, error) {
	fn := &Function{}
	if err := json.Unmarshal([]byte(rec.Body), fn); err != nil {
		return nil, fmt.Errorf("decode function: %w", err)
	}
	return fn, nil
}

// signatureHash hashes the parts of fn a call site depends on.
func signatureHash(fn *Function) string {
	params := make([]string, len(fn.Args))
	for i, a := range fn.Args {
		params[i] = a.ID.String() + " " + a.Name + " " + typeKey(a.Type)
	}
	return store.ComputeSignatureHash(fn.Name, params, typeKey(fn.Returns))
}

// typeKey spells t by spec ids so the hash does not depend on names.
func typeKey(t Type) string {
	key := t.SpecID.String()
	for _, p := range t.Params {
		key += "<" + typeKey(p) + ">"
	}
	return key
}

// --- Types ---

// DefineStruct declares and persists a struct type. Fields without an id
// are given one.
func (e *Engine) DefineStruct(name string, fields []lang.StructField) (*TypeSpec, error) {
	for i := range fields {
		if fields[i].ID == NilID {
			fields[i].ID = lang.NewID()
		}
	}
	return e.defineType(&lang.TypeSpec{
		ID:     lang.NewID(),
		Name:   name,
		Symbol: name,
		Kind:   lang.KindStruct,
		Fields: fields,
	})
}

// DefineEnum declares and persists an enum type. Variants without an id
// are given one.
func (e *Engine) DefineEnum(name string, variants []lang.EnumVariant) (*TypeSpec, error) {
	for i := range variants {
		if variants[i].ID == NilID {
			variants[i].ID = lang.NewID()
		}
	}
	return e.defineType(&lang.TypeSpec{
		ID:       lang.NewID(),
		Name:     name,
		Symbol:   name,
		Kind:     lang.KindEnum,
		Variants: variants,
	})
}

func (e *Engine) defineType(ts *lang.TypeSpec) (*TypeSpec, error) {
	if ts.Name == "" {
		return nil, fmt.Errorf("define type: missing name")
	}
	if existing, ok := e.findTypeByName(ts.Name); ok {
		ts.ID = existing.ID
	}
	body, err := json.Marshal(ts)
	if err != nil {
		return nil, fmt.Errorf("define type %s: %w", ts.Name, err)
	}
	if err := e.store.UpsertTypeSpec(&store.TypeSpec{
		ID:   ts.ID.String(),
		Name: ts.Name,
		Kind: ts.Kind.String(),
		Body: string(body),
	}); err != nil {
		return nil, err
	}
	if err := e.registry.RegisterTypeSpec(ts); err != nil {
		return nil, err
	}
	return ts, nil
}

func (e *Engine) findTypeByName(name string) (*TypeSpec, bool) {
	for _, ts := range e.registry.ListTypeSpecs() {
		if ts.Name == name {
			return ts, true
		}
	}
	return nil, false
}

// ParseType reads a type written the way catalog.Describe prints it, such
// as "Number", "List<String>" or a defined struct's name.
func (e *Engine) ParseType(s string) (Type, error) {
	s = strings.TrimSpace(s)
	name, rest, generic := strings.Cut(s, "<")
	ts, ok := e.findTypeByName(strings.TrimSpace(name))
	if !ok {
		return Type{}, fmt.Errorf("parse type %q: %w", s, ErrTypeNotFound)
	}
	if !generic {
		return lang.NewType(ts.ID), nil
	}
	inner, ok := strings.CutSuffix(rest, ">")
	if !ok {
		return Type{}, fmt.Errorf("parse type %q: missing '>'", s)
	}
	var params []Type
	depth, start := 0, 0
	for i, r := range inner {
		switch r {
		case '<':
			depth++
		case '>':
			depth--
		case ',':
			if depth == 0 {
				p, err := e.ParseType(inner[start:i])
				if err != nil {
					return Type{}, err
				}
				params = append(params, p)
				start = i + 1
			}
		}
	}
	p, err := e.ParseType(inner[start:])
	if err != nil {
		return Type{}, err
	}
	return lang.NewType(ts.ID, append(params, p)...), nil
}

// --- Macros ---

// RunMacro runs the named macro from the scripts directory against a
// document and saves the result.
func (e *Engine) RunMacro(ctx context.Context, document, macro string) (*MacroResult, error) {
	return e.runMacro(ctx, document, func(ed runtime.Editor, extras map[string]any) error {
		return e.runtime.RunScript(ctx, runtime.MacroScriptPath(macro), ed, extras)
	})
}

// RunMacroSource runs inline Risor source against a document and saves the
// result.
func (e *Engine) RunMacroSource(ctx context.Context, document, source string) (*MacroResult, error) {
	return e.runMacro(ctx, document, func(ed runtime.Editor, extras map[string]any) error {
		return e.runtime.RunSource(ctx, source, ed, extras)
	})
}

// MacroResult describes a finished macro run.
type MacroResult struct {
	Document *Document
	Changed  bool
	Selected ID
}

// runMacro saves nothing when the macro fails: a failing macro leaves the
// document as it was.
func (e *Engine) runMacro(ctx context.Context, name string, run func(runtime.Editor, map[string]any) error) (*MacroResult, error) {
	doc, err := e.Document(name)
	if err != nil {
		return nil, err
	}
	sess := e.OpenSession(doc)
	extras := map[string]any{
		"document": doc.Name,
	}
	if err := run(newMacroEditor(sess), extras); err != nil {
		return nil, fmt.Errorf("macro on %s: %w", doc.Name, err)
	}
	doc.Root = sess.Root()
	changed, err := e.SaveDocument(doc)
	if err != nil {
		return nil, err
	}
	return &MacroResult{Document: doc, Changed: changed, Selected: sess.SelectedNodeID()}, nil
}

// --- Queries ---

// Locals lists the variables visible just before nodeID in a document.
func (e *Engine) Locals(document string, nodeID ID) ([]Variable, error) {
	doc, err := e.Document(document)
	if err != nil {
		return nil, err
	}
	g := NewGenie(doc.Root)
	if _, ok := g.FindNode(nodeID); !ok {
		return nil, fmt.Errorf("locals at %s: %w", nodeID, ErrNodeNotFound)
	}
	var out []Variable
	for v := range FindAllLocalsPrecedingWithResolvingGenerics(SearchPosition{BeforeCodeID: nodeID}, g, e.registry) {
		out = append(out, v)
	}
	return out, nil
}

// LastImport reports when declarations were last imported.
func (e *Engine) LastImport() (time.Time, bool, error) {
	v, err := e.store.GetMetadata(lastImportKey)
	if err != nil || v == "" {
		return time.Time{}, false, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse %s: %w", lastImportKey, err)
	}
	return t, true, nil
}

const lastImportKey = "last_import"
