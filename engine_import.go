package sapling

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	goruntime "runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jward/sapling/internal/catalog"
	"github.com/jward/sapling/internal/store"
)

// ImportResult summarizes an import. Function lists hold qualified
// "file:Name" labels, sorted.
type ImportResult struct {
	Files   int      `json:"files"`
	Skipped int      `json:"skipped"`
	Added   []string `json:"added,omitempty"`
	Changed []string `json:"changed,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

func (r *ImportResult) sort() {
	slices.Sort(r.Added)
	slices.Sort(r.Changed)
	slices.Sort(r.Removed)
}

// importItem holds everything an import worker needs for one file.
type importItem struct {
	path     string
	src      []byte
	sourceID int64
	hash     string
	batch    *store.BatchedStore

	// Signature hashes of the functions the file had before, by id.
	old map[string]string

	parsed []*Function
}

// ImportDeclarations registers the exported functions declared in the given
// Go files as External functions. Unchanged files (same content hash) are
// skipped. Re-importing a file keeps function ids stable, so call sites in
// documents keep resolving; functions that disappeared are removed.
//
// When WithParallel is enabled, files are parsed on a worker pool and each
// file's functions are committed in one transaction.
func (e *Engine) ImportDeclarations(ctx context.Context, paths []string) (*ImportResult, error) {
	var (
		res *ImportResult
		err error
	)
	if e.useParallel {
		res, err = e.importParallel(ctx, paths)
	} else {
		res, err = e.importSerial(ctx, paths)
	}
	if res != nil {
		res.sort()
		if res.Files > 0 {
			if err := e.store.SetMetadata(lastImportKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
				return res, err
			}
		}
	}
	return res, err
}

func (e *Engine) importSerial(ctx context.Context, paths []string) (*ImportResult, error) {
	res := &ImportResult{}
	var errs []error
	for _, path := range paths {
		item, skip, err := e.prepareSource(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("import %s: %w", path, err))
			continue
		}
		if skip {
			res.Skipped++
			continue
		}
		if err := e.parseSource(ctx, item, e.store); err != nil {
			errs = append(errs, fmt.Errorf("import %s: %w", path, err))
			continue
		}
		if err := e.finishSource(item, res); err != nil {
			errs = append(errs, fmt.Errorf("import %s: %w", path, err))
		}
	}
	if len(errs) > 0 {
		return res, fmt.Errorf("import had %d error(s): %w", len(errs), errs[0])
	}
	return res, nil
}

// importParallel imports files using a three-phase pipeline:
//
//	Phase A (serial):   Hash check, source records, capture old signatures.
//	Phase B (parallel): Parse declarations into a BatchedStore per file.
//	Phase C (serial):   Commit batches to SQLite, update the catalog.
func (e *Engine) importParallel(ctx context.Context, paths []string) (*ImportResult, error) {
	res := &ImportResult{}
	var errs []error

	// ---- Phase A: Serial preparation ----
	var items []*importItem
	for _, path := range paths {
		item, skip, err := e.prepareSource(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("prepare %s: %w", path, err))
			continue
		}
		if skip {
			res.Skipped++
			continue
		}
		item.batch = store.NewBatchedStore(e.store)
		items = append(items, item)
	}

	if len(items) == 0 {
		if len(errs) > 0 {
			return res, fmt.Errorf("parallel import had %d error(s): %w", len(errs), errs[0])
		}
		return res, nil
	}

	// ---- Phase B: Parallel parsing ----
	numWorkers := max(min(goruntime.NumCPU(), len(items)), 1)

	workCh := make(chan *importItem, len(items))
	for _, item := range items {
		workCh <- item
	}
	close(workCh)

	type result struct {
		item *importItem
		err  error
	}
	resultCh := make(chan result, len(items))

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workCh {
				err := e.parseSource(ctx, item, item.batch)
				resultCh <- result{item: item, err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// ---- Phase C: Serial commit ----
	for r := range resultCh {
		if r.err != nil {
			errs = append(errs, fmt.Errorf("parse %s: %w", r.item.path, r.err))
			continue
		}
		if err := e.store.CommitBatch(r.item.batch); err != nil {
			errs = append(errs, fmt.Errorf("commit %s: %w", r.item.path, err))
			continue
		}
		if err := e.finishSource(r.item, res); err != nil {
			errs = append(errs, fmt.Errorf("finish %s: %w", r.item.path, err))
		}
	}

	if len(errs) > 0 {
		return res, fmt.Errorf("parallel import had %d error(s): %w", len(errs), errs[0])
	}
	return res, nil
}

// prepareSource does Phase A work for a single file. skip=true means the
// file is unchanged since the last import. The new hash is only stored by
// finishSource, so a file whose import fails is retried next time.
func (e *Engine) prepareSource(path string) (*importItem, bool, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("read file: %w", err)
	}
	hash := store.ContentHash(content)

	existing, err := e.store.SourceByPath(path)
	if err != nil {
		return nil, false, fmt.Errorf("lookup source: %w", err)
	}
	if existing != nil && existing.Hash == hash {
		return nil, true, nil
	}

	item := &importItem{path: path, src: content, hash: hash, old: make(map[string]string)}
	if existing != nil {
		fns, err := e.store.FunctionsBySource(existing.ID)
		if err != nil {
			return nil, false, fmt.Errorf("capture old functions: %w", err)
		}
		for _, f := range fns {
			item.old[f.ID] = f.SignatureHash
		}
		item.sourceID = existing.ID
		return item, false, nil
	}

	id, err := e.store.InsertSource(&store.Source{Path: path, ImportedAt: time.Now().Truncate(time.Second)})
	if err != nil {
		return nil, false, err
	}
	item.sourceID = id
	return item, false, nil
}

// parseSource reads the file's declarations and writes them to ds.
func (e *Engine) parseSource(ctx context.Context, item *importItem, ds store.DataStore) error {
	fns, err := catalog.ParseGoDeclarations(ctx, item.path, item.src)
	if err != nil {
		return err
	}
	for _, fn := range fns {
		rec, err := functionToRecord(fn, &item.sourceID, nil)
		if err != nil {
			return err
		}
		if err := ds.UpsertFunction(rec); err != nil {
			return err
		}
	}
	item.parsed = fns
	return nil
}

// finishSource removes functions the file no longer declares, registers the
// parsed ones, records what changed and stores the file's new hash.
func (e *Engine) finishSource(item *importItem, res *ImportResult) error {
	res.Files++
	base := filepath.Base(item.path)
	seen := make(map[string]bool, len(item.parsed))
	for _, fn := range item.parsed {
		id := fn.ID.String()
		seen[id] = true
		label := base + ":" + fn.Name
		if oldHash, ok := item.old[id]; !ok {
			res.Added = append(res.Added, label)
		} else if oldHash != signatureHash(fn) {
			res.Changed = append(res.Changed, label)
		}
		if err := e.registry.RegisterFunction(fn); err != nil {
			return err
		}
	}

	var removed []string
	for id := range item.old {
		if seen[id] {
			continue
		}
		removed = append(removed, id)
		if uid, err := uuid.Parse(id); err == nil {
			if fn, ok := e.registry.FindFunction(uid); ok {
				res.Removed = append(res.Removed, base+":"+fn.Name)
			}
			e.registry.RemoveFunction(uid)
		}
	}
	if err := e.store.DeleteFunctions(removed); err != nil {
		return err
	}
	return e.store.UpdateSourceHash(item.sourceID, item.hash, time.Now().Truncate(time.Second))
}

// ForgetSource removes a previously imported file and its functions.
func (e *Engine) ForgetSource(path string) ([]string, error) {
	src, err := e.store.SourceByPath(path)
	if err != nil || src == nil {
		return nil, err
	}
	fns, err := e.store.FunctionsBySource(src.ID)
	if err != nil {
		return nil, err
	}
	if err := e.store.DeleteSourceData(src.ID); err != nil {
		return nil, err
	}
	var names []string
	for _, f := range fns {
		names = append(names, filepath.Base(path)+":"+f.Name)
		if id, err := uuid.Parse(f.ID); err == nil {
			e.registry.RemoveFunction(id)
		}
	}
	return names, nil
}

// skipDirs are directories that are never imported from.
var skipDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	"testdata":     true,
}

// ImportDirectory imports every Go file under root. If root is inside a git
// repository, uses git ls-files to respect .gitignore, and falls back to a
// filesystem walk otherwise. Files imported from under root earlier that
// are gone now are forgotten.
func (e *Engine) ImportDirectory(ctx context.Context, root string) (*ImportResult, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	paths, err := e.gitListFiles(root)
	if err != nil {
		// Not a git repo or git not available: fall back to walk.
		paths, err = e.walkListFiles(root)
		if err != nil {
			return nil, err
		}
	}

	res, importErr := e.ImportDeclarations(ctx, paths)
	if res == nil {
		return nil, importErr
	}

	listed := make(map[string]bool, len(paths))
	for _, p := range paths {
		listed[p] = true
	}
	sources, err := e.store.ListSources()
	if err != nil {
		return res, err
	}
	prefix := root + string(filepath.Separator)
	for _, src := range sources {
		if listed[src.Path] || !strings.HasPrefix(src.Path, prefix) {
			continue
		}
		names, err := e.ForgetSource(src.Path)
		if err != nil {
			return res, err
		}
		res.Removed = append(res.Removed, names...)
	}
	res.sort()
	return res, importErr
}

// importable reports whether path is a Go file worth importing from.
func importable(path string) bool {
	return strings.HasSuffix(path, ".go") && !strings.HasSuffix(path, "_test.go")
}

// gitListFiles uses git ls-files to discover tracked and untracked (but not
// ignored) Go files under root.
func (e *Engine) gitListFiles(root string) ([]string, error) {
	// --cached: tracked files, --others: untracked files,
	// --exclude-standard: respect .gitignore, .git/info/exclude, global excludes.
	cmd := exec.Command("git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(stdout.String(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		absPath := filepath.Join(root, line)
		if importable(absPath) && !inSkippedDir(line) {
			paths = append(paths, absPath)
		}
	}
	return paths, nil
}

func inSkippedDir(rel string) bool {
	for _, part := range strings.Split(filepath.ToSlash(filepath.Dir(rel)), "/") {
		if skipDirs[part] {
			return true
		}
	}
	return false
}

// walkListFiles discovers Go files by walking the filesystem, used as a
// fallback when git is not available. Skips hidden and skipDirs directories.
func (e *Engine) walkListFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (strings.HasPrefix(name, ".") || skipDirs[name]) {
				return filepath.SkipDir
			}
			return nil
		}
		if importable(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}
	return paths, nil
}
