package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/risor-io/risor/object"

	"github.com/jward/sapling/internal/store"
)

// Read-only workspace queries. Macros see persisted documents and catalog
// rows as Risor maps with primitive values.

// documents([kind]) → [{id, name, kind, hash, updated_at}]
func makeDocumentsFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("documents", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) > 1 {
			return object.Errorf("documents: expected at most 1 argument (kind), got %d", len(args))
		}
		var kind string
		if len(args) == 1 {
			k, err := toString(args[0])
			if err != nil {
				return object.Errorf("documents: %v", err)
			}
			kind = k
		}
		docs, err := s.ListDocuments(kind)
		if err != nil {
			return object.Errorf("documents: %v", err)
		}
		results := []object.Object{}
		for _, d := range docs {
			results = append(results, object.NewMap(map[string]object.Object{
				"id":         object.NewString(d.ID),
				"name":       object.NewString(d.Name),
				"kind":       object.NewString(d.Kind),
				"hash":       object.NewString(d.Hash),
				"updated_at": object.NewString(d.UpdatedAt.Format(time.RFC3339)),
			}))
		}
		return object.NewList(results)
	})
}

// functions() → [{id, name, kind, signature_hash}]
//
// Only persisted functions are listed; builtins live in the catalog alone.
func makeFunctionsFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("functions", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 0 {
			return object.NewArgsError("functions", 0, len(args))
		}
		fns, err := s.ListFunctions()
		if err != nil {
			return object.Errorf("functions: %v", err)
		}
		results := []object.Object{}
		for _, f := range fns {
			results = append(results, object.NewMap(map[string]object.Object{
				"id":             object.NewString(f.ID),
				"name":           object.NewString(f.Name),
				"kind":           object.NewString(f.Kind),
				"signature_hash": object.NewString(f.SignatureHash),
			}))
		}
		return object.NewList(results)
	})
}

// metadata(key) → string
func makeMetadataFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("metadata", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("metadata", 1, len(args))
		}
		key, err := toString(args[0])
		if err != nil {
			return object.Errorf("metadata: %v", err)
		}
		v, err := s.GetMetadata(key)
		if err != nil {
			return object.Errorf("metadata: %v", err)
		}
		return object.NewString(v)
	})
}

// db_query(sql, args...) → [{column: value}]
//
// Runs a read-only query over the workspace tables.
func makeDBQueryFn(s *store.Store) *object.Builtin {
	return object.NewBuiltin("db_query", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) < 1 {
			return object.Errorf("db_query: expected at least 1 argument (sql), got %d", len(args))
		}
		query, err := toString(args[0])
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}
		params := make([]any, len(args)-1)
		for i, arg := range args[1:] {
			params[i] = arg.Interface()
		}
		rows, err := s.QueryWorkspace(ctx, query, params...)
		if err != nil {
			return object.Errorf("db_query: %v", err)
		}
		results := make([]object.Object, len(rows))
		for i, row := range rows {
			m := make(map[string]object.Object, len(row))
			for col, v := range row {
				m[col] = sqlValueToObject(v)
			}
			results[i] = object.NewMap(m)
		}
		return object.NewList(results)
	})
}

func toString(obj object.Object) (string, error) {
	if s, ok := obj.(*object.String); ok {
		return s.Value(), nil
	}
	return "", fmt.Errorf("expected string, got %s", obj.Type())
}

// sqlValueToObject converts a workspace column value to a Risor object.
func sqlValueToObject(v any) object.Object {
	switch val := v.(type) {
	case nil:
		return object.Nil
	case time.Time:
		return object.NewString(val.Format(time.RFC3339))
	case int64, float64, string, bool:
		return object.FromGoType(val)
	}
	return object.NewString(fmt.Sprint(v))
}
