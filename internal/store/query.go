package store

import (
	"context"
	"fmt"
	"strings"
)

// QueryWorkspace runs a single read-only SELECT (or WITH ... SELECT) over
// the workspace tables and returns one map per row, keyed by column name.
// Text stored as bytes comes back as a string. SQLite's own schema tables
// are off limits.
func (s *Store) QueryWorkspace(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	if err := checkWorkspaceQuery(query); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query workspace: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("query workspace: columns: %w", err)
	}
	out := []map[string]any{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("query workspace: scan: %w", err)
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
				continue
			}
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func checkWorkspaceQuery(query string) error {
	q := strings.ToUpper(strings.TrimSpace(query))
	q = strings.TrimSpace(strings.TrimSuffix(q, ";"))
	switch {
	case !strings.HasPrefix(q, "SELECT") && !strings.HasPrefix(q, "WITH"):
		return fmt.Errorf("only SELECT queries are allowed")
	case strings.Contains(q, ";"):
		return fmt.Errorf("only one statement may be run")
	case strings.Contains(q, "SQLITE_"):
		return fmt.Errorf("only workspace tables can be queried")
	}
	return nil
}
