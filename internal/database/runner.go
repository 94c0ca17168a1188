package database

import (
	"context"
	"fmt"
	"time"

	"github.com/povarna/text2sql-agent/internal/executor"
)

// Runner executes guardrail-approved SELECT statements against the
// analytical database. Implements executor.QueryRunner.
type Runner struct {
	db      *DB
	timeout time.Duration
}

// NewRunner creates a runner with a per-statement timeout. A zero
// timeout disables the deadline.
func NewRunner(db *DB, timeout time.Duration) *Runner {
	return &Runner{
		db:      db,
		timeout: timeout,
	}
}

func (r *Runner) RunQuery(ctx context.Context, query string) (*executor.RowSet, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, 0, len(fields))
	for _, f := range fields {
		columns = append(columns, string(f.Name))
	}

	var result []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("failed to read row values: %w", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result = append(result, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return &executor.RowSet{
		Columns: columns,
		Rows:    result,
	}, nil
}
