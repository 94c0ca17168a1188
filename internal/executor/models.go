package executor

import "context"

// Status classifies the outcome of one statement.
type Status string

const (
	StatusSuccess         Status = "success"
	StatusValidationError Status = "validation_error"
	StatusConnectionError Status = "connection_error"
	StatusFormatError     Status = "format_error"
	StatusExecutionError  Status = "execution_error"
	StatusJSONError       Status = "json_error"
)

// Record is the per-statement outcome returned to the caller. One
// record is produced for every extracted statement, in input order.
type Record struct {
	Query       string   `json:"query"`
	Status      Status   `json:"status"`
	RowCount    int      `json:"row_count,omitempty"`
	ColumnCount int      `json:"column_count,omitempty"`
	Columns     []string `json:"columns,omitempty"`
	Result      string   `json:"result"`
}

// RowSet is the raw outcome of one executed query.
type RowSet struct {
	Columns []string
	Rows    []map[string]any
}

// QueryRunner executes one guardrail-approved SQL statement against
// the database.
type QueryRunner interface {
	RunQuery(ctx context.Context, query string) (*RowSet, error)
}
