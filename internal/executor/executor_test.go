package executor

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/povarna/text2sql-agent/internal/guardrails"
)

type fakeRunner struct {
	rows    *RowSet
	err     error
	queries []string
}

func (f *fakeRunner) RunQuery(_ context.Context, query string) (*RowSet, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func TestExecuteBatchNoRunner(t *testing.T) {
	batch := NewBatchExecutor(guardrails.NewDefaultEngine(), nil)

	records := batch.ExecuteBatch(context.Background(), "```sql\nSELECT 1\n```")

	if len(records) != 1 {
		t.Fatalf("records: %d, want: 1", len(records))
	}
	if records[0].Status != StatusConnectionError {
		t.Errorf("status: %s, want: %s", records[0].Status, StatusConnectionError)
	}
	if records[0].Result != "Error: No database connection provided" {
		t.Errorf("result: %q", records[0].Result)
	}
}

func TestExecuteBatchNoQueriesFound(t *testing.T) {
	runner := &fakeRunner{}
	batch := NewBatchExecutor(guardrails.NewDefaultEngine(), runner)

	records := batch.ExecuteBatch(context.Background(), "I could not build a statement for that request.")

	if len(records) != 1 {
		t.Fatalf("records: %d, want: 1", len(records))
	}
	if records[0].Status != StatusFormatError {
		t.Errorf("status: %s, want: %s", records[0].Status, StatusFormatError)
	}
	if records[0].Result != "No SQL queries found in the provided code. Please format queries in ```sql code blocks." {
		t.Errorf("result: %q", records[0].Result)
	}
	if len(runner.queries) != 0 {
		t.Errorf("runner called %d times, want: 0", len(runner.queries))
	}
}

func TestExecuteBatchSuccess(t *testing.T) {
	runner := &fakeRunner{
		rows: &RowSet{
			Columns: []string{"id", "name"},
			Rows: []map[string]any{
				{"id": 1, "name": "alpha"},
				{"id": 2, "name": "beta"},
			},
		},
	}
	batch := NewBatchExecutor(guardrails.NewDefaultEngine(), runner)

	records := batch.ExecuteBatch(context.Background(), "```sql\nSELECT id, name FROM customer_information WHERE id > 0\n```")

	if len(records) != 1 {
		t.Fatalf("records: %d, want: 1", len(records))
	}

	record := records[0]
	if record.Status != StatusSuccess {
		t.Fatalf("status: %s, want: %s (result: %s)", record.Status, StatusSuccess, record.Result)
	}
	if record.Query != "SELECT id, name FROM customer_information WHERE id > 0" {
		t.Errorf("query: %q", record.Query)
	}
	if record.RowCount != 2 || record.ColumnCount != 2 {
		t.Errorf("counts: rows=%d cols=%d, want: 2/2", record.RowCount, record.ColumnCount)
	}
	if len(record.Columns) != 2 || record.Columns[0] != "id" {
		t.Errorf("columns: %v", record.Columns)
	}
	if !strings.Contains(record.Result, `"name":"alpha"`) {
		t.Errorf("result payload: %s", record.Result)
	}
	if len(runner.queries) != 1 {
		t.Errorf("runner called %d times, want: 1", len(runner.queries))
	}
}

func TestExecuteBatchPositionalRecords(t *testing.T) {
	runner := &fakeRunner{rows: &RowSet{Columns: []string{"id"}, Rows: nil}}
	batch := NewBatchExecutor(guardrails.NewDefaultEngine(), runner)

	text := "First:\n```sql\nSELECT id FROM customer_information WHERE id = 1\n```\n" +
		"Second:\n```sql\nDELETE FROM customer_information WHERE id = 1\n```\n" +
		"Third:\n```sql\nSELECT id FROM transaction_history WHERE id = 2\n```"

	records := batch.ExecuteBatch(context.Background(), text)

	if len(records) != 3 {
		t.Fatalf("records: %d, want: 3", len(records))
	}
	if records[0].Status != StatusSuccess {
		t.Errorf("record 0 status: %s, want: %s (%s)", records[0].Status, StatusSuccess, records[0].Result)
	}
	if records[1].Status != StatusValidationError {
		t.Errorf("record 1 status: %s, want: %s", records[1].Status, StatusValidationError)
	}
	if !strings.Contains(records[1].Result, "Query validation failed:") ||
		!strings.Contains(records[1].Result, "Destructive operation blocked: DELETE operation") {
		t.Errorf("record 1 result: %q", records[1].Result)
	}
	if records[2].Status != StatusSuccess {
		t.Errorf("record 2 status: %s, want: %s (%s)", records[2].Status, StatusSuccess, records[2].Result)
	}

	// The blocked statement must never hit the database.
	if len(runner.queries) != 2 {
		t.Fatalf("runner called %d times, want: 2 (%v)", len(runner.queries), runner.queries)
	}
	for _, q := range runner.queries {
		if strings.Contains(q, "DELETE") {
			t.Errorf("blocked statement reached the runner: %q", q)
		}
	}
}

func TestExecuteBatchUnsafeNeverExecutes(t *testing.T) {
	runner := &fakeRunner{}
	batch := NewBatchExecutor(guardrails.NewDefaultEngine(), runner)

	records := batch.ExecuteBatch(context.Background(), "```sql\nDROP TABLE customer_information\n```")

	if len(records) != 1 {
		t.Fatalf("records: %d, want: 1", len(records))
	}
	if records[0].Status != StatusValidationError {
		t.Errorf("status: %s, want: %s", records[0].Status, StatusValidationError)
	}
	if len(runner.queries) != 0 {
		t.Errorf("runner called %d times, want: 0", len(runner.queries))
	}
}

func TestExecuteBatchEmptyBlock(t *testing.T) {
	runner := &fakeRunner{}
	batch := NewBatchExecutor(guardrails.NewDefaultEngine(), runner)

	records := batch.ExecuteBatch(context.Background(), "```sql\n\n```")

	if len(records) != 1 {
		t.Fatalf("records: %d, want: 1", len(records))
	}
	if records[0].Status != StatusValidationError {
		t.Errorf("status: %s, want: %s", records[0].Status, StatusValidationError)
	}
	if records[0].Result != "Empty query found in code block #1" {
		t.Errorf("result: %q", records[0].Result)
	}
}

func TestExecuteBatchExecutionError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("relation does not exist")}
	batch := NewBatchExecutor(guardrails.NewDefaultEngine(), runner)

	records := batch.ExecuteBatch(context.Background(), "```sql\nSELECT id FROM customer_information WHERE id = 1\n```")

	if len(records) != 1 {
		t.Fatalf("records: %d, want: 1", len(records))
	}
	if records[0].Status != StatusExecutionError {
		t.Errorf("status: %s, want: %s", records[0].Status, StatusExecutionError)
	}
	if records[0].Result != "Error executing SQL: relation does not exist" {
		t.Errorf("result: %q", records[0].Result)
	}
}

func TestExecuteBatchJSONError(t *testing.T) {
	runner := &fakeRunner{
		rows: &RowSet{
			Columns: []string{"ratio"},
			Rows:    []map[string]any{{"ratio": math.NaN()}},
		},
	}
	batch := NewBatchExecutor(guardrails.NewDefaultEngine(), runner)

	records := batch.ExecuteBatch(context.Background(), "```sql\nSELECT ratio FROM customer_information WHERE id = 1\n```")

	if len(records) != 1 {
		t.Fatalf("records: %d, want: 1", len(records))
	}

	record := records[0]
	if record.Status != StatusJSONError {
		t.Errorf("status: %s, want: %s", record.Status, StatusJSONError)
	}
	if !strings.HasPrefix(record.Result, "Error converting results to JSON:") {
		t.Errorf("result: %q", record.Result)
	}
	if record.RowCount != 1 || record.ColumnCount != 1 {
		t.Errorf("counts preserved on json failure: rows=%d cols=%d", record.RowCount, record.ColumnCount)
	}
}
