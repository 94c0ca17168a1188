// Package executor runs batches of LLM-generated SQL: every extracted
// statement goes through the guardrail engine and is executed only when
// the verdict is safe. A statement that fails validation must never
// reach the database.
package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/povarna/text2sql-agent/internal/guardrails"
	"github.com/povarna/text2sql-agent/internal/sqlclean"
	"github.com/rs/zerolog/log"
)

// BatchExecutor extracts statements from LLM output, validates each
// with the guardrail engine and executes the safe ones sequentially.
type BatchExecutor struct {
	engine *guardrails.Engine
	runner QueryRunner
}

// NewBatchExecutor creates an executor over the given engine and
// database runner.
func NewBatchExecutor(engine *guardrails.Engine, runner QueryRunner) *BatchExecutor {
	return &BatchExecutor{
		engine: engine,
		runner: runner,
	}
}

// ExecuteBatch processes every SQL statement found in llmText and
// returns one Record per statement, in input order. Statements run
// sequentially; a failed statement yields an execution_error record and
// processing continues with the next one.
func (b *BatchExecutor) ExecuteBatch(ctx context.Context, llmText string) []Record {
	if b.runner == nil {
		return []Record{{
			Query:  "",
			Status: StatusConnectionError,
			Result: "Error: No database connection provided",
		}}
	}

	queries := sqlclean.ExtractQueries(llmText)
	if len(queries) == 0 {
		return []Record{{
			Query:  truncate(llmText, 200),
			Status: StatusFormatError,
			Result: "No SQL queries found in the provided code. Please format queries in ```sql code blocks.",
		}}
	}

	records := make([]Record, 0, len(queries))
	for i, query := range queries {
		records = append(records, b.executeOne(ctx, i, query))
	}
	return records
}

func (b *BatchExecutor) executeOne(ctx context.Context, idx int, query string) Record {
	query = sqlclean.Clean(strings.TrimSpace(query))

	if query == "" {
		return Record{
			Query:  "",
			Status: StatusValidationError,
			Result: fmt.Sprintf("Empty query found in code block #%d", idx+1),
		}
	}

	verdict, err := b.validate(query)
	if err != nil {
		log.Error().Err(err).Msg("Guardrail engine failed")
		return Record{
			Query:  query,
			Status: StatusValidationError,
			Result: "Query validation failed: guardrail evaluation failed",
		}
	}

	if !verdict.IsSafe {
		messages := make([]string, 0, len(verdict.Violations))
		for _, v := range verdict.Violations {
			messages = append(messages, v.Message)
		}
		return Record{
			Query:  query,
			Status: StatusValidationError,
			Result: "Query validation failed: " + strings.Join(messages, "; "),
		}
	}

	log.Info().Int("query_idx", idx+1).Str("query", truncate(query, 400)).Msg("Executing query")

	rows, err := b.runner.RunQuery(ctx, query)
	if err != nil {
		return Record{
			Query:  query,
			Status: StatusExecutionError,
			Result: "Error executing SQL: " + err.Error(),
		}
	}

	log.Info().
		Int("rows", len(rows.Rows)).
		Int("columns", len(rows.Columns)).
		Msg("Query executed successfully")

	record := Record{
		Query:       query,
		Status:      StatusSuccess,
		RowCount:    len(rows.Rows),
		ColumnCount: len(rows.Columns),
		Columns:     rows.Columns,
	}

	payload, err := json.Marshal(rows.Rows)
	if err != nil {
		record.Status = StatusJSONError
		record.Result = "Error converting results to JSON: " + err.Error()
		return record
	}

	record.Result = string(payload)
	return record
}

// validate shields the batch from engine-internal panics; a statement
// that cannot be validated is treated as blocked, never executed.
func (b *BatchExecutor) validate(query string) (result guardrails.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("guardrail panic: %v", r)
		}
	}()

	return b.engine.Validate(query), nil
}

func truncate(s string, limit int) string {
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
