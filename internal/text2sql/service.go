// Package text2sql runs the full natural-language-to-SQL pipeline:
// route the question, retrieve table metadata, generate SQL, execute it
// behind the guardrail engine and polish the answer.
package text2sql

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/povarna/text2sql-agent/internal/agents"
	"github.com/povarna/text2sql-agent/internal/bedrock"
	"github.com/povarna/text2sql-agent/internal/executor"
	"github.com/povarna/text2sql-agent/internal/prompts"
	"github.com/povarna/text2sql-agent/internal/session"
	"github.com/rs/zerolog/log"
)

// Router decides how a question is handled.
type Router interface {
	Decide(ctx context.Context, query string, history *session.Session) agents.Decision
}

// SQLGenerator produces the raw model text holding the SQL statements.
type SQLGenerator interface {
	GenerateSQL(ctx context.Context, userQuery string, tableMetadata string) (string, error)
}

// ChartGenerator produces a chart spec for executed results.
type ChartGenerator interface {
	GenerateSpec(ctx context.Context, userQuery string, resultsJSON string) (*agents.ChartSpec, error)
}

// Polisher produces the user-facing answer from statement records.
type Polisher interface {
	Polish(ctx context.Context, userQuery string, recordsJSON string, chartIncluded bool) (string, error)
}

// TableRetriever resolves the schema text for a question.
type TableRetriever interface {
	RelevantTables(ctx context.Context, userQuery string) (string, error)
}

// BatchExecutor validates and runs the statements in LLM output.
type BatchExecutor interface {
	ExecuteBatch(ctx context.Context, llmText string) []executor.Record
}

// LLMClient answers general questions that need no database access.
type LLMClient interface {
	InvokeModel(ctx context.Context, request bedrock.ClaudeRequest) (*bedrock.ClaudeResponse, error)
}

type Service struct {
	router     Router
	sqlAgent   SQLGenerator
	chartAgent ChartGenerator
	finalAgent Polisher
	retriever  TableRetriever
	batch      BatchExecutor
	store      session.Store
	client     LLMClient
	modelID    string
}

func NewService(
	router Router,
	sqlAgent SQLGenerator,
	chartAgent ChartGenerator,
	finalAgent Polisher,
	retriever TableRetriever,
	batch BatchExecutor,
	store session.Store,
	client LLMClient,
	modelID string,
) *Service {
	return &Service{
		router:     router,
		sqlAgent:   sqlAgent,
		chartAgent: chartAgent,
		finalAgent: finalAgent,
		retriever:  retriever,
		batch:      batch,
		store:      store,
		client:     client,
		modelID:    modelID,
	}
}

// ProcessQuery runs the pipeline for one question. Statements execute
// sequentially; a failed statement yields its error record and the
// batch continues. Charts degrade: a failed spec never aborts the
// response.
func (s *Service) ProcessQuery(ctx context.Context, request Request) (Response, error) {
	sessionID, history := s.getOrCreateSession(ctx, request)

	decision := s.router.Decide(ctx, request.Query, history)
	log.Info().
		Bool("needs_sql", decision.NeedsSQL).
		Bool("needs_chart", decision.NeedsChart).
		Str("reason", decision.Reason).
		Msg("Query routed")

	var response Response
	var err error
	if decision.NeedsSQL {
		response, err = s.processDataQuery(ctx, request.Query, decision)
	} else {
		response, err = s.processGeneralQuery(ctx, request.Query, history, decision)
	}
	if err != nil {
		return Response{}, err
	}

	response.SessionID = sessionID
	response.Model = s.modelID

	s.saveMessages(ctx, sessionID, request.Query, response.Answer)
	return response, nil
}

func (s *Service) processDataQuery(ctx context.Context, query string, decision agents.Decision) (Response, error) {
	tableMetadata, err := s.retriever.RelevantTables(ctx, query)
	if err != nil {
		return Response{}, fmt.Errorf("table retrieval failed: %w", err)
	}

	llmText, err := s.sqlAgent.GenerateSQL(ctx, query, tableMetadata)
	if err != nil {
		return Response{}, fmt.Errorf("sql generation failed: %w", err)
	}

	records := s.batch.ExecuteBatch(ctx, llmText)

	var chart *agents.ChartSpec
	if decision.NeedsChart {
		chart = s.generateChart(ctx, query, records)
	}

	recordsJSON, err := json.Marshal(records)
	if err != nil {
		return Response{}, fmt.Errorf("failed to encode records: %w", err)
	}

	answer, err := s.finalAgent.Polish(ctx, query, string(recordsJSON), chart != nil)
	if err != nil {
		log.Error().Err(err).Msg("Final response generation failed, returning raw records")
		answer = string(recordsJSON)
	}

	return Response{
		Answer:  answer,
		Records: records,
		Chart:   chart,
		Routing: decision.Reason,
	}, nil
}

func (s *Service) processGeneralQuery(ctx context.Context, query string, history *session.Session, decision agents.Decision) (Response, error) {
	prompt := prompts.GeneralResponse(query, formatHistory(history, 10))

	result, err := s.client.InvokeModel(ctx, bedrock.ClaudeRequest{
		Prompt:      prompt,
		MaxTokens:   1000,
		Temperature: 0.3,
	})
	if err != nil {
		return Response{}, fmt.Errorf("general response failed: %w", err)
	}

	return Response{
		Answer:  strings.TrimSpace(result.Content),
		Routing: decision.Reason,
	}, nil
}

// generateChart builds a chart spec from the first successful record.
// Failures are logged and swallowed.
func (s *Service) generateChart(ctx context.Context, query string, records []executor.Record) *agents.ChartSpec {
	for _, record := range records {
		if record.Status != executor.StatusSuccess || record.RowCount == 0 {
			continue
		}

		chart, err := s.chartAgent.GenerateSpec(ctx, query, record.Result)
		if err != nil {
			log.Warn().Err(err).Msg("Chart spec failed, continuing without chart")
			return nil
		}
		return chart
	}

	return nil
}

func (s *Service) getOrCreateSession(ctx context.Context, request Request) (string, *session.Session) {
	if request.SessionID == "" {
		created, err := s.store.Create(ctx)
		if err != nil {
			log.Error().Err(err).Msg("Failed to create session")
			return "", nil
		}
		return created.ID, nil
	}

	history, err := s.store.Get(ctx, request.SessionID)
	if err != nil {
		log.Warn().Err(err).Str("session_id", request.SessionID).Msg("Failed to retrieve session, continuing without history")
		return request.SessionID, nil
	}

	return request.SessionID, history
}

func (s *Service) saveMessages(ctx context.Context, sessionID string, query string, answer string) {
	if sessionID == "" {
		return
	}

	err := s.store.Append(ctx, sessionID,
		session.Message{Role: "user", Content: query, Timestamp: time.Now().UTC()},
		session.Message{Role: "assistant", Content: answer, Timestamp: time.Now().UTC()},
	)
	if err != nil {
		log.Warn().Err(err).Str("session_id", sessionID).Msg("Failed to save conversation messages")
	}
}

func formatHistory(history *session.Session, maxMessages int) string {
	if history == nil || len(history.Messages) == 0 {
		return ""
	}

	messages := history.Messages
	if len(messages) > maxMessages {
		messages = messages[len(messages)-maxMessages:]
	}

	var sb strings.Builder
	for _, msg := range messages {
		sb.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
	}
	return sb.String()
}
