// Package tables resolves which database tables a question needs and
// assembles the schema text the SQL generation prompt receives.
package tables

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/povarna/text2sql-agent/internal/bedrock"
	"github.com/povarna/text2sql-agent/internal/database"
	"github.com/povarna/text2sql-agent/internal/prompts"
	"github.com/rs/zerolog/log"
)

// Repository is the metadata storage surface the retriever needs.
// Satisfied by *database.DB.
type Repository interface {
	ListTables(ctx context.Context) ([]database.TableMetadata, error)
	ListTableNames(ctx context.Context) ([]string, error)
	GetTableByName(ctx context.Context, name string) (*database.TableMetadata, error)
	SemanticSearch(ctx context.Context, queryEmbeddings []float32, limit int) ([]database.TableMetadata, error)
	KeywordSearch(ctx context.Context, userQuery string, limit int) ([]database.TableMetadata, error)
}

// Embedder produces the query embedding for semantic search.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// LLMClient is the model surface for table routing.
type LLMClient interface {
	InvokeModel(ctx context.Context, request bedrock.ClaudeRequest) (*bedrock.ClaudeResponse, error)
}

type Retriever struct {
	client   LLMClient
	embedder Embedder
	repo     Repository
	limit    int
}

func NewRetriever(client LLMClient, embedder Embedder, repo Repository) *Retriever {
	return &Retriever{
		client:   client,
		embedder: embedder,
		repo:     repo,
		limit:    5,
	}
}

// RelevantTables returns the concatenated schema text for the tables a
// question needs. Table routing failures fall back to searching with
// the raw question.
func (r *Retriever) RelevantTables(ctx context.Context, userQuery string) (string, error) {
	searchText := r.routeToTables(ctx, userQuery)

	matches, err := r.search(ctx, searchText)
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no table metadata found for query")
	}

	var sb strings.Builder
	for _, meta := range matches {
		sb.WriteString(meta.SchemaText)
		sb.WriteString("\n\n")
	}

	log.Info().Int("tables", len(matches)).Msg("Table metadata retrieved")
	return strings.TrimSpace(sb.String()), nil
}

// ListAvailableTables returns the names of every ingested table. This
// feeds the guardrail known-table allow-list.
func (r *Retriever) ListAvailableTables(ctx context.Context) ([]string, error) {
	return r.repo.ListTableNames(ctx)
}

// TableSchema returns the stored schema text for one table.
func (r *Retriever) TableSchema(ctx context.Context, name string) (string, error) {
	meta, err := r.repo.GetTableByName(ctx, name)
	if err != nil {
		return "", err
	}
	return meta.SchemaText, nil
}

// routeToTables asks the model which tables the question needs and
// returns a search string. Any failure falls back to the raw question.
func (r *Retriever) routeToTables(ctx context.Context, userQuery string) string {
	tables, err := r.repo.ListTables(ctx)
	if err != nil || len(tables) == 0 {
		log.Warn().Err(err).Msg("No table summaries available, using raw query")
		return userQuery
	}

	var summaries strings.Builder
	for i, meta := range tables {
		summaries.WriteString(fmt.Sprintf("Table %d: %s\n- Purpose: %s\n\n", i+1, meta.Name, meta.Description))
	}

	response, err := r.client.InvokeModel(ctx, bedrock.ClaudeRequest{
		Prompt:      prompts.TableRouting(userQuery, summaries.String()),
		MaxTokens:   200,
		Temperature: 0.0,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Table routing failed, using raw query")
		return userQuery
	}

	names, err := parseTableNames(response.Content)
	if err != nil || len(names) == 0 {
		log.Warn().Err(err).Msg("Table router returned no usable names, using raw query")
		return userQuery
	}

	log.Debug().Strs("tables", names).Msg("Table router identified tables")
	return strings.Join(names, " ")
}

func (r *Retriever) search(ctx context.Context, searchText string) ([]database.TableMetadata, error) {
	queryEmbedding, err := r.embedder.GenerateEmbedding(ctx, searchText)
	if err != nil {
		log.Warn().Err(err).Msg("Embedding failed, falling back to keyword search")
		return r.repo.KeywordSearch(ctx, searchText, r.limit)
	}

	return r.repo.SemanticSearch(ctx, queryEmbedding, r.limit)
}

type tableRoutingResponse struct {
	RelevantTables []string `json:"relevant_tables"`
}

func parseTableNames(content string) ([]string, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in routing response")
	}

	var parsed tableRoutingResponse
	if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse routing response: %w", err)
	}

	return parsed.RelevantTables, nil
}
