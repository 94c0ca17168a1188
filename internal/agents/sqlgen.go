package agents

import (
	"context"
	"fmt"

	"github.com/povarna/text2sql-agent/internal/bedrock"
	"github.com/povarna/text2sql-agent/internal/prompts"
	"github.com/rs/zerolog/log"
)

// SQLAgent generates read-only MSSQL for a user question over a given
// schema. It returns the raw model text; the batch executor extracts
// and validates the individual statements.
type SQLAgent struct {
	client LLMClient
}

func NewSQLAgent(client LLMClient) *SQLAgent {
	return &SQLAgent{
		client: client,
	}
}

func (a *SQLAgent) GenerateSQL(ctx context.Context, userQuery string, tableMetadata string) (string, error) {
	prompt := prompts.SQLGeneration(userQuery, tableMetadata)

	response, err := a.client.InvokeModelWithRetry(ctx, bedrock.ClaudeRequest{
		Prompt:      prompt,
		MaxTokens:   2000,
		Temperature: 0.0,
	})
	if err != nil {
		return "", fmt.Errorf("sql generation failed: %w", err)
	}

	log.Info().
		Str("stop_reason", response.StopReason).
		Int("length", len(response.Content)).
		Msg("SQL generated")

	return response.Content, nil
}
