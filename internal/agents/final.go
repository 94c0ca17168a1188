package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/povarna/text2sql-agent/internal/bedrock"
	"github.com/povarna/text2sql-agent/internal/prompts"
)

// FinalAgent turns raw statement records into the user-facing answer.
type FinalAgent struct {
	client LLMClient
}

func NewFinalAgent(client LLMClient) *FinalAgent {
	return &FinalAgent{
		client: client,
	}
}

func (a *FinalAgent) Polish(ctx context.Context, userQuery string, recordsJSON string, chartIncluded bool) (string, error) {
	prompt := prompts.FinalResponse(userQuery, recordsJSON, chartIncluded)

	response, err := a.client.InvokeModelWithRetry(ctx, bedrock.ClaudeRequest{
		Prompt:      prompt,
		MaxTokens:   1500,
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("final response generation failed: %w", err)
	}

	return strings.TrimSpace(response.Content), nil
}
