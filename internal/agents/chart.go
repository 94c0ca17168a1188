package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/povarna/text2sql-agent/internal/bedrock"
	"github.com/povarna/text2sql-agent/internal/prompts"
	"github.com/rs/zerolog/log"
)

// ChartAgent produces a structured chart specification for executed
// query results. A failed spec never aborts the pipeline; the caller
// continues without a chart.
type ChartAgent struct {
	client LLMClient
}

func NewChartAgent(client LLMClient) *ChartAgent {
	return &ChartAgent{
		client: client,
	}
}

func (a *ChartAgent) GenerateSpec(ctx context.Context, userQuery string, resultsJSON string) (*ChartSpec, error) {
	prompt := prompts.ChartSpec(userQuery, resultsJSON)

	response, err := a.client.InvokeModel(ctx, bedrock.ClaudeRequest{
		Prompt:      prompt,
		MaxTokens:   500,
		Temperature: 0.0,
	})
	if err != nil {
		return nil, fmt.Errorf("chart spec generation failed: %w", err)
	}

	spec, err := parseChartSpec(response.Content)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("chart_type", spec.ChartType).
		Str("title", spec.Title).
		Msg("Chart spec generated")

	return spec, nil
}

// parseChartSpec pulls the JSON object out of the model text. Models
// sometimes wrap the object in prose or a code fence.
func parseChartSpec(content string) (*ChartSpec, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in chart response")
	}

	var spec ChartSpec
	if err := json.Unmarshal([]byte(content[start:end+1]), &spec); err != nil {
		return nil, fmt.Errorf("failed to parse chart spec: %w", err)
	}

	if spec.ChartType == "" {
		return nil, fmt.Errorf("chart spec missing chart_type")
	}

	return &spec, nil
}
