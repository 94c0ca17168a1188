package agents

import (
	"context"

	"github.com/povarna/text2sql-agent/internal/bedrock"
)

// LLMClient is the model invocation surface the agents need. Satisfied
// by *bedrock.Client; tests use hand-written fakes. The retry variant
// is used for generation calls, the plain one for classification calls
// that have their own fallback.
type LLMClient interface {
	InvokeModel(ctx context.Context, request bedrock.ClaudeRequest) (*bedrock.ClaudeResponse, error)
	InvokeModelWithRetry(ctx context.Context, request bedrock.ClaudeRequest) (*bedrock.ClaudeResponse, error)
}

// Decision is the routing verdict for one user question. Plain struct:
// nothing downstream of the router sees an SDK response object.
type Decision struct {
	NeedsSQL   bool
	NeedsChart bool
	Reason     string
	Confidence float64 // 0.0 to 1.0
}

// ChartSpec is the structured visualization description returned to the
// caller. Rendering happens client-side.
type ChartSpec struct {
	ChartType string   `json:"chart_type"`
	Title     string   `json:"title"`
	XField    string   `json:"x_field"`
	YField    string   `json:"y_field"`
	Series    []string `json:"series,omitempty"`
}
