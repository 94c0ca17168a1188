package text2sql

import (
	"github.com/povarna/text2sql-agent/internal/agents"
	"github.com/povarna/text2sql-agent/internal/executor"
)

// Request is one natural-language question, optionally continuing an
// existing session.
type Request struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

// Response carries the full pipeline outcome: the polished answer plus
// the per-statement records so callers can audit what actually ran.
type Response struct {
	SessionID string            `json:"session_id,omitempty"`
	Answer    string            `json:"answer"`
	Records   []executor.Record `json:"records,omitempty"`
	Chart     *agents.ChartSpec `json:"chart,omitempty"`
	Routing   string            `json:"routing"`
	Model     string            `json:"model"`
}
