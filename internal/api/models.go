package api

import (
	"github.com/povarna/text2sql-agent/internal/agents"
	"github.com/povarna/text2sql-agent/internal/executor"
	"github.com/povarna/text2sql-agent/internal/middleware"
	"github.com/povarna/text2sql-agent/internal/session"
	"github.com/povarna/text2sql-agent/internal/text2sql"
)

type QueryRequest struct {
	Query     string `json:"query" description:"The natural language question to answer"`
	SessionID string `json:"session_id,omitempty" description:"Existing session id to continue a conversation"`
}

type QueryResponse struct {
	SessionID string            `json:"session_id,omitempty" description:"Session id for follow-up questions"`
	Answer    string            `json:"answer" description:"The polished answer text"`
	Records   []executor.Record `json:"records,omitempty" description:"Per-statement execution records"`
	Chart     *agents.ChartSpec `json:"chart,omitempty" description:"Chart specification when a visual was requested"`
	Routing   string            `json:"routing" description:"Why the query was routed this way"`
	Model     string            `json:"model" description:"Model ID used"`
}

type ValidateRequest struct {
	SQL string `json:"sql" description:"The SQL statement to validate"`
}

type SessionResponse struct {
	ID       string            `json:"id" description:"Session id"`
	Messages []session.Message `json:"messages" description:"Conversation history"`
}

type SessionListResponse struct {
	Sessions []string `json:"sessions" description:"Known session ids"`
}

type HealthResponse struct {
	Status  string `json:"status" description:"Service status"`
	Version string `json:"version" description:"API version"`
}

func (q *QueryRequest) Validate() error {
	if q.Query == "" {
		return middleware.ErrEmptyQuery
	}
	return nil
}

func (v *ValidateRequest) Validate() error {
	if v.SQL == "" {
		return middleware.ErrEmptySQL
	}
	return nil
}

func toQueryResponse(response text2sql.Response) QueryResponse {
	return QueryResponse{
		SessionID: response.SessionID,
		Answer:    response.Answer,
		Records:   response.Records,
		Chart:     response.Chart,
		Routing:   response.Routing,
		Model:     response.Model,
	}
}
