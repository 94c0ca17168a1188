package agents

import (
	"context"
	"fmt"
	"strings"

	"github.com/povarna/text2sql-agent/internal/bedrock"
	"github.com/povarna/text2sql-agent/internal/prompts"
	"github.com/povarna/text2sql-agent/internal/session"
	"github.com/rs/zerolog/log"
)

// Router decides whether a question needs SQL analysis and whether the
// user asked for a chart. Cheap heuristics run first; the LLM
// classifier is consulted only when the heuristic is not confident.
type Router struct {
	client LLMClient
}

func NewRouter(client LLMClient) *Router {
	return &Router{
		client: client,
	}
}

func (r *Router) Decide(ctx context.Context, query string, history *session.Session) Decision {
	heuristicDecision := r.heuristicDecide(query, history)

	if heuristicDecision.Confidence > 0.85 {
		log.Info().Str("method", "heuristic").Str("reason", heuristicDecision.Reason).Msg("Using heuristic decision")
		return heuristicDecision
	}

	decision, err := r.llmDecide(ctx, query, history)
	if err != nil {
		log.Error().Err(err).Msg("Unable to call LLM classifier, using heuristic fallback")
		return heuristicDecision
	}

	return decision
}

var dataKeywords = []string{
	"customer", "transaction", "balance", "account", "loan", "crs",
	"average", "count", "sum", "total", "top", "highest", "lowest",
	"revenue", "spend", "trend", "monthly", "quarterly", "yearly",
}

var chartKeywords = []string{
	"chart", "graph", "plot", "visual", "pie", "bar", "line graph",
	"histogram", "distribution",
}

func (r *Router) heuristicDecide(query string, history *session.Session) Decision {
	query = strings.ToLower(strings.TrimSpace(query))

	// Rule 1: Greeting
	if r.isSimpleGreeting(query) {
		return Decision{
			NeedsSQL:   false,
			NeedsChart: false,
			Reason:     "Simple greeting",
			Confidence: 0.95,
		}
	}

	// Rule 2: Short input
	if len(query) < 5 {
		return Decision{
			NeedsSQL:   false,
			NeedsChart: false,
			Reason:     "Too short for data analysis",
			Confidence: 0.95,
		}
	}

	// Rule 3: Chart request implies data retrieval
	if containsAny(query, chartKeywords) {
		return Decision{
			NeedsSQL:   true,
			NeedsChart: true,
			Reason:     "Visualization requested",
			Confidence: 0.90,
		}
	}

	// Rule 4: Data vocabulary
	if containsAny(query, dataKeywords) {
		return Decision{
			NeedsSQL:   true,
			NeedsChart: false,
			Reason:     "Data analysis vocabulary",
			Confidence: 0.90,
		}
	}

	// Rule 5: Follow-up on a data conversation
	if r.isClearFollowUp(query) && r.hasRecentHistory(history) {
		return Decision{true, false, "Follow-up on previous analysis", 0.70}
	}

	return Decision{false, false, "Default: general question", 0.60}
}

func (r *Router) isSimpleGreeting(query string) bool {
	simpleGreetings := []string{
		"hello", "hi", "hey", "thanks", "thank you", "bye", "goodbye", "ok", "okay", "yes", "no",
	}

	for _, word := range simpleGreetings {
		if word == query {
			return true
		}
	}

	return false
}

func (r *Router) isClearFollowUp(query string) bool {
	clearPhrases := []string{
		"tell me more",
		"break that down",
		"what about",
		"and for",
		"same for",
	}

	for _, phrase := range clearPhrases {
		if strings.Contains(query, phrase) {
			return true
		}
	}

	return false
}

func (r *Router) hasRecentHistory(history *session.Session) bool {
	if history == nil {
		return false
	}
	return len(history.Messages) >= 2
}

func containsAny(query string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(query, keyword) {
			return true
		}
	}
	return false
}

func (r *Router) llmDecide(ctx context.Context, query string, history *session.Session) (Decision, error) {
	prompt := prompts.RouterClassification(query, formatHistory(history, 4))

	response, err := r.client.InvokeModel(ctx, bedrock.ClaudeRequest{
		Prompt:      prompt,
		MaxTokens:   100,
		Temperature: 0.0,
	})
	if err != nil {
		return Decision{}, fmt.Errorf("classification failed: %w", err)
	}

	content := strings.ToUpper(response.Content)
	needsSQL := strings.Contains(content, "DECISION: SQL")
	needsChart := strings.Contains(content, "CHART: YES")

	return Decision{
		NeedsSQL:   needsSQL,
		NeedsChart: needsChart,
		Reason:     "LLM classification",
		Confidence: 0.90,
	}, nil
}

// formatHistory renders the last maxMessages turns for a prompt.
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
