package guardrails

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Engine validates LLM-generated SQL text against a battery of
// security, safety, performance, schema and format checks. Validation
// is a pure single-pass function over the statement text: it performs
// no I/O and never fails for malformed SQL. Malformed input simply
// produces violations.
type Engine struct {
	config Config
}

// NewEngine creates an engine with the given configuration.
func NewEngine(config Config) *Engine {
	return &Engine{config: config}
}

// NewDefaultEngine creates an engine with the default limits.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultConfig())
}

// Config returns a copy of the current configuration.
func (e *Engine) Config() Config {
	cfg := e.config
	cfg.KnownTables = append([]string(nil), e.config.KnownTables...)
	return cfg
}

// UpdateConfig applies selective changes to the configuration. Not safe
// to call concurrently with in-flight validations; intended for
// startup/reconfiguration only.
func (e *Engine) UpdateConfig(update func(*Config)) {
	update(&e.config)
}

var (
	lineCommentPattern  = regexp.MustCompile(`--.*?(\n|$)`)
	blockCommentPattern = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// normalizeQuery strips SQL comments and collapses whitespace runs so
// every check matches against the same canonical text.
func normalizeQuery(query string) string {
	query = lineCommentPattern.ReplaceAllString(query, " ")
	query = blockCommentPattern.ReplaceAllString(query, " ")
	return strings.Join(strings.Fields(query), " ")
}

// Validate runs the full check battery over one SQL statement and
// returns the verdict. Total over all string inputs, including the
// empty string.
func (e *Engine) Validate(query string) Result {
	normalized := normalizeQuery(query)
	upper := strings.ToUpper(normalized)

	metadata := Metadata{
		Timestamp:       time.Now().UTC().Format(time.RFC3339),
		QueryLength:     len(query),
		NormalizedQuery: normalized,
	}

	var all []Violation
	all = append(all, e.checkSecurity(query, upper)...)
	all = append(all, e.checkSafety(upper)...)
	all = append(all, e.checkPerformance(query, upper)...)
	if e.config.ValidateTables {
		all = append(all, e.checkSchema(upper)...)
	}
	all = append(all, e.checkFormat(query, normalized)...)

	var blocking, warnings []Violation
	for _, v := range all {
		if v.BlocksExecution {
			blocking = append(blocking, v)
		} else {
			warnings = append(warnings, v)
		}
	}

	return Result{
		IsSafe:     len(blocking) == 0,
		Violations: blocking,
		Warnings:   warnings,
		Metadata:   metadata,
	}
}

// ------------------------------------------------------------------
// Security checks
// ------------------------------------------------------------------

// Compiled case-insensitively so snippet extraction can match the
// original query text directly.
var injectionPatterns = []struct {
	pattern *regexp.Regexp
	message string
}{
	{regexp.MustCompile(`(?i);\s*DROP\s+TABLE`), "SQL injection: DROP TABLE after semicolon"},
	{regexp.MustCompile(`(?i);\s*DELETE\s+FROM`), "SQL injection: DELETE after semicolon"},
	{regexp.MustCompile(`(?i);\s*UPDATE\s+`), "SQL injection: UPDATE after semicolon"},
	{regexp.MustCompile(`(?i)UNION\s+.*?\s+SELECT.*?--`), "SQL injection: UNION with comment"},
	{regexp.MustCompile(`(?i)'\s*OR\s+['"]\s*['"]?\s*=\s*['"]`), "SQL injection: OR with always-true condition"},
	{regexp.MustCompile(`(?i)'\s*OR\s+1\s*=\s*1`), "SQL injection: OR 1=1"},
	{regexp.MustCompile(`(?i)EXEC\s*\(`), "Dynamic SQL execution attempt"},
	{regexp.MustCompile(`(?i)EXECUTE\s*\(`), "Dynamic SQL execution attempt"},
	{regexp.MustCompile(`(?i)XP_CMDSHELL`), "OS command execution attempt"},
	{regexp.MustCompile(`(?i)SP_EXECUTESQL`), "Dynamic SQL execution attempt"},
}

var obfuscationPattern = regexp.MustCompile(`CHAR\s*\(|ASCII\s*\(|CONVERT\s*\(`)

func (e *Engine) checkSecurity(query, upper string) []Violation {
	var violations []Violation

	for _, p := range injectionPatterns {
		if p.pattern.MatchString(upper) {
			violations = append(violations, Violation{
				Type:            ViolationSecurity,
				RiskLevel:       RiskCritical,
				Message:         "Security violation: " + p.message,
				QuerySnippet:    extractSnippet(query, p.pattern),
				Suggestion:      "Remove malicious SQL patterns",
				BlocksExecution: true,
			})
		}
	}

	if obfuscationPattern.MatchString(upper) {
		violations = append(violations, Violation{
			Type:            ViolationSecurity,
			RiskLevel:       RiskHigh,
			Message:         "Potential obfuscation detected (CHAR/ASCII/CONVERT)",
			Suggestion:      "Use plain SQL without encoding",
			BlocksExecution: true,
		})
	}

	return violations
}

// ------------------------------------------------------------------
// Safety checks
// ------------------------------------------------------------------

// Deliberately not deduplicated: a statement containing two destructive
// verbs yields two violations, one per verb.
var destructiveOps = []struct {
	pattern     *regexp.Regexp
	description string
}{
	{regexp.MustCompile(`\bDELETE\b`), "DELETE operation"},
	{regexp.MustCompile(`\bUPDATE\b`), "UPDATE operation"},
	{regexp.MustCompile(`\bINSERT\b`), "INSERT operation"},
	{regexp.MustCompile(`\bTRUNCATE\b`), "TRUNCATE operation"},
	{regexp.MustCompile(`\bDROP\b`), "DROP operation"},
	{regexp.MustCompile(`\bALTER\b`), "ALTER operation"},
	{regexp.MustCompile(`\bCREATE\b`), "CREATE operation"},
	{regexp.MustCompile(`\bMERGE\b`), "MERGE operation"},
}

var (
	selectIntoPattern = regexp.MustCompile(`SELECT\s+.*?\s+INTO\s+`)
	fromPattern       = regexp.MustCompile(`\bFROM\b`)
	wherePattern      = regexp.MustCompile(`\bWHERE\b`)
	rowLimitPattern   = regexp.MustCompile(`\bTOP\b|\bLIMIT\b`)
)

func (e *Engine) checkSafety(upper string) []Violation {
	var violations []Violation

	for _, op := range destructiveOps {
		if op.pattern.MatchString(upper) {
			violations = append(violations, Violation{
				Type:            ViolationSafety,
				RiskLevel:       RiskCritical,
				Message:         "Destructive operation blocked: " + op.description,
				Suggestion:      "Only SELECT queries are allowed",
				BlocksExecution: true,
			})
		}
	}

	if selectIntoPattern.MatchString(upper) {
		violations = append(violations, Violation{
			Type:            ViolationSafety,
			RiskLevel:       RiskHigh,
			Message:         "SELECT INTO operation blocked (creates tables)",
			Suggestion:      "Use standard SELECT without INTO",
			BlocksExecution: true,
		})
	}

	// Full table scan warning: FROM without WHERE and without a row cap.
	if fromPattern.MatchString(upper) && !wherePattern.MatchString(upper) && !rowLimitPattern.MatchString(upper) {
		violations = append(violations, Violation{
			Type:            ViolationPerformance,
			RiskLevel:       RiskMedium,
			Message:         "Query missing WHERE clause and row limit",
			Suggestion:      "Add WHERE clause or TOP/LIMIT to prevent full table scan",
			BlocksExecution: false,
		})
	}

	return violations
}

// ------------------------------------------------------------------
// Performance checks
// ------------------------------------------------------------------

var (
	joinPattern     = regexp.MustCompile(`\bJOIN\b`)
	selectAllColumn = regexp.MustCompile(`SELECT\s+\*`)
	topValuePattern = regexp.MustCompile(`\bTOP\s+(\d+)\b`)
)

func (e *Engine) checkPerformance(query, upper string) []Violation {
	var violations []Violation

	if len(query) > e.config.MaxQueryLength {
		violations = append(violations, Violation{
			Type:            ViolationPerformance,
			RiskLevel:       RiskHigh,
			Message:         fmt.Sprintf("Query too long (%d chars, max %d)", len(query), e.config.MaxQueryLength),
			Suggestion:      "Simplify query or break into smaller queries",
			BlocksExecution: true,
		})
	}

	joinCount := len(joinPattern.FindAllString(upper, -1))
	if joinCount > e.config.MaxJoins {
		violations = append(violations, Violation{
			Type:            ViolationPerformance,
			RiskLevel:       RiskHigh,
			Message:         fmt.Sprintf("Too many JOINs (%d, max %d)", joinCount, e.config.MaxJoins),
			Suggestion:      "Reduce number of JOINs or use temporary tables",
			BlocksExecution: true,
		})
	}

	// Every SELECT beyond the first is counted as a subquery.
	subqueryCount := strings.Count(upper, "SELECT") - 1
	if subqueryCount > e.config.MaxSubqueries {
		violations = append(violations, Violation{
			Type:            ViolationPerformance,
			RiskLevel:       RiskMedium,
			Message:         fmt.Sprintf("Too many subqueries (%d, max %d)", subqueryCount, e.config.MaxSubqueries),
			Suggestion:      "Simplify query or use CTEs",
			BlocksExecution: false,
		})
	}

	if selectAllColumn.MatchString(upper) {
		violations = append(violations, Violation{
			Type:            ViolationPerformance,
			RiskLevel:       RiskLow,
			Message:         "SELECT * may return unnecessary columns",
			Suggestion:      "Specify only needed columns",
			BlocksExecution: false,
		})
	}

	if m := topValuePattern.FindStringSubmatch(upper); m != nil {
		topValue, err := strconv.Atoi(m[1])
		if err == nil && topValue > e.config.MaxRows {
			violations = append(violations, Violation{
				Type:            ViolationPerformance,
				RiskLevel:       RiskHigh,
				Message:         fmt.Sprintf("TOP value too large (%d, max %d)", topValue, e.config.MaxRows),
				Suggestion:      fmt.Sprintf("Reduce TOP to %d or less", e.config.MaxRows),
				BlocksExecution: true,
			})
		}
	}

	return violations
}

// ------------------------------------------------------------------
// Schema checks
// ------------------------------------------------------------------

// tableRefPattern misses tables behind complex aliasing and bracketed
// identifiers like [master].[dbo].[table]; kept as a known limitation
// since the generated SQL surface targets a small fixed schema.
var tableRefPattern = regexp.MustCompile(`\bFROM\s+(\w+)|JOIN\s+(\w+)`)

func (e *Engine) checkSchema(upper string) []Violation {
	var violations []Violation

	knownTables := make(map[string]bool, len(e.config.KnownTables))
	for _, t := range e.config.KnownTables {
		knownTables[strings.ToUpper(t)] = true
	}

	for _, m := range tableRefPattern.FindAllStringSubmatch(upper, -1) {
		table := m[1]
		if table == "" {
			table = m[2]
		}

		// Strip any schema prefix (schema.table -> table).
		parts := strings.Split(table, ".")
		tableName := parts[len(parts)-1]

		if !knownTables[tableName] {
			violations = append(violations, Violation{
				Type:            ViolationSchema,
				RiskLevel:       RiskHigh,
				Message:         "Unknown table referenced: " + table,
				Suggestion:      "Use one of the known tables: " + strings.Join(e.config.KnownTables, ", "),
				BlocksExecution: true,
			})
		}
	}

	return violations
}

// ------------------------------------------------------------------
// Format checks
// ------------------------------------------------------------------

var statementStartPattern = regexp.MustCompile(`(?i)^\s*(SELECT|WITH)\b`)

func (e *Engine) checkFormat(query, normalized string) []Violation {
	var violations []Violation

	if strings.TrimSpace(query) == "" {
		violations = append(violations, Violation{
			Type:            ViolationFormat,
			RiskLevel:       RiskCritical,
			Message:         "Query is empty",
			Suggestion:      "Provide a valid SQL query",
			BlocksExecution: true,
		})
		return violations
	}

	if !statementStartPattern.MatchString(normalized) {
		violations = append(violations, Violation{
			Type:            ViolationFormat,
			RiskLevel:       RiskHigh,
			Message:         "Query must start with SELECT or WITH",
			Suggestion:      "Only SELECT and CTE queries are allowed",
			BlocksExecution: true,
		})
	}

	openParens := strings.Count(normalized, "(")
	closeParens := strings.Count(normalized, ")")
	if openParens != closeParens {
		violations = append(violations, Violation{
			Type:            ViolationFormat,
			RiskLevel:       RiskHigh,
			Message:         fmt.Sprintf("Unbalanced parentheses (open: %d, close: %d)", openParens, closeParens),
			Suggestion:      "Check query syntax for missing parentheses",
			BlocksExecution: true,
		})
	}

	return violations
}

// ------------------------------------------------------------------
// Utilities
// ------------------------------------------------------------------

const snippetContext = 50

// extractSnippet returns the matched region of the original query with
// surrounding context for the audit trail. The pattern is matched
// against the query itself, never a case-folded copy: ToUpper can
// change byte length for some Unicode input, so indices from a folded
// string must not be applied to the original.
func extractSnippet(query string, pattern *regexp.Regexp) string {
	loc := pattern.FindStringIndex(query)
	if loc == nil {
		if len(query) > 100 {
			return query[:100] + "..."
		}
		return query + "..."
	}

	start := max(0, loc[0]-snippetContext)
	end := min(len(query), loc[1]+snippetContext)
	return "..." + query[start:end] + "..."
}
