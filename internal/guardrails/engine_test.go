package guardrails

import (
	"strings"
	"testing"
)

func TestValidateBasicSelect(t *testing.T) {
	engine := NewDefaultEngine()

	result := engine.Validate("SELECT * FROM customer_information")

	if !result.IsSafe {
		t.Fatalf("IsSafe: %v, want: true (violations: %+v)", result.IsSafe, result.Violations)
	}
	if len(result.Violations) != 0 {
		t.Errorf("Violations: %d, want: 0", len(result.Violations))
	}

	foundSelectStar := false
	for _, w := range result.Warnings {
		if w.RiskLevel == RiskLow && strings.Contains(w.Message, "SELECT *") {
			foundSelectStar = true
		}
	}
	if !foundSelectStar {
		t.Errorf("Warnings missing SELECT * advisory: %+v", result.Warnings)
	}
}

func TestValidateDestructiveOperations(t *testing.T) {
	engine := NewDefaultEngine()

	tests := []struct {
		name    string
		query   string
		message string
	}{
		{
			name:    "DELETE statement",
			query:   "DELETE FROM customer_information WHERE id = 1",
			message: "DELETE operation",
		},
		{
			name:    "UPDATE statement",
			query:   "UPDATE customer_information SET balance = 0",
			message: "UPDATE operation",
		},
		{
			name:    "INSERT statement",
			query:   "INSERT INTO customer_information VALUES (1)",
			message: "INSERT operation",
		},
		{
			name:    "TRUNCATE statement",
			query:   "TRUNCATE TABLE customer_information",
			message: "TRUNCATE operation",
		},
		{
			name:    "DROP statement",
			query:   "DROP TABLE customer_information",
			message: "DROP operation",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := engine.Validate(test.query)

			if result.IsSafe {
				t.Fatalf("IsSafe: true, want: false")
			}

			found := false
			for _, v := range result.Violations {
				if v.Type == ViolationSafety && v.RiskLevel == RiskCritical && strings.Contains(v.Message, test.message) {
					found = true
				}
			}
			if !found {
				t.Errorf("missing critical safety violation %q: %+v", test.message, result.Violations)
			}
		})
	}
}

func TestValidateDuplicateVerbsNotDeduplicated(t *testing.T) {
	engine := NewDefaultEngine()

	result := engine.Validate("INSERT INTO t SELECT 1; DELETE FROM t")

	var safetyCount int
	for _, v := range result.Violations {
		if v.Type == ViolationSafety {
			safetyCount++
		}
	}
	if safetyCount < 2 {
		t.Errorf("safety violations: %d, want: one per destructive verb (>=2)", safetyCount)
	}
}

func TestValidateInjectionChaining(t *testing.T) {
	engine := NewDefaultEngine()

	result := engine.Validate("SELECT * FROM customer_information; DROP TABLE users;--")

	if result.IsSafe {
		t.Fatalf("IsSafe: true, want: false")
	}

	var hasSecurity, hasSafety bool
	for _, v := range result.Violations {
		switch v.Type {
		case ViolationSecurity:
			hasSecurity = true
		case ViolationSafety:
			hasSafety = true
		}
	}
	if !hasSecurity {
		t.Errorf("missing security violation for statement chaining: %+v", result.Violations)
	}
	if !hasSafety {
		t.Errorf("missing safety violation for DROP: %+v", result.Violations)
	}
}

func TestValidateLengthChangingUnicode(t *testing.T) {
	engine := NewDefaultEngine()

	// "ɐ" is 2 bytes but its upper-case form is 3, so offsets found in a
	// case-folded copy drift past the end of the original query. The
	// verdict must still come back, with the injection flagged and the
	// snippet taken from the original text.
	query := "SELECT '" + strings.Repeat("ɐ", 200) + "' FROM customer_information; DROP TABLE users"

	result := engine.Validate(query)

	if result.IsSafe {
		t.Fatalf("IsSafe: true, want: false")
	}

	var injection *Violation
	for i, v := range result.Violations {
		if v.Type == ViolationSecurity && strings.Contains(v.Message, "DROP TABLE after semicolon") {
			injection = &result.Violations[i]
			break
		}
	}
	if injection == nil {
		t.Fatalf("missing injection violation: %+v", result.Violations)
	}
	if !strings.Contains(injection.QuerySnippet, "DROP TABLE") {
		t.Errorf("snippet missing matched region: %q", injection.QuerySnippet)
	}
	if result.Metadata.QueryLength != len(query) {
		t.Errorf("query length: %d, want: %d", result.Metadata.QueryLength, len(query))
	}
}

func TestValidateInjectionPatterns(t *testing.T) {
	engine := NewDefaultEngine()

	tests := []struct {
		name  string
		query string
	}{
		{name: "OR 1=1 tautology", query: "SELECT * FROM customer_information WHERE name = '' OR 1=1"},
		{name: "dynamic execution", query: "SELECT * FROM customer_information; EXEC(@cmd)"},
		{name: "xp_cmdshell", query: "SELECT * FROM customer_information WHERE xp_cmdshell"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := engine.Validate(test.query)
			if result.IsSafe {
				t.Errorf("IsSafe: true, want: false")
			}
		})
	}
}

func TestValidateObfuscationBlocksAtHigh(t *testing.T) {
	engine := NewDefaultEngine()

	result := engine.Validate("SELECT CHAR(65) FROM customer_information")

	if result.IsSafe {
		t.Fatalf("IsSafe: true, want: false")
	}

	found := false
	for _, v := range result.Violations {
		if v.Type == ViolationSecurity && v.RiskLevel == RiskHigh {
			found = true
		}
	}
	if !found {
		t.Errorf("missing high security violation: %+v", result.Violations)
	}
}

func TestValidateTopValueTooLarge(t *testing.T) {
	engine := NewDefaultEngine()

	result := engine.Validate("SELECT TOP 100000 * FROM customer_information")

	if result.IsSafe {
		t.Fatalf("IsSafe: true, want: false")
	}

	found := false
	for _, v := range result.Violations {
		if v.Type == ViolationPerformance && v.Message == "TOP value too large (100000, max 10000)" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing TOP violation: %+v", result.Violations)
	}
}

func TestValidateTopValueWithinLimit(t *testing.T) {
	engine := NewDefaultEngine()

	result := engine.Validate("SELECT TOP 100 id FROM customer_information WHERE id > 5")

	if !result.IsSafe {
		t.Errorf("IsSafe: false, want: true (violations: %+v)", result.Violations)
	}
}

func TestValidateUnknownTable(t *testing.T) {
	engine := NewDefaultEngine()

	result := engine.Validate("SELECT * FROM nonexistent_table")

	if result.IsSafe {
		t.Fatalf("IsSafe: true, want: false")
	}

	found := false
	for _, v := range result.Violations {
		if v.Type == ViolationSchema && v.Message == "Unknown table referenced: NONEXISTENT_TABLE" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing schema violation: %+v", result.Violations)
	}
}

// The table regex only captures word characters, so a schema-qualified
// reference like dbo.customer_information is seen as the table "DBO".
func TestValidateSchemaQualifiedTableFlagged(t *testing.T) {
	engine := NewDefaultEngine()

	result := engine.Validate("SELECT id FROM dbo.customer_information WHERE id = 1")

	found := false
	for _, v := range result.Violations {
		if v.Type == ViolationSchema && v.Message == "Unknown table referenced: DBO" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing schema violation for qualified reference: %+v", result.Violations)
	}
}

func TestValidateSchemaCheckDisabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ValidateTables = false
	engine := NewEngine(cfg)

	result := engine.Validate("SELECT id FROM nonexistent_table WHERE id = 1")

	for _, v := range result.Violations {
		if v.Type == ViolationSchema {
			t.Errorf("schema check ran while disabled: %+v", v)
		}
	}
}

func TestValidateEmptyQuery(t *testing.T) {
	engine := NewDefaultEngine()

	for _, query := range []string{"", "   ", "\n\t "} {
		result := engine.Validate(query)

		if result.IsSafe {
			t.Fatalf("IsSafe: true, want: false for %q", query)
		}
		if len(result.Violations) != 1 {
			t.Fatalf("Violations: %d, want: exactly 1 for %q (%+v)", len(result.Violations), query, result.Violations)
		}

		v := result.Violations[0]
		if v.Type != ViolationFormat || v.RiskLevel != RiskCritical || v.Message != "Query is empty" {
			t.Errorf("violation: %+v, want critical format 'Query is empty'", v)
		}
	}
}

func TestValidateFormatViolations(t *testing.T) {
	engine := NewDefaultEngine()

	tests := []struct {
		name    string
		query   string
		message string
	}{
		{
			name:    "wrong leading keyword",
			query:   "SHOW TABLES",
			message: "Query must start with SELECT or WITH",
		},
		{
			name:    "unbalanced parentheses",
			query:   "SELECT COUNT(id FROM customer_information WHERE id > 1",
			message: "Unbalanced parentheses (open: 1, close: 0)",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := engine.Validate(test.query)

			if result.IsSafe {
				t.Fatalf("IsSafe: true, want: false")
			}

			found := false
			for _, v := range result.Violations {
				if v.Type == ViolationFormat && v.Message == test.message {
					found = true
				}
			}
			if !found {
				t.Errorf("missing format violation %q: %+v", test.message, result.Violations)
			}
		})
	}
}

func TestValidateWithStatementAllowed(t *testing.T) {
	// Table validation is off here: the schema check has no notion of
	// CTE names, so FROM recent would otherwise be flagged.
	cfg := DefaultConfig()
	cfg.ValidateTables = false
	engine := NewEngine(cfg)

	query := "WITH recent AS (SELECT id FROM transaction_history WHERE amount > 0) SELECT id FROM recent WHERE id > 10"
	result := engine.Validate(query)

	if !result.IsSafe {
		t.Errorf("IsSafe: false, want: true (violations: %+v)", result.Violations)
	}
}

func TestValidateCommentsStripped(t *testing.T) {
	engine := NewDefaultEngine()

	query := "SELECT id -- pick the key\nFROM customer_information /* main table */ WHERE id = 1"
	result := engine.Validate(query)

	if !result.IsSafe {
		t.Fatalf("IsSafe: false, want: true (violations: %+v)", result.Violations)
	}
	if strings.Contains(result.Metadata.NormalizedQuery, "--") || strings.Contains(result.Metadata.NormalizedQuery, "/*") {
		t.Errorf("normalized query still contains comments: %q", result.Metadata.NormalizedQuery)
	}
}

func TestValidateJoinLimit(t *testing.T) {
	engine := NewDefaultEngine()

	joins := strings.Repeat(" JOIN transaction_history ON 1=1", 6)
	result := engine.Validate("SELECT id FROM customer_information" + joins + " WHERE id = 1")

	found := false
	for _, v := range result.Violations {
		if v.Type == ViolationPerformance && strings.Contains(v.Message, "Too many JOINs") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing join violation: %+v", result.Violations)
	}
}

func TestValidateSubqueryWarning(t *testing.T) {
	engine := NewDefaultEngine()

	query := "SELECT id FROM customer_information WHERE id IN " +
		"(SELECT id FROM transaction_history WHERE amount IN " +
		"(SELECT amount FROM transaction_history WHERE id IN " +
		"(SELECT id FROM crs WHERE id IN (SELECT id FROM crs))))"
	result := engine.Validate(query)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "Too many subqueries") {
			found = true
			if w.BlocksExecution {
				t.Errorf("subquery warning should not block")
			}
		}
	}
	if !found {
		t.Errorf("missing subquery warning: %+v", result.Warnings)
	}
}

func TestValidateMissingWhereIsAdvisoryOnly(t *testing.T) {
	engine := NewDefaultEngine()

	result := engine.Validate("SELECT id FROM customer_information")

	if !result.IsSafe {
		t.Fatalf("IsSafe: false, want: true (violations: %+v)", result.Violations)
	}

	found := false
	for _, w := range result.Warnings {
		if w.Message == "Query missing WHERE clause and row limit" {
			found = true
		}
	}
	if !found {
		t.Errorf("missing full-scan warning: %+v", result.Warnings)
	}
}

func TestValidateQueryLengthLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxQueryLength = 40
	engine := NewEngine(cfg)

	result := engine.Validate("SELECT id FROM customer_information WHERE id = 12345")

	found := false
	for _, v := range result.Violations {
		if strings.Contains(v.Message, "Query too long") {
			found = true
		}
	}
	if !found {
		t.Errorf("missing length violation: %+v", result.Violations)
	}
}

// The engine must be total: any string input yields a verdict, and the
// blocking partition alone decides safety.
func TestValidateTotalityAndBlockingInvariant(t *testing.T) {
	engine := NewDefaultEngine()

	inputs := []string{
		"",
		"    ",
		"not sql at all",
		"SELECT",
		"((((",
		"'; DROP TABLE users; --",
		"WITH x AS (SELECT 1) SELECT * FROM x",
		strings.Repeat("SELECT * FROM customer_information UNION ", 50),
		"SELECT * FROM customer_information WHERE name = 'O''Brien'",
		"SELECT '" + strings.Repeat("ɐ", 200) + "'; DROP TABLE users",
	}

	for _, input := range inputs {
		result := engine.Validate(input)

		if result.IsSafe != (len(result.Violations) == 0) {
			t.Errorf("blocking invariant broken for %q: is_safe=%v violations=%d", input, result.IsSafe, len(result.Violations))
		}
		for _, v := range result.Violations {
			if !v.BlocksExecution {
				t.Errorf("non-blocking violation in blocking partition for %q: %+v", input, v)
			}
		}
		for _, w := range result.Warnings {
			if w.BlocksExecution {
				t.Errorf("blocking violation in warning partition for %q: %+v", input, w)
			}
		}
		if result.Metadata.Timestamp == "" {
			t.Errorf("missing timestamp for %q", input)
		}
		if result.Metadata.QueryLength != len(input) {
			t.Errorf("query length: %d, want: %d", result.Metadata.QueryLength, len(input))
		}
	}
}

func TestUpdateConfig(t *testing.T) {
	engine := NewDefaultEngine()

	engine.UpdateConfig(func(c *Config) {
		c.MaxRows = 50
		c.KnownTables = append(c.KnownTables, "audit_log")
	})

	cfg := engine.Config()
	if cfg.MaxRows != 50 {
		t.Errorf("MaxRows: %d, want: 50", cfg.MaxRows)
	}

	result := engine.Validate("SELECT TOP 100 id FROM audit_log WHERE id = 1")
	if result.IsSafe {
		t.Errorf("IsSafe: true, want: false with lowered max_rows")
	}
}

func TestConfigReturnsCopy(t *testing.T) {
	engine := NewDefaultEngine()

	cfg := engine.Config()
	cfg.KnownTables[0] = "tampered"
	cfg.MaxRows = 1

	if engine.Config().KnownTables[0] == "tampered" {
		t.Errorf("Config() leaked internal known_tables slice")
	}
	if engine.Config().MaxRows == 1 {
		t.Errorf("Config() leaked internal limits")
	}
}

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MaxRows != 10000 {
		t.Errorf("MaxRows: %d, want: 10000", cfg.MaxRows)
	}
	if cfg.DefaultRowLimit != 1000 {
		t.Errorf("DefaultRowLimit: %d, want: 1000", cfg.DefaultRowLimit)
	}
	if cfg.WarnRowThreshold != 5000 {
		t.Errorf("WarnRowThreshold: %d, want: 5000", cfg.WarnRowThreshold)
	}
	if cfg.MaxJoins != 5 {
		t.Errorf("MaxJoins: %d, want: 5", cfg.MaxJoins)
	}
	if cfg.MaxSubqueries != 3 {
		t.Errorf("MaxSubqueries: %d, want: 3", cfg.MaxSubqueries)
	}
	if cfg.MaxQueryLength != 5000 {
		t.Errorf("MaxQueryLength: %d, want: 5000", cfg.MaxQueryLength)
	}
	if cfg.TimeoutSeconds != 30 {
		t.Errorf("TimeoutSeconds: %d, want: 30", cfg.TimeoutSeconds)
	}
	if cfg.AllowModifications || cfg.AllowSchemaChanges {
		t.Errorf("modifications/schema changes must default to false")
	}
	if !cfg.RequireWhereForDelete || !cfg.ValidateTables || cfg.ValidateColumns {
		t.Errorf("unexpected schema/safety defaults: %+v", cfg)
	}
	if len(cfg.KnownTables) != 6 {
		t.Errorf("KnownTables: %d entries, want: 6", len(cfg.KnownTables))
	}
}
