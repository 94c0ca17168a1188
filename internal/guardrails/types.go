package guardrails

// ViolationType categorizes why a rule fired.
type ViolationType string

const (
	ViolationSecurity    ViolationType = "security"
	ViolationSafety      ViolationType = "safety"
	ViolationPerformance ViolationType = "performance"
	ViolationSchema      ViolationType = "schema"
	ViolationComplexity  ViolationType = "complexity"
	ViolationFormat      ViolationType = "format"
)

// RiskLevel is the severity of a violation. Critical and High block
// execution; the rest are advisory unless the rule says otherwise.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
	RiskInfo     RiskLevel = "info"
)

// Violation is one guardrail check failure. Created by a rule, never
// mutated afterwards.
type Violation struct {
	Type            ViolationType `json:"type"`
	RiskLevel       RiskLevel     `json:"risk_level"`
	Message         string        `json:"message"`
	QuerySnippet    string        `json:"query_snippet,omitempty"`
	Suggestion      string        `json:"suggestion,omitempty"`
	BlocksExecution bool          `json:"blocks_execution"`
}

// Metadata accompanies every validation result for audit/debugging.
type Metadata struct {
	Timestamp       string `json:"timestamp"`
	QueryLength     int    `json:"query_length"`
	NormalizedQuery string `json:"normalized_query"`
}

// Result is the verdict of one Engine.Validate call. Violations holds
// only blocking entries, Warnings only non-blocking ones; IsSafe is
// true iff Violations is empty.
type Result struct {
	IsSafe     bool        `json:"is_safe"`
	Violations []Violation `json:"violations"`
	Warnings   []Violation `json:"warnings"`
	Metadata   Metadata    `json:"metadata"`
}

// CriticalViolations returns the blocking violations at critical level.
func (r Result) CriticalViolations() []Violation {
	var critical []Violation
	for _, v := range r.Violations {
		if v.RiskLevel == RiskCritical {
			critical = append(critical, v)
		}
	}
	return critical
}
