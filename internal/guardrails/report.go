package guardrails

import "strings"

// ViolationReport is the transport form of one violation.
type ViolationReport struct {
	Type       ViolationType `json:"type"`
	RiskLevel  RiskLevel     `json:"risk_level"`
	Message    string        `json:"message"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// Report is the fully serialized form of a validation result, suitable
// for JSON transport.
type Report struct {
	IsSafe     bool              `json:"is_safe"`
	Violations []ViolationReport `json:"violations"`
	Warnings   []ViolationReport `json:"warnings"`
	Metadata   Metadata          `json:"metadata"`
}

// QuickValidate runs the default engine over a query and returns a
// boolean verdict with a one-line message. Blocked queries without any
// critical violation are reported as allowed-with-warnings.
func QuickValidate(query string) (bool, string) {
	result := NewDefaultEngine().Validate(query)

	if result.IsSafe {
		return true, "Query passed all guardrail checks"
	}

	critical := result.CriticalViolations()
	if len(critical) == 0 {
		return true, "Query has warnings but is allowed"
	}

	messages := make([]string, 0, len(critical))
	for _, v := range critical {
		messages = append(messages, v.Message)
	}
	return false, strings.Join(messages, "; ")
}

// ValidateAndReport runs the default engine and returns the detailed
// report document.
func ValidateAndReport(query string) Report {
	return NewDefaultEngine().Validate(query).Report()
}

// Report converts a Result into its transport form.
func (r Result) Report() Report {
	report := Report{
		IsSafe:     r.IsSafe,
		Violations: make([]ViolationReport, 0, len(r.Violations)),
		Warnings:   make([]ViolationReport, 0, len(r.Warnings)),
		Metadata:   r.Metadata,
	}

	for _, v := range r.Violations {
		report.Violations = append(report.Violations, ViolationReport{
			Type:       v.Type,
			RiskLevel:  v.RiskLevel,
			Message:    v.Message,
			Suggestion: v.Suggestion,
		})
	}
	for _, w := range r.Warnings {
		report.Warnings = append(report.Warnings, ViolationReport{
			Type:       w.Type,
			RiskLevel:  w.RiskLevel,
			Message:    w.Message,
			Suggestion: w.Suggestion,
		})
	}

	return report
}
