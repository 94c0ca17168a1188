// Package sqlclean turns raw LLM output into executable SQL text:
// Clean strips markdown and prose artifacts from one candidate query,
// ExtractQueries locates the candidate statements inside a full
// response.
package sqlclean

import (
	"regexp"
	"strings"
)

var (
	markdownHeaderPattern = regexp.MustCompile(`^#+`)
	fenceMarkerPattern    = regexp.MustCompile("^```\\s*(sql)?\\s*$")
	numberedLinePattern   = regexp.MustCompile(`^\s*\d+\.\s+`)
	bulletLinePattern     = regexp.MustCompile(`^\s*[-*]\s+`)
	lineCommentPrefix     = regexp.MustCompile(`^\s*--`)
	blankRunPattern       = regexp.MustCompile(`\n\s*\n`)

	// Fixed LLM boilerplate sentences that are never SQL.
	explanatoryPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*Here\s+is\s+the\s+.*query.*$`),
		regexp.MustCompile(`(?i)^\s*The\s+following\s+query.*$`),
		regexp.MustCompile(`(?i)^\s*This\s+query.*$`),
		regexp.MustCompile(`(?i)^\s*Query\s+explanation.*$`),
		regexp.MustCompile(`(?i)^\s*SQL\s+Query.*$`),
		regexp.MustCompile(`(?i)^\s*Analysis.*$`),
		regexp.MustCompile(`(?i)^\s*Chart.*$`),
		regexp.MustCompile(`(?i)^\s*Report.*$`),
		regexp.MustCompile(`(?i)^\s*Explanation.*$`),
		regexp.MustCompile(`(?i)^\s*Description.*$`),
	}

	narrativeWordPattern = regexp.MustCompile(`(?i)\b(will|shows?|gives?|returns?|provides?|analysis|breakdown|complete)\b`)
	demonstrativePattern = regexp.MustCompile(`(?i)\b(This|That|These|Those)\s+`)
	sqlKeywordPattern    = regexp.MustCompile(`(?i)\b(SELECT|FROM|WHERE|GROUP|ORDER|JOIN|UNION|INSERT|UPDATE|DELETE)\b`)
	bulletKeywordPattern = regexp.MustCompile(`(?i)SELECT|FROM|WHERE|GROUP|ORDER`)
)

// Clean removes LLM-generated markdown headers, fence markers, list
// prefixes and explanatory prose from a raw SQL candidate while
// preserving legitimate SQL comments. Pure and idempotent; empty input
// is returned unchanged.
func Clean(query string) string {
	if query == "" {
		return query
	}

	lines := strings.Split(query, "\n")
	for i, line := range lines {
		if dropLine(line) {
			lines[i] = ""
		}
	}

	cleaned := strings.Join(lines, "\n")

	// Generic prose lines are only removed when the remaining text
	// contains no SQL keyword at all, so real SQL is never deleted.
	if !sqlKeywordPattern.MatchString(cleaned) {
		proseLines := strings.Split(cleaned, "\n")
		for i, line := range proseLines {
			if isProseLine(line) {
				proseLines[i] = ""
			}
		}
		cleaned = strings.Join(proseLines, "\n")
	}

	cleaned = blankRunPattern.ReplaceAllString(cleaned, "\n")
	return strings.TrimSpace(cleaned)
}

func dropLine(line string) bool {
	if markdownHeaderPattern.MatchString(line) {
		return true
	}
	if fenceMarkerPattern.MatchString(line) {
		return true
	}

	// Numbered list entries are prose unless the item looks like SQL.
	if loc := numberedLinePattern.FindStringIndex(line); loc != nil {
		rest := strings.ToUpper(line[loc[1]:])
		if len(rest) >= 3 && rest[0] != 'S' && rest[1] != 'E' && rest[2] != 'L' {
			return true
		}
	}

	// Bullet entries without any SQL keyword are descriptions.
	if loc := bulletLinePattern.FindStringIndex(line); loc != nil {
		if !bulletKeywordPattern.MatchString(line[loc[1]:]) {
			return true
		}
	}

	for _, pattern := range explanatoryPatterns {
		if pattern.MatchString(line) {
			return true
		}
	}

	return false
}

func isProseLine(line string) bool {
	if lineCommentPrefix.MatchString(line) {
		return false
	}
	if strings.HasSuffix(strings.TrimRight(line, " \t"), ";") {
		return false
	}
	return narrativeWordPattern.MatchString(line) || demonstrativePattern.MatchString(line)
}
