package sqlclean

import "regexp"

var (
	fencedSQLPattern  = regexp.MustCompile("(?is)```\\s*sql\\s*(.*?)```")
	fencedAnyPattern  = regexp.MustCompile("(?s)```(.*?)```")
	sqlStartPattern   = regexp.MustCompile(`(?i)^\s*(SELECT|WITH|DECLARE)\b`)
	bareQueryPattern  = regexp.MustCompile(`(?is)((?:WITH|SELECT)\b.*?(;|$))`)
)

// ExtractQueries locates the candidate SQL statements inside a full
// LLM response. Fenced ```sql blocks win; bare ``` blocks are the
// fallback; failing both, the whole input is cleaned and accepted if it
// starts like SQL, else keyword-anchored spans are pulled out as a last
// resort. Returns nil when no statement can be found. Every returned
// candidate corresponds to exactly one input block, in order.
func ExtractQueries(text string) []string {
	if queries := fencedBlocks(fencedSQLPattern, text); queries != nil {
		return queries
	}
	if queries := fencedBlocks(fencedAnyPattern, text); queries != nil {
		return queries
	}

	// No code blocks: the model may have emitted SQL with markdown
	// headers but no fences.
	cleaned := Clean(text)
	if sqlStartPattern.MatchString(cleaned) {
		return []string{cleaned}
	}

	var queries []string
	for _, m := range bareQueryPattern.FindAllStringSubmatch(text, -1) {
		if candidate := Clean(m[1]); candidate != "" {
			queries = append(queries, candidate)
		}
	}
	return queries
}

func fencedBlocks(pattern *regexp.Regexp, text string) []string {
	matches := pattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, m[1])
	}
	return blocks
}
