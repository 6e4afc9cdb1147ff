package agent

import (
	"regexp"
	"strings"
)

var (
	fenceRe   = regexp.MustCompile("(?is)```sql\\s*(.*?)```")
	keywordRe = regexp.MustCompile(`(?im)^[ \t]*(?:SELECT|WITH)\b`)
)

// ExtractSQL recovers a SQL statement from free-form model text. A fenced
// ```sql block wins; otherwise the text from the first line beginning with
// SELECT or WITH through the end is taken, so multi-line statements survive.
// Returns "" when neither form is present.
func ExtractSQL(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if loc := keywordRe.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[loc[0]:])
	}
	return ""
}
