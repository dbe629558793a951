package normalization

import (
	"strings"
)

// ParseInputString trims and lowercases a case-insensitive input such as an
// email address.
func ParseInputString(input string) string {
	return strings.ToLower(strings.TrimSpace(input))
}

// CollapseWhitespace trims input and folds inner whitespace runs into one
// space.
func CollapseWhitespace(input string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(input, "\u00a0", " ")), " ")
}

// NormalizeTags trims, lowercases and de-duplicates tags, keeping first-seen
// order and dropping empties.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		n := strings.ToLower(CollapseWhitespace(t))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
