package generator

import "strings"

// NormalizeTitle trims surrounding whitespace.
func NormalizeTitle(raw string) string {
	return strings.TrimSpace(raw)
}

// SplitCaptions returns one caption per non-blank line.
func SplitCaptions(raw string) []string {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	captions := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		captions = append(captions, line)
	}
	return captions
}

// SplitHashtags strips every '#' and splits on whitespace.
func SplitHashtags(raw string) []string {
	tags := strings.Fields(strings.ReplaceAll(raw, "#", ""))
	if tags == nil {
		return []string{}
	}
	return tags
}
