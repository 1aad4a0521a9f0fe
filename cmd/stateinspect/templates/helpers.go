package templates

import (
	"strings"
)

// Entry is one persisted key as shown in a report.
type Entry struct {
	Key   string
	Size  string
	Value string
}

// preview shortens value to at most limit runes, marking the cut.
func preview(value string, limit int) string {
	r := []rune(value)
	if len(r) <= limit {
		return value
	}
	var sb strings.Builder
	sb.WriteString(string(r[:limit]))
	sb.WriteString("…")
	return sb.String()
}
