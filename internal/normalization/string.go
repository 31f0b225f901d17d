package normalization

import (
	"strings"
)

func ParseInputString(input string) string {
	normalized := strings.ToLower(strings.TrimSpace(input))
	return normalized
}

// TrimInputString keeps case, for fields like passwords where case matters.
func TrimInputString(input string) string {
	return strings.TrimSpace(input)
}
