package util

// TruncateContent shortens s to at most maxLength runes followed by "...".
// A maxLength of zero disables truncation.
func TruncateContent(s string, maxLength int) string {
	if maxLength <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLength {
		return s
	}
	return string(runes[:maxLength]) + "..."
}
