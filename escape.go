package mdhtml

import "strings"

var (
	inputNormalizer = strings.NewReplacer(
		"\r\n", "\n",
		"\r", "\n",
		string(sentinelOpen), "\uFFFD",
		string(sentinelClose), "\uFFFD",
	)
	textEscaper = strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		`"`, "&quot;",
		"'", "&#39;",
	)
	// attrEscaper leaves existing entities intact; values reaching it were
	// already escaped as text.
	attrEscaper = strings.NewReplacer(
		`"`, "&quot;",
		"'", "&#39;",
		"<", "&lt;",
		">", "&gt;",
	)
)

func normalizeInput(text string) string {
	return inputNormalizer.Replace(text)
}

// EscapeHTML escapes text for use as HTML element content or a quoted attribute value.
func EscapeHTML(text string) string {
	return textEscaper.Replace(text)
}

func attrSafe(value string) string {
	return attrEscaper.Replace(value)
}
