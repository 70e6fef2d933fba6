package mdhtml

import (
	"regexp"

	"github.com/microcosm-cc/bluemonday"
)

var languageClassPattern = regexp.MustCompile(`^language-[A-Za-z0-9_+#.&;-]+$`)

// SanitizePolicy returns a user-generated-content policy that keeps the markup
// Render produces. Link schemes outside http, https and mailto are dropped.
func SanitizePolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(languageClassPattern).OnElements("code")
	p.AllowStyles("text-align").MatchingEnum("left", "right", "center").OnElements("td", "th")
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}
