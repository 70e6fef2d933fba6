package mdhtml

import (
	"encoding/json"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// FrontMatter is a metadata block at the very start of a document.
type FrontMatter struct {
	// Format is "yaml", "toml" or "json".
	Format string
	Raw    string
	Fields map[string]any
}

// Title returns the "title" field when it is a string.
func (fm FrontMatter) Title() string {
	if s, ok := fm.Fields["title"].(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

var frontMatterDelimiters = map[string]string{
	"---": "yaml",
	"+++": "toml",
	";;;": "json",
}

// ExtractFrontMatter splits a leading front matter block from text. It
// reports false, returning text unchanged, when the document does not open
// with a delimiter, the second line does not look like metadata, the block is
// unterminated, or the block does not parse in its format.
func ExtractFrontMatter(text string) (FrontMatter, string, bool) {
	src := strings.TrimPrefix(text, "\uFEFF")
	open, pos, ok := nextLine(src, 0)
	if !ok {
		return FrontMatter{}, text, false
	}
	delim := strings.TrimSpace(open)
	format, isDelim := frontMatterDelimiters[delim]
	if !isDelim {
		return FrontMatter{}, text, false
	}
	second, _, ok := nextLine(src, pos)
	if !ok || !frontMatterMetadataLikely(second) {
		return FrontMatter{}, text, false
	}
	start := pos
	for pos < len(src) {
		line, next, _ := nextLine(src, pos)
		if strings.TrimSpace(line) == delim {
			raw := src[start:pos]
			fields, err := parseFrontMatter(format, raw)
			if err != nil {
				return FrontMatter{}, text, false
			}
			return FrontMatter{Format: format, Raw: raw, Fields: fields}, src[next:], true
		}
		pos = next
	}
	return FrontMatter{}, text, false
}

func nextLine(src string, start int) (string, int, bool) {
	if start >= len(src) {
		return "", start, false
	}
	i := strings.IndexByte(src[start:], '\n')
	if i < 0 {
		return strings.TrimSuffix(src[start:], "\r"), len(src), true
	}
	end := start + i
	return strings.TrimSuffix(src[start:end], "\r"), end + 1, true
}

func frontMatterMetadataLikely(line string) bool {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return true
	}
	return strings.Contains(trimmed, ":") || strings.Contains(trimmed, "=")
}

func parseFrontMatter(format, raw string) (map[string]any, error) {
	fields := map[string]any{}
	var err error
	switch format {
	case "yaml":
		err = yaml.Unmarshal([]byte(raw), &fields)
	case "toml":
		err = toml.Unmarshal([]byte(raw), &fields)
	case "json":
		err = json.Unmarshal([]byte(raw), &fields)
	}
	if err != nil {
		return nil, err
	}
	return fields, nil
}
