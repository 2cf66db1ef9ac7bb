package extract

import "strings"

// TitleFromContent derives a display title when the fetcher returned no
// title metadata: the first non-blank line, if reasonably short.
func TitleFromContent(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			if len(line) < 200 {
				return line
			}
			break
		}
	}
	return "Untitled"
}

// DescriptionFromContent derives a short description from the first one or
// two sentences of the content, truncated at 500 characters.
func DescriptionFromContent(content string) string {
	if content == "" {
		return ""
	}
	var sentences []string
	for _, s := range strings.FieldsFunc(content, func(r rune) bool {
		return r == '.' || r == '!' || r == '?'
	}) {
		if len(strings.TrimSpace(s)) > 20 {
			sentences = append(sentences, strings.TrimSpace(s))
		}
	}
	if len(sentences) == 0 {
		return ""
	}
	description := sentences[0]
	if len(sentences) > 1 {
		description += ". " + sentences[1]
	}
	if len(description) > 500 {
		return description[:500] + "..."
	}
	return description
}
