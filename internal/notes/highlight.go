package notes

import "strings"

// Segment is a run of text that either matches the search query or not.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// Highlight splits text around case-insensitive occurrences of query.
func Highlight(text, query string) []Segment {
	if query == "" || text == "" {
		return []Segment{{Text: text}}
	}
	lowerText := strings.ToLower(text)
	lowerQuery := strings.ToLower(query)
	// byte offsets are only shared when lowering kept every rune's width
	if len(lowerText) != len(text) {
		return []Segment{{Text: text}}
	}

	var segs []Segment
	for {
		i := strings.Index(lowerText, lowerQuery)
		if i < 0 {
			break
		}
		if i > 0 {
			segs = append(segs, Segment{Text: text[:i]})
		}
		end := i + len(lowerQuery)
		segs = append(segs, Segment{Text: text[i:end], Match: true})
		text, lowerText = text[end:], lowerText[end:]
	}
	if text != "" || len(segs) == 0 {
		segs = append(segs, Segment{Text: text})
	}
	return segs
}
