package conversation

import "strings"

// Caption is a generated post split into its three blocks.
type Caption struct {
	Body     string   `json:"body"`
	CTA      string   `json:"cta"`
	Hashtags []string `json:"hashtags"`
}

const captionSeparator = "\n\n"

// ParseCaption splits generated content into body, call to action and
// hashtag line. Missing blocks are empty; anything after the third separator
// stays in the hashtag line and only #-prefixed tokens are kept from it.
func ParseCaption(content string) Caption {
	parts := strings.SplitN(strings.ReplaceAll(content, "\r\n", "\n"), captionSeparator, 3)
	for len(parts) < 3 {
		parts = append(parts, "")
	}

	tags := []string{}
	for _, tok := range strings.Fields(parts[2]) {
		if strings.HasPrefix(tok, "#") {
			tags = append(tags, tok)
		}
	}
	return Caption{
		Body:     strings.TrimSpace(parts[0]),
		CTA:      strings.TrimSpace(parts[1]),
		Hashtags: tags,
	}
}

// String renders the caption back in its posted form.
func (c Caption) String() string {
	blocks := make([]string, 0, 3)
	for _, b := range []string{c.Body, c.CTA, strings.Join(c.Hashtags, " ")} {
		if b != "" {
			blocks = append(blocks, b)
		}
	}
	return strings.Join(blocks, captionSeparator)
}
