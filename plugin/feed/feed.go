// Package feed exports the post history as RSS, Atom or JSON Feed.
package feed

import (
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/gorilla/feeds"
	"github.com/pkg/errors"

	"github.com/hrygo/creastudio/client"
	"github.com/hrygo/creastudio/conversation"
)

type Format string

const (
	FormatRSS  Format = "rss"
	FormatAtom Format = "atom"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatRSS, FormatAtom, FormatJSON:
		return f, nil
	case "":
		return FormatRSS, nil
	default:
		return "", errors.Errorf("unknown feed format %q (want rss, atom or json)", s)
	}
}

// Options describe the feed channel.
type Options struct {
	Title       string
	Description string
	Author      string
	// BaseURL is the backend root used for relative image paths and for
	// links of posts that were never published.
	BaseURL string
	Now     func() time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC1123,
	time.RFC1123Z,
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Build converts posts into a feed. Items keep the given order.
func Build(posts []client.Post, opts Options) *feeds.Feed {
	base := strings.TrimRight(opts.BaseURL, "/")
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	title := opts.Title
	if title == "" {
		title = "Generated posts"
	}

	f := &feeds.Feed{
		Title:       title,
		Link:        &feeds.Link{Href: base + "/api/posts/"},
		Description: opts.Description,
		Created:     now(),
	}
	if opts.Author != "" {
		f.Author = &feeds.Author{Name: opts.Author}
	}

	for _, p := range posts {
		f.Items = append(f.Items, item(p, base))
	}
	return f
}

func item(p client.Post, base string) *feeds.Item {
	caption := conversation.ParseCaption(p.Content)

	link := p.PostURL
	if link == "" {
		link = fmt.Sprintf("%s/api/posts/%d", base, p.ID)
	}

	it := &feeds.Item{
		Id:          fmt.Sprintf("post:%d", p.ID),
		Title:       itemTitle(p, caption),
		Link:        &feeds.Link{Href: link},
		Description: caption.Body,
		Content:     caption.String(),
		Created:     parseTime(p.CreatedAt),
		Updated:     parseTime(p.UpdatedAt),
	}
	if p.Objective != "" || p.Style != "" {
		it.Description = strings.TrimSpace(caption.Body + "\n\n" + strings.Trim(p.Objective+" / "+p.Style, " /"))
	}
	if img := imageURL(p.ImageURL, base); img != "" {
		ct := mime.TypeByExtension(path.Ext(img))
		if ct == "" {
			ct = "image/png"
		}
		it.Enclosure = &feeds.Enclosure{Url: img, Type: ct}
	}
	return it
}

func itemTitle(p client.Post, c conversation.Caption) string {
	if p.Title != "" {
		return p.Title
	}
	line, _, _ := strings.Cut(c.Body, "\n")
	if r := []rune(line); len(r) > 80 {
		line = string(r[:77]) + "..."
	}
	if line == "" {
		return fmt.Sprintf("Post %d", p.ID)
	}
	return line
}

func imageURL(p, base string) string {
	if p == "" || strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	return base + "/" + strings.TrimPrefix(p, "/")
}

// Write renders f in the given format.
func Write(w io.Writer, f *feeds.Feed, format Format) error {
	var err error
	switch format {
	case FormatRSS:
		err = f.WriteRss(w)
	case FormatAtom:
		err = f.WriteAtom(w)
	case FormatJSON:
		err = f.WriteJSON(w)
	default:
		return errors.Errorf("unknown feed format %q", format)
	}
	return errors.Wrapf(err, "failed to write %s feed", format)
}

// ContentType is the media type for a rendered feed.
func ContentType(format Format) string {
	switch format {
	case FormatAtom:
		return "application/atom+xml; charset=utf-8"
	case FormatJSON:
		return "application/feed+json; charset=utf-8"
	default:
		return "application/rss+xml; charset=utf-8"
	}
}
