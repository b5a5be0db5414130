// Package preview renders the latest generated post as an Instagram-style
// card. A Renderer is a conversation.PreviewSink.
package preview

import (
	"bytes"
	"html/template"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/hrygo/creastudio/conversation"
)

// Renderer keeps the most recent post and renders it on demand.
type Renderer struct {
	md      goldmark.Markdown
	baseURL string
	account string
	now     func() time.Time

	mu       sync.RWMutex
	post     conversation.Post
	has      bool
	version  int
	shownAt  time.Time
	watchers []chan struct{}
}

type Option func(*Renderer)

// WithBaseURL resolves relative image paths against the backend.
func WithBaseURL(base string) Option {
	return func(r *Renderer) { r.baseURL = strings.TrimRight(base, "/") }
}

// WithAccount sets the handle shown in the card header.
func WithAccount(name string) Option {
	return func(r *Renderer) { r.account = name }
}

func New(opts ...Option) *Renderer {
	r := &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
			// No html.WithUnsafe: raw HTML in captions stays escaped.
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		account: "your_brand",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Show replaces the displayed post and wakes any watchers.
func (r *Renderer) Show(p conversation.Post) {
	r.mu.Lock()
	r.post = p
	r.has = true
	r.version++
	r.shownAt = r.now()
	watchers := r.watchers
	r.watchers = nil
	r.mu.Unlock()

	for _, w := range watchers {
		close(w)
	}
}

// Latest returns the displayed post, if any.
func (r *Renderer) Latest() (conversation.Post, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.post, r.has
}

// Snapshot is the JSON view of the preview.
type Snapshot struct {
	Post     *conversation.Post `json:"post"`
	ImageURL string             `json:"image_url,omitempty"`
	Version  int                `json:"version"`
	ShownAt  *time.Time         `json:"shown_at,omitempty"`
}

func (r *Renderer) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.has {
		return Snapshot{}
	}
	p, at := r.post, r.shownAt
	return Snapshot{Post: &p, ImageURL: r.imageURL(p.ImageURL), Version: r.version, ShownAt: &at}
}

// Changed returns a channel closed on the next Show.
func (r *Renderer) Changed() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	ch := make(chan struct{})
	r.watchers = append(r.watchers, ch)
	return ch
}

func (r *Renderer) imageURL(path string) string {
	if path == "" || r.baseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return r.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// Caption renders the caption body and call to action as HTML.
func (r *Renderer) Caption(c conversation.Caption) (template.HTML, error) {
	var src strings.Builder
	src.WriteString(c.Body)
	if c.CTA != "" {
		src.WriteString("\n\n**")
		src.WriteString(c.CTA)
		src.WriteString("**")
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src.String()), &buf); err != nil {
		return "", errors.Wrap(err, "failed to render caption")
	}
	return template.HTML(buf.String()), nil
}

type cardData struct {
	Account  string
	Empty    bool
	ImageURL string
	Caption  template.HTML
	Hashtags []string
	PostID   int64
	Version  int
}

// WriteHTML writes a standalone page with the current card.
func (r *Renderer) WriteHTML(w io.Writer) error {
	r.mu.RLock()
	p, has, version := r.post, r.has, r.version
	r.mu.RUnlock()

	data := cardData{Account: r.account, Empty: !has, Version: version}
	if has {
		caption, err := r.Caption(p.Caption)
		if err != nil {
			return err
		}
		data.ImageURL = r.imageURL(p.ImageURL)
		data.Caption = caption
		data.Hashtags = p.Hashtags
		data.PostID = p.PostID
	}
	return errors.Wrap(pageTemplate.Execute(w, data), "failed to render preview page")
}

// HTML is WriteHTML into a string.
func (r *Renderer) HTML() (string, error) {
	var buf bytes.Buffer
	if err := r.WriteHTML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Text renders the current post as a plain terminal card.
func (r *Renderer) Text() string {
	r.mu.RLock()
	p, has := r.post, r.has
	r.mu.RUnlock()
	if !has {
		return "(no post yet)"
	}

	var b strings.Builder
	b.WriteString("@" + r.account + "\n")
	if url := r.imageURL(p.ImageURL); url != "" {
		b.WriteString("[image] " + url + "\n")
	}
	b.WriteString("\n" + p.Caption.String() + "\n")
	if p.PostID != 0 {
		b.WriteString("\npost " + strconv.FormatInt(p.PostID, 10) + "\n")
	}
	return b.String()
}
