// Package conversation drives the generate and regenerate loop of one
// post-writing conversation.
//
// A Controller owns its turns and its current artifact. It allows one
// backend call at a time; a second Submit or Regenerate while one is in
// flight fails with ErrBusy and changes nothing.
package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/hrygo/creastudio/client"
	"github.com/hrygo/creastudio/envelope"
	"github.com/hrygo/creastudio/metrics"
	"github.com/hrygo/creastudio/plugin/notify"
)

type State int

const (
	StateIdle State = iota
	StateGenerating
	StateReady
	StateRegenerating
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateReady:
		return "ready"
	case StateRegenerating:
		return "regenerating"
	default:
		return "unknown"
	}
}

// Local rejections. Each is also shown to the user as an assistant turn.
var (
	ErrBusy              = errors.New("a generation is already in progress")
	ErrEmptyMessage      = errors.New("please write a message")
	ErrObjectiveRequired = errors.New("please select an objective")
	ErrNoArtifact        = errors.New("there is no post to regenerate yet")
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry of the transcript.
type Turn struct {
	Role    Role      `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Artifact is the latest generated post. It is replaced as a whole.
type Artifact struct {
	Content         string `json:"content"`
	ImageURL        string `json:"image_url"`
	OriginalMessage string `json:"original_message"`
	PostID          int64  `json:"post_id"`
}

// Post is what the preview shows.
type Post struct {
	Caption
	ImageURL string `json:"image_url"`
	PostID   int64  `json:"post_id"`
}

// Generator performs the backend calls. *client.ContentService satisfies it.
type Generator interface {
	Generate(ctx context.Context, in *client.GenerateRequest) *envelope.Response[client.ContentResult]
	Regenerate(ctx context.Context, in *client.RegenerateRequest) *envelope.Response[client.ContentResult]
}

// PreviewSink displays the latest post.
type PreviewSink interface {
	Show(p Post)
}

// Journal records turns. Failures are logged and otherwise ignored.
type Journal interface {
	Record(ctx context.Context, role, content string, at time.Time) error
}

// RegenerateFunc is handed to the host while an artifact exists.
type RegenerateFunc func(ctx context.Context) error

// SubmitInput is one user request for a first draft. Zero ids fall back to
// the current selection.
type SubmitInput struct {
	Message      string
	ObjectiveID  int64
	StyleID      int64
	TemplateID   int64
	ImageMode    client.ImageMode
	ColorPalette string
	Image        *client.Upload
}

// Draft is the pending input: what the user typed and picked but has not
// yet successfully submitted.
type Draft struct {
	Message     string
	Image       *client.Upload
	ObjectiveID int64
	StyleID     int64
}

type Option func(*Controller)

func WithPreview(p PreviewSink) Option { return func(c *Controller) { c.preview = p } }

func WithNotifier(n notify.Notifier) Option {
	return func(c *Controller) {
		if n == nil {
			n = notify.Discard
		}
		c.notifier = n
	}
}

func WithJournal(j Journal) Option { return func(c *Controller) { c.journal = j } }

func WithMetrics(e *metrics.Exporter) Option { return func(c *Controller) { c.metrics = e } }

// WithRegenerateHook registers a callback that receives the regenerate
// action when an artifact appears and nil when it goes away. The hook must
// not call back into the controller.
func WithRegenerateHook(hook func(RegenerateFunc)) Option {
	return func(c *Controller) { c.hook = hook }
}

func withClock(now func() time.Time) Option { return func(c *Controller) { c.now = now } }

// Controller is the conversation state machine:
// Idle -> Generating -> Ready <-> Regenerating, and back to Idle on Reset.
type Controller struct {
	gen      Generator
	preview  PreviewSink
	notifier notify.Notifier
	journal  Journal
	metrics  *metrics.Exporter
	hook     func(RegenerateFunc)
	now      func() time.Time

	mu       sync.Mutex
	state    State
	busy     bool
	epoch    uint64 // bumped by Reset; late results from an older epoch are dropped
	turns    []Turn
	artifact *Artifact
	draft    Draft

	hookMu sync.Mutex
	hooked bool // guarded by hookMu; what the hook was last told
}

func New(gen Generator, opts ...Option) *Controller {
	c := &Controller{
		gen:      gen,
		notifier: notify.Discard,
		now:      time.Now,
		turns:    []Turn{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Turns returns a copy of the transcript.
func (c *Controller) Turns() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.turns))
	copy(out, c.turns)
	return out
}

// Artifact returns a copy of the current artifact and whether one exists.
func (c *Controller) Artifact() (Artifact, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.artifact == nil {
		return Artifact{}, false
	}
	return *c.artifact, true
}

func (c *Controller) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// SetDraft stores pending input without submitting it.
func (c *Controller) SetDraft(message string, image *client.Upload) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Message = message
	c.draft.Image = image
}

// SetSelection picks the objective and style used when a request does not
// name one. Zero clears the choice.
func (c *Controller) SetSelection(objectiveID, styleID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.ObjectiveID = objectiveID
	c.draft.StyleID = styleID
}

// Submit asks for a first draft. Local validation failures and backend
// errors become assistant turns and notifications; the returned error says
// which one happened.
func (c *Controller) Submit(ctx context.Context, in SubmitInput) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}

	c.draft.Message = in.Message
	c.draft.Image = in.Image
	if in.ObjectiveID != 0 {
		c.draft.ObjectiveID = in.ObjectiveID
	}
	if in.StyleID != 0 {
		c.draft.StyleID = in.StyleID
	}

	var reject error
	switch {
	case strings.TrimSpace(in.Message) == "":
		reject = ErrEmptyMessage
	case c.draft.ObjectiveID == 0:
		reject = ErrObjectiveRequired
	}
	if reject != nil {
		turn := c.appendLocked(RoleAssistant, capitalize(reject.Error()))
		c.mu.Unlock()
		c.record(ctx, turn)
		c.notifier.Notify(notify.New(notify.LevelError, capitalize(reject.Error()), ""))
		return reject
	}

	req := &client.GenerateRequest{
		Message:      in.Message,
		ObjectiveID:  c.draft.ObjectiveID,
		StyleID:      c.draft.StyleID,
		TemplateID:   in.TemplateID,
		ImageMode:    in.ImageMode,
		ColorPalette: in.ColorPalette,
		Image:        in.Image,
	}
	userTurn := c.appendLocked(RoleUser, in.Message)
	c.state = StateGenerating
	c.busy = true
	epoch := c.epoch
	c.mu.Unlock()

	c.record(ctx, userTurn)
	slog.Debug("generating post", "objective_id", req.ObjectiveID, "style_id", req.StyleID, "image", req.Image != nil)

	c.metrics.GenerationStarted()
	resp := c.gen.Generate(ctx, req)
	c.metrics.GenerationFinished()

	return c.finish(ctx, epoch, resp, in.Message, "Post generated successfully")
}

// Regenerate asks for a variation of the current artifact. It needs an
// artifact and a selected objective.
func (c *Controller) Regenerate(ctx context.Context) error {
	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return ErrBusy
	}

	var reject error
	switch {
	case c.artifact == nil:
		reject = ErrNoArtifact
	case c.draft.ObjectiveID == 0:
		reject = ErrObjectiveRequired
	}
	if reject == ErrNoArtifact {
		c.mu.Unlock()
		c.notifier.Notify(notify.New(notify.LevelError, capitalize(reject.Error()), ""))
		return reject
	}
	if reject != nil {
		turn := c.appendLocked(RoleAssistant, capitalize(reject.Error()))
		c.mu.Unlock()
		c.record(ctx, turn)
		c.notifier.Notify(notify.New(notify.LevelError, capitalize(reject.Error()), ""))
		return reject
	}

	art := *c.artifact
	req := &client.RegenerateRequest{
		PreviousContent:   art.Content,
		OriginalMessage:   art.OriginalMessage,
		ObjectiveID:       c.draft.ObjectiveID,
		StyleID:           c.draft.StyleID,
		PostID:            art.PostID,
		PreviousImagePath: art.ImageURL,
	}
	userTurn := c.appendLocked(RoleUser, "Generate a new version")
	c.state = StateRegenerating
	c.busy = true
	epoch := c.epoch
	c.mu.Unlock()

	c.record(ctx, userTurn)
	slog.Debug("regenerating post", "post_id", art.PostID)

	c.metrics.GenerationStarted()
	resp := c.gen.Regenerate(ctx, req)
	c.metrics.GenerationFinished()

	return c.finish(ctx, epoch, resp, art.OriginalMessage, "New version generated")
}

// finish applies a backend result. Side effects that call out of the
// package run after the lock is released.
func (c *Controller) finish(ctx context.Context, epoch uint64, resp *envelope.Response[client.ContentResult], original, okTitle string) error {
	c.mu.Lock()
	c.busy = false
	if epoch != c.epoch {
		c.mu.Unlock()
		slog.Debug("dropping result of a reset conversation")
		return nil
	}

	if !resp.IsSuccess() {
		f := resp.Failure()
		if f == nil {
			// warning or info without a post
			f = &envelope.Failure{Code: envelope.CodeInvalidResponse, Message: "Invalid response from server"}
		}
		if c.artifact != nil {
			c.state = StateReady
		} else {
			c.state = StateIdle
		}
		turn := c.appendLocked(RoleAssistant, errorText(f))
		c.mu.Unlock()

		c.record(ctx, turn)
		c.notifier.Notify(notify.New(notify.LevelError, f.Message, f.Details))
		if f.Code == envelope.CodeCompanyInfoRequired {
			c.notifier.Notify(notify.CompanyInfoRequired())
		}
		return f
	}

	result := resp.Data
	caption := ParseCaption(result.Content)
	appeared := c.artifact == nil
	c.artifact = &Artifact{
		Content:         result.Content,
		ImageURL:        result.ImageURL,
		OriginalMessage: original,
		PostID:          result.PostID,
	}
	c.draft.Message = ""
	c.draft.Image = nil
	c.state = StateReady
	turn := c.appendLocked(RoleAssistant, summarize(caption))
	c.mu.Unlock()

	c.record(ctx, turn)
	if c.preview != nil {
		c.preview.Show(Post{Caption: caption, ImageURL: result.ImageURL, PostID: result.PostID})
	}
	if appeared {
		c.syncHook()
	}
	c.notifier.Notify(notify.New(notify.LevelSuccess, okTitle, ""))
	return nil
}

// Reset clears the conversation. A call still in flight keeps the
// controller busy until it returns, and its result is discarded.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.epoch++
	c.state = StateIdle
	c.turns = []Turn{}
	c.artifact = nil
	c.draft.Message = ""
	c.draft.Image = nil
	c.mu.Unlock()

	c.syncHook()
}

// syncHook tells the hook whether an artifact exists right now. Deliveries
// are serialized and re-read the artifact, so the last one always matches
// the controller state.
func (c *Controller) syncHook() {
	if c.hook == nil {
		return
	}
	c.hookMu.Lock()
	defer c.hookMu.Unlock()

	c.mu.Lock()
	want := c.artifact != nil
	c.mu.Unlock()
	if want == c.hooked {
		return
	}
	c.hooked = want
	if want {
		c.hook(c.Regenerate)
	} else {
		c.hook(nil)
	}
}

func (c *Controller) appendLocked(role Role, content string) Turn {
	t := Turn{Role: role, Content: content, At: c.now()}
	c.turns = append(c.turns, t)
	c.metrics.RecordTurn(string(role))
	return t
}

func (c *Controller) record(ctx context.Context, t Turn) {
	if c.journal == nil {
		return
	}
	if err := c.journal.Record(ctx, string(t.Role), t.Content, t.At); err != nil {
		slog.Warn("failed to record turn", "role", t.Role, "error", err)
	}
}

func summarize(c Caption) string {
	var b strings.Builder
	b.WriteString("Here is your post:")
	if c.Body != "" {
		b.WriteString("\n\n")
		b.WriteString(c.Body)
	}
	if c.CTA != "" {
		b.WriteString("\n\n")
		b.WriteString(c.CTA)
	}
	if len(c.Hashtags) > 0 {
		b.WriteString("\n\n")
		b.WriteString(strings.Join(c.Hashtags, " "))
	}
	return b.String()
}

func errorText(f *envelope.Failure) string {
	if f.Details != "" && f.Details != f.Message {
		return f.Message + ": " + f.Details
	}
	return f.Message
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
