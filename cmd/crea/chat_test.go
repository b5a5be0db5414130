package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/creastudio/catalog"
	"github.com/hrygo/creastudio/client"
	"github.com/hrygo/creastudio/conversation"
	"github.com/hrygo/creastudio/envelope"
	"github.com/hrygo/creastudio/plugin/notify"
	"github.com/hrygo/creastudio/plugin/preview"
)

type stubLoader struct{}

func (stubLoader) LoadAll(context.Context) *envelope.Response[client.Catalogs] {
	return envelope.Success(client.Catalogs{
		Objectives: []client.CatalogEntry{{ID: 1, Name: "Engagement", IsActive: true}},
		Styles:     []client.CatalogEntry{{ID: 4, Name: "Minimal", IsActive: true}},
	}, "", nil)
}

type stubGenerator struct {
	generate   []*envelope.Response[client.ContentResult]
	lastGen    *client.GenerateRequest
	lastRegen  *client.RegenerateRequest
	regenerate *envelope.Response[client.ContentResult]
}

func (g *stubGenerator) Generate(_ context.Context, in *client.GenerateRequest) *envelope.Response[client.ContentResult] {
	g.lastGen = in
	resp := g.generate[0]
	g.generate = g.generate[1:]
	return resp
}

func (g *stubGenerator) Regenerate(_ context.Context, in *client.RegenerateRequest) *envelope.Response[client.ContentResult] {
	g.lastRegen = in
	return g.regenerate
}

func newTestLoop(t *testing.T, gen *stubGenerator) (*chatLoop, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	renderer := preview.New(preview.WithBaseURL("http://api.test"))
	ch := notify.NewChannel(8)
	l := &chatLoop{
		catalogs:      catalog.New(stubLoader{}, nil),
		renderer:      renderer,
		notifications: ch,
		out:           &out,
	}
	t.Cleanup(l.catalogs.Close)
	require.True(t, l.catalogs.Load(context.Background()).IsSuccess())
	l.ctrl = conversation.New(gen,
		conversation.WithPreview(renderer),
		conversation.WithNotifier(ch),
		conversation.WithRegenerateHook(l.setRegenerate),
	)
	return l, &out
}

func post(content, image string, id int64) *envelope.Response[client.ContentResult] {
	return envelope.Success(client.ContentResult{Content: content, ImageURL: image, PostID: id}, "", nil)
}

func TestChatGenerateAndRegenerate(t *testing.T) {
	gen := &stubGenerator{
		generate:   []*envelope.Response[client.ContentResult]{post("Body\n\nCTA\n\n#tag", "/static/1.png", 1)},
		regenerate: post("Body 2\n\nCTA 2\n\n#tag2", "/static/2.png", 2),
	}
	l, out := newTestLoop(t, gen)
	ctx := context.Background()

	assert.False(t, l.handle(ctx, "/objective engagement"))
	assert.False(t, l.handle(ctx, "/style 4"))
	assert.Contains(t, out.String(), "Selected Engagement")
	assert.Contains(t, out.String(), "Selected Minimal")

	assert.False(t, l.handle(ctx, "A post about spring"))
	require.NotNil(t, gen.lastGen)
	assert.EqualValues(t, 1, gen.lastGen.ObjectiveID)
	assert.EqualValues(t, 4, gen.lastGen.StyleID)
	assert.Contains(t, out.String(), "Here is your post:\n\nBody\n\nCTA\n\n#tag")
	assert.Contains(t, out.String(), "Image: http://api.test/static/1.png")

	out.Reset()
	assert.False(t, l.handle(ctx, "/regen"))
	require.NotNil(t, gen.lastRegen)
	assert.EqualValues(t, 1, gen.lastRegen.PostID)
	assert.Equal(t, "/static/1.png", gen.lastRegen.PreviousImagePath)
	assert.Contains(t, out.String(), "Body 2")
	assert.NotContains(t, out.String(), "Generate a new version")

	out.Reset()
	assert.False(t, l.handle(ctx, "/preview"))
	assert.Contains(t, out.String(), "Body 2")
}

func TestChatRegenerateBeforePost(t *testing.T) {
	l, out := newTestLoop(t, &stubGenerator{})
	l.handle(context.Background(), "/regen")
	assert.Contains(t, out.String(), "There is no post to regenerate yet.")
}

func TestChatRequiresObjective(t *testing.T) {
	gen := &stubGenerator{}
	l, out := newTestLoop(t, gen)
	l.handle(context.Background(), "hello")
	assert.Nil(t, gen.lastGen)
	assert.Contains(t, out.String(), "Please select an objective")
}

func TestChatCompanyInfoWarning(t *testing.T) {
	gen := &stubGenerator{generate: []*envelope.Response[client.ContentResult]{
		envelope.Error[client.ContentResult](envelope.CodeCompanyInfoRequired, "Company information required"),
	}}
	l, out := newTestLoop(t, gen)
	ctx := context.Background()
	l.handle(ctx, "/objective 1")
	l.handle(ctx, "hello")

	assert.Contains(t, out.String(), "Company information required")
	assert.Contains(t, out.String(), "[warning] Set up your company")
	assert.NotContains(t, out.String(), "Image:")
}

func TestChatResetDropsRegenerate(t *testing.T) {
	gen := &stubGenerator{generate: []*envelope.Response[client.ContentResult]{post("Body", "", 1)}}
	l, out := newTestLoop(t, gen)
	ctx := context.Background()
	l.handle(ctx, "/objective 1")
	l.handle(ctx, "hello")
	require.NotNil(t, l.regenerateFunc())

	l.handle(ctx, "/reset")
	assert.Nil(t, l.regenerateFunc())
	assert.Empty(t, l.ctrl.Turns())

	out.Reset()
	l.handle(ctx, "/regen")
	assert.Contains(t, out.String(), "There is no post to regenerate yet.")
}

func TestChatUnknownEntries(t *testing.T) {
	l, out := newTestLoop(t, &stubGenerator{})
	ctx := context.Background()
	l.handle(ctx, "/objective 99")
	l.handle(ctx, "/style Baroque")
	l.handle(ctx, "/bogus")

	assert.Contains(t, out.String(), `No entry "99"`)
	assert.Contains(t, out.String(), `No entry "Baroque"`)
	assert.Contains(t, out.String(), "Unknown command /bogus")
	assert.Zero(t, l.ctrl.Draft().ObjectiveID)
}

func TestChatImageAttachment(t *testing.T) {
	l, out := newTestLoop(t, &stubGenerator{})
	ctx := context.Background()

	l.handle(ctx, "/image /does/not/exist.png")
	assert.Contains(t, out.String(), "Could not read image")
	assert.Nil(t, l.ctrl.Draft().Image)

	l.ctrl.SetDraft("", &client.Upload{Filename: "a.png", ContentType: "image/png", Data: []byte{1}})
	l.handle(ctx, "/image")
	assert.Nil(t, l.ctrl.Draft().Image)
	assert.Contains(t, out.String(), "Image removed.")
}

func TestChatRunStopsOnQuitAndEOF(t *testing.T) {
	l, out := newTestLoop(t, &stubGenerator{})
	require.NoError(t, l.run(context.Background(), strings.NewReader("/help\n/quit\nnever read\n")))
	assert.Contains(t, out.String(), "/regen")

	l2, _ := newTestLoop(t, &stubGenerator{})
	require.NoError(t, l2.run(context.Background(), strings.NewReader("")))
}
