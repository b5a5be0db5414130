package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/hrygo/creastudio/catalog"
	"github.com/hrygo/creastudio/client"
	"github.com/hrygo/creastudio/conversation"
	"github.com/hrygo/creastudio/plugin/notify"
	"github.com/hrygo/creastudio/plugin/preview"
	"github.com/hrygo/creastudio/plugin/webhook"
	"github.com/hrygo/creastudio/server"
)

const chatHelp = `Type a message to generate a post. Commands:
  /regen             generate a new version of the current post
  /reset             start over
  /objective ID|NAME select the post objective
  /style ID|NAME     select the visual style
  /image [PATH]      attach an image to the next message, or drop it
  /catalogs          list objectives and styles
  /preview           show the current post
  /help              show this help
  /quit              leave`

func newChatCmd() *cobra.Command {
	var (
		serve     bool
		journal   bool
		objective string
		style     string
		defaults  conversation.SubmitInput
		imageMode string
		hookURL   string
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Write posts interactively",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), terminationSignals...)
			defer cancel()

			c, err := newClient()
			if err != nil {
				return err
			}
			if !c.Session().Authenticated() {
				return errors.New("not signed in, run `crea login` first")
			}

			account := "your_brand"
			if u := c.Session().User(); u != nil && u.Name != "" {
				account = u.Name
			}
			renderer := preview.New(preview.WithBaseURL(c.BaseURL()), preview.WithAccount(account))
			notifications := notify.NewChannel(16)

			loop := &chatLoop{
				catalogs:      catalog.New(c.Catalog, exporter),
				renderer:      renderer,
				notifications: notifications,
				out:           cmd.OutOrStdout(),
				defaults:      defaults,
			}
			loop.defaults.ImageMode = client.ImageMode(imageMode)
			defer loop.catalogs.Close()

			var sink conversation.PreviewSink = renderer
			if hookURL != "" {
				sink = webhook.Fanout{renderer, webhook.NewSink(hookURL, account)}
			}

			opts := []conversation.Option{
				conversation.WithPreview(sink),
				conversation.WithNotifier(notify.Fanout(notifications, notify.Log{Logger: slog.Default()})),
				conversation.WithMetrics(exporter),
				conversation.WithRegenerateHook(loop.setRegenerate),
			}

			if journal || instanceProfile.JournalEnabled() {
				s, err := openStore(ctx)
				if err != nil {
					return err
				}
				defer s.Close()
				j := s.NewJournal()
				opts = append(opts, conversation.WithJournal(j))
				fmt.Fprintf(cmd.ErrOrStderr(), "Recording transcript %s\n", j.UID())
			}

			if serve {
				srv := server.NewServer(instanceProfile, renderer, exporter, c.Posts)
				if err := srv.Start(ctx); err != nil {
					return err
				}
				defer srv.Shutdown(context.Background())
				fmt.Fprintf(cmd.ErrOrStderr(), "Preview at http://%s/preview\n", srv.Addr())
			}

			loop.ctrl = conversation.New(c.Content, opts...)

			if resp := loop.catalogs.Load(ctx); !resp.IsSuccess() {
				printError(cmd.ErrOrStderr(), resp.Err())
			}
			if objective != "" {
				loop.handle(ctx, "/objective "+objective)
			}
			if style != "" {
				loop.handle(ctx, "/style "+style)
			}

			fmt.Fprintln(loop.out, chatHelp)
			return loop.run(ctx, cmd.InOrStdin())
		},
	}
	f := cmd.Flags()
	f.BoolVar(&serve, "serve", false, "serve the preview page on --addr/--port")
	f.BoolVar(&journal, "journal", false, "record the conversation in the local journal")
	f.StringVar(&objective, "objective", "", "initial objective id or name")
	f.StringVar(&style, "style", "", "initial style id or name")
	f.Int64Var(&defaults.TemplateID, "template", 0, "image template id")
	f.StringVar(&imageMode, "image-mode", "", "auto or original, for attached images")
	f.StringVar(&defaults.ColorPalette, "palette", "", "color palette hint")
	f.StringVar(&hookURL, "webhook", os.Getenv("CREA_WEBHOOK_URL"), "post every generated post to this url")
	return cmd
}

// chatLoop reads user lines and drives a Controller.
type chatLoop struct {
	ctrl          *conversation.Controller
	catalogs      *catalog.Cache
	renderer      *preview.Renderer
	notifications *notify.Channel
	out           io.Writer
	defaults      conversation.SubmitInput

	printed   int
	showImage bool

	mu         sync.Mutex
	regenerate conversation.RegenerateFunc
}

func (l *chatLoop) setRegenerate(fn conversation.RegenerateFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.regenerate = fn
}

func (l *chatLoop) regenerateFunc() conversation.RegenerateFunc {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.regenerate
}

func (l *chatLoop) run(ctx context.Context, in io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprint(l.out, "> ")
		select {
		case <-ctx.Done():
			fmt.Fprintln(l.out)
			return nil
		case line, ok := <-lines:
			if !ok || l.handle(ctx, line) {
				return nil
			}
		}
	}
}

// handle processes one input line and reports whether the loop should end.
func (l *chatLoop) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	defer l.flush()

	if !strings.HasPrefix(line, "/") {
		if line == "" {
			return false
		}
		in := l.defaults
		in.Message = line
		in.Image = l.ctrl.Draft().Image
		l.showImage = l.ctrl.Submit(ctx, in) == nil
		return false
	}

	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch name {
	case "/quit", "/exit":
		return true
	case "/help":
		fmt.Fprintln(l.out, chatHelp)
	case "/regen":
		fn := l.regenerateFunc()
		if fn == nil {
			fmt.Fprintln(l.out, "There is no post to regenerate yet.")
			return false
		}
		l.showImage = fn(ctx) == nil
	case "/reset":
		l.ctrl.Reset()
		l.printed = 0
		fmt.Fprintln(l.out, "Conversation cleared.")
	case "/objective":
		l.selectEntry(arg, l.catalogs.Objective, l.catalogs.ObjectiveByName, func(id int64) {
			l.ctrl.SetSelection(id, l.ctrl.Draft().StyleID)
		})
	case "/style":
		l.selectEntry(arg, l.catalogs.Style, l.catalogs.StyleByName, func(id int64) {
			l.ctrl.SetSelection(l.ctrl.Draft().ObjectiveID, id)
		})
	case "/image":
		l.attach(arg)
	case "/catalogs":
		fmt.Fprintln(l.out, "Objectives")
		_ = printCatalog(l.out, l.catalogs.ActiveObjectives())
		fmt.Fprintln(l.out, "Styles")
		_ = printCatalog(l.out, l.catalogs.ActiveStyles())
	case "/preview":
		fmt.Fprintln(l.out, l.renderer.Text())
	default:
		fmt.Fprintf(l.out, "Unknown command %s, try /help\n", name)
	}
	return false
}

// selectEntry resolves an id or a name against the catalog. Ids are accepted
// unchecked when the catalogs could not be loaded.
func (l *chatLoop) selectEntry(arg string, byID func(int64) (client.CatalogEntry, bool), byName func(string) (client.CatalogEntry, bool), set func(int64)) {
	if arg == "" {
		fmt.Fprintln(l.out, "Give an id or a name, see /catalogs")
		return
	}
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		if e, ok := byID(id); ok {
			set(e.ID)
			fmt.Fprintf(l.out, "Selected %s\n", e.Name)
			return
		}
		if !l.catalogs.Loaded() {
			set(id)
			fmt.Fprintf(l.out, "Selected %d\n", id)
			return
		}
	} else if e, ok := byName(arg); ok {
		set(e.ID)
		fmt.Fprintf(l.out, "Selected %s\n", e.Name)
		return
	}
	fmt.Fprintf(l.out, "No entry %q, see /catalogs\n", arg)
}

func (l *chatLoop) attach(path string) {
	d := l.ctrl.Draft()
	if path == "" {
		l.ctrl.SetDraft(d.Message, nil)
		fmt.Fprintln(l.out, "Image removed.")
		return
	}
	up, err := client.OpenUpload(path)
	if err != nil {
		fmt.Fprintf(l.out, "Could not read image: %v\n", err)
		return
	}
	if f := client.ValidateImage(up); f != nil {
		fmt.Fprintf(l.out, "%s: %s\n", f.Message, f.Details)
		return
	}
	l.ctrl.SetDraft(d.Message, up)
	fmt.Fprintf(l.out, "Attached %s\n", up.Filename)
}

// flush prints assistant turns added since the last call, the image of a
// fresh post and pending notifications.
func (l *chatLoop) flush() {
	turns := l.ctrl.Turns()
	if l.printed > len(turns) {
		l.printed = 0
	}
	for _, t := range turns[l.printed:] {
		if t.Role == conversation.RoleAssistant {
			fmt.Fprintf(l.out, "\n%s\n\n", t.Content)
		}
	}
	l.printed = len(turns)

	if l.showImage {
		l.showImage = false
		if url := l.renderer.Snapshot().ImageURL; url != "" {
			fmt.Fprintf(l.out, "Image: %s\n\n", url)
		}
	}

	for {
		select {
		case n := <-l.notifications.C():
			if n.Level == notify.LevelError || n.Level == notify.LevelSuccess {
				// already visible as a turn
				continue
			}
			fmt.Fprintf(l.out, "[%s] %s", n.Level, n.Title)
			if n.Description != "" {
				fmt.Fprintf(l.out, ": %s", n.Description)
			}
			fmt.Fprintln(l.out)
		default:
			return
		}
	}
}
