// Package webhook forwards generated posts to an HTTP endpoint.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/creastudio/conversation"
)

var (
	// timeout is the timeout for webhook request. Default to 30 seconds.
	timeout = 30 * time.Second
)

const ActivityPostGenerated = "post.generated"

type WebhookRequestPayload struct {
	Post         conversation.Post `json:"post"`
	Caption      string            `json:"caption"`
	URL          string            `json:"url"`
	ActivityType string            `json:"activityType"`
	Account      string            `json:"account,omitempty"`
	Timestamp    time.Time         `json:"timestamp"`
}

// Post posts the message to webhook endpoint.
func Post(ctx context.Context, requestPayload *WebhookRequestPayload) error {
	body, err := json.Marshal(requestPayload)
	if err != nil {
		return errors.Wrapf(err, "failed to marshal webhook request to %s", requestPayload.URL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, requestPayload.URL, bytes.NewBuffer(body))
	if err != nil {
		return errors.Wrapf(err, "failed to construct webhook request to %s", requestPayload.URL)
	}

	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{
		Timeout: timeout,
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "failed to post webhook to %s", requestPayload.URL)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read webhook response from %s", requestPayload.URL)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Errorf("failed to post webhook %s, status code: %d, response body: %s", requestPayload.URL, resp.StatusCode, b)
	}

	// Receivers may answer {"code": n, "message": "..."}; anything else is accepted.
	response := &struct {
		Message string `json:"message"`
		Code    int    `json:"code"`
	}{}
	if len(bytes.TrimSpace(b)) > 0 && json.Unmarshal(b, response) == nil && response.Code != 0 {
		return errors.Errorf("receive error code sent by webhook server, code %d, msg: %s", response.Code, response.Message)
	}

	return nil
}

// Sink is a conversation.PreviewSink that posts every shown post to URL
// without blocking the conversation.
type Sink struct {
	URL     string
	Account string

	now func() time.Time
	// done is called after each delivery attempt; tests use it to wait.
	done func(error)
}

func NewSink(url, account string) *Sink {
	return &Sink{URL: url, Account: account, now: time.Now}
}

func (s *Sink) Show(p conversation.Post) {
	payload := &WebhookRequestPayload{
		Post:         p,
		Caption:      p.Caption.String(),
		URL:          s.URL,
		ActivityType: ActivityPostGenerated,
		Account:      s.Account,
		Timestamp:    s.now(),
	}
	go func() {
		err := Post(context.Background(), payload)
		if err != nil {
			slog.Warn("Failed to dispatch webhook asynchronously",
				slog.String("url", payload.URL),
				slog.String("activityType", payload.ActivityType),
				slog.Any("err", err))
		}
		if s.done != nil {
			s.done(err)
		}
	}()
}

// Fanout shows a post on every sink in order.
type Fanout []conversation.PreviewSink

func (f Fanout) Show(p conversation.Post) {
	for _, s := range f {
		if s != nil {
			s.Show(p)
		}
	}
}
