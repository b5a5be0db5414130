package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/creastudio/envelope"
)

// newTestClient starts a backend stub and returns a client signed in with
// token "tok" (unless token is empty).
func newTestClient(t *testing.T, token string, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	session := NewSession()
	if token != "" {
		require.NoError(t, session.Init(token, &User{ID: 1, Name: "Ana"}))
	}
	return New(Config{BaseURL: srv.URL + "/"}, session, nil), srv
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestClient_Headers(t *testing.T) {
	var got http.Header
	c, _ := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		writeJSON(w, 200, `{"success":true,"data":{"objectives":[]}}`)
	}))

	resp := c.Catalog.Objectives(t.Context())
	require.True(t, resp.IsSuccess())
	assert.Equal(t, "Bearer tok", got.Get("Authorization"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
	assert.True(t, strings.HasPrefix(got.Get("User-Agent"), "crea/"))
}

func TestClient_EmptyTokenStillSendsBearer(t *testing.T) {
	var auth string
	c, _ := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		writeJSON(w, 401, `{"message":"missing token"}`)
	}))

	resp := c.Catalog.Styles(t.Context())
	require.True(t, resp.IsError())
	assert.Equal(t, envelope.CodeTokenExpired, resp.Code())
	assert.True(t, strings.HasPrefix(auth, "Bearer"))
}

func TestClient_NoResponseIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url}, NewSession(), nil)
	resp := c.Posts.List(t.Context(), 1, 10)
	require.True(t, resp.IsError())
	assert.Equal(t, envelope.CodeNetwork, resp.Code())
	assert.Equal(t, "Connection error", resp.Message)
}

func TestClient_RateLimitedCallsStillComplete(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, 200, `{"success":true,"data":{"styles":[]}}`)
	}))
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL, RequestsPerSecond: 100}, nil, nil)
	for i := 0; i < 3; i++ {
		assert.True(t, c.Catalog.Styles(t.Context()).IsSuccess())
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_CanceledContextIsNetworkError(t *testing.T) {
	c, _ := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 200, `{}`)
	}))
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	resp := c.Catalog.Objectives(ctx)
	assert.Equal(t, envelope.CodeNetwork, resp.Code())
}

func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.NewDecoder(r.Body).Decode(&m))
	return m
}
