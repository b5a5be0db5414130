package client

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/creastudio/envelope"
)

func TestAuth_LoginStartsPersistedSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"), "login is anonymous")
		body := decodeBody(t, r)
		assert.Equal(t, "ana@example.com", body["email"])
		writeJSON(w, 200, `{"token":"jwt-1","user":{"id":7,"name":"Ana","email":"ana@example.com"}}`)
	}))
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "state", "session.json")
	session, err := LoadSession(path)
	require.NoError(t, err)
	c := New(Config{BaseURL: srv.URL}, session, nil)

	resp := c.Auth.Login(t.Context(), &LoginRequest{Email: "ana@example.com", Password: "secret"})
	require.True(t, resp.IsSuccess())
	assert.Equal(t, "jwt-1", resp.Data.Token)
	assert.Equal(t, "jwt-1", session.AccessToken())

	reloaded, err := LoadSession(path)
	require.NoError(t, err)
	assert.Equal(t, "jwt-1", reloaded.AccessToken())
	assert.Equal(t, int64(7), reloaded.User().ID)

	out := c.Auth.Logout()
	require.True(t, out.IsSuccess())
	assert.False(t, session.Authenticated())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestAuth_LoginErrors(t *testing.T) {
	testCases := []struct {
		name   string
		status int
		body   string
		code   envelope.Code
	}{
		{"bad credentials", 401, `{}`, envelope.CodeInvalidCredentials},
		{"invalid fields", 422, `{"validation":[{"field":"email","message":"invalid"}]}`, envelope.CodeValidation},
		{"no token", 200, `{"user":{"id":1}}`, envelope.CodeInvalidResponse},
		{"server down", 503, `{}`, envelope.CodeServiceUnavailable},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.status, tc.body)
			}))
			resp := c.Auth.Login(t.Context(), &LoginRequest{Email: "a@b.c", Password: "x"})
			require.True(t, resp.IsError())
			assert.Equal(t, tc.code, resp.Code())
			assert.False(t, c.Session().Authenticated())
		})
	}
}

func TestAuth_RegisterDoesNotSignIn(t *testing.T) {
	c, _ := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "+34600000000", body["whatsapp_number"])
		writeJSON(w, 201, `{"token":"jwt-2","user":{"id":8,"name":"Luis"}}`)
	}))

	resp := c.Auth.Register(t.Context(), &RegisterRequest{Name: "Luis", Email: "l@x.es", Password: "pw", WhatsAppNumber: "+34600000000"})
	require.True(t, resp.IsSuccess())
	assert.Equal(t, "Luis", resp.Data.Name)
	assert.False(t, c.Session().Authenticated())
}

func TestAuth_RegisterConflict(t *testing.T) {
	c, _ := newTestClient(t, "", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, 409, `{}`)
	}))

	resp := c.Auth.Register(t.Context(), &RegisterRequest{Email: "dup@x.es"})
	assert.Equal(t, envelope.CodeAlreadyExists, resp.Code())
}

func TestAuth_Verify(t *testing.T) {
	c, _ := newTestClient(t, "tok", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			writeJSON(w, 401, `{}`)
			return
		}
		writeJSON(w, 200, `{"user":{"id":1,"name":"Ana"}}`)
	}))

	resp := c.Auth.Verify(t.Context())
	require.True(t, resp.IsSuccess())
	assert.Equal(t, "Ana", resp.Data.Name)

	require.NoError(t, c.Session().Teardown())
	resp = c.Auth.Verify(t.Context())
	assert.Equal(t, envelope.CodeTokenExpired, resp.Code())
}

func TestAuth_Refresh(t *testing.T) {
	c, _ := newTestClient(t, "old", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		if body["refresh_token"] == "good" {
			writeJSON(w, 200, `{"token":"new","user":{"id":1}}`)
			return
		}
		writeJSON(w, 200, `{}`)
	}))

	resp := c.Auth.Refresh(t.Context(), "bad")
	assert.Equal(t, envelope.CodeInvalidRefreshToken, resp.Code())
	assert.Equal(t, "old", c.Session().AccessToken())

	resp = c.Auth.Refresh(t.Context(), "good")
	require.True(t, resp.IsSuccess())
	assert.Equal(t, "new", c.Session().AccessToken())
}
