package client

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hrygo/creastudio/envelope"
)

// AuthService signs users in and out. Login and Refresh start the session;
// Logout tears it down.
type AuthService struct {
	c *Client
}

type authResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func decodeAuth(body []byte) *authResponse {
	out := &authResponse{}
	_ = json.Unmarshal(body, out)
	return out
}

func (s *AuthService) Login(ctx context.Context, in *LoginRequest) *envelope.Response[AuthResult] {
	const op = "auth-login"
	req, err := jsonRequest(http.MethodPost, pathLogin, op, in)
	if err != nil {
		return record(s.c, op, envelope.Error[AuthResult](envelope.CodeInternal, "Could not build request",
			envelope.WithDetails(err.Error())))
	}
	req.anonymous = true

	body, err := s.c.do(ctx, req)
	if err != nil {
		return record(s.c, op, translate(err,
			on(http.StatusUnauthorized, func(*envelope.ErrorPayload) *envelope.Response[AuthResult] {
				return envelope.LoginFailed[AuthResult]()
			}),
			invalidFields[AuthResult]("Invalid sign-in data", "Check that the email and password are correct"),
		))
	}
	return record(s.c, op, s.start(decodeAuth(body), "Signed in successfully"))
}

// Register creates an account. It does not sign the user in.
func (s *AuthService) Register(ctx context.Context, in *RegisterRequest) *envelope.Response[User] {
	const op = "auth-register"
	req, err := jsonRequest(http.MethodPost, pathRegister, op, in)
	if err != nil {
		return record(s.c, op, envelope.Error[User](envelope.CodeInternal, "Could not build request",
			envelope.WithDetails(err.Error())))
	}
	req.anonymous = true

	body, err := s.c.do(ctx, req)
	if err != nil {
		return record(s.c, op, translate(err,
			on(http.StatusConflict, func(*envelope.ErrorPayload) *envelope.Response[User] {
				return envelope.AlreadyExists[User]("User", "An account with this email already exists")
			}),
			invalidFields[User]("Invalid registration data", "Check that every field is correct"),
		))
	}
	resp := decodeAuth(body)
	if resp.Token == "" || resp.User == nil {
		return record(s.c, op, envelope.InvalidResponse[User]("The server did not return a valid token"))
	}
	return record(s.c, op, envelope.Success(*resp.User, "User created successfully", nil))
}

// Verify checks the session token with the backend and returns its user.
func (s *AuthService) Verify(ctx context.Context) *envelope.Response[User] {
	const op = "auth-verify"
	body, err := s.c.do(ctx, &request{method: http.MethodGet, path: pathVerify, endpoint: op})
	if err != nil {
		return record(s.c, op, translate[User](err))
	}
	resp := decodeAuth(body)
	if resp.User == nil {
		return record(s.c, op, envelope.Error[User](envelope.CodeInvalidToken, "Invalid token",
			envelope.WithDetails("The token provided is not valid")))
	}
	return record(s.c, op, envelope.Success(*resp.User, "Token is valid", nil))
}

// Refresh exchanges a refresh token for a new session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) *envelope.Response[AuthResult] {
	const op = "auth-refresh"
	req, err := jsonRequest(http.MethodPost, pathRefresh, op, map[string]string{"refresh_token": refreshToken})
	if err != nil {
		return record(s.c, op, envelope.Error[AuthResult](envelope.CodeInternal, "Could not build request",
			envelope.WithDetails(err.Error())))
	}
	body, err := s.c.do(ctx, req)
	if err != nil {
		return record(s.c, op, translate[AuthResult](err))
	}
	resp := decodeAuth(body)
	if resp.Token == "" {
		return record(s.c, op, envelope.Error[AuthResult](envelope.CodeInvalidRefreshToken, "Invalid refresh token",
			envelope.WithDetails("The token could not be renewed")))
	}
	return record(s.c, op, s.start(resp, "Token renewed successfully"))
}

// Logout is local: the backend keeps no session state.
func (s *AuthService) Logout() *envelope.Response[struct{}] {
	if err := s.c.session.Teardown(); err != nil {
		slog.Warn("failed to clear session", "error", err)
		return envelope.Warning("Signed out", []string{err.Error()}, struct{}{})
	}
	return envelope.Success(struct{}{}, "Signed out successfully", nil)
}

func (s *AuthService) start(resp *authResponse, message string) *envelope.Response[AuthResult] {
	if resp.Token == "" {
		return envelope.InvalidResponse[AuthResult]("The server did not return a valid token")
	}
	if err := s.c.session.Init(resp.Token, resp.User); err != nil {
		slog.Warn("failed to persist session", "error", err)
		return envelope.Warning(message, []string{"The session could not be saved: " + err.Error()},
			AuthResult{Token: resp.Token, User: resp.User})
	}
	return envelope.Success(AuthResult{Token: resp.Token, User: resp.User}, message, nil)
}
