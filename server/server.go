// Package server hosts the local preview page, the post feed and the
// Prometheus endpoint while a chat session runs.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/creastudio/client"
	"github.com/hrygo/creastudio/envelope"
	"github.com/hrygo/creastudio/internal/profile"
	"github.com/hrygo/creastudio/metrics"
	"github.com/hrygo/creastudio/plugin/preview"
)

// PostLister backs the /feed route. *client.PostService satisfies it.
type PostLister interface {
	List(ctx context.Context, page, perPage int) *envelope.Response[client.PostPage]
}

type Server struct {
	Profile *profile.Profile
	Preview *preview.Renderer
	Metrics *metrics.Exporter
	Posts   PostLister

	echoServer *echo.Echo
	listener   net.Listener
}

func NewServer(profile *profile.Profile, renderer *preview.Renderer, exporter *metrics.Exporter, posts PostLister) *Server {
	s := &Server{
		Profile: profile,
		Preview: renderer,
		Metrics: exporter,
		Posts:   posts,
	}

	e := echo.New()
	e.Debug = profile.IsDev()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(noStore)
	s.echoServer = e

	s.registerRoutes()
	return s
}

func noStore(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.Response().Header().Set("X-Content-Type-Options", "nosniff")
		c.Response().Header().Set(echo.HeaderCacheControl, "no-cache, no-store, must-revalidate")
		return next(c)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}

// Start listens on Profile.Addr:Profile.Port and serves in the background.
func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", address)
	}
	s.listener = listener
	s.echoServer.Listener = listener

	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("preview server stopped", "error", err)
		}
	}()
	slog.Info("preview server started", "addr", listener.Addr().String())
	return nil
}

// Addr is the bound address once Start has returned.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown preview server", "error", err)
	}
	slog.Info("preview server stopped properly")
}
