package server

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/creastudio/envelope"
	"github.com/hrygo/creastudio/internal/version"
	"github.com/hrygo/creastudio/plugin/feed"
)

const feedPageSize = 50

func (s *Server) registerRoutes() {
	e := s.echoServer

	e.GET("/healthz", s.healthz)
	e.GET("/preview", s.previewPage)
	e.GET("/preview.json", s.previewJSON)
	e.GET("/preview.txt", s.previewText)
	if s.Posts != nil {
		e.GET("/feed", s.feed)
	}
	if s.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))
	}
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.String(),
	})
}

func (s *Server) previewPage(c echo.Context) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return s.Preview.WriteHTML(c.Response())
}

func (s *Server) previewJSON(c echo.Context) error {
	return c.JSON(http.StatusOK, s.Preview.Snapshot())
}

func (s *Server) previewText(c echo.Context) error {
	return c.String(http.StatusOK, s.Preview.Text())
}

func (s *Server) feed(c echo.Context) error {
	format, err := feed.ParseFormat(c.QueryParam("format"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	resp := s.Posts.List(c.Request().Context(), 1, feedPageSize)
	if !resp.IsSuccess() {
		status := http.StatusBadGateway
		switch resp.Code() {
		case envelope.CodeUnauthorized, envelope.CodeTokenExpired:
			status = http.StatusUnauthorized
		}
		return c.JSON(status, resp)
	}

	f := feed.Build(resp.Data.Posts, feed.Options{
		Title:       "Generated posts",
		Description: "Post history",
		BaseURL:     s.Profile.BaseURL,
	})
	c.Response().Header().Set(echo.HeaderContentType, feed.ContentType(format))
	c.Response().WriteHeader(http.StatusOK)
	return feed.Write(c.Response(), f, format)
}
