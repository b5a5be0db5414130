// Package notify carries short-lived user notifications from the
// conversation controller to whatever front end hosts it.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelWarning Level = "warning"
	LevelInfo    Level = "info"
	LevelLoading Level = "loading"
)

// CompanyInfoDuration is how long the setup reminder stays visible.
const CompanyInfoDuration = 10 * time.Second

var durations = map[Level]time.Duration{
	LevelSuccess: 5 * time.Second,
	LevelError:   7 * time.Second,
	LevelWarning: 6 * time.Second,
	LevelInfo:    5 * time.Second,
	LevelLoading: 0,
}

// DefaultDuration returns how long a level is shown. Zero means the
// notification stays until dismissed.
func DefaultDuration(level Level) time.Duration {
	return durations[level]
}

// Notification is one transient message.
type Notification struct {
	Level       Level         `json:"level"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// New builds a notification with the level's default duration.
func New(level Level, title, description string) Notification {
	return Notification{
		Level:       level,
		Title:       title,
		Description: description,
		Duration:    DefaultDuration(level),
	}
}

// Sticky reports whether the notification has no expiry.
func (n Notification) Sticky() bool { return n.Duration <= 0 }

// CompanyInfoRequired directs the user to complete the business profile.
func CompanyInfoRequired() Notification {
	n := New(LevelWarning, "Set up your company", "Complete your company information before generating posts")
	n.Duration = CompanyInfoDuration
	return n
}

// Notifier receives notifications. Implementations must not block.
type Notifier interface {
	Notify(n Notification)
}

// Func adapts a function to a Notifier.
type Func func(n Notification)

func (f Func) Notify(n Notification) { f(n) }

// Discard drops every notification.
var Discard Notifier = Func(func(Notification) {})

// Log writes notifications to a slog logger.
type Log struct {
	Logger *slog.Logger
}

func (l Log) Notify(n Notification) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	level := slog.LevelInfo
	switch n.Level {
	case LevelError:
		level = slog.LevelError
	case LevelWarning:
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, n.Title,
		"description", n.Description,
		"kind", string(n.Level),
		"duration", n.Duration,
	)
}

// Channel buffers notifications for a consumer loop. When the buffer is full
// the oldest pending notification is dropped.
type Channel struct {
	mu sync.Mutex
	ch chan Notification
}

func NewChannel(size int) *Channel {
	if size <= 0 {
		size = 16
	}
	return &Channel{ch: make(chan Notification, size)}
}

func (c *Channel) Notify(n Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		select {
		case c.ch <- n:
			return
		default:
		}
		select {
		case <-c.ch:
		default:
		}
	}
}

// C returns the receive side.
func (c *Channel) C() <-chan Notification { return c.ch }

// Fanout delivers to every notifier in order.
func Fanout(notifiers ...Notifier) Notifier {
	return Func(func(n Notification) {
		for _, nt := range notifiers {
			if nt != nil {
				nt.Notify(n)
			}
		}
	})
}
