package notify

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDurations(t *testing.T) {
	testCases := []struct {
		level  Level
		want   time.Duration
		sticky bool
	}{
		{LevelSuccess, 5 * time.Second, false},
		{LevelError, 7 * time.Second, false},
		{LevelWarning, 6 * time.Second, false},
		{LevelInfo, 5 * time.Second, false},
		{LevelLoading, 0, true},
	}
	for _, tc := range testCases {
		t.Run(string(tc.level), func(t *testing.T) {
			n := New(tc.level, "t", "d")
			assert.Equal(t, tc.want, n.Duration)
			assert.Equal(t, tc.sticky, n.Sticky())
		})
	}
}

func TestCompanyInfoRequiredOutlastsErrors(t *testing.T) {
	n := CompanyInfoRequired()
	assert.Equal(t, CompanyInfoDuration, n.Duration)
	assert.Greater(t, n.Duration, DefaultDuration(LevelError))
}

func TestChannelDropsOldest(t *testing.T) {
	c := NewChannel(2)
	c.Notify(New(LevelInfo, "1", ""))
	c.Notify(New(LevelInfo, "2", ""))
	c.Notify(New(LevelInfo, "3", ""))

	first := <-c.C()
	second := <-c.C()
	assert.Equal(t, "2", first.Title)
	assert.Equal(t, "3", second.Title)
}

func TestLogAndFanout(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	var got []Notification
	n := Fanout(Log{Logger: logger}, nil, Func(func(n Notification) { got = append(got, n) }))
	n.Notify(New(LevelError, "Generation failed", "backend down"))

	require.Len(t, got, 1)
	assert.True(t, strings.Contains(buf.String(), "Generation failed"))
	assert.True(t, strings.Contains(buf.String(), "level=ERROR"))
}
