package version

import (
	"fmt"
	"strings"
)

// Version is the released version of the crea CLI.
// This value can be overridden at build time using ldflags:
//
//	go build -ldflags "-X github.com/hrygo/creastudio/internal/version.Version=v0.3.0"
var Version = "0.0.0-dev"

// DevVersion is the version reported in dev mode.
var DevVersion = Version

// GitCommit is the git commit hash at build time.
// Set via ldflags: -X github.com/hrygo/creastudio/internal/version.GitCommit=$(git rev-parse HEAD)
var GitCommit = "unknown"

// BuildTime is the build timestamp in RFC3339 format.
// Set via ldflags: -X github.com/hrygo/creastudio/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)
var BuildTime = "unknown"

func GetCurrentVersion(mode string) string {
	if mode == "dev" {
		return DevVersion
	}
	return Version
}

func shortCommit() string {
	if GitCommit == "" || GitCommit == "unknown" {
		return ""
	}
	if len(GitCommit) > 8 {
		return GitCommit[:8]
	}
	return GitCommit
}

// String returns the version string with optional commit hash.
func String() string {
	if c := shortCommit(); c != "" {
		return fmt.Sprintf("%s-%s", Version, c)
	}
	return Version
}

// UserAgent is sent with every backend request.
func UserAgent() string {
	return "crea/" + String()
}

// StringFull returns the complete version information including build metadata.
func StringFull() string {
	parts := []string{fmt.Sprintf("Version=%s", Version)}
	if c := shortCommit(); c != "" {
		parts = append(parts, fmt.Sprintf("Commit=%s", c))
	}
	if BuildTime != "" && BuildTime != "unknown" {
		parts = append(parts, fmt.Sprintf("BuildTime=%s", BuildTime))
	}
	return strings.Join(parts, " ")
}
