package profile

import (
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultBaseURL is the local development backend.
const DefaultBaseURL = "http://localhost:5001"

// DefaultCompanyInfoMarker is the text the backend puts in generation errors
// when the account has no company profile yet.
const DefaultCompanyInfoMarker = "empresa"

// Profile is the configuration shared by the CLI, the client and the local
// preview server.
type Profile struct {
	// Backend
	BaseURL           string        // REST backend base URL
	RequestTimeout    time.Duration // per-request HTTP timeout (default: 120s)
	RequestsPerSecond float64       // client-side rate limit, 0 disables
	CompanyInfoMarker string        // substring signalling a missing company profile
	PostCacheSize     int           // entries kept by the post lookup cache
	PostCacheTTL      time.Duration // freshness of cached posts

	// Local state
	Mode        string
	Data        string // data directory (session file, journal)
	SessionFile string // persisted bearer token, defaults to <Data>/session.json
	JournalDSN  string // sqlite DSN for the transcript journal, empty disables it
	Version     string

	// Preview server
	Addr string
	Port int
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// JournalEnabled reports whether turns should be recorded.
func (p *Profile) JournalEnabled() bool {
	return p.JournalDSN != ""
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvOrDefaultFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// FromEnv fills the fields that are not set by flags from CREA_* variables.
// Values already present on the profile win.
func (p *Profile) FromEnv() {
	if p.BaseURL == "" {
		p.BaseURL = getEnvOrDefault("CREA_API_BASE_URL", DefaultBaseURL)
	}
	if p.RequestTimeout <= 0 {
		p.RequestTimeout = time.Duration(getEnvOrDefaultInt("CREA_REQUEST_TIMEOUT_SECONDS", 120)) * time.Second
	}
	if p.RequestsPerSecond <= 0 {
		p.RequestsPerSecond = getEnvOrDefaultFloat("CREA_REQUESTS_PER_SECOND", 0)
	}
	if p.CompanyInfoMarker == "" {
		p.CompanyInfoMarker = getEnvOrDefault("CREA_COMPANY_INFO_MARKER", DefaultCompanyInfoMarker)
	}
	if p.PostCacheSize <= 0 {
		p.PostCacheSize = getEnvOrDefaultInt("CREA_POST_CACHE_SIZE", 200)
	}
	if p.PostCacheTTL <= 0 {
		p.PostCacheTTL = time.Duration(getEnvOrDefaultInt("CREA_POST_CACHE_TTL_SECONDS", 60)) * time.Second
	}
	if p.SessionFile == "" {
		p.SessionFile = os.Getenv("CREA_SESSION_FILE")
	}
	if p.JournalDSN == "" {
		p.JournalDSN = os.Getenv("CREA_JOURNAL_DSN")
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		absDir, err := filepath.Abs(dataDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", errors.Wrapf(err, "unable to create data folder %s", dataDir)
	}
	return dataDir, nil
}

func defaultDataDir() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("AppData"), "creastudio")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".creastudio")
	}
	return ".creastudio"
}

func (p *Profile) Validate() error {
	if p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "dev"
	}

	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return errors.Wrapf(err, "invalid base url %q", p.BaseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.Errorf("base url %q must use http or https", p.BaseURL)
	}
	p.BaseURL = strings.TrimRight(p.BaseURL, "/")

	if p.RequestsPerSecond < 0 {
		return errors.Errorf("requests per second must not be negative, got %v", p.RequestsPerSecond)
	}

	if p.Data == "" {
		p.Data = defaultDataDir()
	}
	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check data dir", slog.String("data", p.Data), slog.String("error", err.Error()))
		return err
	}
	p.Data = dataDir

	if p.SessionFile == "" {
		p.SessionFile = filepath.Join(dataDir, "session.json")
	}
	if p.JournalDSN == "journal" {
		p.JournalDSN = filepath.Join(dataDir, "journal_"+p.Mode+".db")
	}

	return nil
}
