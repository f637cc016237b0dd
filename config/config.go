package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
)

// Config holds all run configuration. Values come from environment
// variables (repo secrets in the orchestrated setup) with CLI flags
// layered on top by cmd/laredo.
type Config struct {
	// StartURL is the direct URL of the results page. Required.
	StartURL string

	// CountySlug is used in output filenames and record ids.
	CountySlug string

	// OutDir is where JSON/CSV output and debug artifacts are written.
	OutDir string

	// SkipCSV writes JSON only.
	SkipCSV bool

	Browser BrowserConfig
	Auth    AuthConfig
	Frame   FrameConfig
	Table   TableConfig
	Walk    WalkConfig
	Mapper  MapperConfig
	Wait    WaitConfig
	Log     LogConfig
}

// BrowserConfig controls the Rod browser instance.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in CI containers).
	NoSandbox bool // default: true

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is an optional proxy URL for all requests.
	Proxy string

	// Stealth injects anti-automation-detection JS before navigation.
	Stealth bool // default: true
}

// AuthConfig describes the optional login step. When Username and Password
// are both empty the step is a no-op; when they are set, the form selectors
// must resolve within the wait budget or the run fails hard.
type AuthConfig struct {
	Username string
	Password string

	UsernameSelector string // default: "input[name='username']"
	PasswordSelector string // default: "input[type='password']"
	SubmitSelector   string // default: "button[type='submit']"

	// PostLoginWait is a fixed settle delay after submitting. When
	// PostLoginSelector is set it takes precedence: login completes when
	// the selector appears.
	PostLoginWait     time.Duration // default: 3s
	PostLoginSelector string
}

// Configured reports whether credentials were supplied.
func (a AuthConfig) Configured() bool {
	return a.Username != "" && a.Password != ""
}

// FrameConfig is the optional iframe hint. Index applies when CSS is empty;
// -1 means no index hint.
type FrameConfig struct {
	CSS   string
	Index int // default: -1
}

// Hinted reports whether an explicit frame hint was supplied.
func (f FrameConfig) Hinted() bool {
	return f.CSS != "" || f.Index >= 0
}

// TableConfig describes how to find the row set.
type TableConfig struct {
	// CSS is the explicit row/table selector; tried first when set.
	CSS string

	// RowFallbacks is the ordered list of known data-table patterns tried
	// when CSS is empty or matches nothing.
	RowFallbacks []string
}

// WalkConfig controls pagination.
type WalkConfig struct {
	// MaxPages bounds the walk regardless of pager behavior.
	MaxPages int // default: 25

	// NextSelectors is the ordered list of "next page" affordance patterns.
	NextSelectors []string

	// AdvancesPerSecond throttles page advances (politeness).
	AdvancesPerSecond float64 // default: 1.0
}

// MapperConfig controls row-to-record normalization.
type MapperConfig struct {
	// MaxParties is the number of Party1..N fields per record.
	MaxParties int // default: 6

	// DaysBack skips rows whose Doc Date is older than N days; 0 disables.
	DaysBack int // default: 2

	// FieldsFile optionally points at a YAML field-map override.
	FieldsFile string
}

// WaitConfig bounds every polling loop in the pipeline.
type WaitConfig struct {
	// StepTimeout is the budget for a single resolution step (table wait,
	// frame sweep, advance settle).
	StepTimeout time.Duration // default: 30s

	// PollInterval is the pause between polls inside a step.
	PollInterval time.Duration // default: 800ms

	// NavTimeout is the budget for the initial navigation alone.
	NavTimeout time.Duration // default: 180s
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
	Path   string // rotating log file; empty disables the file sink
}

// DefaultRowFallbacks are the conventional PrimeNG data-table patterns
// observed in prior page dumps, tried in order after the explicit selector.
var DefaultRowFallbacks = []string{
	"table[role='table'] tbody tr",
	"table.p-datatable-table tbody tr",
	"#pn_id_910-table tbody tr",
	"table[role='table']",
}

// DefaultNextSelectors are the pager "next" affordance patterns tried in order.
var DefaultNextSelectors = []string{
	"button.p-paginator-next",
	".p-paginator-next",
	"a[rel='next']",
	"a.next",
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		StartURL:   os.Getenv("LAREDO_URL"),
		CountySlug: envOr("LAREDO_COUNTY_SLUG", "st-charles-county"),
		OutDir:     envOr("LAREDO_OUT_DIR", "."),
		SkipCSV:    envBoolOr("LAREDO_SKIP_CSV", false),
		Browser: BrowserConfig{
			Headless:   envBoolOr("LAREDO_HEADLESS", true),
			NoSandbox:  envBoolOr("LAREDO_NO_SANDBOX", true),
			BrowserBin: os.Getenv("LAREDO_BROWSER_BIN"),
			Proxy:      os.Getenv("LAREDO_PROXY"),
			Stealth:    envBoolOr("LAREDO_STEALTH", true),
		},
		Auth: AuthConfig{
			Username:          os.Getenv("LAREDO_USERNAME"),
			Password:          os.Getenv("LAREDO_PASSWORD"),
			UsernameSelector:  envOr("LAREDO_LOGIN_USER_CSS", "input[name='username']"),
			PasswordSelector:  envOr("LAREDO_LOGIN_PASS_CSS", "input[type='password']"),
			SubmitSelector:    envOr("LAREDO_LOGIN_SUBMIT_CSS", "button[type='submit']"),
			PostLoginWait:     envDurationOr("LAREDO_POST_LOGIN_WAIT", 3*time.Second),
			PostLoginSelector: os.Getenv("LAREDO_POST_LOGIN_CSS"),
		},
		Frame: FrameConfig{
			CSS:   os.Getenv("LAREDO_IFRAME_CSS"),
			Index: envIntOr("LAREDO_IFRAME_INDEX", -1),
		},
		Table: TableConfig{
			CSS:          os.Getenv("LAREDO_TABLE_CSS"),
			RowFallbacks: envSliceOr("LAREDO_ROW_FALLBACKS", DefaultRowFallbacks),
		},
		Walk: WalkConfig{
			MaxPages:          envIntOr("LAREDO_MAX_PAGES", 25),
			NextSelectors:     envSliceOr("LAREDO_NEXT_SELECTORS", DefaultNextSelectors),
			AdvancesPerSecond: envFloatOr("LAREDO_ADVANCE_RPS", 1.0),
		},
		Mapper: MapperConfig{
			MaxParties: envIntOr("LAREDO_MAX_PARTIES", 6),
			DaysBack:   envIntOr("LAREDO_DAYS_BACK", 2),
			FieldsFile: os.Getenv("LAREDO_FIELDS_FILE"),
		},
		Wait: WaitConfig{
			StepTimeout:  envDurationOr("LAREDO_STEP_TIMEOUT", 30*time.Second),
			PollInterval: envDurationOr("LAREDO_POLL_INTERVAL", 800*time.Millisecond),
			NavTimeout:   envDurationOr("LAREDO_NAV_TIMEOUT", 180*time.Second),
		},
		Log: LogConfig{
			Level:  envOr("LAREDO_LOG_LEVEL", "info"),
			Format: envOr("LAREDO_LOG_FORMAT", "text"),
			Path:   envOr("LAREDO_LOG_PATH", "laredo.logs"),
		},
	}
}

// Validate checks required fields and parses every configured CSS selector
// so bad selectors fail before a browser is launched.
func (c *Config) Validate() error {
	if c.StartURL == "" {
		return fmt.Errorf("start URL is required (flag --start-url or LAREDO_URL)")
	}
	if c.CountySlug == "" {
		return fmt.Errorf("county slug must not be empty")
	}
	if c.Walk.MaxPages <= 0 {
		return fmt.Errorf("max pages must be > 0")
	}
	if c.Mapper.MaxParties <= 0 {
		return fmt.Errorf("max parties must be > 0")
	}
	if c.Mapper.DaysBack < 0 {
		return fmt.Errorf("days back must be >= 0")
	}
	if c.Wait.StepTimeout <= 0 {
		return fmt.Errorf("step timeout must be > 0")
	}
	if c.Wait.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be > 0")
	}
	if c.Walk.AdvancesPerSecond <= 0 {
		return fmt.Errorf("advance rate must be > 0")
	}
	if len(c.Table.RowFallbacks) == 0 {
		return fmt.Errorf("at least one row fallback selector is required")
	}

	selectors := map[string]string{
		"iframe":     c.Frame.CSS,
		"table":      c.Table.CSS,
		"login user": c.Auth.UsernameSelector,
		"login pass": c.Auth.PasswordSelector,
		"submit":     c.Auth.SubmitSelector,
		"post-login": c.Auth.PostLoginSelector,
	}
	for name, sel := range selectors {
		if sel == "" {
			continue
		}
		if _, err := cascadia.Parse(sel); err != nil {
			return fmt.Errorf("invalid %s selector %q: %w", name, sel, err)
		}
	}
	for _, sel := range c.Table.RowFallbacks {
		if _, err := cascadia.Parse(sel); err != nil {
			return fmt.Errorf("invalid row fallback selector %q: %w", sel, err)
		}
	}
	for _, sel := range c.Walk.NextSelectors {
		if _, err := cascadia.Parse(sel); err != nil {
			return fmt.Errorf("invalid next selector %q: %w", sel, err)
		}
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
