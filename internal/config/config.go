// Package config holds the runtime settings of the image-adjust-mcp server.
//
// Settings come from environment variables first; command-line flags
// registered with BindFlags override them.
//
//	IMAGE_ADJUST_OUTPUT_DIR        directory exports are written to
//	IMAGE_ADJUST_LOG_LEVEL         "debug" enables debug logging
//	IMAGE_ADJUST_GEOMETRY_POLICY   "live" (default) or "historied"
//	IMAGE_ADJUST_HISTORY_LIMIT     max history entries, 0 for unbounded
//	IMAGE_ADJUST_FETCH_TIMEOUT     remote image timeout, e.g. "30s"
//	IMAGE_ADJUST_MAX_FETCH_BYTES   remote image size limit in bytes
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/ironsheep/image-adjust-mcp/internal/session"
	"github.com/ironsheep/image-adjust-mcp/internal/source"
)

// Environment variable names.
const (
	EnvOutputDir      = "IMAGE_ADJUST_OUTPUT_DIR"
	EnvLogLevel       = "IMAGE_ADJUST_LOG_LEVEL"
	EnvGeometryPolicy = "IMAGE_ADJUST_GEOMETRY_POLICY"
	EnvHistoryLimit   = "IMAGE_ADJUST_HISTORY_LIMIT"
	EnvFetchTimeout   = "IMAGE_ADJUST_FETCH_TIMEOUT"
	EnvMaxFetchBytes  = "IMAGE_ADJUST_MAX_FETCH_BYTES"
)

// Config is the server configuration.
type Config struct {
	OutputDir      string
	LogLevel       string
	GeometryPolicy string
	HistoryLimit   int
	FetchTimeout   time.Duration
	MaxFetchBytes  int64
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		OutputDir:      filepath.Join(os.TempDir(), "image-adjust-mcp"),
		LogLevel:       "info",
		GeometryPolicy: string(session.GeometryLive),
		HistoryLimit:   0,
		FetchTimeout:   source.DefaultFetchTimeout,
		MaxFetchBytes:  source.DefaultMaxBytes,
	}
}

// Load reads the configuration from the process environment.
func Load() (Config, error) {
	return FromEnv(os.LookupEnv)
}

// EnvError reports an environment variable that could not be parsed. Flag
// names the command-line flag that can override it.
type EnvError struct {
	Name  string
	Value string
	Flag  string
	Err   error
}

func (e *EnvError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Name, e.Value, e.Err)
}

func (e *EnvError) Unwrap() error { return e.Err }

// FromEnv builds a configuration from defaults overridden by lookup. A value
// that does not parse leaves its default in place and is reported as an
// *EnvError; every variable is still read. Without parse errors the result
// is validated.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	var errs []error

	if v, ok := lookup(EnvOutputDir); ok && v != "" {
		cfg.OutputDir = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := lookup(EnvGeometryPolicy); ok && v != "" {
		cfg.GeometryPolicy = v
	}
	if v, ok := lookup(EnvHistoryLimit); ok && v != "" {
		if n, err := strconv.Atoi(v); err != nil {
			errs = append(errs, &EnvError{Name: EnvHistoryLimit, Value: v, Flag: "history-limit", Err: err})
		} else {
			cfg.HistoryLimit = n
		}
	}
	if v, ok := lookup(EnvFetchTimeout); ok && v != "" {
		if d, err := time.ParseDuration(v); err != nil {
			errs = append(errs, &EnvError{Name: EnvFetchTimeout, Value: v, Flag: "fetch-timeout", Err: err})
		} else {
			cfg.FetchTimeout = d
		}
	}
	if v, ok := lookup(EnvMaxFetchBytes); ok && v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err != nil {
			errs = append(errs, &EnvError{Name: EnvMaxFetchBytes, Value: v, Flag: "max-fetch-bytes", Err: err})
		} else {
			cfg.MaxFetchBytes = n
		}
	}

	if len(errs) > 0 {
		return cfg, errors.Join(errs...)
	}
	return cfg, cfg.Validate()
}

// Resolve finishes loading once fs has been parsed. envErr is the error
// FromEnv returned. Parse errors for variables whose flag was given on the
// command line are dropped; any others are returned. Otherwise the final
// configuration is validated.
func (c Config) Resolve(envErr error, fs *pflag.FlagSet) error {
	var remaining []error
	for _, err := range flatten(envErr) {
		var ee *EnvError
		if !errors.As(err, &ee) {
			// validation errors are rechecked below
			continue
		}
		if fs != nil && fs.Changed(ee.Flag) {
			continue
		}
		remaining = append(remaining, err)
	}
	if len(remaining) > 0 {
		return errors.Join(remaining...)
	}
	return c.Validate()
}

func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}

// BindFlags registers a flag for every setting. The flag defaults are the
// current values of c, so flags given on the command line win over the
// environment.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&c.OutputDir, "output-dir", "o", c.OutputDir, "Directory exported images are written to ($"+EnvOutputDir+")")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: info or debug ($"+EnvLogLevel+")")
	fs.StringVar(&c.GeometryPolicy, "geometry-policy", c.GeometryPolicy, "Whether zoom/rotation changes enter undo history: live or historied ($"+EnvGeometryPolicy+")")
	fs.IntVar(&c.HistoryLimit, "history-limit", c.HistoryLimit, "Maximum undo history entries, 0 for unbounded ($"+EnvHistoryLimit+")")
	fs.DurationVar(&c.FetchTimeout, "fetch-timeout", c.FetchTimeout, "Timeout for loading images from URLs ($"+EnvFetchTimeout+")")
	fs.Int64Var(&c.MaxFetchBytes, "max-fetch-bytes", c.MaxFetchBytes, "Size limit for images loaded from URLs ($"+EnvMaxFetchBytes+")")
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if _, err := session.ParseGeometryPolicy(c.GeometryPolicy); err != nil {
		return err
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history limit must not be negative, got %d", c.HistoryLimit)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.MaxFetchBytes <= 0 {
		return fmt.Errorf("max fetch bytes must be positive, got %d", c.MaxFetchBytes)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	return nil
}

// Debug reports whether debug logging is enabled.
func (c Config) Debug() bool {
	return strings.EqualFold(c.LogLevel, "debug")
}

// SessionOptions returns the session settings. Call Validate first; an
// invalid geometry policy falls back to live.
func (c Config) SessionOptions() session.Options {
	policy, err := session.ParseGeometryPolicy(c.GeometryPolicy)
	if err != nil {
		policy = session.GeometryLive
	}
	return session.Options{
		GeometryPolicy: policy,
		HistoryLimit:   c.HistoryLimit,
		Debug:          c.Debug(),
	}
}
