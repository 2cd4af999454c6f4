package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/kilianp07/fleetpool/auth"
	"github.com/kilianp07/fleetpool/core/model"
)

// Supported source formats.
const (
	FormatCSV    = "csv"
	FormatYAML   = "yaml"
	FormatJSON   = "json"
	FormatSQLite = "sqlite"
)

// ErrUnsupportedFormat is returned when no loader matches the source.
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// Config locates the journey table, either a local file or an HTTP URL.
type Config struct {
	Path string `json:"path"`
	// URL is fetched instead of Path when set.
	URL string `json:"url"`
	// Auth authenticates URL requests with OAuth2 client credentials.
	Auth auth.Conf `json:"auth"`
	// Format overrides detection from the file extension.
	Format string `json:"format"`
	// Table is the SQLite table name; defaults to "journeys".
	Table string `json:"table"`
}

// Configured reports whether a source is set.
func (c Config) Configured() bool { return c.Path != "" || c.URL != "" }

// source returns the URL when set, the path otherwise.
func (c Config) source() string {
	if c.URL != "" {
		return c.URL
	}
	return c.Path
}

// DetectFormat returns the configured format or infers it from the path or
// the URL path.
func (c Config) DetectFormat() (string, error) {
	if c.Format != "" {
		f := strings.ToLower(c.Format)
		switch f {
		case FormatCSV, FormatYAML, FormatJSON, FormatSQLite:
			return f, nil
		case "yml":
			return FormatYAML, nil
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, c.Format)
	}
	name := c.Path
	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil {
			return "", fmt.Errorf("dataset url: %w", err)
		}
		name = u.Path
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return FormatCSV, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, c.source())
}

// Load reads and validates all journeys from the configured source.
func Load(ctx context.Context, cfg Config) ([]model.Journey, error) {
	if !cfg.Configured() {
		return nil, fmt.Errorf("dataset path or url is required")
	}
	format, err := cfg.DetectFormat()
	if err != nil {
		return nil, err
	}
	if cfg.URL != "" {
		return Fetch(ctx, cfg, nil)
	}
	if format == FormatSQLite {
		store, err := OpenSQLite(cfg.Path, cfg.Table)
		if err != nil {
			return nil, err
		}
		defer func() { _ = store.Close() }()
		return store.Journeys(ctx)
	}

	f, err := os.Open(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()
	return decode(f, format)
}

func decode(r io.Reader, format string) ([]model.Journey, error) {
	switch format {
	case FormatCSV:
		return ReadCSV(r)
	case FormatYAML:
		return ReadYAML(r)
	case FormatJSON:
		return ReadJSON(r)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

func validateAll(journeys []model.Journey) error {
	for i, j := range journeys {
		if err := j.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i+1, err)
		}
	}
	return nil
}
