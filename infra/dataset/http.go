package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/kilianp07/fleetpool/auth"
	"github.com/kilianp07/fleetpool/core/model"
)

// maxDownloadBytes bounds remote journey tables.
const maxDownloadBytes = 64 << 20

var defaultHTTPClient = &http.Client{Timeout: 30 * time.Second}

// Fetch downloads the journey table at cfg.URL. Requests carry a bearer
// token when cfg.Auth is enabled. A nil client uses a 30s timeout client.
func Fetch(ctx context.Context, cfg Config, client *http.Client) ([]model.Journey, error) {
	format, err := cfg.DetectFormat()
	if err != nil {
		return nil, err
	}
	if format == FormatSQLite {
		return nil, fmt.Errorf("%w: sqlite over http", ErrUnsupportedFormat)
	}
	if client == nil {
		client = defaultHTTPClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	if cfg.Auth.Enabled() {
		if err := auth.NewClientCred(cfg.Auth).SetAuthHeader(req); err != nil {
			return nil, fmt.Errorf("dataset auth: %w", err)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dataset: unexpected status %s", resp.Status)
	}
	return decode(io.LimitReader(resp.Body, maxDownloadBytes), format)
}
