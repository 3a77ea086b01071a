// Package links talks to the protected-link worker that fronts file
// downloads. The worker stores a short-lived token and redirects holders
// of the token URL to the real file; the backend never exposes source
// URLs to customers directly.
package links

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ectroshop9/coinshop/internal/config"
)

// Provider errors.
var (
	// ErrDisabled indicates the worker integration is turned off.
	ErrDisabled = errors.New("protected-link provider disabled")
	// ErrUnavailable indicates the worker call failed or timed out.
	ErrUnavailable = errors.New("protected-link provider unavailable")
)

// Link is a minted protected download link.
type Link struct {
	Token     string    // Opaque token embedded in the URL.
	URL       string    // Full download URL for the customer.
	ExpiresAt time.Time // When the worker stops honoring the token.
}

// Client calls the protected-link worker over HTTP.
type Client struct {
	cfg  config.WorkerConfig
	http *http.Client
}

// NewClient constructs a Client. The timeout bounds every worker call; a
// slow worker fails the download request instead of blocking it.
func NewClient(cfg config.WorkerConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
	}
}

// storeRequest is the worker /_api/store payload.
type storeRequest struct {
	Token        string         `json:"token"`
	FileURL      string         `json:"file_url"`
	ExpiresHours int            `json:"expires_hours"`
	Metadata     map[string]any `json:"metadata"`
}

// storeResponse is the worker /_api/store reply.
type storeResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"download_url"`
	ExpiresAt   *int64 `json:"expires_at"` // Unix milliseconds, optional.
}

// CreateProtectedLink registers a fresh token with the worker and returns
// the time-boxed download URL for fileURL.
func (c *Client) CreateProtectedLink(ctx context.Context, fileURL string, metadata map[string]any) (*Link, error) {
	if !c.cfg.Enabled {
		return nil, ErrDisabled
	}

	token := newToken()
	expiresHours := c.cfg.ExpiresHours
	if expiresHours <= 0 {
		expiresHours = 2
	}
	if metadata == nil {
		metadata = map[string]any{}
	}

	body, errMarshal := json.Marshal(storeRequest{
		Token:        token,
		FileURL:      fileURL,
		ExpiresHours: expiresHours,
		Metadata:     metadata,
	})
	if errMarshal != nil {
		return nil, fmt.Errorf("links: marshal store request: %w", errMarshal)
	}

	base := strings.TrimRight(c.cfg.URL, "/")
	req, errReq := http.NewRequestWithContext(ctx, http.MethodPost, base+"/_api/store", bytes.NewReader(body))
	if errReq != nil {
		return nil, fmt.Errorf("links: build store request: %w", errReq)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Secret", c.cfg.Secret)

	resp, errDo := c.http.Do(req)
	if errDo != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, errDo)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: worker status %d", ErrUnavailable, resp.StatusCode)
	}

	var parsed storeResponse
	if errDecode := json.NewDecoder(resp.Body).Decode(&parsed); errDecode != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, errDecode)
	}
	if !parsed.Success {
		return nil, fmt.Errorf("%w: worker rejected token", ErrUnavailable)
	}

	expiresAt := time.Now().UTC().Add(time.Duration(expiresHours) * time.Hour)
	if parsed.ExpiresAt != nil {
		expiresAt = time.UnixMilli(*parsed.ExpiresAt).UTC()
	}
	downloadURL := parsed.DownloadURL
	if downloadURL == "" {
		downloadURL = fmt.Sprintf("%s/d/%s", base, token)
	}

	return &Link{Token: token, URL: downloadURL, ExpiresAt: expiresAt}, nil
}

// newToken returns a 32-byte URL-safe random token.
func newToken() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}
