package courier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"bizbranches/pkg/logger"
)

// tokenRenewalMargin renews the cached bearer token this long before its
// reported expiry.
const tokenRenewalMargin = 60 * time.Second

// Client talks to the courier's city/area catalog. The bearer token is
// cached across requests and renewed shortly before expiry.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client
	log        *logger.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(baseURL, username, password string, log *logger.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		username:   username,
		password:   password,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		log:        log,
	}
}

// Get performs an authenticated GET and decodes the response body, which the
// upstream wraps inconsistently, into a flat list of records.
func (c *Client) Get(ctx context.Context, path string) ([]map[string]any, error) {
	token, err := c.bearerToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build courier request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("courier request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read courier response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("courier responded %d for %s", resp.StatusCode, path)
	}
	return decodeRecords(body)
}

func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry.Add(-tokenRenewalMargin)) {
		return c.token, nil
	}

	payload, _ := json.Marshal(map[string]string{
		"username": c.username,
		"password": c.password,
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build courier login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("courier login failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read courier login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("courier login responded %d", resp.StatusCode)
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to decode courier login response: %w", err)
	}

	token := FirstString(parsed, "token", "access_token", "accessToken")
	if token == "" {
		return "", fmt.Errorf("courier login response carried no token")
	}

	c.token = token
	c.tokenExpiry = time.Now().Add(tokenLifetime(parsed))
	c.log.Debug("Courier token renewed", "expires_at", c.tokenExpiry)
	return c.token, nil
}

// tokenLifetime reads the expiry from whichever field the upstream used,
// defaulting to an hour.
func tokenLifetime(parsed map[string]any) time.Duration {
	for _, key := range []string{"expires_in", "expiresIn"} {
		if v, ok := parsed[key]; ok {
			if seconds, ok := asFloat(v); ok && seconds > 0 {
				return time.Duration(seconds) * time.Second
			}
		}
	}
	return time.Hour
}

// decodeRecords accepts either a bare JSON array or an object wrapping the
// array under data/cities/areas/result.
func decodeRecords(body []byte) ([]map[string]any, error) {
	var records []map[string]any
	if err := json.Unmarshal(body, &records); err == nil {
		return records, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(body, &wrapped); err != nil {
		return nil, fmt.Errorf("failed to decode courier records: %w", err)
	}
	for _, key := range []string{"data", "cities", "areas", "result"} {
		raw, ok := wrapped[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &records); err == nil {
			return records, nil
		}
	}
	return nil, fmt.Errorf("courier response carried no record list")
}

// FirstString walks the keys in order and returns the first value present,
// stringifying numeric identifiers.
func FirstString(record map[string]any, keys ...string) string {
	for _, key := range keys {
		v, ok := record[key]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if t != "" {
				return t
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		}
	}
	return ""
}

func asFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		var f float64
		if _, err := fmt.Sscanf(t, "%f", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
