// Package photosapi is a minimal client for the photo service REST API,
// covering only the listing endpoints the indexer consumes: album listing,
// shared-album listing and media-items-in-album search. Transient-failure
// retry is the transport's concern; a hard failure here is fatal to the
// current indexing pass.
package photosapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultAPIBase = "https://photoslibrary.googleapis.com/v1"

// Page size constants are fixed by the service contract.
const (
	AlbumPageSize = 50
	MediaPageSize = 100
)

// Sentinel errors for API status classes.
var (
	ErrUnauthorized = errors.New("photos API: unauthorized")
	ErrForbidden    = errors.New("photos API: forbidden")
	ErrNotFound     = errors.New("photos API: not found")
)

// TokenSource supplies a bearer token for each request, refreshing it if
// necessary.
type TokenSource interface {
	Token() (string, error)
}

// Client is an authenticated photo service API client.
type Client struct {
	tokens  TokenSource
	apiBase string
	http    *http.Client
}

// New creates a Client with the given token source and API base URL.
// If apiBase is empty, the public service endpoint is used.
func New(tokens TokenSource, apiBase string) *Client {
	if apiBase == "" {
		apiBase = defaultAPIBase
	}
	apiBase = strings.TrimRight(apiBase, "/")

	return &Client{
		tokens:  tokens,
		apiBase: apiBase,
		http: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// do executes the request with the bearer token attached.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	token, err := c.tokens.Token()
	if err != nil {
		return nil, fmt.Errorf("obtaining access token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if req.Header.Get("Content-Type") == "" && req.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.http.Do(req)
}

// doJSON sends a request and decodes the JSON response into out.
func (c *Client) doJSON(method, url string, body, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkStatus(resp); err != nil {
		return err
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// url builds an API URL from path segments.
func (c *Client) url(parts ...string) string {
	return c.apiBase + "/" + strings.Join(parts, "/")
}

// checkStatus returns a typed error for non-2xx responses.
func checkStatus(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusNotFound:
		return ErrNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("photos API error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
