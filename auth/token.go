// Package auth manages the OAuth token used by the photos API client: a
// token file next to the index database, refresh against the token
// endpoint, and a one-time browser login flow that captures the redirect on
// a local listener.
package auth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const tokenEndpoint = "https://oauth2.googleapis.com/token"

// Token is the persisted OAuth credential.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	Expiry       time.Time `json:"expiry"`
}

// Valid reports whether the access token is usable without a refresh,
// with a small safety margin.
func (t *Token) Valid() bool {
	return t.AccessToken != "" && time.Now().Add(time.Minute).Before(t.Expiry)
}

// FileTokenSource serves tokens from a JSON file, refreshing through the
// token endpoint when the stored access token has expired. It satisfies
// photosapi.TokenSource.
type FileTokenSource struct {
	Path         string
	ClientID     string
	ClientSecret string

	http  *http.Client
	token *Token
}

// NewFileTokenSource creates a source backed by the token file at path.
func NewFileTokenSource(path, clientID, clientSecret string) *FileTokenSource {
	return &FileTokenSource{
		Path:         path,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		http:         &http.Client{Timeout: 30 * time.Second},
	}
}

// Token returns a valid access token, loading and refreshing as needed.
func (s *FileTokenSource) Token() (string, error) {
	if s.token == nil {
		tok, err := LoadToken(s.Path)
		if err != nil {
			return "", err
		}
		s.token = tok
	}
	if s.token.Valid() {
		return s.token.AccessToken, nil
	}
	if err := s.refresh(); err != nil {
		return "", err
	}
	return s.token.AccessToken, nil
}

// refresh exchanges the refresh token for a new access token and persists
// the result.
func (s *FileTokenSource) refresh() error {
	if s.token.RefreshToken == "" {
		return fmt.Errorf("token at %s has no refresh token; run login again", s.Path)
	}
	form := url.Values{
		"client_id":     {s.ClientID},
		"client_secret": {s.ClientSecret},
		"refresh_token": {s.token.RefreshToken},
		"grant_type":    {"refresh_token"},
	}
	resp, err := s.http.PostForm(tokenEndpoint, form)
	if err != nil {
		return fmt.Errorf("token refresh failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token refresh failed with status %s", resp.Status)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fmt.Errorf("decoding token refresh response: %w", err)
	}
	s.token.AccessToken = body.AccessToken
	s.token.Expiry = time.Now().Add(time.Duration(body.ExpiresIn) * time.Second)
	return SaveToken(s.Path, s.token)
}

// LoadToken reads a token file.
func LoadToken(path string) (*Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no token at %s; run login first", path)
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parsing token file %s: %w", path, err)
	}
	return &tok, nil
}

// SaveToken writes the token file with owner-only permissions.
func SaveToken(path string, tok *Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing token file %s: %w", path, err)
	}
	return nil
}

// exchangeCode trades an authorization code for a token pair.
func exchangeCode(httpc *http.Client, clientID, clientSecret, code, redirectURI string) (*Token, error) {
	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"code":          {strings.TrimSpace(code)},
		"grant_type":    {"authorization_code"},
		"redirect_uri":  {redirectURI},
	}
	resp, err := httpc.PostForm(tokenEndpoint, form)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("code exchange failed with status %s", resp.Status)
	}

	var body struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding code exchange response: %w", err)
	}
	return &Token{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		Expiry:       time.Now().Add(time.Duration(body.ExpiresIn) * time.Second),
	}, nil
}
