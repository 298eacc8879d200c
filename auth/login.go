package auth

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

const (
	authEndpoint = "https://accounts.google.com/o/oauth2/v2/auth"
	authScope    = "https://www.googleapis.com/auth/photoslibrary.readonly " +
		"https://www.googleapis.com/auth/photoslibrary.sharing"
)

// Login runs the interactive authorization flow: prints the consent URL,
// listens on localhost:port for the redirect, exchanges the code and writes
// the token file. Blocks until the redirect arrives or the context is
// cancelled.
func Login(ctx context.Context, tokenPath, clientID, clientSecret string, port int) error {
	redirectURI := fmt.Sprintf("http://localhost:%d/callback", port)

	q := url.Values{
		"client_id":     {clientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {authScope},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	log.Printf("open this URL in a browser to authorize access:")
	log.Printf("%s?%s", authEndpoint, q.Encode())

	codeCh := make(chan string, 1)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Default().Handler)
	r.Get("/callback", func(w http.ResponseWriter, req *http.Request) {
		code := req.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing authorization code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Authorized. You can close this window.")
		codeCh <- code
	})

	server := &http.Server{
		Addr:        fmt.Sprintf("localhost:%d", port),
		Handler:     r,
		ReadTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return fmt.Errorf("login redirect listener failed: %w", err)
	case <-ctx.Done():
		server.Close()
		return ctx.Err()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = server.Shutdown(shutdownCtx)

	httpc := &http.Client{Timeout: 30 * time.Second}
	tok, err := exchangeCode(httpc, clientID, clientSecret, code, redirectURI)
	if err != nil {
		return err
	}
	if err := SaveToken(tokenPath, tok); err != nil {
		return err
	}
	log.Printf("authorization complete, token saved to %s", tokenPath)
	return nil
}
