package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/gmail/v1"
)

// DefaultTokenFileName is the token file name used inside the config directory.
const DefaultTokenFileName = "token.json"

// ErrTokenMissing indicates no OAuth token has been stored yet.
var ErrTokenMissing = errors.New("google: no stored token, run 'payslip-saver auth'")

// Scopes are the OAuth scopes requested for the mailbox and the archive.
// gmail.modify covers searching, relabelling and sending.
var Scopes = []string{
	gmail.GmailModifyScope,
	drive.DriveScope,
}

// LoadClientConfig reads an OAuth client secret file downloaded from the
// Google Cloud console.
func LoadClientConfig(path string, scopes ...string) (*oauth2.Config, error) {
	if len(scopes) == 0 {
		scopes = Scopes
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read client secret file: %w", err)
	}
	cfg, err := googleoauth.ConfigFromJSON(b, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse client secret file: %w", err)
	}
	return cfg, nil
}

// TokenFile persists an OAuth token as JSON.
type TokenFile struct {
	Path string
}

// Load reads the stored token. A missing file yields ErrTokenMissing.
func (f TokenFile) Load() (*oauth2.Token, error) {
	b, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrTokenMissing
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(b, &tok); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &tok, nil
}

// Save writes the token with owner-only permissions.
func (f TokenFile) Save(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(f.Path), 0700); err != nil {
		return fmt.Errorf("create token directory: %w", err)
	}
	b, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(f.Path, b, 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// NewTokenSource returns a TokenSource that refreshes the stored token
// through cfg and writes refreshed tokens back to the file.
func NewTokenSource(ctx context.Context, cfg *oauth2.Config, file TokenFile) (oauth2.TokenSource, error) {
	tok, err := file.Load()
	if err != nil {
		return nil, err
	}
	return &persistingTokenSource{
		base: oauth2.ReuseTokenSource(tok, cfg.TokenSource(ctx, tok)),
		file: file,
		last: tok.AccessToken,
	}, nil
}

// persistingTokenSource saves every newly minted access token.
type persistingTokenSource struct {
	mu   sync.Mutex
	base oauth2.TokenSource
	file TokenFile
	last string
}

// Token implements oauth2.TokenSource.
func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.file.Save(tok); err != nil {
			return nil, err
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
