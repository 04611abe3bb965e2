package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/payslip-saver/internal/adapters/driving/oauth"
	"github.com/custodia-labs/payslip-saver/internal/connectors/google"
)

// Flags for auth.
var (
	authManual  bool
	authTimeout time.Duration
)

// openBrowser is replaced in tests.
var openBrowser = oauth.OpenBrowser

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Grant access to Gmail and Google Drive",
	Long: `Runs the Google OAuth consent flow with the client secret file from
google.client_secret_file and stores the resulting token in google.token_file.

By default a browser is opened and the redirect is captured on a local port.
With --manual the authorisation code is pasted into the terminal instead.`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().BoolVar(&authManual, "manual", false, "Paste the authorisation code instead of using a local redirect")
	authCmd.Flags().DurationVar(&authTimeout, "timeout", 5*time.Minute, "How long to wait for the browser redirect")
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured
	}

	s, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if s.Google.ClientSecretFile == "" {
		return errors.New("google.client_secret_file is not set")
	}
	if s.Google.TokenFile == "" {
		return errors.New("google.token_file is not set")
	}

	cfg, err := google.LoadClientConfig(s.Google.ClientSecretFile)
	if err != nil {
		return err
	}

	tok, err := authorize(cmd, cfg)
	if err != nil {
		return err
	}

	if err := (google.TokenFile{Path: s.Google.TokenFile}).Save(tok); err != nil {
		return err
	}
	cmd.Printf("Token saved to %s\n", s.Google.TokenFile)
	return nil
}

// authorize obtains a token through the consent screen.
func authorize(cmd *cobra.Command, cfg *oauth2.Config) (*oauth2.Token, error) {
	ctx := cmd.Context()
	state, err := randomState()
	if err != nil {
		return nil, err
	}
	verifier := oauth2.GenerateVerifier()

	var code string
	if authManual {
		code, err = manualCode(cmd, cfg, state, verifier)
	} else {
		code, err = loopbackCode(ctx, cmd, cfg, state, verifier)
	}
	if err != nil {
		return nil, err
	}

	tok, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, fmt.Errorf("exchange authorisation code: %w", err)
	}
	return tok, nil
}

func loopbackCode(ctx context.Context, cmd *cobra.Command, cfg *oauth2.Config, state, verifier string) (string, error) {
	server := oauth.NewCallbackServer(0, state)
	if err := server.Start(); err != nil {
		return "", err
	}
	defer server.Stop() //nolint:errcheck // best-effort shutdown

	cfg.RedirectURL = server.RedirectURI()
	authURL := authCodeURL(cfg, state, verifier)

	cmd.Println("Opening the browser to authorise payslip-saver. If it does not open, visit:")
	cmd.Println(authURL)
	if err := openBrowser(authURL); err != nil {
		cmd.Printf("Could not open browser: %v\n", err)
	}

	return server.WaitForCode(ctx, authTimeout)
}

func manualCode(cmd *cobra.Command, cfg *oauth2.Config, state, verifier string) (string, error) {
	if cfg.RedirectURL == "" {
		cfg.RedirectURL = "http://127.0.0.1"
	}
	cmd.Println("Visit this URL, approve access, then copy the 'code' parameter from the address bar:")
	cmd.Println(authCodeURL(cfg, state, verifier))
	cmd.Print("Authorisation code: ")

	code := readSecret(cmd.InOrStdin())
	cmd.Println()
	if code == "" {
		return "", errors.New("no authorisation code entered")
	}
	return code, nil
}

func authCodeURL(cfg *oauth2.Config, state, verifier string) string {
	return cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.S256ChallengeOption(verifier),
	)
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
