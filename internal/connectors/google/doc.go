// Package google provides shared infrastructure for the Gmail mailbox and
// the Drive archive.
//
// It contains:
//   - a file-backed OAuth token source that persists refreshed tokens
//   - service factories for the Gmail and Drive API clients
//   - error mapping for common Google API failures (401, 403, 404, 429)
//   - rate limiting to respect Google API quotas
//
// # Usage
//
//	cfg, err := google.LoadClientConfig(settings.Google.ClientSecretFile)
//	ts, err := google.NewTokenSource(ctx, cfg, google.TokenFile{Path: tokenPath})
//	svc, err := google.NewGmailService(ctx, ts)
//
// # OAuth2 Scopes
//
//   - https://www.googleapis.com/auth/gmail.modify (restricted)
//   - https://www.googleapis.com/auth/drive (restricted)
//
// For user-created internal apps, restricted scopes don't require verification.
package google
