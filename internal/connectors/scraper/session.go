package scraper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
	"github.com/custodia-labs/payslip-saver/internal/logger"
)

// Default timeouts.
const (
	DefaultLoginTimeout    = 10 * time.Second
	DefaultRequestTimeout  = 10 * time.Second
	DefaultDownloadTimeout = 60 * time.Second
)

// defaultUserAgent is sent with every request. Some portals reject clients
// that do not look like a browser.
const defaultUserAgent = "Mozilla/5.0 (Linux; Android 4.4.2; Nexus 4 Build/KOT49H) " +
	"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/48.0.2564.23 Mobile Safari/537.36"

// maxErrorBody bounds how much of a failed response is kept in errors.
const maxErrorBody = 4096

// Config configures a Session.
type Config struct {
	// BaseURL is the portal root, e.g. "https://www.myepaywindow.com".
	BaseURL string

	LoginTimeout    time.Duration
	RequestTimeout  time.Duration
	DownloadTimeout time.Duration

	// Transport overrides the HTTP transport. Nil uses http.DefaultTransport.
	Transport http.RoundTripper

	// UserAgent overrides the default browser user agent.
	UserAgent string
}

// LoginForm describes how to log in to a portal.
type LoginForm struct {
	// URI is the login page, relative to the session base URL.
	URI string

	Username string
	Password string

	// UsernameField and PasswordField name the form inputs to fill in.
	UsernameField string
	PasswordField string

	// RequiredCookies must all be issued, non-empty, by the login response.
	RequiredCookies []string
}

// Session is an HTTP session with a portal. It owns a cookie jar so requests
// made after a successful Login are authenticated.
type Session struct {
	base      *url.URL
	client    *http.Client
	cfg       Config
	userAgent string

	mu       sync.Mutex
	loggedIn bool
	cookies  map[string]string
}

// NewSession creates a session against cfg.BaseURL. GET requests follow
// redirects; the login form submission does not, because login success is
// detected from the submission response itself.
func NewSession(cfg Config) (*Session, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("parse base url: %q is not absolute", cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	if cfg.LoginTimeout <= 0 {
		cfg.LoginTimeout = DefaultLoginTimeout
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	if cfg.DownloadTimeout <= 0 {
		cfg.DownloadTimeout = DefaultDownloadTimeout
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Session{
		base: base,
		client: &http.Client{
			Jar:       jar,
			Transport: cfg.Transport,
			CheckRedirect: checkRedirect,
		},
		cfg:       cfg,
		userAgent: userAgent,
	}, nil
}

const maxRedirects = 10

func checkRedirect(_ *http.Request, via []*http.Request) error {
	if via[0].Method != http.MethodGet {
		return http.ErrUseLastResponse
	}
	if len(via) >= maxRedirects {
		return fmt.Errorf("stopped after %d redirects", maxRedirects)
	}
	return nil
}

// LoggedIn reports whether Login has succeeded on this session.
func (s *Session) LoggedIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loggedIn
}

// Cookie returns the value of a cookie issued by the login response.
func (s *Session) Cookie(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cookies[name]
}

// EnsureLogin logs in unless the session already has. Concurrent callers
// wait for a single login attempt.
func (s *Session) EnsureLogin(ctx context.Context, form LoginForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loggedIn {
		return nil
	}
	return s.login(ctx, form)
}

// Login fetches the login page, submits its first form with the credentials
// filled in and checks the issued cookies. Every failure wraps ErrLogin.
func (s *Session) Login(ctx context.Context, form LoginForm) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.login(ctx, form)
}

func (s *Session) login(ctx context.Context, form LoginForm) error {
	if err := s.doLogin(ctx, form); err != nil {
		s.loggedIn = false
		logger.Error("login to %s failed: %v", s.base.Host, err)
		return fmt.Errorf("%w: %w", domain.ErrLogin, err)
	}
	s.loggedIn = true
	logger.Info("logged in to %s", s.base.Host)
	return nil
}

func (s *Session) doLogin(ctx context.Context, form LoginForm) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.LoginTimeout)
	defer cancel()

	loginURL, err := s.resolve(form.URI)
	if err != nil {
		return err
	}

	logger.Debug("getting login form from %s", loginURL)
	page, err := s.fetchLoginPage(ctx, loginURL)
	if err != nil {
		return err
	}

	parsed, err := parseFirstForm(bytes.NewReader(page))
	if err != nil {
		return err
	}

	fields := parsed.Fields
	fields.Set(form.UsernameField, form.Username)
	fields.Set(form.PasswordField, form.Password)

	actionRef, err := url.Parse(parsed.Action)
	if err != nil {
		return fmt.Errorf("%w: bad action %q: %w", domain.ErrFormShape, parsed.Action, err)
	}
	action := loginURL.ResolveReference(actionRef)

	logger.Debug("submitting login form to %s with fields %v", action, fieldNames(fields))
	resp, err := s.submit(ctx, action, fields)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusFound {
		return &domain.BadResponseError{StatusCode: resp.StatusCode, Body: readLimited(resp.Body)}
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	headers := resp.Header.Values("Set-Cookie")
	if len(headers) == 0 {
		return fmt.Errorf("%w: no Set-Cookie header in login response", domain.ErrCookiesNotFound)
	}
	issued := parseSetCookies(headers)
	for _, name := range form.RequiredCookies {
		if issued[name] == "" {
			return fmt.Errorf("%w: %s", domain.ErrCookiesNotFound, name)
		}
	}

	// The jar drops cookies whose attributes do not match the base URL;
	// store the required ones for the whole site.
	jarCookies := make([]*http.Cookie, 0, len(form.RequiredCookies))
	for _, name := range form.RequiredCookies {
		jarCookies = append(jarCookies, &http.Cookie{Name: name, Value: issued[name], Path: "/"})
	}
	s.client.Jar.SetCookies(s.base, jarCookies)

	s.cookies = issued
	return nil
}

func (s *Session) fetchLoginPage(ctx context.Context, loginURL *url.URL) ([]byte, error) {
	req, err := s.newRequest(ctx, http.MethodGet, loginURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get login page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.BadResponseError{StatusCode: resp.StatusCode, Body: readLimited(resp.Body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read login page: %w", err)
	}
	return body, nil
}

func (s *Session) submit(ctx context.Context, action *url.URL, fields url.Values) (*http.Response, error) {
	req, err := s.newRequest(ctx, http.MethodPost, action, strings.NewReader(fields.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("submit login form: %w", err)
	}
	return resp, nil
}

// Get fetches path (relative to the base URL) and returns the body.
// Non-2xx responses yield a *domain.StatusError.
func (s *Session) Get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	defer cancel()

	resp, err := s.do(ctx, path)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}

// GetJSON fetches path and decodes the JSON body into v.
func (s *Session) GetJSON(ctx context.Context, path string, v any) error {
	body, err := s.Get(ctx, path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Download streams the body of path into w byte-for-byte and returns the
// number of bytes written. It uses the download timeout.
func (s *Session) Download(ctx context.Context, path string, w io.Writer) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DownloadTimeout)
	defer cancel()

	resp, err := s.do(ctx, path)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, fmt.Errorf("stream %s: %w", path, err)
	}
	return n, nil
}

// do issues an authenticated GET and checks for a 2xx status.
// The caller closes the body.
func (s *Session) do(ctx context.Context, path string) (*http.Response, error) {
	target, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	req, err := s.newRequest(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, &domain.StatusError{StatusCode: resp.StatusCode, Body: readLimited(resp.Body)}
	}
	return resp, nil
}

func (s *Session) newRequest(ctx context.Context, method string, target *url.URL, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Upgrade-Insecure-Requests", "1")
	return req, nil
}

// resolve turns a path such as "/Payslips/Download/1" into an absolute URL.
func (s *Session) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("parse path %q: %w", path, err)
	}
	return s.base.ResolveReference(ref), nil
}

func readLimited(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxErrorBody))
	return string(b)
}

// fieldNames lists form field names without their values, for logging.
func fieldNames(v url.Values) []string {
	names := make([]string, 0, len(v))
	for k := range v {
		names = append(names, k)
	}
	return names
}
