// Package portus implements driven.PayslipProvider for the Portus portal.
package portus

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/custodia-labs/payslip-saver/internal/connectors/payslip"
	"github.com/custodia-labs/payslip-saver/internal/connectors/scraper"
	"github.com/custodia-labs/payslip-saver/internal/core/domain"
	"github.com/custodia-labs/payslip-saver/internal/core/ports/driven"
	"github.com/custodia-labs/payslip-saver/internal/logger"
)

// Ensure Provider implements the interface.
var _ driven.PayslipProvider = (*Provider)(nil)

// Name identifies this integration in configuration.
const Name = "portus"

// DefaultBaseURL is the public Portus portal.
const DefaultBaseURL = "https://www.portus.co.uk"

const (
	loginURI     = "/Account/Login"
	listPath     = "/Payslips/List"
	downloadPath = "/Payslips/Download"

	defaultPageSize = 5
)

var requiredCookies = []string{".AspNet.ApplicationCookie"}

// Config configures the Portus provider.
type Config struct {
	// Session configures the HTTP session. An empty BaseURL selects DefaultBaseURL.
	Session scraper.Config

	Username string
	Password string

	PageSize    int
	DownloadDir string
}

// Provider lists and downloads payslips from Portus.
type Provider struct {
	sess     *scraper.Session
	form     scraper.LoginForm
	pageSize int
	dir      string
}

// New creates a Portus provider.
func New(cfg Config) (*Provider, error) {
	if cfg.Session.BaseURL == "" {
		cfg.Session.BaseURL = DefaultBaseURL
	}
	sess, err := scraper.NewSession(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("portus: %w", err)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Provider{
		sess: sess,
		form: scraper.LoginForm{
			URI:             loginURI,
			Username:        cfg.Username,
			Password:        cfg.Password,
			UsernameField:   "Email",
			PasswordField:   "Password",
			RequiredCookies: requiredCookies,
		},
		pageSize: pageSize,
		dir:      cfg.DownloadDir,
	}, nil
}

// Name returns the integration name.
func (p *Provider) Name() string {
	return Name
}

type listing struct {
	Items []struct {
		PayslipID payslip.FlexID `json:"PayslipID"`
		RunDate   string         `json:"RunDate"`
	} `json:"items"`
}

// List returns the most recent payslips, newest first.
func (p *Provider) List(ctx context.Context) ([]domain.ProviderDocument, error) {
	if err := p.sess.EnsureLogin(ctx, p.form); err != nil {
		return nil, err
	}

	query := url.Values{
		"sort":     {"RunDate"},
		"order":    {"desc"},
		"page":     {"1"},
		"per_page": {strconv.Itoa(p.pageSize)},
	}

	var resp listing
	if err := p.sess.GetJSON(ctx, listPath+"?"+query.Encode(), &resp); err != nil {
		return nil, payslip.CatalogError(err)
	}

	docs := make([]domain.ProviderDocument, 0, len(resp.Items))
	for _, item := range resp.Items {
		date, err := domain.ParseDate(item.RunDate)
		if err != nil {
			return nil, payslip.CatalogError(err)
		}
		if item.PayslipID == "" {
			return nil, payslip.CatalogError(fmt.Errorf("payslip dated %s has no PayslipID", date))
		}
		docs = append(docs, domain.ProviderDocument{
			ID:   item.PayslipID.String(),
			Date: date,
			RawMeta: map[string]any{
				"PayslipID": item.PayslipID.String(),
				"RunDate":   item.RunDate,
			},
		})
	}

	logger.Debug("portus: listed %d payslip(s)", len(docs))
	return docs, nil
}

// Download saves the payslip for item into the download directory.
func (p *Provider) Download(ctx context.Context, item domain.WorkItem) (string, error) {
	if err := p.sess.EnsureLogin(ctx, p.form); err != nil {
		return "", err
	}
	query := url.Values{"payslipId": {item.Document.ID}}
	return payslip.SaveDocument(ctx, p.sess, downloadPath+"?"+query.Encode(), p.dir, item)
}
