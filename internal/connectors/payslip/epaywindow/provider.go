// Package epaywindow implements driven.PayslipProvider for the ePayWindow portal.
package epaywindow

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
const Name = "epaywindow"

// DefaultBaseURL is the public ePayWindow portal.
const DefaultBaseURL = "https://www.myepaywindow.com"

const (
	loginURI     = "/Login"
	listPath     = "/Payslips/Datatable"
	downloadPath = "/Payslips/Download/"

	defaultPageSize = 5
)

// requiredCookies are issued by a successful ASP.NET login.
var requiredCookies = []string{".AspNet.ApplicationCookie", "ASP.NET_SessionId"}

// Config configures the ePayWindow provider.
type Config struct {
	// Session configures the HTTP session. An empty BaseURL selects DefaultBaseURL.
	Session scraper.Config

	Username string
	Password string

	// PageSize bounds how many recent payslips are listed.
	PageSize int

	// DownloadDir receives downloaded payslips.
	DownloadDir string
}

// Provider lists and downloads payslips from ePayWindow.
type Provider struct {
	sess     *scraper.Session
	form     scraper.LoginForm
	pageSize int
	dir      string
}

// New creates an ePayWindow provider. No network traffic happens until the
// first List or Download.
func New(cfg Config) (*Provider, error) {
	if cfg.Session.BaseURL == "" {
		cfg.Session.BaseURL = DefaultBaseURL
	}
	sess, err := scraper.NewSession(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("epaywindow: %w", err)
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
			UsernameField:   "UserName",
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

// datatable is the JSON shape of the payslip listing.
type datatable struct {
	Total   int `json:"total"`
	PerPage int `json:"per_page"`
	Data    []struct {
		PayslipID  payslip.FlexID `json:"PayslipID"`
		RunID      payslip.FlexID `json:"RunID"`
		CreateDate string         `json:"CreateDate"`
	} `json:"data"`
}

// List returns the most recent payslips, newest first.
func (p *Provider) List(ctx context.Context) ([]domain.ProviderDocument, error) {
	if err := p.sess.EnsureLogin(ctx, p.form); err != nil {
		return nil, err
	}

	query := url.Values{
		"sort":     {"RunDate|desc"},
		"page":     {"1"},
		"per_page": {strconv.Itoa(p.pageSize)},
	}

	var table datatable
	if err := p.sess.GetJSON(ctx, listPath+"?"+query.Encode(), &table); err != nil {
		return nil, payslip.CatalogError(err)
	}

	docs := make([]domain.ProviderDocument, 0, len(table.Data))
	for _, row := range table.Data {
		date, err := domain.ParseDate(row.CreateDate)
		if err != nil {
			return nil, payslip.CatalogError(err)
		}
		if row.RunID == "" {
			return nil, payslip.CatalogError(fmt.Errorf("payslip dated %s has no RunID", date))
		}
		docs = append(docs, domain.ProviderDocument{
			ID:   row.RunID.String(),
			Date: date,
			RawMeta: map[string]any{
				"PayslipID":  row.PayslipID.String(),
				"RunID":      row.RunID.String(),
				"CreateDate": row.CreateDate,
			},
		})
	}

	logger.Debug("epaywindow: listed %d of %d payslip(s)", len(docs), table.Total)
	return docs, nil
}

// Download saves the payslip for item into the download directory.
func (p *Provider) Download(ctx context.Context, item domain.WorkItem) (string, error) {
	if err := p.sess.EnsureLogin(ctx, p.form); err != nil {
		return "", err
	}
	path := downloadPath + url.PathEscape(item.Document.ID)
	return payslip.SaveDocument(ctx, p.sess, path, p.dir, item)
}
