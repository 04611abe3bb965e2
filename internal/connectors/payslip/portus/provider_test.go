package portus

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/payslip-saver/internal/connectors/scraper"
	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

const loginPage = `<html><body>
<form action="/Account/Login?ReturnUrl=%2F" method="post">
  <input name="Email" type="email" />
  <input name="Password" type="password" />
  <input name="RememberMe" type="hidden" value="false" />
</form>
</body></html>`

func newPortal(t *testing.T, listBody string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/Account/Login", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			_, _ = w.Write([]byte(loginPage))
			return
		}
		_ = r.ParseForm()
		if r.PostForm.Get("Email") == "me@example.com" && r.PostForm.Get("Password") == "secret" {
			w.Header().Add("Set-Cookie", ".AspNet.ApplicationCookie=portus; path=/")
		}
		w.WriteHeader(http.StatusFound)
	})
	mux.HandleFunc("/Payslips/List", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("sort") != "RunDate" || q.Get("order") != "desc" || q.Get("per_page") != "3" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_, _ = w.Write([]byte(listBody))
	})
	mux.HandleFunc("/Payslips/Download", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("payslipId") != "42" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte("%PDF-portus"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newProvider(t *testing.T, srv *httptest.Server, password string) *Provider {
	t.Helper()
	p, err := New(Config{
		Session:     scraper.Config{BaseURL: srv.URL},
		Username:    "me@example.com",
		Password:    password,
		PageSize:    3,
		DownloadDir: t.TempDir(),
	})
	require.NoError(t, err)
	return p
}

func TestProvider_List(t *testing.T) {
	srv := newPortal(t, `{"items":[
		{"PayslipID": "42", "RunDate": "2020-05-01T00:00:00Z"},
		{"PayslipID": 41, "RunDate": "2020-04-01"}
	]}`)
	p := newProvider(t, srv, "secret")

	docs, err := p.List(context.Background())

	require.NoError(t, err)
	assert.Equal(t, Name, p.Name())
	require.Len(t, docs, 2)
	assert.Equal(t, "42", docs[0].ID)
	assert.Equal(t, domain.Date("2020-05-01"), docs[0].Date)
	assert.Equal(t, "41", docs[1].ID)
}

func TestProvider_List_MissingID(t *testing.T) {
	srv := newPortal(t, `{"items":[{"RunDate": "2020-05-01"}]}`)
	p := newProvider(t, srv, "secret")

	_, err := p.List(context.Background())

	assert.True(t, errors.Is(err, domain.ErrCatalogFetch))
}

func TestProvider_LoginFails(t *testing.T) {
	srv := newPortal(t, `{"items":[]}`)
	p := newProvider(t, srv, "wrong")

	_, err := p.List(context.Background())

	assert.True(t, errors.Is(err, domain.ErrLogin))
}

func TestProvider_Download(t *testing.T) {
	srv := newPortal(t, `{"items":[]}`)
	p := newProvider(t, srv, "secret")

	path, err := p.Download(context.Background(), domain.WorkItem{
		Document:   domain.ProviderDocument{ID: "42", Date: "2020-05-01"},
		CompanyTag: "Acme",
	})

	require.NoError(t, err)
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-portus", string(got))
}
