package scraper

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/payslip-saver/internal/core/domain"
)

func TestParseFirstForm_Fixture(t *testing.T) {
	f, err := os.Open("testdata/login.html")
	require.NoError(t, err)
	defer f.Close()

	form, err := parseFirstForm(f)

	require.NoError(t, err)
	assert.Equal(t, "/Login?ReturnUrl=%2FPayslips", form.Action)
	assert.Equal(t, "abcd1234", form.Fields.Get("__RequestVerificationToken"))
	assert.Equal(t, "", form.Fields.Get("UserName"))
	assert.Contains(t, form.Fields, "Password")
	assert.Equal(t, "true", form.Fields.Get("RememberMe"))
	// Inputs of later forms and unnamed inputs are ignored.
	assert.NotContains(t, form.Fields, "q")
	assert.Len(t, form.Fields, 4)
}

func TestParseFirstForm_NoForm(t *testing.T) {
	_, err := parseFirstForm(strings.NewReader("<html><body><p>Maintenance</p></body></html>"))

	assert.True(t, errors.Is(err, domain.ErrFormShape))
}

func TestParseFirstForm_NoAction(t *testing.T) {
	_, err := parseFirstForm(strings.NewReader(`<form method="post"><input name="a" value="b"></form>`))

	assert.True(t, errors.Is(err, domain.ErrFormShape))
}

func TestParseFirstForm_EmptyActionIsAccepted(t *testing.T) {
	form, err := parseFirstForm(strings.NewReader(`<form action=""><input name="a" value="b"></form>`))

	require.NoError(t, err)
	assert.Equal(t, "", form.Action)
	assert.Equal(t, "b", form.Fields.Get("a"))
}

func TestParseSetCookies(t *testing.T) {
	cookies := parseSetCookies([]string{
		".AspNet.ApplicationCookie=abc==def; path=/; HttpOnly",
		"ASP.NET_SessionId=xyz; path=/; HttpOnly; SameSite=Lax",
		"flag",
		"=novalue",
		"empty=; path=/",
	})

	assert.Equal(t, map[string]string{
		".AspNet.ApplicationCookie": "abc==def",
		"ASP.NET_SessionId":         "xyz",
		"empty":                     "",
	}, cookies)
}

func TestParseSetCookies_KeepsFirstNonEmptyValue(t *testing.T) {
	cookies := parseSetCookies([]string{
		"ASP.NET_SessionId=abc; path=/",
		"ASP.NET_SessionId=; expires=Thu, 01 Jan 1970 00:00:00 GMT; path=/",
		"late=; path=/",
		"late=set; path=/",
	})

	assert.Equal(t, "abc", cookies["ASP.NET_SessionId"])
	assert.Equal(t, "set", cookies["late"])
}
