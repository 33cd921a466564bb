package web_test

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/quantumvault/internal/adapter/driven/memory"
	"github.com/ericfisherdev/quantumvault/internal/adapter/driven/vaultcipher"
	"github.com/ericfisherdev/quantumvault/internal/adapter/driving/web"
	"github.com/ericfisherdev/quantumvault/internal/application"
)

const testCSRF = "test-csrf-token"

func setupMux(t *testing.T) (http.Handler, *application.VaultService) {
	t.Helper()

	cipher, err := vaultcipher.NewAESGCM(bytes.Repeat([]byte{9}, vaultcipher.KeySize))
	require.NoError(t, err)
	svc := application.NewVaultService(memory.NewCredentialRepo(), cipher, nil, nil, slog.Default())

	mux := http.NewServeMux()
	web.RegisterRoutes(mux, web.NewHandler(svc, nil, slog.Default()))
	return mux, svc
}

func postWeb(t *testing.T, h http.Handler, path string, form url.Values, withCookie bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if withCookie {
		req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRF})
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIndex_RendersFormsAndIssuesCSRFCookie(t *testing.T) {
	mux, _ := setupMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, `action="/web/add"`)
	assert.Contains(t, body, `action="/web/retrieve"`)
	assert.Contains(t, body, "No passwords stored yet.")
	assert.Contains(t, body, "<strong>AES-256-GCM</strong>")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "csrf_token", cookies[0].Name)
	assert.Contains(t, body, `value="`+cookies[0].Value+`"`)
}

func TestIndex_ReusesExistingCSRFCookie(t *testing.T) {
	mux, _ := setupMux(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "csrf_token", Value: testCSRF})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Empty(t, rec.Result().Cookies())
	assert.Contains(t, rec.Body.String(), `value="`+testCSRF+`"`)
}

func TestWebAdd_RequiresCSRF(t *testing.T) {
	mux, svc := setupMux(t)
	form := url.Values{"service": {"github"}, "username": {"u"}, "password": {"p"}, "csrf_token": {testCSRF}}

	rec := postWeb(t, mux, "/web/add", form, false)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	form.Set("csrf_token", "wrong")
	rec = postWeb(t, mux, "/web/add", form, true)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	services, err := svc.ListServices(t.Context())
	require.NoError(t, err)
	assert.Empty(t, services)
}

func TestWebAdd_ThenRetrieve(t *testing.T) {
	mux, _ := setupMux(t)

	rec := postWeb(t, mux, "/web/add", url.Values{
		"service": {"<b>github</b>"}, "username": {"octocat"}, "password": {"hunter2"}, "csrf_token": {testCSRF},
	}, true)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Password added successfully.")
	assert.Contains(t, rec.Body.String(), "&lt;b&gt;github&lt;/b&gt;", "service names are escaped")
	assert.NotContains(t, rec.Body.String(), "<b>github</b>")

	rec = postWeb(t, mux, "/web/retrieve", url.Values{"service": {"<b>github</b>"}, "csrf_token": {testCSRF}}, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<code>hunter2</code>")
	assert.Contains(t, rec.Body.String(), "octocat")
}

func TestWebAdd_MissingFields(t *testing.T) {
	mux, _ := setupMux(t)

	rec := postWeb(t, mux, "/web/add", url.Values{"service": {"github"}, "csrf_token": {testCSRF}}, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing required fields.")
}

func TestWebRetrieve_NotFound(t *testing.T) {
	mux, _ := setupMux(t)

	rec := postWeb(t, mux, "/web/retrieve", url.Values{"service": {"ghost"}, "csrf_token": {testCSRF}}, true)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Service not found.")
}

func TestStaticAssets(t *testing.T) {
	mux, _ := setupMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "--accent")
}
