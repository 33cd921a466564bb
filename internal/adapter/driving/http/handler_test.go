package httphandler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/quantumvault/internal/adapter/driven/memory"
	"github.com/ericfisherdev/quantumvault/internal/adapter/driven/vaultcipher"
	httphandler "github.com/ericfisherdev/quantumvault/internal/adapter/driving/http"
	"github.com/ericfisherdev/quantumvault/internal/application"
	"github.com/ericfisherdev/quantumvault/internal/domain/model"
	"github.com/ericfisherdev/quantumvault/internal/domain/port/driven"
	"github.com/ericfisherdev/quantumvault/internal/metrics"
)

// --- Mock implementations ---

// failingStore returns err from every operation.
type failingStore struct{ err error }

func (f *failingStore) Put(_ context.Context, _ model.Credential) error { return f.err }
func (f *failingStore) Get(_ context.Context, _ string) (*model.Credential, error) {
	return nil, f.err
}
func (f *failingStore) List(_ context.Context) ([]string, error) { return nil, f.err }

// --- Test helpers ---

func setupMux(t *testing.T, store driven.CredentialStore) http.Handler {
	t.Helper()

	cipher, err := vaultcipher.NewAESGCM(bytes.Repeat([]byte{3}, vaultcipher.KeySize))
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	svc := application.NewVaultService(store, cipher, nil, m, slog.Default())
	h := httphandler.NewHandler(svc, nil, slog.Default())

	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, h, reg)
	return httphandler.ApplyMiddleware(mux, slog.Default(), m)
}

func postForm(t *testing.T, h http.Handler, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func addForm(service, username, password string) url.Values {
	return url.Values{"service": {service}, "username": {username}, "password": {password}}
}

// --- Tests ---

func TestAddPassword_Created(t *testing.T) {
	mux := setupMux(t, memory.NewCredentialRepo())

	rec := postForm(t, mux, "/add", addForm("github", "octocat", "hunter2"))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "Password added successfully.", decode[httphandler.MessageResponse](t, rec).Message)
}

func TestAddPassword_MissingFields(t *testing.T) {
	store := memory.NewCredentialRepo()
	mux := setupMux(t, store)

	rec := postForm(t, mux, "/add", url.Values{"service": {"github"}, "username": {"octocat"}})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Missing required fields.")

	services, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, services)
}

func TestAddPassword_StoreFailureIs500WithoutDetails(t *testing.T) {
	mux := setupMux(t, &failingStore{err: errors.New("s3: AccessDenied for arn:secret")})

	rec := postForm(t, mux, "/add", addForm("github", "octocat", "hunter2"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
	assert.NotContains(t, rec.Body.String(), "arn:secret")
}

func TestRetrievePassword_RoundTrip(t *testing.T) {
	mux := setupMux(t, memory.NewCredentialRepo())
	require.Equal(t, http.StatusCreated, postForm(t, mux, "/add", addForm("github", "octocat", "hunter2")).Code)

	rec := postForm(t, mux, "/retrieve", url.Values{"service": {"github"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, httphandler.CredentialResponse{Service: "github", Username: "octocat", Password: "hunter2"},
		decode[httphandler.CredentialResponse](t, rec))
}

func TestRetrievePassword_MissingService(t *testing.T) {
	mux := setupMux(t, memory.NewCredentialRepo())

	rec := postForm(t, mux, "/retrieve", url.Values{})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Service name is required.")
}

func TestRetrievePassword_NotFound(t *testing.T) {
	store := memory.NewCredentialRepo()
	mux := setupMux(t, store)

	rec := postForm(t, mux, "/retrieve", url.Values{"service": {"ghost"}})

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Service not found.")

	services, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, services, "retrieve must not create a record")
}

func TestRetrievePassword_BackendError(t *testing.T) {
	mux := setupMux(t, &failingStore{err: driven.ErrStoreUnavailable})

	rec := postForm(t, mux, "/retrieve", url.Values{"service": {"github"}})

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListServices(t *testing.T) {
	mux := setupMux(t, memory.NewCredentialRepo())
	for _, s := range []string{"github", "aws", "jira"} {
		require.Equal(t, http.StatusCreated, postForm(t, mux, "/add", addForm(s, "u", "p")).Code)
	}
	// Overwrite leaves one entry.
	require.Equal(t, http.StatusCreated, postForm(t, mux, "/add", addForm("github", "u2", "p2")).Code)

	rec := get(t, mux, "/services")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.ElementsMatch(t, []string{"github", "aws", "jira"}, decode[httphandler.ServicesResponse](t, rec).Services)
}

func TestListServices_EmptyIsJSONArray(t *testing.T) {
	mux := setupMux(t, memory.NewCredentialRepo())

	rec := get(t, mux, "/services")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"services": []}`, rec.Body.String())
}

func TestListServices_BackendError(t *testing.T) {
	mux := setupMux(t, &failingStore{err: errors.New("boom")})

	assert.Equal(t, http.StatusInternalServerError, get(t, mux, "/services").Code)
}

func TestConcurrentAddsSameService(t *testing.T) {
	mux := setupMux(t, memory.NewCredentialRepo())

	var wg sync.WaitGroup
	for _, v := range []string{"a", "b"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec := postForm(t, mux, "/add", addForm("shared", "user-"+v, "pass-"+v))
			assert.Equal(t, http.StatusCreated, rec.Code)
		}()
	}
	wg.Wait()

	got := decode[httphandler.CredentialResponse](t, postForm(t, mux, "/retrieve", url.Values{"service": {"shared"}}))
	assert.Contains(t, []httphandler.CredentialResponse{
		{Service: "shared", Username: "user-a", Password: "pass-a"},
		{Service: "shared", Username: "user-b", Password: "pass-b"},
	}, got)
}

func TestWrongMethodIsRejected(t *testing.T) {
	mux := setupMux(t, memory.NewCredentialRepo())

	assert.Equal(t, http.StatusMethodNotAllowed, get(t, mux, "/add").Code)
}

func TestHealth(t *testing.T) {
	mux := setupMux(t, memory.NewCredentialRepo())

	rec := get(t, mux, "/api/v1/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode[httphandler.HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "off", resp.Quantum)
	assert.NotEmpty(t, resp.Time)
}

func TestMetricsEndpoint(t *testing.T) {
	mux := setupMux(t, memory.NewCredentialRepo())
	postForm(t, mux, "/add", addForm("github", "octocat", "hunter2"))

	rec := get(t, mux, "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `quantumvault_credential_operations_total{op="add",result="ok"} 1`)
	assert.Contains(t, rec.Body.String(), `quantumvault_http_requests_total{code="201",method="POST"} 1`)
}

func TestRequestIDPropagation(t *testing.T) {
	mux := setupMux(t, memory.NewCredentialRepo())

	rec := get(t, mux, "/api/v1/health")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}

func TestRecoveryMiddleware(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /panic", func(http.ResponseWriter, *http.Request) { panic("kaboom") })
	h := httphandler.ApplyMiddleware(mux, slog.Default(), nil)

	rec := get(t, h, "/panic")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "internal server error")
}
