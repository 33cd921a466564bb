// Package httphandler implements the form-based JSON API driving adapter.
package httphandler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ericfisherdev/quantumvault/internal/application"
)

// Handler is the HTTP driving adapter that serves the password API.
type Handler struct {
	vaultSvc    *application.VaultService
	flourishSvc *application.FlourishService
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies. flourishSvc may
// be nil, in which case health reports the quantum backend as "off".
func NewHandler(
	vaultSvc *application.VaultService,
	flourishSvc *application.FlourishService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		vaultSvc:    vaultSvc,
		flourishSvc: flourishSvc,
		logger:      logger,
	}
}

// RegisterAPIRoutes registers the password API, health, and metrics routes.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler, gatherer prometheus.Gatherer) {
	mux.HandleFunc("POST /add", h.AddPassword)
	mux.HandleFunc("POST /retrieve", h.RetrievePassword)
	mux.HandleFunc("GET /services", h.ListServices)
	mux.HandleFunc("GET /api/v1/health", h.Health)
	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}

// AddPassword stores a password from form fields service, username, password.
func (h *Handler) AddPassword(w http.ResponseWriter, r *http.Request) {
	service := r.PostFormValue("service")
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	if err := h.vaultSvc.Add(r.Context(), service, username, password); err != nil {
		if errors.Is(err, application.ErrValidation) {
			writeError(w, http.StatusBadRequest, "Missing required fields.")
			return
		}
		h.logger.Error("failed to add password", "service", service, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Password added successfully."})
}

// RetrievePassword returns the decrypted credential for form field service.
func (h *Handler) RetrievePassword(w http.ResponseWriter, r *http.Request) {
	service := r.PostFormValue("service")

	cred, err := h.vaultSvc.Retrieve(r.Context(), service)
	switch {
	case errors.Is(err, application.ErrValidation):
		writeError(w, http.StatusBadRequest, "Service name is required.")
		return
	case errors.Is(err, application.ErrNotFound):
		writeError(w, http.StatusNotFound, "Service not found.")
		return
	case err != nil:
		h.logger.Error("failed to retrieve password", "service", service, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, CredentialResponse{
		Service:  cred.Service,
		Username: cred.Username,
		Password: cred.Password,
	})
}

// ListServices returns the names of all stored services.
func (h *Handler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.vaultSvc.ListServices(r.Context())
	if err != nil {
		h.logger.Error("failed to list services", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, ServicesResponse{Services: services})
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	quantum := "off"
	if h.flourishSvc != nil {
		quantum = h.flourishSvc.Backend()
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:  "ok",
		Time:    time.Now().UTC().Format(time.RFC3339),
		Quantum: quantum,
	})
}
