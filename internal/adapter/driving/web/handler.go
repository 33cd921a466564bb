// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ericfisherdev/quantumvault/internal/adapter/driving/web/templates"
	vm "github.com/ericfisherdev/quantumvault/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/quantumvault/internal/application"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
type Handler struct {
	vaultSvc    *application.VaultService
	flourishSvc *application.FlourishService
	noticeHTML  string
	logger      *slog.Logger
}

// NewHandler creates a Handler. flourishSvc may be nil.
func NewHandler(vaultSvc *application.VaultService, flourishSvc *application.FlourishService, logger *slog.Logger) *Handler {
	return &Handler{
		vaultSvc:    vaultSvc,
		flourishSvc: flourishSvc,
		noticeHTML:  RenderMarkdown(noticeMarkdown),
		logger:      logger,
	}
}

// Index renders the main page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, nil, nil)
}

// Add handles the add form.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	service := r.PostFormValue("service")
	err := h.vaultSvc.Add(r.Context(), service, r.PostFormValue("username"), r.PostFormValue("password"))
	switch {
	case errors.Is(err, application.ErrValidation):
		h.render(w, r, http.StatusBadRequest, &vm.Flash{Kind: vm.FlashError, Message: "Missing required fields."}, nil)
	case err != nil:
		h.logger.Error("web: failed to add password", "service", service, "error", err)
		h.render(w, r, http.StatusInternalServerError, &vm.Flash{Kind: vm.FlashError, Message: "Something went wrong saving the password."}, nil)
	default:
		h.render(w, r, http.StatusCreated, &vm.Flash{Kind: vm.FlashSuccess, Message: "Password added successfully."}, nil)
	}
}

// Retrieve handles the retrieve form.
func (h *Handler) Retrieve(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		http.Error(w, "invalid csrf token", http.StatusForbidden)
		return
	}

	service := r.PostFormValue("service")
	cred, err := h.vaultSvc.Retrieve(r.Context(), service)
	switch {
	case errors.Is(err, application.ErrValidation):
		h.render(w, r, http.StatusBadRequest, &vm.Flash{Kind: vm.FlashError, Message: "Service name is required."}, nil)
	case errors.Is(err, application.ErrNotFound):
		h.render(w, r, http.StatusNotFound, &vm.Flash{Kind: vm.FlashError, Message: "Service not found."}, nil)
	case err != nil:
		h.logger.Error("web: failed to retrieve password", "service", service, "error", err)
		h.render(w, r, http.StatusInternalServerError, &vm.Flash{Kind: vm.FlashError, Message: "Something went wrong retrieving the password."}, nil)
	default:
		h.render(w, r, http.StatusOK, nil, toRetrievedViewModel(cred))
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, flash *vm.Flash, retrieved *vm.RetrievedViewModel) {
	services, err := h.vaultSvc.ListServices(r.Context())
	if err != nil {
		h.logger.Error("web: failed to list services", "error", err)
		if flash == nil {
			flash = &vm.Flash{Kind: vm.FlashError, Message: "Could not load the service list."}
		}
	}

	page := vm.IndexViewModel{
		CSRFToken:      csrfToken(w, r),
		Services:       sortedServices(services),
		Flash:          flash,
		Retrieved:      retrieved,
		NoticeHTML:     h.noticeHTML,
		QuantumBackend: "off",
	}
	if h.flourishSvc != nil {
		page.QuantumBackend = h.flourishSvc.Backend()
		page.Fingerprint = h.flourishSvc.LastFingerprint()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := templates.Layout("Quantum Vault", templates.Index(page)).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render index", "error", err)
	}
}
