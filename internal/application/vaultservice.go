// Package application holds the use cases that sit between the driving
// adapters (HTTP, web) and the driven ports (stores, cipher, quantum runner).
package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/quantumvault/internal/domain/model"
	"github.com/ericfisherdev/quantumvault/internal/domain/port/driven"
	"github.com/ericfisherdev/quantumvault/internal/metrics"
)

var (
	// ErrValidation marks caller errors such as missing form fields.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned by Retrieve for unknown services.
	ErrNotFound = errors.New("service not found")
)

// RetrievedCredential is a decrypted credential returned to callers.
type RetrievedCredential struct {
	Service  string
	Username string
	Password string
}

// VaultService implements add, retrieve, and list over a CredentialStore,
// encrypting passwords with the process-wide Cipher.
type VaultService struct {
	store    driven.CredentialStore
	cipher   driven.Cipher
	flourish *FlourishService
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewVaultService creates a VaultService. flourish may be nil.
func NewVaultService(store driven.CredentialStore, cipher driven.Cipher, flourish *FlourishService, m *metrics.Metrics, logger *slog.Logger) *VaultService {
	return &VaultService{
		store:    store,
		cipher:   cipher,
		flourish: flourish,
		metrics:  m,
		logger:   logger,
	}
}

// Add encrypts password and stores it for service, overwriting any existing
// entry. Missing fields return ErrValidation and nothing is written.
func (s *VaultService) Add(ctx context.Context, service, username, password string) error {
	service = strings.TrimSpace(service)
	if service == "" || username == "" || password == "" {
		s.metrics.CredentialOp("add", "invalid")
		return fmt.Errorf("%w: missing required fields", ErrValidation)
	}

	encrypted, err := s.cipher.Encrypt(password)
	if err != nil {
		s.metrics.CredentialOp("add", "error")
		return fmt.Errorf("encrypt password for %q: %w", service, err)
	}

	err = s.store.Put(ctx, model.Credential{
		Service:           service,
		Username:          username,
		EncryptedPassword: encrypted,
	})
	if err != nil {
		s.metrics.CredentialOp("add", "error")
		return fmt.Errorf("store credential for %q: %w", service, err)
	}
	s.metrics.CredentialOp("add", "ok")

	if s.flourish != nil {
		s.flourish.Trigger(ctx)
	}
	return nil
}

// Retrieve fetches and decrypts the credential for service.
func (s *VaultService) Retrieve(ctx context.Context, service string) (*RetrievedCredential, error) {
	service = strings.TrimSpace(service)
	if service == "" {
		s.metrics.CredentialOp("retrieve", "invalid")
		return nil, fmt.Errorf("%w: service name is required", ErrValidation)
	}

	cred, err := s.store.Get(ctx, service)
	if err != nil {
		s.metrics.CredentialOp("retrieve", "error")
		return nil, fmt.Errorf("load credential for %q: %w", service, err)
	}
	if cred == nil {
		s.metrics.CredentialOp("retrieve", "not_found")
		return nil, fmt.Errorf("%w: %q", ErrNotFound, service)
	}

	password, err := s.cipher.Decrypt(cred.EncryptedPassword)
	if err != nil {
		s.metrics.CredentialOp("retrieve", "error")
		return nil, fmt.Errorf("decrypt credential for %q: %w", service, err)
	}
	s.metrics.CredentialOp("retrieve", "ok")

	return &RetrievedCredential{
		Service:  service,
		Username: cred.Username,
		Password: password,
	}, nil
}

// ListServices returns every stored service name. Order is unspecified.
func (s *VaultService) ListServices(ctx context.Context) ([]string, error) {
	services, err := s.store.List(ctx)
	if err != nil {
		s.metrics.CredentialOp("list", "error")
		return nil, fmt.Errorf("list services: %w", err)
	}
	s.metrics.CredentialOp("list", "ok")
	if services == nil {
		services = []string{}
	}
	return services, nil
}
