// Package memory implements a non-persistent, in-process CredentialStore.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ericfisherdev/quantumvault/internal/domain/model"
	"github.com/ericfisherdev/quantumvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo keeps credentials in a map for the lifetime of the process.
type CredentialRepo struct {
	mu    sync.RWMutex
	creds map[string]model.Credential
	now   func() time.Time
}

// NewCredentialRepo creates an empty CredentialRepo.
func NewCredentialRepo() *CredentialRepo {
	return &CredentialRepo{
		creds: make(map[string]model.Credential),
		now:   time.Now,
	}
}

// Put stores or replaces the credential for cred.Service.
func (r *CredentialRepo) Put(_ context.Context, cred model.Credential) error {
	cred.UpdatedAt = r.now().UTC()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.creds[cred.Service] = cred
	return nil
}

// Get returns the credential for service, or (nil, nil) if none exists.
func (r *CredentialRepo) Get(_ context.Context, service string) (*model.Credential, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cred, ok := r.creds[service]
	if !ok {
		return nil, nil
	}
	return &cred, nil
}

// List returns all stored service names in map iteration order.
func (r *CredentialRepo) List(_ context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	services := make([]string, 0, len(r.creds))
	for service := range r.creds {
		services = append(services, service)
	}
	return services, nil
}
