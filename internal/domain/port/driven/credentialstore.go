package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/quantumvault/internal/domain/model"
)

// ErrStoreUnavailable wraps backend failures that are not caused by the caller.
var ErrStoreUnavailable = errors.New("credential store unavailable")

// CredentialStore defines the driven port for credential persistence. The
// store only ever sees ciphertext; encryption happens in the application layer.
type CredentialStore interface {
	// Put stores or replaces the credential for cred.Service. Repeated puts for
	// the same service overwrite silently.
	Put(ctx context.Context, cred model.Credential) error

	// Get retrieves the credential for the given service.
	// Returns (nil, nil) if no credential exists for that service.
	Get(ctx context.Context, service string) (*model.Credential, error)

	// List returns the names of all stored services. Order is unspecified.
	List(ctx context.Context) ([]string, error)
}
