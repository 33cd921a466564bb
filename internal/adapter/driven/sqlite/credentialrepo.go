package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/quantumvault/internal/domain/model"
	"github.com/ericfisherdev/quantumvault/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// Passwords arrive already encrypted; this layer stores them verbatim.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// Put stores or replaces the credential for cred.Service.
func (r *CredentialRepo) Put(ctx context.Context, cred model.Credential) error {
	const query = `INSERT OR REPLACE INTO credentials (service, username, encrypted_password, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`
	_, err := r.db.Writer.ExecContext(ctx, query, cred.Service, cred.Username, cred.EncryptedPassword)
	if err != nil {
		return fmt.Errorf("put credential %q: %w: %w", cred.Service, driven.ErrStoreUnavailable, err)
	}
	return nil
}

// Get retrieves the credential for the given service.
// Returns (nil, nil) if no credential exists for that service.
func (r *CredentialRepo) Get(ctx context.Context, service string) (*model.Credential, error) {
	const query = `SELECT service, username, encrypted_password, updated_at FROM credentials WHERE service = ?`

	var cred model.Credential
	var updatedAt string
	err := r.db.Reader.QueryRowContext(ctx, query, service).Scan(&cred.Service, &cred.Username, &cred.EncryptedPassword, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential %q: %w: %w", service, driven.ErrStoreUnavailable, err)
	}

	cred.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for credential %q: %w", service, err)
	}
	return &cred, nil
}

// List returns all stored service names.
func (r *CredentialRepo) List(ctx context.Context) ([]string, error) {
	const query = `SELECT service FROM credentials ORDER BY service`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list credentials: %w: %w", driven.ErrStoreUnavailable, err)
	}
	defer rows.Close()

	services := []string{}
	for rows.Next() {
		var service string
		if err := rows.Scan(&service); err != nil {
			return nil, fmt.Errorf("scan credential: %w", err)
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate credentials: %w: %w", driven.ErrStoreUnavailable, err)
	}

	return services, nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
