package interfaces

import (
	"context"
	"errors"

	"github.com/pitboss/accounts/internal/models"
)

// ErrDuplicateUsername is returned by AddCredential, AddProfile and the
// rename updates when the storage layer's unique constraint rejects the
// username. It is how a lost duplicate-check race surfaces.
var ErrDuplicateUsername = errors.New("username already exists")

// AccountRepository defines the contract for storing and retrieving the two
// account records. Credential and Profile are independently stored documents
// joined only by username; the repository enforces no referential integrity
// between them. This interface is database-agnostic.
type AccountRepository interface {
	// AddCredential persists a new credential and returns its storage ID.
	// The secret must already be hashed by the caller.
	AddCredential(ctx context.Context, cred models.Credential) (string, error)
	// GetCredentialByUsername returns (nil, nil) when no credential exists.
	GetCredentialByUsername(ctx context.Context, username string) (*models.Credential, error)
	// UpdateCredential replaces the username and secret of the credential
	// currently stored under 'username'.
	UpdateCredential(ctx context.Context, username string, cred models.Credential) error
	// DeleteCredential removes the credential by username. Absence is not an
	// error.
	DeleteCredential(ctx context.Context, username string) error

	// AddProfile persists a new profile and returns its storage ID.
	AddProfile(ctx context.Context, profile models.Profile) (string, error)
	// GetProfileByUsername returns (nil, nil) when no profile exists.
	GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error)
	// ListProfiles returns every profile, unordered (full scan).
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	// UpdateProfile replaces the mutable fields of the profile currently
	// stored under 'username'.
	UpdateProfile(ctx context.Context, username string, profile models.Profile) error
	// DeleteProfile removes the profile by username. Absence is not an error.
	DeleteProfile(ctx context.Context, username string) error

	EnsureIndices(ctx context.Context) error
	Close(ctx context.Context) error
}
