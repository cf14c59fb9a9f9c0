package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/lib/pq"

	"github.com/pitboss/accounts/internal/accountrepo/constants"
	"github.com/pitboss/accounts/internal/interfaces"
	"github.com/pitboss/accounts/internal/models"
	"github.com/pitboss/accounts/pkg/databases/postgres"
)

// unique_violation in the PostgreSQL error-code table.
const pgUniqueViolation = "23505"

// PostgresAccountRepository implements AccountRepository for PostgreSQL.
type PostgresAccountRepository struct {
	dbClient interfaces.DBClient
}

// NewPostgresAccountRepository creates a new PostgreSQL repository instance.
// The dbClient must be the concrete Postgres implementation of DBClient.
func NewPostgresAccountRepository(dbClient interfaces.DBClient) (interfaces.AccountRepository, error) {
	if dbClient == nil {
		return nil, fmt.Errorf("dbClient cannot be nil")
	}
	if _, ok := dbClient.(*postgres.PostgresDatabaseClient); !ok {
		return nil, fmt.Errorf("dbClient must be a PostgreSQL client")
	}
	return &PostgresAccountRepository{dbClient: dbClient}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pq.Error
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

// AddCredential saves a new credential row. The secret must already be
// hashed by the caller.
func (r *PostgresAccountRepository) AddCredential(ctx context.Context, cred models.Credential) (string, error) {
	doc := map[string]interface{}{
		"username": cred.Username,
		"secret":   cred.Secret,
	}

	insertedID, err := r.dbClient.InsertOne(ctx, constants.CredentialsCollection, doc)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("credential for %q: %w", cred.Username, interfaces.ErrDuplicateUsername)
		}
		return "", fmt.Errorf("failed to add credential to PostgreSQL: %w", err)
	}
	strID, ok := insertedID.(string)
	if !ok {
		return "", fmt.Errorf("failed to assert inserted ID to string (expected UUID)")
	}
	return strID, nil
}

// GetCredentialByUsername retrieves a credential. Returns (nil, nil) when no
// row exists for the username.
func (r *PostgresAccountRepository) GetCredentialByUsername(ctx context.Context, username string) (*models.Credential, error) {
	var cred models.Credential
	filter := map[string]interface{}{"username": username}
	err := r.dbClient.FindOne(ctx, constants.CredentialsCollection, filter, &cred)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get credential by username from PostgreSQL: %w", err)
	}
	return &cred, nil
}

// UpdateCredential replaces the username and secret of the credential stored
// under 'username'.
func (r *PostgresAccountRepository) UpdateCredential(ctx context.Context, username string, cred models.Credential) error {
	filter := map[string]interface{}{"username": username}
	update := map[string]interface{}{
		"username": cred.Username,
		"secret":   cred.Secret,
	}
	_, err := r.dbClient.UpdateOne(ctx, constants.CredentialsCollection, filter, update)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("rename credential to %q: %w", cred.Username, interfaces.ErrDuplicateUsername)
		}
		return fmt.Errorf("failed to update credential in PostgreSQL: %w", err)
	}
	return nil
}

// DeleteCredential removes the credential by username. Absence is not an
// error.
func (r *PostgresAccountRepository) DeleteCredential(ctx context.Context, username string) error {
	filter := map[string]interface{}{"username": username}
	_, err := r.dbClient.DeleteOne(ctx, constants.CredentialsCollection, filter)
	if err != nil {
		return fmt.Errorf("failed to delete credential from PostgreSQL: %w", err)
	}
	return nil
}

// AddProfile saves a new profile row.
func (r *PostgresAccountRepository) AddProfile(ctx context.Context, profile models.Profile) (string, error) {
	doc := map[string]interface{}{
		"username":        profile.Username,
		"balance":         profile.Balance,
		"wins":            profile.Wins,
		"losses":          profile.Losses,
		"total_deposited": profile.TotalDeposited,
	}

	insertedID, err := r.dbClient.InsertOne(ctx, constants.ProfilesCollection, doc)
	if err != nil {
		if isUniqueViolation(err) {
			return "", fmt.Errorf("profile for %q: %w", profile.Username, interfaces.ErrDuplicateUsername)
		}
		return "", fmt.Errorf("failed to add profile to PostgreSQL: %w", err)
	}
	strID, ok := insertedID.(string)
	if !ok {
		return "", fmt.Errorf("failed to assert inserted ID to string (expected UUID)")
	}
	return strID, nil
}

// GetProfileByUsername retrieves a profile. Returns (nil, nil) when no row
// exists for the username.
func (r *PostgresAccountRepository) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var profile models.Profile
	filter := map[string]interface{}{"username": username}
	err := r.dbClient.FindOne(ctx, constants.ProfilesCollection, filter, &profile)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile by username from PostgreSQL: %w", err)
	}
	return &profile, nil
}

// ListProfiles returns every profile row, unordered.
func (r *PostgresAccountRepository) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	rows, err := r.dbClient.FindMany(ctx, constants.ProfilesCollection, map[string]interface{}{})
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles from PostgreSQL: %w", err)
	}

	profiles := make([]models.Profile, 0, len(rows))
	for _, row := range rows {
		var profile models.Profile
		if err := mapstructure.Decode(row, &profile); err != nil {
			return nil, fmt.Errorf("failed to decode profile row: %w", err)
		}
		profiles = append(profiles, profile)
	}
	return profiles, nil
}

// UpdateProfile replaces the mutable fields of the profile stored under
// 'username'.
func (r *PostgresAccountRepository) UpdateProfile(ctx context.Context, username string, profile models.Profile) error {
	filter := map[string]interface{}{"username": username}
	update := map[string]interface{}{
		"username":        profile.Username,
		"balance":         profile.Balance,
		"wins":            profile.Wins,
		"losses":          profile.Losses,
		"total_deposited": profile.TotalDeposited,
	}
	_, err := r.dbClient.UpdateOne(ctx, constants.ProfilesCollection, filter, update)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("rename profile to %q: %w", profile.Username, interfaces.ErrDuplicateUsername)
		}
		return fmt.Errorf("failed to update profile in PostgreSQL: %w", err)
	}
	return nil
}

// DeleteProfile removes the profile by username. Absence is not an error.
func (r *PostgresAccountRepository) DeleteProfile(ctx context.Context, username string) error {
	filter := map[string]interface{}{"username": username}
	_, err := r.dbClient.DeleteOne(ctx, constants.ProfilesCollection, filter)
	if err != nil {
		return fmt.Errorf("failed to delete profile from PostgreSQL: %w", err)
	}
	return nil
}

// EnsureIndices creates both tables with their UNIQUE username constraints.
func (r *PostgresAccountRepository) EnsureIndices(ctx context.Context) error {
	if err := r.dbClient.EnsureSchema(ctx, constants.CredentialsCollection, constants.CreateCredentialsTable); err != nil {
		return fmt.Errorf("failed to ensure credentials table: %w", err)
	}
	if err := r.dbClient.EnsureSchema(ctx, constants.ProfilesCollection, constants.CreateProfilesTable); err != nil {
		return fmt.Errorf("failed to ensure profiles table: %w", err)
	}
	return nil
}

// Close closes the PostgreSQL database connection.
func (r *PostgresAccountRepository) Close(ctx context.Context) error {
	return r.dbClient.Disconnect(ctx)
}
