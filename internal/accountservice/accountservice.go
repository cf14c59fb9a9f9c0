package accountservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/pitboss/accounts/internal/interfaces"
	"github.com/pitboss/accounts/internal/models"
	"github.com/pitboss/accounts/internal/models/dto"
	"github.com/pitboss/accounts/pkg/helper"

	"golang.org/x/crypto/bcrypt"
)

// AccountService owns the account workflow: registration, authentication,
// listing, deletion and update of the credential/profile record pair.
type AccountService struct {
	Repo   interfaces.AccountRepository
	Logger interfaces.Logger
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(repo interfaces.AccountRepository, logger interfaces.Logger) *AccountService {
	return &AccountService{
		Repo:   repo,
		Logger: logger,
	}
}

// Register hashes the password and creates the credential/profile pair.
// The two creates are not a transaction; if the profile create fails the
// credential is rolled back with a compensating delete so the pair never
// persists half-made.
func (s *AccountService) Register(ctx context.Context, username, password string) (*models.Credential, *models.Profile, error) {
	funcName := helper.GetFuncName()
	s.Logger.Info("Registering account", "func", funcName, "user", username)

	existing, err := s.Repo.GetCredentialByUsername(ctx, username)
	if err != nil {
		s.Logger.Error(ErrRetrievingCredential, "func", funcName, "user", username, "error", err)
		return nil, nil, fmt.Errorf("%s: %w", ErrRetrievingCredential, err)
	}
	if existing != nil {
		s.Logger.Warn("Username already exists", "func", funcName, "user", username)
		return nil, nil, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.Logger.Error(ErrFailedToHashPassword, "func", funcName, "user", username, "error", err)
		return nil, nil, fmt.Errorf("%s: %w", ErrFailedToHashPassword, err)
	}

	cred := models.NewCredential(username, string(hashedPassword))
	credID, err := s.Repo.AddCredential(ctx, *cred)
	if err != nil {
		// The existence check races with concurrent registers; the unique
		// index settles it and the loser reports the same conflict.
		if errors.Is(err, interfaces.ErrDuplicateUsername) {
			s.Logger.Warn("Username already exists", "func", funcName, "user", username)
			return nil, nil, ErrUsernameTaken
		}
		s.Logger.Error(ErrFailedToRegister, "func", funcName, "user", username, "error", err)
		return nil, nil, fmt.Errorf("%s: %w", ErrFailedToRegister, err)
	}
	cred.ID = credID

	profile := models.NewProfile(username)
	profileID, err := s.Repo.AddProfile(ctx, *profile)
	if err != nil {
		// Compensate: a credential without a profile must not survive.
		if delErr := s.Repo.DeleteCredential(ctx, username); delErr != nil {
			s.Logger.Error("Failed to roll back credential after profile create failure",
				"func", funcName, "user", username, "error", delErr)
		}
		s.Logger.Error(ErrFailedToRegister, "func", funcName, "user", username, "error", err)
		return nil, nil, fmt.Errorf("%s: %w", ErrFailedToRegister, err)
	}
	profile.ID = profileID

	s.Logger.Info("Account registered successfully", "func", funcName, "user", username, "ID", credID)
	return cred, profile, nil
}

// Authenticate verifies a username/password pair and returns the credential.
// A missing user and a wrong password both return ErrInvalidCredentials; any
// failure inside the hash comparison (malformed hash included) is treated as
// "does not match", never surfaced as a distinct error.
func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*models.Credential, error) {
	funcName := helper.GetFuncName()
	s.Logger.Debug("Authenticating account", "func", funcName, "user", username)

	cred, err := s.Repo.GetCredentialByUsername(ctx, username)
	if err != nil {
		s.Logger.Error(ErrRetrievingCredential, "func", funcName, "user", username, "error", err)
		return nil, fmt.Errorf("%s: %w", ErrRetrievingCredential, err)
	}
	if cred == nil {
		s.Logger.Warn("Login for unknown user", "func", funcName, "user", username)
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.Secret), []byte(password)); err != nil {
		s.Logger.Warn("Login with wrong password", "func", funcName, "user", username)
		return nil, ErrInvalidCredentials
	}

	s.Logger.Info("Account authenticated successfully", "func", funcName, "user", username)
	return cred, nil
}

// ListProfiles returns every profile, unordered.
func (s *AccountService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	funcName := helper.GetFuncName()
	s.Logger.Debug("Listing profiles", "func", funcName)

	profiles, err := s.Repo.ListProfiles(ctx)
	if err != nil {
		s.Logger.Error(ErrFailedToListProfiles, "func", funcName, "error", err)
		return nil, fmt.Errorf("%s: %w", ErrFailedToListProfiles, err)
	}
	return profiles, nil
}

// DeleteAccount removes the credential and profile for the username. Both
// deletes are best-effort by key; deleting an account that does not exist
// succeeds (idempotent delete).
func (s *AccountService) DeleteAccount(ctx context.Context, username string) error {
	funcName := helper.GetFuncName()
	s.Logger.Info("Deleting account", "func", funcName, "user", username)

	if err := s.Repo.DeleteCredential(ctx, username); err != nil {
		s.Logger.Error(ErrFailedToDelete, "func", funcName, "user", username, "error", err)
		return fmt.Errorf("%s: %w", ErrFailedToDelete, err)
	}
	if err := s.Repo.DeleteProfile(ctx, username); err != nil {
		s.Logger.Error(ErrFailedToDelete, "func", funcName, "user", username, "error", err)
		return fmt.Errorf("%s: %w", ErrFailedToDelete, err)
	}
	return nil
}

// UpdateAccount loads both records for the username and applies only the
// fields present in the update: rename both records, replace the password
// (re-hashed), zero the win/loss counters on reset, zero the balance on
// withdraw. Returns ErrAccountNotFound when either record is missing.
func (s *AccountService) UpdateAccount(ctx context.Context, username string, update dto.UpdateRequestDTO) error {
	funcName := helper.GetFuncName()
	s.Logger.Info("Updating account", "func", funcName, "user", username)

	cred, err := s.Repo.GetCredentialByUsername(ctx, username)
	if err != nil {
		s.Logger.Error(ErrRetrievingCredential, "func", funcName, "user", username, "error", err)
		return fmt.Errorf("%s: %w", ErrRetrievingCredential, err)
	}
	profile, err := s.Repo.GetProfileByUsername(ctx, username)
	if err != nil {
		s.Logger.Error(ErrRetrievingProfile, "func", funcName, "user", username, "error", err)
		return fmt.Errorf("%s: %w", ErrRetrievingProfile, err)
	}
	if cred == nil || profile == nil {
		s.Logger.Warn("Update for unknown account", "func", funcName, "user", username)
		return ErrAccountNotFound
	}

	if update.Username != "" {
		cred.Username = update.Username
		profile.Username = update.Username
	}
	if update.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(update.Password), bcrypt.DefaultCost)
		if err != nil {
			s.Logger.Error(ErrFailedToHashPassword, "func", funcName, "user", username, "error", err)
			return fmt.Errorf("%s: %w", ErrFailedToHashPassword, err)
		}
		cred.Secret = string(hashedPassword)
	}
	if update.Reset {
		profile.Wins = 0
		profile.Losses = 0
	}
	if update.Withdraw {
		profile.Balance = 0
	}

	// The two record updates are a logical transaction without a storage
	// transaction. Credential first; if the profile write then fails the
	// caller sees an error and the rename may be half-applied. Accepted for
	// low-stakes account data.
	if err := s.Repo.UpdateCredential(ctx, username, *cred); err != nil {
		s.Logger.Error(ErrFailedToUpdate, "func", funcName, "user", username, "error", err)
		return fmt.Errorf("%s: %w", ErrFailedToUpdate, err)
	}
	if err := s.Repo.UpdateProfile(ctx, username, *profile); err != nil {
		s.Logger.Error(ErrFailedToUpdate, "func", funcName, "user", username, "error", err)
		return fmt.Errorf("%s: %w", ErrFailedToUpdate, err)
	}

	s.Logger.Info("Account updated successfully", "func", funcName, "user", username)
	return nil
}
