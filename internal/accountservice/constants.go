package accountservice

import "errors"

// Sentinel errors the HTTP layer maps onto status codes.
var (
	// ErrUsernameTaken is returned when registering a username that already
	// has a credential.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials covers both "no such user" and "wrong password".
	// The two cases are deliberately indistinguishable so callers cannot
	// probe which usernames exist.
	ErrInvalidCredentials = errors.New("username or password is wrong")
	// ErrAccountNotFound is returned by UpdateAccount when the path username
	// resolves to no records.
	ErrAccountNotFound = errors.New("account not found")
)

const (
	// Error messages for account service operations
	ErrFailedToHashPassword = "failed to hash password" // #nosec G101
	ErrFailedToRegister     = "failed to register account"
	ErrRetrievingCredential = "error retrieving credential"
	ErrRetrievingProfile    = "error retrieving profile"
	ErrFailedToListProfiles = "failed to list profiles"
	ErrFailedToDelete       = "failed to delete account"
	ErrFailedToUpdate       = "failed to update account"
)
