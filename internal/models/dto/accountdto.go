package dto

import "github.com/pitboss/accounts/internal/models"

// CredentialDTO is the caller-facing view of a Credential. It has no secret
// field at all, so the stored hash cannot be serialized by construction.
type CredentialDTO struct {
	ID       string `json:"id,omitempty"`
	Username string `json:"username"`
}

type ProfileDTO struct {
	ID             string  `json:"id,omitempty"`
	Username       string  `json:"username"`
	Balance        float64 `json:"balance"`
	Wins           int64   `json:"wins"`
	Losses         int64   `json:"losses"`
	TotalDeposited float64 `json:"totalDeposited"`
}

func NewCredentialDTO(cred *models.Credential) CredentialDTO {
	return CredentialDTO{
		ID:       cred.ID,
		Username: cred.Username,
	}
}

func NewProfileDTO(profile *models.Profile) ProfileDTO {
	return ProfileDTO{
		ID:             profile.ID,
		Username:       profile.Username,
		Balance:        profile.Balance,
		Wins:           profile.Wins,
		Losses:         profile.Losses,
		TotalDeposited: profile.TotalDeposited,
	}
}
