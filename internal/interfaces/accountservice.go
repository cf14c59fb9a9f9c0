package interfaces

import (
	"context"

	"github.com/pitboss/accounts/internal/models"
	"github.com/pitboss/accounts/internal/models/dto"
)

type AccountService interface {
	Register(ctx context.Context, username, password string) (*models.Credential, *models.Profile, error)
	Authenticate(ctx context.Context, username, password string) (*models.Credential, error)
	ListProfiles(ctx context.Context) ([]models.Profile, error)
	DeleteAccount(ctx context.Context, username string) error
	UpdateAccount(ctx context.Context, username string, update dto.UpdateRequestDTO) error
}
