package dto

type RegisterRequestDTO struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=64"`
}

type RegisterResponseDTO struct {
	User    CredentialDTO `json:"user"`
	Profile ProfileDTO    `json:"profile"`
}
