package dto

// UpdateRequestDTO carries the optional mutations for PUT /api/users/{username}.
// Empty string fields and false flags mean "leave unchanged".
type UpdateRequestDTO struct {
	Username string `json:"username,omitempty" validate:"omitempty,max=64"`
	Password string `json:"password,omitempty" validate:"omitempty,max=64"`
	Reset    bool   `json:"reset,omitempty"`
	Withdraw bool   `json:"withdraw,omitempty"`
}
