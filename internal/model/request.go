package model

type RegisterRequest struct {
	Email    string  `json:"email"`
	Username string  `json:"username"`
	FullName *string `json:"full_name,omitempty"`
	Password string  `json:"password"`
}

type UpdateProfileRequest struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
	Password *string `json:"password,omitempty"`
}

type SetActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
