package dto

// RegisterRequest is the payload for teacher account creation
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email" example:"teacher@school.example"`
	Password  string `json:"password" binding:"required,min=8" example:"s3cret-pass"`
	FirstName string `json:"firstName" binding:"required" example:"Anna"`
	LastName  string `json:"lastName" binding:"required" example:"Keller"`
}

// LoginRequest is the payload for credential login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshTokenRequest exchanges a refresh token for a new token pair
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// TokenResponse carries a freshly issued token pair
type TokenResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	ExpiresIn        int    `json:"expiresIn"`
	RefreshExpiresIn int    `json:"refreshExpiresIn"`
}

// TeacherResponse is the public view of a teacher account
type TeacherResponse struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}
