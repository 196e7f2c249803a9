package dto

import "github.com/noah-isme/eduquery-api/internal/models"

// LoginRequest carries dashboard credentials.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=64"`
	Password string `json:"password" form:"password" validate:"required,max=128"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsAdmin  bool   `json:"is_admin"`
}

// LoginResponse is returned on successful login.
type LoginResponse struct {
	Token       string       `json:"token"`
	User        UserResponse `json:"user"`
	RedirectURL string       `json:"redirectUrl"`
}

// NewUserResponse converts a user model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Role:     user.Role(),
		IsAdmin:  user.IsAdmin,
	}
}
