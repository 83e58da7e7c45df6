package dto

import (
	"time"

	"recipehub/internal/microservices/http-api/models"
)

// CreateRatingDTO for creating or updating a rating of another user
type CreateRatingDTO struct {
	Rating int `json:"rating" binding:"required,min=1,max=5"`
}

// RatingSummaryResponse is returned after rating a user
type RatingSummaryResponse struct {
	Username      string  `json:"username"`
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int64   `json:"ratings_count"`
}

// ProfileResponse for returning a user's public profile
type ProfileResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Bio           string    `json:"bio"`
	Image         string    `json:"image"`
	Role          string    `json:"role"`
	AverageRating float64   `json:"average_rating"`
	RatingsCount  int64     `json:"ratings_count"`
	RecipesCount  int64     `json:"recipes_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// UserResponse is the admin view of an account
type UserResponse struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	Role       string     `json:"role"`
	IsVerified bool       `json:"is_verified"`
	CreatedAt  time.Time  `json:"created_at"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

// FromModelToUserResponse converts a User model to UserResponse DTO
func FromModelToUserResponse(user *models.User) *UserResponse {
	return &UserResponse{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		Role:       user.Role,
		IsVerified: user.IsVerified,
		CreatedAt:  user.CreatedAt,
		LastLogin:  user.LastLogin,
	}
}

// SetRoleRequest for admin role changes
type SetRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin"`
}
