package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// RegisterRequest payload.
type RegisterRequest struct {
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"required,email"`
	Password      string `json:"password" validate:"required,min=8"`
	Role          string `json:"role" validate:"omitempty,oneof=STUDENT ADMIN TECHNICIAN"`
	StudentNumber string `json:"student_number"`
	Department    string `json:"department"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserResponse describes an account without credentials.
type UserResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Email         string          `json:"email"`
	Role          domain.UserRole `json:"role"`
	StudentNumber *string         `json:"student_number,omitempty"`
	Department    *string         `json:"department,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// AuthResponse pairs a user with a signed token.
type AuthResponse struct {
	User      UserResponse `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

// TechnicianResponse is a user plus their current workload.
type TechnicianResponse struct {
	UserResponse
	OpenComplaints int `json:"open_complaints"`
}

// NewTechnicianResponse maps a technician with their open-complaint count.
func NewTechnicianResponse(user *domain.User, openComplaints int) TechnicianResponse {
	return TechnicianResponse{UserResponse: NewUserResponse(user), OpenComplaints: openComplaints}
}

// NewUserResponse maps a domain user.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:            user.ID,
		Name:          user.Name,
		Email:         user.Email,
		Role:          user.Role,
		StudentNumber: user.StudentNumber,
		Department:    user.Department,
		CreatedAt:     user.CreatedAt,
	}
}
