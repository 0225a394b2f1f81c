package mapper

import (
	"time"

	"github.com/Apurer/go-pos-backoffice/internal/domains/users/application/types"
	userdomain "github.com/Apurer/go-pos-backoffice/internal/domains/users/domain"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

// User is the transport-level user payload. The password hash never leaves the service.
type User struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"fullName"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateUser is the inbound payload for registration and admin creation.
type CreateUser struct {
	FullName string `json:"fullName" binding:"required"`
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role,omitempty"`
}

// UpdateUser keeps field presence so absent fields stay untouched.
type UpdateUser struct {
	FullName *string `json:"fullName,omitempty"`
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	Role     *string `json:"role,omitempty"`
}

type Login struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password" binding:"required"`
}

type ChangePassword struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
}

// AuthResponse mirrors the access_token payload the back-office SPA expects.
type AuthResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        User      `json:"user"`
}

// ToCreateInput converts the payload; an unknown role is rejected.
func ToCreateInput(payload CreateUser) (types.CreateUserInput, error) {
	input := types.CreateUserInput{
		FullName: payload.FullName,
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	}
	if payload.Role != "" {
		role, err := actor.ParseRole(payload.Role)
		if err != nil {
			return types.CreateUserInput{}, err
		}
		input.Role = role
	}
	return input, nil
}

func ToUpdateInput(payload UpdateUser) (types.UpdateUserInput, error) {
	input := types.UpdateUserInput{
		FullName: payload.FullName,
		Username: payload.Username,
		Email:    payload.Email,
		Password: payload.Password,
	}
	if payload.Role != nil {
		role, err := actor.ParseRole(*payload.Role)
		if err != nil {
			return types.UpdateUserInput{}, err
		}
		input.Role = &role
	}
	return input, nil
}

// FromDomainUser converts a domain user into a transport representation.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		FullName:  user.FullName,
		Username:  user.Username,
		Email:     user.Email,
		Role:      string(user.Role),
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func FromDomainUsers(users []*userdomain.User) []User {
	result := make([]User, 0, len(users))
	for _, user := range users {
		result = append(result, FromDomainUser(user))
	}
	return result
}

func FromAuthResult(result *types.AuthResult) AuthResponse {
	return AuthResponse{
		AccessToken: result.AccessToken,
		ExpiresAt:   result.ExpiresAt,
		User:        FromDomainUser(result.User),
	}
}
