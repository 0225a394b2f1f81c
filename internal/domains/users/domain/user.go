package domain

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

var (
	ErrEmptyUsername = errors.New("username must be at least 2 characters")
	ErrEmptyFullName = errors.New("full name must be at least 2 characters")
	ErrInvalidEmail  = errors.New("email is not a valid address")
	ErrWeakPassword  = errors.New("password must be at least 6 characters")
	ErrInvalidRole   = errors.New("role must be admin, manager or cashier")
)

const (
	minNameLength     = 2
	minPasswordLength = 6
)

// User is a back office account. PasswordHash is never the plain password.
type User struct {
	ID           int64
	FullName     string
	Username     string
	Email        string
	PasswordHash string
	Role         actor.Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewUser builds a user without credentials. An empty role defaults to cashier.
func NewUser(fullName, username, email string, role actor.Role) (*User, error) {
	if role == "" {
		role = actor.RoleCashier
	}
	user := &User{}
	if err := user.Rename(fullName); err != nil {
		return nil, err
	}
	if err := user.SetUsername(username); err != nil {
		return nil, err
	}
	if err := user.SetEmail(email); err != nil {
		return nil, err
	}
	if err := user.SetRole(role); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *User) Rename(fullName string) error {
	fullName = strings.TrimSpace(fullName)
	if len([]rune(fullName)) < minNameLength {
		return ErrEmptyFullName
	}
	u.FullName = fullName
	return nil
}

func (u *User) SetUsername(username string) error {
	username = strings.TrimSpace(username)
	if len([]rune(username)) < minNameLength {
		return ErrEmptyUsername
	}
	u.Username = username
	return nil
}

// SetEmail normalizes to lower case.
func (u *User) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	u.Email = email
	return nil
}

func (u *User) SetRole(role actor.Role) error {
	if !role.Valid() {
		return ErrInvalidRole
	}
	u.Role = role
	return nil
}

// Actor is the identity the user acts as.
func (u *User) Actor() actor.Actor {
	return actor.Actor{ID: u.ID, Role: u.Role, Name: u.FullName}
}

// Validate re-applies every invariant before persistence.
func (u *User) Validate() error {
	for _, check := range []func() error{
		func() error { return u.Rename(u.FullName) },
		func() error { return u.SetUsername(u.Username) },
		func() error { return u.SetEmail(u.Email) },
		func() error { return u.SetRole(u.Role) },
	} {
		if err := check(); err != nil {
			return err
		}
	}
	return nil
}

// CheckPasswordPolicy validates a plain password before it is hashed.
func CheckPasswordPolicy(password string) error {
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return ErrWeakPassword
	}
	return nil
}
