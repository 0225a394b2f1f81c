package application

import (
	"context"
	"errors"
	"strings"

	"github.com/Apurer/go-pos-backoffice/internal/domains/users/application/types"
	"github.com/Apurer/go-pos-backoffice/internal/domains/users/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/users/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo        ports.Repository
	credentials ports.CredentialService
	sessions    ports.SessionStore
}

func NewService(repo ports.Repository, credentials ports.CredentialService, sessions ports.SessionStore) *Service {
	if sessions == nil {
		sessions = ports.NoopSessionStore
	}
	return &Service{repo: repo, credentials: credentials, sessions: sessions}
}

// Register creates a cashier account and signs it in. Elevated roles are
// granted by an admin through Create or Update.
func (s *Service) Register(ctx context.Context, input types.CreateUserInput) (*types.AuthResult, error) {
	input.Role = actor.RoleCashier
	user, err := s.Create(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.signIn(ctx, user)
}

// Login accepts either an email or a username as identifier.
func (s *Service) Login(ctx context.Context, identifier, password string) (*types.AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || strings.TrimSpace(password) == "" {
		return nil, mapError(ports.ErrInvalidCredentials)
	}
	var (
		user *domain.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.repo.GetByEmail(ctx, strings.ToLower(identifier))
	} else {
		user, err = s.repo.GetByUsername(ctx, identifier)
	}
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return nil, mapError(ports.ErrInvalidCredentials)
		}
		return nil, err
	}
	if err := s.credentials.Compare(user.PasswordHash, password); err != nil {
		return nil, mapError(err)
	}
	return s.signIn(ctx, user)
}

func (s *Service) Logout(ctx context.Context, tokenID string) error {
	if strings.TrimSpace(tokenID) == "" {
		return nil
	}
	return s.sessions.Delete(ctx, tokenID)
}

// Authenticate verifies a bearer token and resolves the current identity,
// picking up role changes made after the token was issued.
func (s *Service) Authenticate(ctx context.Context, token string) (types.Identity, error) {
	claims, err := s.credentials.Parse(token)
	if err != nil {
		return types.Identity{}, mapError(err)
	}
	active, err := s.sessions.Active(ctx, claims.TokenID)
	if err != nil {
		return types.Identity{}, err
	}
	if !active {
		return types.Identity{}, mapError(ports.ErrInvalidToken)
	}
	user, err := s.repo.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return types.Identity{}, mapError(ports.ErrInvalidToken)
		}
		return types.Identity{}, err
	}
	return types.Identity{Actor: user.Actor(), TokenID: claims.TokenID}, nil
}

// ChangePassword replaces the password after checking the current one and
// revokes every session of the user.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.credentials.Compare(user.PasswordHash, current); err != nil {
		return mapError(err)
	}
	if err := domain.CheckPasswordPolicy(next); err != nil {
		return mapError(err)
	}
	hash, err := s.credentials.Hash(next)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if _, err := s.repo.Save(ctx, user); err != nil {
		return mapError(err)
	}
	return s.sessions.DeleteForUser(ctx, user.ID)
}

// EnsureAdmin creates the first administrator when the user table is empty.
// It returns nil when accounts already exist.
func (s *Service) EnsureAdmin(ctx context.Context, input types.CreateUserInput) (*domain.User, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, nil
	}
	input.Role = actor.RoleAdmin
	return s.Create(ctx, input)
}

func (s *Service) Create(ctx context.Context, input types.CreateUserInput) (*domain.User, error) {
	user, err := domain.NewUser(input.FullName, input.Username, input.Email, input.Role)
	if err != nil {
		return nil, mapError(err)
	}
	if err := domain.CheckPasswordPolicy(input.Password); err != nil {
		return nil, mapError(err)
	}
	if err := s.ensureUnique(ctx, 0, user.Username, user.Email); err != nil {
		return nil, err
	}
	hash, err := s.credentials.Hash(input.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*domain.User, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id int64, input types.UpdateUserInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.FullName != nil {
		if err := user.Rename(*input.FullName); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Username != nil {
		if err := user.SetUsername(*input.Username); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Email != nil {
		if err := user.SetEmail(*input.Email); err != nil {
			return nil, mapError(err)
		}
	}
	if input.Role != nil {
		if err := user.SetRole(*input.Role); err != nil {
			return nil, mapError(err)
		}
	}
	if err := s.ensureUnique(ctx, user.ID, user.Username, user.Email); err != nil {
		return nil, err
	}
	if input.Password != nil {
		if err := domain.CheckPasswordPolicy(*input.Password); err != nil {
			return nil, mapError(err)
		}
		hash, err := s.credentials.Hash(*input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.sessions.DeleteForUser(ctx, id)
	return nil
}

func (s *Service) signIn(ctx context.Context, user *domain.User) (*types.AuthResult, error) {
	token, err := s.credentials.Issue(user)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, ports.Session{
		TokenID:   token.ID,
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: token.ExpiresAt,
	}); err != nil {
		return nil, err
	}
	return &types.AuthResult{AccessToken: token.Value, ExpiresAt: token.ExpiresAt, User: user}, nil
}

func (s *Service) ensureUnique(ctx context.Context, selfID int64, username, email string) error {
	for _, lookup := range []func() (*domain.User, error){
		func() (*domain.User, error) { return s.repo.GetByUsername(ctx, username) },
		func() (*domain.User, error) { return s.repo.GetByEmail(ctx, email) },
	} {
		existing, err := lookup()
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				continue
			}
			return err
		}
		if existing.ID != selfID {
			return mapError(ports.ErrConflict)
		}
	}
	return nil
}

var _ ports.Service = (*Service)(nil)
