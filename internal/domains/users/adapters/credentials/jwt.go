// Package credentials implements password hashing with bcrypt and bearer
// tokens as HS256 JWTs.
package credentials

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/go-pos-backoffice/internal/domains/users/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/users/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

const (
	DefaultTTL = 24 * time.Hour
	issuer     = "pos-backoffice"
)

var _ ports.CredentialService = (*Service)(nil)

type Service struct {
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

type Option func(*Service)

// WithTTL sets the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(secret string, opts ...Option) (*Service, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is empty")
	}
	s := &Service{secret: []byte(secret), ttl: DefaultTTL, cost: bcrypt.DefaultCost, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (s *Service) Compare(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ports.ErrInvalidCredentials
	}
	return nil
}

type claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

func (s *Service) Issue(user *domain.User) (ports.Token, error) {
	now := s.now().UTC()
	expires := now.Add(s.ttl)
	id := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Username: user.Username,
		Role:     string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        id,
			Issuer:    issuer,
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return ports.Token{}, err
	}
	return ports.Token{Value: signed, ID: id, ExpiresAt: expires.Truncate(time.Second)}, nil
}

func (s *Service) Parse(raw string) (ports.Claims, error) {
	var parsed claims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return ports.Claims{}, ports.ErrInvalidToken
	}
	userID, err := strconv.ParseInt(parsed.Subject, 10, 64)
	if err != nil || parsed.ID == "" {
		return ports.Claims{}, ports.ErrInvalidToken
	}
	role, err := actor.ParseRole(parsed.Role)
	if err != nil {
		return ports.Claims{}, ports.ErrInvalidToken
	}
	return ports.Claims{
		TokenID:   parsed.ID,
		UserID:    userID,
		Username:  parsed.Username,
		Role:      role,
		ExpiresAt: parsed.ExpiresAt.Time,
	}, nil
}
