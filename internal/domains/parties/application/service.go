package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/parties/ports"
)

// ErrInvalidInput signals the request violated a party invariant.
var ErrInvalidInput = errors.New("invalid party input")

// Service manages customers and suppliers.
type Service struct {
	repo ports.Repository
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, kind domain.Kind, input ports.PartyInput) (*domain.Party, error) {
	party, err := domain.NewParty(kind, deref(input.Name), deref(input.Phone), deref(input.Email), deref(input.Address))
	if err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, party)
}

func (s *Service) Update(ctx context.Context, kind domain.Kind, id int64, input ports.PartyInput) (*domain.Party, error) {
	party, err := s.repo.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	name, phone, email, address := party.Name, party.Phone, party.Email, party.Address
	if input.Name != nil {
		name = *input.Name
	}
	if input.Phone != nil {
		phone = *input.Phone
	}
	if input.Email != nil {
		email = *input.Email
	}
	if input.Address != nil {
		address = *input.Address
	}
	if err := party.Update(name, phone, email, address); err != nil {
		return nil, mapError(err)
	}
	return s.repo.Save(ctx, party)
}

func (s *Service) Get(ctx context.Context, kind domain.Kind, id int64) (*domain.Party, error) {
	return s.repo.Get(ctx, kind, id)
}

func (s *Service) List(ctx context.Context, kind domain.Kind) ([]*domain.Party, error) {
	return s.repo.List(ctx, kind)
}

func (s *Service) Delete(ctx context.Context, kind domain.Kind, id int64) error {
	return s.repo.Delete(ctx, kind, id)
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyName) ||
		errors.Is(err, domain.ErrInvalidEmail) ||
		errors.Is(err, domain.ErrInvalidKind) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ ports.Service = (*Service)(nil)
