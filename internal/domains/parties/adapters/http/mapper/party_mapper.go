package mapper

import (
	"time"

	"github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/parties/ports"
)

// Party is the transport form of a customer or supplier.
type Party struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type PartyPayload struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Email   *string `json:"email,omitempty"`
	Address *string `json:"address,omitempty"`
}

func ToPartyInput(payload PartyPayload) ports.PartyInput {
	return ports.PartyInput{Name: payload.Name, Phone: payload.Phone, Email: payload.Email, Address: payload.Address}
}

func FromDomainParty(party *domain.Party) Party {
	if party == nil {
		return Party{}
	}
	return Party{
		ID:        party.ID,
		Name:      party.Name,
		Phone:     party.Phone,
		Email:     party.Email,
		Address:   party.Address,
		CreatedAt: party.CreatedAt,
		UpdatedAt: party.UpdatedAt,
	}
}

func FromDomainParties(parties []*domain.Party) []Party {
	result := make([]Party, 0, len(parties))
	for _, party := range parties {
		result = append(result, FromDomainParty(party))
	}
	return result
}
