package posserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	partyhttpmapper "github.com/Apurer/go-pos-backoffice/internal/domains/parties/adapters/http/mapper"
	partydomain "github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
	partyports "github.com/Apurer/go-pos-backoffice/internal/domains/parties/ports"
)

// PartyAPI serves one kind of counterparty: customers or suppliers.
type PartyAPI struct {
	service partyports.Service
	kind    partydomain.Kind
}

func NewPartyAPI(service partyports.Service, kind partydomain.Kind) PartyAPI {
	return PartyAPI{service: service, kind: kind}
}

// Post /api/v1/customers, /api/v1/suppliers
func (api *PartyAPI) CreateParty(c *gin.Context) {
	var payload partyhttpmapper.PartyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	party, err := api.service.Create(c.Request.Context(), api.kind, partyhttpmapper.ToPartyInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, partyhttpmapper.FromDomainParty(party))
}

func (api *PartyAPI) ListParties(c *gin.Context) {
	parties, err := api.service.List(c.Request.Context(), api.kind)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, partyhttpmapper.FromDomainParties(parties))
}

func (api *PartyAPI) GetParty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	party, err := api.service.Get(c.Request.Context(), api.kind, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, partyhttpmapper.FromDomainParty(party))
}

func (api *PartyAPI) UpdateParty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload partyhttpmapper.PartyPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	party, err := api.service.Update(c.Request.Context(), api.kind, id, partyhttpmapper.ToPartyInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, partyhttpmapper.FromDomainParty(party))
}

func (api *PartyAPI) DeleteParty(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), api.kind, id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
