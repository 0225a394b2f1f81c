package posserver

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/go-pos-backoffice/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/go-pos-backoffice/internal/domains/users/ports"
)

// UserAPI manages back-office accounts. Every route is admin only.
type UserAPI struct {
	service userports.Service
}

func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

// Post /api/v1/users
func (api *UserAPI) CreateUser(c *gin.Context) {
	var payload userhttpmapper.CreateUser
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input, err := userhttpmapper.ToCreateInput(payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	user, err := api.service.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromDomainUser(user))
}

// Get /api/v1/users
func (api *UserAPI) ListUsers(c *gin.Context) {
	users, err := api.service.List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUsers(users))
}

// Get /api/v1/users/:id
func (api *UserAPI) GetUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	user, err := api.service.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Put /api/v1/users/:id
func (api *UserAPI) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var payload userhttpmapper.UpdateUser
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	input, err := userhttpmapper.ToUpdateInput(payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	user, err := api.service.Update(c.Request.Context(), id, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Delete /api/v1/users/:id
func (api *UserAPI) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, errInvalidID(name))
		return 0, false
	}
	return id, true
}

func errInvalidID(name string) error {
	return fmt.Errorf("%s must be a positive integer", name)
}

func errInvalidNumber(name string) error {
	return fmt.Errorf("%s must be an integer", name)
}
