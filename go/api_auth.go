package posserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/go-pos-backoffice/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/go-pos-backoffice/internal/domains/users/ports"
)

// AuthAPI issues and revokes access tokens.
type AuthAPI struct {
	service userports.Service
}

func NewAuthAPI(service userports.Service) AuthAPI {
	return AuthAPI{service: service}
}

// Post /api/v1/auth/login
// Accepts either email or username with a password
func (api *AuthAPI) Login(c *gin.Context) {
	var payload userhttpmapper.Login
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	identifier := strings.TrimSpace(payload.Email)
	if identifier == "" {
		identifier = payload.Username
	}
	result, err := api.service.Login(c.Request.Context(), identifier, payload.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromAuthResult(result))
}

// Post /api/v1/auth/register
// Creates a cashier account and signs it in
func (api *AuthAPI) Register(c *gin.Context) {
	var payload userhttpmapper.CreateUser
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	payload.Role = ""
	input, err := userhttpmapper.ToCreateInput(payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	result, err := api.service.Register(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, userhttpmapper.FromAuthResult(result))
}

// Post /api/v1/auth/logout
func (api *AuthAPI) Logout(c *gin.Context) {
	if err := api.service.Logout(c.Request.Context(), c.GetString(tokenIDKey)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

// Get /api/v1/auth/me
func (api *AuthAPI) Me(c *gin.Context) {
	user, err := api.service.Get(c.Request.Context(), currentActor(c).ID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Put /api/v1/auth/password
func (api *AuthAPI) ChangePassword(c *gin.Context) {
	var payload userhttpmapper.ChangePassword
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	if err := api.service.ChangePassword(c.Request.Context(), currentActor(c).ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
