package posserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	activitydomain "github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/users/application/types"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

const tokenIDKey = "pos.token_id"

// Authenticator resolves a bearer token to the calling user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (types.Identity, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller on the request context.
func RequireAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			respondError(c, http.StatusUnauthorized, errors.New("missing bearer token"))
			c.Abort()
			return
		}
		identity, err := auth.Authenticate(c.Request.Context(), strings.TrimSpace(token))
		if err != nil {
			respondServiceError(c, err)
			c.Abort()
			return
		}
		c.Set(tokenIDKey, identity.TokenID)
		c.Request = c.Request.WithContext(actor.WithActor(c.Request.Context(), identity.Actor))
		c.Next()
	}
}

// RequireRoles lets the request through when the caller holds one of roles.
func RequireRoles(roles ...actor.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		current, ok := actor.FromContext(c.Request.Context())
		if !ok {
			respondError(c, http.StatusUnauthorized, errors.New("authentication required"))
			c.Abort()
			return
		}
		for _, role := range roles {
			if current.Role == role {
				c.Next()
				return
			}
		}
		respondError(c, http.StatusForbidden, errors.New("role "+string(current.Role)+" may not access this resource"))
		c.Abort()
	}
}

// RequestInfo records the client address and user agent for activity entries.
func RequestInfo() gin.HandlerFunc {
	return func(c *gin.Context) {
		info := activitydomain.RequestInfo{IPAddress: c.ClientIP(), UserAgent: c.Request.UserAgent()}
		c.Request = c.Request.WithContext(activitydomain.WithRequestInfo(c.Request.Context(), info))
		c.Next()
	}
}

func currentActor(c *gin.Context) actor.Actor {
	a, _ := actor.FromContext(c.Request.Context())
	return a
}
