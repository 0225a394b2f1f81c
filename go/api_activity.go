package posserver

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	activityhttpmapper "github.com/Apurer/go-pos-backoffice/internal/domains/activity/adapters/http/mapper"
	activitydomain "github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	activityports "github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

// ActivityReader answers audit trail queries.
type ActivityReader interface {
	UserHistory(ctx context.Context, a actor.Actor, userID int64, limit int) ([]activitydomain.Activity, error)
	SystemHistory(ctx context.Context, a actor.Actor, query activityports.Query) ([]activitydomain.Activity, error)
	Summary(ctx context.Context, a actor.Actor) (activitydomain.Summary, error)
}

type ActivityAPI struct {
	history ActivityReader
}

func NewActivityAPI(history ActivityReader) ActivityAPI {
	return ActivityAPI{history: history}
}

// Get /api/v1/activities/me
func (api *ActivityAPI) MyHistory(c *gin.Context) {
	a := currentActor(c)
	api.userHistory(c, a, a.ID)
}

// Get /api/v1/activities/users/:id
func (api *ActivityAPI) UserHistory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	api.userHistory(c, currentActor(c), id)
}

func (api *ActivityAPI) userHistory(c *gin.Context, a actor.Actor, userID int64) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	entries, err := api.history.UserHistory(c.Request.Context(), a, userID, limit)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, activityhttpmapper.FromDomainActivities(entries))
}

// Get /api/v1/activities
// Optional query: userId, entityType, action, from, to, limit
func (api *ActivityAPI) SystemHistory(c *gin.Context) {
	query := activityports.Query{
		EntityType: c.Query("entityType"),
		Action:     c.Query("action"),
	}
	if c.Query("userId") != "" {
		userID, ok := queryInt(c, "userId", 0)
		if !ok {
			return
		}
		id := int64(userID)
		query.UserID = &id
	}
	var ok bool
	if query.Limit, ok = queryInt(c, "limit", 0); !ok {
		return
	}
	if query.From, ok = queryTime(c, "from", false); !ok {
		return
	}
	if query.To, ok = queryTime(c, "to", true); !ok {
		return
	}
	entries, err := api.history.SystemHistory(c.Request.Context(), currentActor(c), query)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, activityhttpmapper.FromDomainActivities(entries))
}

// Get /api/v1/activities/summary
func (api *ActivityAPI) Summary(c *gin.Context) {
	summary, err := api.history.Summary(c.Request.Context(), currentActor(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, activityhttpmapper.FromDomainSummary(summary))
}
