package httpapi

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/copallet/copallet-api/internal/domains/shipments/domain"
	apierrors "github.com/copallet/copallet-api/internal/shared/errors"
)

// Headers set by the auth gateway in front of the API.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"
)

const actorKey = "shipments.actor"

// RequireActor rejects requests that do not carry a known actor identity.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderActorID))
		role := domain.Role(strings.ToLower(strings.TrimSpace(c.GetHeader(HeaderActorRole))))
		if id == "" {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail(HeaderActorID+" header is required"))
			c.Abort()
			return
		}
		if !role.Valid() {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail(HeaderActorRole+" must be shipper, carrier or admin"))
			c.Abort()
			return
		}
		c.Set(actorKey, domain.Actor{ID: id, Role: role})
		c.Next()
	}
}

func actorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(domain.Actor); ok {
			return actor
		}
	}
	return domain.Actor{}
}

// RequestTimeout attaches a deadline to the request context.
func RequestTimeout(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
