package middleware

import (
	"github.com/gin-gonic/gin"

	"adminhub/internal/domain"
)

const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorName = "X-Actor-Name"
)

// Actor puts the calling admin and client IP on the request context so services
// can stamp emitted events. Requests without X-Actor-ID act as the system actor.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		a := domain.Actor{
			ID:   c.GetHeader(HeaderActorID),
			Name: c.GetHeader(HeaderActorName),
		}
		if a.ID != "" && a.Name == "" {
			a.Name = a.ID
		}

		ctx := domain.WithActor(c.Request.Context(), a, c.ClientIP())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
