package middleware

import (
	"net/http"
	"strings"

	"github.com/gabrielle-jeco/personal-performance-app/internal/apierror"
	"github.com/gabrielle-jeco/personal-performance-app/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	ActorKey = "actor"
	TokenKey = "token"
)

// SessionAuth resolves the Bearer token on every protected route. The token is
// opaque; the session store is the single source of truth, so a logged-out
// token is rejected immediately rather than at expiry.
func SessionAuth(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Authentication required"))
			return
		}

		token := strings.TrimPrefix(header, "Bearer ")
		actor, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New("Invalid or expired token"))
			return
		}

		c.Set(ActorKey, actor)
		c.Set(TokenKey, token)
		c.Next()
	}
}

// RequireRole rejects requests whose session role is not in the allowed list.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *gin.Context) {
		actor, ok := c.MustGet(ActorKey).(*service.Actor)
		if !ok || !allowed[actor.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Insufficient permissions"))
			return
		}
		c.Next()
	}
}

// GetActor is a helper to retrieve the typed actor from the Gin context.
func GetActor(c *gin.Context) *service.Actor {
	actor, _ := c.MustGet(ActorKey).(*service.Actor)
	return actor
}

// GetToken returns the bearer token the current request authenticated with.
func GetToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}
