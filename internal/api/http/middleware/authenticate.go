package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/irozhkov/library-server/internal/logger"
	"github.com/irozhkov/library-server/internal/model"
)

const currentUserKey = "currentUser"

// Identifier resolves bearer tokens to users.
type Identifier interface {
	Identify(ctx context.Context, token string) (model.User, error)
}

// Authenticate validates bearer tokens and injects the authenticated
// user into the request context.
type Authenticate struct {
	identifier Identifier
	logger     *logger.Logger
}

// NewAuthenticate creates a new Authenticate middleware instance.
func NewAuthenticate(identifier Identifier, logger *logger.Logger) *Authenticate {
	return &Authenticate{identifier: identifier, logger: logger}
}

// Handler parses the Authorization header, validates the token and
// stores the resolved user for downstream handlers. The identity is
// always threaded explicitly from here; nothing reads ambient state.
func (m *Authenticate) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": []string{"Unauthorized"}})
			return
		}

		user, err := m.identifier.Identify(c.Request.Context(), tokenString)
		if err != nil {
			m.logger.Debug("authentication failed", "error", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"errors": []string{"Unauthorized"}})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user stored by Authenticate.
func CurrentUser(c *gin.Context) (model.User, bool) {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return model.User{}, false
	}
	user, ok := value.(model.User)
	return user, ok
}
