package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"tourguard/interfaces"
	"tourguard/models"
	"tourguard/utils"
)

type AuthMiddleware struct {
	identities interfaces.IdentityProvider
	logger     logrus.FieldLogger
}

func NewAuthMiddleware(identities interfaces.IdentityProvider, logger logrus.FieldLogger) *AuthMiddleware {
	return &AuthMiddleware{
		identities: identities,
		logger:     logger,
	}
}

// QueryTokenParam carries the credential on WebSocket upgrades, where
// browsers cannot set headers.
const QueryTokenParam = "token"

// RequireAuth resolves the Authorization bearer credential and sets the
// caller in context
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return am.authenticate(false)
}

// RequireUpgradeAuth is RequireAuth that also accepts ?token= when no
// Authorization header is sent. Mount it on WebSocket routes only.
func (am *AuthMiddleware) RequireUpgradeAuth() gin.HandlerFunc {
	return am.authenticate(true)
}

func (am *AuthMiddleware) authenticate(allowQuery bool) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		token := am.extractToken(c, allowQuery)
		if token == "" {
			utils.UnauthorizedResponse(c, "Authentication token required")
			c.Abort()
			return
		}

		identity, err := am.identities.Authenticate(token)
		if err != nil {
			am.logger.WithError(err).WithField("path", c.Request.URL.Path).Debug("Authentication failed")
			utils.UnauthorizedResponse(c, "Invalid authentication token")
			c.Abort()
			return
		}

		c.Set(utils.ContextKeyIdentity, *identity)
		c.Set(utils.ContextKeyUserID, identity.ID)
		c.Set(utils.ContextKeyUserRole, identity.Role)

		c.Next()
	})
}

// RequireRole validates user has one of roles
func (am *AuthMiddleware) RequireRole(roles ...models.Role) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		identity, ok := utils.GetIdentity(c)
		if !ok {
			utils.UnauthorizedResponse(c, "User not authenticated")
			c.Abort()
			return
		}

		for _, role := range roles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		utils.ForbiddenResponse(c, "Insufficient permissions")
		c.Abort()
	})
}

// RequireAuthority admits police, admin and tourism department users
func (am *AuthMiddleware) RequireAuthority() gin.HandlerFunc {
	return am.RequireRole(models.RolePolice, models.RoleAdmin, models.RoleTourismDept)
}

// extractToken reads the Authorization header, falling back to the token
// query parameter when allowQuery is set.
func (am *AuthMiddleware) extractToken(c *gin.Context, allowQuery bool) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}

	if !allowQuery {
		return ""
	}
	return c.Query(QueryTokenParam)
}
