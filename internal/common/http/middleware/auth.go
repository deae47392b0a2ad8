package middleware

import (
	"context"
	"strings"

	pkgerrors "leetlab/pkg/errors"
	"leetlab/pkg/utils/contextkey"
	"leetlab/pkg/utils/response"

	"github.com/gin-gonic/gin"
)

const (
	// TokenCookieName is the cookie carrying the session JWT.
	TokenCookieName = "jwt"

	userIDContextKey    = "user_id"
	userRoleContextKey  = "user_role"
	authTokenContextKey = "auth_token"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	ID   int64
	Role string
}

// Authenticator resolves a raw token into a Principal.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (Principal, error)
}

// AuthenticatorFunc adapts a function to Authenticator.
type AuthenticatorFunc func(ctx context.Context, raw string) (Principal, error)

// Authenticate calls f.
func (f AuthenticatorFunc) Authenticate(ctx context.Context, raw string) (Principal, error) {
	return f(ctx, raw)
}

// AuthPolicy restricts a route group to the listed roles; empty means any signed-in user.
type AuthPolicy struct {
	Roles []string
}

// AuthMiddleware enforces token validation and role checks for protected routes.
func AuthMiddleware(authenticator Authenticator, policy AuthPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticator == nil {
			response.AbortWithErrorCode(c, pkgerrors.ServiceUnavailable, "auth service unavailable")
			return
		}

		token := ExtractToken(c)
		if token == "" {
			response.AbortWithErrorCode(c, pkgerrors.Unauthorized, "Unauthorized - No token provided")
			return
		}
		principal, err := authenticator.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.AbortWithError(c, err)
			return
		}

		if len(policy.Roles) > 0 && !hasRole(principal.Role, policy.Roles) {
			response.AbortWithErrorCode(c, pkgerrors.Forbidden, "Access denied - Admins only")
			return
		}

		c.Set(userIDContextKey, principal.ID)
		c.Set(userRoleContextKey, principal.Role)
		c.Set(authTokenContextKey, token)
		ctx := context.WithValue(c.Request.Context(), contextkey.UserID, principal.ID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// ExtractToken reads the session cookie, falling back to a Bearer header.
func ExtractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookieName); err == nil && strings.TrimSpace(cookie) != "" {
		return strings.TrimSpace(cookie)
	}
	return extractBearerToken(c.GetHeader("Authorization"))
}

// CurrentUserID returns the id set by AuthMiddleware.
func CurrentUserID(c *gin.Context) (int64, bool) {
	value, ok := c.Get(userIDContextKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(int64)
	return id, ok
}

// CurrentToken returns the raw token accepted by AuthMiddleware.
func CurrentToken(c *gin.Context) string {
	return c.GetString(authTokenContextKey)
}

func extractBearerToken(authHeader string) string {
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func hasRole(role string, allowed []string) bool {
	for _, item := range allowed {
		if strings.EqualFold(role, item) {
			return true
		}
	}
	return false
}
