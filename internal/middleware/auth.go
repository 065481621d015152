package middleware

import (
	"context"
	"errors"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/project-management-api/internal/access"
	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/services"
)

// PrincipalLoader loads the principal for a session's user id
type PrincipalLoader interface {
	Principal(ctx context.Context, userID uint64) (access.Principal, error)
}

// RequireAuth checks if the user is authenticated via session and loads the
// principal for the rest of the request
func RequireAuth(loader PrincipalLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := toUserID(session.Get(constants.ContextKeyUserID))
		if !ok {
			apierrors.Abort(c, apierrors.ErrCodeUnauthorized, "Authentication required")
			return
		}

		principal, err := loader.Principal(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				// the account is gone; drop the stale session
				session.Clear()
				_ = session.Save()
				apierrors.Abort(c, apierrors.ErrCodeUnauthorized, "Authentication required")
				return
			}
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Uint64("user_id", userID).Msg("failed to load principal")
			apierrors.Abort(c, apierrors.ErrCodeInternalError, "Internal server error")
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Set(constants.ContextKeyPrincipal, principal)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(userID)
}

// GetPrincipal retrieves the principal set by RequireAuth. Requests without
// one are anonymous.
func GetPrincipal(c *gin.Context) access.Principal {
	if v, ok := c.Get(constants.ContextKeyPrincipal); ok {
		if p, ok := v.(access.Principal); ok {
			return p
		}
	}
	return access.Principal{}
}

// GetViewer combines the principal with the request's organization context
func GetViewer(c *gin.Context) services.Viewer {
	return services.Viewer{
		Principal:    GetPrincipal(c),
		Organization: GetOrganization(c),
	}
}

func toUserID(v any) (uint64, bool) {
	switch v := v.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}
