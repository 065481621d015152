package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/project-management-api/internal/access"
	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
)

// TenantResolver finds the organization a request is bound to. It returns
// nil when the slug is unknown or not accessible to p.
type TenantResolver interface {
	ResolveTenant(ctx context.Context, p access.Principal, slug string) (*models.Organization, error)
}

// ResolveOrganization sets the organization context from the :org_slug URL
// segment or, failing that, the X-Organization-Slug header. It must run
// after RequireAuth.
//
// An inaccessible header slug leaves the request in global mode. An
// inaccessible URL slug is reported as not found, since the route itself
// names the organization.
func ResolveOrganization(resolver TenantResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		fromURL := true
		slug := c.Param(constants.URLParamOrganizationSlug)
		if slug == "" {
			fromURL = false
			slug = strings.TrimSpace(c.GetHeader(constants.HeaderOrganizationSlug))
		}
		if slug == "" {
			c.Next()
			return
		}

		org, err := resolver.ResolveTenant(c.Request.Context(), GetPrincipal(c), slug)
		if err != nil {
			zerolog.Ctx(c.Request.Context()).Error().Err(err).Str("slug", slug).Msg("failed to resolve organization")
			apierrors.Abort(c, apierrors.ErrCodeInternalError, "Internal server error")
			return
		}
		if org == nil {
			if fromURL {
				apierrors.Abort(c, apierrors.ErrCodeNotFound, "Organization not found")
				return
			}
			c.Next()
			return
		}

		c.Set(constants.ContextKeyOrganization, org)
		c.Next()
	}
}

// GetOrganization returns the request's organization context, or nil in
// global mode
func GetOrganization(c *gin.Context) *models.Organization {
	if v, ok := c.Get(constants.ContextKeyOrganization); ok {
		if org, ok := v.(*models.Organization); ok {
			return org
		}
	}
	return nil
}
