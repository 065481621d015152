package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/project-management-api/internal/access"
	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/services"
)

var (
	notFoundErrors = []error{
		services.ErrOrganizationNotFound,
		services.ErrProjectNotFound,
		services.ErrTaskNotFound,
		services.ErrCommentNotFound,
		services.ErrUserNotFound,
		services.ErrOrganizationMemberNotFound,
		services.ErrInvalidInviteCode,
	}
	forbiddenErrors = []error{
		services.ErrNotOrganizationOwner,
		services.ErrSuperuserRequired,
	}
	conflictErrors = []error{
		services.ErrSlugTaken,
		services.ErrEmailTaken,
		services.ErrAlreadyOrganizationMember,
	}
	invalidInputErrors = []error{
		services.ErrSearchQueryRequired,
		services.ErrSearchQueryTooLong,
		services.ErrInvalidWindow,
		services.ErrInvalidOrganizationName,
		services.ErrInvalidSlug,
		services.ErrInvalidContactEmail,
		services.ErrCannotRemoveOwner,
		services.ErrProjectNameRequired,
		services.ErrInvalidProjectStatus,
		services.ErrOrganizationRequired,
		services.ErrTitleRequired,
		services.ErrTitleEmpty,
		services.ErrInvalidTaskStatus,
		services.ErrInvalidTaskPriority,
		services.ErrInvalidAssignee,
		services.ErrProjectRequired,
		services.ErrCommentContentRequired,
		services.ErrInvalidAuthorEmail,
		services.ErrInvalidEmail,
		services.ErrPasswordTooShort,
	}
)

// respondError maps a service error onto the API error taxonomy. Anything
// unrecognised is logged and reported as an internal error without detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, access.ErrNotAuthenticated):
		apierrors.Unauthorized(c, "")
	case errors.Is(err, services.ErrInvalidCredentials):
		apierrors.InvalidCredentials(c, err.Error())
	case isAny(err, notFoundErrors):
		apierrors.NotFound(c, err.Error())
	case isAny(err, forbiddenErrors):
		apierrors.Forbidden(c, err.Error())
	case isAny(err, conflictErrors):
		apierrors.Conflict(c, err.Error())
	case isAny(err, invalidInputErrors):
		apierrors.BadRequest(c, err.Error())
	default:
		_ = c.Error(err)
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		apierrors.InternalError(c, "")
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// parseID reads a positive integer URL parameter, replying 400 when it is
// malformed.
func parseID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, fmt.Sprintf("Invalid %s", strings.ReplaceAll(name, "_", " ")))
		return 0, false
	}
	return id, true
}

// parseDays reads the days query parameter, falling back to def.
func parseDays(c *gin.Context, def int) (int, bool) {
	raw := c.Query("days")
	if raw == "" {
		return def, true
	}
	days, err := strconv.Atoi(raw)
	if err != nil || days < 0 || days > constants.MaxWindowDays {
		apierrors.BadRequest(c, services.ErrInvalidWindow.Error())
		return 0, false
	}
	return days, true
}

// parseDate accepts a calendar day (2006-01-02) or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
