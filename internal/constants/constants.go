package constants

// Session and context keys
const (
	SessionCookieName        = "pm_session"
	ContextKeyUserID         = "user_id"
	ContextKeyPrincipal      = "principal"
	ContextKeyOrganization   = "organization"
	ContextKeyRequestID      = "request_id"
	HeaderOrganizationSlug   = "X-Organization-Slug"
	HeaderRequestID          = "X-Request-ID"
	URLParamOrganizationSlug = "org_slug"
)

// Validation limits
const (
	MinPasswordLength = 8
	MaxSearchLength   = 200
	MaxWindowDays     = 365
)

// Default windows for time-based queries
const (
	DefaultProjectsDueSoonDays = 7
	DefaultTasksDueSoonDays    = 3
	DefaultRecentCommentDays   = 7
)
