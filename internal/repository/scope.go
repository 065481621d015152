package repository

import (
	"strings"

	"gorm.io/gorm"
)

// Scope is the set of organizations a principal may read. All is set for
// superusers; otherwise only OrganizationIDs are visible.
type Scope struct {
	All             bool
	OrganizationIDs []uint64
}

// Empty reports whether the scope can match no rows at all.
func (s Scope) Empty() bool {
	return !s.All && len(s.OrganizationIDs) == 0
}

// SingleOrganization is the scope of one organization context. The caller
// must have verified that the organization is accessible.
func SingleOrganization(organizationID uint64) Scope {
	return Scope{OrganizationIDs: []uint64{organizationID}}
}

// Every listing query starts from one of the four scopes below so the
// membership restriction is applied before any other filter.

// AccessibleOrganizations limits an organizations query to the scope.
func AccessibleOrganizations(s Scope) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.All {
			return db
		}
		return db.Where("organizations.id IN ?", scopeIDs(s))
	}
}

// AccessibleProjects limits a projects query to the scope.
func AccessibleProjects(s Scope) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.All {
			return db
		}
		return db.Where("projects.organization_id IN ?", scopeIDs(s))
	}
}

// AccessibleTasks limits a tasks query to the scope.
func AccessibleTasks(s Scope) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.All {
			return db
		}
		return db.Where("tasks.project_id IN (SELECT p.id FROM projects p WHERE p.organization_id IN ?)", scopeIDs(s))
	}
}

// AccessibleComments limits a comments query to the scope.
func AccessibleComments(s Scope) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.All {
			return db
		}
		return db.Where(
			"comments.task_id IN (SELECT t.id FROM tasks t JOIN projects p ON p.id = t.project_id WHERE p.organization_id IN ?)",
			scopeIDs(s),
		)
	}
}

// scopeIDs stands in id 0, which no row has, for an empty scope.
func scopeIDs(s Scope) []uint64 {
	if len(s.OrganizationIDs) == 0 {
		return []uint64{0}
	}
	return s.OrganizationIDs
}

// ContainsAny matches rows where any column contains query, case-insensitively.
func ContainsAny(query string, columns ...string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
		clauses := make([]string, len(columns))
		args := make([]any, len(columns))
		for i, col := range columns {
			clauses[i] = "LOWER(" + col + ") LIKE ? ESCAPE '!'"
			args[i] = pattern
		}
		return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
