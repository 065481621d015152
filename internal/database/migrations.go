package database

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type index struct {
	table   string
	name    string
	columns string
}

// indexes backs the membership filter, the per-entity filters and the
// time-window queries.
var indexes = []index{
	{"organizations", "idx_organizations_owner_id", "owner_id"},
	{"organizations", "idx_organizations_name", "name"},

	{"organization_members", "idx_org_members_user_id", "user_id"},

	{"projects", "idx_projects_organization_id", "organization_id"},
	{"projects", "idx_projects_status", "status"},
	{"projects", "idx_projects_due_date", "due_date"},
	{"projects", "idx_projects_org_status", "organization_id, status"},
	{"projects", "idx_projects_created_at", "created_at"},

	{"tasks", "idx_tasks_project_id", "project_id"},
	{"tasks", "idx_tasks_status", "status"},
	{"tasks", "idx_tasks_priority", "priority"},
	{"tasks", "idx_tasks_due_date", "due_date"},
	{"tasks", "idx_tasks_assignee_email", "assignee_email"},
	{"tasks", "idx_tasks_project_status", "project_id, status"},
	{"tasks", "idx_tasks_created_at", "created_at"},

	{"comments", "idx_comments_task_id", "task_id"},
	{"comments", "idx_comments_timestamp", "timestamp"},
	{"comments", "idx_comments_author_email", "author_email"},
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			log.Debug().Str("index", idx.name).Msg("Index already exists, skipping")
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Debug().Str("index", idx.name).Str("table", idx.table).Msg("Created index")
	}

	return nil
}
