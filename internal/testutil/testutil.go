// Package testutil builds in-memory databases and fixtures for package tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Uint64

// NewDB opens a migrated in-memory SQLite database that is closed when the
// test ends.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: database.NowUTC,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a separate database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, database.Migrate(db))
	return db
}

// CreateUser inserts a user with a throwaway password hash.
func CreateUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateSuperuser inserts a superuser.
func CreateSuperuser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{
		Email:        email,
		PasswordHash: "hashed",
		IsSuperuser:  true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateOrganization inserts an organization owned by owner. The owner is
// not added to the members set.
func CreateOrganization(t *testing.T, db *gorm.DB, name string, owner *models.User) *models.Organization {
	t.Helper()
	n := seq.Add(1)
	org := &models.Organization{
		Name:         name,
		Slug:         fmt.Sprintf("%s-%d", models.SlugFromName(name), n),
		ContactEmail: owner.Email,
		OwnerID:      owner.ID,
		InviteCode:   fmt.Sprintf("CODE-%d", n),
	}
	require.NoError(t, db.Create(org).Error)
	return org
}

// AddMember puts user in the organization's members set.
func AddMember(t *testing.T, db *gorm.DB, org *models.Organization, user *models.User) {
	t.Helper()
	require.NoError(t, db.Create(&models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         user.ID,
		JoinedAt:       time.Now().UTC(),
	}).Error)
}

// CreateProject inserts an ACTIVE project with an optional due date.
func CreateProject(t *testing.T, db *gorm.DB, org *models.Organization, name string, due *time.Time) *models.Project {
	t.Helper()
	project := &models.Project{
		OrganizationID: org.ID,
		Name:           name,
		Status:         models.ProjectStatusActive,
		DueDate:        due,
	}
	require.NoError(t, db.Create(project).Error)
	return project
}

// CreateTask inserts a TODO task of MEDIUM priority with an optional due time.
func CreateTask(t *testing.T, db *gorm.DB, project *models.Project, title string, due *time.Time) *models.Task {
	t.Helper()
	task := &models.Task{
		ProjectID: project.ID,
		Title:     title,
		Status:    models.TaskStatusTodo,
		Priority:  models.TaskPriorityMedium,
		DueDate:   due,
	}
	require.NoError(t, db.Create(task).Error)
	return task
}

// CreateComment inserts a comment on task.
func CreateComment(t *testing.T, db *gorm.DB, task *models.Task, author, content string) *models.Comment {
	t.Helper()
	comment := &models.Comment{
		TaskID:      task.ID,
		Content:     content,
		AuthorEmail: author,
	}
	require.NoError(t, db.Create(comment).Error)
	return comment
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
