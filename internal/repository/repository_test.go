package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/testutil"
	"gorm.io/gorm"
)

type RepositoryTestSuite struct {
	suite.Suite
	db       *gorm.DB
	ctx      context.Context
	orgs     OrganizationRepository
	projects ProjectRepository
	tasks    TaskRepository
	comments CommentRepository
}

func (s *RepositoryTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.ctx = context.Background()
	s.orgs = NewOrganizationRepository(s.db)
	s.projects = NewProjectRepository(s.db)
	s.tasks = NewTaskRepository(s.db)
	s.comments = NewCommentRepository(s.db)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func (s *RepositoryTestSuite) TestAccessibleIDs_OwnerOrMemberOnce() {
	alice := testutil.CreateUser(s.T(), s.db, "alice@example.com")
	bob := testutil.CreateUser(s.T(), s.db, "bob@example.com")

	owned := testutil.CreateOrganization(s.T(), s.db, "Owned", alice)
	joined := testutil.CreateOrganization(s.T(), s.db, "Joined", bob)
	testutil.AddMember(s.T(), s.db, joined, alice)
	both := testutil.CreateOrganization(s.T(), s.db, "Both", alice)
	testutil.AddMember(s.T(), s.db, both, alice)
	testutil.CreateOrganization(s.T(), s.db, "Other", bob)

	ids, err := s.orgs.AccessibleIDs(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal([]uint64{owned.ID, joined.ID, both.ID}, ids)

	ids, err = s.orgs.AccessibleIDs(s.ctx, 9999)
	s.Require().NoError(err)
	s.Empty(ids)
}

func (s *RepositoryTestSuite) TestEmptyScopeMatchesNothing() {
	owner := testutil.CreateUser(s.T(), s.db, "owner@example.com")
	org := testutil.CreateOrganization(s.T(), s.db, "Acme", owner)
	project := testutil.CreateProject(s.T(), s.db, org, "Launch", nil)
	task := testutil.CreateTask(s.T(), s.db, project, "Write docs", nil)
	testutil.CreateComment(s.T(), s.db, task, owner.Email, "first")

	orgs, err := s.orgs.List(s.ctx, OrganizationFilter{})
	s.Require().NoError(err)
	s.Empty(orgs)

	projects, err := s.projects.List(s.ctx, ProjectFilter{})
	s.Require().NoError(err)
	s.Empty(projects)

	tasks, err := s.tasks.List(s.ctx, TaskFilter{})
	s.Require().NoError(err)
	s.Empty(tasks)

	comments, err := s.comments.List(s.ctx, CommentFilter{})
	s.Require().NoError(err)
	s.Empty(comments)

	comments, err = s.comments.List(s.ctx, CommentFilter{Scope: Scope{All: true}})
	s.Require().NoError(err)
	s.Len(comments, 1)
}

func (s *RepositoryTestSuite) TestScopeRestrictsEveryLevel() {
	owner := testutil.CreateUser(s.T(), s.db, "owner@example.com")
	mine := testutil.CreateOrganization(s.T(), s.db, "Mine", owner)
	theirs := testutil.CreateOrganization(s.T(), s.db, "Theirs", owner)

	myTask := testutil.CreateTask(s.T(), s.db, testutil.CreateProject(s.T(), s.db, mine, "Mine P", nil), "mine", nil)
	theirTask := testutil.CreateTask(s.T(), s.db, testutil.CreateProject(s.T(), s.db, theirs, "Theirs P", nil), "theirs", nil)
	testutil.CreateComment(s.T(), s.db, myTask, owner.Email, "mine")
	testutil.CreateComment(s.T(), s.db, theirTask, owner.Email, "theirs")

	scope := SingleOrganization(mine.ID)

	projects, err := s.projects.List(s.ctx, ProjectFilter{Scope: scope})
	s.Require().NoError(err)
	s.Require().Len(projects, 1)
	s.Equal("Mine P", projects[0].Name)

	tasks, err := s.tasks.List(s.ctx, TaskFilter{Scope: scope})
	s.Require().NoError(err)
	s.Require().Len(tasks, 1)
	s.Equal(myTask.ID, tasks[0].ID)

	comments, err := s.comments.List(s.ctx, CommentFilter{Scope: scope})
	s.Require().NoError(err)
	s.Require().Len(comments, 1)
	s.Equal("mine", comments[0].Content)
}

func (s *RepositoryTestSuite) TestContainsAny_TreatsWildcardsLiterally() {
	owner := testutil.CreateUser(s.T(), s.db, "owner@example.com")
	org := testutil.CreateOrganization(s.T(), s.db, "Acme", owner)
	project := testutil.CreateProject(s.T(), s.db, org, "Launch", nil)
	testutil.CreateTask(s.T(), s.db, project, "100% Done", nil)
	testutil.CreateTask(s.T(), s.db, project, "1000 done", nil)
	testutil.CreateTask(s.T(), s.db, project, "a_b", nil)
	testutil.CreateTask(s.T(), s.db, project, "axb", nil)

	titles := func(query string) []string {
		tasks, err := s.tasks.List(s.ctx, TaskFilter{Scope: Scope{All: true}, Query: query})
		s.Require().NoError(err)
		out := make([]string, len(tasks))
		for i, task := range tasks {
			out[i] = task.Title
		}
		return out
	}

	s.ElementsMatch([]string{"100% Done"}, titles("0%"))
	s.ElementsMatch([]string{"a_b"}, titles("A_B"))
	s.ElementsMatch([]string{"100% Done", "1000 done"}, titles("DONE"))
}

func (s *RepositoryTestSuite) TestTaskOrderPriority() {
	owner := testutil.CreateUser(s.T(), s.db, "owner@example.com")
	org := testutil.CreateOrganization(s.T(), s.db, "Acme", owner)
	project := testutil.CreateProject(s.T(), s.db, org, "Launch", nil)

	now := time.Now().UTC().Truncate(time.Second)
	create := func(title string, priority models.TaskPriority, due *time.Time) {
		task := testutil.CreateTask(s.T(), s.db, project, title, due)
		task.Priority = priority
		s.Require().NoError(s.tasks.Update(s.ctx, task))
	}
	create("low", models.TaskPriorityLow, testutil.Ptr(now))
	create("high-undated", models.TaskPriorityHigh, nil)
	create("high-later", models.TaskPriorityHigh, testutil.Ptr(now.Add(48*time.Hour)))
	create("urgent", models.TaskPriorityUrgent, testutil.Ptr(now.Add(72*time.Hour)))
	create("high-soon", models.TaskPriorityHigh, testutil.Ptr(now.Add(time.Hour)))

	tasks, err := s.tasks.List(s.ctx, TaskFilter{
		Scope:      Scope{All: true},
		Priorities: []models.TaskPriority{models.TaskPriorityHigh, models.TaskPriorityUrgent},
		Order:      TaskOrderPriority,
	})
	s.Require().NoError(err)

	var titles []string
	for _, task := range tasks {
		titles = append(titles, task.Title)
	}
	s.Equal([]string{"urgent", "high-soon", "high-later", "high-undated"}, titles)
}

func (s *RepositoryTestSuite) TestAggregatesCountDistinct() {
	owner := testutil.CreateUser(s.T(), s.db, "owner@example.com")
	org := testutil.CreateOrganization(s.T(), s.db, "Acme", owner)
	testutil.CreateOrganization(s.T(), s.db, "Empty", owner)
	first := testutil.CreateProject(s.T(), s.db, org, "First", nil)
	second := testutil.CreateProject(s.T(), s.db, org, "Second", nil)

	past := time.Now().UTC().Add(-time.Hour)
	overdue := testutil.CreateTask(s.T(), s.db, first, "overdue", &past)
	done := testutil.CreateTask(s.T(), s.db, first, "done", &past)
	done.Status = models.TaskStatusDone
	s.Require().NoError(s.tasks.Update(s.ctx, done))
	testutil.CreateTask(s.T(), s.db, second, "todo", nil)

	testutil.CreateComment(s.T(), s.db, overdue, owner.Email, "one")
	testutil.CreateComment(s.T(), s.db, overdue, owner.Email, "two")

	orgStats, err := s.orgs.WithStats(s.ctx, Scope{All: true})
	s.Require().NoError(err)
	s.Require().Len(orgStats, 2)
	s.Equal("Acme", orgStats[0].Name)
	s.EqualValues(2, orgStats[0].ProjectCount)
	s.EqualValues(3, orgStats[0].TotalTasks)
	s.EqualValues(1, orgStats[0].CompletedTasks)
	s.Equal("Empty", orgStats[1].Name)
	s.Zero(orgStats[1].ProjectCount)

	projectStats, err := s.projects.WithTaskStats(s.ctx, SingleOrganization(org.ID), time.Now().UTC())
	s.Require().NoError(err)
	s.Require().Len(projectStats, 2)
	byName := map[string]ProjectWithStats{}
	for _, row := range projectStats {
		byName[row.Name] = row
	}
	s.EqualValues(2, byName["First"].TaskCount)
	s.EqualValues(1, byName["First"].CompletedTasksCount)
	s.EqualValues(1, byName["First"].OverdueTasksCount)
	s.EqualValues(1, byName["Second"].TodoTasksCount)
	s.Zero(byName["Second"].OverdueTasksCount)

	withCounts, err := s.tasks.WithCommentCount(s.ctx, SingleOrganization(org.ID))
	s.Require().NoError(err)
	s.Require().Len(withCounts, 3)
	counts := map[string]int64{}
	for _, row := range withCounts {
		counts[row.Title] = row.CommentCount
	}
	s.Equal(map[string]int64{"overdue": 2, "done": 0, "todo": 0}, counts)
}

func (s *RepositoryTestSuite) TestDeleteOrganizationRemovesDescendants() {
	owner := testutil.CreateUser(s.T(), s.db, "owner@example.com")
	member := testutil.CreateUser(s.T(), s.db, "member@example.com")
	org := testutil.CreateOrganization(s.T(), s.db, "Acme", owner)
	testutil.AddMember(s.T(), s.db, org, member)
	task := testutil.CreateTask(s.T(), s.db, testutil.CreateProject(s.T(), s.db, org, "Launch", nil), "t", nil)
	testutil.CreateComment(s.T(), s.db, task, owner.Email, "c")

	s.Require().NoError(s.orgs.Delete(s.ctx, org.ID))

	for _, model := range []any{&models.Organization{}, &models.OrganizationMember{}, &models.Project{}, &models.Task{}, &models.Comment{}} {
		var count int64
		s.Require().NoError(s.db.Model(model).Count(&count).Error)
		s.Zero(count)
	}

	_, err := s.orgs.FindByID(s.ctx, org.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *RepositoryTestSuite) TestMembership() {
	owner := testutil.CreateUser(s.T(), s.db, "owner@example.com")
	member := testutil.CreateUser(s.T(), s.db, "member@example.com")

	org := &models.Organization{Name: "Acme", Slug: "acme", ContactEmail: owner.Email, OwnerID: owner.ID, InviteCode: "ACME"}
	s.Require().NoError(s.orgs.CreateWithOwner(s.ctx, org))

	isMember, err := s.orgs.IsMember(s.ctx, org.ID, owner.ID)
	s.Require().NoError(err)
	s.True(isMember)

	s.Require().NoError(s.orgs.AddMember(s.ctx, &models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         member.ID,
		JoinedAt:       time.Now().UTC(),
	}))
	users, err := s.orgs.ListMembers(s.ctx, org.ID)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal("member@example.com", users[0].Email)

	s.Require().NoError(s.orgs.RemoveMember(s.ctx, org.ID, member.ID))
	isMember, err = s.orgs.IsMember(s.ctx, org.ID, member.ID)
	s.Require().NoError(err)
	s.False(isMember)

	found, err := s.orgs.FindByInviteCode(s.ctx, "ACME")
	s.Require().NoError(err)
	s.Equal(org.ID, found.ID)
}
