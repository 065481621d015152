package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/yukikurage/project-management-api/internal/dto"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/testutil"
)

func (suite *HandlerTestSuite) TestProjectTaskCommentFlow() {
	owner := testutil.CreateUser(suite.T(), suite.db, "owner@example.com")
	member := testutil.CreateUser(suite.T(), suite.db, "member@example.com")
	org := testutil.CreateOrganization(suite.T(), suite.db, "Acme", owner)
	testutil.AddMember(suite.T(), suite.db, org, member)
	cookies := suite.login(member)

	due := time.Now().UTC().AddDate(0, 0, 2).Format(time.DateOnly)
	w := suite.request(http.MethodPost, "/api/projects", map[string]any{
		"organization_id": org.ID,
		"name":            "Launch",
		"due_date":        due,
	}, cookies)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var project dto.ProjectDTO
	suite.decode(w, &project)
	suite.Equal(models.ProjectStatusActive, project.Status)
	suite.Require().NotNil(project.DueDate)
	suite.Equal(due, *project.DueDate)

	w = suite.request(http.MethodGet, "/api/projects/due-soon", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	var soon map[string][]dto.ProjectDTO
	suite.decode(w, &soon)
	suite.Len(soon["projects"], 1)

	w = suite.request(http.MethodPost, "/api/tasks", map[string]any{
		"project_id": project.ID,
		"title":      "Fuel",
		"priority":   models.TaskPriorityUrgent,
	}, cookies)
	suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var task dto.TaskDTO
	suite.decode(w, &task)
	suite.Equal(models.TaskStatusTodo, task.Status)

	commentsURL := fmt.Sprintf("/api/tasks/%d/comments", task.ID)
	for i := 0; i < 2; i++ {
		w = suite.request(http.MethodPost, commentsURL, map[string]string{"content": "looks good"}, cookies)
		suite.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	}

	w = suite.request(http.MethodGet, commentsURL, nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	var comments map[string][]dto.CommentDTO
	suite.decode(w, &comments)
	suite.Require().Len(comments["comments"], 2)
	suite.Equal("member@example.com", comments["comments"][0].AuthorEmail)

	w = suite.request(http.MethodGet, "/api/tasks/comment-counts", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	var counts map[string][]dto.TaskWithCommentCountDTO
	suite.decode(w, &counts)
	suite.Require().Len(counts["tasks"], 1)
	suite.Equal(int64(2), counts["tasks"][0].CommentCount)

	w = suite.request(http.MethodGet, "/api/tasks/high-priority", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	var high dto.TaskListResponse
	suite.decode(w, &high)
	suite.Equal(1, high.Count)

	w = suite.request(http.MethodPatch, fmt.Sprintf("/api/tasks/%d", task.ID), map[string]any{"status": models.TaskStatusDone}, cookies)
	suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = suite.request(http.MethodGet, "/api/tasks/high-priority", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &high)
	suite.Zero(high.Count)

	w = suite.request(http.MethodGet, fmt.Sprintf("/api/projects/%d/tasks", project.ID), nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	var byProject dto.TaskListResponse
	suite.decode(w, &byProject)
	suite.Require().Len(byProject.Tasks, 1)
	suite.Equal(models.TaskStatusDone, byProject.Tasks[0].Status)
}

func (suite *HandlerTestSuite) TestCrossTenantLookupsAreNotFound() {
	alice := testutil.CreateUser(suite.T(), suite.db, "alice@example.com")
	mallory := testutil.CreateUser(suite.T(), suite.db, "mallory@example.com")
	org := testutil.CreateOrganization(suite.T(), suite.db, "Acme", alice)
	project := testutil.CreateProject(suite.T(), suite.db, org, "Launch", nil)
	task := testutil.CreateTask(suite.T(), suite.db, project, "Fuel", nil)
	comment := testutil.CreateComment(suite.T(), suite.db, task, "alice@example.com", "secret plans")
	cookies := suite.login(mallory)

	for _, url := range []string{
		fmt.Sprintf("/api/projects/%d", project.ID),
		fmt.Sprintf("/api/projects/%d/tasks", project.ID),
		fmt.Sprintf("/api/tasks/%d", task.ID),
		fmt.Sprintf("/api/tasks/%d/comments", task.ID),
		"/api/projects/999",
	} {
		w := suite.request(http.MethodGet, url, nil, cookies)
		suite.Equal(http.StatusNotFound, w.Code, url)
		suite.NotContains(w.Body.String(), "Launch")
	}

	w := suite.request(http.MethodPatch, fmt.Sprintf("/api/comments/%d", comment.ID), map[string]string{"content": "mine now"}, cookies)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodPost, "/api/tasks", map[string]any{"project_id": project.ID, "title": "sneaky"}, cookies)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodGet, "/api/comments/search?q=secret", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	var found map[string][]dto.CommentDTO
	suite.decode(w, &found)
	suite.Empty(found["comments"])
}

func (suite *HandlerTestSuite) TestQueryParameterValidation() {
	user := testutil.CreateUser(suite.T(), suite.db, "user@example.com")
	testutil.CreateOrganization(suite.T(), suite.db, "Acme", user)
	cookies := suite.login(user)

	for url, status := range map[string]int{
		"/api/projects/due-soon?days=abc":    http.StatusBadRequest,
		"/api/projects/due-soon?days=-1":     http.StatusBadRequest,
		"/api/tasks/due-soon?days=3":         http.StatusOK,
		"/api/comments/recent":               http.StatusOK,
		"/api/tasks/search":                  http.StatusBadRequest,
		"/api/tasks/search?q=x":              http.StatusOK,
		"/api/tasks/status/SOMEDAY":          http.StatusBadRequest,
		"/api/tasks/status/TODO":             http.StatusOK,
		"/api/tasks/priority/LOW":            http.StatusOK,
		"/api/projects/status/ON_HOLD":       http.StatusOK,
		"/api/projects/status/archived":      http.StatusBadRequest,
		"/api/tasks/assignee":                http.StatusBadRequest,
		"/api/tasks/assignee?email=a@b.com":  http.StatusOK,
		"/api/comments/author?email=a@b.com": http.StatusOK,
		"/api/tasks/abc":                     http.StatusBadRequest,
		"/api/tasks/overdue":                 http.StatusOK,
		"/api/projects/overdue":              http.StatusOK,
		"/api/projects/stats":                http.StatusOK,
		"/api/projects/search?q=%25":         http.StatusOK,
	} {
		w := suite.request(http.MethodGet, url, nil, cookies)
		suite.Equal(status, w.Code, url)
	}

	w := suite.request(http.MethodPost, "/api/projects", map[string]any{"name": "No org"}, cookies)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/projects", map[string]any{"name": "Bad date", "organization_id": 1, "due_date": "tomorrow"}, cookies)
	suite.Equal(http.StatusBadRequest, w.Code)
}
