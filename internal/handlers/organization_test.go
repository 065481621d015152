package handlers

import (
	"fmt"
	"net/http"

	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/dto"
	"github.com/yukikurage/project-management-api/internal/testutil"
)

func (suite *HandlerTestSuite) TestCreateOrganization() {
	owner := testutil.CreateUser(suite.T(), suite.db, "owner@example.com")
	cookies := suite.login(owner)

	w := suite.request(http.MethodPost, "/api/organizations", map[string]string{"name": "New Org"}, cookies)
	suite.Require().Equal(http.StatusCreated, w.Code)

	var created dto.OrganizationDTO
	suite.decode(w, &created)
	suite.Equal("New Org", created.Name)
	suite.Equal("new-org", created.Slug)
	suite.Equal("owner@example.com", created.ContactEmail)
	suite.NotEmpty(created.InviteCode)

	w = suite.request(http.MethodPost, "/api/organizations", map[string]string{"name": "New Org"}, cookies)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request(http.MethodPost, "/api/organizations", map[string]string{"name": "Other", "slug": "Bad Slug"}, cookies)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestInviteCodeVisibleToOwnerOnly() {
	owner := testutil.CreateUser(suite.T(), suite.db, "owner@example.com")
	member := testutil.CreateUser(suite.T(), suite.db, "member@example.com")
	org := testutil.CreateOrganization(suite.T(), suite.db, "Acme", owner)
	testutil.AddMember(suite.T(), suite.db, org, member)

	var response map[string][]dto.OrganizationDTO

	w := suite.request(http.MethodGet, "/api/organizations", nil, suite.login(owner))
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &response)
	suite.Require().Len(response["organizations"], 1)
	suite.Equal(org.InviteCode, response["organizations"][0].InviteCode)

	w = suite.request(http.MethodGet, "/api/organizations", nil, suite.login(member))
	suite.Require().Equal(http.StatusOK, w.Code)
	suite.decode(w, &response)
	suite.Require().Len(response["organizations"], 1)
	suite.Empty(response["organizations"][0].InviteCode)
}

func (suite *HandlerTestSuite) TestUpdateOrganization_Permissions() {
	owner := testutil.CreateUser(suite.T(), suite.db, "owner@example.com")
	member := testutil.CreateUser(suite.T(), suite.db, "member@example.com")
	outsider := testutil.CreateUser(suite.T(), suite.db, "outsider@example.com")
	org := testutil.CreateOrganization(suite.T(), suite.db, "Acme", owner)
	testutil.AddMember(suite.T(), suite.db, org, member)

	url := fmt.Sprintf("/api/organizations/%d", org.ID)
	body := map[string]string{"name": "Renamed"}

	w := suite.request(http.MethodPatch, url, body, suite.login(member))
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodPatch, url, body, suite.login(outsider))
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodPatch, "/api/organizations/abc", body, suite.login(owner))
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPatch, url, body, suite.login(owner))
	suite.Require().Equal(http.StatusOK, w.Code)
	var updated dto.OrganizationDTO
	suite.decode(w, &updated)
	suite.Equal("Renamed", updated.Name)
}

func (suite *HandlerTestSuite) TestMembership() {
	owner := testutil.CreateUser(suite.T(), suite.db, "owner@example.com")
	friend := testutil.CreateUser(suite.T(), suite.db, "friend@example.com")
	ownerCookies := suite.login(owner)
	friendCookies := suite.login(friend)

	w := suite.request(http.MethodPost, "/api/organizations", map[string]string{"name": "Club"}, ownerCookies)
	suite.Require().Equal(http.StatusCreated, w.Code)
	var org dto.OrganizationDTO
	suite.decode(w, &org)

	// not a member yet
	w = suite.request(http.MethodGet, "/api/orgs/"+org.Slug, nil, friendCookies)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodPost, "/api/organizations/join", map[string]string{"invite_code": "WRONG"}, friendCookies)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodPost, "/api/organizations/join", map[string]string{"invite_code": org.InviteCode}, friendCookies)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodPost, "/api/organizations/join", map[string]string{"invite_code": org.InviteCode}, friendCookies)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request(http.MethodGet, "/api/orgs/"+org.Slug, nil, friendCookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	var detail dto.OrganizationDetailDTO
	suite.decode(w, &detail)
	suite.Len(detail.Members, 2)
	suite.Empty(detail.InviteCode)

	w = suite.request(http.MethodDelete, fmt.Sprintf("/api/organizations/%d/members/%d", org.ID, friend.ID), nil, ownerCookies)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/orgs/"+org.Slug, nil, friendCookies)
	suite.Equal(http.StatusNotFound, w.Code)

	w = suite.request(http.MethodPost, fmt.Sprintf("/api/organizations/%d/members", org.ID), map[string]string{"email": "friend@example.com"}, ownerCookies)
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.request(http.MethodDelete, fmt.Sprintf("/api/organizations/%d/members/%d", org.ID, owner.ID), nil, ownerCookies)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestDeleteOrganization() {
	owner := testutil.CreateUser(suite.T(), suite.db, "owner@example.com")
	org := testutil.CreateOrganization(suite.T(), suite.db, "Acme", owner)
	testutil.CreateProject(suite.T(), suite.db, org, "Launch", nil)
	cookies := suite.login(owner)

	w := suite.request(http.MethodDelete, fmt.Sprintf("/api/organizations/%d", org.ID), nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)

	w = suite.request(http.MethodGet, "/api/projects", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	var response map[string][]dto.ProjectDTO
	suite.decode(w, &response)
	suite.Empty(response["projects"])
}

func (suite *HandlerTestSuite) TestOrganizationContext() {
	alice := testutil.CreateUser(suite.T(), suite.db, "alice@example.com")
	a := testutil.CreateOrganization(suite.T(), suite.db, "A", alice)
	b := testutil.CreateOrganization(suite.T(), suite.db, "B", alice)
	testutil.CreateProject(suite.T(), suite.db, a, "in A", nil)
	testutil.CreateProject(suite.T(), suite.db, b, "in B", nil)

	mallory := testutil.CreateUser(suite.T(), suite.db, "mallory@example.com")
	hidden := testutil.CreateOrganization(suite.T(), suite.db, "Hidden", mallory)
	testutil.CreateProject(suite.T(), suite.db, hidden, "secret", nil)

	cookies := suite.login(alice)
	names := func(path string, headers ...string) []string {
		w := suite.request(http.MethodGet, path, nil, cookies, headers...)
		suite.Require().Equal(http.StatusOK, w.Code, w.Body.String())
		var response map[string][]dto.ProjectDTO
		suite.decode(w, &response)
		out := []string{}
		for _, p := range response["projects"] {
			out = append(out, p.Name)
		}
		return out
	}

	suite.ElementsMatch([]string{"in A", "in B"}, names("/api/projects"))
	suite.Equal([]string{"in A"}, names("/api/projects", constants.HeaderOrganizationSlug, a.Slug))
	suite.Equal([]string{"in B"}, names("/api/orgs/"+b.Slug+"/projects"))
	suite.Equal([]string{"in A"}, names("/api/projects?organization="+a.Slug))

	// an inaccessible header falls back to global mode
	suite.ElementsMatch([]string{"in A", "in B"}, names("/api/projects", constants.HeaderOrganizationSlug, hidden.Slug))

	// an inaccessible URL segment is not found
	w := suite.request(http.MethodGet, "/api/orgs/"+hidden.Slug+"/projects", nil, cookies)
	suite.Equal(http.StatusNotFound, w.Code)
	w = suite.request(http.MethodGet, "/api/projects?organization="+hidden.Slug, nil, cookies)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *HandlerTestSuite) TestOrganizationStatsAndSearch() {
	owner := testutil.CreateUser(suite.T(), suite.db, "owner@example.com")
	org := testutil.CreateOrganization(suite.T(), suite.db, "Acme Rockets", owner)
	project := testutil.CreateProject(suite.T(), suite.db, org, "Launch", nil)
	testutil.CreateTask(suite.T(), suite.db, project, "Fuel", nil)
	cookies := suite.login(owner)

	w := suite.request(http.MethodGet, "/api/organizations/stats", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	var stats map[string][]dto.OrganizationStatsDTO
	suite.decode(w, &stats)
	suite.Require().Len(stats["organizations"], 1)
	suite.Equal(int64(1), stats["organizations"][0].ProjectCount)
	suite.Equal(int64(1), stats["organizations"][0].TotalTasks)

	w = suite.request(http.MethodGet, "/api/organizations/search?q=ROCK", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	var found map[string][]dto.OrganizationDTO
	suite.decode(w, &found)
	suite.Len(found["organizations"], 1)

	w = suite.request(http.MethodGet, "/api/organizations/search", nil, cookies)
	suite.Equal(http.StatusBadRequest, w.Code)
}
