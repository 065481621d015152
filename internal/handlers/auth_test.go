package handlers

import (
	"net/http"

	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/testutil"
)

func (suite *HandlerTestSuite) TestSignupLoginMe() {
	credentials := map[string]string{
		"email":    "New.User@example.com",
		"password": "supersecret",
	}

	w := suite.request(http.MethodPost, "/api/auth/signup", credentials, nil)
	suite.Require().Equal(http.StatusCreated, w.Code)
	var created dto.UserDTO
	suite.decode(w, &created)
	suite.Equal("new.user@example.com", created.Email)

	w = suite.request(http.MethodPost, "/api/auth/signup", credentials, nil)
	suite.Equal(http.StatusConflict, w.Code)

	w = suite.request(http.MethodPost, "/api/auth/login", credentials, nil)
	suite.Require().Equal(http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	suite.Require().NotEmpty(cookies)

	w = suite.request(http.MethodGet, "/api/auth/me", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	var me dto.UserDTO
	suite.decode(w, &me)
	suite.Equal(created.ID, me.ID)

	w = suite.request(http.MethodPost, "/api/auth/logout", nil, cookies)
	suite.Require().Equal(http.StatusOK, w.Code)
	w = suite.request(http.MethodGet, "/api/auth/me", nil, w.Result().Cookies())
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestLogin_WrongPassword() {
	w := suite.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "user@example.com",
		"password": "supersecret",
	}, nil)
	suite.Require().Equal(http.StatusCreated, w.Code)

	w = suite.request(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    "user@example.com",
		"password": "not-the-password",
	}, nil)
	suite.Require().Equal(http.StatusUnauthorized, w.Code)

	var apiErr apierrors.APIError
	suite.decode(w, &apiErr)
	suite.Equal(apierrors.ErrCodeInvalidCredentials, apiErr.Code)
}

func (suite *HandlerTestSuite) TestSignup_Validation() {
	w := suite.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "user@example.com",
		"password": "short",
	}, nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/auth/signup", map[string]string{
		"email":    "not-an-email",
		"password": "supersecret",
	}, nil)
	suite.Equal(http.StatusBadRequest, w.Code)

	w = suite.request(http.MethodPost, "/api/auth/signup", map[string]string{"email": "x@example.com"}, nil)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *HandlerTestSuite) TestRequireAuth() {
	w := suite.request(http.MethodGet, "/api/projects", nil, nil)
	suite.Require().Equal(http.StatusUnauthorized, w.Code)

	var apiErr apierrors.APIError
	suite.decode(w, &apiErr)
	suite.Equal(apierrors.ErrCodeUnauthorized, apiErr.Code)

	// a session for a deleted account is rejected
	user := testutil.CreateUser(suite.T(), suite.db, "gone@example.com")
	cookies := suite.login(user)
	suite.Require().NoError(suite.db.Delete(user).Error)
	w = suite.request(http.MethodGet, "/api/projects", nil, cookies)
	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestListUsers_SuperuserOnly() {
	user := testutil.CreateUser(suite.T(), suite.db, "user@example.com")
	root := testutil.CreateSuperuser(suite.T(), suite.db, "root@example.com")

	w := suite.request(http.MethodGet, "/api/users", nil, suite.login(user))
	suite.Equal(http.StatusForbidden, w.Code)

	w = suite.request(http.MethodGet, "/api/users", nil, suite.login(root))
	suite.Require().Equal(http.StatusOK, w.Code)
	var response map[string][]dto.UserDTO
	suite.decode(w, &response)
	suite.Len(response["users"], 2)
}
