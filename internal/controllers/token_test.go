package controllers_test

import (
	"context"
	"net/http"
	"time"

	"github.com/budgenv/backend/internal/auth"
	"github.com/budgenv/backend/internal/controllers"
	"github.com/budgenv/backend/test"
)

func (suite *TestSuiteStandard) TestLogin() {
	suite.createTestBudget("household", 100)
	_, err := suite.controller.Auth.CreateUser(context.Background(), "alice", "correct horse", []string{"household"})
	suite.Require().Nil(err)

	r := suite.request(http.MethodPost, "/tokens", "", controllers.LoginRequest{Username: "alice", Password: "correct horse"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var token auth.Token
	test.DecodeResponse(suite.T(), &r, &token)
	suite.Require().NotEmpty(token.Token)
	suite.Assert().False(token.ExpiresAt.IsZero())

	// The token grants access to the budgets of the user, and only those
	r = suite.request(http.MethodGet, "/budgets/household", token.Token, nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	r = suite.request(http.MethodGet, "/budgets/other", token.Token, nil)
	suite.assertError(&r, http.StatusForbidden, "BUDGET_NOT_ALLOWED")
}

func (suite *TestSuiteStandard) TestLoginFails() {
	_, err := suite.controller.Auth.CreateUser(context.Background(), "alice", "correct horse", nil)
	suite.Require().Nil(err)

	wrongPassword := suite.request(http.MethodPost, "/tokens", "", controllers.LoginRequest{Username: "alice", Password: "wrong"})
	unknownUser := suite.request(http.MethodPost, "/tokens", "", controllers.LoginRequest{Username: "bob", Password: "correct horse"})

	// Both failures must look exactly the same
	a := suite.assertError(&wrongPassword, http.StatusUnauthorized, "LOGIN_NOT_VALID")
	b := suite.assertError(&unknownUser, http.StatusUnauthorized, "LOGIN_NOT_VALID")
	suite.Assert().Equal(a, b)

	r := suite.request(http.MethodPost, "/tokens", "", "")
	suite.assertError(&r, http.StatusBadRequest, "BODY_NOT_VALID")

	r = suite.request(http.MethodPost, "/tokens", "", `{"username": 5}`)
	suite.assertError(&r, http.StatusBadRequest, "BODY_NOT_VALID")
}

func (suite *TestSuiteStandard) TestInvalidTokens() {
	tests := []struct {
		name   string
		header map[string]string
	}{
		{"No header", map[string]string{}},
		{"Wrong scheme", map[string]string{"Authorization": "Basic YWxpY2U6c2VjcmV0"}},
		{"Garbage", test.Bearer("not-a-token")},
		{"Other secret", test.Bearer(otherSecretToken(suite))},
	}

	for _, tt := range tests {
		r := suite.request(http.MethodGet, "/budgets", "", nil, tt.header)
		suite.assertError(&r, http.StatusUnauthorized, "TOKEN_NOT_VALID")
	}
}

func otherSecretToken(suite *TestSuiteStandard) string {
	token, err := auth.New(nil, "another-secret-that-is-long-enough-too", time.Hour).IssueToken("mallory", []string{"household"})
	suite.Require().Nil(err)
	return token.Token
}

func (suite *TestSuiteStandard) TestCreateUser() {
	r := suite.request(http.MethodPost, "/users", suite.token("household"), controllers.UserCreate{
		Name:              " alice ",
		Password:          "correct horse",
		AllowedBudgetKeys: []string{"household"},
	})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)
	suite.Assert().NotContains(r.Body.String(), "password")
	suite.Assert().NotContains(r.Body.String(), "correct horse")

	var user controllers.UserResponse
	test.DecodeResponse(suite.T(), &r, &user)
	suite.Assert().Equal("alice", user.Data.Name)
	suite.Assert().Equal([]string{"household"}, []string(user.Data.AllowedBudgetKeys))

	r = suite.request(http.MethodPost, "/users", suite.token("household"), controllers.UserCreate{Name: "alice", Password: "other"})
	suite.assertError(&r, http.StatusBadRequest, "USER_NAME_NOT_UNIQUE")
}

func (suite *TestSuiteStandard) TestCreateUserFails() {
	r := suite.request(http.MethodPost, "/users", suite.token("household"), controllers.UserCreate{
		Name:              "mallory",
		Password:          "secret",
		AllowedBudgetKeys: []string{"household", "someone-else"},
	})
	suite.assertError(&r, http.StatusForbidden, "BUDGET_NOT_ALLOWED")

	// A rejected user is not created
	r = suite.request(http.MethodPost, "/tokens", "", controllers.LoginRequest{Username: "mallory", Password: "secret"})
	suite.assertError(&r, http.StatusUnauthorized, "LOGIN_NOT_VALID")

	// Granting no budgets needs no access
	r = suite.request(http.MethodPost, "/users", suite.token("household"), controllers.UserCreate{Name: "carol", Password: "secret"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	r = suite.request(http.MethodPost, "/users", suite.token(), controllers.UserCreate{Name: "", Password: "secret"})
	suite.assertError(&r, http.StatusBadRequest, "BODY_NOT_VALID")

	r = suite.request(http.MethodPost, "/users", suite.token(), controllers.UserCreate{Name: "bob"})
	suite.assertError(&r, http.StatusBadRequest, "BODY_NOT_VALID")
}
