package controllers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/budgenv/backend/internal/controllers"
	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/test"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestBudgetPutAndGet() {
	budget := suite.createTestBudget("household", 10000)
	suite.Assert().Equal("household", budget.ID)
	suite.Assert().Equal(int64(10000), budget.UnaffectedAmount)

	r := suite.request(http.MethodPost, "/budgets/household", suite.token("household"), models.BudgetEditable{Name: "Household", UnaffectedAmount: 500})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusCreated)

	updated := suite.getBudget("household")
	suite.Assert().Equal("Household", updated.Name)
	suite.Assert().Equal(int64(500), updated.UnaffectedAmount)
	suite.Assert().Equal(budget.CreatedAt, updated.CreatedAt, "Replacing a budget must keep its creation time")
}

func (suite *TestSuiteStandard) TestBudgetList() {
	_ = suite.createTestBudget("household", 100)
	_ = suite.createTestBudget("holiday", 200)
	_ = suite.createTestBudget("someone-else", 300)

	tests := []struct {
		name string
		keys []string
		ids  []string
	}{
		{"Two budgets", []string{"household", "holiday"}, []string{"holiday", "household"}},
		{"Unknown keys are skipped", []string{"household", "gone"}, []string{"household"}},
		{"No keys", []string{}, []string{}},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			r := suite.request(http.MethodGet, "/budgets", suite.token(tt.keys...), nil)
			test.AssertHTTPStatus(t, &r, http.StatusOK)

			var list controllers.BudgetListResponse
			test.DecodeResponse(t, &r, &list)

			ids := make([]string, 0, len(list.Data))
			for _, b := range list.Data {
				ids = append(ids, b.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func (suite *TestSuiteStandard) TestBudgetForbidden() {
	_ = suite.createTestBudget("household", 100)

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/budgets/household"},
		{http.MethodPost, "/budgets/household"},
		{http.MethodGet, "/budgets/household/categories"},
		{http.MethodGet, "/budgets/household/affectations"},
		{http.MethodPost, "/budgets/household/affectations/reconcile"},
		{http.MethodGet, "/budgets/household/transactions/last/5"},
	}

	for _, tt := range tests {
		r := suite.request(tt.method, tt.path, suite.token("holiday"), models.BudgetEditable{})
		suite.assertError(&r, http.StatusForbidden, "BUDGET_NOT_ALLOWED")
	}

	// The budget must not have been changed
	suite.Assert().Equal(int64(100), suite.getBudget("household").UnaffectedAmount)
}

func (suite *TestSuiteStandard) TestBudgetNotFound() {
	r := suite.request(http.MethodGet, "/budgets/household", suite.token("household"), nil)
	e := suite.assertError(&r, http.StatusNotFound, "NOT_FOUND")
	suite.Assert().Equal("there is no budget matching your query", e.Message)
}

func (suite *TestSuiteStandard) TestBudgetInvalidBody() {
	tests := []struct {
		name string
		body any
	}{
		{"Empty", ""},
		{"Broken JSON", `{ "unaffectedAmount": 5`},
		{"Wrong type", `{ "unaffectedAmount": "lots" }`},
	}

	for _, tt := range tests {
		r := suite.request(http.MethodPost, "/budgets/household", suite.token("household"), tt.body)
		suite.assertError(&r, http.StatusBadRequest, "BODY_NOT_VALID")
	}
}

func (suite *TestSuiteStandard) TestBudgetDatabaseClosed() {
	suite.CloseDB()

	r := suite.request(http.MethodGet, "/budgets/household", suite.token("household"), nil)
	e := suite.assertError(&r, http.StatusInternalServerError, "UNKNOWN")
	suite.Assert().False(strings.Contains(e.Message, "database is closed"), "Driver details must not be returned to clients")
}
