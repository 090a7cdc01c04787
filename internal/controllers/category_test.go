package controllers_test

import (
	"net/http"
	"strings"

	"github.com/budgenv/backend/internal/controllers"
	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/test"
	"github.com/google/uuid"
)

func (suite *TestSuiteStandard) TestCategoryCreate() {
	_ = suite.createTestBudget("household", 10000)

	date := "2025-06-01"
	category := suite.createTestCategory("household", models.CategoryEditable{
		Name: "Holidays",
		Goal: models.Goal{Type: models.GoalSaveByDate, Amount: 120000, Date: &date},
	})

	suite.Assert().NotEqual(uuid.Nil, category.ID)
	suite.Assert().Equal("household", category.BudgetID)
	suite.Assert().Equal(int64(0), category.Amount, "New categories start without money")
	suite.Assert().Equal(models.GoalSaveByDate, category.Goal.Type)

	fetched := suite.getCategory("household", category.ID.String())
	suite.Assert().Equal(category.Name, fetched.Name)
	suite.Assert().Equal(date, *fetched.Goal.Date)
}

func (suite *TestSuiteStandard) TestCategoryCreateFails() {
	_ = suite.createTestBudget("household", 10000)

	tests := []struct {
		name   string
		budget string
		body   any
		status int
		reason string
	}{
		{"Name too long", "household", models.CategoryEditable{Name: strings.Repeat("a", 101)}, http.StatusBadRequest, "CAT_NAME_TOO_LONG"},
		{"Goal date missing", "household", models.CategoryEditable{Name: "Holidays", Goal: models.Goal{Type: models.GoalSaveByDate, Amount: 100}}, http.StatusBadRequest, "DATE_MISSING"},
		{"Goal date empty", "household", `{"name": "Holidays", "goal": {"goalType": "SAVEBYDATE", "amount": 100, "date": ""}}`, http.StatusBadRequest, "DATE_MISSING"},
		{"Broken body", "household", `{"name": }`, http.StatusBadRequest, "BODY_NOT_VALID"},
		{"Budget missing", "holiday", models.CategoryEditable{Name: "Holidays"}, http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		r := suite.request(http.MethodPost, "/budgets/"+tt.budget+"/categories", suite.token(tt.budget), tt.body)
		suite.assertError(&r, tt.status, tt.reason)
	}
}

func (suite *TestSuiteStandard) TestCategoryList() {
	_ = suite.createTestBudget("household", 10000)

	r := suite.request(http.MethodGet, "/budgets/household/categories", suite.token("household"), nil)
	suite.assertError(&r, http.StatusNotFound, "NOT_FOUND")

	_ = suite.createTestCategory("household", models.CategoryEditable{Name: "Rent"})
	_ = suite.createTestCategory("household", models.CategoryEditable{Name: "Groceries"})

	r = suite.request(http.MethodGet, "/budgets/household/categories", suite.token("household"), nil)
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var list controllers.CategoryListResponse
	test.DecodeResponse(suite.T(), &r, &list)
	suite.Require().Len(list.Data, 2)
	suite.Assert().Equal("Groceries", list.Data[0].Name)
	suite.Assert().Equal("Rent", list.Data[1].Name)
}

func (suite *TestSuiteStandard) TestCategoryUpsert() {
	_ = suite.createTestBudget("household", 10000)
	category := suite.createTestCategory("household", models.CategoryEditable{Name: "Groceries"})
	suite.postAffectation("household", category.ID, 2500, "2024-03")

	// Updating keeps the amount
	r := suite.request(http.MethodPost, "/budgets/household/categories/"+category.ID.String(), suite.token("household"), models.CategoryEditable{Name: "Food"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	var updated controllers.CategoryResponse
	test.DecodeResponse(suite.T(), &r, &updated)
	suite.Assert().Equal("Food", updated.Data.Name)
	suite.Assert().Equal(int64(2500), updated.Data.Amount)

	// An unknown ID creates the category with that ID
	id := uuid.New()
	r = suite.request(http.MethodPost, "/budgets/household/categories/"+id.String(), suite.token("household"), models.CategoryEditable{Name: "Rent"})
	test.AssertHTTPStatus(suite.T(), &r, http.StatusOK)

	created := suite.getCategory("household", id.String())
	suite.Assert().Equal("Rent", created.Name)
	suite.Assert().Equal(int64(0), created.Amount)
}

func (suite *TestSuiteStandard) TestCategoryOtherBudget() {
	_ = suite.createTestBudget("household", 10000)
	_ = suite.createTestBudget("holiday", 10000)
	category := suite.createTestCategory("holiday", models.CategoryEditable{Name: "Flights"})

	r := suite.request(http.MethodGet, "/budgets/household/categories/"+category.ID.String(), suite.token("household", "holiday"), nil)
	suite.assertError(&r, http.StatusNotFound, "NOT_FOUND")

	r = suite.request(http.MethodPost, "/budgets/household/categories/"+category.ID.String(), suite.token("household", "holiday"), models.CategoryEditable{Name: "Stolen"})
	suite.assertError(&r, http.StatusBadRequest, "CATEGORY_NOT_VALID")

	suite.Assert().Equal("Flights", suite.getCategory("holiday", category.ID.String()).Name)
}

func (suite *TestSuiteStandard) TestCategoryInvalidID() {
	_ = suite.createTestBudget("household", 10000)

	r := suite.request(http.MethodGet, "/budgets/household/categories/not-a-uuid", suite.token("household"), nil)
	suite.assertError(&r, http.StatusBadRequest, "PARAMETER_NOT_VALID")
}
