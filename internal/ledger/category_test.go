package ledger_test

import (
	"context"
	"strings"
	"testing"

	"github.com/budgenv/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func (suite *TestSuiteStandard) TestCreateCategory() {
	suite.createTestBudget("B1", 0)

	date := "2024-12-01"
	category, err := suite.engine.CreateCategory(context.Background(), "B1", models.CategoryEditable{
		Name: "Holidays",
		Goal: models.Goal{Type: models.GoalSaveByDate, Amount: 150000, Date: &date},
	})
	suite.Require().Nil(err)
	suite.Assert().NotEqual(uuid.Nil, category.ID)
	suite.Assert().Equal(int64(0), category.Amount)

	stored := suite.category("B1", category)
	suite.Assert().Equal("Holidays", stored.Name)
	suite.Assert().Equal(models.GoalSaveByDate, stored.Goal.Type)
	suite.Assert().Equal(int64(150000), stored.Goal.Amount)
	suite.Require().NotNil(stored.Goal.Date)
	suite.Assert().Equal(date, *stored.Goal.Date)
}

func (suite *TestSuiteStandard) TestCreateCategoryFails() {
	suite.createTestBudget("B1", 0)

	tests := []struct {
		name     string
		budget   string
		category models.CategoryEditable
		err      error
	}{
		{"Name too long", "B1", models.CategoryEditable{Name: strings.Repeat("a", 101)}, models.ErrCategoryNameTooLong},
		{"Goal date missing", "B1", models.CategoryEditable{Name: "Car", Goal: models.Goal{Type: models.GoalSaveByDate, Amount: 100}}, models.ErrMissingDate},
		{"Unknown goal", "B1", models.CategoryEditable{Name: "Car", Goal: models.Goal{Type: "SAVEFOREVER"}}, models.ErrInvalidBody},
		{"Budget missing", "B2", models.CategoryEditable{Name: "Car"}, models.ErrResourceNotFound},
	}

	for _, tt := range tests {
		suite.T().Run(tt.name, func(t *testing.T) {
			_, err := suite.engine.CreateCategory(context.Background(), tt.budget, tt.category)
			assert.ErrorIs(t, err, tt.err)
		})
	}

	_, err := suite.engine.Categories(context.Background(), "B1")
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestCreateCategoryNameLengthInCodePoints() {
	suite.createTestBudget("B1", 0)

	_, err := suite.engine.CreateCategory(context.Background(), "B1", models.CategoryEditable{Name: strings.Repeat("é", 100)})
	suite.Assert().Nil(err)
}

func (suite *TestSuiteStandard) TestUpsertCategory() {
	suite.createTestBudget("B1", 1000)
	category := suite.createTestCategory("B1", "Groceries")

	_, err := suite.engine.PostAffectation(context.Background(), "B1", affectation("2024-03", category.ID, 300))
	suite.Require().Nil(err)

	updated, created, err := suite.engine.UpsertCategory(context.Background(), "B1", category.ID, models.CategoryEditable{
		Name: "Food",
		Goal: models.Goal{Type: models.GoalSpendMonthly, Amount: 400},
	})
	suite.Require().Nil(err)
	suite.Assert().False(created)
	suite.Assert().Equal("Food", updated.Name)
	suite.Assert().Equal(int64(300), updated.Amount, "the amount must not be changed by an update")

	stored := suite.category("B1", category)
	suite.Assert().Equal("Food", stored.Name)
	suite.Assert().Equal(int64(300), stored.Amount)
	suite.Assert().Equal(models.GoalSpendMonthly, stored.Goal.Type)
}

func (suite *TestSuiteStandard) TestUpsertCategoryCreates() {
	suite.createTestBudget("B1", 0)

	id := uuid.New()
	category, created, err := suite.engine.UpsertCategory(context.Background(), "B1", id, models.CategoryEditable{Name: "Rent"})
	suite.Require().Nil(err)
	suite.Assert().True(created)
	suite.Assert().Equal(id, category.ID)
	suite.Assert().Equal(int64(0), category.Amount)

	categories, err := suite.engine.Categories(context.Background(), "B1")
	suite.Require().Nil(err)
	suite.Assert().Len(categories, 1)
}

func (suite *TestSuiteStandard) TestUpsertCategoryOtherBudget() {
	suite.createTestBudget("B1", 0)
	suite.createTestBudget("B2", 0)
	foreign := suite.createTestCategory("B2", "Foreign")

	_, _, err := suite.engine.UpsertCategory(context.Background(), "B1", foreign.ID, models.CategoryEditable{Name: "Mine now"})
	suite.Assert().ErrorIs(err, models.ErrInvalidCategory)
	suite.Assert().Equal("Foreign", suite.category("B2", foreign).Name)
}

func (suite *TestSuiteStandard) TestCategoryOtherBudget() {
	suite.createTestBudget("B1", 0)
	suite.createTestBudget("B2", 0)
	foreign := suite.createTestCategory("B2", "Foreign")

	_, err := suite.engine.Category(context.Background(), "B1", foreign.ID)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestCategoriesOrdered() {
	suite.createTestBudget("B1", 0)
	suite.createTestBudget("B2", 0)
	suite.createTestCategory("B1", "Rent")
	suite.createTestCategory("B1", "Car")
	suite.createTestCategory("B1", "Groceries")
	suite.createTestCategory("B2", "Other")

	categories, err := suite.engine.Categories(context.Background(), "B1")
	suite.Require().Nil(err)
	suite.Require().Len(categories, 3)
	suite.Assert().Equal("Car", categories[0].Name)
	suite.Assert().Equal("Groceries", categories[1].Name)
	suite.Assert().Equal("Rent", categories[2].Name)
}
