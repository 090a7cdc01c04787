package ledger_test

import (
	"context"

	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/internal/types"
	"github.com/google/uuid"
)

func (suite *TestSuiteStandard) recordTestTransaction(budgetID string, categoryID uuid.UUID, date types.Day, amount int64) models.Transaction {
	transaction, err := suite.engine.RecordTransaction(context.Background(), budgetID, models.TransactionEditable{
		CategoryID: categoryID,
		Date:       date,
		Amount:     amount,
		Payee:      "Corner Shop",
	})
	if err != nil {
		suite.Assert().FailNow("Transaction could not be saved", "Error: %s, Transaction: %#v", err, transaction)
	}
	return transaction
}

func (suite *TestSuiteStandard) TestRecordTransaction() {
	suite.createTestBudget("B1", 1000)
	c1 := suite.createTestCategory("B1", "C1")

	transaction := suite.recordTestTransaction("B1", c1.ID, "2024-03-05", -1250)
	suite.Assert().Equal(20240305, transaction.ComparableDate)
	suite.Assert().Equal("B1", transaction.BudgetID)

	stored, err := suite.engine.Transaction(context.Background(), transaction.ID)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(-1250), stored.Amount)
	suite.Assert().Equal(types.Day("2024-03-05"), stored.Date)

	// Transactions do not move money
	suite.Assert().Equal(int64(1000), suite.budget("B1").UnaffectedAmount)
	suite.Assert().Equal(int64(0), suite.category("B1", c1).Amount)
}

func (suite *TestSuiteStandard) TestRecordTransactionFails() {
	suite.createTestBudget("B1", 1000)
	suite.createTestBudget("B2", 1000)
	c1 := suite.createTestCategory("B1", "C1")
	foreign := suite.createTestCategory("B2", "Foreign")

	tests := []struct {
		name     string
		budget   string
		category uuid.UUID
		date     types.Day
		err      error
	}{
		{"Date missing", "B1", c1.ID, "", models.ErrDateFormat},
		{"Date malformed", "B1", c1.ID, "05.03.2024", models.ErrDateFormat},
		{"Month only", "B1", c1.ID, "2024-03", models.ErrDateFormat},
		{"Category of other budget", "B1", foreign.ID, "2024-03-05", models.ErrInvalidCategory},
		{"Category missing", "B1", uuid.New(), "2024-03-05", models.ErrInvalidCategory},
		{"Budget missing", "B3", c1.ID, "2024-03-05", models.ErrResourceNotFound},
	}

	for _, tt := range tests {
		_, err := suite.engine.RecordTransaction(context.Background(), tt.budget, models.TransactionEditable{
			CategoryID: tt.category,
			Date:       tt.date,
			Amount:     10,
		})
		suite.Assert().ErrorIs(err, tt.err, tt.name)
	}

	_, err := suite.engine.LastTransactions(context.Background(), "B1", 10)
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestTransactionsInRange() {
	suite.createTestBudget("B1", 0)
	suite.createTestBudget("B2", 0)
	c1 := suite.createTestCategory("B1", "C1")
	c2 := suite.createTestCategory("B2", "C2")

	suite.recordTestTransaction("B1", c1.ID, "2024-02-28", 1)
	suite.recordTestTransaction("B1", c1.ID, "2024-03-15", 2)
	suite.recordTestTransaction("B1", c1.ID, "2024-03-01", 3)
	suite.recordTestTransaction("B1", c1.ID, "2024-03-31", 4)
	suite.recordTestTransaction("B1", c1.ID, "2024-04-01", 5)
	suite.recordTestTransaction("B2", c2.ID, "2024-03-10", 6)

	transactions, err := suite.engine.TransactionsInRange(context.Background(), "B1", "2024-03-01", "2024-03-31")
	suite.Require().Nil(err)
	suite.Require().Len(transactions, 3)
	suite.Assert().Equal(int64(3), transactions[0].Amount)
	suite.Assert().Equal(int64(2), transactions[1].Amount)
	suite.Assert().Equal(int64(4), transactions[2].Amount)

	_, err = suite.engine.TransactionsInRange(context.Background(), "B1", "2025-01-01", "2025-12-31")
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	_, err = suite.engine.TransactionsInRange(context.Background(), "B1", "2024-03", "2024-03-31")
	suite.Assert().ErrorIs(err, models.ErrDateFormat)
}

func (suite *TestSuiteStandard) TestLastTransactions() {
	suite.createTestBudget("B1", 0)
	c1 := suite.createTestCategory("B1", "C1")

	suite.recordTestTransaction("B1", c1.ID, "2024-01-10", 1)
	suite.recordTestTransaction("B1", c1.ID, "2024-03-10", 2)
	suite.recordTestTransaction("B1", c1.ID, "2024-02-10", 3)

	transactions, err := suite.engine.LastTransactions(context.Background(), "B1", 2)
	suite.Require().Nil(err)
	suite.Require().Len(transactions, 2)
	suite.Assert().Equal(int64(2), transactions[0].Amount)
	suite.Assert().Equal(int64(3), transactions[1].Amount)

	transactions, err = suite.engine.LastTransactions(context.Background(), "B1", 50)
	suite.Require().Nil(err)
	suite.Assert().Len(transactions, 3)

	for _, n := range []int{0, -1} {
		_, err = suite.engine.LastTransactions(context.Background(), "B1", n)
		suite.Assert().ErrorIs(err, models.ErrInvalidParameter)
	}
}

func (suite *TestSuiteStandard) TestTransactionsScoped() {
	suite.createTestBudget("B1", 0)
	suite.createTestBudget("B2", 0)
	c1 := suite.createTestCategory("B1", "C1")
	c2 := suite.createTestCategory("B2", "C2")

	suite.recordTestTransaction("B1", c1.ID, "2024-01-10", 1)
	suite.recordTestTransaction("B1", c1.ID, "2024-01-11", 2)
	suite.recordTestTransaction("B2", c2.ID, "2024-01-12", 3)

	transactions, count, err := suite.engine.Transactions(context.Background(), []string{"B1"}, false, 0, 0)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(2), count)
	suite.Assert().Len(transactions, 2)

	transactions, count, err = suite.engine.Transactions(context.Background(), nil, true, 1, 1)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(3), count)
	suite.Require().Len(transactions, 1)
	suite.Assert().Equal(int64(2), transactions[0].Amount)

	transactions, count, err = suite.engine.Transactions(context.Background(), nil, false, 0, 10)
	suite.Require().Nil(err)
	suite.Assert().Equal(int64(0), count)
	suite.Assert().Empty(transactions)
}
