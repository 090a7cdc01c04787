package ledger_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/budgenv/backend/internal/ledger"
	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/internal/types"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

func affectation(month types.Month, categoryID uuid.UUID, amount int64) models.MonthlyAffectation {
	return models.MonthlyAffectation{
		Date:        month,
		Affectation: models.Affectation{CategoryID: categoryID, Amount: amount},
	}
}

// TestPostAffectationScenario walks through the basic flow of affecting money.
func (suite *TestSuiteStandard) TestPostAffectationScenario() {
	suite.createTestBudget("B1", 10000)
	c1 := suite.createTestCategory("B1", "C1")

	a, err := suite.engine.PostAffectation(context.Background(), "B1", affectation("2024-03", c1.ID, 2500))
	suite.Require().Nil(err)
	suite.Assert().Equal(models.AffectationApplied, a.State)
	suite.Assert().True(a.BudgetApplied)
	suite.Assert().True(a.CategoryApplied)

	suite.Assert().Equal(int64(7500), suite.budget("B1").UnaffectedAmount)
	suite.Assert().Equal(int64(2500), suite.category("B1", c1).Amount)

	affectations, err := suite.engine.Affectations(context.Background(), "B1", "2024-03")
	suite.Require().Nil(err)
	suite.Require().Len(affectations, 1)
	suite.Assert().Equal("B1", affectations[0].BudgetID)
	suite.Assert().Equal(types.Month("2024-03"), affectations[0].Date)
	suite.Assert().Equal(c1.ID, affectations[0].Affectation.CategoryID)
	suite.Assert().Equal(int64(2500), affectations[0].Affectation.Amount)
}

func (suite *TestSuiteStandard) TestPostAffectationNegativeAmount() {
	suite.createTestBudget("B1", 100)
	c1 := suite.createTestCategory("B1", "C1")

	_, err := suite.engine.PostAffectation(context.Background(), "B1", affectation("2024-03", c1.ID, -40))
	suite.Require().Nil(err)

	suite.Assert().Equal(int64(140), suite.budget("B1").UnaffectedAmount)
	suite.Assert().Equal(int64(-40), suite.category("B1", c1).Amount)
}

func (suite *TestSuiteStandard) TestPostAffectationInvalidCategory() {
	suite.createTestBudget("B1", 10000)
	suite.createTestBudget("B2", 500)
	c1 := suite.createTestCategory("B1", "C1")
	foreign := suite.createTestCategory("B2", "Foreign")

	for _, categoryID := range []uuid.UUID{foreign.ID, uuid.New()} {
		_, err := suite.engine.PostAffectation(context.Background(), "B1", affectation("2024-03", categoryID, 2500))
		suite.Assert().ErrorIs(err, models.ErrInvalidCategory)
	}

	suite.Assert().Equal(int64(10000), suite.budget("B1").UnaffectedAmount)
	suite.Assert().Equal(int64(500), suite.budget("B2").UnaffectedAmount)
	suite.Assert().Equal(int64(0), suite.category("B1", c1).Amount)
	suite.Assert().Equal(int64(0), suite.category("B2", foreign).Amount)

	_, err := suite.engine.Affectations(context.Background(), "B1", "")
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestPostAffectationInvalidMonth() {
	suite.createTestBudget("B1", 10000)
	c1 := suite.createTestCategory("B1", "C1")

	for _, month := range []types.Month{"", "2024-3", "2024-03-01", "March"} {
		_, err := suite.engine.PostAffectation(context.Background(), "B1", affectation(month, c1.ID, 1))
		suite.Assert().ErrorIs(err, models.ErrDateFormat, month)
	}

	suite.Assert().Equal(int64(10000), suite.budget("B1").UnaffectedAmount)
}

func (suite *TestSuiteStandard) TestPostAffectationMissingBudget() {
	_, err := suite.engine.PostAffectation(context.Background(), "nope", affectation("2024-03", uuid.New(), 1))
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

// TestPostAffectationConcurrent verifies that concurrent postings do not lose updates.
func (suite *TestSuiteStandard) TestPostAffectationConcurrent() {
	suite.createTestBudget("B1", 10000)
	c1 := suite.createTestCategory("B1", "C1")

	amounts := []int64{100, 250, 1, 999, 50, 600, 0, 2000}
	var total int64

	var g errgroup.Group
	for _, amount := range amounts {
		total += amount
		g.Go(func() error {
			_, err := suite.engine.PostAffectation(context.Background(), "B1", affectation("2024-03", c1.ID, amount))
			return err
		})
	}
	suite.Require().Nil(g.Wait())

	suite.Assert().Equal(10000-total, suite.budget("B1").UnaffectedAmount)
	suite.Assert().Equal(total, suite.category("B1", c1).Amount)

	affectations, err := suite.engine.Affectations(context.Background(), "B1", "2024-03")
	suite.Require().Nil(err)
	suite.Assert().Len(affectations, len(amounts))
}

func (suite *TestSuiteStandard) TestPostAffectationIdempotent() {
	suite.createTestBudget("B1", 10000)
	c1 := suite.createTestCategory("B1", "C1")

	key := "retry-1"
	in := affectation("2024-03", c1.ID, 2500)
	in.IdempotencyKey = &key

	first, err := suite.engine.PostAffectation(context.Background(), "B1", in)
	suite.Require().Nil(err)

	second, err := suite.engine.PostAffectation(context.Background(), "B1", in)
	suite.Require().Nil(err)
	suite.Assert().Equal(first.ID, second.ID)

	suite.Assert().Equal(int64(7500), suite.budget("B1").UnaffectedAmount)
	suite.Assert().Equal(int64(2500), suite.category("B1", c1).Amount)

	affectations, err := suite.engine.Affectations(context.Background(), "B1", "")
	suite.Require().Nil(err)
	suite.Assert().Len(affectations, 1)
}

func (suite *TestSuiteStandard) TestPostAffectationIdempotencyConflict() {
	suite.createTestBudget("B1", 10000)
	c1 := suite.createTestCategory("B1", "C1")

	key := "retry-1"
	in := affectation("2024-03", c1.ID, 2500)
	in.IdempotencyKey = &key
	_, err := suite.engine.PostAffectation(context.Background(), "B1", in)
	suite.Require().Nil(err)

	in.Affectation.Amount = 3000
	_, err = suite.engine.PostAffectation(context.Background(), "B1", in)
	suite.Assert().ErrorIs(err, models.ErrIdempotencyConflict)
	suite.Assert().Equal(int64(7500), suite.budget("B1").UnaffectedAmount)
}

func (suite *TestSuiteStandard) TestPostAffectationSameKeyOtherBudget() {
	suite.createTestBudget("B1", 100)
	suite.createTestBudget("B2", 100)
	c1 := suite.createTestCategory("B1", "C1")
	c2 := suite.createTestCategory("B2", "C2")

	key := "shared"
	a := affectation("2024-03", c1.ID, 10)
	a.IdempotencyKey = &key
	b := affectation("2024-03", c2.ID, 20)
	b.IdempotencyKey = &key

	_, err := suite.engine.PostAffectation(context.Background(), "B1", a)
	suite.Require().Nil(err)
	_, err = suite.engine.PostAffectation(context.Background(), "B2", b)
	suite.Require().Nil(err)

	suite.Assert().Equal(int64(90), suite.budget("B1").UnaffectedAmount)
	suite.Assert().Equal(int64(80), suite.budget("B2").UnaffectedAmount)
}

func (suite *TestSuiteStandard) TestPostAffectationPartialFailure() {
	suite.createTestBudget("B1", 10000)
	c1 := suite.createTestCategory("B1", "C1")

	suite.gateway.increments["amount"] = 1

	a, err := suite.engine.PostAffectation(context.Background(), "B1", affectation("2024-03", c1.ID, 2500))
	suite.Require().NotNil(err)
	suite.Assert().ErrorIs(err, models.ErrPartiallyApplied)
	suite.Assert().ErrorIs(err, errInjected)

	var partial *ledger.PartialFailureError
	suite.Require().True(errors.As(err, &partial))
	suite.Assert().Equal(ledger.StepCategory, partial.Step)
	suite.Assert().Equal(a.ID, partial.Affectation.ID)
	suite.Assert().True(a.BudgetApplied)
	suite.Assert().False(a.CategoryApplied)
	suite.Assert().Equal(models.AffectationPending, a.State)

	// The gap is visible, not hidden
	suite.Assert().Equal(int64(7500), suite.budget("B1").UnaffectedAmount)
	suite.Assert().Equal(int64(0), suite.category("B1", c1).Amount)

	result, err := suite.engine.Reconcile(context.Background(), "B1")
	suite.Require().Nil(err)
	suite.Assert().Equal([]string{a.ID.String()}, result.Resumed)
	suite.Assert().Empty(result.Failed)

	suite.Assert().Equal(int64(7500), suite.budget("B1").UnaffectedAmount)
	suite.Assert().Equal(int64(2500), suite.category("B1", c1).Amount)

	affectations, err := suite.engine.Affectations(context.Background(), "B1", "2024-03")
	suite.Require().Nil(err)
	suite.Require().Len(affectations, 1)
	suite.Assert().Equal(models.AffectationApplied, affectations[0].State)
}

func (suite *TestSuiteStandard) TestPostAffectationBudgetStepFails() {
	suite.createTestBudget("B1", 10000)
	c1 := suite.createTestCategory("B1", "C1")

	suite.gateway.increments["unaffected_amount"] = 1

	_, err := suite.engine.PostAffectation(context.Background(), "B1", affectation("2024-03", c1.ID, 2500))
	var partial *ledger.PartialFailureError
	suite.Require().True(errors.As(err, &partial))
	suite.Assert().Equal(ledger.StepBudget, partial.Step)
	suite.Assert().False(partial.Affectation.BudgetApplied)

	suite.Assert().Equal(int64(10000), suite.budget("B1").UnaffectedAmount)
	suite.Assert().Equal(int64(0), suite.category("B1", c1).Amount)

	_, err = suite.engine.Reconcile(context.Background(), "B1")
	suite.Require().Nil(err)

	suite.Assert().Equal(int64(7500), suite.budget("B1").UnaffectedAmount)
	suite.Assert().Equal(int64(2500), suite.category("B1", c1).Amount)
}

func (suite *TestSuiteStandard) TestPostAffectationJournalFails() {
	tests := []struct {
		name     string
		puts     int
		attempts int // reconciliations until the affectation is applied
	}{
		{"Journal fails once", 1, 1},
		{"Journal fails twice", 2, 2},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			id := fmt.Sprintf("B%d", tt.puts)
			suite.createTestBudget(id, 10000)
			c1 := suite.createTestCategory(id, "C1")

			suite.gateway.puts = tt.puts

			a, err := suite.engine.PostAffectation(context.Background(), id, affectation("2024-03", c1.ID, 2500))
			var partial *ledger.PartialFailureError
			suite.Require().True(errors.As(err, &partial), "Error is %v", err)
			suite.Assert().Equal(ledger.StepJournal, partial.Step)
			suite.Assert().True(a.BudgetApplied)
			suite.Assert().True(a.CategoryApplied)
			suite.Assert().Equal(models.AffectationPending, a.State)

			for i := 1; i < tt.attempts; i++ {
				result, err := suite.engine.Reconcile(context.Background(), id)
				suite.Assert().ErrorIs(err, models.ErrPartiallyApplied)
				suite.Assert().Equal([]string{a.ID.String()}, result.Failed)
			}

			result, err := suite.engine.Reconcile(context.Background(), id)
			suite.Require().Nil(err)
			suite.Assert().Equal([]string{a.ID.String()}, result.Resumed)

			// Every balance is changed exactly once
			suite.Assert().Equal(int64(7500), suite.budget(id).UnaffectedAmount)
			suite.Assert().Equal(int64(2500), suite.category(id, c1).Amount)

			affectations, err := suite.engine.Affectations(context.Background(), id, "2024-03")
			suite.Require().Nil(err)
			suite.Assert().Equal(models.AffectationApplied, affectations[0].State)
		})
	}
}

// TestPostAffectationLostAcknowledgement covers increments that were committed
// while the caller saw an error.
func (suite *TestSuiteStandard) TestPostAffectationLostAcknowledgement() {
	for _, column := range []string{"unaffected_amount", "amount"} {
		suite.Run(column, func() {
			id := "B-" + column
			suite.createTestBudget(id, 10000)
			c1 := suite.createTestCategory(id, "C1")

			key := "lost-" + column
			in := affectation("2024-03", c1.ID, 2500)
			in.IdempotencyKey = &key

			suite.gateway.lost[column] = 1
			_, err := suite.engine.PostAffectation(context.Background(), id, in)
			suite.Require().ErrorIs(err, models.ErrPartiallyApplied)

			// Retrying with the key and reconciling must not repeat the step
			a, err := suite.engine.PostAffectation(context.Background(), id, in)
			suite.Require().Nil(err)
			suite.Assert().Equal(models.AffectationApplied, a.State)

			_, err = suite.engine.Reconcile(context.Background(), id)
			suite.Require().Nil(err)

			suite.Assert().Equal(int64(7500), suite.budget(id).UnaffectedAmount)
			suite.Assert().Equal(int64(2500), suite.category(id, c1).Amount)
		})
	}
}

func (suite *TestSuiteStandard) TestRetryWithIdempotencyKeyResumes() {
	suite.createTestBudget("B1", 10000)
	c1 := suite.createTestCategory("B1", "C1")

	key := "retry-after-failure"
	in := affectation("2024-03", c1.ID, 2500)
	in.IdempotencyKey = &key

	suite.gateway.increments["amount"] = 1
	_, err := suite.engine.PostAffectation(context.Background(), "B1", in)
	suite.Require().ErrorIs(err, models.ErrPartiallyApplied)

	a, err := suite.engine.PostAffectation(context.Background(), "B1", in)
	suite.Require().Nil(err)
	suite.Assert().Equal(models.AffectationApplied, a.State)

	suite.Assert().Equal(int64(7500), suite.budget("B1").UnaffectedAmount)
	suite.Assert().Equal(int64(2500), suite.category("B1", c1).Amount)
}

func (suite *TestSuiteStandard) TestReconcileStillFailing() {
	suite.createTestBudget("B1", 10000)
	c1 := suite.createTestCategory("B1", "C1")

	suite.gateway.increments["amount"] = 2

	a, err := suite.engine.PostAffectation(context.Background(), "B1", affectation("2024-03", c1.ID, 2500))
	suite.Require().ErrorIs(err, models.ErrPartiallyApplied)

	result, err := suite.engine.Reconcile(context.Background(), "B1")
	suite.Assert().ErrorIs(err, models.ErrPartiallyApplied)
	suite.Assert().Equal([]string{a.ID.String()}, result.Failed)
	suite.Assert().Empty(result.Resumed)

	// The budget step has been journaled and is not applied twice
	result, err = suite.engine.Reconcile(context.Background(), "B1")
	suite.Require().Nil(err)
	suite.Assert().Len(result.Resumed, 1)
	suite.Assert().Equal(int64(7500), suite.budget("B1").UnaffectedAmount)
	suite.Assert().Equal(int64(2500), suite.category("B1", c1).Amount)
}

func (suite *TestSuiteStandard) TestReconcileAll() {
	suite.createTestBudget("B1", 1000)
	suite.createTestBudget("B2", 1000)
	suite.createTestBudget("B3", 1000)
	c1 := suite.createTestCategory("B1", "C1")
	c2 := suite.createTestCategory("B2", "C2")
	c3 := suite.createTestCategory("B3", "C3")

	suite.gateway.increments["amount"] = 2
	_, err := suite.engine.PostAffectation(context.Background(), "B1", affectation("2024-03", c1.ID, 100))
	suite.Require().ErrorIs(err, models.ErrPartiallyApplied)
	_, err = suite.engine.PostAffectation(context.Background(), "B2", affectation("2024-03", c2.ID, 200))
	suite.Require().ErrorIs(err, models.ErrPartiallyApplied)
	_, err = suite.engine.PostAffectation(context.Background(), "B3", affectation("2024-03", c3.ID, 300))
	suite.Require().Nil(err)

	results, err := suite.engine.ReconcileAll(context.Background())
	suite.Require().Nil(err)
	suite.Require().Len(results, 2)
	suite.Assert().Equal("B1", results[0].BudgetID)
	suite.Assert().Equal("B2", results[1].BudgetID)

	suite.Assert().Equal(int64(100), suite.category("B1", c1).Amount)
	suite.Assert().Equal(int64(200), suite.category("B2", c2).Amount)
	suite.Assert().Equal(int64(300), suite.category("B3", c3).Amount)
}

func (suite *TestSuiteStandard) TestReconcileMissingBudget() {
	_, err := suite.engine.Reconcile(context.Background(), "nope")
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)
}

func (suite *TestSuiteStandard) TestReconcilerRun() {
	suite.createTestBudget("B1", 1000)
	c1 := suite.createTestCategory("B1", "C1")

	suite.gateway.increments["amount"] = 1
	_, err := suite.engine.PostAffectation(context.Background(), "B1", affectation("2024-03", c1.ID, 100))
	suite.Require().ErrorIs(err, models.ErrPartiallyApplied)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		ledger.NewReconciler(suite.engine, time.Hour).Run(ctx)
		close(done)
	}()

	suite.Eventually(func() bool {
		c, err := suite.engine.Category(context.Background(), "B1", c1.ID)
		return err == nil && c.Amount == 100
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	suite.Eventually(func() bool {
		select {
		case <-done:
			return true
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}

func (suite *TestSuiteStandard) TestAffectationsByMonth() {
	suite.createTestBudget("B1", 1000)
	c1 := suite.createTestCategory("B1", "C1")

	for _, month := range []types.Month{"2024-01", "2024-02", "2024-02"} {
		_, err := suite.engine.PostAffectation(context.Background(), "B1", affectation(month, c1.ID, 10))
		suite.Require().Nil(err)
	}

	all, err := suite.engine.Affectations(context.Background(), "B1", "")
	suite.Require().Nil(err)
	suite.Assert().Len(all, 3)

	february, err := suite.engine.Affectations(context.Background(), "B1", "2024-02")
	suite.Require().Nil(err)
	suite.Assert().Len(february, 2)

	_, err = suite.engine.Affectations(context.Background(), "B1", "2024-04")
	suite.Assert().ErrorIs(err, models.ErrResourceNotFound)

	_, err = suite.engine.Affectations(context.Background(), "B1", "2024-4")
	suite.Assert().ErrorIs(err, models.ErrDateFormat)
}
