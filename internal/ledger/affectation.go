package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/internal/store"
	"github.com/budgenv/backend/internal/types"
	"github.com/budgenv/backend/internal/validation"
	"github.com/google/uuid"
)

// Step is a step of an affectation posting.
type Step string

const (
	StepBudget   Step = "budget"   // decrease the unaffected amount of the budget
	StepCategory Step = "category" // increase the amount of the category
	StepJournal  Step = "journal"  // mark the affectation as applied
)

// PartialFailureError is returned when an affectation has been recorded
// but not all of its balance updates could be done.
//
// The affectation stays PENDING and is completed by Reconcile or by posting
// it again with the same idempotency key.
type PartialFailureError struct {
	Affectation models.MonthlyAffectation
	Step        Step
	Err         error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%s (failed step: %s)", models.ErrPartiallyApplied.Error(), e.Step)
}

func (e *PartialFailureError) Unwrap() []error {
	return []error{models.ErrPartiallyApplied, e.Err}
}

// PostAffectation moves in.Affectation.Amount from the unaffected amount of the
// budget into the category.
//
// The month and the category are checked before anything is written. Then the
// affectation is stored as PENDING, the budget is decreased, the category is
// increased and the affectation is marked APPLIED. Each increment sets its
// journal flag on the affectation in the same transaction, so resuming an
// affectation never applies a step twice.
//
// Postings for the same budget are serialized within this process.
//
// If in.IdempotencyKey is set and an affectation with that key exists in the
// budget, that affectation is resumed and returned instead of creating a new one.
func (e *Engine) PostAffectation(ctx context.Context, budgetID string, in models.MonthlyAffectation) (models.MonthlyAffectation, error) {
	if !validation.ValidateMonthDate(string(in.Date)) {
		return models.MonthlyAffectation{}, models.ErrDateFormat
	}

	unlock := e.locks.Lock(budgetID)
	defer unlock()

	if _, err := e.Budget(ctx, budgetID); err != nil {
		return models.MonthlyAffectation{}, err
	}

	if err := e.checkCategory(ctx, budgetID, in.Affectation.CategoryID); err != nil {
		return models.MonthlyAffectation{}, err
	}

	if in.IdempotencyKey != nil && *in.IdempotencyKey == "" {
		in.IdempotencyKey = nil
	}

	if in.IdempotencyKey != nil {
		existing, found, err := e.affectationByIdempotencyKey(ctx, budgetID, *in.IdempotencyKey)
		if err != nil {
			return models.MonthlyAffectation{}, err
		}

		if found {
			if existing.Date != in.Date || existing.Affectation != in.Affectation {
				return models.MonthlyAffectation{}, models.ErrIdempotencyConflict
			}

			e.log.Debug().Str("budget", budgetID).Str("affectation", existing.ID.String()).Msg("resuming affectation for idempotency key")
			return e.resume(ctx, existing)
		}
	}

	affectation := models.MonthlyAffectation{
		BudgetID:       budgetID,
		Date:           in.Date,
		Affectation:    in.Affectation,
		IdempotencyKey: in.IdempotencyKey,
		State:          models.AffectationPending,
	}

	// Nothing has been applied if this fails, the error is returned as is
	if err := e.gw.Create(ctx, &affectation); err != nil {
		return models.MonthlyAffectation{}, err
	}

	affectation, err := e.apply(ctx, affectation)
	if err != nil {
		return affectation, err
	}

	affectationsPosted.Inc()
	return affectation, nil
}

// resume applies the missing steps of an affectation that already exists.
func (e *Engine) resume(ctx context.Context, a models.MonthlyAffectation) (models.MonthlyAffectation, error) {
	if a.State == models.AffectationApplied {
		return a, nil
	}

	a, err := e.apply(ctx, a)
	if err != nil {
		return a, err
	}

	affectationsResumed.Inc()
	return a, nil
}

// apply runs all steps of a that are not journaled as done.
func (e *Engine) apply(ctx context.Context, a models.MonthlyAffectation) (models.MonthlyAffectation, error) {
	if !a.BudgetApplied {
		applied, err := e.gw.Increment(ctx, journal(a, "budget_applied"), &models.Budget{}, a.BudgetID, "unaffected_amount", -a.Affectation.Amount)
		if err != nil {
			return a, e.partial(a, StepBudget, err)
		}
		e.skipped(a, StepBudget, applied)
		a.BudgetApplied = true
	}

	if !a.CategoryApplied {
		applied, err := e.gw.Increment(ctx, journal(a, "category_applied"), &models.Category{}, a.Affectation.CategoryID, "amount", a.Affectation.Amount)
		if err != nil {
			return a, e.partial(a, StepCategory, err)
		}
		e.skipped(a, StepCategory, applied)
		a.CategoryApplied = true
	}

	a.State = models.AffectationApplied
	if err := e.gw.Put(ctx, &a); err != nil {
		a.State = models.AffectationPending
		return a, e.partial(a, StepJournal, err)
	}

	return a, nil
}

func journal(a models.MonthlyAffectation, column string) store.Journal {
	return store.Journal{Model: &models.MonthlyAffectation{}, Key: a.ID, Column: column}
}

// skipped logs steps that a stale copy of the journal still listed as open.
func (e *Engine) skipped(a models.MonthlyAffectation, step Step, applied bool) {
	if applied {
		return
	}

	e.log.Warn().
		Str("budget", a.BudgetID).
		Str("affectation", a.ID.String()).
		Str("step", string(step)).
		Msg("step was already journaled, not applied again")
}

func (e *Engine) partial(a models.MonthlyAffectation, step Step, err error) error {
	affectationsPartial.WithLabelValues(string(step)).Inc()

	e.log.Error().
		Err(err).
		Str("budget", a.BudgetID).
		Str("affectation", a.ID.String()).
		Str("step", string(step)).
		Bool("budgetApplied", a.BudgetApplied).
		Bool("categoryApplied", a.CategoryApplied).
		Msg("affectation partially applied")

	return &PartialFailureError{Affectation: a, Step: step, Err: err}
}

// checkCategory verifies that the category exists and belongs to the budget.
func (e *Engine) checkCategory(ctx context.Context, budgetID string, id uuid.UUID) error {
	var category models.Category
	err := e.gw.Get(ctx, &category, id)
	if errors.Is(err, models.ErrResourceNotFound) || err == nil && category.BudgetID != budgetID {
		return models.ErrInvalidCategory
	}

	return err
}

func (e *Engine) affectationByIdempotencyKey(ctx context.Context, budgetID, key string) (models.MonthlyAffectation, bool, error) {
	var affectations []models.MonthlyAffectation
	_, err := e.gw.FetchRange(ctx, &affectations, store.Query{
		Where: map[string]any{"budget_id": budgetID, "idempotency_key": key},
		Limit: 1,
	})
	if err != nil {
		return models.MonthlyAffectation{}, false, err
	}

	if len(affectations) == 0 {
		return models.MonthlyAffectation{}, false, nil
	}

	return affectations[0], true, nil
}

// Affectations returns the affectations of a budget, optionally only those of one month.
//
// An empty result is reported as models.ErrResourceNotFound.
func (e *Engine) Affectations(ctx context.Context, budgetID string, month types.Month) ([]models.MonthlyAffectation, error) {
	where := map[string]any{"budget_id": budgetID}
	if month != "" {
		if !month.Valid() {
			return nil, models.ErrDateFormat
		}
		where["date"] = month
	}

	var affectations []models.MonthlyAffectation
	_, err := e.gw.FetchRange(ctx, &affectations, store.Query{
		Where: where,
		Order: "date, created_at",
		Limit: ListLimit,
	})
	if err != nil {
		return nil, err
	}

	if len(affectations) == 0 {
		return nil, fmt.Errorf("%w affectation matching your query", models.ErrResourceNotFound)
	}

	return affectations, nil
}
