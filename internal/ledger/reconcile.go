package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/internal/store"
	"golang.org/x/sync/errgroup"
)

// reconcileConcurrency limits how many budgets are reconciled at the same time.
const reconcileConcurrency = 4

// ReconcileResult summarizes a reconciliation of one budget.
type ReconcileResult struct {
	BudgetID string   `json:"budgetId" example:"household"` // Key of the budget
	Resumed  []string `json:"resumed"`                      // IDs of the affectations that are now applied
	Failed   []string `json:"failed"`                       // IDs of the affectations that are still pending
}

// Reconcile completes all PENDING affectations of a budget.
//
// Affectations that still cannot be applied are listed in the result and
// an error is returned.
func (e *Engine) Reconcile(ctx context.Context, budgetID string) (ReconcileResult, error) {
	result := ReconcileResult{BudgetID: budgetID, Resumed: []string{}, Failed: []string{}}

	unlock := e.locks.Lock(budgetID)
	defer unlock()

	if _, err := e.Budget(ctx, budgetID); err != nil {
		return result, err
	}

	var pending []models.MonthlyAffectation
	_, err := e.gw.FetchRange(ctx, &pending, store.Query{
		Where: map[string]any{"budget_id": budgetID, "state": models.AffectationPending},
		Order: "created_at",
	})
	if err != nil {
		return result, err
	}

	var errs []error
	for _, a := range pending {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		_, err := e.resume(ctx, a)
		if err != nil {
			result.Failed = append(result.Failed, a.ID.String())
			errs = append(errs, err)
			continue
		}

		result.Resumed = append(result.Resumed, a.ID.String())
	}

	if len(result.Resumed) > 0 || len(result.Failed) > 0 {
		e.log.Info().
			Str("budget", budgetID).
			Int("resumed", len(result.Resumed)).
			Int("failed", len(result.Failed)).
			Msg("reconciled pending affectations")
	}

	return result, errors.Join(errs...)
}

// ReconcileAll reconciles every budget that has pending affectations.
func (e *Engine) ReconcileAll(ctx context.Context) ([]ReconcileResult, error) {
	var pending []models.MonthlyAffectation
	_, err := e.gw.FetchRange(ctx, &pending, store.Query{
		Where: map[string]any{"state": models.AffectationPending},
		Order: "budget_id",
	})
	if err != nil {
		return nil, err
	}

	var budgets []string
	for _, a := range pending {
		if len(budgets) == 0 || budgets[len(budgets)-1] != a.BudgetID {
			budgets = append(budgets, a.BudgetID)
		}
	}

	results := make([]ReconcileResult, len(budgets))
	errs := make([]error, len(budgets))

	// One failing budget must not stop the others, so errors are collected
	// instead of being returned to the group.
	var g errgroup.Group
	g.SetLimit(reconcileConcurrency)
	for i, budgetID := range budgets {
		g.Go(func() error {
			results[i], errs[i] = e.Reconcile(ctx, budgetID)
			return nil
		})
	}
	_ = g.Wait()

	return results, errors.Join(errs...)
}

// Reconciler runs ReconcileAll periodically.
type Reconciler struct {
	engine   *Engine
	interval time.Duration
}

// NewReconciler returns a Reconciler for engine.
func NewReconciler(engine *Engine, interval time.Duration) *Reconciler {
	return &Reconciler{engine: engine, interval: interval}
}

// Run reconciles once immediately and then every interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context) {
	log := r.engine.log.With().Str("worker", "reconciler").Logger()
	log.Info().Dur("interval", r.interval).Msg("reconciler started")

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if _, err := r.engine.ReconcileAll(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("reconciliation failed")
		}

		select {
		case <-ctx.Done():
			log.Info().Msg("reconciler stopped")
			return
		case <-ticker.C:
		}
	}
}
