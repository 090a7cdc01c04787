package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/internal/store"
)

// ListLimit is the maximum number of records returned by list queries.
const ListLimit = 100

// Budget returns the budget with the given key.
func (e *Engine) Budget(ctx context.Context, id string) (models.Budget, error) {
	var budget models.Budget
	err := e.gw.Get(ctx, &budget, id)
	if err != nil {
		return models.Budget{}, err
	}

	return budget, nil
}

// Budgets returns the budgets with the given keys, ordered by key.
// With unrestricted set, keys is ignored and all budgets are returned.
func (e *Engine) Budgets(ctx context.Context, keys []string, unrestricted bool) ([]models.Budget, error) {
	budgets := []models.Budget{}
	if !unrestricted && len(keys) == 0 {
		return budgets, nil
	}

	q := store.Query{Order: "id"}
	if !unrestricted {
		q.Where = map[string]any{"id": keys}
	}

	_, err := e.gw.FetchRange(ctx, &budgets, q)
	if err != nil {
		return nil, err
	}

	return budgets, nil
}

// PutBudget creates the budget or replaces an existing one.
//
// This is the corrective write for the unaffected amount. It takes the
// budget's lock so it does not interleave with affectation postings.
func (e *Engine) PutBudget(ctx context.Context, budget models.Budget) (models.Budget, error) {
	budget.ID = strings.TrimSpace(budget.ID)
	if budget.ID == "" {
		return models.Budget{}, fmt.Errorf("%w: the budget key must not be empty", models.ErrInvalidParameter)
	}

	unlock := e.locks.Lock(budget.ID)
	defer unlock()

	existing, err := e.Budget(ctx, budget.ID)
	if err == nil {
		budget.CreatedAt = existing.CreatedAt
	}

	err = e.gw.Put(ctx, &budget)
	if err != nil {
		return models.Budget{}, err
	}

	return budget, nil
}
