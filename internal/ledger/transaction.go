package ledger

import (
	"context"
	"fmt"

	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/internal/store"
	"github.com/budgenv/backend/internal/types"
	"github.com/budgenv/backend/internal/validation"
	"github.com/google/uuid"
)

// RecordTransaction stores a transaction. It never changes any balance.
func (e *Engine) RecordTransaction(ctx context.Context, budgetID string, in models.TransactionEditable) (models.Transaction, error) {
	comparableDate, err := validation.ToComparableDate(string(in.Date))
	if err != nil {
		return models.Transaction{}, models.ErrDateFormat
	}

	if _, err := e.Budget(ctx, budgetID); err != nil {
		return models.Transaction{}, err
	}

	if err := e.checkCategory(ctx, budgetID, in.CategoryID); err != nil {
		return models.Transaction{}, err
	}

	transaction := models.Transaction{
		BudgetID:            budgetID,
		ComparableDate:      comparableDate,
		TransactionEditable: in,
	}

	if err := e.gw.Create(ctx, &transaction); err != nil {
		return models.Transaction{}, err
	}

	return transaction, nil
}

// Transaction returns the transaction with the given ID.
func (e *Engine) Transaction(ctx context.Context, id uuid.UUID) (models.Transaction, error) {
	var transaction models.Transaction
	err := e.gw.Get(ctx, &transaction, id)
	if err != nil {
		return models.Transaction{}, err
	}

	return transaction, nil
}

// TransactionsInRange returns up to ListLimit transactions of a budget between
// start and end, both inclusive, oldest first.
//
// An empty result is reported as models.ErrResourceNotFound.
func (e *Engine) TransactionsInRange(ctx context.Context, budgetID string, start, end types.Day) ([]models.Transaction, error) {
	from, err := validation.ToComparableDate(string(start))
	if err != nil {
		return nil, err
	}

	to, err := validation.ToComparableDate(string(end))
	if err != nil {
		return nil, err
	}

	var transactions []models.Transaction
	_, err = e.gw.FetchRange(ctx, &transactions, store.Query{
		Where: map[string]any{"budget_id": budgetID},
		Range: &store.Range{Column: "comparable_date", From: from, To: to},
		Order: "comparable_date, created_at",
		Limit: ListLimit,
	})
	if err != nil {
		return nil, err
	}

	if len(transactions) == 0 {
		return nil, fmt.Errorf("%w transaction matching your query", models.ErrResourceNotFound)
	}

	return transactions, nil
}

// LastTransactions returns the n most recent transactions of a budget, newest first.
//
// An empty result is reported as models.ErrResourceNotFound.
func (e *Engine) LastTransactions(ctx context.Context, budgetID string, n int) ([]models.Transaction, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: the number of transactions must be positive", models.ErrInvalidParameter)
	}

	var transactions []models.Transaction
	_, err := e.gw.FetchRange(ctx, &transactions, store.Query{
		Where: map[string]any{"budget_id": budgetID},
		Order: "comparable_date desc, created_at desc",
		Limit: min(n, ListLimit),
	})
	if err != nil {
		return nil, err
	}

	if len(transactions) == 0 {
		return nil, fmt.Errorf("%w transaction matching your query", models.ErrResourceNotFound)
	}

	return transactions, nil
}

// Transactions lists transactions of the given budgets, newest first.
// With unrestricted set, keys is ignored and transactions of all budgets are listed.
//
// It returns the total number of matching transactions.
func (e *Engine) Transactions(ctx context.Context, keys []string, unrestricted bool, offset, limit int) ([]models.Transaction, int64, error) {
	transactions := []models.Transaction{}
	if !unrestricted && len(keys) == 0 {
		return transactions, 0, nil
	}

	if limit <= 0 || limit > ListLimit {
		limit = ListLimit
	}

	q := store.Query{
		Order:  "comparable_date desc, created_at desc",
		Offset: offset,
		Limit:  limit,
	}
	if !unrestricted {
		q.Where = map[string]any{"budget_id": keys}
	}

	count, err := e.gw.FetchRange(ctx, &transactions, q)
	if err != nil {
		return nil, 0, err
	}

	return transactions, count, nil
}
