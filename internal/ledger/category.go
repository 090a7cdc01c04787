package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/internal/store"
	"github.com/budgenv/backend/internal/validation"
	"github.com/google/uuid"
)

// CreateCategory validates the category and stores it in the budget with a new ID.
//
// The amount of a new category is always 0, it only changes through affectations.
func (e *Engine) CreateCategory(ctx context.Context, budgetID string, in models.CategoryEditable) (models.Category, error) {
	category := models.Category{
		BudgetID:         budgetID,
		CategoryEditable: in,
	}

	if err := checkGoal(category); err != nil {
		return models.Category{}, err
	}

	unlock := e.locks.Lock(budgetID)
	defer unlock()

	if _, err := e.Budget(ctx, budgetID); err != nil {
		return models.Category{}, err
	}

	category.ID = uuid.New()
	if err := e.gw.Create(ctx, &category); err != nil {
		return models.Category{}, err
	}

	return category, nil
}

// UpsertCategory replaces name and goal of the category with the given ID, or creates
// it with that ID if it does not exist. The amount of an existing category is kept.
//
// An ID that belongs to a category of another budget fails with models.ErrInvalidCategory.
func (e *Engine) UpsertCategory(ctx context.Context, budgetID string, id uuid.UUID, in models.CategoryEditable) (models.Category, bool, error) {
	category := models.Category{
		DefaultModel:     models.DefaultModel{ID: id},
		BudgetID:         budgetID,
		CategoryEditable: in,
	}

	if err := checkGoal(category); err != nil {
		return models.Category{}, false, err
	}

	unlock := e.locks.Lock(budgetID)
	defer unlock()

	if _, err := e.Budget(ctx, budgetID); err != nil {
		return models.Category{}, false, err
	}

	var existing models.Category
	err := e.gw.Get(ctx, &existing, id)
	if errors.Is(err, models.ErrResourceNotFound) {
		if err := e.gw.Create(ctx, &category); err != nil {
			return models.Category{}, false, err
		}
		return category, true, nil
	} else if err != nil {
		return models.Category{}, false, err
	}

	if existing.BudgetID != budgetID {
		return models.Category{}, false, models.ErrInvalidCategory
	}

	existing.CategoryEditable = in
	if err := e.gw.Put(ctx, &existing); err != nil {
		return models.Category{}, false, err
	}

	return existing, false, nil
}

func checkGoal(category models.Category) error {
	if err := validation.ValidateCategory(category); err != nil {
		return err
	}

	if !category.Goal.Type.Valid() {
		return fmt.Errorf("%w: unknown goal type %q", models.ErrInvalidBody, category.Goal.Type)
	}

	return nil
}

// Category returns the category with the given ID if it belongs to the budget.
func (e *Engine) Category(ctx context.Context, budgetID string, id uuid.UUID) (models.Category, error) {
	var category models.Category
	err := e.gw.Get(ctx, &category, id)
	if err != nil {
		return models.Category{}, err
	}

	if category.BudgetID != budgetID {
		return models.Category{}, fmt.Errorf("%w category matching your query", models.ErrResourceNotFound)
	}

	return category, nil
}

// Categories returns up to ListLimit categories of a budget, ordered by name.
//
// An empty result is reported as models.ErrResourceNotFound.
func (e *Engine) Categories(ctx context.Context, budgetID string) ([]models.Category, error) {
	var categories []models.Category
	_, err := e.gw.FetchRange(ctx, &categories, store.Query{
		Where: map[string]any{"budget_id": budgetID},
		Order: "name, id",
		Limit: ListLimit,
	})
	if err != nil {
		return nil, err
	}

	if len(categories) == 0 {
		return nil, fmt.Errorf("%w category matching your query", models.ErrResourceNotFound)
	}

	return categories, nil
}
