package models

import (
	"github.com/budgenv/backend/internal/types"
	"github.com/google/uuid"
)

// AffectationState is the progress of an affectation posting.
type AffectationState string

const (
	// AffectationPending marks a posting where at least one balance has not been updated yet.
	AffectationPending AffectationState = "PENDING"

	// AffectationApplied marks a posting where both balances have been updated.
	AffectationApplied AffectationState = "APPLIED"
)

// Affectation moves an amount from the unaffected pool of a budget into a category.
type Affectation struct {
	CategoryID uuid.UUID `json:"categoryId" gorm:"index" example:"3c8e5b1a-4f3e-4b3c-9d7d-2f8e1a6b0c11"` // ID of the category receiving the money
	Amount     int64     `json:"amount" example:"2500"`                                                  // Amount in the smallest currency unit
}

// MonthlyAffectation is one affectation event for a month of a budget.
//
// State, BudgetApplied and CategoryApplied are the journal used to resume
// postings that failed between their balance updates.
type MonthlyAffectation struct {
	DefaultModel
	BudgetID        string           `json:"budgetId" gorm:"index;uniqueIndex:idx_affectations_idempotency,priority:1;not null" example:"household"` // Key of the budget
	Budget          Budget           `json:"-"`
	Date            types.Month      `json:"date" gorm:"index" example:"2024-03"`                                                 // Month of the affectation
	Affectation     Affectation      `json:"affectation" gorm:"embedded;embeddedPrefix:affectation_"`                             // Category and amount
	IdempotencyKey  *string          `json:"idempotencyKey,omitempty" gorm:"uniqueIndex:idx_affectations_idempotency,priority:2"` // Client supplied key to make retries safe
	State           AffectationState `json:"state" gorm:"index" example:"APPLIED"`                                                // Progress of the posting
	BudgetApplied   bool             `json:"budgetApplied"`                                                                       // The budget's unaffected amount has been decreased
	CategoryApplied bool             `json:"categoryApplied"`                                                                     // The category's amount has been increased
}

// TableName sets the table name explicitly, "monthly_affectations" reads badly in errors.
func (MonthlyAffectation) TableName() string {
	return "affectations"
}
