package models

import (
	"strings"

	"github.com/budgenv/backend/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction is a spend or income event attributed to a category.
//
// Transactions are informational, they never change any balance.
type Transaction struct {
	DefaultModel
	BudgetID       string   `json:"budgetId" gorm:"index:idx_transactions_budget_date,priority:1;not null" example:"household"` // Key of the budget
	Budget         Budget   `json:"-"`
	Category       Category `json:"-"`
	ComparableDate int      `json:"comparableDate" gorm:"index:idx_transactions_budget_date,priority:2" example:"20240305"` // Date as YYYYMMDD, used for range queries
	TransactionEditable
}

type TransactionEditable struct {
	CategoryID uuid.UUID `json:"categoryId" gorm:"index;not null" example:"3c8e5b1a-4f3e-4b3c-9d7d-2f8e1a6b0c11"` // ID of the category
	Date       types.Day `json:"date" example:"2024-03-05"`                                                       // Day of the transaction
	Amount     int64     `json:"amount" example:"-1250"`                                                          // Signed amount in the smallest currency unit
	Memo       string    `json:"memo" example:"Weekly shopping" default:""`                                       // Free text
	Payee      string    `json:"payee" example:"Corner store" default:""`                                         // Who was paid or who paid
}

func (t *Transaction) BeforeSave(_ *gorm.DB) error {
	t.Memo = strings.TrimSpace(t.Memo)
	t.Payee = strings.TrimSpace(t.Payee)
	return nil
}
