package models

import (
	"strings"

	"gorm.io/gorm"
)

// Budget represents a budget
//
// A budget is the highest level of organization in budgenv, all other
// resources reference it by its key. The key is chosen by the client.
type Budget struct {
	ID string `json:"id" gorm:"primaryKey" example:"household"` // Key of the budget
	Timestamps
	BudgetEditable
}

type BudgetEditable struct {
	Name             string `json:"name" example:"Household" default:""`          // Name of the budget
	UnaffectedAmount int64  `json:"unaffectedAmount" example:"10000" default:"0"` // Money not yet affected to any category, in the smallest currency unit
}

func (b *Budget) BeforeSave(_ *gorm.DB) error {
	b.ID = strings.TrimSpace(b.ID)
	b.Name = strings.TrimSpace(b.Name)
	return nil
}
