package models

import (
	"strings"

	"gorm.io/gorm"
)

// GoalType is the kind of target a category works towards.
type GoalType string

const (
	GoalNone         GoalType = ""
	GoalSaveByDate   GoalType = "SAVEBYDATE"
	GoalSaveAmount   GoalType = "SAVEAMOUNT"
	GoalSaveMonthly  GoalType = "SAVEMONTHLY"
	GoalSpendMonthly GoalType = "SPENDMONTHLY"
)

// Valid reports whether the goal type is one of the known kinds or empty.
func (g GoalType) Valid() bool {
	switch g {
	case GoalNone, GoalSaveByDate, GoalSaveAmount, GoalSaveMonthly, GoalSpendMonthly:
		return true
	}
	return false
}

// Goal is the optional target of a category.
type Goal struct {
	Type   GoalType `json:"goalType" example:"SAVEBYDATE" default:""` // Kind of the goal, empty for no goal
	Amount int64    `json:"amount" example:"120000" default:"0"`      // Target amount
	Date   *string  `json:"date,omitempty" example:"2025-06-01"`      // Target date, required for SAVEBYDATE
}

// Category is a named bucket of money inside a budget.
type Category struct {
	DefaultModel
	BudgetID string `json:"budgetId" gorm:"index;not null" example:"household"` // Key of the budget the category belongs to
	Budget   Budget `json:"-"`
	Amount   int64  `json:"amount" example:"2500"` // Affected minus spent, only changed by affectations
	CategoryEditable
}

type CategoryEditable struct {
	Name string `json:"name" example:"Groceries" default:""`       // Name of the category
	Goal Goal   `json:"goal" gorm:"embedded;embeddedPrefix:goal_"` // Goal of the category
}

func (c *Category) BeforeSave(_ *gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	return nil
}
