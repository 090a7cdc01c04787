// Package validation holds the checks that run before any write.
//
// All functions are pure, they never touch the database.
package validation

import (
	"unicode/utf8"

	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/internal/types"
)

// MaxCategoryNameLength is the maximum length of a category name in characters.
const MaxCategoryNameLength = 100

// ValidateCategory checks the constraints on a category.
//
// Name length is checked first, so a category with a name that is too long
// and a SAVEBYDATE goal without date fails with ErrCategoryNameTooLong.
// An empty date counts as missing.
func ValidateCategory(category models.Category) error {
	if utf8.RuneCountInString(category.Name) > MaxCategoryNameLength {
		return models.ErrCategoryNameTooLong
	}

	if category.Goal.Type == models.GoalSaveByDate && (category.Goal.Date == nil || *category.Goal.Date == "") {
		return models.ErrMissingDate
	}

	return nil
}

// ValidateDayDate reports whether s is shaped like YYYY-MM-DD.
func ValidateDayDate(s string) bool {
	return types.Day(s).Valid()
}

// ValidateMonthDate reports whether s is shaped like YYYY-MM.
func ValidateMonthDate(s string) bool {
	return types.Month(s).Valid()
}

// ToComparableDate converts a date that passed ValidateDayDate into the
// integer YYYYMMDD.
func ToComparableDate(s string) (int, error) {
	if !ValidateDayDate(s) {
		return 0, models.ErrDateFormat
	}

	return types.Day(s).Comparable()
}
