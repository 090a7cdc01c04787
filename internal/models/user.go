package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"golang.org/x/exp/slices"
)

// BudgetKeys is a set of budget keys stored as a JSON array.
type BudgetKeys []string

// Contains reports whether key is in the set.
func (k BudgetKeys) Contains(key string) bool {
	return slices.Contains(k, key)
}

// Value implements driver.Valuer.
func (k BudgetKeys) Value() (driver.Value, error) {
	if k == nil {
		return "[]", nil
	}

	b, err := json.Marshal([]string(k))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (k *BudgetKeys) Scan(value any) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		*k = BudgetKeys{}
		return nil
	case string:
		data = []byte(v)
	case []byte:
		data = v
	default:
		return fmt.Errorf("cannot scan %T into BudgetKeys", value)
	}

	return json.Unmarshal(data, (*[]string)(k))
}

// GormDataType sets the column type.
func (BudgetKeys) GormDataType() string {
	return "text"
}

// User is an account that can log in.
type User struct {
	DefaultModel
	Name              string     `json:"name" gorm:"uniqueIndex;not null" example:"alice"` // Login name
	Password          string     `json:"-"`                                                // Argon2id hash in PHC format
	AllowedBudgetKeys BudgetKeys `json:"allowedBudgetKeys" example:"household"`            // Budgets the user may access
}
