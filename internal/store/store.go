// Package store is the persistence gateway of budgenv.
//
// It offers the few primitives the ledger needs: get by key, insert,
// insert-or-replace, filtered range fetches and journaled increments.
package store

import (
	"context"
	"fmt"
	"reflect"

	"github.com/budgenv/backend/internal/models"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements the persistence gateway on a gorm database.
type Store struct {
	db *gorm.DB
}

// New returns a Store for db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying database.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Range is an inclusive range on a single column. Unset bounds are open.
type Range struct {
	Column string
	From   any
	To     any
}

// Query describes a FetchRange call.
//
// Where holds equality filters, a slice value matches any of its elements.
// A Limit of 0 or less means no limit.
type Query struct {
	Where  map[string]any
	Range  *Range
	Order  string
	Offset int
	Limit  int
}

// Get loads the record identified by key into dest.
func (s *Store) Get(ctx context.Context, dest any, key any) error {
	return s.db.WithContext(ctx).First(dest, "id = ?", key).Error
}

// Create inserts a new record. It fails if the key is already taken.
func (s *Store) Create(ctx context.Context, record any) error {
	return s.db.WithContext(ctx).Create(record).Error
}

// Put inserts the record or fully replaces an existing one with the same key.
func (s *Store) Put(ctx context.Context, record any) error {
	return s.db.WithContext(ctx).Save(record).Error
}

// FetchRange loads all records matching q into dest, which must be a pointer
// to a slice. It returns the number of matching records without limit and offset.
func (s *Store) FetchRange(ctx context.Context, dest any, q Query) (int64, error) {
	model := reflect.New(reflect.TypeOf(dest).Elem().Elem()).Interface()

	tx := s.db.WithContext(ctx).Model(model)

	keys := maps.Keys(q.Where)
	slices.Sort(keys)
	for _, column := range keys {
		value := q.Where[column]
		if v := reflect.ValueOf(value); v.Kind() == reflect.Slice && v.Type().Elem().Kind() != reflect.Uint8 {
			values := make([]any, v.Len())
			for i := range values {
				values[i] = v.Index(i).Interface()
			}
			tx = tx.Where(clause.IN{Column: clause.Column{Name: column}, Values: values})
			continue
		}
		tx = tx.Where(clause.Eq{Column: clause.Column{Name: column}, Value: value})
	}

	if q.Range != nil {
		if q.Range.From != nil {
			tx = tx.Where(clause.Gte{Column: clause.Column{Name: q.Range.Column}, Value: q.Range.From})
		}
		if q.Range.To != nil {
			tx = tx.Where(clause.Lte{Column: clause.Column{Name: q.Range.Column}, Value: q.Range.To})
		}
	}

	if q.Order != "" {
		tx = tx.Order(q.Order)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = -1
	}

	tx = tx.Offset(q.Offset).Limit(limit)

	err := tx.Find(dest).Error
	if err != nil {
		return 0, err
	}

	var count int64
	err = tx.Limit(-1).Offset(-1).Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Journal is the boolean column of a record that marks one step as done.
type Journal struct {
	Model  any
	Key    any
	Column string
}

// Increment atomically adds delta to column of the record identified by key
// and sets the journal column in the same transaction.
//
// If the journal column is already set, nothing is written and applied is false.
// Calling Increment again with the same journal therefore never adds delta twice.
func (s *Store) Increment(ctx context.Context, journal Journal, model any, key any, column string, delta int64) (applied bool, err error) {
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(journal.Model).
			Where("id = ?", journal.Key).
			Where(clause.Eq{Column: clause.Column{Name: journal.Column}, Value: false}).
			UpdateColumn(journal.Column, true)
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			var n int64
			if err := tx.Model(journal.Model).Where("id = ?", journal.Key).Count(&n).Error; err != nil {
				return err
			}

			if n == 0 {
				return fmt.Errorf("%w %s matching your query", models.ErrResourceNotFound, res.Statement.Table)
			}
			return nil
		}

		// A single UPDATE statement, concurrent increments never lose updates
		res = tx.Model(model).
			Where("id = ?", key).
			UpdateColumn(column, gorm.Expr("? + ?", clause.Column{Name: column}, delta))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			return fmt.Errorf("%w %s matching your query", models.ErrResourceNotFound, res.Statement.Table)
		}

		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	return applied, nil
}
