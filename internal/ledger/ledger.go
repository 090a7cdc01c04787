// Package ledger keeps budgets, categories, transactions and affectations
// consistent with each other.
//
// Affectations are posted as a sequence of steps that is journaled on the
// affectation record itself, see PostAffectation and Reconcile. Each step
// changes one balance and its journal flag in a single store transaction.
package ledger

import (
	"context"

	"github.com/budgenv/backend/internal/store"
	"github.com/rs/zerolog"
)

// Gateway is the persistence the engine works on. *store.Store implements it.
type Gateway interface {
	Get(ctx context.Context, dest any, key any) error
	Create(ctx context.Context, record any) error
	Put(ctx context.Context, record any) error
	FetchRange(ctx context.Context, dest any, q store.Query) (int64, error)
	Increment(ctx context.Context, journal store.Journal, model any, key any, column string, delta int64) (bool, error)
}

// Engine runs all ledger operations.
type Engine struct {
	gw    Gateway
	log   zerolog.Logger
	locks *keyedMutex
}

// New returns an Engine working on gw.
func New(gw Gateway, logger zerolog.Logger) *Engine {
	return &Engine{
		gw:    gw,
		log:   logger.With().Str("component", "ledger").Logger(),
		locks: newKeyedMutex(),
	}
}
