// Package auth implements password hashing, access tokens and the
// middleware that guards the API.
package auth

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/internal/store"
	"golang.org/x/text/unicode/norm"
)

// Users is the persistence the Authenticator needs.
type Users interface {
	Create(ctx context.Context, record any) error
	FetchRange(ctx context.Context, dest any, q store.Query) (int64, error)
}

// Authenticator creates users, checks credentials and issues tokens.
type Authenticator struct {
	users  Users
	secret []byte
	ttl    time.Duration
	params Params
	now    func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithClock sets the function used to get the current time.
func WithClock(now func() time.Time) Option {
	return func(a *Authenticator) {
		a.now = now
	}
}

// WithParams sets the argon2id parameters for new password hashes.
func WithParams(p Params) Option {
	return func(a *Authenticator) {
		a.params = p
	}
}

// New returns an Authenticator signing tokens with secret that are valid for ttl.
func New(users Users, secret string, ttl time.Duration, opts ...Option) *Authenticator {
	a := &Authenticator{
		users:  users,
		secret: []byte(secret),
		ttl:    ttl,
		params: DefaultParams,
		now:    time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// NormalizeName returns the canonical form of a user name.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}

// CreateUser stores a new user with a hashed password.
func (a *Authenticator) CreateUser(ctx context.Context, name, password string, allowedBudgetKeys []string) (models.User, error) {
	name = NormalizeName(name)
	if name == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: name and password must not be empty", models.ErrInvalidBody)
	}

	hash, err := a.params.Hash(password)
	if err != nil {
		return models.User{}, err
	}

	if allowedBudgetKeys == nil {
		allowedBudgetKeys = []string{}
	}

	user := models.User{
		Name:              name,
		Password:          hash,
		AllowedBudgetKeys: models.BudgetKeys(allowedBudgetKeys),
	}

	err = a.users.Create(ctx, &user)
	if err != nil {
		return models.User{}, err
	}

	return user, nil
}

// Login checks the credentials and returns a token for the user's budgets.
//
// Unknown users and wrong passwords both fail with models.ErrInvalidLogin.
// For unknown users, a password hash is still verified so that both cases
// take about the same time.
func (a *Authenticator) Login(ctx context.Context, name, password string) (Token, error) {
	var users []models.User
	_, err := a.users.FetchRange(ctx, &users, store.Query{
		Where: map[string]any{"name": NormalizeName(name)},
		Limit: 1,
	})
	if err != nil {
		return Token{}, err
	}

	if len(users) == 0 {
		_, _ = VerifyPassword(a.dummy(), password)
		return Token{}, models.ErrInvalidLogin
	}

	user := users[0]
	ok, err := VerifyPassword(user.Password, password)
	if err != nil || !ok {
		return Token{}, models.ErrInvalidLogin
	}

	return a.IssueToken(user.ID.String(), user.AllowedBudgetKeys)
}

func (a *Authenticator) dummy() string {
	a.dummyOnce.Do(func() {
		a.dummyHash, _ = a.params.Hash("budgenv")
	})
	return a.dummyHash
}
