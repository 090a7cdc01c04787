package auth

import (
	"net/http"
	"strings"

	"github.com/budgenv/backend/internal/httputil"
	"github.com/budgenv/backend/internal/models"
	"github.com/gin-gonic/gin"
)

const scopeKey = "budgenv:scope"

// Scope is the set of budgets a request may access.
type Scope struct {
	keys         models.BudgetKeys
	unrestricted bool
}

// Allows reports whether the scope grants access to the budget.
func (s Scope) Allows(key string) bool {
	return s.unrestricted || s.keys.Contains(key)
}

// Filter returns the keys from the set that the scope grants access to.
// For an unrestricted scope, keys is returned unchanged.
func (s Scope) Filter(keys []string) []string {
	if s.unrestricted {
		return keys
	}

	allowed := make([]string, 0, len(keys))
	for _, k := range keys {
		if s.Allows(k) {
			allowed = append(allowed, k)
		}
	}
	return allowed
}

// Keys returns the budget keys of the scope and whether the scope is unrestricted.
func (s Scope) Keys() ([]string, bool) {
	return []string(s.keys), s.unrestricted
}

// Unrestricted returns a scope allowing every budget.
func Unrestricted() Scope {
	return Scope{unrestricted: true}
}

// ScopeFor returns a scope allowing the given budgets.
func ScopeFor(keys []string) Scope {
	return Scope{keys: models.BudgetKeys(keys)}
}

// ScopeFrom returns the scope of the request. Requests that did not pass
// the middleware get an empty scope.
func ScopeFrom(c *gin.Context) Scope {
	if v, ok := c.Get(scopeKey); ok {
		if s, ok := v.(Scope); ok {
			return s
		}
	}
	return Scope{}
}

// Allowed reports whether the request may access the budget and writes a
// 403 response if it may not.
func Allowed(c *gin.Context, key string) bool {
	if ScopeFrom(c).Allows(key) {
		return true
	}

	httputil.Error(c, models.ErrBudgetNotAllowed)
	return false
}

// Middleware requires a valid bearer token on every request except pre-flight requests.
//
// With bypass set, every request gets an unrestricted scope. This only takes effect in
// builds with the devauth tag.
func Middleware(a *Authenticator, bypass bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		if bypass && BypassAvailable {
			c.Set(scopeKey, Unrestricted())
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			httputil.Error(c, models.ErrInvalidToken)
			return
		}

		claims, err := a.ParseToken(strings.TrimSpace(token))
		if err != nil {
			httputil.Error(c, err)
			return
		}

		c.Set(scopeKey, ScopeFor(claims.AuthorizedBudgetKeys))
		c.Next()
	}
}

// RequireBudget rejects requests for budgets outside the request's scope.
// The budget key is read from the URI parameter param.
func RequireBudget(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		if !Allowed(c, c.Param(param)) {
			return
		}
		c.Next()
	}
}
