// Package controllers contains the HTTP handlers of the API.
package controllers

import (
	"fmt"

	"github.com/budgenv/backend/internal/auth"
	"github.com/budgenv/backend/internal/httputil"
	"github.com/budgenv/backend/internal/ledger"
	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/internal/uuid"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Controller holds everything the handlers need.
type Controller struct {
	Ledger *ledger.Engine
	Auth   *auth.Authenticator
	DB     *gorm.DB
}

type URIBudget struct {
	BudgetID string `uri:"id" binding:"required" example:"household"` // Key of the budget
}

type URICategory struct {
	URIBudget
	CategoryID uuid.UUID `uri:"categoryId" binding:"required" format:"UUID"` // ID of the category
}

type URIID struct {
	ID uuid.UUID `uri:"id" binding:"required" format:"UUID"` // ID of the resource
}

// Pagination contains information about the pagination for collection endpoint responses.
type Pagination struct {
	Count  int   `json:"count" example:"25"`  // The amount of records returned in this response
	Offset uint  `json:"offset" example:"50"` // The offset for the first record returned
	Limit  int   `json:"limit" example:"25"`  // The maximum amount of resources to return for this request
	Total  int64 `json:"total" example:"827"` // The total number of resources matching the query
}

// bindURI binds the path parameters to uri and writes the error response
// if that is not possible.
func bindURI(c *gin.Context, uri any) bool {
	if err := c.ShouldBindUri(uri); err != nil {
		httputil.Error(c, fmt.Errorf("%w: %s", models.ErrInvalidParameter, err.Error()))
		return false
	}
	return true
}
