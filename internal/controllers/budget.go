package controllers

import (
	"net/http"

	"github.com/budgenv/backend/internal/auth"
	"github.com/budgenv/backend/internal/httputil"
	"github.com/budgenv/backend/internal/models"
	"github.com/gin-gonic/gin"
)

type BudgetResponse struct {
	Data models.Budget `json:"data"` // Data for the budget
}

type BudgetListResponse struct {
	Data []models.Budget `json:"data"` // List of budgets
}

// RegisterBudgetRoutes registers the routes for budgets and all resources
// nested in them with the RouterGroup that is passed.
func (co Controller) RegisterBudgetRoutes(r *gin.RouterGroup) {
	// Root group
	{
		r.OPTIONS("", co.OptionsBudgetList)
		r.GET("", co.GetBudgets)
	}

	// Budget with key
	b := r.Group("/:id", auth.RequireBudget("id"))
	{
		b.OPTIONS("", co.OptionsBudgetDetail)
		b.GET("", co.GetBudget)
		b.POST("", co.PutBudget)
	}

	co.RegisterCategoryRoutes(b.Group("/categories"))
	co.RegisterAffectationRoutes(b.Group("/affectations"))
	co.RegisterBudgetTransactionRoutes(b.Group("/transactions"))
}

// OptionsBudgetList returns the allowed HTTP verbs
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Budgets
//	@Success		204
//	@Router			/budgets [options]
func (co Controller) OptionsBudgetList(c *gin.Context) {
	httputil.OptionsGet(c)
}

// OptionsBudgetDetail returns the allowed HTTP verbs
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Budgets
//	@Success		204
//	@Param			id	path	string	true	"Key of the budget"
//	@Router			/budgets/{id} [options]
func (co Controller) OptionsBudgetDetail(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// GetBudgets returns the budgets the token grants access to
//
//	@Summary		List budgets
//	@Description	Returns all budgets the token grants access to
//	@Tags			Budgets
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	BudgetListResponse
//	@Failure		401	{object}	httputil.HTTPError
//	@Failure		500	{object}	httputil.HTTPError
//	@Router			/budgets [get]
func (co Controller) GetBudgets(c *gin.Context) {
	keys, unrestricted := auth.ScopeFrom(c).Keys()

	budgets, err := co.Ledger.Budgets(c.Request.Context(), keys, unrestricted)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetListResponse{Data: budgets})
}

// GetBudget returns a specific budget
//
//	@Summary		Get budget
//	@Description	Returns a specific budget
//	@Tags			Budgets
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Key of the budget"
//	@Success		200	{object}	BudgetResponse
//	@Failure		401	{object}	httputil.HTTPError
//	@Failure		403	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Failure		500	{object}	httputil.HTTPError
//	@Router			/budgets/{id} [get]
func (co Controller) GetBudget(c *gin.Context) {
	var uri URIBudget
	if !bindURI(c, &uri) {
		return
	}

	budget, err := co.Ledger.Budget(c.Request.Context(), uri.BudgetID)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Data: budget})
}

// PutBudget creates or replaces a budget
//
//	@Summary		Create or replace budget
//	@Description	Stores the budget under the key from the path, replacing an existing budget with the same key.
//	@Description	This is the way to correct the unaffected amount of a budget.
//	@Tags			Budgets
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string					true	"Key of the budget"
//	@Param			budget	body		models.BudgetEditable	true	"Budget"
//	@Success		201		{object}	BudgetResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		401		{object}	httputil.HTTPError
//	@Failure		403		{object}	httputil.HTTPError
//	@Failure		500		{object}	httputil.HTTPError
//	@Router			/budgets/{id} [post]
func (co Controller) PutBudget(c *gin.Context) {
	var uri URIBudget
	if !bindURI(c, &uri) {
		return
	}

	var editable models.BudgetEditable
	if err := httputil.BindData(c, &editable); err != nil {
		return
	}

	budget, err := co.Ledger.PutBudget(c.Request.Context(), models.Budget{ID: uri.BudgetID, BudgetEditable: editable})
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, BudgetResponse{Data: budget})
}
