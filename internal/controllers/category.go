package controllers

import (
	"net/http"

	"github.com/budgenv/backend/internal/httputil"
	"github.com/budgenv/backend/internal/models"
	"github.com/gin-gonic/gin"
)

type CategoryResponse struct {
	Data models.Category `json:"data"` // Data for the category
}

type CategoryListResponse struct {
	Data []models.Category `json:"data"` // List of categories
}

// RegisterCategoryRoutes registers the routes for the categories of a budget.
func (co Controller) RegisterCategoryRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsCategoryList)
		r.GET("", co.GetCategories)
		r.POST("", co.CreateCategory)
	}

	{
		r.OPTIONS("/:categoryId", co.OptionsCategoryDetail)
		r.GET("/:categoryId", co.GetCategory)
		r.POST("/:categoryId", co.UpsertCategory)
	}
}

// OptionsCategoryList returns the allowed HTTP verbs
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Categories
//	@Success		204
//	@Param			id	path	string	true	"Key of the budget"
//	@Router			/budgets/{id}/categories [options]
func (co Controller) OptionsCategoryList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// OptionsCategoryDetail returns the allowed HTTP verbs
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Categories
//	@Success		204
//	@Param			id			path	string	true	"Key of the budget"
//	@Param			categoryId	path	string	true	"ID of the category"
//	@Router			/budgets/{id}/categories/{categoryId} [options]
func (co Controller) OptionsCategoryDetail(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// GetCategories returns the categories of a budget
//
//	@Summary		List categories
//	@Description	Returns up to 100 categories of the budget, ordered by name. Responds with 404 if there are none.
//	@Tags			Categories
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Key of the budget"
//	@Success		200	{object}	CategoryListResponse
//	@Failure		401	{object}	httputil.HTTPError
//	@Failure		403	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Failure		500	{object}	httputil.HTTPError
//	@Router			/budgets/{id}/categories [get]
func (co Controller) GetCategories(c *gin.Context) {
	var uri URIBudget
	if !bindURI(c, &uri) {
		return
	}

	categories, err := co.Ledger.Categories(c.Request.Context(), uri.BudgetID)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, CategoryListResponse{Data: categories})
}

// CreateCategory creates a category
//
//	@Summary		Create category
//	@Description	Creates a category in the budget. The amount of a new category is always 0.
//	@Tags			Categories
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		string					true	"Key of the budget"
//	@Param			category	body		models.CategoryEditable	true	"Category"
//	@Success		201			{object}	CategoryResponse
//	@Failure		400			{object}	httputil.HTTPError
//	@Failure		401			{object}	httputil.HTTPError
//	@Failure		403			{object}	httputil.HTTPError
//	@Failure		404			{object}	httputil.HTTPError
//	@Failure		500			{object}	httputil.HTTPError
//	@Router			/budgets/{id}/categories [post]
func (co Controller) CreateCategory(c *gin.Context) {
	var uri URIBudget
	if !bindURI(c, &uri) {
		return
	}

	var editable models.CategoryEditable
	if err := httputil.BindData(c, &editable); err != nil {
		return
	}

	category, err := co.Ledger.CreateCategory(c.Request.Context(), uri.BudgetID, editable)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, CategoryResponse{Data: category})
}

// GetCategory returns a specific category
//
//	@Summary		Get category
//	@Description	Returns a specific category of the budget
//	@Tags			Categories
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		string	true	"Key of the budget"
//	@Param			categoryId	path		string	true	"ID of the category"
//	@Success		200			{object}	CategoryResponse
//	@Failure		400			{object}	httputil.HTTPError
//	@Failure		401			{object}	httputil.HTTPError
//	@Failure		403			{object}	httputil.HTTPError
//	@Failure		404			{object}	httputil.HTTPError
//	@Failure		500			{object}	httputil.HTTPError
//	@Router			/budgets/{id}/categories/{categoryId} [get]
func (co Controller) GetCategory(c *gin.Context) {
	var uri URICategory
	if !bindURI(c, &uri) {
		return
	}

	category, err := co.Ledger.Category(c.Request.Context(), uri.BudgetID, uri.CategoryID.UUID)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, CategoryResponse{Data: category})
}

// UpsertCategory updates or creates a category with a specific ID
//
//	@Summary		Update or create category
//	@Description	Replaces name and goal of the category, keeping its amount. Creates the category with this ID if it does not exist.
//	@Tags			Categories
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		string					true	"Key of the budget"
//	@Param			categoryId	path		string					true	"ID of the category"
//	@Param			category	body		models.CategoryEditable	true	"Category"
//	@Success		200			{object}	CategoryResponse
//	@Failure		400			{object}	httputil.HTTPError
//	@Failure		401			{object}	httputil.HTTPError
//	@Failure		403			{object}	httputil.HTTPError
//	@Failure		404			{object}	httputil.HTTPError
//	@Failure		500			{object}	httputil.HTTPError
//	@Router			/budgets/{id}/categories/{categoryId} [post]
func (co Controller) UpsertCategory(c *gin.Context) {
	var uri URICategory
	if !bindURI(c, &uri) {
		return
	}

	var editable models.CategoryEditable
	if err := httputil.BindData(c, &editable); err != nil {
		return
	}

	category, _, err := co.Ledger.UpsertCategory(c.Request.Context(), uri.BudgetID, uri.CategoryID.UUID, editable)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, CategoryResponse{Data: category})
}
