package controllers

import (
	"errors"
	"net/http"

	"github.com/budgenv/backend/internal/httputil"
	"github.com/budgenv/backend/internal/ledger"
	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/internal/types"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// IdempotencyKeyHeader is the header clients use to make affectation postings retryable.
const IdempotencyKeyHeader = "Idempotency-Key"

type AffectationCreate struct {
	Date        types.Month        `json:"date" example:"2024-03"` // Month of the affectation
	Affectation models.Affectation `json:"affectation"`            // Category and amount
}

type URIAffectationMonth struct {
	URIBudget
	Date types.Month `uri:"date" binding:"required" example:"2024-03"` // Month in YYYY-MM format
}

type AffectationResponse struct {
	Data models.MonthlyAffectation `json:"data"` // Data for the affectation
}

type AffectationListResponse struct {
	Data []models.MonthlyAffectation `json:"data"` // List of affectations
}

// AffectationPartialResponse is sent when an affectation was stored but not all
// balances could be updated.
type AffectationPartialResponse struct {
	httputil.HTTPError
	Data models.MonthlyAffectation `json:"data"` // The stored affectation, including its journal
}

type ReconcileResponse struct {
	Data ledger.ReconcileResult `json:"data"` // Result of the reconciliation
}

type ReconcileErrorResponse struct {
	httputil.HTTPError
	Data ledger.ReconcileResult `json:"data"` // Result of the reconciliation
}

// RegisterAffectationRoutes registers the routes for the affectations of a budget.
func (co Controller) RegisterAffectationRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsAffectationList)
		r.GET("", co.GetAffectations)
		r.POST("", co.CreateAffectation)
	}

	{
		r.OPTIONS("/month/:date", co.OptionsAffectationMonth)
		r.GET("/month/:date", co.GetAffectationsByMonth)
	}

	{
		r.OPTIONS("/reconcile", co.OptionsReconcile)
		r.POST("/reconcile", co.Reconcile)
	}
}

// OptionsAffectationList returns the allowed HTTP verbs
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Affectations
//	@Success		204
//	@Param			id	path	string	true	"Key of the budget"
//	@Router			/budgets/{id}/affectations [options]
func (co Controller) OptionsAffectationList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// OptionsAffectationMonth returns the allowed HTTP verbs
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Affectations
//	@Success		204
//	@Param			id		path	string	true	"Key of the budget"
//	@Param			date	path	string	true	"Month in YYYY-MM format"
//	@Router			/budgets/{id}/affectations/month/{date} [options]
func (co Controller) OptionsAffectationMonth(c *gin.Context) {
	httputil.OptionsGet(c)
}

// OptionsReconcile returns the allowed HTTP verbs
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Affectations
//	@Success		204
//	@Param			id	path	string	true	"Key of the budget"
//	@Router			/budgets/{id}/affectations/reconcile [options]
func (co Controller) OptionsReconcile(c *gin.Context) {
	httputil.OptionsPost(c)
}

// GetAffectations returns the affectations of a budget
//
//	@Summary		List affectations
//	@Description	Returns up to 100 affectations of the budget. Responds with 404 if there are none.
//	@Tags			Affectations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Key of the budget"
//	@Success		200	{object}	AffectationListResponse
//	@Failure		401	{object}	httputil.HTTPError
//	@Failure		403	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Failure		500	{object}	httputil.HTTPError
//	@Router			/budgets/{id}/affectations [get]
func (co Controller) GetAffectations(c *gin.Context) {
	var uri URIBudget
	if !bindURI(c, &uri) {
		return
	}

	affectations, err := co.Ledger.Affectations(c.Request.Context(), uri.BudgetID, "")
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AffectationListResponse{Data: affectations})
}

// GetAffectationsByMonth returns the affectations of a budget for one month
//
//	@Summary		List affectations of a month
//	@Description	Returns the affectations of the budget for the month. Responds with 404 if there are none.
//	@Tags			Affectations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Key of the budget"
//	@Param			date	path		string	true	"Month in YYYY-MM format"
//	@Success		200		{object}	AffectationListResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		401		{object}	httputil.HTTPError
//	@Failure		403		{object}	httputil.HTTPError
//	@Failure		404		{object}	httputil.HTTPError
//	@Failure		500		{object}	httputil.HTTPError
//	@Router			/budgets/{id}/affectations/month/{date} [get]
func (co Controller) GetAffectationsByMonth(c *gin.Context) {
	var uri URIAffectationMonth
	if !bindURI(c, &uri) {
		return
	}

	affectations, err := co.Ledger.Affectations(c.Request.Context(), uri.BudgetID, uri.Date)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, AffectationListResponse{Data: affectations})
}

// CreateAffectation moves money from the unaffected amount of the budget into a category
//
//	@Summary		Create affectation
//	@Description	Decreases the unaffected amount of the budget and increases the amount of the category.
//	@Description	If only part of the balance updates succeed, the response is a 500 with reason AFFECTATION_PARTIALLY_APPLIED
//	@Description	and the stored affectation. Retrying with the same Idempotency-Key completes it.
//	@Tags			Affectations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id				path		string				true	"Key of the budget"
//	@Param			Idempotency-Key	header		string				false	"Key to make retries safe"
//	@Param			affectation		body		AffectationCreate	true	"Affectation"
//	@Success		201				{object}	AffectationResponse
//	@Failure		400				{object}	httputil.HTTPError
//	@Failure		401				{object}	httputil.HTTPError
//	@Failure		403				{object}	httputil.HTTPError
//	@Failure		404				{object}	httputil.HTTPError
//	@Failure		500				{object}	AffectationPartialResponse
//	@Router			/budgets/{id}/affectations [post]
func (co Controller) CreateAffectation(c *gin.Context) {
	var uri URIBudget
	if !bindURI(c, &uri) {
		return
	}

	var in AffectationCreate
	if err := httputil.BindData(c, &in); err != nil {
		return
	}

	affectation := models.MonthlyAffectation{
		Date:        in.Date,
		Affectation: in.Affectation,
	}

	if key := c.GetHeader(IdempotencyKeyHeader); key != "" {
		affectation.IdempotencyKey = &key
	}

	affectation, err := co.Ledger.PostAffectation(c.Request.Context(), uri.BudgetID, affectation)
	if err != nil {
		var partial *ledger.PartialFailureError
		if errors.As(err, &partial) {
			log.Error().Str("request-id", requestid.Get(c)).Err(err).Str("affectation", partial.Affectation.ID.String()).Msg("partial failure")
			c.AbortWithStatusJSON(http.StatusInternalServerError, AffectationPartialResponse{
				HTTPError: httputil.HTTPError{Reason: models.ErrPartiallyApplied.Reason, Message: partial.Error()},
				Data:      partial.Affectation,
			})
			return
		}

		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, AffectationResponse{Data: affectation})
}

// Reconcile completes the pending affectations of a budget
//
//	@Summary		Reconcile affectations
//	@Description	Applies the missing balance updates of all pending affectations of the budget.
//	@Tags			Affectations
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Key of the budget"
//	@Success		200	{object}	ReconcileResponse
//	@Failure		401	{object}	httputil.HTTPError
//	@Failure		403	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Failure		500	{object}	ReconcileErrorResponse
//	@Router			/budgets/{id}/affectations/reconcile [post]
func (co Controller) Reconcile(c *gin.Context) {
	var uri URIBudget
	if !bindURI(c, &uri) {
		return
	}

	result, err := co.Ledger.Reconcile(c.Request.Context(), uri.BudgetID)
	if errors.Is(err, models.ErrPartiallyApplied) {
		log.Error().Str("request-id", requestid.Get(c)).Err(err).Strs("failed", result.Failed).Msg("reconciliation incomplete")
		c.AbortWithStatusJSON(http.StatusInternalServerError, ReconcileErrorResponse{
			HTTPError: httputil.NewHTTPError(models.ErrPartiallyApplied),
			Data:      result,
		})
		return
	} else if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, ReconcileResponse{Data: result})
}
