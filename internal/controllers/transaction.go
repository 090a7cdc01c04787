package controllers

import (
	"fmt"
	"net/http"

	"github.com/budgenv/backend/internal/auth"
	"github.com/budgenv/backend/internal/httputil"
	"github.com/budgenv/backend/internal/ledger"
	"github.com/budgenv/backend/internal/models"
	"github.com/budgenv/backend/internal/types"
	"github.com/gin-gonic/gin"
)

type TransactionCreate struct {
	BudgetID string `json:"budgetId" example:"household"` // Key of the budget
	models.TransactionEditable
}

type TransactionResponse struct {
	Data models.Transaction `json:"data"` // Data for the transaction
}

type TransactionListResponse struct {
	Data       []models.Transaction `json:"data"`                 // List of transactions
	Pagination *Pagination          `json:"pagination,omitempty"` // Pagination information
}

type QueryRange struct {
	StartDate types.Day `form:"start_date" example:"2024-03-01"` // First day of the range, inclusive
	EndDate   types.Day `form:"end_date" example:"2024-03-31"`   // Last day of the range, inclusive
}

type URILast struct {
	URIBudget
	N int `uri:"n" binding:"required" example:"10"` // Number of transactions
}

type QueryPagination struct {
	Offset uint `form:"offset"` // The offset of the first transaction returned
	Limit  int  `form:"limit"`  // Maximum number of transactions to return
}

// RegisterTransactionRoutes registers the routes for transactions across budgets.
func (co Controller) RegisterTransactionRoutes(r *gin.RouterGroup) {
	{
		r.OPTIONS("", co.OptionsTransactionList)
		r.GET("", co.GetTransactions)
		r.POST("", co.CreateTransaction)
	}

	{
		r.OPTIONS("/:id", co.OptionsTransactionDetail)
		r.GET("/:id", co.GetTransaction)
	}
}

// RegisterBudgetTransactionRoutes registers the transaction queries of a budget.
func (co Controller) RegisterBudgetTransactionRoutes(r *gin.RouterGroup) {
	r.OPTIONS("/range", co.OptionsTransactionRange)
	r.GET("/range", co.GetTransactionsInRange)
	r.OPTIONS("/last/:n", co.OptionsTransactionLast)
	r.GET("/last/:n", co.GetLastTransactions)
}

// OptionsTransactionList returns the allowed HTTP verbs
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Transactions
//	@Success		204
//	@Router			/transactions [options]
func (co Controller) OptionsTransactionList(c *gin.Context) {
	httputil.OptionsGetPost(c)
}

// OptionsTransactionDetail returns the allowed HTTP verbs
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Transactions
//	@Success		204
//	@Param			id	path	string	true	"ID of the transaction"
//	@Router			/transactions/{id} [options]
func (co Controller) OptionsTransactionDetail(c *gin.Context) {
	httputil.OptionsGet(c)
}

// OptionsTransactionRange returns the allowed HTTP verbs
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Transactions
//	@Success		204
//	@Param			id	path	string	true	"Key of the budget"
//	@Router			/budgets/{id}/transactions/range [options]
func (co Controller) OptionsTransactionRange(c *gin.Context) {
	httputil.OptionsGet(c)
}

// OptionsTransactionLast returns the allowed HTTP verbs
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Transactions
//	@Success		204
//	@Param			id	path	string	true	"Key of the budget"
//	@Param			n	path	int		true	"Number of transactions"
//	@Router			/budgets/{id}/transactions/last/{n} [options]
func (co Controller) OptionsTransactionLast(c *gin.Context) {
	httputil.OptionsGet(c)
}

// GetTransactions returns transactions of all budgets the token grants access to
//
//	@Summary		List transactions
//	@Description	Returns the transactions of all budgets the token grants access to, newest first
//	@Tags			Transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			offset	query		uint	false	"The offset of the first transaction returned. Defaults to 0."
//	@Param			limit	query		int		false	"Maximum number of transactions to return. Defaults to 100, which is also the maximum."
//	@Success		200		{object}	TransactionListResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		401		{object}	httputil.HTTPError
//	@Failure		500		{object}	httputil.HTTPError
//	@Router			/transactions [get]
func (co Controller) GetTransactions(c *gin.Context) {
	var query QueryPagination
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.Error(c, fmt.Errorf("%w: %s", models.ErrInvalidParameter, err.Error()))
		return
	}

	limit := query.Limit
	if limit <= 0 || limit > ledger.ListLimit {
		limit = ledger.ListLimit
	}

	keys, unrestricted := auth.ScopeFrom(c).Keys()
	transactions, total, err := co.Ledger.Transactions(c.Request.Context(), keys, unrestricted, int(query.Offset), limit)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionListResponse{
		Data: transactions,
		Pagination: &Pagination{
			Count:  len(transactions),
			Total:  total,
			Offset: query.Offset,
			Limit:  limit,
		},
	})
}

// CreateTransaction records a transaction
//
//	@Summary		Create transaction
//	@Description	Records a transaction. Transactions never change the amount of a category or budget.
//	@Tags			Transactions
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			transaction	body		TransactionCreate	true	"Transaction"
//	@Success		201			{object}	TransactionResponse
//	@Failure		400			{object}	httputil.HTTPError
//	@Failure		401			{object}	httputil.HTTPError
//	@Failure		403			{object}	httputil.HTTPError
//	@Failure		404			{object}	httputil.HTTPError
//	@Failure		500			{object}	httputil.HTTPError
//	@Router			/transactions [post]
func (co Controller) CreateTransaction(c *gin.Context) {
	var in TransactionCreate
	if err := httputil.BindData(c, &in); err != nil {
		return
	}

	if !auth.Allowed(c, in.BudgetID) {
		return
	}

	transaction, err := co.Ledger.RecordTransaction(c.Request.Context(), in.BudgetID, in.TransactionEditable)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, TransactionResponse{Data: transaction})
}

// GetTransaction returns a specific transaction
//
//	@Summary		Get transaction
//	@Description	Returns a specific transaction
//	@Tags			Transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"ID of the transaction"
//	@Success		200	{object}	TransactionResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		401	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Failure		500	{object}	httputil.HTTPError
//	@Router			/transactions/{id} [get]
func (co Controller) GetTransaction(c *gin.Context) {
	var uri URIID
	if !bindURI(c, &uri) {
		return
	}

	transaction, err := co.Ledger.Transaction(c.Request.Context(), uri.ID.UUID)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	// Transactions of other budgets are reported as missing
	if !auth.ScopeFrom(c).Allows(transaction.BudgetID) {
		httputil.Error(c, fmt.Errorf("%w transaction matching your query", models.ErrResourceNotFound))
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Data: transaction})
}

// GetTransactionsInRange returns the transactions of a budget in a date range
//
//	@Summary		List transactions in range
//	@Description	Returns up to 100 transactions of the budget between start_date and end_date, both inclusive. Responds with 404 if there are none.
//	@Tags			Transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id			path		string	true	"Key of the budget"
//	@Param			start_date	query		string	true	"First day in YYYY-MM-DD format"
//	@Param			end_date	query		string	true	"Last day in YYYY-MM-DD format"
//	@Success		200			{object}	TransactionListResponse
//	@Failure		400			{object}	httputil.HTTPError
//	@Failure		401			{object}	httputil.HTTPError
//	@Failure		403			{object}	httputil.HTTPError
//	@Failure		404			{object}	httputil.HTTPError
//	@Failure		500			{object}	httputil.HTTPError
//	@Router			/budgets/{id}/transactions/range [get]
func (co Controller) GetTransactionsInRange(c *gin.Context) {
	var uri URIBudget
	if !bindURI(c, &uri) {
		return
	}

	var query QueryRange
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.Error(c, fmt.Errorf("%w: %s", models.ErrInvalidParameter, err.Error()))
		return
	}

	transactions, err := co.Ledger.TransactionsInRange(c.Request.Context(), uri.BudgetID, query.StartDate, query.EndDate)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionListResponse{Data: transactions})
}

// GetLastTransactions returns the most recent transactions of a budget
//
//	@Summary		List last transactions
//	@Description	Returns the n most recent transactions of the budget, newest first. At most 100 transactions are returned. Responds with 404 if there are none.
//	@Tags			Transactions
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Key of the budget"
//	@Param			n	path		int		true	"Number of transactions"
//	@Success		200	{object}	TransactionListResponse
//	@Failure		400	{object}	httputil.HTTPError
//	@Failure		401	{object}	httputil.HTTPError
//	@Failure		403	{object}	httputil.HTTPError
//	@Failure		404	{object}	httputil.HTTPError
//	@Failure		500	{object}	httputil.HTTPError
//	@Router			/budgets/{id}/transactions/last/{n} [get]
func (co Controller) GetLastTransactions(c *gin.Context) {
	var uri URILast
	if !bindURI(c, &uri) {
		return
	}

	transactions, err := co.Ledger.LastTransactions(c.Request.Context(), uri.BudgetID, uri.N)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionListResponse{Data: transactions})
}
