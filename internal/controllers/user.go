package controllers

import (
	"net/http"

	"github.com/budgenv/backend/internal/auth"
	"github.com/budgenv/backend/internal/httputil"
	"github.com/budgenv/backend/internal/models"
	"github.com/gin-gonic/gin"
)

type UserCreate struct {
	Name              string   `json:"name" example:"alice"`                            // Login name
	Password          string   `json:"password" example:"correct horse battery staple"` // Password, only ever stored as hash
	AllowedBudgetKeys []string `json:"allowedBudgetKeys" example:"household"`           // Budgets the user may access
}

type UserResponse struct {
	Data models.User `json:"data"` // Data for the user
}

func (co Controller) RegisterUserRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsUsers)
	r.POST("", co.CreateUser)
}

// OptionsUsers returns the allowed HTTP verbs
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Users
//	@Success		204
//	@Router			/users [options]
func (co Controller) OptionsUsers(c *gin.Context) {
	httputil.OptionsPost(c)
}

// CreateUser creates a user
//
//	@Summary		Create user
//	@Description	Creates a user. Callers can only grant access to budgets they have access to themselves.
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			user	body		UserCreate	true	"User"
//	@Success		201		{object}	UserResponse
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		401		{object}	httputil.HTTPError
//	@Failure		403		{object}	httputil.HTTPError
//	@Failure		500		{object}	httputil.HTTPError
//	@Router			/users [post]
func (co Controller) CreateUser(c *gin.Context) {
	var in UserCreate
	if err := httputil.BindData(c, &in); err != nil {
		return
	}

	if granted := auth.ScopeFrom(c).Filter(in.AllowedBudgetKeys); len(granted) != len(in.AllowedBudgetKeys) {
		httputil.Error(c, models.ErrBudgetNotAllowed)
		return
	}

	user, err := co.Auth.CreateUser(c.Request.Context(), in.Name, in.Password, in.AllowedBudgetKeys)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, UserResponse{Data: user})
}
