package controllers

import (
	"net/http"

	"github.com/budgenv/backend/internal/httputil"
	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Username string `json:"username" example:"alice"`                        // Name of the user
	Password string `json:"password" example:"correct horse battery staple"` // Password of the user
}

// RegisterTokenRoutes registers the login route. It must not be behind the
// authentication middleware.
func (co Controller) RegisterTokenRoutes(r *gin.RouterGroup) {
	r.OPTIONS("", co.OptionsTokens)
	r.POST("", co.CreateToken)
}

// OptionsTokens returns the allowed HTTP verbs
//
//	@Summary		Allowed HTTP verbs
//	@Description	Returns an empty response with the HTTP Header "allow" set to the allowed HTTP verbs
//	@Tags			Authentication
//	@Success		204
//	@Router			/tokens [options]
func (co Controller) OptionsTokens(c *gin.Context) {
	httputil.OptionsPost(c)
}

// CreateToken logs a user in
//
//	@Summary		Log in
//	@Description	Returns an access token for the user. Unknown users and wrong passwords get the same error.
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			login	body		LoginRequest	true	"Credentials"
//	@Success		200		{object}	auth.Token
//	@Failure		400		{object}	httputil.HTTPError
//	@Failure		401		{object}	httputil.HTTPError
//	@Failure		500		{object}	httputil.HTTPError
//	@Router			/tokens [post]
func (co Controller) CreateToken(c *gin.Context) {
	var login LoginRequest
	if err := httputil.BindData(c, &login); err != nil {
		return
	}

	token, err := co.Auth.Login(c.Request.Context(), login.Username, login.Password)
	if err != nil {
		httputil.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, token)
}
