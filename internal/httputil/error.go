package httputil

import (
	"net/http"

	"github.com/budgenv/backend/internal/models"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// HTTPError is the body of every error response.
type HTTPError struct {
	Reason  string `json:"reason" example:"CATEGORY_NOT_VALID"`                          // Stable, machine readable reason
	Message string `json:"message" example:"the category does not exist in this budget"` // Human readable description
}

// Status returns the HTTP status code for an error.
func Status(err error) int {
	e, ok := models.AsError(err)
	if !ok {
		return http.StatusInternalServerError
	}

	switch e.Kind {
	case models.KindValidation, models.KindConsistency:
		return http.StatusBadRequest
	case models.KindNotFound:
		return http.StatusNotFound
	case models.KindAuth:
		return http.StatusUnauthorized
	case models.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// NewHTTPError builds the response body for err.
//
// Errors that are not *models.Error are never shown to the client.
func NewHTTPError(err error) HTTPError {
	e, ok := models.AsError(err)
	if !ok {
		return HTTPError{Reason: models.ErrGeneral.Reason, Message: models.ErrGeneral.Error()}
	}

	// Storage errors may carry driver details
	if e.Kind == models.KindStorage {
		return HTTPError{Reason: e.Reason, Message: e.Error()}
	}

	return HTTPError{Reason: e.Reason, Message: err.Error()}
}

// Error aborts the request with the status and body for err.
func Error(c *gin.Context, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		log.Error().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
	}

	c.AbortWithStatusJSON(status, NewHTTPError(err))
}
