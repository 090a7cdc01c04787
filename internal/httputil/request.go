package httputil

import (
	"errors"
	"fmt"
	"io"

	"github.com/budgenv/backend/internal/models"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// BindData binds the JSON body of the request to data.
//
// On failure, the error response is written and the returned error is non-nil.
func BindData(c *gin.Context, data any) error {
	if err := c.ShouldBindJSON(data); err != nil {
		if errors.Is(err, io.EOF) {
			e := fmt.Errorf("%w: the request body must not be empty", models.ErrInvalidBody)
			Error(c, e)
			return e
		}

		log.Debug().Str("request-id", requestid.Get(c)).Msgf("%T: %v", err, err.Error())
		Error(c, models.ErrInvalidBody)
		return models.ErrInvalidBody
	}

	return nil
}
