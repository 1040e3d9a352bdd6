package handler

import (
	"errors"
	"net/http"

	"ledger-api/internal/adapter/http/dto"
	"ledger-api/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes and validates the request body into obj. An oversized
// body maps to LED_006, every other decoding failure to LED_001.
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.ErrPayloadTooLarge()
		}
		return apperror.InvalidRequest(err.Error())
	}
	dto.SanitizeStruct(obj)
	return nil
}
