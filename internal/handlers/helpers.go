package handlers

import (
	"errors"

	"clinic-booking-server/internal/services"
	"clinic-booking-server/internal/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError translates the service error taxonomy into HTTP
// responses. Unexpected store errors become 500s.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.Forbidden(c, "You are not authorized to perform this action")
	case errors.Is(err, services.ErrNotAvailable):
		utils.Conflict(c, services.ErrNotAvailable.Error())
	case errors.Is(err, services.ErrConflict):
		utils.Conflict(c, services.ErrConflict.Error())
	case errors.Is(err, services.ErrDuplicate):
		utils.Conflict(c, err.Error())
	default:
		utils.InternalServerError(c, err.Error())
	}
}
