package response

import (
	"spotly/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondAppError maps a domain error onto the standard envelope, carrying
// the error's structured details in the errors field.
func RespondAppError(c *gin.Context, err error) {
	RespondJSON(c, "error", apperror.HTTPStatus(err), err.Error(), nil, apperror.DetailsOf(err))
}
