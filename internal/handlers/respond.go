package handlers

import (
	"errors"

	"appraise-go/internal/apperror"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to an HTTP response. Domain errors carry
// their own code and details; anything else is a plain 500.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)

	body := gin.H{"error": "internal server error"}
	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		body["error"] = appErr.Message
		body["code"] = appErr.Code
		if appErr.Details != nil {
			body["details"] = appErr.Details
		}
	}

	c.JSON(status, body)
}
