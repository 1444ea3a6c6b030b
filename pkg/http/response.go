package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorBody is the payload of every error response.
type ErrorBody struct {
	Error string `json:"error"`
}

// SuccessResponse writes data with status 200.
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

// ErrorResponse writes {"error": message} with the given status.
func ErrorResponse(c echo.Context, status int, message string) error {
	return c.JSON(status, ErrorBody{Error: message})
}

// AppErrorResponse writes the status and message of an AppError. Untagged
// errors become a 500 carrying the error text.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return ErrorResponse(c, appErr.Status, appErr.Message)
	}
	return ErrorResponse(c, http.StatusInternalServerError, err.Error())
}
