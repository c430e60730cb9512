package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// SuccessResponse is the envelope for successful calls.
type SuccessResponse struct {
	Success bool   `json:"success" example:"true"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the envelope for failed calls. Clients branch on Code.
type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Error   string `json:"error"   example:"Image processing limit reached"`
	Code    string `json:"code"    example:"QUOTA_EXCEEDED"`
	Data    any    `json:"data,omitempty"`
}

func ok(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, SuccessResponse{Success: true, Data: data})
}
