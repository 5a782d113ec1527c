package utils

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "odoo-leads/pkg/errors"
)

type HttpResponse struct {
	Status  bool        `json:"status"`
	Body    interface{} `json:"body,omitempty"`
	Message string      `json:"message"`
}

// ErrorResponse подбирает статус: HttpError, ошибки валидации, затем ErrorList, иначе 500.
func ErrorResponse(ctx echo.Context, err error) error {
	message := err.Error()
	code := http.StatusInternalServerError

	var httpErr *apperrors.HttpError
	var validationErrs validator.ValidationErrors
	switch {
	case errors.As(err, &httpErr):
		code, message = httpErr.Code, httpErr.Message
	case errors.As(err, &validationErrs):
		code = http.StatusBadRequest
	default:
		for target, statusCode := range ErrorList {
			if errors.Is(err, target) {
				code = statusCode
				break
			}
		}
	}

	response := &HttpResponse{
		Status:  false,
		Body:    struct{}{},
		Message: message,
	}
	return ctx.JSON(code, response)
}
