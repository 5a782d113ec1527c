package errors

import (
	"fmt"
	"net/http"
)

var (
	// Odoo
	ErrAuthFailed  = fmt.Errorf("аутентификация в Odoo не удалась")
	ErrEmptyValues = fmt.Errorf("после фильтрации по схеме не осталось полей для записи")

	// Импорт
	ErrMissingColumn = fmt.Errorf("в файле нет обязательной колонки")

	// Счета
	ErrInvoiceNotPosted = fmt.Errorf("счёт не проведён")

	// Общие
	ErrNotFound   = fmt.Errorf("запись не найдена")
	ErrBadRequest = fmt.Errorf("неверный запрос")
)

// Кастомные типы ошибок
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string { return e.Message }

func NewInvalidInputError(format string, args ...interface{}) error {
	return &InvalidInputError{Message: fmt.Sprintf(format, args...)}
}

// HttpError - ошибка с HTTP-статусом для ответов API.
type HttpError struct {
	Code    int
	Message string
	Err     error
}

func (e *HttpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *HttpError) Unwrap() error { return e.Err }

func NewHttpError(code int, message string, err error) *HttpError {
	return &HttpError{Code: code, Message: message, Err: err}
}

func NewBadRequestError(message string) *HttpError {
	return NewHttpError(http.StatusBadRequest, message, ErrBadRequest)
}

func NewNotFoundError(message string) *HttpError {
	return NewHttpError(http.StatusNotFound, message, ErrNotFound)
}
