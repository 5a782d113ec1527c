package utils

import (
	apperrors "odoo-leads/pkg/errors"
)

// ErrorList - HTTP-статусы для общих ошибок приложения.
var ErrorList = map[error]int{
	apperrors.ErrNotFound:         404,
	apperrors.ErrBadRequest:       400,
	apperrors.ErrInvoiceNotPosted: 400,
	apperrors.ErrAuthFailed:       502,
}
