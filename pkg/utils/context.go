package utils

import (
	"context"
	"strings"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/labstack/echo/v4"
)

// Ctx - контекст запроса с таймаутом для вызовов Odoo из обработчиков.
func Ctx(c echo.Context, seconds int) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), time.Duration(seconds)*time.Second)
}

// NullStringValue - значение без пробелов по краям; NULL даёт "".
func NullStringValue(ns null.String) string {
	if !ns.Valid {
		return ""
	}
	return strings.TrimSpace(ns.String)
}

func NullFloatValue(nf null.Float64) float64 {
	if !nf.Valid {
		return 0
	}
	return nf.Float64
}

func NullIntValue(ni null.Int) int {
	if !ni.Valid {
		return 0
	}
	return ni.Int
}
