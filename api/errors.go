package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"boardhub-api/domain"
)

// envelope is the response shape every endpoint uses.
type envelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// errorData distinguishes failure classes in the body; Kind matters for the
// two 409 variants, which share a status code.
type errorData struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

func respond(c echo.Context, status int, data any) error {
	return c.JSON(status, envelope{Success: true, Data: data})
}

func respondError(c echo.Context, err error) error {
	kind := domain.KindOf(err)
	if kind == domain.KindInternal {
		c.Logger().Error(err)
	}
	msg := err.Error()
	if kind == domain.KindInternal {
		// Internal details stay in the logs.
		msg = "internal error"
	}
	return c.JSON(statusForKind(kind), envelope{
		Success: false,
		Data:    errorData{Message: msg, Kind: kind.String()},
	})
}

func statusForKind(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindScopeMismatch, domain.KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
