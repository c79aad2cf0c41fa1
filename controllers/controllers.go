// File: /controllers/controllers.go
package controllers

import (
	"errors"
	"net/http"

	"serenity-api/auth"
	"serenity-api/services"
	"serenity-api/store"
)

// statusForError maps service-level errors onto HTTP status codes.
// Anything unrecognized is treated as a transient backend failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, auth.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
