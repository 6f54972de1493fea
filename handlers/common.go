package handlers

import (
	"errors"
	"net/http"

	"partyquiz/models"
)

// statusFor maps domain errors onto HTTP statuses. Everything is recoverable;
// nothing here ever tears the process down.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrBadPassword):
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
