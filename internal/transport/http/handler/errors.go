package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-mail-verify/internal/domain"
)

// MethodNotAllowedMessage is returned for any non-POST verb on a write route.
const MethodNotAllowedMessage = "Method Not Allowed. Use POST."

var errTrailingData = errors.New("unexpected data after JSON body")

// MethodNotAllowed answers 405 with the JSON error body, naming allow as the
// only accepted verb.
func MethodNotAllowed(allow string) http.HandlerFunc {
	msg := "Method Not Allowed. Use " + allow + "."
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", allow)
		writeError(w, http.StatusMethodNotAllowed, msg)
	}
}

// httpError maps a service error to a status and body. Client errors carry
// their message; anything else is logged and answered with fallback.
func httpError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, clientMessage(err, domain.ErrValidation))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, clientMessage(err, domain.ErrNotFound))
	case errors.Is(err, domain.ErrMethodNotAllowed):
		writeError(w, http.StatusMethodNotAllowed, MethodNotAllowedMessage)
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden")
	default:
		slog.Error(fallback,
			"err", err,
			"path", r.URL.Path,
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

// clientMessage strips the sentinel suffix added by %w wrapping.
func clientMessage(err, sentinel error) string {
	msg := strings.TrimSuffix(err.Error(), ": "+sentinel.Error())
	if msg == "" {
		return sentinel.Error()
	}
	return msg
}
