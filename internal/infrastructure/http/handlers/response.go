package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/accountd/internal/application/account"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
	mw "github.com/amirhosseinghanipour/accountd/internal/infrastructure/http/middleware"
)

type errorBody struct {
	Error  string            `json:"error"`
	Code   string            `json:"code"`
	Fields map[string]string `json:"fields,omitempty"`
}

// writeErr sends JSON { "error": message, "code": errCode }.
func writeErr(w http.ResponseWriter, code int, errCode string, message string) {
	writeJSON(w, code, errorBody{Error: message, Code: errCode})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, errorBody{
		Error:  "validation failed",
		Code:   ErrCodeValidationFailed,
		Fields: fields,
	})
}

// writeDomainErr maps use case errors to HTTP. Anything unrecognised is logged
// and reported as a bare 500.
func writeDomainErr(w http.ResponseWriter, r *http.Request, log zerolog.Logger, err error) {
	if ve, ok := domerrors.AsValidation(err); ok {
		writeValidation(w, ve.Fields)
		return
	}
	switch {
	case errors.Is(err, domerrors.ErrUnauthorized):
		status := http.StatusForbidden
		if !mw.ActorFromContext(r.Context()).Authenticated() {
			status = http.StatusUnauthorized
		}
		writeErr(w, status, ErrCodeUnauthorized, err.Error())
	case errors.Is(err, domerrors.ErrAccountNotFound):
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
	case errors.Is(err, domerrors.ErrCannotDeleteSelf):
		writeErr(w, http.StatusConflict, ErrCodeCannotDeleteSelf, err.Error())
	case errors.Is(err, domerrors.ErrInvalidToken):
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidToken, err.Error())
	case errors.Is(err, domerrors.ErrAlreadyActivated):
		writeErr(w, http.StatusConflict, ErrCodeAlreadyActivated, err.Error())
	case errors.Is(err, domerrors.ErrAlreadyRegistered):
		writeErr(w, http.StatusConflict, ErrCodeAlreadyRegistered, err.Error())
	case errors.Is(err, domerrors.ErrInvalidCredentials):
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, err.Error())
	case errors.Is(err, domerrors.ErrNotActivated):
		writeErr(w, http.StatusForbidden, ErrCodeNotActivated, err.Error())
	case errors.Is(err, domerrors.ErrInvalidPageToken), errors.Is(err, account.ErrUntrustedProvider):
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, err.Error())
	default:
		log.Error().Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
	}
}
