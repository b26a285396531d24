package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/accountd/internal/application/account"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/http/middleware"
)

// SessionsHandler exchanges credentials for access tokens.
type SessionsHandler struct {
	signIn *account.SignIn
	log    zerolog.Logger
}

func NewSessionsHandler(signIn *account.SignIn, log zerolog.Logger) *SessionsHandler {
	return &SessionsHandler{signIn: signIn, log: log}
}

// Create handles POST /sessions.
func (h *SessionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	if body.Email == "" || body.Password == "" || len(body.Password) > account.MaxPasswordLength {
		middleware.RecordAccountEvent("sign_in", "rejected")
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "invalid email or password")
		return
	}
	res, err := h.signIn.Execute(r.Context(), account.SignInInput{Email: body.Email, Password: body.Password})
	if err != nil {
		middleware.RecordAccountEvent("sign_in", "rejected")
		writeDomainErr(w, r, h.log, err)
		return
	}
	middleware.RecordAccountEvent("sign_in", "ok")
	writeJSON(w, http.StatusCreated, newSessionResponse(res))
}

func newSessionResponse(res *account.SignInResult) sessionResponse {
	return sessionResponse{
		AccessToken: res.AccessToken,
		TokenType:   "Bearer",
		ExpiresIn:   res.ExpiresIn,
		Account:     newAccountResponse(res.Account),
	}
}
