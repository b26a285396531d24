package handlers

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/accountd/internal/application/account"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/http/middleware"
)

// AccountsHandler serves /accounts.
type AccountsHandler struct {
	register   *account.Registrar
	activation *account.ActivationWorkflow
	list       *account.ListAccounts
	get        *account.GetAccount
	edit       *account.EditAccount
	update     *account.UpdateAccount
	remove     *account.DeleteAccount
	log        zerolog.Logger
}

// AccountUseCases groups the use cases behind AccountsHandler.
type AccountUseCases struct {
	Register   *account.Registrar
	Activation *account.ActivationWorkflow
	List       *account.ListAccounts
	Get        *account.GetAccount
	Edit       *account.EditAccount
	Update     *account.UpdateAccount
	Delete     *account.DeleteAccount
}

func NewAccountsHandler(uc AccountUseCases, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{
		register:   uc.Register,
		activation: uc.Activation,
		list:       uc.List,
		get:        uc.Get,
		edit:       uc.Edit,
		update:     uc.Update,
		remove:     uc.Delete,
		log:        log,
	}
}

const (
	msgCheckEmail        = "Please check your email to activate your account."
	msgNotificationRetry = "We could not send the activation email. Submit the form again to receive a new link."
)

// Register handles POST /accounts.
func (h *AccountsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name                 string `json:"name"`
		Email                string `json:"email"`
		Password             string `json:"password"`
		PasswordConfirmation string `json:"password_confirmation"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	res, err := h.register.Execute(r.Context(), account.RegisterInput{
		Email:                body.Email,
		Name:                 body.Name,
		Password:             body.Password,
		PasswordConfirmation: body.PasswordConfirmation,
	})
	if err != nil {
		middleware.RecordAccountEvent("register", "error")
		writeDomainErr(w, r, h.log, err)
		return
	}
	middleware.RecordAccountEvent("register", string(res.Outcome))

	resp := map[string]interface{}{"outcome": res.Outcome, "message": msgCheckEmail}
	if res.NotificationErr != nil {
		resp["message"] = msgNotificationRetry
	}
	switch res.Outcome {
	case account.OutcomeCreated:
		resp["account"] = newAccountResponse(*res.Account)
		writeJSON(w, http.StatusCreated, resp)
	case account.OutcomeReissued:
		writeJSON(w, http.StatusAccepted, resp)
	case account.OutcomeAlreadyRegistered:
		writeErr(w, http.StatusConflict, ErrCodeAlreadyRegistered, "an account with this email already exists; please log in")
	case account.OutcomeValidationFailed:
		writeValidation(w, res.FieldErrors)
	}
}

// Activate handles POST /accounts/activate with the id and token from the emailed link.
func (h *AccountsHandler) Activate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ID    string `json:"id"`
		Token string `json:"token"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	id, err := domain.ParseAccountID(body.ID)
	if err != nil || body.Token == "" || len(body.Token) > MaxTokenLength {
		middleware.RecordAccountEvent("activate", "invalid_token")
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidToken, "invalid activation link")
		return
	}
	res, err := h.activation.Activate(r.Context(), account.ActivateInput{AccountID: id, Token: body.Token})
	if err != nil {
		middleware.RecordAccountEvent("activate", "rejected")
		writeDomainErr(w, r, h.log, err)
		return
	}
	middleware.RecordAccountEvent("activate", "ok")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Account activated!",
		"account": newAccountResponse(res.Account),
	})
}

// List handles GET /accounts.
func (h *AccountsHandler) List(w http.ResponseWriter, r *http.Request) {
	size, token, ok := pageParams(r, "page_token")
	if !ok {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid page token")
		return
	}
	res, err := h.list.Execute(r.Context(), account.ListAccountsInput{
		Actor:     middleware.ActorFromContext(r.Context()),
		PageSize:  size,
		PageToken: token,
	})
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	items := make([]accountSummaryResponse, 0, len(res.Accounts))
	for _, a := range res.Accounts {
		items = append(items, accountSummaryResponse{
			ID:        a.ID.String(),
			Name:      a.Name,
			Email:     a.Email,
			Activated: a.Activated,
			Admin:     a.Admin,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"accounts":        items,
		"next_page_token": res.NextPageToken,
	})
}

// Show handles GET /accounts/{id}: the profile plus a page of owned projects.
func (h *AccountsHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := h.targetID(w, r)
	if !ok {
		return
	}
	_, token, ok := pageParams(r, "projects_page_token")
	if !ok {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid page token")
		return
	}
	res, err := h.get.Execute(r.Context(), account.GetAccountInput{
		Actor:             middleware.ActorFromContext(r.Context()),
		AccountID:         id,
		ProjectsPageToken: token,
	})
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	projects := make([]projectResponse, 0, len(res.Projects))
	for _, p := range res.Projects {
		projects = append(projects, projectResponse{
			ID:        p.ID.String(),
			OwnerID:   p.OwnerID.String(),
			Name:      p.Name,
			RepoURL:   p.RepoURL,
			CreatedAt: p.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"account":                  newAccountResponse(res.Account),
		"projects":                 projects,
		"next_projects_page_token": res.NextProjectsToken,
	})
}

// Edit handles GET /accounts/{id}/edit: the editable attributes.
func (h *AccountsHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := h.targetID(w, r)
	if !ok {
		return
	}
	detail, err := h.edit.Execute(r.Context(), account.EditAccountInput{
		Actor:     middleware.ActorFromContext(r.Context()),
		AccountID: id,
	})
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"account": newAccountResponse(*detail)})
}

// Update handles PATCH /accounts/{id}.
func (h *AccountsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.targetID(w, r)
	if !ok {
		return
	}
	var body struct {
		Name                 *string `json:"name"`
		Email                *string `json:"email"`
		Password             string  `json:"password"`
		PasswordConfirmation string  `json:"password_confirmation"`
		Admin                *bool   `json:"admin"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "invalid body")
		return
	}
	detail, err := h.update.Execute(r.Context(), account.UpdateAccountInput{
		Actor:     middleware.ActorFromContext(r.Context()),
		AccountID: id,
		Attrs: account.UpdateAttrs{
			Name:                 body.Name,
			Email:                body.Email,
			Password:             body.Password,
			PasswordConfirmation: body.PasswordConfirmation,
			Admin:                body.Admin,
		},
	})
	if err != nil {
		writeDomainErr(w, r, h.log, err)
		return
	}
	middleware.RecordAccountEvent("update", "ok")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Profile updated",
		"account": newAccountResponse(*detail),
	})
}

// Delete handles DELETE /accounts/{id}.
func (h *AccountsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.targetID(w, r)
	if !ok {
		return
	}
	actor := middleware.ActorFromContext(r.Context())
	res, err := h.remove.Execute(r.Context(), account.DeleteAccountInput{Actor: actor, AccountID: id})
	if err != nil {
		middleware.RecordAccountEvent("delete", "rejected")
		writeDomainErr(w, r, h.log, err)
		return
	}
	middleware.RecordAccountEvent("delete", "ok")
	h.log.Info().
		Str("account_id", id.String()).
		Str("deleted_by", actor.ID.String()).
		Int64("projects_reassigned", res.ProjectsReassigned).
		Msg("account deleted")
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":             "User deleted",
		"projects_reassigned": res.ProjectsReassigned,
	})
}

// targetID parses {id}. Anonymous callers are denied before the id is judged,
// so a malformed id never answers differently from a well-formed one.
func (h *AccountsHandler) targetID(w http.ResponseWriter, r *http.Request) (domain.AccountID, bool) {
	if !middleware.ActorFromContext(r.Context()).Authenticated() {
		writeDomainErr(w, r, h.log, domerrors.ErrUnauthorized)
		return domain.AccountID{}, false
	}
	id, ok := accountIDParam(r)
	if !ok {
		writeErr(w, http.StatusNotFound, ErrCodeNotFound, "account not found")
		return domain.AccountID{}, false
	}
	return id, true
}
