package handlers

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/github"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/accountd/internal/application/account"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/http/middleware"
)

// OAuthConfig holds the identity provider credentials.
type OAuthConfig struct {
	CallbackBaseURL    string
	SessionSecret      string
	SecureCookies      bool
	GitHubClientID     string
	GitHubClientSecret string
}

// InitOAuthProviders registers Goth providers and the session store. Call once at
// startup. It reports whether any provider was configured.
func InitOAuthProviders(cfg OAuthConfig) bool {
	if cfg.SessionSecret != "" {
		store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
		store.Options.HttpOnly = true
		store.Options.Secure = cfg.SecureCookies
		store.Options.SameSite = http.SameSiteLaxMode
		store.MaxAge(600)
		gothic.Store = store
	}
	if cfg.GitHubClientID == "" || cfg.GitHubClientSecret == "" {
		return false
	}
	callbackURL := cfg.CallbackBaseURL + "/auth/github/callback"
	goth.UseProviders(github.New(cfg.GitHubClientID, cfg.GitHubClientSecret, callbackURL, "user:email"))
	return true
}

// OAuthHandler runs the federated sign-in redirect flow.
type OAuthHandler struct {
	signIn      *account.FederatedSignIn
	redirectURL string
	log         zerolog.Logger
}

func NewOAuthHandler(signIn *account.FederatedSignIn, redirectURL string, log zerolog.Logger) *OAuthHandler {
	return &OAuthHandler{signIn: signIn, redirectURL: redirectURL, log: log}
}

// withProvider copies the chi {provider} param into the query, where gothic looks for it.
func withProvider(r *http.Request) (*http.Request, string) {
	provider := chi.URLParam(r, "provider")
	r2 := r.Clone(r.Context())
	q := r2.URL.Query()
	q.Set("provider", provider)
	r2.URL.RawQuery = q.Encode()
	return r2, provider
}

// Begin handles GET /auth/{provider}: redirect to the provider.
func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	r2, provider := withProvider(r)
	if _, err := goth.GetProvider(provider); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "unknown provider")
		return
	}
	authURL, err := gothic.GetAuthURL(w, r2)
	if err != nil {
		h.log.Error().Err(err).Str("provider", provider).Msg("oauth begin")
		writeErr(w, http.StatusInternalServerError, ErrCodeInternal, "internal error")
		return
	}
	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// Callback handles GET /auth/{provider}/callback: find or create the account and
// hand the access token to the frontend.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	r2, provider := withProvider(r)
	if _, err := goth.GetProvider(provider); err != nil {
		writeErr(w, http.StatusBadRequest, ErrCodeInvalidRequest, "unknown provider")
		return
	}
	gothUser, err := gothic.CompleteUserAuth(w, r2)
	if err != nil {
		h.log.Warn().Err(err).Str("provider", provider).Msg("oauth callback")
		writeErr(w, http.StatusUnauthorized, ErrCodeInvalidCredentials, "oauth failed")
		return
	}
	_ = gothic.Logout(w, r2)
	res, err := h.signIn.Execute(r.Context(), account.FederatedIdentity{
		Provider: domain.Provider(gothUser.Provider),
		UID:      gothUser.UserID,
		Email:    gothUser.Email,
		Name:     firstNonEmpty(gothUser.Name, gothUser.NickName),
	})
	if err != nil {
		middleware.RecordAccountEvent("federated_sign_in", "rejected")
		writeDomainErr(w, r, h.log, err)
		return
	}
	middleware.RecordAccountEvent("federated_sign_in", "ok")
	if h.redirectURL == "" {
		writeJSON(w, http.StatusOK, newSessionResponse(res))
		return
	}
	http.Redirect(w, r, sessionRedirect(h.redirectURL, res), http.StatusTemporaryRedirect)
}

// sessionRedirect puts the token in the URL fragment so it never reaches server logs.
func sessionRedirect(base string, res *account.SignInResult) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	frag := url.Values{}
	frag.Set("access_token", res.AccessToken)
	frag.Set("token_type", "Bearer")
	frag.Set("expires_in", strconv.FormatInt(res.ExpiresIn, 10))
	frag.Set("account_id", res.Account.ID.String())
	u.Fragment = ""
	u.RawFragment = ""
	return u.String() + "#" + frag.Encode()
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
