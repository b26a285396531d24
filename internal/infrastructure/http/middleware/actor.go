package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
)

// ActorResolver turns a bearer access token into the Actor for the request.
// A missing, invalid or stale token leaves the request anonymous; the
// handlers decide what anonymous callers may do.
type ActorResolver struct {
	issuer   ports.TokenIssuer
	accounts ports.AccountRepository
	log      zerolog.Logger
}

func NewActorResolver(issuer ports.TokenIssuer, accounts ports.AccountRepository, log zerolog.Logger) *ActorResolver {
	return &ActorResolver{issuer: issuer, accounts: accounts, log: log}
}

func (m *ActorResolver) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		accountID, err := m.issuer.ValidateAccessToken(token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		id, err := domain.ParseAccountID(accountID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		// reload so admin changes and deletions apply to tokens already issued
		account, err := m.accounts.GetByID(r.Context(), id)
		if err != nil {
			m.log.Error().Err(err).Str("account_id", accountID).Msg("resolve actor")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error", "code": "internal_error"})
			return
		}
		if account == nil || !account.Activated {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithActor(r.Context(), domain.ActorFor(account))))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if len(h) < 7 || !strings.EqualFold(h[:7], "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(h[7:])
	return tok, tok != ""
}
