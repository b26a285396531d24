package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amirhosseinghanipour/accountd/internal/application/account"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/http/middleware"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteDomainErr(t *testing.T) {
	admin := domain.Actor{ID: domain.NewAccountID(uuid.Must(uuid.NewV7())), Admin: true}
	tests := []struct {
		name   string
		err    error
		actor  domain.Actor
		status int
		code   string
	}{
		{"unauthorized anonymous", domerrors.ErrUnauthorized, domain.Anonymous, http.StatusUnauthorized, ErrCodeUnauthorized},
		{"unauthorized authenticated", domerrors.ErrUnauthorized, admin, http.StatusForbidden, ErrCodeUnauthorized},
		{"not found", domerrors.ErrAccountNotFound, admin, http.StatusNotFound, ErrCodeNotFound},
		{"self delete", domerrors.ErrCannotDeleteSelf, admin, http.StatusConflict, ErrCodeCannotDeleteSelf},
		{"invalid token", domerrors.ErrInvalidToken, domain.Anonymous, http.StatusBadRequest, ErrCodeInvalidToken},
		{"already activated", domerrors.ErrAlreadyActivated, domain.Anonymous, http.StatusConflict, ErrCodeAlreadyActivated},
		{"bad credentials", domerrors.ErrInvalidCredentials, domain.Anonymous, http.StatusUnauthorized, ErrCodeInvalidCredentials},
		{"not activated", domerrors.ErrNotActivated, domain.Anonymous, http.StatusForbidden, ErrCodeNotActivated},
		{"page token", fmt.Errorf("list: %w", domerrors.ErrInvalidPageToken), admin, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"untrusted provider", account.ErrUntrustedProvider, domain.Anonymous, http.StatusBadRequest, ErrCodeInvalidRequest},
		{"infrastructure", errors.New("connection refused"), admin, http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/accounts", nil)
			req = req.WithContext(middleware.WithActor(req.Context(), tc.actor))
			rec := httptest.NewRecorder()

			writeDomainErr(rec, req, zerolog.Nop(), tc.err)

			assert.Equal(t, tc.status, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tc.code, body.Code)
			if tc.status == http.StatusInternalServerError {
				assert.Equal(t, "internal error", body.Error)
			}
		})
	}
}

func TestWriteDomainErrValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/accounts/x", nil)
	rec := httptest.NewRecorder()

	writeDomainErr(rec, req, zerolog.Nop(), domerrors.NewValidationError("email", "has already been taken"))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, ErrCodeValidationFailed, body.Code)
	assert.Equal(t, map[string]string{"email": "has already been taken"}, body.Fields)
}

func TestDecodeJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	ok := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ada"}`))
	require.NoError(t, decodeJSON(httptest.NewRecorder(), ok, &dst))
	assert.Equal(t, "ada", dst.Name)

	for _, body := range []string{`{"name":"ada","admin":true}`, `{"name":"a"}{"name":"b"}`, `not json`} {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		assert.Error(t, decodeJSON(httptest.NewRecorder(), req, &dst), body)
	}

	huge := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("a", MaxBodyBytes)+`"}`))
	assert.Error(t, decodeJSON(httptest.NewRecorder(), huge, &dst))
}

func TestPageParams(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/accounts?page_size=10&page_token=abc", nil)
	size, token, ok := pageParams(req, "page_token")
	assert.True(t, ok)
	assert.Equal(t, 10, size)
	assert.Equal(t, "abc", token)

	req = httptest.NewRequest(http.MethodGet, "/accounts?page_size=-4", nil)
	size, _, ok = pageParams(req, "page_token")
	assert.True(t, ok)
	assert.Zero(t, size)

	req = httptest.NewRequest(http.MethodGet, "/accounts?page_token="+strings.Repeat("x", MaxPageTokenBytes+1), nil)
	_, _, ok = pageParams(req, "page_token")
	assert.False(t, ok)
}

func TestHealthHandler(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		h := NewHealthHandlerWithChecks(map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
		})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var body healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "ok", body.Status)
		assert.Equal(t, map[string]string{"database": "ok"}, body.Checks)
	})

	t.Run("failing check", func(t *testing.T) {
		h := NewHealthHandlerWithChecks(map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
		})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		var body healthResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
		assert.Equal(t, "unhealthy", body.Status)
		assert.Equal(t, "down: dial tcp: refused", body.Checks["redis"])
	})

	t.Run("nothing configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestSessionRedirect(t *testing.T) {
	id := domain.NewAccountID(uuid.Must(uuid.NewV7()))
	res := &account.SignInResult{
		AccessToken: "tok",
		ExpiresIn:   3600,
		Account:     domain.AccountDetail{ID: id},
	}

	got := sessionRedirect("https://app.example/welcome#old", res)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "app.example", u.Host)
	assert.Equal(t, "/welcome", u.Path)
	frag, err := url.ParseQuery(u.Fragment)
	require.NoError(t, err)
	assert.Equal(t, "tok", frag.Get("access_token"))
	assert.Equal(t, "Bearer", frag.Get("token_type"))
	assert.Equal(t, "3600", frag.Get("expires_in"))
	assert.Equal(t, id.String(), frag.Get("account_id"))
	assert.Empty(t, u.RawQuery)
}

func TestFirstNonEmpty(t *testing.T) {
	assert.Equal(t, "b", firstNonEmpty("", "b", "c"))
	assert.Equal(t, "", firstNonEmpty("", ""))
}
