package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/amirhosseinghanipour/accountd/internal/domain"
)

// Request limits.
const (
	MaxBodyBytes      = 64 << 10
	MaxTokenLength    = 256
	MaxPageTokenBytes = 64
)

// decodeJSON reads a bounded JSON body into dst and rejects unknown fields and trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON body")
	}
	return nil
}

// accountIDParam parses the {id} URL parameter.
func accountIDParam(r *http.Request) (domain.AccountID, bool) {
	id, err := domain.ParseAccountID(chi.URLParam(r, "id"))
	if err != nil {
		return domain.AccountID{}, false
	}
	return id, true
}

// pageParams reads page_size and page_token; bad sizes fall back to the default.
func pageParams(r *http.Request, tokenKey string) (size int, token string, ok bool) {
	q := r.URL.Query()
	if s := q.Get("page_size"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			size = n
		}
	}
	token = q.Get(tokenKey)
	return size, token, len(token) <= MaxPageTokenBytes
}
