package queue

import (
	"fmt"
	"net/url"

	"github.com/amirhosseinghanipour/accountd/internal/domain"
)

const TypeSendActivation = "email:account_activation"

// activationPayload is the JSON body of a TypeSendActivation task.
type activationPayload struct {
	AccountID     string `json:"account_id"`
	Email         string `json:"email"`
	Name          string `json:"name"`
	ActivationURL string `json:"activation_url"`
}

// ActivationLinks builds the link a recipient follows to activate.
type ActivationLinks struct {
	base *url.URL
}

// NewActivationLinks parses the base URL the id and token are appended to.
func NewActivationLinks(baseURL string) (ActivationLinks, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return ActivationLinks{}, fmt.Errorf("parse activation base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return ActivationLinks{}, fmt.Errorf("activation base url %q must be absolute", baseURL)
	}
	return ActivationLinks{base: u}, nil
}

func (l ActivationLinks) URL(id domain.AccountID, token string) string {
	u := *l.base
	q := u.Query()
	q.Set("id", id.String())
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String()
}

func newActivationPayload(links ActivationLinks, account *domain.Account, token string) activationPayload {
	return activationPayload{
		AccountID:     account.ID.String(),
		Email:         account.Email,
		Name:          account.Name,
		ActivationURL: links.URL(account.ID, token),
	}
}
