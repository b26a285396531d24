package handlers

import (
	"time"

	"github.com/amirhosseinghanipour/accountd/internal/domain"
)

type accountResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Provider    string     `json:"provider"`
	Activated   bool       `json:"activated"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	Admin       bool       `json:"admin"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newAccountResponse(d domain.AccountDetail) accountResponse {
	return accountResponse{
		ID:          d.ID.String(),
		Name:        d.Name,
		Email:       d.Email,
		Provider:    string(d.Provider),
		Activated:   d.Activated,
		ActivatedAt: d.ActivatedAt,
		Admin:       d.Admin,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

type accountSummaryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Activated bool   `json:"activated"`
	Admin     bool   `json:"admin"`
}

type projectResponse struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	RepoURL   string    `json:"repo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type sessionResponse struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	ExpiresIn   int64           `json:"expires_in"`
	Account     accountResponse `json:"account"`
}
