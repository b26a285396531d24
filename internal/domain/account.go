package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccountID is a value object for account identity.
type AccountID struct{ uuid.UUID }

// NewAccountID creates a new AccountID from uuid.
func NewAccountID(id uuid.UUID) AccountID { return AccountID{UUID: id} }

// ParseAccountID parses the canonical string form.
func ParseAccountID(s string) (AccountID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return AccountID{}, err
	}
	return AccountID{UUID: id}, nil
}

// String returns the canonical string form.
func (a AccountID) String() string { return a.UUID.String() }

// IsZero reports whether the id is unset.
func (a AccountID) IsZero() bool { return a.UUID == uuid.Nil }

// Provider names where an account's credentials come from.
type Provider string

const (
	ProviderLocal  Provider = "local"
	ProviderGitHub Provider = "github"
)

// Account is a person who can sign in and own projects.
type Account struct {
	ID       AccountID
	Name     string
	Email    string
	Provider Provider
	UID      string // external id, federated accounts only

	PasswordDigest string

	Activated        bool
	ActivatedAt      *time.Time
	ActivationDigest string

	Admin     bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsFederated reports whether the account was created through an external identity provider.
func (a *Account) IsFederated() bool { return a.Provider != "" && a.Provider != ProviderLocal }

// NormalizeEmail returns the logical identity of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AccountSummary is the listing shape of an account.
type AccountSummary struct {
	ID        AccountID
	Name      string
	Email     string
	Activated bool
	Admin     bool
}

// AccountDetail is what may be shown or edited; it never carries digests.
type AccountDetail struct {
	ID          AccountID
	Name        string
	Email       string
	Provider    Provider
	Activated   bool
	ActivatedAt *time.Time
	Admin       bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Summary returns the listing view of the account.
func (a *Account) Summary() AccountSummary {
	return AccountSummary{
		ID:        a.ID,
		Name:      a.Name,
		Email:     a.Email,
		Activated: a.Activated,
		Admin:     a.Admin,
	}
}

// Detail returns the account without credential material.
func (a *Account) Detail() AccountDetail {
	return AccountDetail{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Provider:    a.Provider,
		Activated:   a.Activated,
		ActivatedAt: a.ActivatedAt,
		Admin:       a.Admin,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// AccountPage is one page of accounts ordered by id.
type AccountPage struct {
	Accounts      []*Account
	NextPageToken string
}
