package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

// ErrUntrustedProvider is returned for identity providers whose email
// verification is not accepted in place of the activation email.
var ErrUntrustedProvider = errors.New("identity provider not trusted for sign-in")

// trustedProviders are the providers whose accounts start activated.
var trustedProviders = map[domain.Provider]bool{
	domain.ProviderGitHub: true,
}

// FederatedIdentity is what an identity provider tells us about the user.
type FederatedIdentity struct {
	Provider domain.Provider
	UID      string
	Email    string
	Name     string
}

// FederatedSignIn finds or creates the account behind an external identity and issues a token.
type FederatedSignIn struct {
	accounts ports.AccountRepository
	hasher   ports.PasswordHasher
	digester ports.TokenDigester
	issuer   ports.TokenIssuer
	ttl      time.Duration
	now      func() time.Time
}

func NewFederatedSignIn(accounts ports.AccountRepository, hasher ports.PasswordHasher, digester ports.TokenDigester, issuer ports.TokenIssuer, ttl time.Duration) *FederatedSignIn {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &FederatedSignIn{
		accounts: accounts,
		hasher:   hasher,
		digester: digester,
		issuer:   issuer,
		ttl:      ttl,
		now:      time.Now,
	}
}

func (uc *FederatedSignIn) Execute(ctx context.Context, identity FederatedIdentity) (*SignInResult, error) {
	if !trustedProviders[identity.Provider] {
		return nil, ErrUntrustedProvider
	}
	email := domain.NormalizeEmail(identity.Email)
	if email == "" || identity.UID == "" {
		return nil, domerrors.ErrInvalidCredentials
	}
	account, err := uc.accounts.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup account by email: %w", err)
	}
	if account == nil {
		account, err = uc.create(ctx, identity, email)
		if err != nil {
			return nil, err
		}
	}
	// an unactivated local signup is not merged into a federated identity
	if !account.Activated {
		return nil, domerrors.ErrNotActivated
	}
	return issueSession(uc.issuer, account, uc.ttl)
}

func (uc *FederatedSignIn) create(ctx context.Context, identity FederatedIdentity, email string) (*domain.Account, error) {
	// federated accounts never sign in with a password; store an unguessable one
	secret, err := uc.digester.NewToken()
	if err != nil {
		return nil, err
	}
	digest, err := uc.hasher.Hash(secret)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}
	name := identity.Name
	if name == "" {
		name = email
	}
	if r := []rune(name); len(r) > MaxNameLength {
		name = string(r[:MaxNameLength])
	}
	now := uc.now()
	account := &domain.Account{
		ID:             domain.NewAccountID(id),
		Name:           name,
		Email:          email,
		Provider:       identity.Provider,
		UID:            identity.UID,
		PasswordDigest: digest,
		Activated:      true,
		ActivatedAt:    &now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := uc.accounts.Create(ctx, account); err != nil {
		if !errors.Is(err, domerrors.ErrEmailTaken) {
			return nil, fmt.Errorf("create account: %w", err)
		}
		winner, err := uc.accounts.GetByEmail(ctx, email)
		if err != nil || winner == nil {
			return nil, fmt.Errorf("create account: %w", domerrors.ErrEmailTaken)
		}
		return winner, nil
	}
	return account, nil
}
