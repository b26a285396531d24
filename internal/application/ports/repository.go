package ports

import (
	"context"

	"github.com/amirhosseinghanipour/accountd/internal/domain"
)

// AccountRepository is the persistence gateway for accounts. Lookups return
// (nil, nil) when nothing matches.
type AccountRepository interface {
	GetByID(ctx context.Context, id domain.AccountID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, pageSize int, pageToken string) (*domain.AccountPage, error)
	// Create returns domerrors.ErrEmailTaken when the email is already used.
	Create(ctx context.Context, account *domain.Account) error
	Update(ctx context.Context, account *domain.Account) error
	SetActivationDigest(ctx context.Context, id domain.AccountID, digest string) error
	// MarkActivated activates the account only if its stored digest still equals digest,
	// clearing the digest. It reports whether a row changed.
	MarkActivated(ctx context.Context, id domain.AccountID, digest string) (bool, error)
	Delete(ctx context.Context, id domain.AccountID) error
}

// ProjectRepository covers the parts of project persistence accounts depend on.
type ProjectRepository interface {
	ListByOwner(ctx context.Context, ownerID domain.AccountID, pageSize int, pageToken string) (*domain.ProjectPage, error)
	// ReassignOwner moves every project owned by from to to and returns how many moved.
	ReassignOwner(ctx context.Context, from, to domain.AccountID) (int64, error)
}

// Repositories are the repositories bound to one transaction.
type Repositories struct {
	Accounts AccountRepository
	Projects ProjectRepository
}

// UnitOfWork runs fn inside a single transaction. The transaction commits only
// when fn returns nil; any error or context cancellation rolls it back.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}
