// Package memory is an in-process account store for single-instance development
// runs and handler tests. It enforces the same constraints as the Postgres schema.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

var (
	// ErrOwnerHasProjects mirrors the projects.owner_id foreign key.
	ErrOwnerHasProjects = errors.New("account still owns projects")
	// ErrCommitConflict is returned when a transaction's writes no longer apply
	// to the state committed since it started.
	ErrCommitConflict = errors.New("memory: commit conflict")

	errNoMatch = errors.New("no matching row")
)

// tables is one consistent version of the data.
type tables struct {
	accounts map[domain.AccountID]domain.Account
	projects map[domain.ProjectID]domain.Project
}

func newTables() *tables {
	return &tables{
		accounts: make(map[domain.AccountID]domain.Account),
		projects: make(map[domain.ProjectID]domain.Project),
	}
}

func (t *tables) clone() *tables {
	c := &tables{
		accounts: make(map[domain.AccountID]domain.Account, len(t.accounts)),
		projects: make(map[domain.ProjectID]domain.Project, len(t.projects)),
	}
	for k, v := range t.accounts {
		c.accounts[k] = v
	}
	for k, v := range t.projects {
		c.projects[k] = v
	}
	return c
}

type writeOp func(t *tables) error

// txn is an open transaction: a private copy of the data plus the writes
// applied to it, replayed against committed data on commit.
type txn struct {
	data *tables
	log  []writeOp
}

// Store holds committed accounts and projects. Readers outside a transaction
// only ever see committed data; transactions stage their writes privately.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *tables
}

func NewStore() *Store {
	return &Store{data: newTables()}
}

func (s *Store) Accounts() *AccountRepository { return &AccountRepository{s: s} }
func (s *Store) Projects() *ProjectRepository { return &ProjectRepository{s: s} }

func (s *Store) read(tx *txn, fn func(t *tables)) {
	if tx != nil {
		fn(tx.data)
		return
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.data)
}

func (s *Store) write(tx *txn, op writeOp) error {
	if tx != nil {
		if err := op(tx.data); err != nil {
			return err
		}
		tx.log = append(tx.log, op)
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return op(s.data)
}

// AddProject seeds a project owned by owner.
func (s *Store) AddProject(owner domain.AccountID, name, repoURL string) (*domain.Project, error) {
	now := time.Now()
	p := domain.Project{
		ID:        domain.NewProjectID(uuid.Must(uuid.NewV7())),
		OwnerID:   owner,
		Name:      name,
		RepoURL:   repoURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := s.write(nil, func(t *tables) error {
		if _, ok := t.accounts[owner]; !ok {
			return domerrors.ErrAccountNotFound
		}
		t.projects[p.ID] = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// WithinTx runs fn against a private copy of the data. On success the recorded
// writes are replayed on the latest committed data and published at once; if
// any of them no longer applies the commit fails with ErrCommitConflict.
func (s *Store) WithinTx(ctx context.Context, fn func(repos ports.Repositories) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	tx := &txn{data: s.data.clone()}
	s.mu.RUnlock()

	err := fn(ports.Repositories{
		Accounts: &AccountRepository{s: s, tx: tx},
		Projects: &ProjectRepository{s: s, tx: tx},
	})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *Store) commit(tx *txn) error {
	if len(tx.log) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.data.clone()
	for _, op := range tx.log {
		if err := op(next); err != nil {
			return fmt.Errorf("%w: %w", ErrCommitConflict, err)
		}
	}
	s.data = next
	return nil
}

type AccountRepository struct {
	s  *Store
	tx *txn
}

func (r *AccountRepository) GetByID(_ context.Context, id domain.AccountID) (*domain.Account, error) {
	var out *domain.Account
	r.s.read(r.tx, func(t *tables) {
		if a, ok := t.accounts[id]; ok {
			out = &a
		}
	})
	return out, nil
}

func (r *AccountRepository) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	email = domain.NormalizeEmail(email)
	var out *domain.Account
	r.s.read(r.tx, func(t *tables) {
		for _, a := range t.accounts {
			if a.Email == email {
				a := a
				out = &a
				return
			}
		}
	})
	return out, nil
}

func (r *AccountRepository) List(_ context.Context, pageSize int, pageToken string) (*domain.AccountPage, error) {
	after, err := parseToken(pageToken)
	if err != nil {
		return nil, err
	}
	var all []domain.Account
	r.s.read(r.tx, func(t *tables) {
		for _, a := range t.accounts {
			if uuidLess(after, a.ID.UUID) {
				all = append(all, a)
			}
		}
	})
	sort.Slice(all, func(i, j int) bool { return uuidLess(all[i].ID.UUID, all[j].ID.UUID) })

	page := &domain.AccountPage{}
	for i := range all {
		if i == pageSize {
			page.NextPageToken = all[i-1].ID.String()
			break
		}
		page.Accounts = append(page.Accounts, &all[i])
	}
	return page, nil
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) error {
	a := *account
	a.Email = domain.NormalizeEmail(a.Email)
	if a.Provider == "" {
		a.Provider = domain.ProviderLocal
	}
	return r.s.write(r.tx, func(t *tables) error {
		if t.emailTaken(a.Email, a.ID) {
			return domerrors.ErrEmailTaken
		}
		t.accounts[a.ID] = a
		return nil
	})
}

func (r *AccountRepository) Update(_ context.Context, account *domain.Account) error {
	id := account.ID
	name, email := account.Name, domain.NormalizeEmail(account.Email)
	digest, admin, updatedAt := account.PasswordDigest, account.Admin, account.UpdatedAt
	return r.s.write(r.tx, func(t *tables) error {
		a, ok := t.accounts[id]
		if !ok {
			return domerrors.ErrAccountNotFound
		}
		if t.emailTaken(email, id) {
			return domerrors.ErrEmailTaken
		}
		a.Name = name
		a.Email = email
		a.PasswordDigest = digest
		a.Admin = admin
		a.UpdatedAt = updatedAt
		t.accounts[id] = a
		return nil
	})
}

func (r *AccountRepository) SetActivationDigest(_ context.Context, id domain.AccountID, digest string) error {
	now := time.Now()
	return r.s.write(r.tx, func(t *tables) error {
		a, ok := t.accounts[id]
		if !ok {
			return domerrors.ErrAccountNotFound
		}
		a.ActivationDigest = digest
		a.UpdatedAt = now
		t.accounts[id] = a
		return nil
	})
}

func (r *AccountRepository) MarkActivated(_ context.Context, id domain.AccountID, digest string) (bool, error) {
	now := time.Now()
	err := r.s.write(r.tx, func(t *tables) error {
		a, ok := t.accounts[id]
		if !ok || a.Activated || a.ActivationDigest == "" || a.ActivationDigest != digest {
			return errNoMatch
		}
		a.Activated = true
		a.ActivatedAt = &now
		a.ActivationDigest = ""
		a.UpdatedAt = now
		t.accounts[id] = a
		return nil
	})
	if errors.Is(err, errNoMatch) {
		return false, nil
	}
	return err == nil, err
}

func (r *AccountRepository) Delete(_ context.Context, id domain.AccountID) error {
	return r.s.write(r.tx, func(t *tables) error {
		if _, ok := t.accounts[id]; !ok {
			return domerrors.ErrAccountNotFound
		}
		for _, p := range t.projects {
			if p.OwnerID == id {
				return ErrOwnerHasProjects
			}
		}
		delete(t.accounts, id)
		return nil
	})
}

type ProjectRepository struct {
	s  *Store
	tx *txn
}

func (r *ProjectRepository) ListByOwner(_ context.Context, ownerID domain.AccountID, pageSize int, pageToken string) (*domain.ProjectPage, error) {
	after, err := parseToken(pageToken)
	if err != nil {
		return nil, err
	}
	var owned []domain.Project
	r.s.read(r.tx, func(t *tables) {
		for _, p := range t.projects {
			if p.OwnerID == ownerID && uuidLess(after, p.ID.UUID) {
				owned = append(owned, p)
			}
		}
	})
	sort.Slice(owned, func(i, j int) bool { return uuidLess(owned[i].ID.UUID, owned[j].ID.UUID) })

	page := &domain.ProjectPage{}
	for i := range owned {
		if i == pageSize {
			page.NextPageToken = owned[i-1].ID.String()
			break
		}
		page.Projects = append(page.Projects, &owned[i])
	}
	return page, nil
}

// ReassignOwner reports the count from its first application; a replay at
// commit also moves projects added to from in the meantime.
func (r *ProjectRepository) ReassignOwner(_ context.Context, from, to domain.AccountID) (int64, error) {
	now := time.Now()
	var n int64
	counted := false
	err := r.s.write(r.tx, func(t *tables) error {
		if _, ok := t.accounts[to]; !ok {
			return domerrors.ErrAccountNotFound
		}
		for id, p := range t.projects {
			if p.OwnerID == from {
				p.OwnerID = to
				p.UpdatedAt = now
				t.projects[id] = p
				if !counted {
					n++
				}
			}
		}
		counted = true
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (t *tables) emailTaken(email string, except domain.AccountID) bool {
	email = domain.NormalizeEmail(email)
	for id, a := range t.accounts {
		if id != except && a.Email == email {
			return true
		}
	}
	return false
}

func parseToken(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(token)
	if err != nil {
		return uuid.Nil, domerrors.ErrInvalidPageToken
	}
	return id, nil
}

// uuidLess orders ids the way Postgres orders uuid columns.
func uuidLess(a, b uuid.UUID) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

var (
	_ ports.AccountRepository = (*AccountRepository)(nil)
	_ ports.ProjectRepository = (*ProjectRepository)(nil)
	_ ports.UnitOfWork        = (*Store)(nil)
)
