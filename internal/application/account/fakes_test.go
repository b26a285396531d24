package account

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

// store is an in-memory stand-in for the database: accounts, projects and
// transactions that roll back by restoring a snapshot.
type store struct {
	mu       sync.Mutex
	accounts map[domain.AccountID]domain.Account
	projects map[domain.ProjectID]domain.Project

	writes    int
	createErr error
	failOn    string
}

func newStore() *store {
	return &store{
		accounts: make(map[domain.AccountID]domain.Account),
		projects: make(map[domain.ProjectID]domain.Project),
	}
}

func (s *store) addAccount(a domain.Account) *domain.Account {
	if a.ID.IsZero() {
		a.ID = domain.NewAccountID(uuid.Must(uuid.NewV7()))
	}
	if a.Provider == "" {
		a.Provider = domain.ProviderLocal
	}
	s.accounts[a.ID] = a
	return &a
}

func (s *store) addProject(owner domain.AccountID, name string) domain.ProjectID {
	id := domain.NewProjectID(uuid.Must(uuid.NewV7()))
	s.projects[id] = domain.Project{ID: id, OwnerID: owner, Name: name}
	return id
}

func (s *store) account(id domain.AccountID) (domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	return a, ok
}

func (s *store) countByEmail(email string) int {
	n := 0
	for _, a := range s.accounts {
		if a.Email == email {
			n++
		}
	}
	return n
}

func (s *store) fail(op string) error {
	if s.failOn == op {
		return fmt.Errorf("%s: connection reset", op)
	}
	return nil
}

// accountRepo

func (s *store) GetByID(_ context.Context, id domain.AccountID) (*domain.Account, error) {
	if err := s.fail("get"); err != nil {
		return nil, err
	}
	a, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (s *store) GetByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range s.accounts {
		if a.Email == email {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (s *store) List(_ context.Context, pageSize int, pageToken string) (*domain.AccountPage, error) {
	all := make([]domain.Account, 0, len(s.accounts))
	for _, a := range s.accounts {
		if pageToken == "" || a.ID.String() > pageToken {
			all = append(all, a)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID.String() < all[j].ID.String() })
	page := &domain.AccountPage{}
	for i := range all {
		if i == pageSize {
			page.NextPageToken = all[i-1].ID.String()
			break
		}
		a := all[i]
		page.Accounts = append(page.Accounts, &a)
	}
	return page, nil
}

func (s *store) Create(_ context.Context, a *domain.Account) error {
	if s.createErr != nil {
		err := s.createErr
		s.createErr = nil
		return err
	}
	if s.countByEmail(a.Email) > 0 {
		return domerrors.ErrEmailTaken
	}
	s.writes++
	s.accounts[a.ID] = *a
	return nil
}

func (s *store) Update(_ context.Context, a *domain.Account) error {
	for id, other := range s.accounts {
		if id != a.ID && other.Email == a.Email {
			return domerrors.ErrEmailTaken
		}
	}
	s.writes++
	s.accounts[a.ID] = *a
	return nil
}

func (s *store) SetActivationDigest(_ context.Context, id domain.AccountID, digest string) error {
	if err := s.fail("set_digest"); err != nil {
		return err
	}
	a := s.accounts[id]
	a.ActivationDigest = digest
	s.accounts[id] = a
	s.writes++
	return nil
}

func (s *store) MarkActivated(_ context.Context, id domain.AccountID, digest string) (bool, error) {
	a, ok := s.accounts[id]
	if !ok || a.Activated || a.ActivationDigest != digest {
		return false, nil
	}
	a.Activated = true
	a.ActivationDigest = ""
	s.accounts[id] = a
	s.writes++
	return true, nil
}

func (s *store) Delete(_ context.Context, id domain.AccountID) error {
	if err := s.fail("delete"); err != nil {
		return err
	}
	for _, p := range s.projects {
		if p.OwnerID == id {
			return errors.New("projects_owner_id_fkey violation")
		}
	}
	delete(s.accounts, id)
	s.writes++
	return nil
}

// projectRepo wraps store so the two repository method sets do not collide.
type projectRepo struct{ s *store }

func (r projectRepo) ListByOwner(_ context.Context, owner domain.AccountID, pageSize int, _ string) (*domain.ProjectPage, error) {
	page := &domain.ProjectPage{}
	for _, p := range r.s.projects {
		if p.OwnerID == owner {
			p := p
			page.Projects = append(page.Projects, &p)
		}
	}
	sort.Slice(page.Projects, func(i, j int) bool { return page.Projects[i].ID.String() < page.Projects[j].ID.String() })
	if len(page.Projects) > pageSize {
		page.NextPageToken = page.Projects[pageSize-1].ID.String()
		page.Projects = page.Projects[:pageSize]
	}
	return page, nil
}

func (r projectRepo) ReassignOwner(_ context.Context, from, to domain.AccountID) (int64, error) {
	if err := r.s.fail("reassign"); err != nil {
		return 0, err
	}
	var n int64
	for id, p := range r.s.projects {
		if p.OwnerID == from {
			p.OwnerID = to
			r.s.projects[id] = p
			n++
		}
	}
	r.s.writes++
	return n, nil
}

// WithinTx snapshots state and restores it when fn fails.
func (s *store) WithinTx(ctx context.Context, fn func(ports.Repositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	accounts := make(map[domain.AccountID]domain.Account, len(s.accounts))
	for k, v := range s.accounts {
		accounts[k] = v
	}
	projects := make(map[domain.ProjectID]domain.Project, len(s.projects))
	for k, v := range s.projects {
		projects[k] = v
	}
	err := fn(ports.Repositories{Accounts: s, Projects: projectRepo{s}})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.accounts = accounts
		s.projects = projects
		return err
	}
	return nil
}

var (
	_ ports.AccountRepository = (*store)(nil)
	_ ports.ProjectRepository = projectRepo{}
	_ ports.UnitOfWork        = (*store)(nil)
)

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Verify(password, hash string) bool   { return hash == "hashed:"+password }

type fakeDigester struct{ n int }

func (d *fakeDigester) NewToken() (string, error) {
	d.n++
	return fmt.Sprintf("token-%d", d.n), nil
}

func (d *fakeDigester) Digest(token string) string { return "digest:" + token }

func (d *fakeDigester) Matches(token, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(d.Digest(token)), []byte(digest)) == 1
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) SendActivationEmail(ctx context.Context, account *domain.Account, token string) error {
	args := m.Called(ctx, account.Email, token)
	return args.Error(0)
}

type fakeIssuer struct{}

func (fakeIssuer) IssueAccessToken(accountID string, _ time.Duration) (string, error) {
	return "jwt:" + accountID, nil
}

func (fakeIssuer) ValidateAccessToken(token string) (string, error) {
	return strings.TrimPrefix(token, "jwt:"), nil
}
