package postgres

import (
	"context"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
	"github.com/amirhosseinghanipour/accountd/internal/infrastructure/persistence/db"
)

type ProjectRepository struct {
	q *db.Queries
}

func NewProjectRepository(conn db.DBTX) *ProjectRepository {
	return &ProjectRepository{q: db.New(conn)}
}

func (r *ProjectRepository) ListByOwner(ctx context.Context, ownerID domain.AccountID, pageSize int, pageToken string) (*domain.ProjectPage, error) {
	after, err := pageAfter(pageToken)
	if err != nil {
		return nil, err
	}
	rows, err := r.q.ListProjectsByOwner(ctx, db.ListProjectsByOwnerParams{
		OwnerID: ownerID.UUID,
		After:   after,
		Limit:   pageLimit(pageSize),
	})
	if err != nil {
		return nil, err
	}
	page := &domain.ProjectPage{}
	for i, p := range rows {
		if i == pageSize {
			page.NextPageToken = rows[i-1].ID.String()
			break
		}
		page.Projects = append(page.Projects, dbProjectToDomain(p))
	}
	return page, nil
}

func (r *ProjectRepository) ReassignOwner(ctx context.Context, from, to domain.AccountID) (int64, error) {
	return r.q.ReassignProjects(ctx, from.UUID, to.UUID)
}

func dbProjectToDomain(p db.Project) *domain.Project {
	return &domain.Project{
		ID:        domain.NewProjectID(p.ID),
		OwnerID:   domain.NewAccountID(p.OwnerID),
		Name:      p.Name,
		RepoURL:   p.RepoURL,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// Ensure ProjectRepository implements ports.ProjectRepository.
var _ ports.ProjectRepository = (*ProjectRepository)(nil)
