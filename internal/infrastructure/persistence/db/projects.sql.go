package db

import (
	"context"

	"github.com/google/uuid"
)

const listProjectsByOwner = `SELECT id, owner_id, name, repo_url, created_at, updated_at
FROM projects WHERE owner_id = $1 AND id > $2 ORDER BY id LIMIT $3`

type ListProjectsByOwnerParams struct {
	OwnerID uuid.UUID
	After   uuid.UUID
	Limit   int32
}

func (q *Queries) ListProjectsByOwner(ctx context.Context, arg ListProjectsByOwnerParams) ([]Project, error) {
	rows, err := q.db.Query(ctx, listProjectsByOwner, arg.OwnerID, arg.After, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.RepoURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const reassignProjects = `UPDATE projects SET owner_id = $2, updated_at = NOW() WHERE owner_id = $1`

func (q *Queries) ReassignProjects(ctx context.Context, from, to uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, reassignProjects, from, to)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
