package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProjectID is a value object for project identity.
type ProjectID struct{ uuid.UUID }

// NewProjectID creates a new ProjectID from uuid.
func NewProjectID(id uuid.UUID) ProjectID { return ProjectID{UUID: id} }

// String returns the canonical string form.
func (p ProjectID) String() string { return p.UUID.String() }

// Project is owned by exactly one account at all times. Its lifetime is
// independent of any particular owner.
type Project struct {
	ID        ProjectID
	OwnerID   AccountID
	Name      string
	RepoURL   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProjectPage is one page of projects ordered by id.
type ProjectPage struct {
	Projects      []*Project
	NextPageToken string
}
