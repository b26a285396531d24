package db

import (
	"time"

	"github.com/google/uuid"
)

type Account struct {
	ID               uuid.UUID
	Name             string
	Email            string
	Provider         string
	UID              string
	PasswordDigest   string
	Activated        bool
	ActivatedAt      *time.Time
	ActivationDigest string
	Admin            bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Project struct {
	ID        uuid.UUID
	OwnerID   uuid.UUID
	Name      string
	RepoURL   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
