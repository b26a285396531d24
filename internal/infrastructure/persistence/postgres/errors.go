package postgres

import (
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	domerrors "github.com/amirhosseinghanipour/accountd/internal/domain/errors"
)

const uniqueViolation = "23505"

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

// pageAfter turns a page token into the id the next page starts after.
func pageAfter(token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(token)
	if err != nil {
		return uuid.Nil, domerrors.ErrInvalidPageToken
	}
	return id, nil
}

// pageLimit asks for one extra row so the caller can tell whether another page exists.
func pageLimit(pageSize int) int32 {
	return int32(pageSize) + 1
}
