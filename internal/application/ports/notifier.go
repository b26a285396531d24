package ports

import (
	"context"

	"github.com/amirhosseinghanipour/accountd/internal/domain"
)

// ActivationNotifier hands activation emails to the delivery pipeline.
// A returned error means the send was not scheduled; it never implies that
// the token issuance was rolled back.
type ActivationNotifier interface {
	SendActivationEmail(ctx context.Context, account *domain.Account, token string) error
}
