package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
)

// InlineSendTimeout bounds one in-process delivery attempt.
const InlineSendTimeout = 30 * time.Second

// InlineNotifier delivers activation emails in a background goroutine when
// Redis/Asynq is not configured. Delivery failures are logged, not retried.
type InlineNotifier struct {
	mailer  ports.Mailer
	links   ActivationLinks
	log     zerolog.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewInlineNotifier(mailer ports.Mailer, links ActivationLinks, log zerolog.Logger) *InlineNotifier {
	return &InlineNotifier{mailer: mailer, links: links, log: log, timeout: InlineSendTimeout}
}

// SendActivationEmail schedules delivery and returns without waiting for it.
// The send outlives the request that triggered it.
func (n *InlineNotifier) SendActivationEmail(ctx context.Context, account *domain.Account, token string) error {
	mail := newActivationPayload(n.links, account, token).mail()
	sendCtx := context.WithoutCancel(ctx)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(sendCtx, n.timeout)
		defer cancel()
		if err := n.mailer.SendActivation(ctx, mail); err != nil {
			n.log.Error().Err(err).Str("account_id", mail.AccountID).Msg("activation email delivery failed")
			return
		}
		n.log.Info().Str("account_id", mail.AccountID).Msg("activation email delivered")
	}()
	return nil
}

// Wait blocks until every scheduled delivery has finished.
func (n *InlineNotifier) Wait() {
	n.wg.Wait()
}

var _ ports.ActivationNotifier = (*InlineNotifier)(nil)
