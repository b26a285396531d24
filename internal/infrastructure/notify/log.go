package notify

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
)

// LogMailer writes messages to the log instead of sending them. Used when no relay is configured.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

// SendActivation logs the message with the token removed from the link.
func (m *LogMailer) SendActivation(_ context.Context, mail ports.ActivationMail) error {
	m.log.Info().
		Str("account_id", mail.AccountID).
		Str("email", mail.To).
		Str("activation_url", redactToken(mail.ActivationURL)).
		Msg("activation email (log only; set MAIL_RELAY_URL for real email)")
	return nil
}

const redacted = "REDACTED"

// redactToken hides the token query value. Links that do not parse are dropped entirely.
func redactToken(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return redacted
	}
	q := u.Query()
	if q.Has("token") {
		q.Set("token", redacted)
		u.RawQuery = q.Encode()
	}
	return u.String()
}

var _ ports.Mailer = (*LogMailer)(nil)
