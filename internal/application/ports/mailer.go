package ports

import "context"

// ActivationMail is a rendered activation message ready for delivery.
type ActivationMail struct {
	AccountID     string `json:"account_id"`
	To            string `json:"to"`
	Name          string `json:"name"`
	ActivationURL string `json:"activation_url"`
}

// Mailer delivers email. Implementations: HTTP relay, log-only.
type Mailer interface {
	SendActivation(ctx context.Context, mail ActivationMail) error
}
