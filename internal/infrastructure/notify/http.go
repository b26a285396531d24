// Package notify delivers rendered account email.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
)

// relayMessage is the JSON body POSTed to the mail relay.
type relayMessage struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`

	Template string            `json:"template"`
	Data     map[string]string `json:"data"`
}

// HTTPMailer hands messages to a transactional mail relay over HTTP.
type HTTPMailer struct {
	client  *http.Client
	url     string
	from    string
	headers map[string]string
}

// HTTPMailerOption configures HTTPMailer.
type HTTPMailerOption func(*HTTPMailer)

// WithClient sets the HTTP client (default: 10s timeout).
func WithClient(c *http.Client) HTTPMailerOption {
	return func(m *HTTPMailer) {
		m.client = c
	}
}

// WithHeader sets a header sent on every request (e.g. Authorization).
func WithHeader(key, value string) HTTPMailerOption {
	return func(m *HTTPMailer) {
		if m.headers == nil {
			m.headers = make(map[string]string)
		}
		m.headers[key] = value
	}
}

func NewHTTPMailer(url, from string, opts ...HTTPMailerOption) *HTTPMailer {
	m := &HTTPMailer{
		client: &http.Client{Timeout: 10 * time.Second},
		url:    url,
		from:   from,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *HTTPMailer) SendActivation(ctx context.Context, mail ports.ActivationMail) error {
	subject, text := activationText(mail)
	body, err := json.Marshal(relayMessage{
		From:     m.from,
		To:       mail.To,
		Subject:  subject,
		Text:     text,
		Template: "account_activation",
		Data: map[string]string{
			"account_id":     mail.AccountID,
			"name":           mail.Name,
			"activation_url": mail.ActivationURL,
		},
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range m.headers {
		req.Header.Set(k, v)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &RelayError{Status: resp.StatusCode}
	}
	return nil
}

// RelayError reports a non-2xx answer from the mail relay.
type RelayError struct {
	Status int
}

func (e *RelayError) Error() string {
	return fmt.Sprintf("mail relay returned status %d", e.Status)
}

func activationText(mail ports.ActivationMail) (subject, text string) {
	name := mail.Name
	if name == "" {
		name = mail.To
	}
	subject = "Account activation"
	text = fmt.Sprintf("Hi %s,\n\nWelcome! Click the link below to activate your account:\n\n%s\n", name, mail.ActivationURL)
	return subject, text
}

var _ ports.Mailer = (*HTTPMailer)(nil)
