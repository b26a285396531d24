package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
)

// Worker runs Asynq task handlers that deliver account email.
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	mailer ports.Mailer
	log    zerolog.Logger
}

// NewWorker creates an Asynq server and registers handlers. Call Run() to start.
func NewWorker(redisOpt asynq.RedisConnOpt, concurrency int, mailer ports.Mailer, log zerolog.Logger) *Worker {
	if concurrency <= 0 {
		concurrency = 2
	}
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: concurrency,
		LogLevel:    asynq.WarnLevel,
	})
	w := &Worker{srv: srv, mux: asynq.NewServeMux(), mailer: mailer, log: log}
	w.mux.HandleFunc(TypeSendActivation, w.handleSendActivation)
	return w
}

func (p activationPayload) mail() ports.ActivationMail {
	return ports.ActivationMail{
		AccountID:     p.AccountID,
		To:            p.Email,
		Name:          p.Name,
		ActivationURL: p.ActivationURL,
	}
}

func (w *Worker) handleSendActivation(ctx context.Context, t *asynq.Task) error {
	var p activationPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("activation task payload invalid")
		return fmt.Errorf("%w: %v", asynq.SkipRetry, err)
	}
	if p.Email == "" || p.ActivationURL == "" {
		w.log.Error().Str("account_id", p.AccountID).Msg("activation task missing recipient or link")
		return fmt.Errorf("%w: incomplete activation payload", asynq.SkipRetry)
	}
	if err := w.mailer.SendActivation(ctx, p.mail()); err != nil {
		w.log.Warn().Err(err).Str("account_id", p.AccountID).Msg("activation email delivery failed; will retry")
		return err
	}
	w.log.Info().Str("account_id", p.AccountID).Msg("activation email delivered")
	return nil
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
