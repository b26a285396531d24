package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/amirhosseinghanipour/accountd/internal/application/ports"
	"github.com/amirhosseinghanipour/accountd/internal/domain"
)

// taskClient is the part of *asynq.Client the enqueuer uses.
type taskClient interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

// TaskEnqueuer schedules activation emails on the asynq queue.
type TaskEnqueuer struct {
	client taskClient
	links  ActivationLinks
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisConnOpt, links ActivationLinks, log zerolog.Logger) *TaskEnqueuer {
	return &TaskEnqueuer{client: asynq.NewClient(redisOpt), links: links, log: log}
}

func (q *TaskEnqueuer) Close() error {
	return q.client.Close()
}

func (q *TaskEnqueuer) SendActivationEmail(ctx context.Context, account *domain.Account, token string) error {
	payload, err := json.Marshal(newActivationPayload(q.links, account, token))
	if err != nil {
		return err
	}
	task := asynq.NewTask(TypeSendActivation, payload,
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
		asynq.Retention(24*time.Hour),
	)
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		q.log.Warn().Err(err).Str("account_id", account.ID.String()).Msg("enqueue activation email failed")
		return err
	}
	q.log.Debug().Str("task_id", info.ID).Str("account_id", account.ID.String()).Msg("activation email enqueued")
	return nil
}

var _ ports.ActivationNotifier = (*TaskEnqueuer)(nil)
