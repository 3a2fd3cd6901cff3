package jobs

import (
	"context"
	"log"

	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
)

// Enqueuer hands background work to asynq, or runs it in process when Redis
// is not configured.
type Enqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task) error
}

type AsynqEnqueuer struct {
	client *asynq.Client
}

func NewAsynqEnqueuer(client *asynq.Client) *AsynqEnqueuer {
	return &AsynqEnqueuer{client: client}
}

func (e *AsynqEnqueuer) Enqueue(ctx context.Context, task *asynq.Task) error {
	info, err := e.client.EnqueueContext(ctx, task)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		log.Printf("[jobs] %s already pending", task.Type())
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "enqueue %s", task.Type())
	}
	log.Printf("[jobs] enqueued %s id=%s queue=%s", task.Type(), info.ID, info.Queue)
	return nil
}

// InlineEnqueuer runs the handler synchronously. Without Redis there is no
// queue to retry from, so a failure is returned to the caller.
type InlineEnqueuer struct {
	handler asynq.Handler
}

func NewInlineEnqueuer(handler asynq.Handler) *InlineEnqueuer {
	return &InlineEnqueuer{handler: handler}
}

func (e *InlineEnqueuer) Enqueue(ctx context.Context, task *asynq.Task) error {
	log.Printf("⚠️ Redis not available. Running %s inline", task.Type())
	if err := e.handler.ProcessTask(context.WithoutCancel(ctx), task); err != nil {
		return errors.Wrapf(err, "run %s inline", task.Type())
	}
	return nil
}
