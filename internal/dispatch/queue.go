package dispatch

import (
	"context"

	"github.com/rethinkmedia/backend/internal/media"
	"github.com/rethinkmedia/backend/internal/store/rabbitmq"
)

// Queue publishes tasks to rabbitmq; the worker binary consumes them.
type Queue struct {
	pub *rabbitmq.Publisher
}

func NewQueue(pub *rabbitmq.Publisher) *Queue {
	return &Queue{pub: pub}
}

func (q *Queue) Dispatch(ctx context.Context, t media.Task) error {
	return q.pub.PublishTask(ctx, t)
}

func (q *Queue) Close() error {
	return q.pub.Close()
}
