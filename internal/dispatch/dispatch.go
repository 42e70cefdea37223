// Package dispatch detaches generation work from the request that asked
// for it. The HTTP handler responds as soon as indices are computed; a
// dispatcher takes the task from there. Two backends: an in-process worker
// pool and a rabbitmq queue consumed by the worker binary.
package dispatch

import (
	"context"

	"github.com/rethinkmedia/backend/internal/media"
)

// Runner executes one generation task. Implemented by media.Service.
type Runner interface {
	Run(ctx context.Context, t media.Task) error
}

type Dispatcher interface {
	// Dispatch hands the task off for background execution. A nil return
	// means the task was accepted, not that generation succeeded — outcomes
	// surface only through the media row's status.
	Dispatch(ctx context.Context, t media.Task) error
	Close() error
}
