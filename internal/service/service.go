// Package service contains the business logic.
//
// It sits between the handler and repository layers.
// It receives validated data from the handler, performs
// business operations, and calls repository methods to interact
// with the data
package service

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// enqueuer is the part of job.JobService the services schedule work with.
type enqueuer interface {
	Enqueue(ctx context.Context, t *asynq.Task, opts ...asynq.Option) error
}

// jobRegistry is the part of job.JobService workers are registered on.
type jobRegistry interface {
	enqueuer
	Handle(taskType string, handler asynq.HandlerFunc)
}

// logFrom returns the request or task logger carried by ctx, falling back
// to base when there is none.
func logFrom(ctx context.Context, base *zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	if base != nil {
		return base
	}
	nop := zerolog.Nop()
	return &nop
}
