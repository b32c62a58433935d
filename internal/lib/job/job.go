// Package job runs background work on asynq.
//
// Services register their task handlers on the JobService before Start; the
// same service enqueues tasks through Enqueue.
package job

import (
	"context"
	"fmt"
	"time"

	"github.com/deppfellow/go-productivity/internal/config"
	"github.com/hibiken/asynq"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
)

// Queue names and their share of the workers.
const (
	QueueCritical = "critical"
	QueueDefault  = "default"
	QueueLow      = "low"
)

type JobService struct {
	Client *asynq.Client
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *zerolog.Logger
}

func NewJobService(logger *zerolog.Logger, cfg *config.Config, nrApp *newrelic.Application) *JobService {
	redisOpt := asynq.RedisClientOpt{Addr: cfg.Redis.Address}

	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			QueueCritical: 6,
			QueueDefault:  3,
			QueueLow:      1,
		},
		Logger:   newAsynqLogger(logger),
		LogLevel: asynq.WarnLevel,
	})

	j := &JobService{
		Client: asynq.NewClient(redisOpt),
		server: server,
		mux:    asynq.NewServeMux(),
		logger: logger,
	}
	j.mux.Use(j.loggingMiddleware, transactionMiddleware(nrApp))

	return j
}

// Handle registers the handler of a task type. It must be called before Start.
func (j *JobService) Handle(taskType string, handler asynq.HandlerFunc) {
	j.mux.HandleFunc(taskType, handler)
}

// Enqueue schedules a task and logs where it went.
func (j *JobService) Enqueue(ctx context.Context, t *asynq.Task, opts ...asynq.Option) error {
	info, err := j.Client.EnqueueContext(ctx, t, opts...)
	if err != nil {
		return fmt.Errorf("failed to enqueue %s task: %w", t.Type(), err)
	}

	j.logger.Debug().
		Str("type", t.Type()).
		Str("task_id", info.ID).
		Str("queue", info.Queue).
		Msg("task enqueued")

	return nil
}

// Start launches the worker pool in the background.
func (j *JobService) Start() error {
	j.logger.Info().Msg("starting background job server")
	return j.server.Start(j.mux)
}

func (j *JobService) Stop() {
	j.logger.Info().Msg("stopping background job server")
	j.server.Shutdown()
	if err := j.Client.Close(); err != nil {
		j.logger.Error().Err(err).Msg("failed to close job client")
	}
}

func (j *JobService) loggingMiddleware(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		start := time.Now()
		log := j.logger.With().Str("type", t.Type()).Logger()
		if id, ok := asynq.GetTaskID(ctx); ok {
			log = log.With().Str("task_id", id).Logger()
		}

		err := next.ProcessTask(log.WithContext(ctx), t)
		if err != nil {
			log.Error().Err(err).Dur("duration", time.Since(start)).Msg("task failed")
			return err
		}

		log.Info().Dur("duration", time.Since(start)).Msg("task processed")
		return nil
	})
}

// transactionMiddleware records each task as a New Relic background
// transaction. A nil app disables it.
func transactionMiddleware(app *newrelic.Application) asynq.MiddlewareFunc {
	return func(next asynq.Handler) asynq.Handler {
		if app == nil {
			return next
		}
		return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
			txn := app.StartTransaction("job/" + t.Type())
			defer txn.End()

			err := next.ProcessTask(newrelic.NewContext(ctx, txn), t)
			if err != nil {
				txn.NoticeError(err)
			}
			return err
		})
	}
}
