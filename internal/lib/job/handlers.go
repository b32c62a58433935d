package job

import (
	"context"

	"github.com/deppfellow/go-productivity/internal/lib/email"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// RegisterEmailHandlers wires the email tasks to client.
func (j *JobService) RegisterEmailHandlers(client *email.Client) {
	j.Handle(TaskWelcome, func(ctx context.Context, t *asynq.Task) error {
		p, err := DecodePayload[WelcomeEmailPayload](t)
		if err != nil {
			return err
		}

		if err := client.SendWelcomeEmail(ctx, p.To, p.Nickname); err != nil {
			return err
		}

		zerolog.Ctx(ctx).Info().Str("to", p.To).Msg("sent welcome email")
		return nil
	})
}
