// Package email sends transactional mail through Resend. Bodies are HTML
// templates embedded in the binary.
package email

import (
	"context"

	"github.com/deppfellow/go-productivity/internal/config"
	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

type Client struct {
	client *resend.Client
	from   string
	logger *zerolog.Logger
}

func NewClient(cfg *config.Config, logger *zerolog.Logger) *Client {
	return &Client{
		client: resend.NewClient(cfg.Integration.ResendAPIKey),
		from:   cfg.Integration.EmailFrom,
		logger: logger,
	}
}

// SendEmail renders templateName with data and sends it to a single recipient.
// It returns the provider's message id.
func (c *Client) SendEmail(ctx context.Context, to, subject string, templateName Template, data any) (string, error) {
	html, err := Render(templateName, data)
	if err != nil {
		return "", err
	}

	sent, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    c.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to send %s email", templateName)
	}

	c.logger.Debug().
		Str("template", string(templateName)).
		Str("message_id", sent.Id).
		Msg("email sent")

	return sent.Id, nil
}
