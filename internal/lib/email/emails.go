package email

import "context"

func (c *Client) SendWelcomeEmail(ctx context.Context, to, nickname string) error {
	_, err := c.SendEmail(ctx, to, "Welcome to Productivity!", TemplateWelcome, WelcomeData{Nickname: nickname})
	return err
}
