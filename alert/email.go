package alert

import (
	"context"

	"contractor-lookup-go/email"
)

// EmailChannel mails drift alerts to one operator address.
type EmailChannel struct {
	client *email.Client
	to     string
}

// NewEmailChannel returns nil unless both the client and address are set.
func NewEmailChannel(client *email.Client, to string) Channel {
	if client == nil || to == "" {
		return nil
	}
	return &EmailChannel{client: client, to: to}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Notify(ctx context.Context, d Drift) error {
	return c.client.SendDriftAlert(c.to, d.TargetURL, d.Reason, d.At)
}
