package alert

import (
	"context"
	"fmt"

	"contractor-lookup-go/sms"
)

// SMSChannel texts a short drift notice to one on-call number.
type SMSChannel struct {
	client *sms.TwilioClient
	to     string
}

// NewSMSChannel returns nil unless both the client and number are set.
func NewSMSChannel(client *sms.TwilioClient, to string) Channel {
	if client == nil || to == "" {
		return nil
	}
	return &SMSChannel{client: client, to: to}
}

func (c *SMSChannel) Name() string { return "sms" }

func (c *SMSChannel) Notify(ctx context.Context, d Drift) error {
	body := fmt.Sprintf("Contractor lookup: CSLB search page changed (%s). Live search is falling back to local records.", d.Reason)
	return c.client.SendSMS(ctx, c.to, body)
}
