package email

import (
	"fmt"
	"html"
	"time"

	"github.com/resend/resend-go/v3"
	"github.com/sirupsen/logrus"
)

// Sender is the part of the Resend SDK we use.
type Sender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Client sends operational emails via Resend.
type Client struct {
	emails    Sender
	fromEmail string
	fromName  string
	log       *logrus.Logger
}

// NewClient returns a configured Resend client, or nil if not configured.
func NewClient(apiKey, fromEmail, fromName string, log *logrus.Logger) *Client {
	if apiKey == "" || fromEmail == "" {
		return nil
	}
	return newClient(resend.NewClient(apiKey).Emails, fromEmail, fromName, log)
}

func newClient(emails Sender, fromEmail, fromName string, log *logrus.Logger) *Client {
	if fromName == "" {
		fromName = "Contractor Lookup"
	}
	return &Client{
		emails:    emails,
		fromEmail: fromEmail,
		fromName:  fromName,
		log:       log,
	}
}

// Send sends an email to the given address.
func (c *Client) Send(toEmail, subject, htmlBody string) error {
	if c == nil {
		return fmt.Errorf("email: client not configured")
	}

	from := fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail)

	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlBody,
	}

	sent, err := c.emails.Send(params)
	if err != nil {
		return fmt.Errorf("email: resend send: %w", err)
	}

	c.log.WithFields(logrus.Fields{"to": toEmail, "id": sent.Id}).Infof("Email sent: %s", subject)
	return nil
}

// SendDriftAlert tells an operator the CSLB search page no longer looks
// like the form the scraper expects.
func (c *Client) SendDriftAlert(toEmail, targetURL, reason string, at time.Time) error {
	subject := "Contractor Lookup: CSLB search page changed"

	body := fmt.Sprintf(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <div style="background: #e67e22; color: white; padding: 20px; text-align: center; border-radius: 8px 8px 0 0;">
    <h1 style="margin: 0;">Live Search Degraded</h1>
  </div>
  <div style="padding: 20px; background: #f9f9f9; border-radius: 0 0 8px 8px;">
    <p>The page fetched for a California live lookup did not contain the search form.</p>
    <ul>
      <li><strong>Page:</strong> %s</li>
      <li><strong>Reason:</strong> %s</li>
      <li><strong>Seen at:</strong> %s</li>
    </ul>
    <p>Searches are falling back to the local database. Refresh the saved CSLB fixtures and the field table once the new markup is known.</p>
    <hr style="border: none; border-top: 1px solid #ddd; margin: 20px 0;">
    <p style="color: #999; font-size: 12px;">Further alerts are suppressed for an hour.</p>
  </div>
</div>`, html.EscapeString(targetURL), html.EscapeString(reason), at.UTC().Format(time.RFC1123))

	return c.Send(toEmail, subject, body)
}
