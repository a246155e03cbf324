package sms

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.twilio.com/2010-04-01"

// TwilioClient sends SMS messages via the Twilio REST API.
type TwilioClient struct {
	AccountSID string
	AuthToken  string
	FromNumber string

	baseURL    string
	httpClient *http.Client
	log        *logrus.Logger
}

// NewTwilioClient creates a new Twilio SMS client. Returns nil if credentials are missing.
func NewTwilioClient(accountSID, authToken, fromNumber string, log *logrus.Logger) *TwilioClient {
	if accountSID == "" || authToken == "" || fromNumber == "" {
		return nil
	}
	return &TwilioClient{
		AccountSID: accountSID,
		AuthToken:  authToken,
		FromNumber: fromNumber,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		log:        log,
	}
}

// twilioResponse represents the Twilio API response.
type twilioResponse struct {
	SID          string `json:"sid"`
	Status       string `json:"status"`
	ErrorCode    int    `json:"code"`
	ErrorMessage string `json:"message"`
}

// SendSMS sends a text message to the given phone number.
// The `to` number must be in E.164 format (e.g., +15551234567).
func (c *TwilioClient) SendSMS(ctx context.Context, to, body string) error {
	if c == nil {
		return fmt.Errorf("twilio: client not configured")
	}

	apiURL := fmt.Sprintf("%s/Accounts/%s/Messages.json", c.baseURL, url.PathEscape(c.AccountSID))

	formData := url.Values{
		"To":   {to},
		"From": {c.FromNumber},
		"Body": {body},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(formData.Encode()))
	if err != nil {
		return fmt.Errorf("twilio: build request: %w", err)
	}

	req.SetBasicAuth(c.AccountSID, c.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("twilio: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var tr twilioResponse
	json.Unmarshal(respBody, &tr)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("twilio: HTTP %d: %s (code %d)", resp.StatusCode, tr.ErrorMessage, tr.ErrorCode)
	}

	c.log.WithFields(logrus.Fields{"sid": tr.SID, "status": tr.Status}).Info("SMS sent")
	return nil
}
