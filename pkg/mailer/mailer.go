package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/chrisgermon/form-ordering-sub000/pkg/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Message is one outbound email
type Message struct {
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Mailer sends notification emails
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Cc      []string `json:"cc,omitempty"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// APIMailer delivers mail through an HTTP email API (Resend-compatible)
type APIMailer struct {
	client *resty.Client
	from   string
	logger *zap.Logger
}

// NewAPIMailer creates a mailer from configuration
func NewAPIMailer(cfg *config.MailConfig, logger *zap.Logger) *APIMailer {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetAuthToken(cfg.APIKey).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)

	return &APIMailer{
		client: client,
		from:   cfg.FromAddress,
		logger: logger,
	}
}

// Send delivers one email through the API
func (m *APIMailer) Send(ctx context.Context, msg *Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("no recipients")
	}

	var result sendResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(&sendRequest{
			From:    m.from,
			To:      msg.To,
			Cc:      msg.Cc,
			Subject: msg.Subject,
			HTML:    msg.HTML,
		}).
		SetResult(&result).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("email request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("email API returned %d: %s", resp.StatusCode(), resp.String())
	}

	m.logger.Info("Email sent",
		zap.String("message_id", result.ID),
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}

// NopMailer discards all mail, used when MAIL_ENABLED=false
type NopMailer struct {
	logger *zap.Logger
}

// NewNopMailer creates a mailer that only logs
func NewNopMailer(logger *zap.Logger) *NopMailer {
	return &NopMailer{logger: logger}
}

// Send logs the message and drops it
func (m *NopMailer) Send(ctx context.Context, msg *Message) error {
	m.logger.Info("Mail disabled, dropping email",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
