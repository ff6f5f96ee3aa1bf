// Package mailer sends the rendered brief through the Gmail API using a
// refresh-token OAuth credential.
package mailer

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/Saahil112/morning-brief/internal/retry"
)

type Config struct {
	ClientID     string
	ClientSecret string
	RefreshToken string
	Sender       string
	Recipient    string
	Retry        retry.Config
}

type Mailer struct {
	svc       *gmail.Service
	sender    string
	recipient string
	retryCfg  retry.Config
	log       *slog.Logger
}

func New(ctx context.Context, cfg Config, log *slog.Logger) (*Mailer, error) {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     google.Endpoint,
		Scopes:       []string{gmail.GmailSendScope},
	}
	ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Mailer{
		svc:       svc,
		sender:    cfg.Sender,
		recipient: cfg.Recipient,
		retryCfg:  cfg.Retry,
		log:       log,
	}, nil
}

// Send delivers an HTML email and returns the Gmail message ID.
func (m *Mailer) Send(ctx context.Context, subject, htmlBody string) (string, error) {
	raw := fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s",
		m.sender, m.recipient, subject, htmlBody)

	msg := &gmail.Message{
		Raw: base64.RawURLEncoding.EncodeToString([]byte(raw)),
	}

	var id string
	err := retry.WithRetry(ctx, m.retryCfg, func() error {
		sent, err := m.svc.Users.Messages.Send("me", msg).Context(ctx).Do()
		if err != nil {
			if m.log != nil {
				m.log.Warn("gmail send failed", "error", err)
			}
			return err
		}
		id = sent.Id
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to send digest email: %w", err)
	}

	if m.log != nil {
		m.log.Info("digest email sent", "message_id", id, "recipient", m.recipient)
	}
	return id, nil
}
