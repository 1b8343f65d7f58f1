package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"time"

	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/repo"
)

// StoreSink persists every message as an in-app notification row.
type StoreSink struct {
	Repo *repo.NotificationRepo
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Send(ctx context.Context, msg Message) error {
	return s.Repo.Insert(ctx, models.Notification{
		UUID:     msg.UUID,
		CampusID: msg.CampusID,
		UserID:   msg.UserID,
		Channel:  models.ChannelInApp,
		Subject:  msg.Subject,
		Body:     msg.Body,
	})
}

// EmailSender relays messages to an SMTP host. Best-effort: no retries here,
// the dispatcher logs failures.
type EmailSender struct {
	Addr string // host:port
	From string
	To   string // ops distribution address
}

func (s *EmailSender) Name() string { return "email" }

func (s *EmailSender) Send(ctx context.Context, msg Message) error {
	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.From, s.To, msg.Subject, msg.Body)
	return smtp.SendMail(s.Addr, nil, s.From, []string{s.To}, []byte(body))
}

// WhatsAppSender posts the message JSON to a webhook gateway.
type WhatsAppSender struct {
	WebhookURL string
	Client     *http.Client
}

func (s *WhatsAppSender) Name() string { return "whatsapp" }

func (s *WhatsAppSender) Send(ctx context.Context, msg Message) error {
	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned %d", resp.StatusCode)
	}
	return nil
}
