package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dukkanhq/dukkan-backend/pkg/config"
	"github.com/dukkanhq/dukkan-backend/pkg/logger"
)

// Message is one transactional email handed to the delivery provider.
type Message struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

// Sender delivers transactional email. Delivery is best-effort; callers log
// failures and move on.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type httpSender struct {
	cfg    config.EmailConfig
	client *http.Client
	logg   *logger.Logger
}

// NewSender builds an email sender against the configured HTTP delivery API.
func NewSender(cfg config.EmailConfig, logg *logger.Logger) (Sender, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("email base url required")
	}
	if cfg.DefaultFrom == "" {
		return nil, fmt.Errorf("email default from required")
	}
	return &httpSender{
		cfg: cfg,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		logg: logg,
	}, nil
}

func (s *httpSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return fmt.Errorf("recipient required")
	}
	if msg.From == "" {
		msg.From = s.cfg.DefaultFrom
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode email: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.BaseURL+"/emails", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build email request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("email provider returned %d", resp.StatusCode)
	}
	return nil
}
