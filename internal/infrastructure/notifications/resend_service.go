package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/you/authgate/domain"
)

// ResendServiceImpl implements domain.NotificationService over the Resend
// HTTP API. With no API key configured it logs the mail instead of sending,
// which keeps local development working without credentials.
type ResendServiceImpl struct {
	apiKey  string
	from    string
	baseURL string
	client  *http.Client
}

// NewResendService creates a new Resend notification service
func NewResendService(apiKey, from string) domain.NotificationService {
	return &ResendServiceImpl{
		apiKey:  apiKey,
		from:    from,
		baseURL: "https://api.resend.com",
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// SendEmail implements domain.NotificationService
func (s *ResendServiceImpl) SendEmail(ctx context.Context, to, subject, html string) error {
	if s.apiKey == "" {
		log.Printf("MAIL_MOCK: to=%s subject=%q", to, subject)
		return nil
	}

	body, err := json.Marshal(sendRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		HTML:    html,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/emails", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend returned status %d: %s", resp.StatusCode, detail)
	}

	return nil
}
