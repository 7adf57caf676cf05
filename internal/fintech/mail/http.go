package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPSender delivers mail through a Brevo-compatible transactional
// email HTTP API.
type HTTPSender struct {
	Endpoint   string // e.g. https://api.brevo.com/v3/smtp/email
	APIKey     string
	SenderName string
	SenderAddr string

	Client *http.Client
}

func (s *HTTPSender) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

type emailAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      emailAddress   `json:"sender"`
	To          []emailAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func (s *HTTPSender) SendVerification(ctx context.Context, to, name, verifyURL string) error {
	body := sendRequest{
		Sender:  emailAddress{Name: s.SenderName, Email: s.SenderAddr},
		To:      []emailAddress{{Name: name, Email: to}},
		Subject: "Verify your email address",
		HTMLContent: fmt.Sprintf(
			`<p>Hi %s,</p><p>Confirm your email address by following <a href="%s">this link</a>.</p>`,
			name, verifyURL),
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", s.APIKey)

	resp, err := s.client().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail provider returned %s", resp.Status)
	}
	return nil
}
