package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const resendEndpoint = "https://api.resend.com/emails"

// MailSender delivers contact form messages to the site owner.
type MailSender interface {
	SendContactMessage(ctx context.Context, fromEmail, fromName, subject, body string) error
}

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	ReplyTo string   `json:"reply_to,omitempty"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// ResendMailer sends mail through the Resend HTTP API.
type ResendMailer struct {
	apiKey    string
	fromEmail string
	to        string
	endpoint  string
	client    *http.Client
}

// NewResendMailer needs RESEND_API_KEY, RESEND_FROM_EMAIL and CONTACT_EMAIL values.
func NewResendMailer(apiKey, fromEmail, contactEmail string) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY is required")
	}
	if fromEmail == "" {
		return nil, fmt.Errorf("RESEND_FROM_EMAIL is required")
	}
	if contactEmail == "" {
		return nil, fmt.Errorf("CONTACT_EMAIL is required")
	}
	return &ResendMailer{
		apiKey:    apiKey,
		fromEmail: fromEmail,
		to:        contactEmail,
		endpoint:  resendEndpoint,
		client:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// WithEndpoint points the mailer at another API base, used by tests.
func (m *ResendMailer) WithEndpoint(endpoint string) *ResendMailer {
	m.endpoint = endpoint
	return m
}

// SendContactMessage forwards a visitor's message to the contact address. Replies go to the visitor.
func (m *ResendMailer) SendContactMessage(ctx context.Context, fromEmail, fromName, subject, body string) error {
	payload := ResendEmailRequest{
		From:    m.fromEmail,
		To:      []string{m.to},
		ReplyTo: fmt.Sprintf("%s <%s>", fromName, fromEmail),
		Subject: "[Contact] " + subject,
		Html:    contactHTML(fromEmail, fromName, body),
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s", fromName, fromEmail, body),
	}

	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal email payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return fmt.Errorf("failed to create Resend API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read Resend API response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errorResp ResendErrorResponse
		if err := json.Unmarshal(bodyBytes, &errorResp); err == nil && errorResp.Message != "" {
			return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, errorResp.Message)
		}
		return fmt.Errorf("resend API error (status %d): %s", resp.StatusCode, string(bodyBytes))
	}

	var emailResponse ResendEmailResponse
	if err := json.Unmarshal(bodyBytes, &emailResponse); err != nil {
		log.Warn().Err(err).Msg("Failed to parse Resend email response, but email was sent")
	} else {
		log.Info().Str("emailId", emailResponse.ID).Msg("Contact message sent via Resend")
	}
	return nil
}

func contactHTML(fromEmail, fromName, body string) string {
	paragraphs := strings.Split(html.EscapeString(body), "\n")
	return fmt.Sprintf("<p><strong>%s</strong> &lt;%s&gt; wrote:</p><p>%s</p>",
		html.EscapeString(fromName), html.EscapeString(fromEmail), strings.Join(paragraphs, "<br>"))
}

// LogMailer stands in when Resend is not configured. Messages are logged and dropped.
type LogMailer struct{}

func (LogMailer) SendContactMessage(_ context.Context, fromEmail, fromName, subject, _ string) error {
	log.Warn().
		Str("fromEmail", fromEmail).
		Str("fromName", fromName).
		Str("subject", subject).
		Msg("Mail is not configured, contact message dropped")
	return nil
}
