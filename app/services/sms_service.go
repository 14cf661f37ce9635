// Package services provides external service integrations and technical concerns like notifications
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/config"
	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/utils"
)

// SMSService handles SMS sending operations
type SMSService interface {
	Send(ctx context.Context, recipient, message string) error
	SendBulk(ctx context.Context, recipients []string, message string) error
}

// SMSServiceImpl implements SMSService against the configured HTTP gateway
type SMSServiceImpl struct {
	config *config.SMSConfig
	client *http.Client
}

// SMSRequest represents the request payload for the SMS gateway
type SMSRequest struct {
	From           string `json:"from"`
	Recipient      string `json:"recipient"`
	Body           string `json:"body"`
	RetryCount     int    `json:"retryCount"`
	ValidityPeriod int    `json:"validityPeriod"` // seconds
}

// SMSResponse represents an individual message result from the SMS gateway
type SMSResponse struct {
	MessageID  int64  `json:"messageId"`
	Recipient  string `json:"recipient"`
	Status     string `json:"status"`
	StatusCode int    `json:"statusCode"`
}

// NewSMSService creates a new SMS service instance
func NewSMSService(cfg *config.SMSConfig) SMSService {
	return &SMSServiceImpl{
		config: cfg,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Send sends an SMS message to a single recipient
func (s *SMSServiceImpl) Send(ctx context.Context, recipient, message string) error {
	return s.SendBulk(ctx, []string{recipient}, message)
}

// SendBulk sends an SMS message to multiple recipients in a single API call
func (s *SMSServiceImpl) SendBulk(ctx context.Context, recipients []string, message string) error {
	if len(recipients) == 0 {
		return nil
	}
	requests := make([]SMSRequest, 0, len(recipients))
	for _, r := range recipients {
		requests = append(requests, SMSRequest{
			From:           s.config.SourceNumber,
			Recipient:      r,
			Body:           message,
			RetryCount:     s.config.RetryCount,
			ValidityPeriod: s.config.ValidityPeriod,
		})
	}

	requestBody, err := json.Marshal(requests)
	if err != nil {
		return fmt.Errorf("failed to marshal SMS bulk request: %w", err)
	}

	url := fmt.Sprintf("https://%s/api/v1/messages", s.config.ProviderDomain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.config.APIKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send SMS bulk request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("SMS gateway http status: %d", resp.StatusCode)
	}

	var results []SMSResponse
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return fmt.Errorf("failed to decode SMS bulk response: %w", err)
	}
	for _, r := range results {
		if r.StatusCode != 200 || r.Status != "ACCEPTED" {
			return fmt.Errorf("SMS delivery failed for %s: %s (%d)", r.Recipient, r.Status, r.StatusCode)
		}
	}
	return nil
}

// MockSMSService implements SMSService for testing and local development
type MockSMSService struct {
	mu           sync.Mutex
	SentMessages []MockSMSMessage

	// FailFor causes sends to these recipients to error, for failure-path tests
	FailFor map[string]bool
}

// MockSMSMessage represents a mock SMS message
type MockSMSMessage struct {
	Recipient string
	Message   string
	SentAt    time.Time
}

// NewMockSMSService creates a new mock SMS service
func NewMockSMSService() *MockSMSService {
	return &MockSMSService{
		SentMessages: make([]MockSMSMessage, 0),
	}
}

func (m *MockSMSService) Send(ctx context.Context, recipient, message string) error {
	return m.SendBulk(ctx, []string{recipient}, message)
}

func (m *MockSMSService) SendBulk(_ context.Context, recipients []string, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range recipients {
		if m.FailFor[r] {
			return fmt.Errorf("mock SMS delivery failed for %s", r)
		}
		m.SentMessages = append(m.SentMessages, MockSMSMessage{
			Recipient: r,
			Message:   message,
			SentAt:    utils.UTCNow(),
		})
	}
	return nil
}

// Messages returns a copy of all sent mock messages
func (m *MockSMSService) Messages() []MockSMSMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockSMSMessage, len(m.SentMessages))
	copy(out, m.SentMessages)
	return out
}
