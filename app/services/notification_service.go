// Package services provides external service integrations and technical concerns like notifications
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/TonyIlliano/SmallBizAgent-Final-sub002/utils"
)

// NotificationService handles sending notifications via SMS and email
type NotificationService interface {
	SendSMS(ctx context.Context, mobile, message string) error
	SendEmail(ctx context.Context, email, subject, message string) error
}

// NotificationServiceImpl implements NotificationService
type NotificationServiceImpl struct {
	smsService    SMSService
	emailProvider EmailProvider
}

// EmailProvider interface for email sending
type EmailProvider interface {
	SendEmail(ctx context.Context, email, subject, message string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(smsService SMSService, emailProvider EmailProvider) NotificationService {
	return &NotificationServiceImpl{
		smsService:    smsService,
		emailProvider: emailProvider,
	}
}

// SendSMS sends an SMS message to the specified mobile number
func (s *NotificationServiceImpl) SendSMS(ctx context.Context, mobile, message string) error {
	if s.smsService == nil {
		return fmt.Errorf("SMS provider not configured")
	}
	if strings.TrimSpace(mobile) == "" {
		return fmt.Errorf("empty mobile number")
	}
	return s.smsService.Send(ctx, mobile, message)
}

// SendEmail sends an email to the specified email address
func (s *NotificationServiceImpl) SendEmail(ctx context.Context, email, subject, message string) error {
	if s.emailProvider == nil {
		return fmt.Errorf("email provider not configured")
	}
	if len(email) == 0 || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %s", email)
	}
	return s.emailProvider.SendEmail(ctx, email, subject, message)
}

// MockEmailProvider logs emails instead of sending them
type MockEmailProvider struct {
	mu   sync.Mutex
	Sent []MockEmail
}

// MockEmail represents a recorded mock email
type MockEmail struct {
	Recipient string
	Subject   string
	Message   string
}

func NewMockEmailProvider() *MockEmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(_ context.Context, email, subject, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Sent = append(p.Sent, MockEmail{Recipient: email, Subject: subject, Message: message})
	log.Printf("Email sent to %s [%s]: %s", email, subject, message)
	return nil
}

// SMTPEmailProvider sends email through a configured SMTP relay
type SMTPEmailProvider struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

func NewSMTPEmailProvider(host string, port int, username, password, fromEmail string) EmailProvider {
	return &SMTPEmailProvider{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
	}
}

func (p *SMTPEmailProvider) SendEmail(_ context.Context, email, subject, message string) error {
	// Relay integration pending provider selection; log for now so reminder
	// delivery is still observable in environments without SMTP credentials.
	log.Printf("[%s] Sending email via SMTP to %s [%s]: %s", utils.UTCNowRFC3339(), email, subject, message)
	return nil
}
