package testutil

import (
	"context"
	"sync"

	"github.com/enduser-digital/intelligence-api/internal/config"
	"github.com/enduser-digital/intelligence-api/internal/crm"
)

// SentMail captures one delivery through the MailRecorder
type SentMail struct {
	To      string
	Subject string
	Body    string
}

// MailRecorder is an in-memory mail.Sender. Set Err to simulate a
// broken SMTP server.
type MailRecorder struct {
	mu   sync.Mutex
	Err  error
	Sent []SentMail
}

func (m *MailRecorder) Send(ctx context.Context, to, subject, htmlBody string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, SentMail{To: to, Subject: subject, Body: htmlBody})
	return nil
}

// Count returns the number of successful deliveries
func (m *MailRecorder) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// CRMRecorder is an in-memory CRM mirror. Set Err to simulate remote
// failures; ids are assigned sequentially starting at 1000.
type CRMRecorder struct {
	mu            sync.Mutex
	Err           error
	nextID        int64
	Activities    []*crm.ActivityPayload
	Opportunities []*crm.OpportunityPayload
}

func (c *CRMRecorder) CreateActivity(ctx context.Context, payload *crm.ActivityPayload) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	c.Activities = append(c.Activities, payload)
	c.nextID++
	return 1000 + c.nextID, nil
}

func (c *CRMRecorder) CreateOpportunity(ctx context.Context, payload *crm.OpportunityPayload) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return 0, c.Err
	}
	c.Opportunities = append(c.Opportunities, payload)
	c.nextID++
	return 1000 + c.nextID, nil
}

// TestConfig returns a configuration suitable for service tests
func TestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:             "intelligence-api-test",
			Environment:      "test",
			Port:             8080,
			DashboardBaseURL: "http://localhost:3000",
		},
		CRM: config.CRMConfig{
			Enabled:                    true,
			RequestTimeout:             5,
			DefaultActivitySubTypeID:   63705,
			DefaultOpportunityPhase:    53002,
			DefaultOpportunityCategory: 25309,
		},
		SMTP: config.SMTPConfig{
			FromAddress: "noreply@test.local",
			FromName:    "Test",
			SendTimeout: 5,
		},
		SLA: config.SLAConfig{
			RenotifyIntervalHours: 24,
			JobTimeout:            60,
		},
	}
}
