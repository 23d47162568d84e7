// internal/pkg/email/service.go
package email

import (
	"fmt"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"github.com/your-org/asset-tracker/internal/config"
)

// Service sends operational notification emails
type Service struct {
	config *config.Config
}

// NewService creates a new email service
func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg}
}

// SendLowStockAlert notifies the configured recipients that an inventory
// record crossed its minimum stock threshold. Failures are logged, never
// propagated: alerting must not break the ledger path.
func (s *Service) SendLowStockAlert(message string) {
	if !s.config.Email.Enabled || len(s.config.Email.AlertsTo) == 0 {
		return
	}

	subject := "Stock alert: " + s.config.App.CommandName
	body := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.config.Email.FromEmail,
		s.config.Email.AlertsTo[0],
		subject,
		message,
	)

	addr := fmt.Sprintf("%s:%d", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	var auth smtp.Auth
	if s.config.Email.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.config.Email.SMTPUser, s.config.Email.SMTPPass, s.config.Email.SMTPHost)
	}

	if err := smtp.SendMail(addr, auth, s.config.Email.FromEmail, s.config.Email.AlertsTo, []byte(body)); err != nil {
		logrus.WithError(err).Warn("Failed to send low stock alert email")
	}
}
