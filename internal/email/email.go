package email

import (
	"fmt"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/medicore/hospital-api/config"
)

// Sender delivers transactional mail. Delivery is best-effort; callers must
// not fail their own operation when a send fails.
type Sender interface {
	SendAppointmentConfirmation(to, patientName, doctorName, date, startTime string) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
	logger zerolog.Logger
}

// NewSMTPSender builds a Sender over the configured SMTP relay. When the
// relay is disabled it returns a no-op sender so callers never need to
// branch on configuration.
func NewSMTPSender(cfg config.SMTPConfig, logger zerolog.Logger) Sender {
	if !cfg.Enabled {
		return &noopSender{logger: logger}
	}
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *smtpSender) SendAppointmentConfirmation(to, patientName, doctorName, date, startTime string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Appointment confirmation")
	m.SetBody("text/plain", fmt.Sprintf(
		"Dear %s,\n\nYour appointment with Dr. %s is confirmed for %s at %s.\n\nPlease arrive 10 minutes early.\n",
		patientName, doctorName, date, startTime,
	))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send confirmation email: %w", err)
	}
	return nil
}

type noopSender struct {
	logger zerolog.Logger
}

func (s *noopSender) SendAppointmentConfirmation(to, _, _, _, _ string) error {
	s.logger.Debug().Str("to", to).Msg("email disabled, skipping confirmation")
	return nil
}
