package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/MCTHIAS/CathPed/internal/config"
	"github.com/MCTHIAS/CathPed/internal/model"
)

// Service sends intake notifications. When SMTP is not configured it is a
// no-op, so deployments without a mail relay lose nothing but the email.
type Service struct {
	cfg    config.SMTPConfig
	logger zerolog.Logger
}

func NewService(cfg config.SMTPConfig, logger zerolog.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

func (s *Service) enabled() bool {
	return s.cfg.Host != "" && s.cfg.NotifyTo != ""
}

// NotifyNewPatients mails a short digest of patients just pulled from the
// intake sheet to the configured recipient.
func (s *Service) NotifyNewPatients(ctx context.Context, patients []*model.Patient) error {
	if !s.enabled() || len(patients) == 0 {
		return nil
	}

	var body strings.Builder
	fmt.Fprintf(&body, "%d new patient(s) were imported from the intake form:\n\n", len(patients))
	for _, p := range patients {
		fmt.Fprintf(&body, "- %s (age %d): %s, %s\n", p.FullName, p.Age, p.Procedure, p.ConditionSeverity)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", s.cfg.NotifyTo)
	m.SetHeader("Subject", fmt.Sprintf("CathPed: %d new intake patient(s)", len(patients)))
	m.SetBody("text/plain", body.String())

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send intake notification: %w", err)
	}

	s.logger.Debug().Int("patients", len(patients)).Msg("intake notification sent")
	return nil
}
