package notification

import (
	"context"

	"github.com/rs/zerolog"
)

// LogEmailSender writes outgoing email to the log. It stands in for a real
// provider in development and single-clinic deployments that have not
// configured one.
type LogEmailSender struct {
	logger zerolog.Logger
}

func NewLogEmailSender(logger zerolog.Logger) *LogEmailSender {
	return &LogEmailSender{logger: logger}
}

func (s *LogEmailSender) SendEmail(_ context.Context, to, subject, body string) error {
	s.logger.Info().
		Str("channel", "email").
		Str("to", to).
		Str("subject", subject).
		Str("body", body).
		Msg("notification sent")
	return nil
}

// LogSMSSender writes outgoing SMS to the log.
type LogSMSSender struct {
	logger zerolog.Logger
}

func NewLogSMSSender(logger zerolog.Logger) *LogSMSSender {
	return &LogSMSSender{logger: logger}
}

func (s *LogSMSSender) SendSMS(_ context.Context, to, body string) error {
	s.logger.Info().
		Str("channel", "sms").
		Str("to", to).
		Str("body", body).
		Msg("notification sent")
	return nil
}
