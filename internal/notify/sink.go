package notify

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/process-ticket-service/internal/config"
	apperrors "github.com/spec-kit/process-ticket-service/pkg/util/errorutil"
)

// EmailSink performs one delivery attempt. The real relay lives outside this
// service; implementations only report success or failure.
type EmailSink interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// logEmailSink is the development sink: it logs the message instead of
// relaying it, failing when no sender address is configured.
type logEmailSink struct {
	cfg    config.NotificationConfig
	logger *zap.Logger
}

// NewLogEmailSink builds the logging sink.
func NewLogEmailSink(cfg config.NotificationConfig, logger *zap.Logger) EmailSink {
	return &logEmailSink{cfg: cfg, logger: logger}
}

func (s *logEmailSink) Send(ctx context.Context, recipient, subject, body string) error {
	if strings.TrimSpace(s.cfg.EmailFrom) == "" {
		return apperrors.NewDeliveryFailure(recipient, errors.New("sender address not configured"))
	}
	s.logger.Debug("email delivered",
		zap.String("from", s.cfg.EmailFrom),
		zap.String("to", recipient),
		zap.String("subject", subject),
		zap.Int("body_bytes", len(body)))
	return nil
}
