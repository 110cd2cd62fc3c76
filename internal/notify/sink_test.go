package notify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/process-ticket-service/internal/config"
	apperrors "github.com/spec-kit/process-ticket-service/pkg/util/errorutil"
)

func TestLogEmailSinkDelivers(t *testing.T) {
	sink := NewLogEmailSink(config.NotificationConfig{EmailFrom: "noreply@example.com"}, zap.NewNop())

	err := sink.Send(context.Background(), "agent@example.com", "Ticket live", "body")
	assert.NoError(t, err)
}

func TestLogEmailSinkFailsWithoutSender(t *testing.T) {
	sink := NewLogEmailSink(config.NotificationConfig{}, zap.NewNop())

	err := sink.Send(context.Background(), "agent@example.com", "Ticket live", "body")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDeliveryFailed, apperrors.Code(err))

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "agent@example.com", domainErr.Details["recipient"])
}
