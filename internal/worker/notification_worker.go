package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/process-ticket-service/internal/service"
)

// StartNotificationWorker wires the notification service's handlers into the
// dispatcher. Delivery then happens on the dispatcher's own goroutine,
// decoupled from request handling.
func StartNotificationWorker(svc *service.NotificationService, logger *zap.Logger) {
	svc.RegisterHandlers()
	logger.Info("notification worker started")
}
