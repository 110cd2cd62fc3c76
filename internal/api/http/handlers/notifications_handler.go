package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/process-ticket-service/internal/api/dto"
	"github.com/spec-kit/process-ticket-service/internal/domain"
	"github.com/spec-kit/process-ticket-service/internal/repository"
	apperrors "github.com/spec-kit/process-ticket-service/pkg/util/errorutil"
)

// NotificationsHandler exposes delivery records for operators.
type NotificationsHandler struct {
	notifications repository.NotificationRepository
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications repository.NotificationRepository) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// ListNotifications GET /notifications.
func (h *NotificationsHandler) ListNotifications(c *fiber.Ctx) error {
	filter := repository.NotificationFilter{}
	if recipient := c.Query("recipient"); recipient != "" {
		filter.Recipient = &recipient
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := domain.NotificationStatus(statusStr)
		filter.Status = &status
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize

	records, err := h.notifications.ListWithFilter(c.UserContext(), filter)
	if err != nil {
		return apperrors.MapError(err)
	}

	items := make([]dto.NotificationResponse, 0, len(records))
	for _, record := range records {
		items = append(items, dto.NotificationResponse{
			ID:           record.ID,
			Type:         record.Type,
			Recipient:    record.Recipient,
			Subject:      record.Subject,
			Status:       record.Status,
			SentAt:       record.SentAt,
			DeliveredAt:  record.DeliveredAt,
			ErrorMessage: record.ErrorMessage,
			CreatedAt:    record.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}
