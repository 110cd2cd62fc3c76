package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/process-ticket-service/internal/api/dto"
	"github.com/spec-kit/process-ticket-service/internal/auth"
	"github.com/spec-kit/process-ticket-service/internal/service"
	apperrors "github.com/spec-kit/process-ticket-service/pkg/util/errorutil"
)

// WorkflowHandler exposes status transition endpoints.
type WorkflowHandler struct {
	workflow *service.WorkflowService
}

// NewWorkflowHandler constructs handler.
func NewWorkflowHandler(workflow *service.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{workflow: workflow}
}

// UpdateStatus PUT /tickets/:id/status.
func (h *WorkflowHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.workflow.Transition(c.UserContext(), c.Params("id"), req.Status, actorFrom(principal), req.Reason, req.AssignedTo)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// BulkUpdateStatus PUT /tickets/bulk/status.
func (h *WorkflowHandler) BulkUpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.BulkUpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	outcomes, err := h.workflow.BulkTransition(c.UserContext(), req.TicketIDs, req.Status, actorFrom(principal), req.Reason)
	if err != nil {
		return err
	}

	items := make([]dto.BulkOutcomeResponse, 0, len(outcomes))
	succeeded := 0
	for _, outcome := range outcomes {
		item := dto.BulkOutcomeResponse{TicketID: outcome.TicketID, Success: outcome.Succeeded()}
		if outcome.Succeeded() {
			succeeded++
			summary := ticketSummary(outcome.Ticket)
			item.Ticket = &summary
		} else {
			domainErr := apperrors.ToDomainError(outcome.Err)
			item.Error = &dto.ErrorBody{Code: domainErr.Code, Message: domainErr.Message}
		}
		items = append(items, item)
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"outcomes":  items,
			"succeeded": succeeded,
			"failed":    len(items) - succeeded,
		},
	})
}
