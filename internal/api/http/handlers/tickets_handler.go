package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/process-ticket-service/internal/api/dto"
	"github.com/spec-kit/process-ticket-service/internal/auth"
	"github.com/spec-kit/process-ticket-service/internal/domain"
	"github.com/spec-kit/process-ticket-service/internal/repository"
	"github.com/spec-kit/process-ticket-service/internal/service"
	apperrors "github.com/spec-kit/process-ticket-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket CRUD and read endpoints.
type TicketsHandler struct {
	workflow   *service.WorkflowService
	tickets    repository.TicketRepository
	components repository.ComponentRepository
	partners   repository.PartnerRepository
	comments   repository.CommentRepository
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(workflow *service.WorkflowService, tickets repository.TicketRepository, components repository.ComponentRepository, partners repository.PartnerRepository, comments repository.CommentRepository) *TicketsHandler {
	return &TicketsHandler{
		workflow:   workflow,
		tickets:    tickets,
		components: components,
		partners:   partners,
		comments:   comments,
	}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	input := service.TicketCreateInput{
		Title:         req.Title,
		Description:   req.Description,
		ComponentID:   req.ComponentID,
		Priority:      req.Priority,
		ScheduledDate: req.ScheduledDate,
		Deadline:      req.Deadline,
		Tags:          req.Tags,
		Metadata:      req.Metadata,
		BrandIDs:      req.BrandIDs,
		AssignedTo:    req.AssignedTo,
	}
	ticket, err := h.workflow.CreateTicket(c.UserContext(), actorFrom(principal), input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	filter := parseTicketQuery(c)
	tickets, err := h.tickets.ListWithFilter(c.UserContext(), filter)
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	ctx := c.UserContext()
	ticket, err := h.tickets.GetByID(ctx, c.Params("id"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket", map[string]any{"id": c.Params("id")})
		}
		return apperrors.MapError(err)
	}

	detail := dto.TicketDetailResponse{
		TicketSummary: ticketSummary(ticket),
		Description:   ticket.Description,
		CreatedBy:     ticket.CreatedBy,
		Metadata:      ticket.Metadata,
		Brands:        []dto.BrandResponse{},
	}

	if component, err := h.components.GetByID(ctx, ticket.ComponentID); err == nil {
		detail.Component = &dto.ComponentResponse{ID: component.ID, Name: component.Name, Email: component.Email}
		if partner, err := h.partners.GetByID(ctx, component.PartnerID); err == nil {
			detail.Partner = &dto.PartnerResponse{ID: partner.ID, Name: partner.Name, Timezone: partner.Timezone}
		}
	}

	brands, err := h.tickets.ListBrands(ctx, ticket.ID)
	if err != nil {
		return apperrors.MapError(err)
	}
	for _, brand := range brands {
		detail.Brands = append(detail.Brands, dto.BrandResponse{ID: brand.ID, Name: brand.Name})
	}

	return c.JSON(fiber.Map{"data": detail})
}

// History GET /tickets/:id/history.
func (h *TicketsHandler) History(c *fiber.Ctx) error {
	entries, err := h.workflow.History(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	items := make([]dto.StatusHistoryResponse, 0, len(entries))
	for i := range entries {
		items = append(items, historyResponse(&entries[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	comment, err := h.workflow.AddComment(c.UserContext(), c.Params("id"), actorFrom(principal), req.Content, req.IsInternal)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": commentResponse(comment)})
}

// ListComments GET /tickets/:id/comments.
func (h *TicketsHandler) ListComments(c *fiber.Ctx) error {
	comments, err := h.comments.ListByTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	items := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, commentResponse(&comments[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

func actorFrom(principal *auth.Principal) service.Actor {
	return service.Actor{ID: principal.UserID, Role: principal.Role}
}

func parseTicketQuery(c *fiber.Ctx) repository.TicketFilter {
	filter := repository.TicketFilter{}
	if statusStr := c.Query("status"); statusStr != "" {
		for _, part := range strings.Split(statusStr, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorityStr := c.Query("priority"); priorityStr != "" {
		for _, part := range strings.Split(priorityStr, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if componentID := c.Query("component_id"); componentID != "" {
		filter.ComponentID = &componentID
	}
	if assignedTo := c.Query("assigned_to"); assignedTo != "" {
		filter.AssignedTo = &assignedTo
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filter.CreatedBy = &createdBy
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:            ticket.ID,
		Title:         ticket.Title,
		Status:        ticket.Status,
		Priority:      ticket.Priority,
		ComponentID:   ticket.ComponentID,
		AssignedTo:    ticket.AssignedTo,
		ScheduledDate: ticket.ScheduledDate,
		PublishedDate: ticket.PublishedDate,
		Deadline:      ticket.Deadline,
		Tags:          ticket.Tags,
		CreatedAt:     ticket.CreatedAt,
		UpdatedAt:     ticket.UpdatedAt,
	}
}

func commentResponse(comment *domain.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:         comment.ID,
		TicketID:   comment.TicketID,
		AuthorID:   comment.AuthorID,
		Content:    comment.Content,
		IsInternal: comment.IsInternal,
		CreatedAt:  comment.CreatedAt,
	}
}

func historyResponse(entry *domain.StatusHistory) dto.StatusHistoryResponse {
	return dto.StatusHistoryResponse{
		ID:             entry.ID,
		TicketID:       entry.TicketID,
		PreviousStatus: entry.PreviousStatus,
		NewStatus:      entry.NewStatus,
		ChangedBy:      entry.ChangedBy,
		Reason:         entry.Reason,
		CreatedAt:      entry.CreatedAt,
	}
}
