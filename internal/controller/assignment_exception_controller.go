package controller

import (
	"strconv"

	"bookreview-be/internal/dto"
	"bookreview-be/internal/entity"
	"bookreview-be/internal/pkg/apperror"
	"bookreview-be/internal/pkg/serverutils"
	"bookreview-be/internal/service"
	"bookreview-be/pkg/admin/assignment"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAssignmentExceptionController interface {
	RegisterRoutes(r fiber.Router)
	ExtendDeadline(ctx *fiber.Ctx) error
	ShortenDeadline(ctx *fiber.Ctx) error
	ReassignReader(ctx *fiber.Ctx) error
	BulkReassign(ctx *fiber.Ctx) error
	CancelAssignment(ctx *fiber.Ctx) error
	CorrectAssignmentError(ctx *fiber.Ctx) error
	GetAssignmentExceptions(ctx *fiber.Ctx) error
}

type assignmentExceptionController struct {
	service   service.IAssignmentExceptionService
	jwtSecret string
}

func NewAssignmentExceptionController(service service.IAssignmentExceptionService, jwtSecret string) IAssignmentExceptionController {
	return &assignmentExceptionController{
		service:   service,
		jwtSecret: jwtSecret,
	}
}

func (c *assignmentExceptionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/assignments",
		serverutils.JwtMiddleware(c.jwtSecret),
		serverutils.RequireRoles(string(entity.UserRoleAdmin)),
	)

	// Static paths before :id
	h.Get("/exceptions", c.GetAssignmentExceptions)
	h.Post("/bulk-reassign", c.BulkReassign)

	h.Post("/:id/extend-deadline", c.ExtendDeadline)
	h.Post("/:id/shorten-deadline", c.ShortenDeadline)
	h.Post("/:id/reassign", c.ReassignReader)
	h.Post("/:id/cancel", c.CancelAssignment)
	h.Post("/:id/correct-error", c.CorrectAssignmentError)
}

func (c *assignmentExceptionController) ExtendDeadline(ctx *fiber.Ctx) error {
	actorId, assignmentId, err := actorAndParam(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.ExtendDeadlineRequest
	if err := parseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ExtendDeadline(ctx.Context(), actorId, assignmentId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Deadline extended", res))
}

func (c *assignmentExceptionController) ShortenDeadline(ctx *fiber.Ctx) error {
	actorId, assignmentId, err := actorAndParam(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.ShortenDeadlineRequest
	if err := parseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ShortenDeadline(ctx.Context(), actorId, assignmentId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Deadline shortened", res))
}

func (c *assignmentExceptionController) ReassignReader(ctx *fiber.Ctx) error {
	actorId, assignmentId, err := actorAndParam(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.ReassignReaderRequest
	if err := parseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ReassignReader(ctx.Context(), actorId, assignmentId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Reader reassigned", res))
}

func (c *assignmentExceptionController) BulkReassign(ctx *fiber.Ctx) error {
	actorId, err := serverutils.CurrentUserId(ctx)
	if err != nil {
		return err
	}
	var req dto.BulkReassignRequest
	if err := parseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.BulkReassign(ctx.Context(), actorId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Bulk reassignment finished", res))
}

func (c *assignmentExceptionController) CancelAssignment(ctx *fiber.Ctx) error {
	actorId, assignmentId, err := actorAndParam(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.CancelAssignmentRequest
	if err := parseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.CancelAssignment(ctx.Context(), actorId, assignmentId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Assignment cancelled", res))
}

func (c *assignmentExceptionController) CorrectAssignmentError(ctx *fiber.Ctx) error {
	actorId, assignmentId, err := actorAndParam(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.CorrectAssignmentErrorRequest
	if err := parseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.CorrectAssignmentError(ctx.Context(), actorId, assignmentId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Correction recorded", res))
}

func (c *assignmentExceptionController) GetAssignmentExceptions(ctx *fiber.Ctx) error {
	bookId, err := optionalUUIDQuery(ctx, "bookId")
	if err != nil {
		return err
	}
	readerProfileId, err := optionalUUIDQuery(ctx, "readerProfileId")
	if err != nil {
		return err
	}

	limit, convErr := strconv.Atoi(ctx.Query("limit"))
	if convErr != nil || limit < 1 {
		limit = assignment.DefaultExceptionLimit
	}

	res, err := c.service.GetAssignmentExceptions(ctx.Context(), bookId, readerProfileId, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Assignment exceptions", res))
}

func optionalUUIDQuery(ctx *fiber.Ctx, key string) (*uuid.UUID, error) {
	raw := ctx.Query(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperror.BadRequest("Invalid %s", key)
	}
	return &id, nil
}
