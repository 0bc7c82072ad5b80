package controller

import (
	"bookreview-be/internal/dto"
	"bookreview-be/internal/entity"
	"bookreview-be/internal/pkg/serverutils"
	"bookreview-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuthorRefundController interface {
	RegisterRoutes(r fiber.Router)
	CheckEligibility(ctx *fiber.Ctx) error
	CreateRequest(ctx *fiber.Ctx) error
	GetRequests(ctx *fiber.Ctx) error
	GetRequest(ctx *fiber.Ctx) error
	CancelRequest(ctx *fiber.Ctx) error
}

type authorRefundController struct {
	service   service.IRefundService
	jwtSecret string
}

func NewAuthorRefundController(service service.IRefundService, jwtSecret string) IAuthorRefundController {
	return &authorRefundController{
		service:   service,
		jwtSecret: jwtSecret,
	}
}

func (c *authorRefundController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/refunds",
		serverutils.JwtMiddleware(c.jwtSecret),
		serverutils.RequireRoles(string(entity.UserRoleAuthor)),
	)
	h.Get("/eligibility/:creditPurchaseId", c.CheckEligibility)
	h.Post("/request", c.CreateRequest)
	h.Get("/requests", c.GetRequests)
	h.Get("/requests/:id", c.GetRequest)
	h.Delete("/requests/:id", c.CancelRequest)
}

func (c *authorRefundController) CheckEligibility(ctx *fiber.Ctx) error {
	userId, purchaseId, err := actorAndParam(ctx, "creditPurchaseId")
	if err != nil {
		return err
	}

	res, err := c.service.CheckEligibility(ctx.Context(), userId, purchaseId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund eligibility", res))
}

func (c *authorRefundController) CreateRequest(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserId(ctx)
	if err != nil {
		return err
	}
	var req dto.CreateRefundRequest
	if err := parseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.CreateRequest(ctx.Context(), userId, req)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.CreatedResponse("Refund request submitted", res))
}

func (c *authorRefundController) GetRequests(ctx *fiber.Ctx) error {
	userId, err := serverutils.CurrentUserId(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.GetAuthorRequests(ctx.Context(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund requests", res))
}

func (c *authorRefundController) GetRequest(ctx *fiber.Ctx) error {
	userId, requestId, err := actorAndParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.GetAuthorRequest(ctx.Context(), userId, requestId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund request", res))
}

func (c *authorRefundController) CancelRequest(ctx *fiber.Ctx) error {
	userId, requestId, err := actorAndParam(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.service.CancelRequest(ctx.Context(), userId, requestId); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Refund request cancelled", nil))
}
