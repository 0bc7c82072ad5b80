package controller

import (
	"bookreview-be/internal/dto"
	"bookreview-be/internal/entity"
	"bookreview-be/internal/pkg/serverutils"
	"bookreview-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAdminRefundController interface {
	RegisterRoutes(r fiber.Router)
	GetRequests(ctx *fiber.Ctx) error
	GetRequest(ctx *fiber.Ctx) error
	ProcessRequest(ctx *fiber.Ctx) error
}

type adminRefundController struct {
	service   service.IRefundService
	jwtSecret string
}

func NewAdminRefundController(service service.IRefundService, jwtSecret string) IAdminRefundController {
	return &adminRefundController{
		service:   service,
		jwtSecret: jwtSecret,
	}
}

func (c *adminRefundController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/refunds",
		serverutils.JwtMiddleware(c.jwtSecret),
		serverutils.RequireRoles(string(entity.UserRoleAdmin)),
	)
	h.Get("/requests", c.GetRequests)
	h.Get("/requests/:id", c.GetRequest)
	h.Patch("/requests/:id", c.ProcessRequest)
}

func (c *adminRefundController) GetRequests(ctx *fiber.Ctx) error {
	page := ctx.QueryInt("page", 1)
	limit := ctx.QueryInt("limit", 10)
	status := ctx.Query("status") // pending, completed, rejected... empty for all

	res, err := c.service.GetAllRequests(ctx.Context(), status, page, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund requests", res))
}

func (c *adminRefundController) GetRequest(ctx *fiber.Ctx) error {
	requestId, err := uuidParam(ctx, "id")
	if err != nil {
		return err
	}

	res, err := c.service.GetRequest(ctx.Context(), requestId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund request", res))
}

func (c *adminRefundController) ProcessRequest(ctx *fiber.Ctx) error {
	adminId, requestId, err := actorAndParam(ctx, "id")
	if err != nil {
		return err
	}
	var req dto.ProcessRefundRequest
	if err := parseAndValidate(ctx, &req); err != nil {
		return err
	}

	res, err := c.service.ProcessRequest(ctx.Context(), adminId, requestId, req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Refund request processed", res))
}
