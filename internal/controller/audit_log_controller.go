package controller

import (
	"bookreview-be/internal/entity"
	"bookreview-be/internal/pkg/serverutils"
	"bookreview-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAuditLogController interface {
	RegisterRoutes(r fiber.Router)
	GetAuditLogs(ctx *fiber.Ctx) error
}

type auditLogController struct {
	service   service.IAuditLogService
	jwtSecret string
}

func NewAuditLogController(service service.IAuditLogService, jwtSecret string) IAuditLogController {
	return &auditLogController{
		service:   service,
		jwtSecret: jwtSecret,
	}
}

func (c *auditLogController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/audit-logs",
		serverutils.JwtMiddleware(c.jwtSecret),
		serverutils.RequireRoles(string(entity.UserRoleAdmin)),
	)
	h.Get("/", c.GetAuditLogs)
}

func (c *auditLogController) GetAuditLogs(ctx *fiber.Ctx) error {
	page := ctx.QueryInt("page", 1)
	limit := ctx.QueryInt("limit", 20)

	res, err := c.service.GetAuditLogs(ctx.Context(), ctx.Query("entityType"), ctx.Query("action"), page, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Audit logs", res))
}
