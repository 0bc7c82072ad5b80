package handler

import (
	"strings"

	"bookreview-be/internal/entity"
	"bookreview-be/internal/pkg/apperror"
	"bookreview-be/internal/pkg/logger"
	"bookreview-be/internal/pkg/serverutils"
	"bookreview-be/internal/service"
	internalWS "bookreview-be/internal/websocket"
	"bookreview-be/pkg/events"
	pktNats "bookreview-be/pkg/nats"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const SystemBroadcastEvent = "SYSTEM_BROADCAST"

type NotificationHandler struct {
	service   *service.NotificationService
	publisher *pktNats.Publisher
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewNotificationHandler(service *service.NotificationService, pub *pktNats.Publisher, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *NotificationHandler {
	return &NotificationHandler{
		service:   service,
		publisher: pub,
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

// ServeWs authenticates with ?token= (browsers cannot set headers on the
// handshake) or a bearer header, then upgrades.
func (h *NotificationHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		if auth := c.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			tokenStr = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if tokenStr == "" {
		return apperror.Unauthorized("Missing token (query 'token' or Authorization header)")
	}

	userID, _, err := serverutils.ParseToken(h.jwtSecret, tokenStr)
	if err != nil {
		h.logger.Warn("NotificationHandler", "Invalid token in websocket handshake", map[string]interface{}{"error": err.Error()})
		return err
	}

	if !websocket.IsWebSocketUpgrade(c) || h.hub == nil {
		return fiber.ErrUpgradeRequired
	}
	return websocket.New(func(conn *websocket.Conn) {
		h.logger.Info("NotificationHandler", "WebSocket session started", map[string]interface{}{"user_id": userID})
		internalWS.ServeWs(h.hub, conn, userID)
		h.logger.Info("NotificationHandler", "WebSocket session ended", map[string]interface{}{"user_id": userID})
	})(c)
}

func (h *NotificationHandler) GetNotifications(c *fiber.Ctx) error {
	userID, err := serverutils.CurrentUserId(c)
	if err != nil {
		return err
	}

	limit := c.QueryInt("limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	notifications, total, err := h.service.GetNotifications(c.UserContext(), userID, limit, offset)
	if err != nil {
		return err
	}

	return c.JSON(serverutils.SuccessResponse("Notifications", fiber.Map{
		"items":  notifications,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	}))
}

func (h *NotificationHandler) GetUnreadCount(c *fiber.Ctx) error {
	userID, err := serverutils.CurrentUserId(c)
	if err != nil {
		return err
	}

	count, err := h.service.GetUnreadCount(c.UserContext(), userID)
	if err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse("Unread count", fiber.Map{"count": count}))
}

func (h *NotificationHandler) MarkAsRead(c *fiber.Ctx) error {
	userID, err := serverutils.CurrentUserId(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperror.BadRequest("Invalid notification ID")
	}

	if err := h.service.MarkAsRead(c.UserContext(), userID, id); err != nil {
		return apperror.Wrap(apperror.KindNotFound, err, "Notification not found")
	}
	return c.JSON(serverutils.SuccessResponse[any]("Notification marked as read", nil))
}

func (h *NotificationHandler) MarkAllAsRead(c *fiber.Ctx) error {
	userID, err := serverutils.CurrentUserId(c)
	if err != nil {
		return err
	}

	if err := h.service.MarkAllAsRead(c.UserContext(), userID); err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse[any]("All notifications marked as read", nil))
}

type broadcastRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=2000"`
}

// Broadcast publishes a system-wide announcement through the event bus.
func (h *NotificationHandler) Broadcast(c *fiber.Ctx) error {
	var req broadcastRequest
	if err := c.BodyParser(&req); err != nil {
		return apperror.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(&req); err != nil {
		return err
	}
	if h.publisher == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "Event publisher not configured")
	}

	evt := events.New(SystemBroadcastEvent, map[string]interface{}{
		"title":   req.Title,
		"message": req.Message,
	})
	if err := h.publisher.Publish(c.UserContext(), evt); err != nil {
		return err
	}
	return c.JSON(serverutils.SuccessResponse[any]("Broadcast queued", nil))
}

func (h *NotificationHandler) RegisterRoutes(router fiber.Router) {
	notif := router.Group("/notifications")

	// Registered before the JWT middleware: the handshake carries its own token
	notif.Get("/ws", h.ServeWs)

	notif.Use(serverutils.JwtMiddleware(h.jwtSecret))
	notif.Get("/", h.GetNotifications)
	notif.Get("/unread-count", h.GetUnreadCount)
	notif.Put("/read-all", h.MarkAllAsRead)
	notif.Put("/:id/read", h.MarkAsRead)
	notif.Post("/broadcast", serverutils.RequireRoles(string(entity.UserRoleAdmin)), h.Broadcast)
}
