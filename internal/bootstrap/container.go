package bootstrap

import (
	"context"
	"log"
	"time"

	"bookreview-be/internal/config"
	"bookreview-be/internal/controller"
	"bookreview-be/internal/handler"
	"bookreview-be/internal/pkg/logger"
	"bookreview-be/internal/pkg/mailer"
	"bookreview-be/internal/repository"
	"bookreview-be/internal/repository/implementation"
	"bookreview-be/internal/repository/memory"
	"bookreview-be/internal/repository/unitofwork"
	"bookreview-be/internal/service"
	"bookreview-be/internal/websocket"
	"bookreview-be/pkg/admin/assignment"
	adminEvents "bookreview-be/pkg/admin/events"
	"bookreview-be/pkg/admin/refund"
	"bookreview-be/pkg/payment"

	pktNats "bookreview-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const adminDirectoryTTL = 5 * time.Minute

type Container struct {
	// Controllers
	AssignmentExceptionController controller.IAssignmentExceptionController
	AuthorRefundController        controller.IAuthorRefundController
	AdminRefundController         controller.IAdminRefundController
	AuditLogController            controller.IAuditLogController

	// Background services, started by main
	ConsumerService     service.IConsumerService
	NotificationService *service.NotificationService

	// WebSockets & Notification
	NotificationHandler *handler.NotificationHandler
	WebSocketHub        *websocket.Hub

	closers []func()
}

// NewContainer wires the application. A nil db selects the in-memory store.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{}

	var uowFactory unitofwork.RepositoryFactory
	var notifRepo repository.NotificationRepository
	if db == nil {
		store := memory.NewStore()
		uowFactory = memory.NewRepositoryFactory(store)
		notifRepo = memory.NewNotificationRepository(store)
		sysLogger.Warn("Bootstrap", "Using in-memory storage, data is lost on restart", nil)
	} else {
		uowFactory = unitofwork.NewRepositoryFactory(db)
		notifRepo = implementation.NewNotificationRepository(db)
	}

	// 2. Email: SMTP when configured, optionally queued through the watermill outbox
	var delivery mailer.Sender
	if cfg.SMTP.Host != "" {
		delivery = mailer.NewSMTPSender(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Email, cfg.SMTP.Password, cfg.SMTP.Email, cfg.SMTP.SenderName, sysLogger)
	} else {
		delivery = mailer.NewLogSender(sysLogger)
	}

	emailSender := delivery
	if cfg.Notification.AsyncEmail {
		pubSub := gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			watermill.NewStdLogger(false, false),
		)
		outbox := service.NewEmailOutbox(pubSub, pubSub, cfg.Notification.EmailTopic, delivery, sysLogger)
		emailSender = outbox
		c.ConsumerService = outbox
		c.closers = append(c.closers, func() { _ = pubSub.Close() })
	}

	// 3. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		c.closers = append(c.closers, natsPub.Close)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	} else {
		c.closers = append(c.closers, natsSub.Close)
	}

	rdb := newRedisClient(cfg.App.RedisURL)
	if rdb != nil {
		c.closers = append(c.closers, func() { _ = rdb.Close() })
	}

	gateway, err := payment.New(cfg.Payment.Provider, cfg.Payment.StripeSecretKey, cfg.Payment.MidtransServerKey, cfg.Payment.MidtransIsProduction)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize payment gateway: %v", err)
	}

	// 4. Domain components
	eventPublisher := adminEvents.NewNatsPublisher(natsPub, sysLogger)
	assignmentManager := assignment.NewManager(sysLogger, eventPublisher, emailSender)
	refundPolicy := refund.NewPolicy(cfg.Refund.WindowDays)
	refundProcessor := refund.NewProcessor(sysLogger, eventPublisher, gateway, emailSender)
	admins := service.NewAdminDirectory(uowFactory, adminDirectoryTTL)

	assignmentService := service.NewAssignmentExceptionService(uowFactory, assignmentManager)
	refundService := service.NewRefundService(uowFactory, sysLogger, refundPolicy, refundProcessor, admins, eventPublisher, emailSender)
	auditLogService := service.NewAuditLogService(uowFactory)

	// 5. Notification system
	wsLogger := logger.NewIsolatedLogger(cfg.App.NotificationLog)
	c.WebSocketHub = websocket.NewHub(rdb, wsLogger)
	c.NotificationService = service.NewNotificationService(notifRepo, natsSub, c.WebSocketHub, wsLogger)
	c.NotificationHandler = handler.NewNotificationHandler(c.NotificationService, natsPub, c.WebSocketHub, cfg.Auth.JWTSecret, wsLogger)

	// 6. Controllers
	secret := cfg.Auth.JWTSecret
	c.AssignmentExceptionController = controller.NewAssignmentExceptionController(assignmentService, secret)
	c.AuthorRefundController = controller.NewAuthorRefundController(refundService, secret)
	c.AdminRefundController = controller.NewAdminRefundController(refundService, secret)
	c.AuditLogController = controller.NewAuditLogController(auditLogService, secret)

	sysLogger.Info("Bootstrap", "Container ready", map[string]interface{}{
		"storage":    storageName(db),
		"payment":    gateway.Name(),
		"asyncEmail": cfg.Notification.AsyncEmail,
		"nats":       natsPub != nil,
		"redis":      rdb != nil,
	})
	return c
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

func newRedisClient(url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, websocket fan-out stays local: %v", err)
		_ = rdb.Close()
		return nil
	}
	return rdb
}

func storageName(db *gorm.DB) string {
	if db == nil {
		return "memory"
	}
	return "postgres"
}
