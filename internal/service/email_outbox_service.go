package service

import (
	"context"
	"encoding/json"
	"time"

	"bookreview-be/internal/pkg/logger"
	"bookreview-be/internal/pkg/mailer"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const emailDeliveryAttempts = 3

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// EmailOutbox queues emails on a watermill topic so request handlers never wait on SMTP.
// It implements mailer.Sender on the publish side and IConsumerService on the delivery side.
type EmailOutbox struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	topicName  string
	delivery   mailer.Sender
	logger     logger.ILogger
	retryDelay time.Duration
}

func NewEmailOutbox(publisher message.Publisher, subscriber message.Subscriber, topicName string, delivery mailer.Sender, log logger.ILogger) *EmailOutbox {
	return &EmailOutbox{
		publisher:  publisher,
		subscriber: subscriber,
		topicName:  topicName,
		delivery:   delivery,
		logger:     log,
		retryDelay: 2 * time.Second,
	}
}

func (o *EmailOutbox) Send(ctx context.Context, msg mailer.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return o.publisher.Publish(o.topicName, message.NewMessage(watermill.NewUUID(), payload))
}

func (o *EmailOutbox) Consume(ctx context.Context) error {
	messages, err := o.subscriber.Subscribe(ctx, o.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			o.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (o *EmailOutbox) processMessage(ctx context.Context, msg *message.Message) {
	// Always Ack: a poison or undeliverable email must not block the topic
	defer msg.Ack()

	var email mailer.Message
	if err := json.Unmarshal(msg.Payload, &email); err != nil {
		o.logger.Error("EMAIL_OUTBOX", "Dropping malformed email message", map[string]interface{}{
			"messageId": msg.UUID,
			"error":     err.Error(),
		})
		return
	}

	var err error
	for attempt := 1; attempt <= emailDeliveryAttempts; attempt++ {
		if err = o.delivery.Send(ctx, email); err == nil {
			o.logger.Debug("EMAIL_OUTBOX", "Email delivered", map[string]interface{}{"to": email.To, "subject": email.Subject})
			return
		}
		if attempt < emailDeliveryAttempts {
			select {
			case <-ctx.Done():
				return
			case <-time.After(o.retryDelay * time.Duration(attempt)):
			}
		}
	}

	o.logger.Error("EMAIL_OUTBOX", "Giving up on email", map[string]interface{}{
		"to":      email.To,
		"subject": email.Subject,
		"error":   err.Error(),
	})
}
