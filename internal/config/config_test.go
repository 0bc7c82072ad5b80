package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REFUND_WINDOW_DAYS", "")
	t.Setenv("PAYMENT_PROVIDER", "midtrans")
	t.Setenv("EMAIL_ASYNC", "false")

	cfg := Load()

	assert.Equal(t, 30, cfg.Refund.WindowDays)
	assert.Equal(t, "midtrans", cfg.Payment.Provider)
	assert.False(t, cfg.Notification.AsyncEmail)
	assert.Equal(t, "EMAIL_OUTBOX", cfg.Notification.EmailTopic)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REFUND_WINDOW_DAYS", "14")
	t.Setenv("SMTP_PORT", "not-a-number")

	cfg := Load()

	assert.Equal(t, 14, cfg.Refund.WindowDays)
	assert.Equal(t, 587, cfg.SMTP.Port)
}
