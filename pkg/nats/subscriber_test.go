package nats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeStripsSubjectPrefixAndReadsTimestamp(t *testing.T) {
	evt, err := decode("events.REFUND_REQUESTED", []byte(`{"user_id":"abc","occurred_at":"2024-01-10T00:00:00Z"}`))
	require.NoError(t, err)

	assert.Equal(t, "REFUND_REQUESTED", evt.EventType())
	assert.Equal(t, "abc", evt.Payload()["user_id"])
	assert.True(t, evt.Timestamp().Equal(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)))
}

func TestDecodeRejectsMalformedPayload(t *testing.T) {
	_, err := decode("events.X", []byte(`not-json`))
	assert.Error(t, err)
}
