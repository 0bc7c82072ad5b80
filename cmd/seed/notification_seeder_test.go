package main

import (
	"testing"

	adminEvents "bookreview-be/pkg/admin/events"

	"github.com/stretchr/testify/assert"
)

func TestEveryWorkflowEventHasATemplate(t *testing.T) {
	codes := map[string]string{}
	for _, nt := range notificationTypes() {
		codes[nt.Code] = nt.TargetType
	}

	for _, code := range []string{
		adminEvents.AssignmentDeadlineChanged,
		adminEvents.AssignmentReassigned,
		adminEvents.AssignmentCancelled,
		adminEvents.RefundCompleted,
		adminEvents.RefundRejected,
	} {
		assert.Equal(t, "SELF", codes[code], code)
	}
	assert.Equal(t, "ADMIN", codes[adminEvents.RefundRequested])
}
