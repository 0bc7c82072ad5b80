package entity

import (
	"time"

	"github.com/google/uuid"
)

type AuditSeverity string

const (
	AuditSeverityInfo    AuditSeverity = "INFO"
	AuditSeverityWarning AuditSeverity = "WARNING"
)

const (
	AuditActionDeadlineExtended    = "ASSIGNMENT_DEADLINE_EXTENDED"
	AuditActionDeadlineShortened   = "ASSIGNMENT_DEADLINE_SHORTENED"
	AuditActionReaderReassigned    = "ASSIGNMENT_REASSIGNED"
	AuditActionBulkReassigned      = "ASSIGNMENT_BULK_REASSIGNED"
	AuditActionAssignmentCancelled = "ASSIGNMENT_CANCELLED"
	AuditActionAssignmentCorrected = "ASSIGNMENT_ERROR_CORRECTED"
	AuditActionRefundRequested     = "REFUND_REQUESTED"
	AuditActionRefundCancelled     = "REFUND_REQUEST_CANCELLED"
	AuditActionRefundRejected      = "REFUND_REJECTED"
	AuditActionRefundCompleted     = "REFUND_COMPLETED"
	AuditActionRefundReverted      = "REFUND_REVERTED"
)

// AuditLog is an append-only record of an administrative action.
type AuditLog struct {
	Id         uuid.UUID
	ActorId    *uuid.UUID
	Action     string
	Severity   AuditSeverity
	EntityType string
	EntityId   string
	Details    map[string]interface{}
	CreatedAt  time.Time
}
