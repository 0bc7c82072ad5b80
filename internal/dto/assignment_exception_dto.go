package dto

import (
	"time"

	"github.com/google/uuid"
)

type ExtendDeadlineRequest struct {
	ExtensionHours int    `json:"extensionHours" validate:"required,min=1,max=8760"`
	Reason         string `json:"reason" validate:"required"`
	Notes          string `json:"notes,omitempty"`
}

type ShortenDeadlineRequest struct {
	ReductionHours int    `json:"reductionHours" validate:"required,min=1,max=8760"`
	Reason         string `json:"reason" validate:"required"`
	Notes          string `json:"notes,omitempty"`
}

// DeadlineChangeResponse carries extensionHours or reductionHours depending on the operation.
type DeadlineChangeResponse struct {
	AssignmentId   uuid.UUID `json:"assignmentId"`
	OldDeadline    time.Time `json:"oldDeadline"`
	NewDeadline    time.Time `json:"newDeadline"`
	ExtensionHours int       `json:"extensionHours,omitempty"`
	ReductionHours int       `json:"reductionHours,omitempty"`
	Reason         string    `json:"reason"`
}

type ReassignReaderRequest struct {
	TargetBookId uuid.UUID `json:"targetBookId" validate:"required"`
	Reason       string    `json:"reason" validate:"required"`
	Notes        string    `json:"notes,omitempty"`
}

type ReassignReaderResponse struct {
	OldAssignmentId uuid.UUID `json:"oldAssignmentId"`
	NewAssignmentId uuid.UUID `json:"newAssignmentId"`
	OldBookId       uuid.UUID `json:"oldBookId"`
	NewBookId       uuid.UUID `json:"newBookId"`
	Reason          string    `json:"reason"`
}

type BulkReassignRequest struct {
	AssignmentIds []uuid.UUID `json:"assignmentIds" validate:"required,min=1,dive,required"`
	TargetBookId  uuid.UUID   `json:"targetBookId" validate:"required"`
	Reason        string      `json:"reason" validate:"required"`
	Notes         string      `json:"notes,omitempty"`
}

type BulkReassignItem struct {
	AssignmentId uuid.UUID `json:"assignmentId"`
	Success      bool      `json:"success"`
	Error        string    `json:"error,omitempty"`
}

type BulkReassignResponse struct {
	TotalProcessed int                `json:"totalProcessed"`
	SuccessCount   int                `json:"successCount"`
	FailureCount   int                `json:"failureCount"`
	Results        []BulkReassignItem `json:"results"`
}

type CancelAssignmentRequest struct {
	Reason        string `json:"reason" validate:"required"`
	RefundCredits bool   `json:"refundCredits"`
	Notes         string `json:"notes,omitempty"`
}

type CancelAssignmentResponse struct {
	AssignmentId    uuid.UUID `json:"assignmentId"`
	PreviousStatus  string    `json:"previousStatus"`
	NewStatus       string    `json:"newStatus"`
	Reason          string    `json:"reason"`
	CreditsRefunded int       `json:"creditsRefunded"`
}

type CorrectAssignmentErrorRequest struct {
	ErrorType        string `json:"errorType" validate:"required,oneof=WRONG_FORMAT WRONG_BOOK DUPLICATE MISSING_CREDITS OTHER"`
	CorrectionAction string `json:"correctionAction" validate:"required"`
	Description      string `json:"description" validate:"required"`
	Notes            string `json:"notes,omitempty"`
}

type CorrectAssignmentErrorResponse struct {
	AssignmentId     uuid.UUID `json:"assignmentId"`
	ErrorType        string    `json:"errorType"`
	CorrectionAction string    `json:"correctionAction"`
	Description      string    `json:"description"`
	Result           string    `json:"result"`
}

type AssignmentExceptionResponse struct {
	AssignmentId         uuid.UUID  `json:"assignmentId"`
	BookId               uuid.UUID  `json:"bookId"`
	BookTitle            string     `json:"bookTitle"`
	ReaderProfileId      uuid.UUID  `json:"readerProfileId"`
	ReaderName           string     `json:"readerName"`
	Status               string     `json:"status"`
	ExceptionType        string     `json:"exceptionType"`
	DeadlineAt           *time.Time `json:"deadlineAt,omitempty"`
	DeadlineExtendedAt   *time.Time `json:"deadlineExtendedAt,omitempty"`
	ExtensionReason      string     `json:"extensionReason,omitempty"`
	ReassignedAt         *time.Time `json:"reassignedAt,omitempty"`
	ReassignmentReason   string     `json:"reassignmentReason,omitempty"`
	CancellationReason   string     `json:"cancellationReason,omitempty"`
	IsReassignment       bool       `json:"isReassignment"`
	OriginalAssignmentId *uuid.UUID `json:"originalAssignmentId,omitempty"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}
