package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type AssignmentStatus string
type BookFormat string

const (
	AssignmentStatusWaiting    AssignmentStatus = "WAITING"
	AssignmentStatusScheduled  AssignmentStatus = "SCHEDULED"
	AssignmentStatusApproved   AssignmentStatus = "APPROVED"
	AssignmentStatusInProgress AssignmentStatus = "IN_PROGRESS"
	AssignmentStatusSubmitted  AssignmentStatus = "SUBMITTED"
	AssignmentStatusCompleted  AssignmentStatus = "COMPLETED"
	AssignmentStatusExpired    AssignmentStatus = "EXPIRED"
	AssignmentStatusCancelled  AssignmentStatus = "CANCELLED"
	AssignmentStatusReassigned AssignmentStatus = "REASSIGNED"

	BookFormatEbook     BookFormat = "EBOOK"
	BookFormatAudiobook BookFormat = "AUDIOBOOK"
)

var (
	ErrInvalidStatusTransition = errors.New("assignment status does not allow this change")
	ErrVersionConflict         = errors.New("assignment was modified concurrently, reload and retry")
)

// allowedTransitions lists, per status, the statuses an administrator may move
// an assignment to. Statuses absent from the map are terminal.
var allowedTransitions = map[AssignmentStatus][]AssignmentStatus{
	AssignmentStatusWaiting: {
		AssignmentStatusScheduled, AssignmentStatusApproved, AssignmentStatusCancelled,
		AssignmentStatusReassigned, AssignmentStatusExpired,
	},
	AssignmentStatusScheduled: {
		AssignmentStatusApproved, AssignmentStatusCancelled, AssignmentStatusReassigned, AssignmentStatusExpired,
	},
	AssignmentStatusApproved: {
		AssignmentStatusInProgress, AssignmentStatusCancelled, AssignmentStatusReassigned, AssignmentStatusExpired,
	},
	AssignmentStatusInProgress: {
		AssignmentStatusSubmitted, AssignmentStatusCancelled, AssignmentStatusReassigned, AssignmentStatusExpired,
	},
	AssignmentStatusSubmitted: {
		AssignmentStatusCompleted, AssignmentStatusCancelled, AssignmentStatusReassigned,
	},
}

func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusWaiting, AssignmentStatusScheduled, AssignmentStatusApproved,
		AssignmentStatusInProgress, AssignmentStatusSubmitted, AssignmentStatusCompleted,
		AssignmentStatusExpired, AssignmentStatusCancelled, AssignmentStatusReassigned:
		return true
	default:
		return false
	}
}

// IsActive reports whether the reader still holds the assignment.
func (s AssignmentStatus) IsActive() bool {
	_, ok := allowedTransitions[s]
	return ok
}

func (s AssignmentStatus) IsTerminal() bool {
	return !s.IsActive()
}

func (s AssignmentStatus) CanTransitionTo(next AssignmentStatus) bool {
	for _, candidate := range allowedTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CreditsForFormat is the fixed pricing table used when an assignment format changes.
func CreditsForFormat(format BookFormat) int {
	if format == BookFormatAudiobook {
		return 2
	}
	return 1
}

func (f BookFormat) Toggle() BookFormat {
	if f == BookFormatAudiobook {
		return BookFormatEbook
	}
	return BookFormatAudiobook
}

type ReaderAssignment struct {
	Id                   uuid.UUID
	BookId               uuid.UUID
	ReaderProfileId      uuid.UUID
	OriginalAssignmentId *uuid.UUID
	Status               AssignmentStatus
	FormatAssigned       BookFormat
	CreditsValue         int
	DeadlineAt           *time.Time
	DeadlineExtendedAt   *time.Time
	ExtensionReason      string
	ReassignedAt         *time.Time
	ReassignedBy         *uuid.UUID
	ReassignmentReason   string
	CancelledBy          *uuid.UUID
	CancellationReason   string
	IsReassignment       bool
	Version              int
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// Joined on demand
	Book          *Book
	ReaderProfile *ReaderProfile
}

// HasException reports whether an administrator correction left a marker on the row.
func (a *ReaderAssignment) HasException() bool {
	return a.DeadlineExtendedAt != nil || a.ReassignedAt != nil || a.CancelledBy != nil
}
