package specification

import (
	"gorm.io/gorm"
)

// HasExceptionMarker keeps assignments touched by an administrative correction.
type HasExceptionMarker struct{}

func (s HasExceptionMarker) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("deadline_extended_at IS NOT NULL OR reassigned_at IS NOT NULL OR cancelled_by IS NOT NULL")
}

// WithAssignmentDetails preloads the book (with its author) and the reader (with its user).
type WithAssignmentDetails struct{}

func (s WithAssignmentDetails) Apply(db *gorm.DB) *gorm.DB {
	return db.Preload("Book.AuthorProfile.User").Preload("ReaderProfile.User")
}

// ByVersion is the optimistic concurrency guard for updates.
type ByVersion struct {
	Version int
}

func (s ByVersion) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("version = ?", s.Version)
}
