package main

import (
	"bookreview-be/internal/model"
	adminEvents "bookreview-be/pkg/admin/events"

	"github.com/fatih/color"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var webAndEmail = datatypes.JSON([]byte(`["web", "email"]`))

// notificationTypes maps every workflow event to its in-app template.
func notificationTypes() []model.NotificationType {
	return []model.NotificationType{
		{
			Code:        adminEvents.AssignmentDeadlineChanged,
			DisplayName: "Deadline Updated",
			Template:    "Your deadline for \"{book_title}\" was {direction} by {hours}h. New deadline: {new_deadline}",
			TargetType:  "SELF",
			Priority:    "HIGH",
		},
		{
			Code:        adminEvents.AssignmentReassigned,
			DisplayName: "Assignment Moved",
			Template:    "Your assignment for \"{old_book_title}\" was moved to \"{new_book_title}\"",
			TargetType:  "SELF",
			Priority:    "HIGH",
		},
		{
			Code:        adminEvents.AssignmentCancelled,
			DisplayName: "Assignment Cancelled",
			Template:    "Your assignment for \"{book_title}\" was cancelled: {reason}",
			TargetType:  "SELF",
			Priority:    "HIGH",
		},
		{
			Code:        adminEvents.RefundRequested,
			DisplayName: "Refund Requested",
			Template:    "New refund request for {credits} credits ({amount})",
			TargetType:  "ADMIN",
			Priority:    "MEDIUM",
		},
		{
			Code:        adminEvents.RefundCompleted,
			DisplayName: "Refund Completed",
			Template:    "Your refund of {amount} has been processed",
			TargetType:  "SELF",
			Priority:    "MEDIUM",
		},
		{
			Code:        adminEvents.RefundRejected,
			DisplayName: "Refund Rejected",
			Template:    "Your refund request was rejected: {reason}",
			TargetType:  "SELF",
			Priority:    "MEDIUM",
		},
		{
			Code:        "SYSTEM_BROADCAST",
			DisplayName: "Announcement",
			Template:    "{title}: {message}",
			TargetType:  "BROADCAST",
			Priority:    "LOW",
		},
	}
}

// SeedNotificationTypes upserts by code so re-running picks up template edits.
func SeedNotificationTypes(db *gorm.DB) error {
	for _, t := range notificationTypes() {
		t.IsActive = true
		t.Channels = webAndEmail
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{"display_name", "template", "target_type", "priority", "channels", "is_active"}),
		}).Create(&t).Error
		if err != nil {
			color.Red("  failed %s: %v", t.Code, err)
			return err
		}
		color.Green("  seeded %s", t.Code)
	}
	return nil
}
