package specification

import (
	"bookreview-be/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByStatuses struct {
	Statuses []string
}

func (s ByStatuses) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status IN ?", s.Statuses)
}

// OpenRefundFor matches the non-terminal request of a purchase.
func OpenRefundFor(creditPurchaseId uuid.UUID) []Specification {
	statuses := make([]string, 0, len(entity.OpenRefundStatuses))
	for _, st := range entity.OpenRefundStatuses {
		statuses = append(statuses, string(st))
	}
	return []Specification{
		Filter("credit_purchase_id", creditPurchaseId),
		ByStatuses{Statuses: statuses},
	}
}

type WithRefundDetails struct{}

func (s WithRefundDetails) Apply(db *gorm.DB) *gorm.DB {
	return db.Preload("CreditPurchase").Preload("AuthorProfile.User")
}

// Page converts a 1-based page into a Pagination spec.
func Page(page, limit int) Specification {
	if page < 1 {
		page = 1
	}
	return Pagination{Limit: limit, Offset: (page - 1) * limit}
}
