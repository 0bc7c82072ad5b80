package main

import (
	"log"

	"bookreview-be/internal/config"
	"bookreview-be/internal/model"
	"bookreview-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database: ", err)
	}

	color.Cyan("Step 1: Extensions")
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
		color.Yellow("Warn: pgcrypto: %v. Continuing...", err)
	}

	models := []interface{}{
		&model.User{},
		&model.ReaderProfile{},
		&model.AuthorProfile{},
		&model.Book{},
		&model.CreditPurchase{},
		&model.ReaderAssignment{},
		&model.RefundRequest{},
		&model.AuditLog{},
		&model.NotificationType{},
		&model.Notification{},
	}

	color.Cyan("Step 2: AutoMigrate (%d tables)", len(models))
	for _, m := range models {
		if err := db.AutoMigrate(m); err != nil {
			color.Red("Error: AutoMigrate %T failed: %v", m, err)
			log.Fatal(err)
		}
		color.Green("  ok %T", m)
	}

	color.Cyan("Step 3: Constraints")
	postMigrationSQL := []string{
		// At most one open refund request per purchase
		`CREATE UNIQUE INDEX IF NOT EXISTS ux_refund_requests_open_purchase
		 ON refund_requests (credit_purchase_id)
		 WHERE status IN ('PENDING', 'APPROVED', 'PARTIALLY_APPROVED', 'PROCESSING');`,
		`CREATE INDEX IF NOT EXISTS ix_audit_logs_entity ON audit_logs (entity_type, entity_id);`,
	}
	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			color.Yellow("Warn: post-migration SQL failed: %v", err)
		}
	}

	color.Green("Database migration completed")
}
