package main

import (
	"log"

	"bookreview-be/internal/config"
	"bookreview-be/pkg/database"

	"github.com/fatih/color"
)

func main() {
	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, false)
	if err != nil {
		log.Fatal("Error: Failed to connect to database: ", err)
	}

	color.Cyan("Seeding notification types...")
	if err := SeedNotificationTypes(db); err != nil {
		log.Fatal(err)
	}
	color.Green("Seeding completed")
}
