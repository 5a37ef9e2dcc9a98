package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"unihub/internal/config"
	"unihub/internal/database/migrations"
)

func main() {
	command := flag.String("command", "", "Migration command: up, down")
	flag.Parse()

	if *command == "" {
		fmt.Println("Usage: go run cmd/migrate/main.go -command [up|down]")
		fmt.Println("Commands:")
		fmt.Println("  up   - Apply all pending migrations")
		fmt.Println("  down - Roll back the most recent migration")
		os.Exit(1)
	}

	cfg := config.NewConfig()

	switch *command {
	case "up":
		if err := migrations.Up(cfg.MigrateURL()); err != nil {
			log.Fatalf("Migration up failed: %v", err)
		}
		fmt.Println("Migrations applied successfully")

	case "down":
		if err := migrations.Down(cfg.MigrateURL()); err != nil {
			log.Fatalf("Migration down failed: %v", err)
		}
		fmt.Println("Migration rolled back successfully")

	default:
		log.Fatalf("Unknown command: %s", *command)
	}
}
