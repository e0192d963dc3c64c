package main

import (
	"log"

	"studyhub/internal/config"
	"studyhub/internal/db"
)

func main() {
	cfg := config.Load()
	database, err := db.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer database.Close()

	applied, err := db.RunMigrations(database, cfg.MigrationsDir)
	if err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	if len(applied) == 0 {
		log.Printf("database %s is up to date", cfg.DBPath)
		return
	}
	for _, name := range applied {
		log.Printf("applied %s", name)
	}
	log.Printf("%d migrations applied to %s", len(applied), cfg.DBPath)
}
