package main

import (
	"log"

	"healthassist-be/internal/config"
	"healthassist-be/pkg/database"
)

func main() {
	// 1. Load Configuration (.env + environment)
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect; NewGormDBFromDSN runs AutoMigrate for the chat tables
	log.Println("Running chat schema migration...")
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, cfg.IsProduction())
	if err != nil {
		log.Fatal("Error: Migration failed: ", err)
	}

	// 3. Report what exists
	for _, table := range []string{"chat_sessions", "chat_messages"} {
		if !db.Migrator().HasTable(table) {
			log.Fatalf("Error: table %s missing after migration", table)
		}
		log.Printf("Table ready: %s", table)
	}

	log.Println("Migration complete.")
}
