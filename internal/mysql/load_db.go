package mysql

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cenkalti/backoff/v4"
	_ "github.com/go-sql-driver/mysql"
)

func LoadDB() *sql.DB {
	db, err := sql.Open("mysql", os.Getenv("MYSQL_DSN"))
	if err != nil {
		log.Fatal(err)
	}
	if err := pingWithRetry(db); err != nil {
		log.Fatal("Cannot connect to DB:", err)
	}
	if err := exec(db); err != nil {
		log.Fatal("Cannot create tables:", err)
	}
	return db
}

// pingWithRetry keeps pinging for a short while so the server survives
// the DB container coming up a few seconds later than us.
func pingWithRetry(db *sql.DB) error {
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 30 * time.Second
	return backoff.Retry(db.Ping, b)
}

func exec(db *sql.DB) error {
	files := []string{
		"./internal/mysql/users.sql",
		"./internal/mysql/sessions.sql",
		"./internal/mysql/friends.sql",
		"./internal/mysql/messages.sql",
		"./internal/mysql/notifications.sql",
	}
	for _, file := range files {
		query, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}
		if _, err := db.Exec(string(query)); err != nil {
			return fmt.Errorf("failed to execute %s: %w", file, err)
		}
	}
	return nil
}
