package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"streamrelay/pkg/database/migrations"
)

// Connect opens the Postgres pool and verifies it with a ping. The pool is
// capped at 10 connections; additional callers wait for a free slot rather
// than failing immediately.
func Connect(connStr string) *sql.DB {
	if connStr == "" {
		log.Println("[DB] warning: DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("[DB] open connection:", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(3 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	if err = db.Ping(); err != nil {
		log.Fatal("[DB] ping:", err)
	}

	log.Println("[DB] PostgreSQL connection established")
	return db
}

// Migrate applies the embedded goose migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(db, "."); err != nil {
		return err
	}
	log.Println("[DB] schema up to date")
	return nil
}
