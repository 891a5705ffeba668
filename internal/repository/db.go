package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// NewDB opens a MySQL connection pool with the given DSN and verifies it is
// reachable.
func NewDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         CHAR(36) PRIMARY KEY,
		email      VARCHAR(320) NOT NULL UNIQUE,
		auth_hash  VARCHAR(255) NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_id               CHAR(36) PRIMARY KEY,
		effort_level          TINYINT NOT NULL,
		skill_level           TINYINT NOT NULL,
		calorie_consciousness TINYINT NOT NULL,
		protein_preference    TINYINT NOT NULL,
		spice_level           TINYINT NOT NULL,
		updated_at            TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS saved_recipes (
		id          CHAR(36) PRIMARY KEY,
		user_id     CHAR(36) NOT NULL,
		recipe_id   VARCHAR(64) NOT NULL,
		recipe_data JSON NULL,
		created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uniq_user_recipe (user_id, recipe_id)
	)`,
	`CREATE TABLE IF NOT EXISTS revoked_tokens (
		jti        CHAR(36) PRIMARY KEY,
		expires_at TIMESTAMP NOT NULL
	)`,
}

// Migrate creates the tables the backend needs if they do not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
