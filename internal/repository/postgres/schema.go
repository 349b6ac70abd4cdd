package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		password_hash TEXT NOT NULL DEFAULT '',
		street TEXT NOT NULL,
		number INT NOT NULL,
		postal_code INT NOT NULL,
		city TEXT NOT NULL,
		role TEXT NOT NULL,
		status TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sites (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		responsible_id BIGINT NOT NULL REFERENCES users(id),
		street TEXT NOT NULL,
		number INT NOT NULL,
		postal_code INT NOT NULL,
		city TEXT NOT NULL,
		status TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS machines (
		id BIGSERIAL PRIMARY KEY,
		site_id BIGINT NOT NULL REFERENCES sites(id),
		technician_id BIGINT NOT NULL REFERENCES users(id),
		code TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT '',
		product TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		production_status TEXT NOT NULL,
		last_maintenance TIMESTAMPTZ,
		next_maintenance TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS maintenances (
		id BIGSERIAL PRIMARY KEY,
		machine_id BIGINT NOT NULL REFERENCES machines(id),
		technician_id BIGINT NOT NULL REFERENCES users(id),
		planned_date TIMESTAMPTZ NOT NULL,
		start_time TIMESTAMPTZ,
		end_time TIMESTAMPTZ,
		reason TEXT NOT NULL,
		comments TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS reports (
		id BIGSERIAL PRIMARY KEY,
		maintenance_id BIGINT NOT NULL REFERENCES maintenances(id),
		technician_id BIGINT NOT NULL REFERENCES users(id),
		site_id BIGINT NOT NULL REFERENCES sites(id),
		period_start TIMESTAMPTZ NOT NULL,
		period_end TIMESTAMPTZ NOT NULL,
		reason TEXT NOT NULL,
		remarks TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id BIGSERIAL PRIMARY KEY,
		recipient_id BIGINT NOT NULL REFERENCES users(id),
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		read BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_machines_site ON machines(site_id)`,
	`CREATE INDEX IF NOT EXISTS idx_maintenances_machine ON maintenances(machine_id)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, read)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_created ON notifications(created_at)`,
}

// Migrate creates the application tables when they do not exist yet.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
