package migrate

import (
	"context"
	"database/sql"
	"fmt"
)

// sqliteSchema mirrors the goose migrations for the sqlite driver used in local
// development and tests. Enum columns become TEXT; partial indexes carry over.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS assets (
		id TEXT PRIMARY KEY,
		asset_code TEXT,
		name TEXT NOT NULL,
		category TEXT NOT NULL,
		model TEXT NOT NULL,
		serial_number TEXT,
		barcode TEXT,
		specification TEXT,
		description TEXT,
		purchase_date DATE,
		asset_condition TEXT NOT NULL DEFAULT 'good',
		status TEXT NOT NULL DEFAULT 'available',
		created_by TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_assets_asset_code ON assets (asset_code) WHERE asset_code IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_assets_serial_number ON assets (serial_number) WHERE serial_number IS NOT NULL`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_assets_barcode ON assets (barcode) WHERE barcode IS NOT NULL`,
	`CREATE TABLE IF NOT EXISTS asset_requests (
		id TEXT PRIMARY KEY,
		requester_id TEXT NOT NULL,
		category TEXT NOT NULL,
		assigned_asset_id TEXT REFERENCES assets (id),
		request_date DATE NOT NULL,
		return_date DATE NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		approved_by TEXT,
		approval_date DATETIME,
		remarks TEXT NOT NULL DEFAULT '',
		decision_remarks TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_asset_requests_active_asset ON asset_requests (assigned_asset_id)
		WHERE assigned_asset_id IS NOT NULL AND status IN ('pending', 'approved')`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_asset_requests_pending_category ON asset_requests (requester_id, category)
		WHERE status = 'pending'`,
	`CREATE INDEX IF NOT EXISTS ix_asset_requests_requester ON asset_requests (requester_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS asset_returns (
		id TEXT PRIMARY KEY,
		request_id TEXT NOT NULL REFERENCES asset_requests (id),
		asset_id TEXT NOT NULL REFERENCES assets (id),
		returned_at DATETIME NOT NULL,
		condition_on_return TEXT NOT NULL,
		received_by TEXT NOT NULL,
		remarks TEXT NOT NULL DEFAULT '',
		is_current BOOLEAN NOT NULL DEFAULT 1,
		supersedes_id TEXT REFERENCES asset_returns (id),
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_asset_returns_current ON asset_returns (request_id) WHERE is_current`,
	`CREATE TABLE IF NOT EXISTS maintenance_records (
		id TEXT PRIMARY KEY,
		asset_id TEXT NOT NULL REFERENCES assets (id),
		maintenance_type TEXT NOT NULL,
		description TEXT NOT NULL,
		maintenance_date DATE NOT NULL,
		performed_by TEXT NOT NULL,
		cost NUMERIC NOT NULL DEFAULT 0,
		remarks TEXT NOT NULL DEFAULT '',
		created_by TEXT NOT NULL,
		completed_at DATETIME,
		completed_by TEXT,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS lifecycle_events (
		id TEXT PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_type TEXT NOT NULL,
		aggregate_id TEXT NOT NULL,
		actor_id TEXT,
		payload TEXT NOT NULL DEFAULT '{}',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS ix_lifecycle_events_aggregate ON lifecycle_events (aggregate_type, aggregate_id, created_at)`,
}

// ApplySQLite creates the lending schema on a sqlite database. It is safe to run
// repeatedly.
func ApplySQLite(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("db is required")
	}
	for _, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply sqlite schema: %w", err)
		}
	}
	return nil
}
