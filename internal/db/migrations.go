package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE EXTENSION IF NOT EXISTS "pgcrypto";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'assignment_modality') THEN
			CREATE TYPE assignment_modality AS ENUM ('CARGO', 'TURNO');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'assignment_shift') THEN
			CREATE TYPE assignment_shift AS ENUM ('diurno', 'nocturno');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS guides (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(255) NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS vehicles (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		plate_number VARCHAR(32),
		brand VARCHAR(64),
		model VARCHAR(64)
	);`,
	`CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		first_name VARCHAR(128),
		last_name VARCHAR(128),
		document_number VARCHAR(32),
		status VARCHAR(32) NOT NULL DEFAULT 'activo',
		guide_id UUID REFERENCES guides(id) ON DELETE SET NULL,
		guide_assigned BOOLEAN NOT NULL DEFAULT FALSE,
		school_start_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_drivers_status ON drivers (status);`,
	`CREATE INDEX IF NOT EXISTS idx_drivers_guide_id ON drivers (guide_id);`,
	`CREATE INDEX IF NOT EXISTS idx_drivers_document_number ON drivers (document_number);`,
	`CREATE TABLE IF NOT EXISTS vehicle_assignments (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		driver_id UUID NOT NULL REFERENCES drivers(id) ON DELETE CASCADE,
		vehicle_id UUID REFERENCES vehicles(id) ON DELETE SET NULL,
		modality assignment_modality NOT NULL,
		shift assignment_shift,
		status VARCHAR(32) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_assignments_driver_id ON vehicle_assignments (driver_id);`,
	`CREATE INDEX IF NOT EXISTS idx_vehicle_assignments_status ON vehicle_assignments (status);`,
	`CREATE TABLE IF NOT EXISTS implemented_actions (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		code VARCHAR(64) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL
	);`,
	`INSERT INTO implemented_actions (code, name)
		VALUES ('capacitacion_escuela', 'Capacitación escuela')
		ON CONFLICT (code) DO NOTHING;`,
	`CREATE TABLE IF NOT EXISTS weekly_history_records (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		driver_id UUID NOT NULL REFERENCES drivers(id) ON DELETE CASCADE,
		guide_id UUID NOT NULL REFERENCES guides(id) ON DELETE CASCADE,
		week_label VARCHAR(8) NOT NULL,
		call_date TIMESTAMPTZ,
		action_id UUID REFERENCES implemented_actions(id) ON DELETE SET NULL,
		cash_earnings DECIMAL(12,2),
		app_earnings DECIMAL(12,2),
		total_earnings DECIMAL(12,2),
		tier_override VARCHAR(16),
		school_started BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uniq_weekly_record_driver_week
		ON weekly_history_records (driver_id, week_label);`,
	`CREATE INDEX IF NOT EXISTS idx_weekly_records_week_label ON weekly_history_records (week_label);`,
	`CREATE INDEX IF NOT EXISTS idx_weekly_records_guide_id ON weekly_history_records (guide_id);`,
	`CREATE TABLE IF NOT EXISTS weekly_record_annotations (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		record_id UUID NOT NULL REFERENCES weekly_history_records(id) ON DELETE CASCADE,
		text TEXT NOT NULL,
		author_id UUID NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_record_annotations_record_id ON weekly_record_annotations (record_id);`,
	`CREATE TABLE IF NOT EXISTS tracking_tier_rules (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		position INT NOT NULL,
		lower_bound DECIMAL(12,2) NOT NULL DEFAULT 0,
		upper_bound DECIMAL(12,2),
		tier VARCHAR(16) NOT NULL,
		color VARCHAR(16) NOT NULL,
		shift assignment_shift
	);`,
	`INSERT INTO tracking_tier_rules (position, lower_bound, upper_bound, tier, color, shift)
		SELECT * FROM (VALUES
			(1, 0.00::DECIMAL(12,2), 149999.99::DECIMAL(12,2), 'DIARIO', '#e74c3c', NULL::assignment_shift),
			(2, 150000.00::DECIMAL(12,2), 249999.99::DECIMAL(12,2), 'CERCANO', '#f39c12', NULL::assignment_shift),
			(3, 250000.00::DECIMAL(12,2), NULL::DECIMAL(12,2), 'SEMANAL', '#27ae60', NULL::assignment_shift)
		) AS seed(position, lower_bound, upper_bound, tier, color, shift)
		WHERE NOT EXISTS (SELECT 1 FROM tracking_tier_rules);`,
	`CREATE TABLE IF NOT EXISTS earnings_feed (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		doc_number VARCHAR(32),
		full_name VARCHAR(255),
		cash_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
		app_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
		transaction_at TIMESTAMPTZ NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS idx_earnings_feed_transaction_at ON earnings_feed (transaction_at);`,
	`CREATE INDEX IF NOT EXISTS idx_earnings_feed_doc_number ON earnings_feed (doc_number);`,
	`CREATE OR REPLACE FUNCTION set_row_updated_at()
	RETURNS TRIGGER AS $$
	BEGIN
		NEW.updated_at = NOW();
		RETURN NEW;
	END;
	$$ LANGUAGE plpgsql;`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_drivers_updated_at') THEN
			CREATE TRIGGER trg_drivers_updated_at
				BEFORE UPDATE ON drivers
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_trigger WHERE tgname = 'trg_weekly_records_updated_at') THEN
			CREATE TRIGGER trg_weekly_records_updated_at
				BEFORE UPDATE ON weekly_history_records
				FOR EACH ROW
				EXECUTE PROCEDURE set_row_updated_at();
		END IF;
	END
	$$;`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
