package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS reports (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name TEXT,
		phone TEXT,
		email TEXT,
		description TEXT,
		issue_type TEXT,
		image_url TEXT,
		image_path TEXT,
		latitude DOUBLE PRECISION,
		longitude DOUBLE PRECISION,
		resolved BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'reports' AND column_name = 'image_path') THEN
			ALTER TABLE reports ADD COLUMN image_path TEXT;
		END IF;
		IF NOT EXISTS (SELECT 1 FROM information_schema.columns WHERE table_name = 'reports' AND column_name = 'issue_type') THEN
			ALTER TABLE reports ADD COLUMN issue_type TEXT;
		END IF;
	END
	$$;`,
	`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports (created_at DESC);`,
	`CREATE INDEX IF NOT EXISTS idx_reports_resolved ON reports (resolved);`,
}

// changeFeedStatements install the trigger behind the realtime feed. The
// channel name is substituted for {{channel}}.
var changeFeedStatements = []string{
	`CREATE OR REPLACE FUNCTION notify_reports_change() RETURNS trigger AS $$
	DECLARE
		row_id UUID;
	BEGIN
		IF TG_OP = 'DELETE' THEN
			row_id := OLD.id;
		ELSE
			row_id := NEW.id;
		END IF;
		PERFORM pg_notify('{{channel}}', json_build_object('op', TG_OP, 'id', row_id)::text);
		RETURN NULL;
	END;
	$$ LANGUAGE plpgsql;`,
	`DROP TRIGGER IF EXISTS reports_change_notify ON reports;`,
	`CREATE TRIGGER reports_change_notify
		AFTER INSERT OR UPDATE OR DELETE ON reports
		FOR EACH ROW EXECUTE FUNCTION notify_reports_change();`,
}

func runMigrations(db *gorm.DB, channel string) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	for i, stmt := range changeFeedStatements {
		stmt = strings.ReplaceAll(stmt, "{{channel}}", channel)
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("change feed migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
