package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

var Migrations = migrate.NewMigrations()

var createQuizTables = []string{
	`CREATE TABLE IF NOT EXISTS quiz_topics (
		position  INTEGER PRIMARY KEY,
		title     TEXT NOT NULL,
		questions JSONB NOT NULL DEFAULT '[]'::jsonb
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_results (
		id               BIGSERIAL PRIMARY KEY,
		username         TEXT NOT NULL,
		username_norm    TEXT NOT NULL,
		topic            TEXT NOT NULL,
		score            INTEGER NOT NULL,
		question_results JSONB NOT NULL DEFAULT '[]'::jsonb,
		recorded_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_results_user ON quiz_results (username_norm, id)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_results_score ON quiz_results (score DESC, id ASC)`,
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			for _, stmt := range createQuizTables {
				if _, err := db.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			return nil
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS quiz_results, quiz_topics`)
			return err
		},
	)
}
