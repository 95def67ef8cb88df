package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"quiz-console/internal/domain"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// CatalogLoader loads topic groups from the quiz_topics table; questions are stored as JSONB.
type CatalogLoader struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewCatalogLoader(pool *pgxpool.Pool, logger *slog.Logger) *CatalogLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogLoader{pool: pool, logger: logger}
}

func (l *CatalogLoader) LoadCatalog(ctx context.Context) ([]domain.QuizTopic, error) {
	rows, err := l.pool.Query(ctx, `SELECT position, title, questions FROM quiz_topics ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defer rows.Close()

	topics := make([]domain.QuizTopic, 0)
	for rows.Next() {
		var (
			position int
			title    string
			raw      []byte
		)
		if err := rows.Scan(&position, &title, &raw); err != nil {
			return nil, fmt.Errorf("scan topic: %w", err)
		}
		var entries []json.RawMessage
		if err := json.Unmarshal(raw, &entries); err != nil {
			l.logger.Warn("skipping malformed catalog topic", "position", position, "title", title, "err", err)
			continue
		}
		questions, bad := domain.DecodeQuestions(entries)
		for _, q := range bad {
			l.logger.Warn("skipping malformed question", "position", position, "title", title, "index", q)
		}
		topics = append(topics, domain.QuizTopic{Title: title, Questions: questions})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return topics, nil
}

// ImportCatalog replaces the stored catalog with topics, keeping their order.
func (l *CatalogLoader) ImportCatalog(ctx context.Context, topics []domain.QuizTopic) error {
	return l.pool.BeginFunc(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM quiz_topics`); err != nil {
			return fmt.Errorf("clear catalog: %w", err)
		}
		for i, topic := range topics {
			questions := topic.Questions
			if questions == nil {
				questions = []domain.Question{}
			}
			data, err := json.Marshal(questions)
			if err != nil {
				return fmt.Errorf("marshal topic %q: %w", topic.Title, err)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO quiz_topics (position, title, questions) VALUES ($1, $2, $3::jsonb)`,
				i, topic.Title, string(data),
			); err != nil {
				return fmt.Errorf("insert topic %q: %w", topic.Title, err)
			}
		}
		return nil
	})
}
