package postgres

import (
	"context"
	"fmt"
	"time"

	"quiz-console/internal/domain"

	"github.com/uptrace/bun"
)

type resultModel struct {
	bun.BaseModel `bun:"table:quiz_results"`

	ID              int64  `bun:"id,pk,autoincrement"`
	Username        string `bun:"username,notnull"`
	UsernameNorm    string `bun:"username_norm,notnull"`
	Topic           string `bun:"topic,notnull"`
	Score           int    `bun:"score,notnull"`
	QuestionResults []bool `bun:"question_results,type:jsonb,notnull"`
	RecordedAt      string `bun:"recorded_at,notnull"`
}

func (m resultModel) toDomain() domain.QuizResult {
	results := m.QuestionResults
	if results == nil {
		results = []bool{}
	}
	return domain.QuizResult{
		Username:        m.Username,
		Topic:           m.Topic,
		Score:           m.Score,
		Date:            m.RecordedAt,
		QuestionResults: results,
	}
}

// ResultLedger appends one row per attempt to quiz_results. The serial id keeps insertion order.
type ResultLedger struct {
	db  *bun.DB
	now func() time.Time
}

func NewResultLedger(db *bun.DB) *ResultLedger {
	return &ResultLedger{db: db, now: time.Now}
}

func (l *ResultLedger) Record(ctx context.Context, username, topic string, score int, correctness []bool) (domain.QuizResult, error) {
	result := domain.NewQuizResult(username, topic, score, correctness, l.now())
	row := resultModel{
		Username:        result.Username,
		UsernameNorm:    domain.NormalizeName(result.Username),
		Topic:           result.Topic,
		Score:           result.Score,
		QuestionResults: result.QuestionResults,
		RecordedAt:      result.Date,
	}
	if _, err := l.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.QuizResult{}, fmt.Errorf("insert result: %w", err)
	}
	return result, nil
}

func (l *ResultLedger) ResultsByUser(ctx context.Context, username string) ([]domain.QuizResult, error) {
	var rows []resultModel
	err := l.db.NewSelect().
		Model(&rows).
		Where("username_norm = ?", domain.NormalizeName(username)).
		OrderExpr("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select results: %w", err)
	}
	return toDomain(rows), nil
}

func (l *ResultLedger) TopScores(ctx context.Context, n int) ([]domain.QuizResult, error) {
	if n <= 0 {
		return []domain.QuizResult{}, nil
	}
	var rows []resultModel
	err := l.db.NewSelect().
		Model(&rows).
		OrderExpr("score DESC, id ASC").
		Limit(n).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select top scores: %w", err)
	}
	return toDomain(rows), nil
}

func toDomain(rows []resultModel) []domain.QuizResult {
	out := make([]domain.QuizResult, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out
}
