package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"quiz-console/internal/domain"

	"github.com/redis/go-redis/v9"
)

// DefaultKey is the list holding recorded attempts.
const DefaultKey = "quiz:results"

// ResultLedger stores attempts as JSON documents in a Redis list.
// RPUSH appends, so list order is insertion order:
//
//	RPUSH quiz:results {"Username":...,"Score":...}
type ResultLedger struct {
	client *redis.Client
	key    string
	now    func() time.Time
	logger *slog.Logger
}

func NewResultLedger(client *redis.Client, key string, logger *slog.Logger) *ResultLedger {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultLedger{client: client, key: key, now: time.Now, logger: logger}
}

func (l *ResultLedger) Record(ctx context.Context, username, topic string, score int, correctness []bool) (domain.QuizResult, error) {
	result := domain.NewQuizResult(username, topic, score, correctness, l.now())
	payload, err := json.Marshal(result)
	if err != nil {
		return domain.QuizResult{}, fmt.Errorf("marshal result: %w", err)
	}
	if err := l.client.RPush(ctx, l.key, payload).Err(); err != nil {
		return domain.QuizResult{}, fmt.Errorf("append result: %w", err)
	}
	return result, nil
}

func (l *ResultLedger) ResultsByUser(ctx context.Context, username string) ([]domain.QuizResult, error) {
	results, err := l.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return domain.ResultsByUser(results, username), nil
}

func (l *ResultLedger) TopScores(ctx context.Context, n int) ([]domain.QuizResult, error) {
	results, err := l.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return domain.TopScores(results, n), nil
}

func (l *ResultLedger) loadAll(ctx context.Context) ([]domain.QuizResult, error) {
	raw, err := l.client.LRange(ctx, l.key, 0, -1).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("load results: %w", err)
	}
	results := make([]domain.QuizResult, 0, len(raw))
	for i, entry := range raw {
		var result domain.QuizResult
		if err := json.Unmarshal([]byte(entry), &result); err != nil || result.Username == "" {
			l.logger.Warn("skipping malformed quiz result", "key", l.key, "index", i)
			continue
		}
		results = append(results, result)
	}
	return results, nil
}
