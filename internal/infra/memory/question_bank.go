package memory

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"quiz-console/internal/domain"

	"golang.org/x/sync/singleflight"
)

// CatalogLoader fetches the topic-grouped catalog from a backing store (JSON file, Postgres).
type CatalogLoader interface {
	LoadCatalog(ctx context.Context) ([]domain.QuizTopic, error)
}

// QuestionBank holds the flattened catalog in memory. With ttl <= 0 the catalog
// is loaded once and kept for the life of the process.
type QuestionBank struct {
	loader CatalogLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	logger *slog.Logger

	mu        sync.RWMutex
	questions []domain.Question
	loaded    bool
	expiresAt time.Time
}

func NewQuestionBank(loader CatalogLoader, ttl time.Duration, logger *slog.Logger) *QuestionBank {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		logger: logger,
	}
}

// NewStaticQuestionBank serves a fixed catalog (useful for tests/demos).
func NewStaticQuestionBank(topics []domain.QuizTopic) *QuestionBank {
	return NewQuestionBank(NewStaticCatalogLoader(topics), 0, nil)
}

// ByTopic returns the questions of topic (case-insensitive), in catalog order.
func (b *QuestionBank) ByTopic(ctx context.Context, topic string) ([]domain.Question, error) {
	questions, err := b.load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterByTopic(questions, topic), nil
}

// All returns the full catalog. Callers must not mutate the returned slice.
func (b *QuestionBank) All(ctx context.Context) ([]domain.Question, error) {
	return b.load(ctx)
}

func (b *QuestionBank) load(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := b.cached(b.clock()); ok {
		return questions, nil
	}

	result, err, _ := b.sf.Do("catalog", func() (interface{}, error) {
		now := b.clock()
		if questions, ok := b.cached(now); ok {
			return questions, nil
		}

		topics, err := b.loader.LoadCatalog(ctx)
		if err != nil {
			return nil, err
		}
		questions, skipped := domain.FlattenCatalog(topics)
		if skipped > 0 {
			b.logger.Warn("skipped questions with invalid correct answers", "count", skipped)
		}
		b.logger.Debug("catalog loaded", "topics", len(topics), "questions", len(questions))

		b.mu.Lock()
		b.questions = questions
		b.loaded = true
		b.expiresAt = now.Add(b.ttl)
		b.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (b *QuestionBank) cached(now time.Time) ([]domain.Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if !b.loaded {
		return nil, false
	}
	if b.ttl > 0 && !b.expiresAt.After(now) {
		return nil, false
	}
	return b.questions, true
}

// StaticCatalogLoader is a loader backed by a fixed slice of topics.
type StaticCatalogLoader struct {
	topics []domain.QuizTopic
}

func NewStaticCatalogLoader(topics []domain.QuizTopic) *StaticCatalogLoader {
	return &StaticCatalogLoader{topics: topics}
}

func (l *StaticCatalogLoader) LoadCatalog(_ context.Context) ([]domain.QuizTopic, error) {
	return l.topics, nil
}
