package memory

import (
	"context"
	"sync"
	"time"

	"quiz-console/internal/domain"
)

// ResultLedger is an in-memory implementation of app.ResultLedger. Nothing survives a restart.
type ResultLedger struct {
	mu      sync.RWMutex
	results []domain.QuizResult
	now     func() time.Time
}

func NewResultLedger() *ResultLedger {
	return NewResultLedgerWithClock(time.Now)
}

// NewResultLedgerWithClock allows deterministic timestamps in tests.
func NewResultLedgerWithClock(now func() time.Time) *ResultLedger {
	return &ResultLedger{
		results: make([]domain.QuizResult, 0),
		now:     now,
	}
}

func (l *ResultLedger) Record(_ context.Context, username, topic string, score int, correctness []bool) (domain.QuizResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	result := domain.NewQuizResult(username, topic, score, correctness, l.now())
	l.results = append(l.results, result)
	return result, nil
}

func (l *ResultLedger) ResultsByUser(_ context.Context, username string) ([]domain.QuizResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.ResultsByUser(l.results, username), nil
}

func (l *ResultLedger) TopScores(_ context.Context, n int) ([]domain.QuizResult, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.TopScores(l.results, n), nil
}

// Len reports how many attempts have been recorded.
func (l *ResultLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.results)
}
