package memory

import (
	"context"
	"testing"
	"time"

	"quiz-console/internal/domain"
)

func TestQuestionBankLoadsOnce(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog())}
	bank := NewQuestionBank(loader, 0, nil)

	if _, err := bank.All(context.Background()); err != nil {
		t.Fatalf("all: %v", err)
	}
	if _, err := bank.ByTopic(context.Background(), "history"); err != nil {
		t.Fatalf("by topic: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}
}

func TestQuestionBankReloadsAfterTTL(t *testing.T) {
	loader := &countingLoader{CatalogLoader: NewStaticCatalogLoader(sampleCatalog())}
	bank := NewQuestionBank(loader, time.Minute, nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	bank.clock = func() time.Time { return now }

	_, _ = bank.All(context.Background())
	_, _ = bank.All(context.Background())
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}

	now = now.Add(2 * time.Minute)
	_, _ = bank.All(context.Background())
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls %d", loader.calls)
	}
}

func TestQuestionBankStampsTopicsAndFilters(t *testing.T) {
	bank := NewStaticQuestionBank(sampleCatalog())

	all, err := bank.All(context.Background())
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	// the invalid Biology question is dropped on load
	if len(all) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(all))
	}
	if all[0].Topic != "History" || all[2].Topic != "Geography" {
		t.Fatalf("unexpected topics: %+v", all)
	}

	history, _ := bank.ByTopic(context.Background(), "HISTORY")
	if len(history) != 2 || history[0].Text != "h1" || history[1].Text != "h2" {
		t.Fatalf("expected h1,h2 in catalog order, got %+v", history)
	}

	none, _ := bank.ByTopic(context.Background(), "Hist")
	if len(none) != 0 {
		t.Fatalf("expected exact topic match only, got %+v", none)
	}
}

type countingLoader struct {
	CatalogLoader
	calls int
}

func (l *countingLoader) LoadCatalog(ctx context.Context) ([]domain.QuizTopic, error) {
	l.calls++
	return l.CatalogLoader.LoadCatalog(ctx)
}

func sampleCatalog() []domain.QuizTopic {
	return []domain.QuizTopic{
		{
			Title: "History",
			Questions: []domain.Question{
				{Text: "h1", Answers: []string{"a", "b"}, Correct: []int{1}},
				{Text: "h2", Answers: []string{"a", "b", "c"}, Correct: []int{1, 3}},
			},
		},
		{
			Title: "Biology",
			Questions: []domain.Question{
				{Text: "broken", Answers: []string{"a"}, Correct: []int{2}},
			},
		},
		{
			Title: "Geography",
			Questions: []domain.Question{
				{Text: "g1", Answers: []string{"a", "b"}, Correct: []int{2}},
			},
		},
	}
}
