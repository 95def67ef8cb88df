package file

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	"quiz-console/internal/domain"
)

// CatalogLoader reads the topic-grouped question catalog from a JSON file.
type CatalogLoader struct {
	path   string
	logger *slog.Logger
}

func NewCatalogLoader(path string, logger *slog.Logger) *CatalogLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogLoader{path: path, logger: logger}
}

// rawTopic defers question decoding so a bad question only costs itself.
type rawTopic struct {
	Title     string            `json:"Title"`
	Questions []json.RawMessage `json:"Questions"`
}

// LoadCatalog returns the topics in file order. A missing, empty or unreadable
// document degrades to an empty catalog; topic and question entries that fail to decode are skipped.
func (l *CatalogLoader) LoadCatalog(_ context.Context) ([]domain.QuizTopic, error) {
	topics := make([]domain.QuizTopic, 0)

	data, err := readOptional(l.path)
	if err != nil {
		l.logger.Warn("catalog unavailable", "file", l.path, "err", err)
		return topics, nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return topics, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		l.logger.Warn("catalog is not a JSON array", "file", l.path, "err", err)
		return topics, nil
	}
	for i, entry := range raw {
		var topic rawTopic
		if err := json.Unmarshal(entry, &topic); err != nil {
			l.logger.Warn("skipping malformed catalog topic", "file", l.path, "index", i, "err", err)
			continue
		}
		questions, bad := domain.DecodeQuestions(topic.Questions)
		for _, q := range bad {
			l.logger.Warn("skipping malformed question", "file", l.path, "topic", topic.Title, "index", q)
		}
		topics = append(topics, domain.QuizTopic{Title: topic.Title, Questions: questions})
	}
	return topics, nil
}
