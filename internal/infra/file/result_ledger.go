package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"quiz-console/internal/domain"
)

// ResultLedger holds every recorded attempt in memory and rewrites a JSON array on each record.
type ResultLedger struct {
	path    string
	results []domain.QuizResult
	now     func() time.Time
	logger  *slog.Logger
}

// OpenResultLedger loads path. A missing or empty file yields an empty ledger;
// entries that fail to decode are skipped. A damaged document (truncated, or not
// an array) is copied aside to <path>.corrupt-<timestamp> and every complete
// entry before the damage is kept.
func OpenResultLedger(path string, logger *slog.Logger) (*ResultLedger, error) {
	return OpenResultLedgerWithClock(path, logger, time.Now)
}

// OpenResultLedgerWithClock is OpenResultLedger with a fixed clock for deterministic timestamps.
func OpenResultLedgerWithClock(path string, logger *slog.Logger, now func() time.Time) (*ResultLedger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &ResultLedger{path: path, results: make([]domain.QuizResult, 0), now: now, logger: logger}

	data, err := readOptional(path)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return l, nil
	}

	intact := l.decode(data)
	if !intact {
		backup := fmt.Sprintf("%s.corrupt-%s", path, now().Format("20060102T150405"))
		if err := os.WriteFile(backup, data, 0o644); err != nil {
			return nil, fmt.Errorf("back up damaged %s: %w", path, err)
		}
		logger.Warn("result ledger damaged, original kept aside",
			"file", path, "backup", backup, "recovered", len(l.results))
	}
	return l, nil
}

// decode streams the array entries into l.results and reports whether the
// document was a well-formed array.
func (l *ResultLedger) decode(data []byte) bool {
	dec := json.NewDecoder(bytes.NewReader(data))
	if tok, err := dec.Token(); err != nil || tok != json.Delim('[') {
		return false
	}
	for i := 0; dec.More(); i++ {
		var entry json.RawMessage
		if err := dec.Decode(&entry); err != nil {
			return false
		}
		var result domain.QuizResult
		if err := json.Unmarshal(entry, &result); err != nil || result.Username == "" {
			l.logger.Warn("skipping malformed quiz result", "file", l.path, "index", i)
			continue
		}
		l.results = append(l.results, result)
	}
	_, err := dec.Token()
	return err == nil
}

func (l *ResultLedger) Record(_ context.Context, username, topic string, score int, correctness []bool) (domain.QuizResult, error) {
	result := domain.NewQuizResult(username, topic, score, correctness, l.now())
	l.results = append(l.results, result)
	if err := l.save(); err != nil {
		l.results = l.results[:len(l.results)-1]
		return domain.QuizResult{}, err
	}
	return result, nil
}

func (l *ResultLedger) ResultsByUser(_ context.Context, username string) ([]domain.QuizResult, error) {
	return domain.ResultsByUser(l.results, username), nil
}

func (l *ResultLedger) TopScores(_ context.Context, n int) ([]domain.QuizResult, error) {
	return domain.TopScores(l.results, n), nil
}

// Results returns every recorded attempt in insertion order.
func (l *ResultLedger) Results() []domain.QuizResult {
	out := make([]domain.QuizResult, len(l.results))
	copy(out, l.results)
	return out
}

func (l *ResultLedger) save() error {
	return replaceFile(l.path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(l.results); err != nil {
			return fmt.Errorf("encode results: %w", err)
		}
		return nil
	})
}
