package app

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"quiz-console/internal/domain"

	"github.com/oklog/ulid/v2"
)

// DefaultMaxQuestions caps how many questions one session presents.
const DefaultMaxQuestions = 20

// QuestionBank serves the loaded catalog (file, Postgres, cached, etc).
type QuestionBank interface {
	ByTopic(ctx context.Context, topic string) ([]domain.Question, error)
	All(ctx context.Context) ([]domain.Question, error)
}

// ResultLedger stores completed attempts. Implementations are append-only.
type ResultLedger interface {
	Record(ctx context.Context, username, topic string, score int, correctness []bool) (domain.QuizResult, error)
	ResultsByUser(ctx context.Context, username string) ([]domain.QuizResult, error)
	TopScores(ctx context.Context, n int) ([]domain.QuizResult, error)
}

// Player is the interactive side of a session: it shows questions and returns raw answers.
type Player interface {
	// Ask presents question number (1-based) of total and returns the raw comma-separated answer.
	Ask(ctx context.Context, number, total int, q domain.Question) (string, error)
	// Reveal reports whether the answer just given was correct.
	Reveal(q domain.Question, correct bool)
}

// QuizService runs quiz sessions and hands finished attempts to the ledger.
type QuizService struct {
	questions    QuestionBank
	ledger       ResultLedger
	maxQuestions int
	rnd          *rand.Rand
	logger       *slog.Logger
}

// Option customises a QuizService.
type Option func(*QuizService)

// WithMaxQuestions overrides DefaultMaxQuestions. Non-positive values are ignored.
func WithMaxQuestions(n int) Option {
	return func(s *QuizService) {
		if n > 0 {
			s.maxQuestions = n
		}
	}
}

// WithRand makes mixed-quiz sampling deterministic in tests.
func WithRand(rnd *rand.Rand) Option {
	return func(s *QuizService) { s.rnd = rnd }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *QuizService) { s.logger = logger }
}

func NewQuizService(questions QuestionBank, ledger ResultLedger, opts ...Option) *QuizService {
	s := &QuizService{
		questions:    questions,
		ledger:       ledger,
		maxQuestions: DefaultMaxQuestions,
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartQuiz runs a session over the first questions of topic, in catalog order.
func (s *QuizService) StartQuiz(ctx context.Context, topic, username string, player Player) (domain.QuizResult, error) {
	pool, err := s.questions.ByTopic(ctx, topic)
	if err != nil {
		return domain.QuizResult{}, err
	}
	if len(pool) == 0 {
		return domain.QuizResult{}, domain.ErrEmptyQuestionPool
	}
	selected := pool[:min(s.maxQuestions, len(pool))]
	return s.run(ctx, selected, username, topic, player)
}

// StartMixedQuiz runs a session over a uniform random sample of the whole catalog.
func (s *QuizService) StartMixedQuiz(ctx context.Context, username string, player Player) (domain.QuizResult, error) {
	pool, err := s.questions.All(ctx)
	if err != nil {
		return domain.QuizResult{}, err
	}
	if len(pool) == 0 {
		return domain.QuizResult{}, domain.ErrEmptyQuestionPool
	}
	selected := sampleQuestions(s.rnd, pool, s.maxQuestions)
	return s.run(ctx, selected, username, domain.MixedTopic, player)
}

// History returns the attempts recorded for username.
func (s *QuizService) History(ctx context.Context, username string) ([]domain.QuizResult, error) {
	return s.ledger.ResultsByUser(ctx, username)
}

// Leaderboard returns the n best attempts across all users.
func (s *QuizService) Leaderboard(ctx context.Context, n int) ([]domain.QuizResult, error) {
	return s.ledger.TopScores(ctx, n)
}

func (s *QuizService) run(ctx context.Context, questions []domain.Question, username, topic string, player Player) (domain.QuizResult, error) {
	log := s.logger.With("session", ulid.Make().String(), "user", username, "topic", topic)
	log.Info("quiz session started", "questions", len(questions))

	session := newSession(questions)
	for session.next() {
		q := session.current()
		raw, err := player.Ask(ctx, session.number(), session.total(), q)
		if err != nil {
			log.Warn("quiz session aborted", "question", session.number(), "err", err)
			return domain.QuizResult{}, err
		}
		correct := CheckAnswer(q, raw)
		session.answer(correct)
		player.Reveal(q, correct)
	}

	result, err := s.ledger.Record(ctx, username, topic, session.score(), session.correctness)
	if err != nil {
		log.Error("record quiz result", "err", err)
		return domain.QuizResult{}, err
	}
	log.Info("quiz session completed", "score", result.Score, "total", session.total())
	return result, nil
}

// session tracks progress through the selected questions.
type session struct {
	questions   []domain.Question
	pos         int
	correctness []bool
}

func newSession(questions []domain.Question) *session {
	return &session{
		questions:   questions,
		pos:         -1,
		correctness: make([]bool, 0, len(questions)),
	}
}

func (s *session) next() bool {
	s.pos++
	return s.pos < len(s.questions)
}

func (s *session) current() domain.Question { return s.questions[s.pos] }

func (s *session) number() int { return s.pos + 1 }

func (s *session) total() int { return len(s.questions) }

func (s *session) answer(correct bool) {
	s.correctness = append(s.correctness, correct)
}

func (s *session) score() int { return domain.CountCorrect(s.correctness) }

// CheckAnswer reports whether raw, a comma-separated list of 1-indexed choices,
// selects exactly the question's correct answers. Unparsable tokens, duplicates
// and wrong counts are all simply incorrect.
func CheckAnswer(q domain.Question, raw string) bool {
	correct := make(map[int]struct{}, len(q.Correct))
	for _, idx := range q.Correct {
		correct[idx] = struct{}{}
	}

	tokens := strings.Split(raw, ",")
	if len(tokens) != len(correct) {
		return false
	}

	chosen := make(map[int]struct{}, len(tokens))
	for _, token := range tokens {
		idx, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return false
		}
		if _, ok := correct[idx]; !ok {
			return false
		}
		chosen[idx] = struct{}{}
	}
	return len(chosen) == len(correct)
}

// sampleQuestions draws min(limit, len(pool)) questions without replacement using a
// partial Fisher-Yates shuffle over a copy; pool is left untouched.
func sampleQuestions(rnd *rand.Rand, pool []domain.Question, limit int) []domain.Question {
	shuffled := make([]domain.Question, len(pool))
	copy(shuffled, pool)

	n := min(limit, len(shuffled))
	for i := 0; i < n; i++ {
		j := i + rnd.Intn(len(shuffled)-i)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled[:n]
}
