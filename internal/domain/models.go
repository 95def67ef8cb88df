package domain

import "time"

// MixedTopic is the topic recorded for attempts drawn from the whole catalog.
const MixedTopic = "Mixed Quiz"

// User is a registered player. Username is unique case-insensitively.
type User struct {
	Username    string
	Password    string
	DateOfBirth time.Time
}

// Question is a multi-select question. Correct holds 1-indexed positions into Answers.
type Question struct {
	Text    string   `json:"Text"`
	Answers []string `json:"Answers"`
	Correct []int    `json:"Correct"`
	Topic   string   `json:"Topic,omitempty"`
}

// Valid reports whether every correct index references an existing answer.
func (q Question) Valid() bool {
	if len(q.Answers) == 0 || len(q.Correct) == 0 {
		return false
	}
	for _, idx := range q.Correct {
		if idx < 1 || idx > len(q.Answers) {
			return false
		}
	}
	return true
}

// CorrectAnswers returns the answer texts referenced by Correct.
func (q Question) CorrectAnswers() []string {
	out := make([]string, 0, len(q.Correct))
	for _, idx := range q.Correct {
		if idx >= 1 && idx <= len(q.Answers) {
			out = append(out, q.Answers[idx-1])
		}
	}
	return out
}

// QuizTopic groups questions in the catalog document.
type QuizTopic struct {
	Title     string     `json:"Title"`
	Questions []Question `json:"Questions"`
}

// QuizResult is one recorded attempt. It is never mutated once stored.
type QuizResult struct {
	Username        string `json:"Username"`
	Topic           string `json:"Topic"`
	Score           int    `json:"Score"`
	Date            string `json:"Date"`
	QuestionResults []bool `json:"QuestionResults"`
}

// NewQuizResult builds an attempt record stamped with at. The correctness slice is copied.
func NewQuizResult(username, topic string, score int, correctness []bool, at time.Time) QuizResult {
	results := make([]bool, len(correctness))
	copy(results, correctness)
	return QuizResult{
		Username:        username,
		Topic:           topic,
		Score:           score,
		Date:            FormatTimestamp(at),
		QuestionResults: results,
	}
}

// CountCorrect returns the number of true entries.
func CountCorrect(correctness []bool) int {
	score := 0
	for _, ok := range correctness {
		if ok {
			score++
		}
	}
	return score
}
