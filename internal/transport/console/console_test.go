package console

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"quiz-console/internal/app"
	"quiz-console/internal/domain"
	"quiz-console/internal/infra/file"
	"quiz-console/internal/infra/memory"

	"github.com/stretchr/testify/require"
)

func newTestConsole(t *testing.T, input string) (*Console, *bytes.Buffer, *memory.ResultLedger) {
	t.Helper()
	users, err := file.OpenUserStore(filepath.Join(t.TempDir(), "users.txt"), nil)
	require.NoError(t, err)
	ledger := memory.NewResultLedger()
	quizzes := app.NewQuizService(memory.NewStaticQuestionBank(sampleCatalog()), ledger)

	var out bytes.Buffer
	c := New(strings.NewReader(input), &out, app.NewAccountService(users, nil), quizzes, Options{
		Topics: []string{"History", "Geography", "Biology"},
		TopN:   20,
	})
	return c, &out, ledger
}

func TestFullSession(t *testing.T) {
	script := lines(
		// register with retries on each field
		"1", "al1ce", "alice", "abc", "1234", "yesterday", "2000-01-01",
		// same name, different case
		"1", "ALICE", "5678", "2001-02-03",
		// wrong password, then real login
		"2", "alice", "9999",
		"2", "Alice", "1234",
		"9",
		// History quiz: first right, second wrong
		"1", "1", "3, 1", "2",
		"2",
		"3",
		"4", "2", "garbage",
		"4", "1", "4321",
		// Biology has no questions
		"1", "3",
		"5",
		"3",
	)
	c, out, ledger := newTestConsole(t, script)

	require.NoError(t, c.Run(context.Background()))
	text := out.String()

	require.Contains(t, text, "Username should contain only letters. Please try again.")
	require.Contains(t, text, "Password should contain only digits. Please try again.")
	require.Contains(t, text, "Invalid date format. Please enter date of birth (YYYY-MM-DD):")
	require.Contains(t, text, "Registration successful.")
	require.Contains(t, text, "Username already exists. Please choose another.")
	require.Contains(t, text, "Invalid username or password.")
	require.Contains(t, text, "Login successful as alice.")
	require.Contains(t, text, "Please enter a number from 1 to 5.")
	require.Contains(t, text, "Question 1/2: Which are primes?")
	require.Contains(t, text, "Correct!")
	require.Contains(t, text, "Incorrect! Correct answer(s): 1066")
	require.Contains(t, text, "Quiz completed! You scored 1 out of 2.")
	require.Contains(t, text, "Quiz: History, Score: 1, Date: ")
	require.Contains(t, text, "User: alice, Topic: History, Score: 1")
	require.Contains(t, text, "Invalid date format. Date of birth not updated.")
	require.Contains(t, text, "Password updated successfully.")
	require.Contains(t, text, "No questions available for Biology quiz.")
	require.Contains(t, text, "Logging out alice")

	require.Equal(t, 1, ledger.Len())
}

func TestEmptyViews(t *testing.T) {
	script := lines("1", "bob", "1", "1990-05-05", "2", "bob", "1", "2", "3", "5", "3")
	c, out, _ := newTestConsole(t, script)

	require.NoError(t, c.Run(context.Background()))
	require.Contains(t, out.String(), "No past quiz results found.")
	require.Contains(t, out.String(), "No top scores found.")
}

func TestMixedQuizFromMenu(t *testing.T) {
	script := lines("1", "carol", "7", "1980-01-01", "2", "carol", "7", "1", "4", "x", "x", "5", "3")
	c, out, ledger := newTestConsole(t, script)

	require.NoError(t, c.Run(context.Background()))
	require.Contains(t, out.String(), "Starting mixed quiz for user carol...")
	require.Contains(t, out.String(), "Quiz completed! You scored 0 out of 2.")
	top, err := ledger.TopScores(context.Background(), 1)
	require.NoError(t, err)
	require.Equal(t, domain.MixedTopic, top[0].Topic)
}

func TestEndOfInputExitsCleanly(t *testing.T) {
	c, _, ledger := newTestConsole(t, "1\ndave\n12")
	require.NoError(t, c.Run(context.Background()))
	require.Equal(t, 0, ledger.Len())

	// input ends in the middle of a quiz: nothing is recorded
	script := lines("1", "erin", "1", "1999-09-09", "2", "erin", "1", "1", "1") + "1,3"
	c, _, ledger = newTestConsole(t, script)
	require.NoError(t, c.Run(context.Background()))
	require.Equal(t, 0, ledger.Len())
}

func TestCancelStopsBlockedRead(t *testing.T) {
	// the pipe is never written to, so every read blocks until cancellation
	in, w := io.Pipe()
	defer w.Close()

	users, err := file.OpenUserStore(filepath.Join(t.TempDir(), "users.txt"), nil)
	require.NoError(t, err)
	ledger := memory.NewResultLedger()
	c := New(in, io.Discard, app.NewAccountService(users, nil),
		app.NewQuizService(memory.NewStaticQuestionBank(sampleCatalog()), ledger), Options{Topics: []string{"History"}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("console still running after cancel")
	}
}

func TestCancelDuringQuizRecordsNothing(t *testing.T) {
	in, w := io.Pipe()
	defer w.Close()

	users, err := file.OpenUserStore(filepath.Join(t.TempDir(), "users.txt"), nil)
	require.NoError(t, err)
	ledger := memory.NewResultLedger()
	var out syncBuffer
	c := New(in, &out, app.NewAccountService(users, nil),
		app.NewQuizService(memory.NewStaticQuestionBank(sampleCatalog()), ledger), Options{Topics: []string{"History"}})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	_, err = io.WriteString(w, lines("1", "dora", "12", "2001-01-01", "2", "dora", "12", "1", "1"))
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Question 1/2")
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("console still running after cancel")
	}
	require.Equal(t, 0, ledger.Len())
}

func TestSettingsRejectsNonDigitPassword(t *testing.T) {
	script := lines("1", "frank", "12", "1990-01-01", "2", "frank", "12",
		"4", "1", "a|b", "", "77", "5",
		"2", "frank", "77", "5", "3")
	c, out, _ := newTestConsole(t, script)

	require.NoError(t, c.Run(context.Background()))
	text := out.String()
	require.Equal(t, 2, strings.Count(text, "Password should contain only digits. Please try again."))
	require.Contains(t, text, "Password updated successfully.")
	require.Equal(t, 2, strings.Count(text, "Login successful as frank."))
}

// syncBuffer is a bytes.Buffer safe for one writer and one polling reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func lines(in ...string) string {
	return strings.Join(in, "\n") + "\n"
}

func sampleCatalog() []domain.QuizTopic {
	return []domain.QuizTopic{
		{
			Title: "History",
			Questions: []domain.Question{
				{Text: "Which are primes?", Answers: []string{"2", "4", "3"}, Correct: []int{1, 3}},
				{Text: "Battle of Hastings?", Answers: []string{"1066", "1215"}, Correct: []int{1}},
			},
		},
		{Title: "Biology"},
	}
}
