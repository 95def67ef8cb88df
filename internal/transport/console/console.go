package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"quiz-console/internal/app"
	"quiz-console/internal/domain"
)

// Console drives the interactive menus over a line-oriented reader and writer.
type Console struct {
	in       *bufio.Reader
	lines    chan inputLine
	start    sync.Once
	inErr    error
	out      io.Writer
	accounts *app.AccountService
	quizzes  *app.QuizService
	topics   []string
	topN     int
}

type Options struct {
	Topics []string // topic sub-menu entries, a Mixed entry is appended
	TopN   int      // size of the top scores view
}

func New(in io.Reader, out io.Writer, accounts *app.AccountService, quizzes *app.QuizService, opts Options) *Console {
	topN := opts.TopN
	if topN <= 0 {
		topN = 20
	}
	return &Console{
		in:       bufio.NewReader(in),
		lines:    make(chan inputLine),
		out:      out,
		accounts: accounts,
		quizzes:  quizzes,
		topics:   opts.Topics,
		topN:     topN,
	}
}

// Run shows the top-level menu until the user exits, input ends or ctx is cancelled.
func (c *Console) Run(ctx context.Context) error {
	c.println("--- Welcome ---")
	for {
		c.println("1. Registration")
		c.println("2. Log in")
		c.println("3. Exit")

		choice, err := c.choose(ctx, 3)
		if err != nil {
			return endOfInput(err)
		}
		switch choice {
		case 1:
			err = c.register(ctx)
		case 2:
			err = c.login(ctx)
		case 3:
			return nil
		}
		if err != nil {
			return endOfInput(err)
		}
	}
}

func (c *Console) register(ctx context.Context) error {
	c.println("\n--- Registration ---")
	c.println("INPUT username (letters only):")
	username, err := c.readUntil(ctx, isLetters, "Username should contain only letters. Please try again.")
	if err != nil {
		return err
	}
	c.println("Input password (digits only):")
	password, err := c.readUntil(ctx, isDigits, "Password should contain only digits. Please try again.")
	if err != nil {
		return err
	}
	c.println("Input date of birth (YYYY-MM-DD):")
	dob, err := c.readDate(ctx)
	if err != nil {
		return err
	}

	switch err := c.accounts.Register(ctx, username, password, dob); {
	case errors.Is(err, domain.ErrDuplicateUser):
		c.println("Username already exists. Please choose another.")
	case errors.Is(err, domain.ErrInvalidField):
		c.println("Username and password must not contain '|' or line breaks.")
	case err != nil:
		c.printf("Registration failed: %v\n", err)
	default:
		c.println("Registration successful.")
	}
	return nil
}

func (c *Console) login(ctx context.Context) error {
	c.println("\n--- Login ---")
	c.println("Input username:")
	username, err := c.readLine(ctx)
	if err != nil {
		return err
	}
	c.println("Input password:")
	password, err := c.readLine(ctx)
	if err != nil {
		return err
	}

	user, err := c.accounts.Login(ctx, username, password)
	if errors.Is(err, domain.ErrInvalidCredentials) {
		c.println("Invalid username or password.")
		return nil
	}
	if err != nil {
		c.printf("Login failed: %v\n", err)
		return nil
	}
	c.printf("Login successful as %s.\n", user.Username)
	return c.userMenu(ctx, user.Username)
}

func (c *Console) userMenu(ctx context.Context, username string) error {
	for {
		c.printf("\n--- Welcome, %s ---\n", username)
		c.println("1. Start a New Quiz")
		c.println("2. View Past Quiz Results")
		c.printf("3. View Top %d Scores\n", c.topN)
		c.println("4. Change Settings")
		c.println("5. Logout")

		choice, err := c.choose(ctx, 5)
		if err != nil {
			return err
		}
		switch choice {
		case 1:
			err = c.startQuiz(ctx, username)
		case 2:
			c.pastResults(ctx, username)
		case 3:
			c.topScores(ctx)
		case 4:
			err = c.settings(ctx, username)
		case 5:
			c.printf("Logging out %s\n", username)
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) startQuiz(ctx context.Context, username string) error {
	c.println("\nChoose a Quiz Topic:")
	for i, topic := range c.topics {
		c.printf("%d. %s\n", i+1, topic)
	}
	c.printf("%d. Mixed Quiz\n", len(c.topics)+1)

	choice, err := c.choose(ctx, len(c.topics)+1)
	if err != nil {
		return err
	}

	var (
		result domain.QuizResult
		label  string
	)
	if choice <= len(c.topics) {
		label = c.topics[choice-1]
		c.printf("\nStarting %s quiz for user %s...\n", label, username)
		result, err = c.quizzes.StartQuiz(ctx, label, username, c)
	} else {
		label = "mixed"
		c.printf("\nStarting mixed quiz for user %s...\n", username)
		result, err = c.quizzes.StartMixedQuiz(ctx, username, c)
	}

	switch {
	case errors.Is(err, domain.ErrEmptyQuestionPool):
		c.printf("No questions available for %s quiz.\n", label)
		return nil
	case isEndOfInput(err):
		return err
	case err != nil:
		c.printf("Quiz failed: %v\n", err)
		return nil
	}
	c.printf("\nQuiz completed! You scored %d out of %d.\n", result.Score, len(result.QuestionResults))
	return nil
}

// Ask implements app.Player.
func (c *Console) Ask(ctx context.Context, number, total int, q domain.Question) (string, error) {
	c.printf("\nQuestion %d/%d: %s\n", number, total, q.Text)
	c.println("Options:")
	for i, answer := range q.Answers {
		c.printf("%d. %s\n", i+1, answer)
	}
	c.printf("Your answer(s) (comma-separated for multiple answers): ")
	return c.readLine(ctx)
}

// Reveal implements app.Player.
func (c *Console) Reveal(q domain.Question, correct bool) {
	if correct {
		c.println("Correct!")
		return
	}
	c.printf("Incorrect! Correct answer(s): %s\n", strings.Join(q.CorrectAnswers(), ", "))
}

func (c *Console) pastResults(ctx context.Context, username string) {
	c.printf("\n--- Past Quiz Results for user %s ---\n", username)
	results, err := c.quizzes.History(ctx, username)
	if err != nil {
		c.printf("Could not load results: %v\n", err)
		return
	}
	if len(results) == 0 {
		c.println("No past quiz results found.")
		return
	}
	for _, r := range results {
		c.printf("Quiz: %s, Score: %d, Date: %s\n", r.Topic, r.Score, r.Date)
	}
}

func (c *Console) topScores(ctx context.Context) {
	c.printf("\n--- Top %d Quiz Scores ---\n", c.topN)
	results, err := c.quizzes.Leaderboard(ctx, c.topN)
	if err != nil {
		c.printf("Could not load results: %v\n", err)
		return
	}
	if len(results) == 0 {
		c.println("No top scores found.")
		return
	}
	for _, r := range results {
		c.printf("User: %s, Topic: %s, Score: %d\n", r.Username, r.Topic, r.Score)
	}
}

func (c *Console) settings(ctx context.Context, username string) error {
	c.println("\n--- Change Settings ---")
	c.println("1. Change Password")
	c.println("2. Change Date of Birth")
	c.println("3. Back to Main Menu")

	choice, err := c.choose(ctx, 3)
	if err != nil {
		return err
	}
	switch choice {
	case 1:
		c.println("Enter new password (digits only):")
		password, err := c.readUntil(ctx, isDigits, "Password should contain only digits. Please try again.")
		if err != nil {
			return err
		}
		c.report(c.accounts.ChangePassword(ctx, username, password), "Password updated successfully.")
	case 2:
		c.println("Enter new date of birth (YYYY-MM-DD):")
		raw, err := c.readLine(ctx)
		if err != nil {
			return err
		}
		err = c.accounts.ChangeDateOfBirth(ctx, username, raw)
		if errors.Is(err, domain.ErrInvalidDate) {
			c.println("Invalid date format. Date of birth not updated.")
			return nil
		}
		c.report(err, "Date of birth updated successfully.")
	case 3:
		c.println("Returning to Main Menu...")
	}
	return nil
}

func (c *Console) report(err error, success string) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		c.println("User not found.")
	case errors.Is(err, domain.ErrInvalidField):
		c.println("Invalid value. Nothing was updated.")
	case err != nil:
		c.printf("Update failed: %v\n", err)
	default:
		c.println(success)
	}
}

// choose reads menu selections until one falls within 1..max.
func (c *Console) choose(ctx context.Context, max int) (int, error) {
	for {
		line, err := c.readLine(ctx)
		if err != nil {
			return 0, err
		}
		if n, err := strconv.Atoi(strings.TrimSpace(line)); err == nil && n >= 1 && n <= max {
			return n, nil
		}
		c.printf("Please enter a number from 1 to %d.\n", max)
	}
}

func (c *Console) readUntil(ctx context.Context, valid func(string) bool, retry string) (string, error) {
	for {
		line, err := c.readLine(ctx)
		if err != nil {
			return "", err
		}
		if valid(line) {
			return line, nil
		}
		c.println(retry)
	}
}

func (c *Console) readDate(ctx context.Context) (time.Time, error) {
	for {
		line, err := c.readLine(ctx)
		if err != nil {
			return time.Time{}, err
		}
		if dob, err := domain.ParseDate(line); err == nil {
			return dob, nil
		}
		c.println("Invalid date format. Please enter date of birth (YYYY-MM-DD):")
	}
}

type inputLine struct {
	text string
	err  error
}

// readLine returns the next line without its terminator, or ctx.Err() once ctx
// is done. Lines are read by a single goroutine so a blocked read never holds
// up cancellation.
func (c *Console) readLine(ctx context.Context) (string, error) {
	if c.inErr != nil {
		return "", c.inErr
	}
	c.start.Do(func() { go c.pump() })

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case l := <-c.lines:
		if l.err != nil {
			c.inErr = l.err
			return "", l.err
		}
		return l.text, nil
	}
}

// pump feeds c.lines until the reader fails. A final line without a newline is
// delivered before io.EOF.
func (c *Console) pump() {
	for {
		line, err := c.in.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			c.lines <- inputLine{err: err}
			return
		}
		c.lines <- inputLine{text: strings.TrimRight(line, "\r\n")}
	}
}

func (c *Console) println(s string) { fmt.Fprintln(c.out, s) }

func (c *Console) printf(format string, args ...any) { fmt.Fprintf(c.out, format, args...) }

func isLetters(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isEndOfInput reports a closed input stream or a cancelled console.
func isEndOfInput(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// endOfInput turns a closed input stream or cancellation into a clean exit.
func endOfInput(err error) error {
	if isEndOfInput(err) {
		return nil
	}
	return err
}
