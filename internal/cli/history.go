package cli

import (
	"fmt"
	"io"

	"quiz-console/internal/domain"

	"github.com/spf13/cobra"
)

// NewHistoryCmd prints the recorded attempts of one user.
func NewHistoryCmd(configPath, logLevel *string) *cobra.Command {
	return &cobra.Command{
		Use:   "history <username>",
		Short: "Show past quiz results for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOf(cmd)
			rt, err := build(ctx, *configPath, *logLevel)
			if err != nil {
				return err
			}
			defer rt.Close()

			results, err := rt.quizzes.History(ctx, args[0])
			if err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

// NewTopCmd prints the leaderboard.
func NewTopCmd(configPath, logLevel *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "top",
		Short: "Show the best quiz scores across all users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOf(cmd)
			rt, err := build(ctx, *configPath, *logLevel)
			if err != nil {
				return err
			}
			defer rt.Close()

			n := limit
			if n <= 0 {
				n = rt.cfg.Quiz.TopScores
			}
			results, err := rt.quizzes.Leaderboard(ctx, n)
			if err != nil {
				return err
			}
			printTop(cmd.OutOrStdout(), results)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of entries (defaults to quiz.top_scores)")
	return cmd
}

func printHistory(w io.Writer, results []domain.QuizResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No past quiz results found.")
		return
	}
	for _, r := range results {
		fmt.Fprintf(w, "Quiz: %s, Score: %d, Date: %s\n", r.Topic, r.Score, r.Date)
	}
}

func printTop(w io.Writer, results []domain.QuizResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No top scores found.")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%d. User: %s, Topic: %s, Score: %d\n", i+1, r.Username, r.Topic, r.Score)
	}
}
