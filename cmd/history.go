package cmd

import (
	"context"
	"fmt"

	"github.com/abhisek/intervu/internal/screens/history"
	"github.com/abhisek/intervu/internal/store"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List finished review sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		answers, _ := cmd.Flags().GetBool("answers")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := context.Background()
		repo := s.EventRepo()
		sessions, err := repo.QuerySessionSummaries(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No sessions recorded yet.")
			return nil
		}

		for _, sess := range sessions {
			fmt.Println(history.SessionLine(sess))
			if !answers {
				continue
			}
			recs, err := repo.QueryAnswers(ctx, store.QueryOpts{SessionID: sess.SessionID})
			if err != nil {
				return fmt.Errorf("query answers: %w", err)
			}
			for _, a := range recs {
				fmt.Printf("    Q: %s\n", a.QuestionText)
				fmt.Printf("    A: %s\n", a.UserAnswer)
				if a.ShortFeedback != "" {
					fmt.Printf("    Feedback: %s\n", a.ShortFeedback)
				}
			}
			if len(recs) > 0 {
				fmt.Println(rule(60))
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of sessions to show")
	historyCmd.Flags().BoolP("answers", "a", false, "Also print evaluated answers")
}
