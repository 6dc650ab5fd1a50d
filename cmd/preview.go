package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/intervu/internal/llm"
	"github.com/abhisek/intervu/internal/questiongen"
	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Preview a batch of questions for a topic (no database)",
	Long: `Fetch one batch of questions and answer them on the command line.

This is a stateless developer tool: no database, no history, no events.
Useful for checking question quality for a topic and level.`,
	RunE: runPreview,
}

func init() {
	previewCmd.Flags().String("topic", "", "Topic to fetch questions for (required)")
	previewCmd.Flags().String("difficulty", "middle", "Level: junior, middle or senior")
	previewCmd.Flags().Int("count", questiongen.DefaultBatchSize, "Number of questions to fetch")
	previewCmd.Flags().String("bank", "", "Extra YAML question bank")
	_ = previewCmd.MarkFlagRequired("topic")
}

func runPreview(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	levelVal, _ := cmd.Flags().GetString("difficulty")
	count, _ := cmd.Flags().GetInt("count")

	level, err := questiongen.ParseDifficulty(levelVal)
	if err != nil {
		return err
	}
	if count <= 0 {
		return fmt.Errorf("invalid count %d", count)
	}

	bank, err := loadBank(flagOrEnv(cmd, "bank", "INTERVU_BANK"))
	if err != nil {
		return err
	}
	fetcher := &questiongen.Router{Bank: bank}
	var evaluator questiongen.Evaluator

	// Create LLM provider (no EventRepo, logging skipped).
	ctx := context.Background()
	provider, err := llm.NewProviderFromEnv(ctx, nil)
	switch {
	case err == nil:
		fetcher.Fallback = questiongen.New(provider, questiongen.DefaultConfig())
		evaluator = questiongen.NewEvaluator(provider, questiongen.DefaultEvalConfig())
	case !bank.Matches(topic):
		return fmt.Errorf("LLM provider: %w", err)
	}

	fmt.Printf("Topic: %s (%s)\n", topic, level)
	fmt.Printf("Fetching %d questions...\n\n", count)

	items, err := fetcher.FetchBatch(ctx, questiongen.BatchRequest{
		Topic:      topic,
		Difficulty: level,
		Size:       count,
	})
	if err != nil {
		return fmt.Errorf("fetch questions: %w", err)
	}
	if len(items) == 0 {
		fmt.Println("No questions returned.")
		return nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	var answered int
	for i, item := range items {
		fmt.Printf("── Question %d/%d ──\n", i+1, len(items))
		fmt.Println(item.Prompt)

		fmt.Print("\nYour answer: ")
		if !scanner.Scan() {
			fmt.Println("\n(input closed)")
			break
		}
		answer := strings.TrimSpace(scanner.Text())
		if answer != "" {
			answered++
			if evaluator != nil {
				printFeedback(ctx, evaluator, topic, item, answer)
			}
		} else {
			fmt.Println("(skipped)")
		}

		fmt.Printf("Reference: %s\n\n", item.ReferenceAnswer)
	}

	fmt.Printf("── Summary: %d/%d answered ──\n", answered, len(items))
	return nil
}

func printFeedback(ctx context.Context, ev questiongen.Evaluator, topic string, item questiongen.Item, answer string) {
	fb, err := ev.Evaluate(ctx, questiongen.EvaluateInput{
		Topic:           topic,
		Question:        item.Prompt,
		ReferenceAnswer: item.ReferenceAnswer,
		UserAnswer:      answer,
	})
	if err != nil {
		var ee *questiongen.EvaluationError
		if errors.As(err, &ee) && ee.Err != nil {
			err = ee.Err
		}
		fmt.Printf("\033[31mEvaluation failed:\033[0m %v\n", err)
		return
	}
	fmt.Printf("\033[32mFeedback:\033[0m %s\n", fb.Short)
}
