package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/abhisek/intervu/internal/app"
	"github.com/abhisek/intervu/internal/dictation"
	"github.com/abhisek/intervu/internal/llm"
	"github.com/abhisek/intervu/internal/questiongen"
	"github.com/abhisek/intervu/internal/screens/setup"
	"github.com/abhisek/intervu/internal/screens/summary"
	"github.com/abhisek/intervu/internal/session"
	"github.com/abhisek/intervu/internal/store"
	"github.com/spf13/cobra"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	ctx := cmd.Context()

	// The TUI owns the terminal; log output goes to a file or nowhere.
	if p := os.Getenv("INTERVU_DEBUG_LOG"); p != "" {
		f, err := tea.LogToFile(p, "intervu")
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	defaults, err := setupDefaults(cmd)
	if err != nil {
		return err
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	eventRepo := st.EventRepo()

	bank, err := loadBank(flagOrEnv(cmd, "bank", "INTERVU_BANK"))
	if err != nil {
		return err
	}
	fetcher := &questiongen.Router{Bank: bank}
	sessDeps := session.Deps{
		Fetcher:   fetcher,
		Dictation: dictation.FromCommandLine(flagOrEnv(cmd, "dictation-cmd", "INTERVU_DICTATION_CMD")),
	}

	provider, err := llm.NewProviderFromEnv(ctx, eventRepo)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
		fmt.Fprintln(os.Stderr, "Only the built-in question bank is available and answers cannot be evaluated.")
	} else {
		fetcher.Fallback = questiongen.New(provider, questiongen.DefaultConfig())
		sessDeps.Evaluator = questiongen.NewEvaluator(provider, questiongen.DefaultEvalConfig())
	}

	exportDir, _ := cmd.Flags().GetString("export-dir")
	return app.Run(app.Options{
		Setup: setup.Deps{
			Session:  sessDeps,
			Prefs:    st.SnapshotRepo(),
			Recorder: session.NewRecorder(eventRepo),
			Summary: summary.Options{
				ExportDir: exportDir,
				Events:    eventRepo,
			},
			Defaults: defaults,
		},
	})
}

func setupDefaults(cmd *cobra.Command) (setup.Defaults, error) {
	var d setup.Defaults
	d.Topic, _ = cmd.Flags().GetString("topic")
	d.BatchSize, _ = cmd.Flags().GetInt("batch-size")
	if d.BatchSize < 0 {
		return d, fmt.Errorf("invalid --batch-size %d", d.BatchSize)
	}
	if v, _ := cmd.Flags().GetString("difficulty"); v != "" {
		level, err := questiongen.ParseDifficulty(v)
		if err != nil {
			return d, err
		}
		d.Difficulty = level
	}
	return d, nil
}

// loadBank returns the built-in bank, extended with the YAML file at path
// if one is given.
func loadBank(path string) (*questiongen.Bank, error) {
	bank, err := questiongen.DefaultBank()
	if err != nil {
		return nil, fmt.Errorf("load built-in bank: %w", err)
	}
	if path == "" {
		return bank, nil
	}
	extra, err := questiongen.LoadBank(path)
	if err != nil {
		return nil, fmt.Errorf("load bank %s: %w", path, err)
	}
	return bank.Extend(extra), nil
}
