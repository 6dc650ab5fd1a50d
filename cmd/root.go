package cmd

import (
	"os"

	"github.com/abhisek/intervu/internal/store"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "intervu",
	Short: "Interview practice in the terminal",
	Long:  "Intervu streams interview questions for a topic and level, lets you answer by typing or dictation, and reviews your answers.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides INTERVU_DB env var)")

	rootCmd.Flags().String("topic", "", "Preselect a topic")
	rootCmd.Flags().String("difficulty", "", "Preselect a level: junior, middle or senior")
	rootCmd.Flags().Int("batch-size", 0, "Questions per fetch (default 7)")
	rootCmd.Flags().String("bank", "", "Extra YAML question bank (overrides INTERVU_BANK env var)")
	rootCmd.Flags().String("dictation-cmd", "", "Speech-to-text command (overrides INTERVU_DICTATION_CMD env var)")
	rootCmd.Flags().String("export-dir", ".", "Directory for exported summaries")

	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then INTERVU_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

// flagOrEnv returns the flag value if set, else the environment variable.
func flagOrEnv(cmd *cobra.Command, flag, env string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	return os.Getenv(env)
}
