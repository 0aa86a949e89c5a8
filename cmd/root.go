package cmd

import (
	"github.com/spf13/cobra"

	"github.com/abhisek/notepilot/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "notepilot",
	Short: "AI study pack generator",
	Long:  "Notepilot turns a textbook chapter into a study pack: summary, notes, key terms, flashcards, quiz and a study assistant.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runApp(cmd)
	},
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides NOTEPILOT_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default $XDG_CONFIG_HOME/notepilot/config.yaml)")
	rootCmd.PersistentFlags().String("store", "", "Partition backend: sqlite or redis (overrides NOTEPILOT_STORE)")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(packsCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(imageCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the configured path, then NOTEPILOT_DB or the default XDG path.
func resolveDBPath(cmd *cobra.Command, configured string) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if configured != "" {
		return configured, store.EnsureDir(configured)
	}
	return store.DefaultDBPath()
}
