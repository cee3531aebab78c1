package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/coursegen/internal/config"
	"github.com/abhisek/coursegen/internal/logging"
	"github.com/abhisek/coursegen/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "coursegen",
	Short: "LLM-backed course and adaptive quiz generator",
	Long: "coursegen generates structured courses with Bloom-aligned lessons and quizzes, " +
		"grades quiz attempts and adapts difficulty per learner.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a config file (default: ./coursegen.yaml if present)")
	rootCmd.PersistentFlags().String("data-dir", "", "Data directory (overrides COURSEGEN_STORAGE_DATA_DIR)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration and applies the persistent flag
// overrides. --data-dir wins over every other source.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if dir, _ := cmd.Flags().GetString("data-dir"); dir != "" {
		cfg.Storage.DataDir = dir
	}
	return cfg, nil
}

func openStore(cfg *config.Config) (*store.Store, error) {
	s, err := store.Open(cfg.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open data dir: %w", err)
	}
	return s, nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	return logging.New(cfg.Log.Mode)
}
