// blogo compiles declarative evidence against a probabilistic model
// and estimates evidence likelihood by sampling.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"blogo/internal/config"
	"blogo/internal/logging"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "blogo",
	Short: "blogo - evidence compiler for open-universe probabilistic models",
	Long: `blogo compiles symbol and value evidence statements against a
probabilistic model into observed values over random variables, and
scores candidate worlds by evidence likelihood.

Case files declare the model (types, functions, priors) and the
evidence in YAML; see the examples directory.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg := config.DefaultConfig()
		if configPath != "" {
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
		}
		loadedConfig = cfg
		return logging.Initialize(cfg.Logging.Dir, logging.Options{
			Debug:      cfg.Logging.DebugMode,
			Level:      cfg.Logging.Level,
			Categories: cfg.Logging.Categories,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.CloseAll()
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// loadedConfig is populated by the persistent pre-run hook.
var loadedConfig *config.Config

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(estimateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
