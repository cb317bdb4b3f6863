package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arogya/teleconsult/pkg/core/config"
	"github.com/arogya/teleconsult/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "teleconsult",
	Short: "TeleConsult - telemedicine consultation client",
	Long: `TeleConsult is a patient-side client for remote medical
consultations. It connects to a consultation backend, lets you
describe symptoms by text or voice in your own language, and plays
back the assistant's spoken replies.

Commands:
  consult  - start or resume a consultation session
  status   - show the state of a consultation
  report   - download the consultation report (PDF)
  devices  - list available audio input devices`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./teleconsult.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration honoring the --config flag
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

// newLogger builds the root logger from config and the --verbose flag
func newLogger(cfg *config.Config) *logging.Logger {
	level := logging.ParseLevel(cfg.General.LogLevel)
	if verbose {
		level = logging.LevelDebug
	}
	format := logging.FormatText
	if cfg.General.LogFormat == "json" {
		format = logging.FormatJSON
	}
	return logging.NewWithConfig(logging.Config{
		Name:   "teleconsult",
		Level:  level,
		Format: format,
		Output: os.Stderr,
	})
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
}
