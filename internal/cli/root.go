package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rra3/fastmail-tools/internal/config"
	"github.com/rra3/fastmail-tools/internal/jmap"
)

var (
	// Version info set from main
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"

	// Global flags
	configPath string
	outputFmt  string
	verbose    bool
)

// SetVersionInfo sets version information from build flags
func SetVersionInfo(v, c, b string) {
	version = v
	commit = c
	buildTime = b
}

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "fastmail-tools",
	Short: "Command-line utilities for a Fastmail mailbox",
	Long: `fastmail-tools talks to the Fastmail JMAP API using a bearer token
from the FASTMAIL_TOKEN environment variable (or a local .env file).

It provides:
  - top-senders: rank the most frequent senders over recent months
  - trash: move every email from one sender into the Trash mailbox`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default: ~/.config/fastmail-tools/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table",
		"output format (table, json)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"enable debug logging")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig() {
	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			os.Exit(1)
		}
		configPath = filepath.Join(home, ".config", "fastmail-tools", "config.toml")
	}
}

// newLogger builds the stderr console logger. Warnings and errors only,
// unless --verbose asks for the full request trace.
func newLogger() zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

// newClient loads the config, resolves the bearer token, and builds a
// JMAP client. Token resolution happens before any network traffic so a
// missing token fails fast.
func newClient(logger zerolog.Logger) (*config.Config, *jmap.Client, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}

	token, err := cfg.Token()
	if err != nil {
		return nil, nil, err
	}

	client := jmap.New(token, jmap.Options{
		SessionURL: cfg.JMAP.SessionURL,
		Timeout:    cfg.JMAP.Timeout(),
		Logger:     logger,
	})
	return cfg, client, nil
}

// versionCmd shows version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("fastmail-tools %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", buildTime)
	},
}
