package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gitgate/gitgate/internal/output"
	"github.com/gitgate/gitgate/internal/validate"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui *output.UI

	verbose bool
	dryRun  bool
)

// Set by Execute from main's goreleaser ldflags.
var (
	buildVersion = "dev"
	buildCommit  = "none"
	buildDate    = "unknown"
)

// errChecksFailed marks a run whose report is already printed; Execute
// turns it into exit code 1 without printing a second error line.
var errChecksFailed = errors.New("checks failed")

var rootCmd = &cobra.Command{
	Use:   "gitgate",
	Short: "Policy gate for git lifecycle hooks",
	Long: `gitgate runs policy checks from git hooks.
It classifies the current branch, resolves the branch's policy, and runs a
pipeline of validators on each hook event (pre-commit, commit-msg, pre-push,
post-checkout), reporting every finding before deciding pass or fail.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	// Last-resort guard: a hook must always exit cleanly with 0 or 1, so
	// even a panic becomes a logged exit 1 rather than a stack trace and
	// exit 2.
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Error: panic: %v\n", r)
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errChecksFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/gitgate/config.yaml)")
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".config", "gitgate")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("GITGATE")
	viper.AutomaticEnv()

	// Defaults via viper.SetDefault()
	viper.SetDefault("ticket.pattern", validate.DefaultTicketPattern)
	viper.SetDefault("run.workers", 1)
	viper.SetDefault("hooks.bin", "gitgate")

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun
}
