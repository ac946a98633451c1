package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iamunixtz/jshunter-agent/internal/config"
)

var (
	Version = "1.0.0"
	rootCmd *cobra.Command
)

func init() {
	rootCmd = &cobra.Command{
		Use:   "jshunter",
		Short: "Hunt for secrets in JavaScript files",
		Long:  "JSHunter agent: observe web traffic for JavaScript resources, scan them with trufflehog, and forward findings to a Discord webhook.",
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("output", "o", "./reports", "Output directory")
	rootCmd.PersistentFlags().String("config", config.DefaultPath(), "Config file path")
	rootCmd.PersistentFlags().String("scanner", "", "TruffleHog binary path (overrides config)")
	rootCmd.PersistentFlags().String("webhook", "", "Discord webhook URL (overrides config)")
	rootCmd.PersistentFlags().Int("rate-limit", 0, "Max fetches per second per host (0=unlimited)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug|info|warn|error)")
	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("scanner", rootCmd.PersistentFlags().Lookup("scanner"))
	_ = viper.BindPFlag("webhook", rootCmd.PersistentFlags().Lookup("webhook"))
	_ = viper.BindPFlag("rate-limit", rootCmd.PersistentFlags().Lookup("rate-limit"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	// Environment variable support (JSHUNTER_WEBHOOK, etc.)
	viper.SetEnvPrefix("JSHUNTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// Subcommands
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newObserveCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newWebhookCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from the --log-level flag.
func newLogger() *slog.Logger {
	var level slog.Level
	switch strings.ToLower(viper.GetString("log-level")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the agent version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("jshunter %s\n", Version)
		},
	}
}
