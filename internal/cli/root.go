// Package cli contains the newspulse commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"NewsPulse/internal/app"
	"NewsPulse/internal/config"
	"NewsPulse/internal/domain"
	"NewsPulse/internal/logging"
)

var version = "dev"

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Flags are bound to a private viper
// instance so NEWSPULSE_CONFIG, NEWSPULSE_LOG_LEVEL and NEWSPULSE_LOG_FORMAT
// work as well.
func NewRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("NEWSPULSE")
	v.AutomaticEnv()

	rootCmd := &cobra.Command{
		Use:   "newspulse",
		Short: "NewsPulse - AI news scoring and Telegram delivery bot",
		Long: `NewsPulse collects AI news from RSS feeds, skips items it has already seen,
scores the rest with a text-analysis model blended with keyword and source
trust heuristics, and delivers them to a Telegram chat.

Example usage:
  newspulse realtime      # send items scored 8 or higher one by one
  newspulse batch         # send the 6-hour digest
  newspulse daily         # send the daily top list
  newspulse test          # check Telegram, feeds and the model
  newspulse schedule      # run all modes on their intervals`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (YAML)")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	_ = v.BindPFlag("config", flags.Lookup("config"))
	_ = v.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = v.BindPFlag("log_format", flags.Lookup("log-format"))

	rootCmd.AddCommand(
		modeCmd(v, domain.ModeRealtime, "Score new items and alert on the important ones"),
		modeCmd(v, domain.ModeBatch, "Score new items and send the batch digest"),
		modeCmd(v, domain.ModeDaily, "Score new items and send the daily top list"),
		modeCmd(v, domain.ModeTest, "Check Telegram, feeds and the model"),
		scheduleCmd(v),
		versionCmd(),
	)
	return rootCmd
}

func modeCmd(v *viper.Viper, mode domain.Mode, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(mode),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, logger, err := build(cmd.Context(), v)
			if err != nil {
				return err
			}
			defer closeApp(application, logger)

			return application.Run(cmd.Context(), mode)
		},
	}
}

func scheduleCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "schedule",
		Short: "Run every mode on its configured interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, logger, err := build(ctx, v)
			if err != nil {
				return err
			}
			defer closeApp(application, logger)

			return application.Schedule(ctx)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "newspulse %s\n", version)
		},
	}
}

// build loads configuration, applies flag overrides and wires the application.
func build(ctx context.Context, v *viper.Viper) (*app.Application, *slog.Logger, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg := config.Load(v.GetString("config"))
	if level := v.GetString("log_level"); level != "" {
		cfg.Logging.Level = level
	}
	if format := v.GetString("log_format"); format != "" {
		cfg.Logging.Format = format
	}

	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return application, logger, nil
}

func closeApp(application *app.Application, logger *slog.Logger) {
	if err := application.Close(); err != nil {
		logger.Warn("close application", "error", err)
	}
}
