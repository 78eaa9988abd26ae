package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"JobFeed/internal/app"
	"JobFeed/internal/config"
	"JobFeed/internal/logging"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "jobfeed",
	Short: "Aggregate job postings and deliver each one once per subscriber",
	Long: `jobfeed pulls postings from configured job boards, deduplicates them
by title, company and location, and sends every new posting to each
registered Telegram user exactly once.

Examples:
  jobfeed serve --config config.yml   # HTTP trigger, webhook and scheduler
  jobfeed run                         # single run, prints the summary
  jobfeed migrate                     # apply database migrations`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and the interval scheduler",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		application, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer application.Close()

		return application.Serve(cmd.Context())
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the pipeline once and print the summary as JSON",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		application, err := app.New(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer application.Close()

		summary, err := application.RunOnce(cmd.Context())
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		applied, err := app.Migrate(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", applied)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("JOBFEED_CONFIG"), "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override logging.level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(migrateCmd)
}

func bootstrap() (config.Config, *logging.Logger, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return config.Config{}, nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	return cfg, logging.New(cfg.Logging.Level), nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "jobfeed: %v\n", err)
		stop()
		os.Exit(1)
	}
}
