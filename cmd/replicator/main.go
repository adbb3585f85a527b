package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/syncwell/replicator/internal/config"
	"github.com/syncwell/replicator/internal/logging"
	"github.com/syncwell/replicator/internal/syncer"
	"github.com/syncwell/replicator/internal/version"
)

const defaultLogFile = "replicator.log"

var rootCmd = &cobra.Command{
	Use:   "replicator SOURCE REPLICA",
	Short: "One-way directory synchronizer",
	Long: `Replicator mirrors a source directory into a replica directory: after each
pass the replica's contents exactly match the source's, compared by content
(SHA-256), not by name or timestamp. The source is never modified.`,
	Version: version.Detailed(),
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &config.Config{
			Source:   args[0],
			Replica:  args[1],
			Interval: viper.GetInt("interval"),
			Count:    viper.GetInt("count"),
			LogFile:  viper.GetString("log_file"),
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		// config is good, don't print usage for runtime failures
		cmd.SilenceUsage = true

		logger, sink, err := logging.New(cfg.LogFile)
		if err != nil {
			return err
		}
		defer sink.Close()
		slog.SetDefault(logger)

		showHeader()
		logger.Info("program started",
			"source", cfg.Source,
			"replica", cfg.Replica,
			"interval", cfg.Interval,
			"count", cfg.Count,
			"log_file", cfg.LogFile,
		)

		lock := syncer.NewReplicaLock(cfg.Replica)
		if err := lock.Acquire(); err != nil {
			return err
		}
		defer lock.Release()

		s := syncer.New(cfg.Source, cfg.Replica, logger)
		runner := syncer.NewRunner(s, time.Duration(cfg.Interval)*time.Second, cfg.Count, logger)
		return runner.Run(cmd.Context())
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().IntP("interval", "i", 0, "Seconds to wait between synchronization passes")
	rootCmd.Flags().IntP("count", "n", 1, "Number of synchronization passes to perform")
	rootCmd.Flags().StringP("log-file", "l", defaultLogFile, "Path to the log file")

	viper.BindPFlag("interval", rootCmd.Flags().Lookup("interval"))
	viper.BindPFlag("count", rootCmd.Flags().Lookup("count"))
	viper.BindPFlag("log_file", rootCmd.Flags().Lookup("log-file"))

	viper.SetEnvPrefix("REPLICATOR")
	viper.AutomaticEnv()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func showHeader() {
	color.New(color.FgHiCyan, color.Bold).Printf("%s %s\n", version.AppName, version.Short())
}
