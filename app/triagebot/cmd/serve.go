package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/mathlilypeng/github-app/internal/queue"
	"github.com/mathlilypeng/github-app/internal/task"
)

var serveBuffer int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as a long-lived result consumer",
	Long: `Reads newline-delimited patch result messages from stdin and dispatches
them to a bounded worker pool. Results for different issues are processed in
parallel; each one ends in a pull request or a diagnostic comment and is
acknowledged exactly once.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveBuffer, "buffer", 16, "Dispatch buffer capacity")

	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := setupContext()
	log := clog.FromContext(ctx)

	if err := cfg.Validate(); err != nil {
		return err
	}

	tel, err := newTelemetryProvider(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			log.With("error", err).Warn("Failed to shut down telemetry")
		}
	}()

	b := newBot(ctx)
	dispatcher := queue.NewDispatcher(cfg.QueueWorkers, serveBuffer)

	log.With("workers", cfg.QueueWorkers).Info("Consuming patch results from stdin")

	go func() {
		defer dispatcher.Close()

		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
		for scanner.Scan() {
			line := scanner.Bytes()
			if len(line) == 0 {
				continue
			}

			var res task.PatchResult
			if err := json.Unmarshal(line, &res); err != nil {
				log.With("error", err).Error("Skipping undecodable result message")
				continue
			}

			if err := dispatcher.Enqueue(ctx, res); err != nil {
				log.With("error", err).Warn("Stopping intake")
				return
			}
		}
		if err := scanner.Err(); err != nil {
			log.With("error", err).Error("Failed reading stdin")
		}
	}()

	if err := dispatcher.Listen(ctx, b.HandleResult); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
