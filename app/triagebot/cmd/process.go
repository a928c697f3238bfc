package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"

	"github.com/mathlilypeng/github-app/internal/task"
)

var processFile string

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a single patch result",
	Long: `Reads one patch result message from a file (or stdin) and runs it through
the pipeline. This mode is designed to be triggered by an external queue
consumer or for manual replay of a result.`,
	RunE: runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processFile, "file", "-", "Path to the patch result JSON, or '-' for stdin")

	rootCmd.AddCommand(processCmd)
}

func runProcess(_ *cobra.Command, _ []string) error {
	ctx := setupContext()

	if err := cfg.Validate(); err != nil {
		return err
	}

	tel, err := newTelemetryProvider(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := tel.Shutdown(ctx); err != nil {
			clog.FromContext(ctx).With("error", err).Warn("Failed to shut down telemetry")
		}
	}()

	data, err := readInput(processFile)
	if err != nil {
		return err
	}

	var res task.PatchResult
	if err := json.Unmarshal(data, &res); err != nil {
		return fmt.Errorf("failed to parse patch result: %w", err)
	}

	b := newBot(ctx)
	decision := b.HandleResult(ctx, res)
	clog.FromContext(ctx).With("decision", int(decision)).Info("Patch result processed")
	return nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
