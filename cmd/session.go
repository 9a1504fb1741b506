package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/pantry/internal/shared"
	"github.com/desertthunder/pantry/internal/tasks"
	"github.com/desertthunder/pantry/internal/ui"
	"github.com/urfave/cli/v3"
)

// Session runs a request-queue script against the registry in this process.
func (r *Runner) Session(ctx context.Context, cmd *cli.Command) error {
	var script io.Reader = os.Stdin
	if path := cmd.String("file"); path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		script = f
	}

	if err := r.open(); err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
		}
	}()

	result, err := tasks.NewSession(r.registry, r.output, r.logger).Run(ctx, progressCh, script)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	r.writePlain("\n═══════════════════════════════════════\n")
	r.writePlain("Session Complete!\n")
	r.writePlain("═══════════════════════════════════════\n")
	return r.writePlain("Executed: %d, Failed: %d\n", result.Executed, result.Failed)
}

// Console launches the interactive request console.
//
// Logs are redirected to the configured file so they don't tear the terminal UI.
// The file stays open until shutdown so the final save is logged there too.
func (r *Runner) Console(ctx context.Context, cmd *cli.Command) error {
	fileLogger, logFile, err := shared.NewFileLogger(r.config.Logging.File)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.logFile = logFile
	fileLogger.SetLevel(r.logger.GetLevel())
	r.SetLogger(fileLogger)

	if err := r.open(); err != nil {
		return err
	}
	return ui.Run(r.registry, r.logger)
}
