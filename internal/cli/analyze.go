package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yildizm/TruthWeaver/internal/config"
	"github.com/yildizm/TruthWeaver/internal/emoji"
	"github.com/yildizm/TruthWeaver/internal/formatter"
	"github.com/yildizm/TruthWeaver/internal/logger"
	"github.com/yildizm/TruthWeaver/internal/render"
	"github.com/yildizm/TruthWeaver/internal/session"
	"github.com/yildizm/TruthWeaver/internal/submission"
	"github.com/yildizm/TruthWeaver/internal/ui"
	"github.com/yildizm/TruthWeaver/internal/watch"
)

var (
	analyzeNoTUI      bool
	analyzeOutputFile string
	analyzeWatch      bool
	analyzeEndpoint   string
	analyzeTheme      string
	analyzeTimeout    time.Duration
)

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Transcribe and analyze an audio recording",
		Long: `Upload an audio recording to the Truth Weaver service and show the
transcript, the revealed truth and any deception patterns.

Without --no-tui an interactive UI opens; type a path and press enter to
select it, then ctrl+t to submit. With --no-tui the file is submitted once and
the report is printed in the --output format.

With --watch the selected file is reloaded whenever it changes on disk. In
--no-tui mode every change is submitted again until interrupted.

Examples:
  truthweaver analyze interview.wav
  truthweaver analyze --no-tui -o json interview.wav
  truthweaver analyze --no-tui --output-file report.md -o markdown take.mp3
  truthweaver analyze --watch --endpoint http://localhost:5000 take.wav`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().BoolVar(&analyzeNoTUI, "no-tui", false, "disable terminal UI, submit once and print the report")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save the report to file instead of stdout")
	cmd.Flags().BoolVar(&analyzeWatch, "watch", false, "reload the file when it changes on disk")
	cmd.Flags().StringVar(&analyzeEndpoint, "endpoint", "", "service base URL (overrides service.base_url)")
	cmd.Flags().StringVar(&analyzeTheme, "theme", "", "UI theme (default, high-contrast, minimal)")
	cmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0, "request timeout (0 uses service.timeout)")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()

	path := ""
	if len(args) == 1 {
		path = args[0]
		if err := validateFilePath(path); err != nil {
			return fmt.Errorf("invalid file path: %w", err)
		}
	}
	if analyzeWatch && path == "" && analyzeNoTUI {
		return fmt.Errorf("--watch with --no-tui requires a file")
	}

	if !cmd.Flag("theme").Changed {
		analyzeTheme = cfg.Output.Theme
	}
	if _, ok := ui.ThemeByName(analyzeTheme); !ok {
		return fmt.Errorf("unknown theme: %s (available: %v)", analyzeTheme, ui.GetAvailableThemes())
	}

	svc, err := newServices(serviceOverrides{endpoint: analyzeEndpoint, timeout: analyzeTimeout})
	if err != nil {
		return err
	}
	defer svc.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if analyzeNoTUI {
		return runOnce(ctx, cmd, svc, path)
	}
	return runInteractive(ctx, cmd, svc, cfg, path)
}

// runOnce submits the file, prints the report and, with --watch, repeats on
// every change until interrupted.
func runOnce(ctx context.Context, cmd *cobra.Command, svc *services, path string) error {
	if path != "" {
		file, err := session.LoadAudioFile(path)
		if err != nil {
			return err
		}
		svc.store.SelectFile(file)
	}

	outcome := svc.controller.SubmitSelected(ctx)
	if err := writeReport(cmd, svc.store); err != nil {
		return err
	}
	if !analyzeWatch {
		return outcomeError(outcome)
	}

	reloads := make(chan struct{}, 1)
	w, err := watch.New(svc.store,
		watch.WithLogger(svc.log.WithComponent("watch")),
		watch.OnReload(func(*session.AudioFile) {
			select {
			case reloads <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Watch(path); err != nil {
		return err
	}
	go func() { _ = w.Run(ctx) }()

	fmt.Fprintf(cmd.ErrOrStderr(), "%s Watching %s for changes (Ctrl+C to stop)\n", emoji.GetEmoji("watch"), path)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-reloads:
			svc.controller.SubmitSelected(ctx)
			if err := writeReport(cmd, svc.store); err != nil {
				return err
			}
		}
	}
}

func runInteractive(ctx context.Context, cmd *cobra.Command, svc *services, cfg *config.Config, path string) error {
	// the UI owns the terminal; logs go to the configured file or nowhere
	closeLog, err := redirectLogs(cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := ui.Options{
		Theme:       analyzeTheme,
		Color:       colorEnabled(os.Stdout),
		InitialPath: path,
		Logger:      svc.log.WithComponent("ui"),
	}

	if analyzeWatch {
		w, err := watch.New(svc.store, watch.WithLogger(svc.log.WithComponent("watch")))
		if err != nil {
			return err
		}
		defer w.Close()
		go func() { _ = w.Run(ctx) }()
		opts.Watcher = w
	}

	if err := ui.Run(ctx, svc.controller, opts); err != nil {
		return fmt.Errorf("interactive UI failed: %w", err)
	}

	if analyzeOutputFile != "" && svc.store.Snapshot().Status != session.StatusIdle {
		return writeReport(cmd, svc.store)
	}
	return nil
}

// writeReport renders the current session in the selected output format
func writeReport(cmd *cobra.Command, store *session.Store) error {
	color := analyzeOutputFile == "" && colorEnabled(cmd.OutOrStdout())
	f, err := formatter.New(getOutputFormat(), formatter.Options{Color: color, Emoji: !noEmoji})
	if err != nil {
		return fmt.Errorf("failed to get formatter: %w", err)
	}

	view := render.Build(store.Snapshot())
	output, err := f.Format(&view)
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	return handleOutputDestination(cmd.OutOrStdout(), output)
}

// outcomeError turns a failed outcome into the command's exit error
func outcomeError(outcome submission.Outcome) error {
	if outcome.OK() {
		return nil
	}
	return errors.New(outcome.Failure.Message)
}

// handleOutputDestination writes output to file or stdout
func handleOutputDestination(stdout io.Writer, output []byte) error {
	if analyzeOutputFile == "" {
		_, err := stdout.Write(output)
		return err
	}

	if err := writeOutputBytesToFile(output, analyzeOutputFile); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", analyzeOutputFile)
	}
	return nil
}

func validateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	return nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	return nil
}

// redirectLogs points the log sink at the configured file, or discards logs
func redirectLogs(cfg config.LoggingConfig) (func(), error) {
	if cfg.File == "" {
		logger.Configure(logger.Options{Format: cfg.Format, Level: cfg.Level, Output: io.Discard})
		return func() {}, nil
	}

	// #nosec G304 - path comes from the user's own configuration
	f, err := os.OpenFile(filepath.Clean(cfg.File), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.Configure(logger.Options{Format: cfg.Format, Level: cfg.Level, Output: f})
	return func() { _ = f.Close() }, nil
}
