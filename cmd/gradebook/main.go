// Package main is the entry point of the student grade management console.
//
// It loads configuration, opens the configured roster store, loads the
// persisted roster and then either runs the interactive menu on stdin/stdout
// or, with -export, writes the performance report and exits. A store that
// cannot be opened does not stop the run: the session starts empty and
// every save reports the failure.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"

	"github.com/alem-hub/gradebook/config"
	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/internal/application/query"
	"github.com/alem-hub/gradebook/internal/infrastructure/export"
	"github.com/alem-hub/gradebook/internal/infrastructure/persistence"
	"github.com/alem-hub/gradebook/internal/interface/console"
	"github.com/alem-hub/gradebook/internal/interface/console/presenter"
	"github.com/alem-hub/gradebook/internal/validator"
)

// ══════════════════════════════════════════════════════════════════════════════
// FLAGS
// ══════════════════════════════════════════════════════════════════════════════

// exportToStdout as the -export path streams the workbook to stdout.
const exportToStdout = "-"

// flags override the environment for a single run.
type flags struct {
	envFile string
	store   string
	file    string
	policy  string
	export  string
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("gradebook", flag.ContinueOnError)
	fs.StringVar(&f.envFile, "env-file", ".env", "optional .env file to load")
	fs.StringVar(&f.store, "store", "", "roster store driver: "+driverList())
	fs.StringVar(&f.file, "file", "", "data file for the json, lines, sqlite and bbolt stores")
	fs.StringVar(&f.policy, "policy", "", "performance label policy: tiered or pass_fail")
	fs.StringVar(&f.export, "export", "", "write the performance report to this .xlsx file (- for stdout) and exit")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return f, nil
}

func driverList() string {
	names := make([]string, 0, len(persistence.Drivers()))
	for _, d := range persistence.Drivers() {
		names = append(names, string(d))
	}
	return strings.Join(names, ", ")
}

// apply copies the non-empty flags onto cfg.
func (f *flags) apply(cfg *config.Config) {
	if f.store != "" {
		cfg.Storage.Driver = f.store
	}
	if f.file != "" {
		cfg.Storage.DataFile = f.file
	}
	if f.policy != "" {
		cfg.Grading.LabelPolicy = f.policy
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN
// ══════════════════════════════════════════════════════════════════════════════

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdin, os.Stdout)
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	f, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(f.envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	f.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg, os.Stderr)
	log.Info("starting gradebook",
		"env", cfg.App.Environment,
		"store", cfg.Storage.Driver,
		"policy", cfg.Policy(),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. STORE AND ROSTER
	// ─────────────────────────────────────────────────────────────────────────
	// A store that cannot be opened leaves the session on an empty roster;
	// the failure surfaces as a load warning and on every save.
	opts := cfg.StoreOptions()
	store, err := persistence.Open(ctx, opts, log)
	if err != nil {
		log.Error("failed to open store", "driver", string(opts.Driver), "error", err)
		store = persistence.Unavailable(opts.Driver, err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn("failed to close store", "error", err)
		}
	}()

	// With "-export -" stdout carries the workbook, so notices move to stderr.
	notices := out
	if f.export == exportToStdout {
		notices = os.Stderr
	}

	loaded := command.NewLoadRosterHandler(store, log).Handle(ctx)
	switch {
	case loaded.Degraded():
		fmt.Fprintf(notices, "Warning: could not load saved data (%v). Starting with an empty roster.\n", loaded.Err)
	case loaded.Missing:
		fmt.Fprintln(notices, "No saved data found. Starting with an empty roster.")
	}
	if len(loaded.Skipped) > 0 {
		fmt.Fprint(notices, presenter.Skipped(loaded.Skipped))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	policy := cfg.Policy()
	v := validator.New()
	r := loaded.Roster

	handlers := console.Handlers{
		Register: command.NewRegisterStudentHandler(r, store, v, log),
		AddGrade: command.NewAddGradeHandler(r, store, v, log),
		Save:     command.NewSaveRosterHandler(r, store, log),
		Search:   query.NewSearchStudentsHandler(r, policy),
		List:     query.NewListStudentsHandler(r, policy),
		Report:   query.NewPerformanceReportHandler(r, policy),
		Export:   export.Save,
	}

	if f.export != "" {
		return exportReport(ctx, handlers.Report, f.export, out)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. CONSOLE
	// ─────────────────────────────────────────────────────────────────────────
	app := console.NewApp(handlers, console.Config{
		In:     in,
		Out:    out,
		Logger: log,
	})
	if err := app.Run(ctx); err != nil {
		return err
	}

	log.Info("gradebook stopped")
	return nil
}

func exportReport(ctx context.Context, h *query.PerformanceReportHandler, path string, out io.Writer) error {
	report, err := h.Handle(ctx, query.PerformanceReportQuery{})
	if err != nil {
		return fmt.Errorf("build report: %w", err)
	}

	if path == exportToStdout {
		if err := export.Write(out, report); err != nil {
			return fmt.Errorf("export report: %w", err)
		}
		return nil
	}

	written, err := export.Save(path, report)
	if err != nil {
		return fmt.Errorf("export report: %w", err)
	}

	fmt.Fprintf(out, "Report exported to %s.\n", written)
	return nil
}

// setupLogger builds the process logger. The console owns stdout, so logs go
// to w; every record carries the run's session_id.
func setupLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Observability.LogLevel),
	}

	var handler slog.Handler
	if strings.EqualFold(cfg.Observability.LogFormat, "json") || cfg.IsProduction() {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	log := slog.New(handler).With(
		"app", cfg.App.Name,
		"session_id", uuid.NewString(),
	)
	slog.SetDefault(log)

	return log
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
