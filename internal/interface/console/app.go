// Package console implements the interactive terminal interface: a numbered
// menu that reads plain lines from an input stream and drives the command and
// query handlers.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/internal/application/query"
	"github.com/alem-hub/gradebook/internal/interface/console/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ExportFunc writes a report to path and returns the path actually written.
type ExportFunc func(path string, report *query.PerformanceReport) (string, error)

// Handlers are the application use cases the menu drives.
type Handlers struct {
	Register *command.RegisterStudentHandler
	AddGrade *command.AddGradeHandler
	Save     *command.SaveRosterHandler
	Search   *query.SearchStudentsHandler
	List     *query.ListStudentsHandler
	Report   *query.PerformanceReportHandler

	// Export is optional; without it the export option is hidden.
	Export ExportFunc
}

// Config contains the console I/O settings.
type Config struct {
	In     io.Reader
	Out    io.Writer
	Logger *slog.Logger

	// DefaultExportPath is offered when exporting a report.
	DefaultExportPath string
}

// ══════════════════════════════════════════════════════════════════════════════
// APP
// ══════════════════════════════════════════════════════════════════════════════

// App is the interactive menu loop.
type App struct {
	handlers   Handlers
	prompt     *Prompter
	out        io.Writer
	logger     *slog.Logger
	exportPath string
	options    []option
}

type option struct {
	key   string
	title string
	run   func(ctx context.Context) error
	quit  bool
}

// NewApp creates the menu app.
func NewApp(h Handlers, cfg Config) *App {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.DefaultExportPath == "" {
		cfg.DefaultExportPath = "report.xlsx"
	}

	a := &App{
		handlers:   h,
		prompt:     NewPrompter(cfg.In, cfg.Out),
		out:        cfg.Out,
		logger:     cfg.Logger.With("component", "console"),
		exportPath: cfg.DefaultExportPath,
	}
	a.options = a.buildOptions()
	return a
}

func (a *App) buildOptions() []option {
	actions := []option{
		{title: "Register student", run: a.register},
		{title: "Add grades", run: a.addGrades},
		{title: "Performance report", run: a.report},
		{title: "Search students", run: a.search},
		{title: "List all students", run: a.list},
		{title: "Sort students", run: a.sort},
	}
	if a.handlers.Export != nil {
		actions = append(actions, option{title: "Export report to Excel", run: a.export})
	}
	actions = append(actions, option{title: "Save and exit", quit: true})

	for i := range actions {
		actions[i].key = fmt.Sprint(i + 1)
	}
	return actions
}

// Run shows the menu until the user quits or the input ends. Both are a
// normal exit; only a failure to read input is returned.
func (a *App) Run(ctx context.Context) error {
	fmt.Fprintln(a.out, "Welcome to the Student Grade Management System.")

	for {
		if ctx.Err() != nil {
			return a.quit(ctx)
		}

		a.printMenu()
		choice, err := a.prompt.Ask(fmt.Sprintf("Select an option (1-%d): ", len(a.options)))
		if errors.Is(err, io.EOF) {
			return a.quit(ctx)
		}
		if err != nil {
			return err
		}

		opt, ok := a.lookup(strings.TrimSpace(choice))
		if !ok {
			fmt.Fprintln(a.out, "Unknown option, try again.")
			continue
		}
		if opt.quit {
			return a.quit(ctx)
		}

		a.logger.Debug("menu option selected", "option", opt.title)
		err = opt.run(ctx)
		switch {
		case errors.Is(err, io.EOF):
			return a.quit(ctx)
		case err != nil:
			a.logger.Debug("menu option failed", "option", opt.title, "error", err)
			fmt.Fprintln(a.out, presenter.Error(err))
		}
	}
}

func (a *App) printMenu() {
	var sb strings.Builder
	sb.WriteString("\n===== Student Grade Manager =====\n")
	for _, o := range a.options {
		fmt.Fprintf(&sb, "%s. %s\n", o.key, o.title)
	}
	fmt.Fprint(a.out, sb.String())
}

func (a *App) lookup(key string) (option, bool) {
	for _, o := range a.options {
		if o.key == key {
			return o, true
		}
	}
	return option{}, false
}

// quit makes a final save attempt. A failure is reported but does not change
// the outcome of the run.
func (a *App) quit(ctx context.Context) error {
	if a.handlers.Save == nil {
		fmt.Fprintln(a.out, "Goodbye!")
		return nil
	}

	if _, err := a.handlers.Save.Handle(context.WithoutCancel(ctx)); err != nil {
		fmt.Fprintln(a.out, presenter.Error(err))
		fmt.Fprintln(a.out, "Some changes may not have been saved. Goodbye!")
		return nil
	}
	fmt.Fprintln(a.out, "All changes saved. Goodbye!")
	return nil
}
