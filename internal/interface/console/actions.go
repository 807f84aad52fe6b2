package console

import (
	"context"
	"fmt"
	"strings"

	"github.com/alem-hub/gradebook/internal/application/command"
	"github.com/alem-hub/gradebook/internal/application/query"
	"github.com/alem-hub/gradebook/internal/domain/roster"
	"github.com/alem-hub/gradebook/internal/domain/shared"
	"github.com/alem-hub/gradebook/internal/interface/console/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// MENU ACTIONS
// Each action collects its input, calls one handler and prints the outcome.
// A returned error is rendered by the menu loop.
// ══════════════════════════════════════════════════════════════════════════════

func invalidChoice(op string) error {
	return shared.NewDomainError("console", op, shared.ErrInvalidFormat, "invalid choice")
}

func (a *App) register(ctx context.Context) error {
	id, err := a.prompt.Ask("Enter student ID: ")
	if err != nil {
		return err
	}
	// Reject a taken ID before asking for the name.
	if strings.TrimSpace(id) != "" && a.handlers.Register.Exists(id) {
		return shared.ErrStudentAlreadyExists
	}

	name, err := a.prompt.Ask("Enter student name: ")
	if err != nil {
		return err
	}

	res, err := a.handlers.Register.Handle(ctx, command.RegisterStudentCommand{StudentID: id, Name: name})
	if res != nil {
		fmt.Fprintf(a.out, "Student '%s' registered successfully.\n", res.Name)
	}
	return err
}

func (a *App) addGrades(ctx context.Context) error {
	id, err := a.prompt.Ask("Enter student ID: ")
	if err != nil {
		return err
	}
	if _, err := a.handlers.AddGrade.Lookup(id); err != nil {
		return err
	}

	raw, err := a.prompt.Ask("Enter grades (0-100) separated by spaces: ")
	if err != nil {
		return err
	}
	grades, err := ParseGrades(raw)
	if err != nil {
		return err
	}

	res, err := a.handlers.AddGrade.Handle(ctx, command.AddGradeCommand{StudentID: id, Grades: grades})
	if res != nil {
		fmt.Fprintf(a.out, "Grades updated for %s. Average is now %.2f.\n", res.Name, res.Average)
	}
	return err
}

func (a *App) report(ctx context.Context) error {
	choice, err := a.prompt.Ask("View (1) all students or (2) one student? (1/2): ")
	if err != nil {
		return err
	}

	var q query.PerformanceReportQuery
	switch strings.TrimSpace(choice) {
	case "1", "":
	case "2":
		id, err := a.prompt.Ask("Enter student ID: ")
		if err != nil {
			return err
		}
		q.StudentID = id
	default:
		return invalidChoice("Report")
	}

	report, err := a.handlers.Report.Handle(ctx, q)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, presenter.Report(report))
	return nil
}

func (a *App) search(ctx context.Context) error {
	text, err := a.prompt.Ask("Enter ID or name to search: ")
	if err != nil {
		return err
	}

	res, err := a.handlers.Search.Handle(ctx, query.SearchStudentsQuery{Query: text})
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, presenter.SearchResults(res))
	return nil
}

func (a *App) list(ctx context.Context) error {
	res, err := a.handlers.List.Handle(ctx, query.ListStudentsQuery{})
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, presenter.Students("All Students", res.Students))
	return nil
}

func (a *App) sort(ctx context.Context) error {
	fmt.Fprintln(a.out, "Sort students by:")
	fmt.Fprintln(a.out, "1. Student ID")
	fmt.Fprintln(a.out, "2. Name")
	fmt.Fprintln(a.out, "3. Average grade")

	choice, err := a.prompt.Ask("Choose (1-3): ")
	if err != nil {
		return err
	}

	var key roster.SortKey
	switch strings.TrimSpace(choice) {
	case "1":
		key = roster.SortByID
	case "2":
		key = roster.SortByName
	case "3":
		key = roster.SortByAverage
	default:
		return invalidChoice("Sort")
	}

	descending, err := a.prompt.Confirm("Descending order? (y/n): ")
	if err != nil {
		return err
	}

	res, err := a.handlers.List.Handle(ctx, query.ListStudentsQuery{SortBy: key, Descending: descending})
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, presenter.Students(presenter.SortTitle(key, descending), res.Students))
	return nil
}

func (a *App) export(ctx context.Context) error {
	path, err := a.prompt.Ask(fmt.Sprintf("Export file [%s]: ", a.exportPath))
	if err != nil {
		return err
	}
	if strings.TrimSpace(path) == "" {
		path = a.exportPath
	}

	report, err := a.handlers.Report.Handle(ctx, query.PerformanceReportQuery{})
	if err != nil {
		return err
	}

	written, err := a.handlers.Export(strings.TrimSpace(path), report)
	if err != nil {
		return err
	}
	a.logger.Info("report exported", "path", written, "students", len(report.Entries))
	fmt.Fprintf(a.out, "Report exported to %s.\n", written)
	return nil
}
