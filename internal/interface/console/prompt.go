package console

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alem-hub/gradebook/internal/domain/shared"
)

// Prompter reads one line of input per question.
type Prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewPrompter creates a Prompter reading from in and writing prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{scanner: bufio.NewScanner(in), out: out}
}

// Ask writes label and returns the next input line without its line ending.
// It returns io.EOF once the input is exhausted.
func (p *Prompter) Ask(label string) (string, error) {
	fmt.Fprint(p.out, label)
	if p.scanner.Scan() {
		return strings.TrimRight(p.scanner.Text(), "\r"), nil
	}
	// Keep the next output on its own line when input ends mid-prompt.
	fmt.Fprintln(p.out)
	if err := p.scanner.Err(); err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return "", io.EOF
}

// Confirm asks a yes/no question; anything but "y" or "yes" is no.
func (p *Prompter) Confirm(label string) (bool, error) {
	answer, err := p.Ask(label)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// ParseGrades splits input on spaces and commas and parses each number.
// Range checks are left to the command so every rule lives in one place.
func ParseGrades(input string) ([]float64, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})

	grades := make([]float64, 0, len(fields))
	for _, f := range fields {
		g, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, shared.WrapError("console", "ParseGrades", shared.ErrInvalidFormat,
				fmt.Sprintf("%q is not a number", f), err)
		}
		grades = append(grades, g)
	}
	return grades, nil
}
