package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nailstudio/agenda/internal/client/validate"
)

// prompter reads a sequence of form fields, stopping at the first input
// error so callers check once at the end.
type prompter struct {
	r   *bufio.Reader
	w   io.Writer
	err error
}

func (a *App) prompter() *prompter {
	return &prompter{r: a.reader, w: a.out}
}

func (p *prompter) text(prompt string) string {
	if p.err != nil {
		return ""
	}
	s, err := GetSimpleText(p.r, prompt, p.w)
	p.err = err
	return s
}

func (p *prompter) withDefault(prompt, def string) string {
	if p.err != nil {
		return ""
	}
	s, err := GetWithDefault(p.r, prompt, def, p.w)
	p.err = err
	return s
}

func (p *prompter) password(prompt string) string {
	if p.err != nil {
		return ""
	}
	b, err := getPassword(p.r, prompt, p.w)
	p.err = err
	return string(b)
}

func (p *prompter) done() error {
	if p.err != nil {
		return fmt.Errorf("read input: %w", p.err)
	}
	return nil
}

// confirm asks before a destructive action and says so when the user
// backs out.
func (a *App) confirm(prompt string) (bool, error) {
	yes, err := Confirm(a.reader, prompt, a.out)
	if err != nil {
		return false, fmt.Errorf("read input: %w", err)
	}
	if !yes {
		fmt.Fprintln(a.out, "Cancelled")
	}
	return yes, nil
}

// parseServiceNumbers parses the numeric fields of a service form. Unparseable input
// is reported the same way as a failed validation.
func parseServiceNumbers(price, duration string) (float64, int, error) {
	errs := validate.Errors{}
	p, err := strconv.ParseFloat(strings.TrimSpace(price), 64)
	if err != nil {
		errs["price"] = "price must be a number"
	}
	d, err := strconv.Atoi(strings.TrimSpace(duration))
	if err != nil {
		errs["durationMinutes"] = "durationMinutes must be a whole number of minutes"
	}
	if len(errs) > 0 {
		return 0, 0, errs
	}
	return p, d, nil
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
