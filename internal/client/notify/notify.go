// Package notify shows short, transient messages to the user.
package notify

import (
	"fmt"
	"io"
	"sync"
)

type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Console prints one line per message.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Success(msg string) { c.print("✔", msg) }
func (c *Console) Error(msg string)   { c.print("✖", msg) }

func (c *Console) print(mark, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.w, "%s %s\n", mark, msg)
}

// Nop drops every message.
func Nop() Notifier { return nop{} }

type nop struct{}

func (nop) Success(string) {}
func (nop) Error(string)   {}

// Recorder keeps messages in memory. Tests use it to assert on what the
// user was shown.
type Recorder struct {
	mu        sync.Mutex
	Successes []string
	Errors    []string
}

func (r *Recorder) Success(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Successes = append(r.Successes, msg)
}

func (r *Recorder) Error(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, msg)
}

func (r *Recorder) LastError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Errors) == 0 {
		return ""
	}
	return r.Errors[len(r.Errors)-1]
}

func (r *Recorder) LastSuccess() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.Successes) == 0 {
		return ""
	}
	return r.Successes[len(r.Successes)-1]
}
