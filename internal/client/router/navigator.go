package router

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nailstudio/agenda/internal/client/models"
)

const maxRedirects = 4

var ErrRedirectLoop = errors.New("too many redirects")

// Navigator tracks the current screen and follows redirects.
type Navigator struct {
	mu      sync.Mutex
	router  *Router
	session func() models.Session
	current Decision
	pending string
}

// NewNavigator resolves against whatever session returns at call time.
func NewNavigator(r *Router, session func() models.Session) *Navigator {
	return &Navigator{router: r, session: session}
}

// Navigate resolves path, following redirects, and makes the final allowed
// decision current. Any pending redirect is discarded.
func (n *Navigator) Navigate(path string) (Decision, error) {
	s := n.session()

	target := path
	for hop := 0; hop <= maxRedirects; hop++ {
		d := n.router.Resolve(target, s)
		if d.Allowed {
			n.mu.Lock()
			n.current = d
			n.pending = ""
			n.mu.Unlock()
			return d, nil
		}
		target = d.RedirectTo
	}
	return Decision{}, fmt.Errorf("navigate %s: %w", path, ErrRedirectLoop)
}

// Redirect records a navigation requested outside the normal flow, such as
// the request client's unauthorized hook. The owner applies it with
// TakePending once the current command has finished.
func (n *Navigator) Redirect(path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pending = path
}

func (n *Navigator) TakePending() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	p := n.pending
	n.pending = ""
	return p, p != ""
}

// HasPending reports whether a redirect is waiting to be applied.
func (n *Navigator) HasPending() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.pending != ""
}

func (n *Navigator) Current() Decision {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}
