// Package router decides which screen a path shows for a given session.
//
// The route table is declarative; Resolve is a pure function of the path
// and the session and never talks to the server. A token the server no
// longer accepts is only discovered on the next API call.
package router

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nailstudio/agenda/internal/client/models"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

type Access int

const (
	// Public routes are only for signed-out users.
	Public Access = iota
	Authenticated
	AdminOnly
	OperatorOnly
)

func (a Access) String() string {
	switch a {
	case Public:
		return "public"
	case Authenticated:
		return "authenticated"
	case AdminOnly:
		return "admin"
	case OperatorOnly:
		return "operator"
	}
	return "unknown"
}

type Screen string

const (
	ScreenLogin           Screen = "login"
	ScreenDashboard       Screen = "dashboard"
	ScreenRegister        Screen = "register"
	ScreenUsers           Screen = "users"
	ScreenAppointments    Screen = "appointments"
	ScreenNewAppointment  Screen = "appointment-new"
	ScreenEditAppointment Screen = "appointment-edit"
	ScreenClients         Screen = "clients"
	ScreenNewClient       Screen = "client-new"
	ScreenServices        Screen = "services"
	ScreenNewService      Screen = "service-new"
)

type Route struct {
	Pattern string
	Access  Access
	Screen  Screen
}

// Routes is the application's route table.
var Routes = []Route{
	{"/", Public, ScreenLogin},
	{LoginPath, Public, ScreenLogin},
	{DashboardPath, Authenticated, ScreenDashboard},

	{"/register", AdminOnly, ScreenRegister},
	{"/users", AdminOnly, ScreenUsers},

	{"/appointments", OperatorOnly, ScreenAppointments},
	{"/appointments/new", OperatorOnly, ScreenNewAppointment},
	{"/appointments/{id}/edit", OperatorOnly, ScreenEditAppointment},
	{"/clients", OperatorOnly, ScreenClients},
	{"/clients/new", OperatorOnly, ScreenNewClient},
	{"/services", OperatorOnly, ScreenServices},
	{"/services/new", OperatorOnly, ScreenNewService},
}

// Decision is the outcome of resolving a path. Exactly one of Allowed and
// RedirectTo is set.
type Decision struct {
	Allowed    bool
	Path       string
	Route      Route
	Params     map[string]string
	RedirectTo string
}

type Router struct {
	mux    *chi.Mux
	routes map[string]Route
}

func noop(http.ResponseWriter, *http.Request) {}

// New builds a Router from a table. It panics on a malformed or duplicated
// pattern, like chi does.
func New(routes []Route) *Router {
	r := &Router{mux: chi.NewRouter(), routes: make(map[string]Route, len(routes))}
	for _, rt := range routes {
		r.mux.Get(rt.Pattern, noop)
		r.routes[rt.Pattern] = rt
	}
	return r
}

// Default returns a Router over Routes.
func Default() *Router { return New(Routes) }

// Resolve applies, in order: unknown path goes to login; a public path
// with a session goes to the dashboard; a protected path without a
// session goes to login; a role mismatch goes to the dashboard.
func (r *Router) Resolve(path string, s models.Session) Decision {
	path = normalize(path)

	rt, params, ok := r.match(path)
	if !ok {
		return Decision{Path: path, RedirectTo: LoginPath}
	}
	d := Decision{Path: path, Route: rt, Params: params}

	authed := s.Authenticated()
	switch {
	case rt.Access == Public && authed:
		d.RedirectTo = DashboardPath
	case rt.Access != Public && !authed:
		d.RedirectTo = LoginPath
	case rt.Access == AdminOnly && !s.User.IsAdmin():
		d.RedirectTo = DashboardPath
	case rt.Access == OperatorOnly && !s.User.IsOperator():
		d.RedirectTo = DashboardPath
	default:
		d.Allowed = true
	}
	return d
}

func (r *Router) match(path string) (Route, map[string]string, bool) {
	rctx := chi.NewRouteContext()
	pattern := r.mux.Find(rctx, http.MethodGet, path)
	rt, ok := r.routes[pattern]
	if !ok {
		return Route{}, nil, false
	}

	var params map[string]string
	for i, k := range rctx.URLParams.Keys {
		if params == nil {
			params = make(map[string]string)
		}
		params[k] = rctx.URLParams.Values[i]
	}
	return rt, params, true
}

// normalize drops the query, fragment and trailing slashes.
func normalize(path string) string {
	if u, err := url.Parse(path); err == nil {
		path = u.Path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}
