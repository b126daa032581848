package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nailstudio/agenda/internal/client/models"
)

var (
	anonymous = models.Session{}
	admin     = models.Session{User: &models.User{ID: "1", Username: "root", Role: models.RoleAdmin}, Token: "a"}
	operator  = models.Session{User: &models.User{ID: "7", Username: "ana", Role: models.RoleOperator}, Token: "t1"}
)

func TestResolve_Table(t *testing.T) {
	r := Default()

	// want is "" when allowed, otherwise the redirect target.
	cases := []struct {
		path                  string
		anon, admin, operator string
	}{
		{"/", "", DashboardPath, DashboardPath},
		{"/login", "", DashboardPath, DashboardPath},
		{"/dashboard", LoginPath, "", ""},
		{"/register", LoginPath, "", DashboardPath},
		{"/users", LoginPath, "", DashboardPath},
		{"/appointments", LoginPath, DashboardPath, ""},
		{"/appointments/new", LoginPath, DashboardPath, ""},
		{"/appointments/42/edit", LoginPath, DashboardPath, ""},
		{"/clients", LoginPath, DashboardPath, ""},
		{"/clients/new", LoginPath, DashboardPath, ""},
		{"/services", LoginPath, DashboardPath, ""},
		{"/services/new", LoginPath, DashboardPath, ""},
		{"/nope", LoginPath, LoginPath, LoginPath},
		{"/appointments/42", LoginPath, LoginPath, LoginPath},
	}

	check := func(t *testing.T, path string, s models.Session, want string) {
		t.Helper()
		d := r.Resolve(path, s)
		if want == "" {
			assert.True(t, d.Allowed, "%s should be allowed", path)
			assert.Empty(t, d.RedirectTo)
		} else {
			assert.False(t, d.Allowed, "%s should redirect", path)
			assert.Equal(t, want, d.RedirectTo, path)
		}
	}

	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			check(t, tc.path, anonymous, tc.anon)
			check(t, tc.path, admin, tc.admin)
			check(t, tc.path, operator, tc.operator)
		})
	}
}

func TestResolve_Params(t *testing.T) {
	d := Default().Resolve("/appointments/64f0c2/edit", operator)
	require.True(t, d.Allowed)
	assert.Equal(t, ScreenEditAppointment, d.Route.Screen)
	assert.Equal(t, map[string]string{"id": "64f0c2"}, d.Params)
}

func TestResolve_NormalizesPath(t *testing.T) {
	r := Default()
	for _, p := range []string{"/clients/", "/clients?q=ana", "clients", "/clients/#top"} {
		d := r.Resolve(p, operator)
		assert.True(t, d.Allowed, p)
		assert.Equal(t, "/clients", d.Path, p)
		assert.Equal(t, ScreenClients, d.Route.Screen, p)
	}
	assert.Equal(t, "/", r.Resolve("///", anonymous).Path)
}

func TestResolve_IncompleteSessionIsAnonymous(t *testing.T) {
	d := Default().Resolve("/dashboard", models.Session{Token: "t"})
	assert.Equal(t, LoginPath, d.RedirectTo)
}

func TestNavigator_FollowsRedirects(t *testing.T) {
	s := anonymous
	n := NewNavigator(Default(), func() models.Session { return s })

	d, err := n.Navigate("/clients")
	require.NoError(t, err)
	assert.Equal(t, ScreenLogin, d.Route.Screen)
	assert.Equal(t, LoginPath, n.Current().Path)

	s = admin
	d, err = n.Navigate("/clients")
	require.NoError(t, err)
	assert.Equal(t, ScreenDashboard, d.Route.Screen)

	// unknown path while signed in: login, then back to the dashboard
	s = operator
	d, err = n.Navigate("/whatever")
	require.NoError(t, err)
	assert.Equal(t, DashboardPath, d.Path)
}

func TestNavigator_RedirectLoop(t *testing.T) {
	loop := New([]Route{{"/login", Authenticated, ScreenLogin}, {"/dashboard", Public, ScreenDashboard}})
	n := NewNavigator(loop, func() models.Session { return admin })

	_, err := n.Navigate("/dashboard")
	require.ErrorIs(t, err, ErrRedirectLoop)
}

func TestNavigator_Pending(t *testing.T) {
	n := NewNavigator(Default(), func() models.Session { return anonymous })

	_, ok := n.TakePending()
	assert.False(t, ok)

	n.Redirect(LoginPath)
	assert.True(t, n.HasPending())
	p, ok := n.TakePending()
	assert.True(t, ok)
	assert.Equal(t, LoginPath, p)

	_, ok = n.TakePending()
	assert.False(t, ok)
	assert.False(t, n.HasPending())

	n.Redirect(LoginPath)
	_, err := n.Navigate("/")
	require.NoError(t, err)
	_, ok = n.TakePending()
	assert.False(t, ok)
}

func TestAccess_String(t *testing.T) {
	assert.Equal(t, "operator", OperatorOnly.String())
	assert.Equal(t, "unknown", Access(42).String())
}
