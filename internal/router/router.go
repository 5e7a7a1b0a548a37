// Package router guards role-specific views. A Guard reads the session once
// per mount and decides whether the view renders or the caller is sent
// elsewhere.
package router

import (
	"context"
	"sync"
	"time"

	"clinic-booking-client/internal/model"
	"clinic-booking-client/internal/session"
)

const (
	RouteHome             = "/"
	RouteDoctorDashboard  = "/doctor/dashboard"
	RoutePatientDashboard = "/user/dashboard"
)

type State int

const (
	Checking State = iota
	Authorized
	Redirecting
)

func (s State) String() string {
	switch s {
	case Authorized:
		return "authorized"
	case Redirecting:
		return "redirecting"
	default:
		return "checking"
	}
}

type Decision struct {
	State    State
	Redirect string
	User     *model.User
}

func (d Decision) Authorized() bool { return d.State == Authorized }

// DashboardFor is the landing route of a role, or home for anything else.
func DashboardFor(r model.Role) string {
	switch r {
	case model.RoleDoctor:
		return RouteDoctorDashboard
	case model.RolePatient:
		return RoutePatientDashboard
	}
	return RouteHome
}

type Guard struct {
	store session.Store
	now   func() time.Time
}

func NewGuard(st session.Store) *Guard {
	return &Guard{store: st, now: time.Now}
}

// WithClock replaces the clock used for the token exp check.
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// Check runs the guard once against the current session.
func (g *Guard) Check(required model.Role) Decision {
	d := g.CheckAny()
	if d.Authorized() && d.User.Role != required {
		return Decision{State: Redirecting, Redirect: DashboardFor(d.User.Role), User: d.User}
	}
	return d
}

// CheckAny authorizes any logged-in user with an unexpired token,
// whatever the role.
func (g *Guard) CheckAny() Decision {
	tok, ok := g.store.Token()
	if !ok || session.Expired(tok, g.now()) {
		return Decision{State: Redirecting, Redirect: RouteHome}
	}
	u, ok := g.store.User()
	if !ok || u == nil {
		return Decision{State: Redirecting, Redirect: RouteHome}
	}
	return Decision{State: Authorized, User: u}
}

// Mount is one entry into a protected view. The decision is made on the
// first call to Decision and never revisited.
type Mount struct {
	guard    *Guard
	required model.Role

	mu       sync.Mutex
	decided  bool
	decision Decision
}

func (g *Guard) Mount(required model.Role) *Mount {
	return &Mount{guard: g, required: required}
}

func (m *Mount) Decision() Decision {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.decided {
		m.decision = m.guard.Check(m.required)
		m.decided = true
	}
	return m.decision
}

// State is Checking until Decision has been called.
func (m *Mount) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.decided {
		return Checking
	}
	return m.decision.State
}

type ctxKey string

const userKey ctxKey = "user"

// WithUser stores the authorized user on ctx for the rest of the command.
func WithUser(ctx context.Context, u *model.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func UserFrom(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok && u != nil
}
