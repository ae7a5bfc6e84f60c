package authz

import (
	"log/slog"

	"github.com/bizpulse/bizdash/internal/session"
)

// Decision is the navigation outcome for a screen request.
type Decision int

const (
	// DecisionAllow mounts the requested screen.
	DecisionAllow Decision = iota
	// DecisionLogin redirects an unauthenticated caller to the login screen.
	DecisionLogin
	// DecisionHome redirects an authenticated but forbidden caller to the
	// default landing screen. Never to login: a forbidden screen must not
	// present itself as an authentication failure.
	DecisionHome
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionLogin:
		return "redirect-login"
	case DecisionHome:
		return "redirect-home"
	}
	return "unknown"
}

// Route names one navigable screen and the roles allowed to mount it.
// An empty RequiredRoles set means any authenticated role.
type Route struct {
	Name          string
	RequiredRoles []session.Role
}

const (
	RouteDashboard = "dashboard"
	RouteInventory = "inventory"
	RouteSales     = "sales"
	RouteEmployees = "employees"
	RouteFinance   = "finance"
	RouteAdmin     = "admin"
	RouteAssistant = "assistant"
)

// DefaultRoutes is the screen table for the dashboard application. Only the
// admin screen is restricted; everything else is open to any signed-in role.
func DefaultRoutes() []Route {
	return []Route{
		{Name: RouteDashboard},
		{Name: RouteInventory},
		{Name: RouteSales},
		{Name: RouteEmployees},
		{Name: RouteFinance},
		{Name: RouteAdmin, RequiredRoles: []session.Role{session.RoleAdmin}},
		{Name: RouteAssistant},
	}
}

// Navigator applies the navigation policy on top of CanAccess.
type Navigator struct {
	store   *session.Store
	ordered []Route
	routes  map[string]Route
	logger  *slog.Logger
}

func NewNavigator(store *session.Store, routes []Route, logger *slog.Logger) *Navigator {
	byName := make(map[string]Route, len(routes))
	for _, rt := range routes {
		byName[rt.Name] = rt
	}
	return &Navigator{store: store, ordered: routes, routes: byName, logger: logger}
}

// Decide resolves a navigation attempt. Unknown routes are treated like
// forbidden ones: an authenticated caller lands home rather than on an
// error surface.
func (n *Navigator) Decide(routeName string) Decision {
	principal, ok := n.store.Current()
	if !ok {
		return DecisionLogin
	}

	rt, known := n.routes[routeName]
	if !known {
		n.logger.Warn("navigation to unknown route", "route", routeName)
		return DecisionHome
	}

	if !CanAccess(&principal, rt.RequiredRoles) {
		n.logger.Warn("screen denied: insufficient role",
			"route", routeName,
			"role", principal.Role)
		return DecisionHome
	}

	return DecisionAllow
}

// Visible filters the route table down to the screens the current principal
// may mount, preserving table order. Used to build navigation menus.
func (n *Navigator) Visible() []Route {
	principal, ok := n.store.Current()
	if !ok {
		return nil
	}

	var out []Route
	for _, rt := range n.ordered {
		if CanAccess(&principal, rt.RequiredRoles) {
			out = append(out, rt)
		}
	}
	return out
}
