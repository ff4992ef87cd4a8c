// Package guard decides whether a route may render for the current session.
//
// A Guard is one parameterized predicate: every protected route differs only in its Requirement.
// Denials never surface as errors. Unauthenticated visitors are sent to the login page with the
// original path as the return parameter, and signed-in users without the required role are sent
// silently to their own home page.
package guard

import (
	"net/url"
	"strings"

	"github.com/jrsteele09/evcenter-admin/roles"
	"github.com/jrsteele09/evcenter-admin/sessions"
)

// State of a guard for one render pass.
type State int

const (
	Pending State = iota // Session not resolved yet; render nothing
	Denied               // Requirement not met; redirect, render nothing
	Allowed              // Render children
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Denied:
		return "denied"
	case Allowed:
		return "allowed"
	}
	return "unknown"
}

const (
	LoginPath = "/login"
	NextParam = "next"
)

// Requirement is what a route needs from the session.
type Requirement struct {
	roles            roles.Set
	anyAuthenticated bool
}

// RequireRoles admits sessions whose role is one of rs.
func RequireRoles(rs ...roles.Role) Requirement {
	return Requirement{roles: roles.NewSet(rs...)}
}

// RequireSet admits sessions whose role is in set.
func RequireSet(set roles.Set) Requirement {
	return Requirement{roles: set}
}

// RequireAuthenticated admits any signed-in session.
func RequireAuthenticated() Requirement {
	return Requirement{anyAuthenticated: true}
}

// Admits reports whether s satisfies the requirement. A nil session never does.
func (r Requirement) Admits(s *sessions.Session) bool {
	if r.anyAuthenticated {
		return sessions.IsAuthenticated(s)
	}
	return sessions.InSet(s, r.roles)
}

func (r Requirement) String() string {
	if r.anyAuthenticated {
		return "authenticated"
	}
	return r.roles.String()
}

// Resolution is the outcome of reading the session store.
type Resolution struct {
	Resolved bool
	Session  *sessions.Session
}

// Resolve reads the provider once. Reading never fails: no session means anonymous.
func Resolve(s sessions.Session, ok bool) Resolution {
	return Resolution{Resolved: true, Session: sessions.Ptr(s, ok)}
}

// Decision is what the route should do.
type Decision struct {
	State    State
	Redirect string // Set when State is Denied
}

// Evaluate applies the requirement to a resolution. requestURI is the path (and query) the visitor
// asked for, carried through login so they return to it afterwards.
func Evaluate(req Requirement, res Resolution, requestURI string) Decision {
	if !res.Resolved {
		return Decision{State: Pending}
	}
	if !sessions.IsAuthenticated(res.Session) {
		return Decision{State: Denied, Redirect: LoginURL(requestURI)}
	}
	if !req.Admits(res.Session) {
		return Decision{State: Denied, Redirect: HomePath(res.Session.Role)}
	}
	return Decision{State: Allowed}
}

// LoginURL builds the login path carrying next as the return parameter.
func LoginURL(next string) string {
	next = SafeNext(next)
	if next == "" || next == LoginPath {
		return LoginPath
	}
	return LoginPath + "?" + url.Values{NextParam: {next}}.Encode()
}

// HomePath is the landing page for a role.
func HomePath(r roles.Role) string {
	switch r {
	case roles.Admin:
		return "/admin"
	case roles.Staff:
		return "/staff"
	case roles.Technician:
		return "/technician"
	}
	return "/home"
}

// AfterLogin picks where to send a freshly signed-in user: the safe next path if any, else home.
func AfterLogin(next string, r roles.Role) string {
	if n := SafeNext(next); n != "" && n != LoginPath {
		return n
	}
	return HomePath(r)
}

// SafeNext returns next when it is a local absolute path, otherwise "".
func SafeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}
