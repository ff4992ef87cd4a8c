package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/evcenter-admin/guard"
	"github.com/jrsteele09/evcenter-admin/resources"
	"github.com/jrsteele09/evcenter-admin/roles"
	"github.com/jrsteele09/evcenter-admin/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	if s.config.SSOEnabled() {
		s.RegisterRouteFunc("GET "+RouteSSO, ChainMiddleware(s.SSOStartHandler(), s.HTMLMiddleWare()...))
		s.RegisterRouteFunc("GET "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleWare()...))
		s.RegisterRouteFunc("POST "+RouteCallback, ChainMiddleware(s.OAuthCallbackHandler(), s.HTMLMiddleWare()...)) // For form_post response mode
	}

	// Role home pages
	s.RegisterRouteFunc("GET "+RouteAdminHome, ChainMiddleware(s.HomeHandler(), s.HTMLMiddleWare(s.RequireRoles(guard.RequireRoles(roles.Admin)))...))
	s.RegisterRouteFunc("GET "+RouteStaffHome, ChainMiddleware(s.HomeHandler(), s.HTMLMiddleWare(s.RequireRoles(guard.RequireRoles(roles.Staff)))...))
	s.RegisterRouteFunc("GET "+RouteTechnicianHome, ChainMiddleware(s.HomeHandler(), s.HTMLMiddleWare(s.RequireRoles(guard.RequireRoles(roles.Technician)))...))
	s.RegisterRouteFunc("GET "+RouteHome, ChainMiddleware(s.HomeHandler(), s.HTMLMiddleWare(s.RequireRoles(guard.RequireAuthenticated()))...))

	// Resource pages
	registerResource(s, resources.AppointmentsPage())
	registerResource(s, resources.CustomersPage())
	registerResource(s, resources.VehiclesPage())
	registerResource(s, resources.PartsPage())
	registerResource(s, resources.StaffPage())
	registerResource(s, resources.ShiftsPage())
	registerResource(s, resources.InvoicesPage())
	registerResource(s, resources.CentersPage())

	if s.config.ReportsEnabled() {
		s.pages = append(s.pages, pageEntry{Title: "Reports", Path: RouteReports, View: roles.Management})
		s.RegisterRouteFunc("GET "+RouteReports, ChainMiddleware(s.ReportsHandler(), s.HTMLMiddleWare(s.RequireRoles(guard.RequireSet(roles.Management)))...))
	}

	// API routes
	s.RegisterRouteFunc("GET "+RouteAPISession, ChainMiddleware(s.SessionAPIHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("OPTIONS "+RouteAPISession, ChainMiddleware(s.SessionAPIHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
	if s.config.MetricsEnabled() {
		s.RegisterRouteHandler("GET "+RouteMetrics, promhttp.Handler())
	}

	s.RegisterRouteFunc("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.URL.Path, "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := StreamFile(w, r, filePath); err != nil {
			log.Debug().Err(err).Str("path", filePath).Msg("static file not found")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
	}
}

// pageEntry is one navigation target.
type pageEntry struct {
	Title string
	Path  string
	View  roles.Set
}

// navFor lists the pages the viewer may open, in registration order.
func (s *Server) navFor(viewer *sessions.Session, current string) []navItem {
	if !sessions.IsAuthenticated(viewer) {
		return nil
	}
	entries := append([]pageEntry{{Title: "Home", Path: guard.HomePath(viewer.Role), View: roles.All}}, s.pages...)

	items := make([]navItem, 0, len(entries))
	for _, p := range entries {
		if !sessions.InSet(viewer, p.View) {
			continue
		}
		items = append(items, navItem{
			Title:  p.Title,
			Path:   p.Path,
			Active: current == p.Path || strings.HasPrefix(current, p.Path+"/"),
		})
	}
	return items
}
