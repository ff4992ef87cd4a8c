package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteLogin    = "/login"
	RouteLogout   = "/logout"
	RouteSSO      = "/auth/sso"
	RouteCallback = "/callback"

	// Role home pages
	RouteHome           = "/home"
	RouteAdminHome      = "/admin"
	RouteStaffHome      = "/staff"
	RouteTechnicianHome = "/technician"

	RouteReports = "/reports"

	// API Routes
	RouteAPISession = "/api/session"
	RouteHealth     = "/healthz"
	RouteMetrics    = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)

// Resource page suffixes, appended to "/" + collection name.
const (
	suffixNew           = "/new"
	suffixSave          = "/save"
	suffixCloseDialog   = "/dialog/close"
	suffixEdit          = "/{id}/edit"
	suffixDelete        = "/{id}/delete"
	suffixConfirmDelete = "/delete/confirm"
	suffixCancelDelete  = "/delete/cancel"
)
