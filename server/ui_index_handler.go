package server

import (
	"net/http"

	"github.com/jrsteele09/evcenter-admin/guard"
	"github.com/jrsteele09/evcenter-admin/sessions"
)

// IndexHandler sends signed-in users to their home page and everyone else to login.
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, _, res := s.resolve(r)
		if !sessions.IsAuthenticated(res.Session) {
			redirectSuccess(w, r, RouteLogin)
			return
		}
		redirectSuccess(w, r, guard.HomePath(res.Session.Role))
	}
}

// HomePageData is the role landing page.
type HomePageData struct {
	Greeting string
	Role     string
	Links    []navItem
}

func (s *Server) HomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessions.FromContext(r.Context())
		data := HomePageData{
			Greeting: session.DisplayName(),
			Role:     session.Role.Label(),
		}
		for _, item := range s.navFor(session, r.URL.Path) {
			if !item.Active {
				data.Links = append(data.Links, item)
			}
		}
		s.renderPage(w, http.StatusOK, "home.html", s.newPageData(r, "Home", data))
	}
}
