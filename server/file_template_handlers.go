package server

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/jrsteele09/evcenter-admin/crud"
	"github.com/jrsteele09/evcenter-admin/sessions"
	"github.com/rs/zerolog/log"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeJSON = "application/json; charset=utf-8"

	layoutTemplate = "layout.html"
)

//go:embed templates/*
var templateFiles embed.FS

// pageTemplates lists the templates rendered inside the shared layout.
var pageTemplates = []string{"login.html", "home.html", "list.html", "report.html"}

var templateFuncs = template.FuncMap{
	"lower": strings.ToLower,
	"inc":   func(n int) int { return n + 1 },
	"isError": func(n crud.Notice) bool {
		return n.Kind == crud.NoticeError
	},
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page template together with the shared layout.
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), layoutTemplate, name)
}

// loadTemplates parses every page template once at startup.
func loadTemplates() (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pageTemplates))
	for _, name := range pageTemplates {
		t, err := ParseTemplate(name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		out[name] = t
	}
	return out, nil
}

type navItem struct {
	Title  string
	Path   string
	Active bool
}

// pageData is what the layout renders around every page.
type pageData struct {
	AppName string
	Title   string
	Session *sessions.Session
	Nav     []navItem
	Notices []crud.Notice
	Content any
}

// newPageData fills the layout for the signed-in viewer. An error query parameter becomes a notice.
func (s *Server) newPageData(r *http.Request, title string, content any, notices ...crud.Notice) pageData {
	session := sessions.FromContext(r.Context())
	if msg := r.URL.Query().Get("error"); msg != "" {
		notices = append(notices, crud.Notice{Kind: crud.NoticeError, Message: msg})
	}
	return pageData{
		AppName: s.config.GetAppName(),
		Title:   title,
		Session: session,
		Nav:     s.navFor(session, r.URL.Path),
		Notices: notices,
		Content: content,
	}
}

// renderPage executes into a buffer first so a template failure never leaves a half-written page.
func (s *Server) renderPage(w http.ResponseWriter, status int, name string, data pageData) {
	tmpl, ok := s.templates[name]
	if !ok {
		log.Error().Str("template", name).Msg("unknown template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug().Err(err).Str("template", name).Msg("client went away during render")
	}
}
