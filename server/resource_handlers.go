package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/jrsteele09/evcenter-admin/crud"
	"github.com/jrsteele09/evcenter-admin/guard"
	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
	"github.com/jrsteele09/evcenter-admin/sessions"
	"github.com/rs/zerolog/log"
)

const (
	recordGoneMessage  = "That record is no longer on this page. Refresh and try again."
	formExpiredMessage = "This form expired because the page was opened elsewhere. Reopen it and try again."
)

// resourceHandlers serves one resource page: the list, its create/edit dialog and the delete
// confirmation. Mutations redirect back to the list, which renders the patched rows without a
// refetch.
type resourceHandlers[T crud.Record] struct {
	s   *Server
	def *crud.Definition[T]
}

func registerResource[T crud.Record](s *Server, def *crud.Definition[T]) {
	h := &resourceHandlers[T]{s: s, def: def}
	base := "/" + def.Segment()
	s.pages = append(s.pages, pageEntry{Title: def.Title, Path: base, View: def.Access.View})

	mw := s.HTMLMiddleWare(s.RequireRoles(guard.RequireSet(def.Access.View)))
	s.RegisterRouteFunc("GET "+base, ChainMiddleware(h.list, mw...))
	s.RegisterRouteFunc("GET "+base+suffixNew, ChainMiddleware(h.openCreate, mw...))
	s.RegisterRouteFunc("GET "+base+suffixEdit, ChainMiddleware(h.openEdit, mw...))
	s.RegisterRouteFunc("POST "+base+suffixSave, ChainMiddleware(h.save, mw...))
	s.RegisterRouteFunc("POST "+base+suffixCloseDialog, ChainMiddleware(h.closeDialog, mw...))
	s.RegisterRouteFunc("GET "+base+suffixDelete, ChainMiddleware(h.requestDelete, mw...))
	s.RegisterRouteFunc("POST "+base+suffixConfirmDelete, ChainMiddleware(h.confirmDelete, mw...))
	s.RegisterRouteFunc("POST "+base+suffixCancelDelete, ChainMiddleware(h.cancelDelete, mw...))
}

func (h *resourceHandlers[T]) listPath() string {
	return "/" + h.def.Segment()
}

func (h *resourceHandlers[T]) page(r *http.Request) *crud.Page[T] {
	ws := h.s.workspaces.Get(slotFromContext(r.Context()))
	return mountPage(ws, h.def, h.s.config.GetPageSize())
}

// load fetches number when the page has nothing yet, the page number changed or a refresh was
// asked for. It reports false when the response has already been written.
func (h *resourceHandlers[T]) load(w http.ResponseWriter, r *http.Request, p *crud.Page[T], number int, refresh bool) bool {
	if p.State() != crud.Idle && number == p.Cursor().Number && !refresh {
		return true
	}
	err := p.Load(r.Context(), number)
	if err == nil || errors.Is(err, apperrors.ErrDiscarded) {
		return true
	}
	return !h.s.handleBackendError(w, r, err, h.listPath())
}

func (h *resourceHandlers[T]) render(w http.ResponseWriter, r *http.Request, p *crud.Page[T]) {
	view := p.View(sessions.FromContext(r.Context()))
	h.s.renderPage(w, http.StatusOK, "list.html", h.s.newPageData(r, view.Title, view, p.DrainNotices()...))
}

func (h *resourceHandlers[T]) list(w http.ResponseWriter, r *http.Request) {
	p := h.page(r)
	q := r.URL.Query()

	number := p.Cursor().Number
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 0 {
		number = n
	}
	if q.Has("q") {
		p.Filter(q.Get("q"))
	}
	if !h.load(w, r, p, number, q.Get("refresh") != "") {
		return
	}
	h.render(w, r, p)
}

func (h *resourceHandlers[T]) openCreate(w http.ResponseWriter, r *http.Request) {
	if !h.def.CanMutate(sessions.FromContext(r.Context())) {
		redirectSuccess(w, r, h.listPath())
		return
	}
	p := h.page(r)
	if !h.load(w, r, p, p.Cursor().Number, false) {
		return
	}
	p.OpenCreate()
	h.render(w, r, p)
}

func (h *resourceHandlers[T]) openEdit(w http.ResponseWriter, r *http.Request) {
	if !h.def.CanMutate(sessions.FromContext(r.Context())) {
		redirectSuccess(w, r, h.listPath())
		return
	}
	p := h.page(r)
	if !h.load(w, r, p, p.Cursor().Number, false) {
		return
	}
	if err := p.OpenEdit(r.PathValue("id")); err != nil {
		redirectWithError(w, r, h.listPath(), recordGoneMessage)
		return
	}
	h.render(w, r, p)
}

func (h *resourceHandlers[T]) save(w http.ResponseWriter, r *http.Request) {
	if !h.def.CanMutate(sessions.FromContext(r.Context())) {
		redirectSuccess(w, r, h.listPath())
		return
	}
	if err := r.ParseForm(); err != nil {
		redirectWithError(w, r, h.listPath(), "Invalid form data")
		return
	}
	values := make(map[string]string, len(h.def.Fields))
	for _, f := range h.def.Fields {
		values[f.Name] = r.PostForm.Get(f.Name)
	}

	p := h.page(r)
	if _, err := p.Submit(r.Context(), values); err != nil {
		if h.s.handleBackendError(w, r, err, h.listPath()) {
			return
		}
		if errors.Is(err, apperrors.ErrNoDialog) {
			redirectWithError(w, r, h.listPath(), formExpiredMessage)
			return
		}
		log.Debug().Err(err).Str("resource", h.def.Name).Msg("submit did not complete")
	}
	redirectSuccess(w, r, h.listPath())
}

func (h *resourceHandlers[T]) closeDialog(w http.ResponseWriter, r *http.Request) {
	h.page(r).CloseDialog()
	redirectSuccess(w, r, h.listPath())
}

func (h *resourceHandlers[T]) requestDelete(w http.ResponseWriter, r *http.Request) {
	if !h.def.CanDelete(sessions.FromContext(r.Context())) {
		redirectSuccess(w, r, h.listPath())
		return
	}
	p := h.page(r)
	if !h.load(w, r, p, p.Cursor().Number, false) {
		return
	}
	if err := p.RequestDelete(r.PathValue("id")); err != nil {
		redirectWithError(w, r, h.listPath(), recordGoneMessage)
		return
	}
	h.render(w, r, p)
}

func (h *resourceHandlers[T]) confirmDelete(w http.ResponseWriter, r *http.Request) {
	if !h.def.CanDelete(sessions.FromContext(r.Context())) {
		redirectSuccess(w, r, h.listPath())
		return
	}
	if err := h.page(r).ConfirmDelete(r.Context()); err != nil {
		if h.s.handleBackendError(w, r, err, h.listPath()) {
			return
		}
		if errors.Is(err, apperrors.ErrNoConfirmation) {
			redirectWithError(w, r, h.listPath(), formExpiredMessage)
			return
		}
		log.Debug().Err(err).Str("resource", h.def.Name).Msg("delete did not complete")
	}
	redirectSuccess(w, r, h.listPath())
}

func (h *resourceHandlers[T]) cancelDelete(w http.ResponseWriter, r *http.Request) {
	h.page(r).CancelDelete()
	redirectSuccess(w, r, h.listPath())
}
