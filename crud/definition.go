// Package crud is the list, dialog and confirmation pattern every resource page follows.
//
// A Page loads one page of records through the gateway, filters the fetched rows locally, and
// patches its list from mutation responses without refetching. Deleting always goes through an
// explicit confirmation step.
package crud

import (
	"context"

	"github.com/jrsteele09/evcenter-admin/gateway"
	"github.com/jrsteele09/evcenter-admin/roles"
	"github.com/jrsteele09/evcenter-admin/sessions"
)

// Record is anything with a stable identifier.
type Record interface {
	RecordID() string
}

// Backend is the slice of the gateway a Page needs. *gateway.Resource satisfies it.
type Backend[T Record] interface {
	List(ctx context.Context, p gateway.Page) (gateway.ListResult[T], error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id string, rec T) (T, error)
	Delete(ctx context.Context, id string) error
}

// Column is one table column.
type Column[T any] struct {
	Header     string
	Value      func(T) string
	Filterable bool
}

// Access is who may do what on a page.
type Access struct {
	View   roles.Set
	Mutate roles.Set
	Delete roles.Set
}

// Definition describes one resource page.
type Definition[T Record] struct {
	Name     string // Backend collection, and URL segment unless Path is set
	Path     string
	Title    string
	Singular string
	Columns  []Column[T]
	Fields   []Field[T]
	Access   Access

	// New returns the record a create dialog starts from. Nil means the zero value.
	New func() T
	// Describe names a record in the delete confirmation.
	Describe func(T) string
	// Less, when set, orders the visible rows. Presentation only; never sent to the backend.
	Less func(a, b T) bool
}

// Segment is the URL segment the page is served under.
func (d *Definition[T]) Segment() string {
	if d.Path != "" {
		return d.Path
	}
	return d.Name
}

func (d *Definition[T]) CanView(s *sessions.Session) bool {
	return sessions.InSet(s, d.Access.View)
}

func (d *Definition[T]) CanMutate(s *sessions.Session) bool {
	return sessions.InSet(s, d.Access.Mutate)
}

func (d *Definition[T]) CanDelete(s *sessions.Session) bool {
	return sessions.InSet(s, d.Access.Delete)
}

func (d *Definition[T]) newRecord() T {
	if d.New != nil {
		return d.New()
	}
	var zero T
	return zero
}

func (d *Definition[T]) describe(rec T) string {
	if d.Describe != nil {
		if s := d.Describe(rec); s != "" {
			return s
		}
	}
	return d.Singular + " " + rec.RecordID()
}

func (d *Definition[T]) labels() map[string]string {
	out := make(map[string]string, len(d.Fields))
	for _, f := range d.Fields {
		out[f.Name] = f.Label
	}
	return out
}
