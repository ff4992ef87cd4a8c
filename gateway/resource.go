package gateway

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultLimit is the page size used when a caller does not pick one.
const DefaultLimit = 20

// Page is a pagination cursor. Numbers start at 1.
type Page struct {
	Number int
	Limit  int
}

// Normalize clamps the cursor to valid values.
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	return p
}

// ListResult is one page of a resource list.
type ListResult[T any] struct {
	Items []T
	Total int
	Page  Page
}

func (l ListResult[T]) TotalPages() int {
	return TotalPages(l.Total, l.Page.Limit)
}

// TotalPages is ceil(total / limit). A non-positive limit yields 0.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Resource is the CRUD surface of one backend collection, e.g. /appointments.
type Resource[T any] struct {
	conn *Conn
	name string
}

func NewResource[T any](conn *Conn, name string) *Resource[T] {
	return &Resource[T]{conn: conn, name: name}
}

func (r *Resource[T]) Name() string {
	return r.name
}

func (r *Resource[T]) collection() string {
	return "/" + r.name
}

func (r *Resource[T]) item(id string) string {
	return "/" + r.name + "/" + url.PathEscape(id)
}

type listBody[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func (r *Resource[T]) List(ctx context.Context, p Page) (ListResult[T], error) {
	p = p.Normalize()
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Number))
	q.Set("limit", strconv.Itoa(p.Limit))

	var body listBody[T]
	if err := r.conn.do(ctx, operation{r.name, "list"}, http.MethodGet, r.collection(), q, nil, &body); err != nil {
		return ListResult[T]{Page: p}, err
	}
	if body.Items == nil {
		body.Items = []T{}
	}
	return ListResult[T]{Items: body.Items, Total: body.Total, Page: p}, nil
}

func (r *Resource[T]) Get(ctx context.Context, id string) (T, error) {
	var out T
	err := r.conn.do(ctx, operation{r.name, "get"}, http.MethodGet, r.item(id), nil, nil, &out)
	return out, err
}

// Create posts rec and returns the record the backend stored.
func (r *Resource[T]) Create(ctx context.Context, rec T) (T, error) {
	var out T
	err := r.conn.do(ctx, operation{r.name, "create"}, http.MethodPost, r.collection(), nil, rec, &out)
	return out, err
}

// Update replaces the record with the given id and returns the stored version.
func (r *Resource[T]) Update(ctx context.Context, id string, rec T) (T, error) {
	var out T
	err := r.conn.do(ctx, operation{r.name, "update"}, http.MethodPut, r.item(id), nil, rec, &out)
	return out, err
}

func (r *Resource[T]) Delete(ctx context.Context, id string) error {
	return r.conn.do(ctx, operation{r.name, "delete"}, http.MethodDelete, r.item(id), nil, nil, nil)
}
