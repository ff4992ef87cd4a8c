package crud_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/jrsteele09/evcenter-admin/crud"
	"github.com/jrsteele09/evcenter-admin/gateway"
	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
	"github.com/jrsteele09/evcenter-admin/roles"
	"github.com/jrsteele09/evcenter-admin/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Colour   string `json:"colour" validate:"omitempty,oneof=red green blue"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

func (w widget) RecordID() string { return w.ID }

func widgetDefinition() *crud.Definition[widget] {
	return &crud.Definition[widget]{
		Name:     "widgets",
		Title:    "Widgets",
		Singular: "Widget",
		Columns: []crud.Column[widget]{
			{Header: "Name", Value: func(w widget) string { return w.Name }, Filterable: true},
			{Header: "Colour", Value: func(w widget) string { return w.Colour }, Filterable: true},
			{Header: "Qty", Value: func(w widget) string { return fmt.Sprint(w.Quantity) }},
		},
		Fields: []crud.Field[widget]{
			crud.Text("name", "Name", func(w widget) string { return w.Name }, func(w *widget, v string) { w.Name = v }),
			crud.Select("colour", "Colour", []string{"red", "green", "blue"}, func(w widget) string { return w.Colour }, func(w *widget, v string) { w.Colour = v }),
			crud.Int("quantity", "Quantity", func(w widget) int { return w.Quantity }, func(w *widget, v int) { w.Quantity = v }),
		},
		Access: crud.Access{
			View:   roles.All,
			Mutate: roles.Management,
			Delete: roles.AdminOnly,
		},
		Describe: func(w widget) string { return w.Name },
	}
}

// fakeBackend records every call and serves a fixed list.
type fakeBackend struct {
	mu      sync.Mutex
	items   []widget
	total   int
	err     error
	calls   []string
	pages   []gateway.Page
	nextID  int
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeBackend) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeBackend) wait() {
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
}

func (f *fakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBackend) List(_ context.Context, p gateway.Page) (gateway.ListResult[widget], error) {
	f.record("list")
	f.mu.Lock()
	f.pages = append(f.pages, p)
	f.mu.Unlock()
	f.wait()
	if f.err != nil {
		return gateway.ListResult[widget]{}, f.err
	}
	return gateway.ListResult[widget]{Items: append([]widget(nil), f.items...), Total: f.total, Page: p}, nil
}

func (f *fakeBackend) Create(_ context.Context, w widget) (widget, error) {
	f.record("create")
	f.wait()
	if f.err != nil {
		return widget{}, f.err
	}
	f.nextID++
	w.ID = fmt.Sprintf("new-%d", f.nextID)
	return w, nil
}

func (f *fakeBackend) Update(_ context.Context, id string, w widget) (widget, error) {
	f.record("update " + id)
	f.wait()
	if f.err != nil {
		return widget{}, f.err
	}
	w.ID = id
	return w, nil
}

func (f *fakeBackend) Delete(_ context.Context, id string) error {
	f.record("delete " + id)
	f.wait()
	return f.err
}

func seeded(t *testing.T) (*crud.Page[widget], *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{
		items: []widget{
			{ID: "1", Name: "Brake pad", Colour: "red", Quantity: 4},
			{ID: "2", Name: "Charge cable", Colour: "blue", Quantity: 2},
			{ID: "3", Name: "Wiper blade", Colour: "green", Quantity: 9},
		},
		total: 45,
	}
	page := crud.NewPage(widgetDefinition(), backend, 20)
	require.NoError(t, page.Load(context.Background(), 1))
	return page, backend
}

func TestLoadReplacesStateAndComputesPages(t *testing.T) {
	page, backend := seeded(t)

	assert.Equal(t, crud.Success, page.State())
	assert.Len(t, page.Items(), 3)
	assert.Equal(t, 45, page.Total())
	assert.Equal(t, 3, page.TotalPages())
	assert.Equal(t, []gateway.Page{{Number: 1, Limit: 20}}, backend.pages)
}

func TestLoadFailureKeepsStaleRows(t *testing.T) {
	page, backend := seeded(t)
	before := page.Items()

	backend.err = &gateway.Error{StatusCode: 500, Message: "database offline"}
	err := page.Load(context.Background(), 2)
	require.Error(t, err)

	assert.Equal(t, crud.Failed, page.State())
	assert.Equal(t, before, page.Items())
	assert.Equal(t, 45, page.Total())
	assert.Equal(t, 1, page.Cursor().Number)
	assert.Equal(t, []crud.Notice{{Kind: crud.NoticeError, Message: "database offline"}}, page.DrainNotices())
	assert.Empty(t, page.DrainNotices())
}

func TestFilterIsLocalOnly(t *testing.T) {
	page, backend := seeded(t)
	callsBefore := len(backend.Calls())

	page.Filter("CABLE")
	visible := page.Visible()
	require.Len(t, visible, 1)
	assert.Equal(t, "2", visible[0].ID)

	assert.Equal(t, 45, page.Total())
	assert.Equal(t, 3, page.TotalPages())
	assert.Len(t, page.Items(), 3)
	assert.Len(t, backend.Calls(), callsBefore)

	page.Filter("gre")
	assert.Len(t, page.Visible(), 1)

	page.Filter("")
	assert.Len(t, page.Visible(), 3)
}

func TestCreatePrependsWithoutRefetch(t *testing.T) {
	page, backend := seeded(t)
	n := len(page.Items())

	page.OpenCreate()
	saved, err := page.Submit(context.Background(), map[string]string{"name": "Fuse", "colour": "red", "quantity": "7"})
	require.NoError(t, err)

	items := page.Items()
	require.Len(t, items, n+1)
	assert.Equal(t, saved, items[0])
	assert.Equal(t, "Fuse", items[0].Name)
	assert.Equal(t, 46, page.Total())
	assert.Equal(t, []string{"list", "create"}, backend.Calls())
	assert.Nil(t, page.View(adminSession()).Dialog)
	assert.Equal(t, []crud.Notice{{Kind: crud.NoticeSuccess, Message: "Widget created"}}, page.DrainNotices())
}

func TestEditReplacesInPlace(t *testing.T) {
	page, backend := seeded(t)

	require.NoError(t, page.OpenEdit("2"))
	view := page.View(adminSession())
	require.NotNil(t, view.Dialog)
	assert.Equal(t, crud.ModeEdit, view.Dialog.Mode)
	assert.Equal(t, "Charge cable", view.Dialog.Fields[0].Value)
	assert.Equal(t, "2", view.Dialog.Fields[2].Value)

	_, err := page.Submit(context.Background(), map[string]string{"quantity": "12"})
	require.NoError(t, err)

	items := page.Items()
	require.Len(t, items, 3)
	assert.Equal(t, widget{ID: "2", Name: "Charge cable", Colour: "blue", Quantity: 12}, items[1])
	assert.Equal(t, []string{"list", "update 2"}, backend.Calls())
}

func TestOpenEditUnknownRecord(t *testing.T) {
	page, _ := seeded(t)
	err := page.OpenEdit("nope")
	require.ErrorIs(t, err, apperrors.ErrRecordNotFound)
}

func TestSubmitValidationKeepsDialogOpen(t *testing.T) {
	page, backend := seeded(t)

	page.OpenCreate()
	_, err := page.Submit(context.Background(), map[string]string{"name": "", "colour": "purple", "quantity": "x"})
	var verr *crud.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "quantity")

	_, err = page.Submit(context.Background(), map[string]string{"name": "", "colour": "purple", "quantity": "1"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Name is required", verr.Fields["name"])
	assert.Equal(t, "Colour must be one of: red green blue", verr.Fields["colour"])

	view := page.View(adminSession())
	require.NotNil(t, view.Dialog)
	assert.NotEmpty(t, view.Dialog.Error)
	assert.Equal(t, "purple", view.Dialog.Fields[1].Value)
	assert.Equal(t, []string{"list"}, backend.Calls())
	assert.Len(t, page.Items(), 3)
}

func TestSubmitBackendFailureKeepsDialogOpen(t *testing.T) {
	page, backend := seeded(t)

	page.OpenCreate()
	backend.err = &gateway.Error{StatusCode: 409, Message: "SKU already exists"}
	_, err := page.Submit(context.Background(), map[string]string{"name": "Fuse"})
	require.Error(t, err)

	view := page.View(adminSession())
	require.NotNil(t, view.Dialog)
	assert.Equal(t, "SKU already exists", view.Dialog.Error)
	assert.Len(t, page.Items(), 3)
}

func TestSubmitWithoutDialog(t *testing.T) {
	page, _ := seeded(t)
	_, err := page.Submit(context.Background(), map[string]string{"name": "x"})
	require.ErrorIs(t, err, apperrors.ErrNoDialog)
}

func TestReentrantSubmitIsRejected(t *testing.T) {
	page, backend := seeded(t)
	backend.block = make(chan struct{})
	backend.entered = make(chan struct{})

	page.OpenCreate()
	done := make(chan error, 1)
	go func() {
		_, err := page.Submit(context.Background(), map[string]string{"name": "Fuse"})
		done <- err
	}()
	<-backend.entered

	assert.True(t, page.Busy())
	_, err := page.Submit(context.Background(), map[string]string{"name": "Fuse"})
	require.ErrorIs(t, err, apperrors.ErrBusy)

	close(backend.block)
	require.NoError(t, <-done)
	assert.False(t, page.Busy())
	assert.Len(t, page.Items(), 4)
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	page, backend := seeded(t)

	require.NoError(t, page.RequestDelete("1"))
	assert.Equal(t, []string{"list"}, backend.Calls())

	view := page.View(adminSession())
	require.NotNil(t, view.Confirm)
	assert.Equal(t, "Brake pad", view.Confirm.Label)

	page.CancelDelete()
	assert.Equal(t, []string{"list"}, backend.Calls())
	assert.Len(t, page.Items(), 3)
	assert.Nil(t, page.View(adminSession()).Confirm)

	require.ErrorIs(t, page.ConfirmDelete(context.Background()), apperrors.ErrNoConfirmation)
	assert.Equal(t, []string{"list"}, backend.Calls())

	require.NoError(t, page.RequestDelete("1"))
	require.NoError(t, page.ConfirmDelete(context.Background()))
	assert.Equal(t, []string{"list", "delete 1"}, backend.Calls())

	items := page.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "2", items[0].ID)
	assert.Equal(t, 44, page.Total())
	assert.Equal(t, []crud.Notice{{Kind: crud.NoticeSuccess, Message: "Brake pad deleted"}}, page.DrainNotices())
}

func TestDeleteFailureLeavesListUntouched(t *testing.T) {
	page, backend := seeded(t)
	backend.err = errors.New("connection reset")

	require.NoError(t, page.RequestDelete("3"))
	require.Error(t, page.ConfirmDelete(context.Background()))

	assert.Len(t, page.Items(), 3)
	assert.Equal(t, 45, page.Total())
	assert.Equal(t, []crud.Notice{{Kind: crud.NoticeError, Message: gateway.FallbackMessage}}, page.DrainNotices())
}

func TestDiscardDropsLateResponses(t *testing.T) {
	backend := &fakeBackend{items: []widget{{ID: "1", Name: "a"}}, total: 1, block: make(chan struct{}), entered: make(chan struct{})}
	page := crud.NewPage(widgetDefinition(), backend, 20)

	done := make(chan error, 1)
	go func() { done <- page.Load(context.Background(), 1) }()
	<-backend.entered

	assert.Equal(t, crud.Loading, page.State())
	page.Discard()
	close(backend.block)

	require.ErrorIs(t, <-done, apperrors.ErrDiscarded)
	assert.Equal(t, crud.Idle, page.State())
	assert.Empty(t, page.Items())
}

func TestViewAffordancesFollowRoles(t *testing.T) {
	page, _ := seeded(t)

	admin := page.View(adminSession())
	assert.True(t, admin.CanCreate)
	for _, row := range admin.Rows {
		assert.True(t, row.CanEdit)
		assert.True(t, row.CanDelete)
	}

	staff := page.View(&sessions.Session{Name: "s", Role: roles.Staff})
	assert.True(t, staff.CanCreate)
	for _, row := range staff.Rows {
		assert.True(t, row.CanEdit)
		assert.False(t, row.CanDelete)
	}

	tech := page.View(&sessions.Session{Name: "t", Role: roles.Technician})
	assert.False(t, tech.CanCreate)
	for _, row := range tech.Rows {
		assert.False(t, row.CanEdit)
		assert.False(t, row.CanDelete)
	}

	anon := page.View(nil)
	assert.False(t, anon.CanCreate)
	assert.Equal(t, []string{"Name", "Colour", "Qty"}, anon.Headers)
	assert.Equal(t, 3, anon.TotalPages)
	assert.False(t, anon.HasPrev())
	assert.True(t, anon.HasNext())
}

func TestSortIsPresentationOnly(t *testing.T) {
	def := widgetDefinition()
	def.Less = func(a, b widget) bool { return a.Quantity > b.Quantity }
	backend := &fakeBackend{items: []widget{{ID: "1", Name: "a", Quantity: 1}, {ID: "2", Name: "b", Quantity: 3}, {ID: "3", Name: "c", Quantity: 2}}, total: 3}
	page := crud.NewPage(def, backend, 20)
	require.NoError(t, page.Load(context.Background(), 1))

	var ids []string
	for _, w := range page.Visible() {
		ids = append(ids, w.ID)
	}
	assert.Equal(t, []string{"2", "3", "1"}, ids)
	assert.Equal(t, "1", page.Items()[0].ID)
}

func adminSession() *sessions.Session {
	return &sessions.Session{Name: "a", Role: roles.Admin}
}
