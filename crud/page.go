package crud

import (
	"context"
	"slices"
	"strings"
	"sync"

	apperrors "github.com/jrsteele09/evcenter-admin/internal/errors"
	"github.com/jrsteele09/evcenter-admin/gateway"
	"github.com/rs/zerolog/log"
)

// LoadState is the list's data-loading state.
type LoadState int

const (
	Idle LoadState = iota
	Loading
	Success
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failed:
		return "failed"
	}
	return "unknown"
}

type DialogMode string

const (
	ModeCreate DialogMode = "create"
	ModeEdit   DialogMode = "edit"
)

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a transient message shown once and then dropped.
type Notice struct {
	Kind    NoticeKind
	Message string
}

type dialog[T Record] struct {
	mode     DialogMode
	original T
	values   map[string]string
	problem  string
	problems map[string]string
}

type confirmation[T Record] struct {
	record T
	label  string
}

// Page holds the local state of one resource page for one browser. It is safe for concurrent
// use; backend calls run without the lock held.
type Page[T Record] struct {
	def       *Definition[T]
	backend   Backend[T]
	validator *recordValidator

	mu         sync.Mutex
	state      LoadState
	items      []T
	total      int
	cursor     gateway.Page
	filter     string
	dialog     *dialog[T]
	confirm    *confirmation[T]
	busy       bool
	generation uint64
	notices    []Notice
}

func NewPage[T Record](def *Definition[T], backend Backend[T], limit int) *Page[T] {
	return &Page[T]{
		def:       def,
		backend:   backend,
		validator: newRecordValidator(),
		cursor:    gateway.Page{Number: 1, Limit: limit}.Normalize(),
	}
}

func (p *Page[T]) Definition() *Definition[T] {
	return p.def
}

// Load fetches page number through the backend. On failure the previous rows stay visible and an
// error notice is queued.
func (p *Page[T]) Load(ctx context.Context, number int) error {
	p.mu.Lock()
	cursor := gateway.Page{Number: number, Limit: p.cursor.Limit}.Normalize()
	p.state = Loading
	gen := p.generation
	p.mu.Unlock()

	result, err := p.backend.List(ctx, cursor)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return apperrors.ErrDiscarded
	}
	if err != nil {
		p.state = Failed
		p.notify(NoticeError, gateway.MessageOf(err))
		log.Debug().Err(err).Str("resource", p.def.Name).Int("page", cursor.Number).Msg("list failed; keeping previous rows")
		return err
	}
	p.state = Success
	p.items = result.Items
	p.total = result.Total
	p.cursor = result.Page
	return nil
}

// Filter sets the local text filter. It only narrows the rows of the fetched page.
func (p *Page[T]) Filter(q string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filter = strings.TrimSpace(q)
}

// OpenCreate opens an empty dialog.
func (p *Page[T]) OpenCreate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	rec := p.def.newRecord()
	p.dialog = &dialog[T]{mode: ModeCreate, original: rec, values: p.valuesOf(rec)}
}

// OpenEdit opens a dialog pre-populated from the local copy of the record.
func (p *Page[T]) OpenEdit(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexOf(id)
	if i < 0 {
		return apperrors.Wrapf(apperrors.ErrRecordNotFound, "[crud OpenEdit] %s %q", p.def.Name, id)
	}
	rec := p.items[i]
	p.dialog = &dialog[T]{mode: ModeEdit, original: rec, values: p.valuesOf(rec)}
	return nil
}

// CloseDialog discards the dialog without calling the backend.
func (p *Page[T]) CloseDialog() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.busy {
		p.dialog = nil
	}
}

// Submit applies values to the dialog's record, validates it and sends it to the backend. On
// success the dialog closes and the returned record is prepended (create) or replaced in place
// (update). On failure the dialog stays open with the error.
func (p *Page[T]) Submit(ctx context.Context, values map[string]string) (T, error) {
	var zero T

	p.mu.Lock()
	if p.dialog == nil {
		p.mu.Unlock()
		return zero, apperrors.ErrNoDialog
	}
	if p.busy {
		p.mu.Unlock()
		return zero, apperrors.ErrBusy
	}
	d := p.dialog
	for k, v := range values {
		d.values[k] = v
	}
	rec, err := p.bind(d.original, values)
	if err == nil {
		err = p.validator.validate(rec, p.def.labels())
	}
	if err != nil {
		p.setDialogError(d, err)
		p.mu.Unlock()
		return zero, err
	}
	p.busy = true
	gen := p.generation
	p.mu.Unlock()

	var saved T
	if d.mode == ModeCreate {
		saved, err = p.backend.Create(ctx, rec)
	} else {
		saved, err = p.backend.Update(ctx, d.original.RecordID(), rec)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return zero, apperrors.ErrDiscarded
	}
	p.busy = false
	if err != nil {
		p.setDialogError(d, err)
		return zero, err
	}

	if d.mode == ModeCreate {
		p.items = append([]T{saved}, p.items...)
		p.total++
		p.notify(NoticeSuccess, p.def.Singular+" created")
	} else {
		if i := p.indexOf(d.original.RecordID()); i >= 0 {
			p.items[i] = saved
		}
		p.notify(NoticeSuccess, p.def.Singular+" updated")
	}
	p.dialog = nil
	return saved, nil
}

// RequestDelete opens the confirmation for a record. Nothing is sent to the backend.
func (p *Page[T]) RequestDelete(id string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.indexOf(id)
	if i < 0 {
		return apperrors.Wrapf(apperrors.ErrRecordNotFound, "[crud RequestDelete] %s %q", p.def.Name, id)
	}
	rec := p.items[i]
	p.confirm = &confirmation[T]{record: rec, label: p.def.describe(rec)}
	return nil
}

// CancelDelete closes the confirmation. The list and the backend are untouched.
func (p *Page[T]) CancelDelete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.busy {
		p.confirm = nil
	}
}

// ConfirmDelete deletes the record awaiting confirmation. On success it is removed locally; on
// failure the list is left as it was and an error notice is queued.
func (p *Page[T]) ConfirmDelete(ctx context.Context) error {
	p.mu.Lock()
	if p.confirm == nil {
		p.mu.Unlock()
		return apperrors.ErrNoConfirmation
	}
	if p.busy {
		p.mu.Unlock()
		return apperrors.ErrBusy
	}
	c := p.confirm
	p.busy = true
	gen := p.generation
	p.mu.Unlock()

	id := c.record.RecordID()
	err := p.backend.Delete(ctx, id)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.generation {
		return apperrors.ErrDiscarded
	}
	p.busy = false
	p.confirm = nil
	if err != nil {
		p.notify(NoticeError, gateway.MessageOf(err))
		return err
	}
	if i := p.indexOf(id); i >= 0 {
		p.items = slices.Delete(p.items, i, i+1)
		if p.total > 0 {
			p.total--
		}
	}
	p.notify(NoticeSuccess, c.label+" deleted")
	return nil
}

// Discard drops all local state. Responses still in flight are ignored when they arrive.
func (p *Page[T]) Discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.generation++
	p.state = Idle
	p.items = nil
	p.total = 0
	p.cursor.Number = 1
	p.filter = ""
	p.dialog = nil
	p.confirm = nil
	p.busy = false
	p.notices = nil
}

// DrainNotices returns the queued notices and clears the queue.
func (p *Page[T]) DrainNotices() []Notice {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := p.notices
	p.notices = nil
	return out
}

func (p *Page[T]) State() LoadState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Items returns a copy of every fetched row, ignoring the filter.
func (p *Page[T]) Items() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.items)
}

// Visible returns the fetched rows that pass the filter, in display order.
func (p *Page[T]) Visible() []T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible()
}

func (p *Page[T]) Total() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.total
}

func (p *Page[T]) TotalPages() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return gateway.TotalPages(p.total, p.cursor.Limit)
}

func (p *Page[T]) Cursor() gateway.Page {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

func (p *Page[T]) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busy
}

func (p *Page[T]) visible() []T {
	out := make([]T, 0, len(p.items))
	needle := strings.ToLower(p.filter)
	for _, rec := range p.items {
		if needle == "" || p.matches(rec, needle) {
			out = append(out, rec)
		}
	}
	if p.def.Less != nil {
		slices.SortStableFunc(out, func(a, b T) int {
			switch {
			case p.def.Less(a, b):
				return -1
			case p.def.Less(b, a):
				return 1
			}
			return 0
		})
	}
	return out
}

func (p *Page[T]) matches(rec T, needle string) bool {
	for _, c := range p.def.Columns {
		if c.Filterable && strings.Contains(strings.ToLower(c.Value(rec)), needle) {
			return true
		}
	}
	return false
}

func (p *Page[T]) indexOf(id string) int {
	return slices.IndexFunc(p.items, func(rec T) bool { return rec.RecordID() == id })
}

func (p *Page[T]) valuesOf(rec T) map[string]string {
	out := make(map[string]string, len(p.def.Fields))
	for _, f := range p.def.Fields {
		if f.Get != nil {
			out[f.Name] = f.Get(rec)
		}
	}
	return out
}

// bind copies values onto base. Fields absent from values keep base's value.
func (p *Page[T]) bind(base T, values map[string]string) (T, error) {
	rec := base
	verr := &ValidationError{Fields: map[string]string{}}
	var msgs []string
	for _, f := range p.def.Fields {
		v, ok := values[f.Name]
		if !ok || f.Set == nil {
			continue
		}
		if err := f.Set(&rec, v); err != nil {
			verr.Fields[f.Name] = err.Error()
			msgs = append(msgs, err.Error())
		}
	}
	if len(msgs) > 0 {
		verr.Message = strings.Join(msgs, "; ")
		return rec, verr
	}
	return rec, nil
}

func (p *Page[T]) setDialogError(d *dialog[T], err error) {
	d.problems = nil
	var verr *ValidationError
	if apperrors.As(err, &verr) {
		d.problem = verr.Message
		d.problems = verr.Fields
		return
	}
	d.problem = gateway.MessageOf(err)
}

func (p *Page[T]) notify(kind NoticeKind, msg string) {
	p.notices = append(p.notices, Notice{Kind: kind, Message: msg})
}
