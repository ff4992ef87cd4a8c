package crud

import (
	"github.com/jrsteele09/evcenter-admin/gateway"
	"github.com/jrsteele09/evcenter-admin/sessions"
)

// Row is one rendered table row with its per-row affordances.
type Row struct {
	ID        string
	Cells     []string
	CanEdit   bool
	CanDelete bool
}

type DialogView struct {
	Mode   DialogMode
	Title  string
	Fields []FieldValue
	Error  string
	Busy   bool
}

type ConfirmView struct {
	ID    string
	Label string
	Busy  bool
}

// View is a render-ready snapshot of a page. Affordances are decided by the role predicates
// against the viewing session.
type View struct {
	Name       string
	Path       string
	Title      string
	Singular   string
	State      LoadState
	Headers    []string
	Rows       []Row
	Fetched    int
	Total      int
	TotalPages int
	Page       int
	Limit      int
	Filter     string
	CanCreate  bool
	Dialog     *DialogView
	Confirm    *ConfirmView
}

func (v View) Loading() bool { return v.State == Loading }
func (v View) HasPrev() bool { return v.Page > 1 }
func (v View) HasNext() bool { return v.Page < v.TotalPages }
func (v View) PrevPage() int { return v.Page - 1 }
func (v View) NextPage() int { return v.Page + 1 }

// View snapshots the page for the given viewer.
func (p *Page[T]) View(viewer *sessions.Session) View {
	p.mu.Lock()
	defer p.mu.Unlock()

	canMutate := p.def.CanMutate(viewer)
	canDelete := p.def.CanDelete(viewer)

	v := View{
		Name:       p.def.Name,
		Path:       p.def.Segment(),
		Title:      p.def.Title,
		Singular:   p.def.Singular,
		State:      p.state,
		Fetched:    len(p.items),
		Total:      p.total,
		TotalPages: gateway.TotalPages(p.total, p.cursor.Limit),
		Page:       p.cursor.Number,
		Limit:      p.cursor.Limit,
		Filter:     p.filter,
		CanCreate:  canMutate,
	}
	for _, c := range p.def.Columns {
		v.Headers = append(v.Headers, c.Header)
	}
	for _, rec := range p.visible() {
		row := Row{ID: rec.RecordID(), CanEdit: canMutate, CanDelete: canDelete}
		for _, c := range p.def.Columns {
			row.Cells = append(row.Cells, c.Value(rec))
		}
		v.Rows = append(v.Rows, row)
	}

	if d := p.dialog; d != nil && canMutate {
		title := "New " + p.def.Singular
		if d.mode == ModeEdit {
			title = "Edit " + p.def.Singular
		}
		dv := &DialogView{Mode: d.mode, Title: title, Error: d.problem, Busy: p.busy}
		for _, f := range p.def.Fields {
			dv.Fields = append(dv.Fields, FieldValue{
				Name:     f.Name,
				Label:    f.Label,
				Kind:     f.Kind,
				Options:  f.Options,
				Required: f.Required,
				Value:    d.values[f.Name],
				Problem:  d.problems[f.Name],
			})
		}
		v.Dialog = dv
	}
	if c := p.confirm; c != nil && canDelete {
		v.Confirm = &ConfirmView{ID: c.record.RecordID(), Label: c.label, Busy: p.busy}
	}
	return v
}
