package server

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrsteele09/evcenter-admin/crud"
	"github.com/jrsteele09/evcenter-admin/gateway"
)

// mountedPage is the type-erased handle a workspace keeps for each resource page.
type mountedPage interface {
	Discard()
}

// workspace is the page state of one signed-in browser. Only one resource page is mounted at a
// time; navigating to another page discards the previous one.
type workspace struct {
	mu       sync.Mutex
	active   string
	pages    map[string]mountedPage
	lastSeen time.Time
}

// workspaceRegistry holds workspaces by session slot and forgets the ones left idle.
type workspaceRegistry struct {
	mu     sync.Mutex
	idle   time.Duration
	now    func() time.Time
	spaces map[string]*workspace
}

func newWorkspaceRegistry(idle time.Duration) *workspaceRegistry {
	if idle <= 0 {
		idle = 12 * time.Hour
	}
	return &workspaceRegistry{
		idle:   idle,
		now:    time.Now,
		spaces: make(map[string]*workspace),
	}
}

// Get returns the slot's workspace, creating it on first use.
func (wr *workspaceRegistry) Get(slot string) *workspace {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	now := wr.now()
	wr.sweep(now)
	ws, ok := wr.spaces[slot]
	if !ok {
		ws = &workspace{pages: make(map[string]mountedPage)}
		wr.spaces[slot] = ws
	}
	ws.lastSeen = now
	return ws
}

// Discard drops the slot's workspace. In-flight responses for its pages are ignored.
func (wr *workspaceRegistry) Discard(slot string) {
	wr.mu.Lock()
	ws, ok := wr.spaces[slot]
	delete(wr.spaces, slot)
	wr.mu.Unlock()

	if ok {
		ws.discardAll("")
	}
}

func (wr *workspaceRegistry) Len() int {
	wr.mu.Lock()
	defer wr.mu.Unlock()
	return len(wr.spaces)
}

func (wr *workspaceRegistry) sweep(now time.Time) {
	for slot, ws := range wr.spaces {
		if now.Sub(ws.lastSeen) > wr.idle {
			delete(wr.spaces, slot)
			ws.discardAll("")
		}
	}
}

func (ws *workspace) discardAll(except string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	for name, p := range ws.pages {
		if name == except {
			continue
		}
		p.Discard()
		delete(ws.pages, name)
	}
}

// mountPage returns the page for def, creating it when absent. Every other page in the workspace
// is discarded when def becomes the active page.
func mountPage[T crud.Record](ws *workspace, def *crud.Definition[T], limit int) *crud.Page[T] {
	ws.mu.Lock()
	if existing, ok := ws.pages[def.Name].(*crud.Page[T]); ok && ws.active == def.Name {
		ws.mu.Unlock()
		return existing
	}
	page, ok := ws.pages[def.Name].(*crud.Page[T])
	if !ok {
		page = crud.NewPage[T](def, connBackend[T]{name: def.Name}, limit)
		ws.pages[def.Name] = page
	}
	ws.active = def.Name
	ws.mu.Unlock()

	ws.discardAll(def.Name)
	return page
}

// connBackend resolves the request's backend connection on every call, so a page created in one
// request keeps working with the credentials of the next.
type connBackend[T crud.Record] struct {
	name string
}

func (b connBackend[T]) resource(ctx context.Context) (*gateway.Resource[T], error) {
	conn := connFromContext(ctx)
	if conn == nil {
		return nil, fmt.Errorf("[%s] no backend connection: %w", b.name, gateway.Expired())
	}
	return gateway.NewResource[T](conn, b.name), nil
}

func (b connBackend[T]) List(ctx context.Context, p gateway.Page) (gateway.ListResult[T], error) {
	res, err := b.resource(ctx)
	if err != nil {
		return gateway.ListResult[T]{}, err
	}
	return res.List(ctx, p)
}

func (b connBackend[T]) Create(ctx context.Context, rec T) (T, error) {
	res, err := b.resource(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return res.Create(ctx, rec)
}

func (b connBackend[T]) Update(ctx context.Context, id string, rec T) (T, error) {
	res, err := b.resource(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	return res.Update(ctx, id, rec)
}

func (b connBackend[T]) Delete(ctx context.Context, id string) error {
	res, err := b.resource(ctx)
	if err != nil {
		return err
	}
	return res.Delete(ctx, id)
}
