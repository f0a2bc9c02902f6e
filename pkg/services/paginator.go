package services

import (
	"context"
	"sync"

	"spacetraveling/pkg/models"
)

// Page is one fetched listing page. An empty NextCursor ends pagination.
type Page struct {
	Items      []models.PostSummary `json:"results"`
	NextCursor string               `json:"next_page"`
}

// PageFetcher loads the page that starts at cursor.
type PageFetcher func(ctx context.Context, cursor string) (Page, error)

// PaginationState is the accumulated listing. Items only ever grow, in the
// order pages arrived.
type PaginationState struct {
	Items      []models.PostSummary `json:"results"`
	NextCursor string               `json:"next_page"`
}

// HasMore reports whether another page can be loaded.
func (s PaginationState) HasMore() bool {
	return s.NextCursor != ""
}

func (s PaginationState) clone() PaginationState {
	items := make([]models.PostSummary, len(s.Items))
	copy(items, s.Items)
	return PaginationState{Items: items, NextCursor: s.NextCursor}
}

func (s PaginationState) page() Page {
	return Page(s)
}

// NewPaginationState starts a listing from its first page.
func NewPaginationState(first Page) PaginationState {
	return PaginationState(first).clone()
}

// LoadMore fetches the page at state.NextCursor and appends it. A terminal
// state is returned as is without fetching. On failure the input state is
// returned unchanged together with a *PageLoadError.
func LoadMore(ctx context.Context, state PaginationState, fetch PageFetcher) (PaginationState, error) {
	if !state.HasMore() {
		return state, nil
	}
	page, err := fetch(ctx, state.NextCursor)
	if err != nil {
		return state, &PageLoadError{Cursor: state.NextCursor, Err: err}
	}

	items := make([]models.PostSummary, 0, len(state.Items)+len(page.Items))
	items = append(items, state.Items...)
	items = append(items, page.Items...)
	return PaginationState{Items: items, NextCursor: page.NextCursor}, nil
}

// Paginator owns a PaginationState and serializes LoadMore calls on it.
type Paginator struct {
	mu      sync.Mutex
	state   PaginationState
	loading bool
}

// NewPaginator starts from the first page.
func NewPaginator(first Page) *Paginator {
	return &Paginator{state: NewPaginationState(first)}
}

// State returns a copy of the current state.
func (p *Paginator) State() PaginationState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state.clone()
}

// LoadMore advances by one page. A call made while another is in flight
// fails with ErrLoadInProgress and changes nothing.
func (p *Paginator) LoadMore(ctx context.Context, fetch PageFetcher) (PaginationState, error) {
	p.mu.Lock()
	if p.loading {
		p.mu.Unlock()
		return PaginationState{}, ErrLoadInProgress
	}
	current := p.state
	if !current.HasMore() {
		p.mu.Unlock()
		return current.clone(), nil
	}
	p.loading = true
	p.mu.Unlock()

	next, err := LoadMore(ctx, current, fetch)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.loading = false
	if err != nil {
		return current.clone(), err
	}
	p.state = next
	return next.clone(), nil
}
