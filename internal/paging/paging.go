// Package paging implements bidirectional cursor pagination over stores whose
// records are totally ordered by a sortable identifier.
//
// A page is computed from at most two reads: one over-fetch of limit+1 records
// in the requested direction, and one single-record probe in the opposite
// direction. Neither reads depend on offsets, so pages stay stable under
// concurrent inserts and deletes.
package paging

import (
	"context"
	"io"
	"log/slog"
	"regexp"
)

// DefaultLimit is used when a request carries no positive limit and the
// Paginator was built without one.
const DefaultLimit = 20

var hexIDPattern = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// SortOrder is the direction of the identifier sort applied by a Store.
type SortOrder int

const (
	Ascending  SortOrder = 1
	Descending SortOrder = -1
)

// Filter selects one owner's non-deleted records, optionally bounded by id.
// AfterID and BeforeID are exclusive bounds; empty means unbounded.
type Filter struct {
	OwnerID  string
	AfterID  string
	BeforeID string
}

// Store is the read side of a storage provider. Implementations must always
// exclude soft-deleted records and sort strictly by identifier.
type Store[T any] interface {
	FindMany(ctx context.Context, f Filter, order SortOrder, limit int) ([]T, error)
	FindOne(ctx context.Context, f Filter, order SortOrder) (T, bool, error)
}

// Config tunes a Paginator. Zero values fall back to DefaultLimit, a 24-hex
// identifier check and a discarding logger.
type Config struct {
	DefaultLimit int
	ValidID      func(string) bool
	Logger       *slog.Logger
}

// Request asks for one page. When both Next and Previous are set, Next wins.
type Request struct {
	OwnerID  string
	Next     string
	Previous string
	Limit    int
}

// Page is one window of records in ascending identifier order.
type Page[T any] struct {
	Items           []T    `json:"items"`
	NextCursor      string `json:"next_cursor,omitempty"`
	PreviousCursor  string `json:"previous_cursor,omitempty"`
	HasNextPage     bool   `json:"has_next_page"`
	HasPreviousPage bool   `json:"has_previous_page"`
}

// Paginator computes pages from a Store. It holds no mutable state and is safe
// for concurrent use.
type Paginator[T any] struct {
	store Store[T]
	idOf  func(T) string
	cfg   Config
}

// New returns a Paginator reading from store. idOf extracts the sortable
// identifier of a record.
func New[T any](store Store[T], idOf func(T) string, cfg Config) *Paginator[T] {
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = DefaultLimit
	}
	if cfg.ValidID == nil {
		cfg.ValidID = hexIDPattern.MatchString
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Paginator[T]{store: store, idOf: idOf, cfg: cfg}
}

// Page returns the page described by req. Malformed cursors are ignored and
// the first page is returned instead. Store errors are returned unchanged.
func (p *Paginator[T]) Page(ctx context.Context, req Request) (*Page[T], error) {
	limit := req.Limit
	if limit <= 0 {
		limit = p.cfg.DefaultLimit
	}

	f := Filter{OwnerID: req.OwnerID}
	order := Ascending
	backward := false
	switch {
	case req.Next != "" && p.validCursor(ctx, "next", req.Next):
		f.AfterID = req.Next
	case req.Previous != "" && p.validCursor(ctx, "previous", req.Previous):
		f.BeforeID = req.Previous
		order = Descending
		backward = true
	}

	fetched, err := p.store.FindMany(ctx, f, order, limit+1)
	if err != nil {
		return nil, err
	}
	if backward {
		return p.backwardPage(ctx, req.OwnerID, fetched, limit)
	}
	return p.forwardPage(ctx, req.OwnerID, fetched, limit)
}

func (p *Paginator[T]) validCursor(ctx context.Context, name, cursor string) bool {
	if p.cfg.ValidID(cursor) {
		return true
	}
	p.cfg.Logger.WarnContext(ctx, "ignoring malformed cursor", "cursor", name, "value", cursor)
	return false
}

func (p *Paginator[T]) forwardPage(ctx context.Context, ownerID string, fetched []T, limit int) (*Page[T], error) {
	page := &Page[T]{Items: []T{}}
	if len(fetched) == 0 {
		return page, nil
	}
	page.HasNextPage = len(fetched) > limit
	if page.HasNextPage {
		fetched = fetched[:limit]
	}
	page.Items = fetched

	first := p.idOf(fetched[0])
	_, found, err := p.store.FindOne(ctx, Filter{OwnerID: ownerID, BeforeID: first}, Descending)
	if err != nil {
		return nil, err
	}
	page.HasPreviousPage = found
	if page.HasPreviousPage {
		page.PreviousCursor = first
	}
	if page.HasNextPage {
		page.NextCursor = p.idOf(fetched[len(fetched)-1])
	}
	return page, nil
}

func (p *Paginator[T]) backwardPage(ctx context.Context, ownerID string, fetched []T, limit int) (*Page[T], error) {
	page := &Page[T]{Items: []T{}}
	if len(fetched) == 0 {
		return page, nil
	}
	page.HasPreviousPage = len(fetched) > limit
	if page.HasPreviousPage {
		fetched = fetched[:limit]
	}
	items := make([]T, len(fetched))
	for i, rec := range fetched {
		items[len(fetched)-1-i] = rec
	}
	page.Items = items

	// The oldest record on the page bounds the next backward step.
	if page.HasPreviousPage {
		page.PreviousCursor = p.idOf(items[0])
	}

	last := p.idOf(items[len(items)-1])
	_, found, err := p.store.FindOne(ctx, Filter{OwnerID: ownerID, AfterID: last}, Ascending)
	if err != nil {
		return nil, err
	}
	page.HasNextPage = found
	if page.HasNextPage {
		page.NextCursor = last
	}
	return page, nil
}
