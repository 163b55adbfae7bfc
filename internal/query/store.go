package query

import (
	"context"
	"strings"
	"sync"
)

// Op identifies one operation kind tracked independently by the store.
type Op string

const (
	OpFetchList Op = "fetch_list"
	OpFetchOne  Op = "fetch_one"
	OpCreate    Op = "create"
	OpUpdate    Op = "update"
	OpDelete    Op = "delete"
	OpSearch    Op = "search"
)

// Status is the lifecycle state of one operation kind.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusPending   Status = "pending"
	StatusFulfilled Status = "fulfilled"
	StatusRejected  Status = "rejected"
)

// Filters holds the client-side filter set. A non-empty filter set routes
// reads to the search results instead of the default listing.
type Filters struct {
	Query       string
	Category    string
	MachineType string
	MinPrice    *int64
	MaxPrice    *int64
}

// Empty reports whether no filter is active. Whitespace-only queries count
// as empty.
func (f Filters) Empty() bool {
	return strings.TrimSpace(f.Query) == "" && f.Category == "" &&
		f.MachineType == "" && f.MinPrice == nil && f.MaxPrice == nil
}

// ListParams carries pagination and filters for a listing or search request.
type ListParams struct {
	Page    int
	Limit   int
	Filters Filters
}

// Pagination holds the counters for one result set.
type Pagination struct {
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`
	TotalItems int `json:"total_items"`
}

// PageResult is one page of entities with its authoritative counters.
type PageResult[T any] struct {
	Items      []T
	Pagination Pagination
}

// Backend is the remote collection the store caches. C and U are the
// entity's create and update payload types.
type Backend[T, C, U any] interface {
	List(ctx context.Context, params ListParams) (*PageResult[T], error)
	Search(ctx context.Context, params ListParams) (*PageResult[T], error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, input C) (*T, error)
	Update(ctx context.Context, id string, input U) (*T, error)
	Delete(ctx context.Context, id string) error
}

type opState struct {
	status Status
	err    error
}

// Store is a paginated, filterable cache over one remote collection. The
// default listing (items) and the filtered view (searchResults) are mutually
// exclusive: reads go to searchResults whenever a filter is active. Each
// operation kind carries its own status and error so a failing delete never
// blocks a fetch.
//
// Operations of the same kind are not deduplicated; when two overlap, the one
// that settles last wins regardless of issue order.
type Store[T, C, U any] struct {
	backend  Backend[T, C, U]
	idOf     func(T) string
	onDelete func(id string)

	mu               sync.RWMutex
	items            []T
	searchResults    []T
	selected         *T
	filters          Filters
	pagination       Pagination
	searchPagination Pagination
	ops              map[Op]*opState
}

// Option configures a Store.
type Option[T, C, U any] func(*Store[T, C, U])

// WithDeleteHook registers a callback invoked after an entity is deleted, so
// associated ephemeral resources (preview handles) can be evicted.
func WithDeleteHook[T, C, U any](hook func(id string)) Option[T, C, U] {
	return func(s *Store[T, C, U]) { s.onDelete = hook }
}

// NewStore creates a store over the given backend. idOf extracts the
// server-assigned identity used for merge-by-id updates.
func NewStore[T, C, U any](backend Backend[T, C, U], idOf func(T) string, opts ...Option[T, C, U]) *Store[T, C, U] {
	s := &Store[T, C, U]{
		backend: backend,
		idOf:    idOf,
		ops: map[Op]*opState{
			OpFetchList: {status: StatusIdle},
			OpFetchOne:  {status: StatusIdle},
			OpCreate:    {status: StatusIdle},
			OpUpdate:    {status: StatusIdle},
			OpDelete:    {status: StatusIdle},
			OpSearch:    {status: StatusIdle},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// begin marks the operation pending and clears its previous error.
func (s *Store[T, C, U]) begin(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops[op].status = StatusPending
	s.ops[op].err = nil
}

func (s *Store[T, C, U]) reject(op Op, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ops[op].status = StatusRejected
	s.ops[op].err = err
}

// FetchList loads one page of the collection. With filters present (on the
// params or already set on the store) the request is routed to Search so the
// filtered view stays the read source. On failure the previous items are kept.
func (s *Store[T, C, U]) FetchList(ctx context.Context, params ListParams) error {
	if !params.Filters.Empty() {
		s.mu.Lock()
		s.filters = params.Filters
		s.mu.Unlock()
		return s.Search(ctx, params.Page, params.Limit)
	}

	s.begin(OpFetchList)

	result, err := s.backend.List(ctx, params)
	if err != nil {
		s.reject(OpFetchList, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = result.Items
	s.pagination = result.Pagination
	s.ops[OpFetchList].status = StatusFulfilled
	return nil
}

// FetchOne loads a single entity into the selected slot. On failure the slot
// is cleared.
func (s *Store[T, C, U]) FetchOne(ctx context.Context, id string) (*T, error) {
	s.begin(OpFetchOne)

	entity, err := s.backend.Get(ctx, id)
	if err != nil {
		s.mu.Lock()
		s.selected = nil
		s.ops[OpFetchOne].status = StatusRejected
		s.ops[OpFetchOne].err = err
		s.mu.Unlock()
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = entity
	s.ops[OpFetchOne].status = StatusFulfilled
	return entity, nil
}

// Create sends the payload to the backend and, once confirmed, appends the
// authoritative entity to the cached listing. Nothing is applied
// optimistically.
func (s *Store[T, C, U]) Create(ctx context.Context, input C) (*T, error) {
	s.begin(OpCreate)

	entity, err := s.backend.Create(ctx, input)
	if err != nil {
		s.reject(OpCreate, err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, *entity)
	s.ops[OpCreate].status = StatusFulfilled
	return entity, nil
}

// Update sends the payload to the backend and replaces the confirmed entity
// in the listing, the search results, and the selected slot so all three stay
// consistent.
func (s *Store[T, C, U]) Update(ctx context.Context, id string, input U) (*T, error) {
	s.begin(OpUpdate)

	entity, err := s.backend.Update(ctx, id, input)
	if err != nil {
		s.reject(OpUpdate, err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.idOf(s.items[i]) == id {
			s.items[i] = *entity
		}
	}
	for i := range s.searchResults {
		if s.idOf(s.searchResults[i]) == id {
			s.searchResults[i] = *entity
		}
	}
	if s.selected != nil && s.idOf(*s.selected) == id {
		s.selected = entity
	}
	s.ops[OpUpdate].status = StatusFulfilled
	return entity, nil
}

// Delete removes the entity from the backend, then from every cached view,
// and finally fires the delete hook so ephemeral caches can release their
// handles.
func (s *Store[T, C, U]) Delete(ctx context.Context, id string) error {
	s.begin(OpDelete)

	if err := s.backend.Delete(ctx, id); err != nil {
		s.reject(OpDelete, err)
		return err
	}

	s.mu.Lock()
	s.items = removeByID(s.items, s.idOf, id)
	s.searchResults = removeByID(s.searchResults, s.idOf, id)
	if s.selected != nil && s.idOf(*s.selected) == id {
		s.selected = nil
	}
	s.ops[OpDelete].status = StatusFulfilled
	hook := s.onDelete
	s.mu.Unlock()

	if hook != nil {
		hook(id)
	}
	return nil
}

// Search loads one page of filtered results. It never touches the default
// listing. An empty query with no other filters clears the search state and
// reloads the first page of the default listing instead.
func (s *Store[T, C, U]) Search(ctx context.Context, page, limit int) error {
	s.mu.RLock()
	filters := s.filters
	s.mu.RUnlock()

	if filters.Empty() {
		s.ClearSearch()
		return s.FetchList(ctx, ListParams{Page: 1, Limit: limit})
	}

	s.begin(OpSearch)

	result, err := s.backend.Search(ctx, ListParams{Page: page, Limit: limit, Filters: filters})
	if err != nil {
		s.reject(OpSearch, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchResults = result.Items
	s.searchPagination = result.Pagination
	s.ops[OpSearch].status = StatusFulfilled
	return nil
}

// SetFilters replaces the filter set. A non-empty set auto-triggers a search
// so the filtered view is populated; an empty set clears the search state and
// reads fall back to the default listing.
func (s *Store[T, C, U]) SetFilters(ctx context.Context, filters Filters, limit int) error {
	s.mu.Lock()
	s.filters = filters
	s.mu.Unlock()

	if filters.Empty() {
		s.ClearSearch()
		return nil
	}
	return s.Search(ctx, 1, limit)
}

// ClearFilters drops all filters and the search state.
func (s *Store[T, C, U]) ClearFilters() {
	s.mu.Lock()
	s.filters = Filters{}
	s.mu.Unlock()
	s.ClearSearch()
}

// ClearSearch drops the search results and counters.
func (s *Store[T, C, U]) ClearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchResults = nil
	s.searchPagination = Pagination{}
	s.ops[OpSearch].status = StatusIdle
	s.ops[OpSearch].err = nil
}

// ClearError resets one operation's error without touching its data.
func (s *Store[T, C, U]) ClearError(op Op) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.ops[op]; ok && st.status == StatusRejected {
		st.status = StatusIdle
		st.err = nil
	}
}

// Status returns the lifecycle state of one operation kind.
func (s *Store[T, C, U]) Status(op Op) Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.ops[op]; ok {
		return st.status
	}
	return StatusIdle
}

// Err returns the captured error of one operation kind, if any.
func (s *Store[T, C, U]) Err(op Op) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if st, ok := s.ops[op]; ok {
		return st.err
	}
	return nil
}

// Items returns a copy of the default listing.
func (s *Store[T, C, U]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySlice(s.items)
}

// SearchResults returns a copy of the filtered view.
func (s *Store[T, C, U]) SearchResults() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySlice(s.searchResults)
}

// Selected returns the entity in the selected slot, if any.
func (s *Store[T, C, U]) Selected() *T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil
	}
	cp := *s.selected
	return &cp
}

// ActiveFilters returns the active filter set.
func (s *Store[T, C, U]) ActiveFilters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters
}

// View returns the result set reads should use together with its pagination:
// the search results while a filter is active, the default listing otherwise.
func (s *Store[T, C, U]) View() ([]T, Pagination) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.filters.Empty() {
		return copySlice(s.searchResults), s.searchPagination
	}
	return copySlice(s.items), s.pagination
}

// DefaultPagination returns the counters of the default listing.
func (s *Store[T, C, U]) DefaultPagination() Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

// SearchPagination returns the counters of the filtered view.
func (s *Store[T, C, U]) SearchPaginationState() Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searchPagination
}

func removeByID[T any](items []T, idOf func(T) string, id string) []T {
	out := items[:0]
	for _, item := range items {
		if idOf(item) != id {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func copySlice[T any](items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
