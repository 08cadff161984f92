package listview

import (
	"sync"

	"github.com/simp-lee/shopconsole/internal/domain"
)

// Phase is the fetch state of a list.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseFailed  Phase = "failed"
)

// State is the full view state of one list screen.
//
// Remote is owned by the fetch path and is read-only to callers. Buffer is a
// projection of Remote.Items that search may overwrite wholesale.
type State[T any] struct {
	Remote       *domain.PagedResult[T] `json:"remote"`
	Buffer       []T                    `json:"items"`
	Phase        Phase                  `json:"phase"`
	Loading      bool                   `json:"loading"`
	Error        string                 `json:"error,omitempty"`
	CurrentPage  int                    `json:"currentPage"`
	PageSize     int                    `json:"pageSize"`
	Query        string                 `json:"query,omitempty"`
	RefreshToken bool                   `json:"refreshToken"`
}

// Action is a state transition message handled by Reduce.
type Action[T any] interface {
	apply(State[T]) State[T]
}

// FetchStarted marks a page request as in flight.
type FetchStarted[T any] struct {
	Page     int
	PageSize int
}

// FetchSucceeded replaces the remote page and resets the buffer from it.
type FetchSucceeded[T any] struct {
	Result *domain.PagedResult[T]
}

// FetchFailed records an error and keeps the last good data.
type FetchFailed[T any] struct {
	Err error
}

// PageReset moves the list to another page without fetching.
type PageReset[T any] struct {
	Page int
}

// FetchDiscarded ends a request whose page no longer exists upstream. The
// response is dropped, the last good data is kept and the list moves to Page.
type FetchDiscarded[T any] struct {
	Page int
}

// SearchApplied overwrites the buffer with the remote items accepted by Match.
// A nil Match restores the full page.
type SearchApplied[T any] struct {
	Query string
	Match func(T) bool
}

// RefreshToggled flips the refresh token.
type RefreshToggled[T any] struct{}

func (a FetchStarted[T]) apply(s State[T]) State[T] {
	s.Phase = PhaseLoading
	s.Loading = true
	s.CurrentPage = a.Page
	s.PageSize = a.PageSize
	return s
}

func (a FetchSucceeded[T]) apply(s State[T]) State[T] {
	s.Phase = PhaseSuccess
	s.Loading = false
	s.Error = ""
	s.Remote = a.Result
	s.Buffer = append([]T(nil), a.Result.Items...)
	s.Query = ""
	s.CurrentPage = a.Result.PageNumber
	s.PageSize = a.Result.PageSize
	return s
}

func (a FetchFailed[T]) apply(s State[T]) State[T] {
	s.Phase = PhaseFailed
	s.Loading = false
	if a.Err != nil {
		s.Error = a.Err.Error()
	}
	return s
}

func (a PageReset[T]) apply(s State[T]) State[T] {
	s.CurrentPage = a.Page
	return s
}

func (a FetchDiscarded[T]) apply(s State[T]) State[T] {
	s.Phase = PhaseIdle
	s.Loading = false
	s.CurrentPage = a.Page
	return s
}

func (a SearchApplied[T]) apply(s State[T]) State[T] {
	s.Query = a.Query
	if s.Remote == nil {
		s.Buffer = nil
		return s
	}
	buf := make([]T, 0, len(s.Remote.Items))
	for _, item := range s.Remote.Items {
		if a.Match == nil || a.Match(item) {
			buf = append(buf, item)
		}
	}
	s.Buffer = buf
	return s
}

func (RefreshToggled[T]) apply(s State[T]) State[T] {
	s.RefreshToken = !s.RefreshToken
	return s
}

// Reduce returns the state that results from applying action to s.
func Reduce[T any](s State[T], action Action[T]) State[T] {
	if action == nil {
		return s
	}
	return action.apply(s)
}

// Store holds a State and applies actions to it under a lock.
type Store[T any] struct {
	mu    sync.RWMutex
	state State[T]
}

// NewStore creates a store positioned on page 1.
func NewStore[T any](pageSize int) *Store[T] {
	return &Store[T]{state: State[T]{Phase: PhaseIdle, CurrentPage: 1, PageSize: pageSize}}
}

// Dispatch applies action and returns the new state.
func (s *Store[T]) Dispatch(action Action[T]) State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = Reduce(s.state, action)
	return s.snapshot()
}

// State returns a copy of the current state.
func (s *Store[T]) State() State[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// snapshot copies the buffer so callers cannot mutate the store through it.
// Must be called with the lock held.
func (s *Store[T]) snapshot() State[T] {
	st := s.state
	st.Buffer = append(make([]T, 0, len(s.state.Buffer)), s.state.Buffer...)
	return st
}
