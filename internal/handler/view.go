package handler

import (
	"context"
	"sync"

	"prison-records/internal/models"
	"prison-records/internal/store"
	"prison-records/internal/view"
)

// ViewSession guards the single list view shared by the list, export and
// summary report endpoints.
type ViewSession struct {
	mu    sync.Mutex
	state *view.State
}

func NewViewSession(pageSize int) *ViewSession {
	return &ViewSession{state: view.NewState(pageSize)}
}

// Update applies fn to the view state.
func (v *ViewSession) Update(fn func(s *view.State)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fn(v.state)
}

// State returns a copy of the current view state.
func (v *ViewSession) State() view.State {
	v.mu.Lock()
	defer v.mu.Unlock()
	s := *v.state
	if s.Sort != nil {
		sc := *s.Sort
		s.Sort = &sc
	}
	return s
}

// Render reads the store and applies the current view to it.
func (v *ViewSession) Render(ctx context.Context, st store.Store) (view.Result, view.State, error) {
	records, err := st.All(ctx)
	if err != nil {
		return view.Result{}, view.State{}, err
	}
	s := v.State()
	return s.Apply([]models.Prisoner(records)), s, nil
}
