package memorystore

import (
	"context"
	"sort"
	"sync"

	"github.com/open-rails/coffeeshop/drinks"
)

// DrinkStore is an in-memory drinks.Store for development and tests.
// Every value crossing the boundary is copied.
type DrinkStore struct {
	mu     sync.RWMutex
	nextID int64
	data   map[int64]drinks.Drink
}

func NewDrinkStore() *DrinkStore {
	return &DrinkStore{nextID: 1, data: make(map[int64]drinks.Drink)}
}

func (s *DrinkStore) List(ctx context.Context) ([]drinks.Drink, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]drinks.Drink, 0, len(s.data))
	for _, d := range s.data {
		out = append(out, d.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *DrinkStore) Get(ctx context.Context, id int64) (drinks.Drink, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data[id]
	if !ok {
		return drinks.Drink{}, drinks.ErrNotFound
	}
	return d.Clone(), nil
}

func (s *DrinkStore) Insert(ctx context.Context, d drinks.Drink) (drinks.Drink, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.titleTaken(d.Title, 0) {
		return drinks.Drink{}, drinks.ErrTitleTaken
	}
	d = d.Clone()
	d.ID = s.nextID
	s.nextID++
	s.data[d.ID] = d
	return d.Clone(), nil
}

func (s *DrinkStore) Update(ctx context.Context, d drinks.Drink) (drinks.Drink, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[d.ID]; !ok {
		return drinks.Drink{}, drinks.ErrNotFound
	}
	if s.titleTaken(d.Title, d.ID) {
		return drinks.Drink{}, drinks.ErrTitleTaken
	}
	s.data[d.ID] = d.Clone()
	return d.Clone(), nil
}

func (s *DrinkStore) Delete(ctx context.Context, id int64) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[id]; !ok {
		return drinks.ErrNotFound
	}
	delete(s.data, id)
	return nil
}

// titleTaken must be called with mu held.
func (s *DrinkStore) titleTaken(title string, except int64) bool {
	for id, d := range s.data {
		if id != except && d.Title == title {
			return true
		}
	}
	return false
}
