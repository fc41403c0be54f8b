package drinks

import (
	"context"
)

// Service applies the drink lifecycle rules on top of a Store.
// Validation always happens before the store is called.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]Drink, error) {
	return s.store.List(ctx)
}

func (s *Service) Get(ctx context.Context, id int64) (Drink, error) {
	return s.store.Get(ctx, id)
}

// Create validates n and inserts it.
func (s *Service) Create(ctx context.Context, n NewDrink) (Drink, error) {
	if err := n.Validate(); err != nil {
		return Drink{}, err
	}
	return s.store.Insert(ctx, Drink{Title: n.Title, Recipe: n.Recipe})
}

// Update merges p into the stored drink.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (Drink, error) {
	if err := p.Validate(); err != nil {
		return Drink{}, err
	}
	cur, err := s.store.Get(ctx, id)
	if err != nil {
		return Drink{}, err
	}
	return s.store.Update(ctx, p.Apply(cur))
}

// Delete removes id unconditionally.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}
