// Package drinks holds the catalog entity, its validation rules and the
// service that applies them before anything reaches a Store.
package drinks

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Ingredient is one step of a recipe.
type Ingredient struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

// Drink is a catalog entry. Title is unique and non-empty; Recipe is a
// non-empty ordered list.
type Drink struct {
	ID     int64        `json:"id"`
	Title  string       `json:"title"`
	Recipe []Ingredient `json:"recipe"`
}

// Clone returns a deep copy.
func (d Drink) Clone() Drink {
	d.Recipe = slices.Clone(d.Recipe)
	return d
}

// ShortIngredient omits the ingredient name.
type ShortIngredient struct {
	Color string `json:"color"`
	Parts int    `json:"parts"`
}

// ShortDrink is the public listing representation.
type ShortDrink struct {
	ID     int64             `json:"id"`
	Title  string            `json:"title"`
	Recipe []ShortIngredient `json:"recipe"`
}

// Short returns the public representation.
func (d Drink) Short() ShortDrink {
	out := ShortDrink{ID: d.ID, Title: d.Title, Recipe: make([]ShortIngredient, 0, len(d.Recipe))}
	for _, in := range d.Recipe {
		out.Recipe = append(out.Recipe, ShortIngredient{Color: in.Color, Parts: in.Parts})
	}
	return out
}

// Long returns the detailed representation.
func (d Drink) Long() Drink { return d.Clone() }

var (
	ErrNotFound   = errors.New("drink not found")
	ErrTitleTaken = errors.New("drink title already exists")
)

// ValidationError reports a malformed or incomplete payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Reason: "is required"}
	}
	return nil
}

func validateRecipe(recipe []Ingredient) error {
	if len(recipe) == 0 {
		return &ValidationError{Field: "recipe", Reason: "must contain at least one ingredient"}
	}
	for i, in := range recipe {
		if strings.TrimSpace(in.Name) == "" {
			return &ValidationError{Field: fmt.Sprintf("recipe[%d].name", i), Reason: "is required"}
		}
		if in.Parts < 1 {
			return &ValidationError{Field: fmt.Sprintf("recipe[%d].parts", i), Reason: "must be positive"}
		}
	}
	return nil
}

// NewDrink is the create payload.
type NewDrink struct {
	Title  string
	Recipe []Ingredient
}

// Validate checks both required fields.
func (n NewDrink) Validate() error {
	if err := validateTitle(n.Title); err != nil {
		return err
	}
	return validateRecipe(n.Recipe)
}

// Patch is a partial update; nil fields are left unchanged.
type Patch struct {
	Title  *string
	Recipe *[]Ingredient
}

// Empty reports whether p changes nothing.
func (p Patch) Empty() bool { return p.Title == nil && p.Recipe == nil }

// Validate checks only the supplied fields.
func (p Patch) Validate() error {
	if p.Empty() {
		return &ValidationError{Reason: "request has no fields to update"}
	}
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Recipe != nil {
		if err := validateRecipe(*p.Recipe); err != nil {
			return err
		}
	}
	return nil
}

// Apply merges p into d and returns the result.
func (p Patch) Apply(d Drink) Drink {
	out := d.Clone()
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Recipe != nil {
		out.Recipe = slices.Clone(*p.Recipe)
	}
	return out
}

// Store persists drinks. Implementations return copies, ErrNotFound for a
// missing id and ErrTitleTaken on a unique-title conflict.
type Store interface {
	List(ctx context.Context) ([]Drink, error)
	Get(ctx context.Context, id int64) (Drink, error)
	Insert(ctx context.Context, d Drink) (Drink, error)
	Update(ctx context.Context, d Drink) (Drink, error)
	Delete(ctx context.Context, id int64) error
}
