// Package pgstore persists drinks in Postgres through pgx.
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/open-rails/coffeeshop/drinks"
)

const uniqueViolation = "23505"

// DrinkStore keeps one row per drink; the recipe is stored as JSON text.
type DrinkStore struct {
	pg     *pgxpool.Pool
	schema string
}

func NewDrinkStore(pg *pgxpool.Pool, schema string) *DrinkStore {
	s := strings.TrimSpace(schema)
	if s == "" {
		s = "public"
	}
	return &DrinkStore{pg: pg, schema: s}
}

func (s *DrinkStore) table() string { return s.schema + ".drinks" }

func (s *DrinkStore) List(ctx context.Context) ([]drinks.Drink, error) {
	rows, err := s.pg.Query(ctx, `SELECT id, title, recipe FROM `+s.table()+` ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []drinks.Drink{}
	for rows.Next() {
		d, err := scanDrink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *DrinkStore) Get(ctx context.Context, id int64) (drinks.Drink, error) {
	row := s.pg.QueryRow(ctx, `SELECT id, title, recipe FROM `+s.table()+` WHERE id=$1`, id)
	d, err := scanDrink(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return drinks.Drink{}, drinks.ErrNotFound
	}
	return d, err
}

func (s *DrinkStore) Insert(ctx context.Context, d drinks.Drink) (drinks.Drink, error) {
	recipe, err := json.Marshal(d.Recipe)
	if err != nil {
		return drinks.Drink{}, err
	}
	err = s.pg.QueryRow(ctx,
		`INSERT INTO `+s.table()+` (title, recipe) VALUES ($1, $2) RETURNING id`,
		d.Title, string(recipe),
	).Scan(&d.ID)
	if err != nil {
		return drinks.Drink{}, mapErr(err)
	}
	return d.Clone(), nil
}

func (s *DrinkStore) Update(ctx context.Context, d drinks.Drink) (drinks.Drink, error) {
	recipe, err := json.Marshal(d.Recipe)
	if err != nil {
		return drinks.Drink{}, err
	}
	tag, err := s.pg.Exec(ctx,
		`UPDATE `+s.table()+` SET title=$2, recipe=$3, updated_at=NOW() WHERE id=$1`,
		d.ID, d.Title, string(recipe),
	)
	if err != nil {
		return drinks.Drink{}, mapErr(err)
	}
	if tag.RowsAffected() == 0 {
		return drinks.Drink{}, drinks.ErrNotFound
	}
	return d.Clone(), nil
}

func (s *DrinkStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pg.Exec(ctx, `DELETE FROM `+s.table()+` WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return drinks.ErrNotFound
	}
	return nil
}

func scanDrink(row pgx.Row) (drinks.Drink, error) {
	var d drinks.Drink
	var recipe string
	if err := row.Scan(&d.ID, &d.Title, &recipe); err != nil {
		return drinks.Drink{}, err
	}
	if err := json.Unmarshal([]byte(recipe), &d.Recipe); err != nil {
		return drinks.Drink{}, fmt.Errorf("decode recipe for drink %d: %w", d.ID, err)
	}
	return d, nil
}

func mapErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return drinks.ErrTitleTaken
	}
	return err
}
