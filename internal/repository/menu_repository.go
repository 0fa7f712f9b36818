package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"slicehub/api/internal/ids"
	"slicehub/api/internal/models"
)

type MenuRepository struct {
	pool *pgxpool.Pool
}

func NewMenuRepository(pool *pgxpool.Pool) *MenuRepository {
	return &MenuRepository{pool: pool}
}

func (r *MenuRepository) List(ctx context.Context) ([]models.MenuItem, error) {
	const query = `SELECT id, title, description, image, price FROM menu ORDER BY title`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.MenuItem{}
	for rows.Next() {
		var item models.MenuItem
		if err := rows.Scan(&item.ID, &item.Title, &item.Description, &item.Image, &item.Price); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *MenuRepository) Add(ctx context.Context, item models.MenuItem) (models.MenuItem, error) {
	item.ID = ids.New()

	const query = `
		INSERT INTO menu (id, title, description, image, price)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.pool.Exec(ctx, query, item.ID, item.Title, item.Description, item.Image, item.Price); err != nil {
		return models.MenuItem{}, err
	}
	return item, nil
}
