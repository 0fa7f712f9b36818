package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"slicehub/api/internal/ids"
	"slicehub/api/internal/models"
)

// DB is the query surface the repository needs; satisfied by *pgxpool.Pool.
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type FranchiseRepository struct {
	pool DB
}

func NewFranchiseRepository(pool DB) *FranchiseRepository {
	return &FranchiseRepository{pool: pool}
}

// Create inserts the franchise and grants each admin the franchisee role
// scoped to it. Admins are resolved by the caller; this method only persists.
func (r *FranchiseRepository) Create(ctx context.Context, name string, admins []models.FranchiseAdmin) (models.Franchise, error) {
	franchise := models.Franchise{
		ID:     ids.New(),
		Name:   name,
		Admins: admins,
		Stores: []models.Store{},
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.Franchise{}, err
	}
	defer tx.Rollback(ctx)

	const franchiseQuery = `INSERT INTO franchises (id, name, created_at) VALUES ($1, $2, NOW())`
	if _, err := tx.Exec(ctx, franchiseQuery, franchise.ID, franchise.Name); err != nil {
		return models.Franchise{}, err
	}

	const roleQuery = `INSERT INTO user_roles (user_id, role, object_id) VALUES ($1, $2, $3)`
	for _, admin := range admins {
		if _, err := tx.Exec(ctx, roleQuery, admin.ID, models.RoleFranchisee, franchise.ID); err != nil {
			return models.Franchise{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Franchise{}, err
	}
	return franchise, nil
}

func (r *FranchiseRepository) GetByID(ctx context.Context, id string) (models.Franchise, error) {
	const query = `SELECT id, name FROM franchises WHERE id = $1`

	var franchise models.Franchise
	if err := r.pool.QueryRow(ctx, query, id).Scan(&franchise.ID, &franchise.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Franchise{}, ErrFranchiseNotFound
		}
		return models.Franchise{}, err
	}

	admins, err := r.loadAdmins(ctx, franchise.ID)
	if err != nil {
		return models.Franchise{}, err
	}
	stores, err := r.loadStores(ctx, franchise.ID)
	if err != nil {
		return models.Franchise{}, err
	}
	franchise.Admins = admins
	franchise.Stores = stores
	return franchise, nil
}

func (r *FranchiseRepository) List(ctx context.Context, limit int, offset int) ([]models.Franchise, error) {
	const query = `SELECT id, name FROM franchises ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	franchises, err := scanFranchiseRows(rows)
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, franchises)
}

// ListByUser returns the franchises the user administers via franchisee role
// rows.
func (r *FranchiseRepository) ListByUser(ctx context.Context, userID string) ([]models.Franchise, error) {
	const query = `
		SELECT f.id, f.name
		FROM franchises f
		JOIN user_roles ur ON ur.object_id = f.id AND ur.role = $2
		WHERE ur.user_id = $1
		ORDER BY f.name
	`
	rows, err := r.pool.Query(ctx, query, userID, models.RoleFranchisee)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	franchises, err := scanFranchiseRows(rows)
	if err != nil {
		return nil, err
	}
	return r.hydrate(ctx, franchises)
}

// Delete removes the franchise, its stores, and its franchisee role rows in
// one transaction. Partial failure rolls back entirely.
func (r *FranchiseRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin franchise delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM stores WHERE franchise_id = $1`, id); err != nil {
		return fmt.Errorf("delete stores: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM user_roles WHERE role = $1 AND object_id = $2`, models.RoleFranchisee, id); err != nil {
		return fmt.Errorf("delete franchise roles: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM franchises WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete franchise: %w", err)
	}

	return tx.Commit(ctx)
}

func (r *FranchiseRepository) CreateStore(ctx context.Context, franchiseID string, name string) (models.Store, error) {
	store := models.Store{
		ID:          ids.New(),
		FranchiseID: franchiseID,
		Name:        name,
	}

	const query = `INSERT INTO stores (id, franchise_id, name, created_at) VALUES ($1, $2, $3, NOW())`
	if _, err := r.pool.Exec(ctx, query, store.ID, store.FranchiseID, store.Name); err != nil {
		return models.Store{}, err
	}
	return store, nil
}

func (r *FranchiseRepository) DeleteStore(ctx context.Context, franchiseID string, storeID string) error {
	const query = `DELETE FROM stores WHERE id = $1 AND franchise_id = $2`
	cmd, err := r.pool.Exec(ctx, query, storeID, franchiseID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStoreNotFound
	}
	return nil
}

func (r *FranchiseRepository) loadAdmins(ctx context.Context, franchiseID string) ([]models.FranchiseAdmin, error) {
	const query = `
		SELECT u.id, u.name, u.email
		FROM users u
		JOIN user_roles ur ON ur.user_id = u.id
		WHERE ur.role = $2 AND ur.object_id = $1
		ORDER BY u.name
	`
	rows, err := r.pool.Query(ctx, query, franchiseID, models.RoleFranchisee)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	admins := []models.FranchiseAdmin{}
	for rows.Next() {
		var admin models.FranchiseAdmin
		if err := rows.Scan(&admin.ID, &admin.Name, &admin.Email); err != nil {
			return nil, err
		}
		admins = append(admins, admin)
	}
	return admins, rows.Err()
}

func (r *FranchiseRepository) loadStores(ctx context.Context, franchiseID string) ([]models.Store, error) {
	const query = `SELECT id, franchise_id, name FROM stores WHERE franchise_id = $1 ORDER BY name`
	rows, err := r.pool.Query(ctx, query, franchiseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stores := []models.Store{}
	for rows.Next() {
		var store models.Store
		if err := rows.Scan(&store.ID, &store.FranchiseID, &store.Name); err != nil {
			return nil, err
		}
		stores = append(stores, store)
	}
	return stores, rows.Err()
}

func (r *FranchiseRepository) hydrate(ctx context.Context, franchises []models.Franchise) ([]models.Franchise, error) {
	for i := range franchises {
		admins, err := r.loadAdmins(ctx, franchises[i].ID)
		if err != nil {
			return nil, err
		}
		stores, err := r.loadStores(ctx, franchises[i].ID)
		if err != nil {
			return nil, err
		}
		franchises[i].Admins = admins
		franchises[i].Stores = stores
	}
	return franchises, nil
}

func scanFranchiseRows(rows pgx.Rows) ([]models.Franchise, error) {
	var franchises []models.Franchise
	for rows.Next() {
		var franchise models.Franchise
		if err := rows.Scan(&franchise.ID, &franchise.Name); err != nil {
			return nil, err
		}
		franchises = append(franchises, franchise)
	}
	return franchises, rows.Err()
}
