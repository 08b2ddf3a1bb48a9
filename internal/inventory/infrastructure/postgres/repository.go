package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgiraldo-dev/Inventory-Loan-System/internal/inventory/domain"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Migrate(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS items (
  id                   TEXT PRIMARY KEY,
  nombre               TEXT NOT NULL,
  cantidad_disponible  INTEGER NOT NULL DEFAULT 0,
  cantidad_total_stock INTEGER NOT NULL DEFAULT 0,
  updated_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);`
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// Seed inserts a handful of items for local runs. Existing rows are left
// alone.
func (r *Repository) Seed(ctx context.Context) error {
	rows := [][]any{
		{"item-marcadores", "Marcadores borrables", 12, 12},
		{"item-proyector", "Proyector portátil", 2, 3},
		{"item-calculadoras", "Calculadoras científicas", 25, 30},
		{"item-microscopio", "Microscopio óptico", 1, 1},
	}
	for _, v := range rows {
		_, err := r.pool.Exec(ctx, `
INSERT INTO items (id, nombre, cantidad_disponible, cantidad_total_stock)
VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO NOTHING`, v...)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (domain.Item, error) {
	var it domain.Item
	err := r.pool.QueryRow(ctx, `
SELECT id, nombre, cantidad_disponible, cantidad_total_stock, updated_at
FROM items WHERE id=$1`, id).
		Scan(&it.ID, &it.Nombre, &it.Disponible, &it.TotalStock, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Item{}, domain.ErrItemNotFound
	}
	if err != nil {
		return domain.Item{}, err
	}
	return it, nil
}

// AdjustAvailable applies the delta in one statement; the RETURNING value is
// what the ledger inspects to arbitrate concurrent reservations.
func (r *Repository) AdjustAvailable(ctx context.Context, id string, delta int) (int, error) {
	var avail int
	err := r.pool.QueryRow(ctx, `
UPDATE items
SET cantidad_disponible = cantidad_disponible + $2, updated_at = now()
WHERE id=$1
RETURNING cantidad_disponible`, id, delta).Scan(&avail)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrItemNotFound
	}
	if err != nil {
		return 0, err
	}
	return avail, nil
}

// RestoreAvailable adds qty but never past cantidad_total_stock.
func (r *Repository) RestoreAvailable(ctx context.Context, id string, qty int) (int, error) {
	var avail int
	err := r.pool.QueryRow(ctx, `
UPDATE items
SET cantidad_disponible = LEAST(cantidad_disponible + $2, cantidad_total_stock), updated_at = now()
WHERE id=$1
RETURNING cantidad_disponible`, id, qty).Scan(&avail)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, domain.ErrItemNotFound
	}
	if err != nil {
		return 0, err
	}
	return avail, nil
}
