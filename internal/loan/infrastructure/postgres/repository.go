package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sgiraldo-dev/Inventory-Loan-System/internal/loan/application"
	"github.com/sgiraldo-dev/Inventory-Loan-System/internal/loan/domain"
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
CREATE TABLE IF NOT EXISTS usuarios (
  id     TEXT PRIMARY KEY,
  nombre TEXT NOT NULL,
  email  TEXT NOT NULL DEFAULT '',
  rol    TEXT NOT NULL DEFAULT 'Estudiante'
);
CREATE TABLE IF NOT EXISTS aulas (
  id     TEXT PRIMARY KEY,
  nombre TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS prestamos (
  id                 TEXT PRIMARY KEY,
  usuario_id         TEXT NOT NULL REFERENCES usuarios(id),
  item_id            TEXT NOT NULL,
  aula_id            TEXT NOT NULL REFERENCES aulas(id),
  cantidad_prestamo  INTEGER NOT NULL CHECK (cantidad_prestamo > 0),
  estado             TEXT NOT NULL,
  fecha_prestamo     TIMESTAMPTZ,
  fecha_estimada     TIMESTAMPTZ,
  fecha_retorno      TIMESTAMPTZ,
  created_at         TIMESTAMPTZ NOT NULL,
  updated_at         TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_prestamos_usuario ON prestamos(usuario_id);
CREATE INDEX IF NOT EXISTS idx_prestamos_estado  ON prestamos(estado);
CREATE TABLE IF NOT EXISTS outbox (
  id             BIGSERIAL PRIMARY KEY,
  aggregate_type TEXT NOT NULL,
  aggregate_id   TEXT NOT NULL,
  type           TEXT NOT NULL,
  payload        JSONB NOT NULL,
  traceparent    TEXT NOT NULL DEFAULT '',
  status         TEXT NOT NULL DEFAULT 'pending',
  relay_id       TEXT,
  lease_until    TIMESTAMPTZ,
  retry_count    INTEGER NOT NULL DEFAULT 0,
  last_error     TEXT,
  created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_outbox_status ON outbox(status);`
	_, err := r.pool.Exec(ctx, schema)
	return err
}

// Seed inserts demo usuarios and aulas for local runs.
func (r *Repository) Seed(ctx context.Context) error {
	users := [][]any{
		{"user-admin", "Coordinación Académica", "coordinacion@colegio.edu.co", "Admin"},
		{"user-mgomez", "María Gómez", "mgomez@colegio.edu.co", "Docente"},
		{"user-jperez", "Julián Pérez", "jperez@colegio.edu.co", "Estudiante"},
	}
	for _, v := range users {
		if _, err := r.pool.Exec(ctx, `
INSERT INTO usuarios (id, nombre, email, rol) VALUES ($1,$2,$3,$4)
ON CONFLICT (id) DO NOTHING`, v...); err != nil {
			return err
		}
	}
	aulas := [][]any{
		{"aula-301", "Laboratorio de Física 301"},
		{"aula-102", "Salón 102"},
	}
	for _, v := range aulas {
		if _, err := r.pool.Exec(ctx, `
INSERT INTO aulas (id, nombre) VALUES ($1,$2)
ON CONFLICT (id) DO NOTHING`, v...); err != nil {
			return err
		}
	}
	return nil
}

const loanColumns = `
p.id, p.usuario_id, u.nombre, u.email, p.item_id, p.aula_id, a.nombre,
p.cantidad_prestamo, p.estado, p.fecha_prestamo, p.fecha_estimada,
p.fecha_retorno, p.created_at, p.updated_at`

const loanJoins = `
FROM prestamos p
JOIN usuarios u ON u.id = p.usuario_id
JOIN aulas    a ON a.id = p.aula_id`

func scanLoan(row pgx.Row) (domain.Loan, error) {
	var l domain.Loan
	err := row.Scan(
		&l.ID, &l.Usuario.ID, &l.Usuario.Nombre, &l.Usuario.Email,
		&l.ItemID, &l.Aula.ID, &l.Aula.Nombre,
		&l.Cantidad, &l.Estado,
		&l.FechaPrestamo, &l.FechaEstimada, &l.FechaRetorno,
		&l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

func (r *Repository) Create(ctx context.Context, loan domain.Loan) (domain.Loan, error) {
	_, err := r.pool.Exec(ctx, `
INSERT INTO prestamos
  (id, usuario_id, item_id, aula_id, cantidad_prestamo, estado,
   fecha_prestamo, fecha_estimada, fecha_retorno, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		loan.ID, loan.Usuario.ID, loan.ItemID, loan.Aula.ID, loan.Cantidad, loan.Estado,
		loan.FechaPrestamo, loan.FechaEstimada, loan.FechaRetorno, loan.CreatedAt, loan.UpdatedAt)
	if err != nil {
		return domain.Loan{}, err
	}
	return r.FindByID(ctx, loan.ID)
}

func (r *Repository) FindByID(ctx context.Context, id string) (domain.Loan, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+loanColumns+loanJoins+` WHERE p.id=$1`, id)
	loan, err := scanLoan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Loan{}, domain.ErrLoanNotFound
	}
	if err != nil {
		return domain.Loan{}, err
	}
	return loan, nil
}

// Save overwrites the mutable fields of one loan document in a single atomic
// statement.
func (r *Repository) Save(ctx context.Context, loan domain.Loan) error {
	ct, err := r.pool.Exec(ctx, `
UPDATE prestamos
SET estado=$2, fecha_prestamo=$3, fecha_estimada=$4, fecha_retorno=$5, updated_at=$6
WHERE id=$1`,
		loan.ID, loan.Estado, loan.FechaPrestamo, loan.FechaEstimada, loan.FechaRetorno, loan.UpdatedAt)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return domain.ErrLoanNotFound
	}
	return nil
}

func (r *Repository) DeleteByID(ctx context.Context, id string) (domain.Loan, error) {
	row := r.pool.QueryRow(ctx, `
DELETE FROM prestamos WHERE id=$1
RETURNING id, usuario_id, item_id, aula_id, cantidad_prestamo, estado,
          fecha_prestamo, fecha_estimada, fecha_retorno, created_at, updated_at`, id)
	var l domain.Loan
	err := row.Scan(
		&l.ID, &l.Usuario.ID, &l.ItemID, &l.Aula.ID, &l.Cantidad, &l.Estado,
		&l.FechaPrestamo, &l.FechaEstimada, &l.FechaRetorno, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Loan{}, domain.ErrLoanNotFound
	}
	if err != nil {
		return domain.Loan{}, err
	}
	return l, nil
}

func (r *Repository) Find(ctx context.Context, q application.LoanQuery) ([]domain.Loan, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 2)
	if q.UserID != "" {
		args = append(args, q.UserID)
		where = append(where, fmt.Sprintf("p.usuario_id=$%d", len(args)))
	}
	if q.Estado != nil {
		args = append(args, *q.Estado)
		where = append(where, fmt.Sprintf("p.estado=$%d", len(args)))
	}

	query := `SELECT ` + loanColumns + loanJoins
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY p.created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loans []domain.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}
