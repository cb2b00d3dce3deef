package program

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/haniellourenco/EasyMiles/internal/apperr"
	"github.com/haniellourenco/EasyMiles/internal/ledger"
)

type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

const columns = `id, name, currency_type, custom_rate, is_active, is_user_created, created_by, created_at`

// List returns the global catalog plus the user's own programs.
func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]ledger.Program, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+columns+`
		FROM loyalty_programs
		WHERE NOT is_user_created OR created_by = $1
		ORDER BY name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ledger.Program, 0)
	for rows.Next() {
		var p ledger.Program
		if err := rows.Scan(&p.ID, &p.Name, &p.Currency, &p.CustomRate, &p.Active, &p.UserCreated, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id uuid.UUID) (*ledger.Program, error) {
	var p ledger.Program
	err := r.Pool.QueryRow(ctx,
		`SELECT `+columns+` FROM loyalty_programs WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.Currency, &p.CustomRate, &p.Active, &p.UserCreated, &p.CreatedBy, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("loyalty program not found")
		}
		return nil, err
	}
	return &p, nil
}

// Insert creates a user-created program owned by userID.
func (r *Repository) Insert(ctx context.Context, userID uuid.UUID, p *ledger.Program) error {
	p.ID = uuid.New()
	p.UserCreated = true
	p.Active = true
	p.CreatedBy = &userID
	return r.Pool.QueryRow(ctx, `
		INSERT INTO loyalty_programs
			(id, name, currency_type, custom_rate, is_active, is_user_created, created_by)
		VALUES ($1, $2, $3, $4, TRUE, TRUE, $5)
		RETURNING created_at`,
		p.ID, p.Name, p.Currency, p.CustomRate, userID,
	).Scan(&p.CreatedAt)
}

// ToggleActive flips a user-created program's active flag and cascades it to
// the program's accounts. Only the creator may do this.
func (r *Repository) ToggleActive(ctx context.Context, userID, programID uuid.UUID) (*ledger.Program, error) {
	p, err := r.Get(ctx, programID)
	if err != nil {
		return nil, err
	}
	if !p.UserCreated || p.CreatedBy == nil || *p.CreatedBy != userID {
		return nil, apperr.Permission("only the creator can change this program")
	}

	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	p.Active = !p.Active
	if _, err := tx.Exec(ctx,
		`UPDATE loyalty_programs SET is_active = $2 WHERE id = $1`, p.ID, p.Active); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx,
		`UPDATE loyalty_accounts SET is_active = $2 WHERE program_id = $1`, p.ID, p.Active); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a user-created program. Refused while any account still
// references it, so history keeps its program attribution.
func (r *Repository) Delete(ctx context.Context, userID, programID uuid.UUID) error {
	p, err := r.Get(ctx, programID)
	if err != nil {
		return err
	}
	if !p.UserCreated || p.CreatedBy == nil || *p.CreatedBy != userID {
		return apperr.Permission("only the creator can delete this program")
	}

	var inUse bool
	if err := r.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM loyalty_accounts WHERE program_id = $1)`, programID,
	).Scan(&inUse); err != nil {
		return err
	}
	if inUse {
		return apperr.Validation("program %q still has loyalty accounts", p.Name)
	}

	_, err = r.Pool.Exec(ctx, `DELETE FROM loyalty_programs WHERE id = $1`, programID)
	return err
}
