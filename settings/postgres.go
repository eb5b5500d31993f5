package settings

import (
	"context"

	"github.com/jackc/pgx/v5"
)

const currentSettingSQL = "SELECT current_setting($1, true)"

// Querier is the subset of *pgx.Conn, *pgxpool.Pool and pgx.Tx used by [Postgres].
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres reads run-time parameters with current_setting(name, true), which yields
// NULL instead of an error for unknown custom parameters.
type Postgres struct {
	q Querier
}

// NewPostgres returns a Provider reading through q.
func NewPostgres(q Querier) *Postgres {
	return &Postgres{q: q}
}

// Lookup implements Provider.
func (p *Postgres) Lookup(ctx context.Context, name string) (string, bool, error) {
	var v *string
	if err := p.q.QueryRow(ctx, currentSettingSQL, name).Scan(&v); err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}
	return *v, true, nil
}
