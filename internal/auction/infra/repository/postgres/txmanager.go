package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/farmgate/bidEngine/internal/auction/domain"
)

// TxManager implements domain.TxManager over a pgx pool. pgx.Tx already has
// the Commit/Rollback(ctx) shape of domain.Tx so it is returned as-is.
type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

func (m *TxManager) Begin(ctx context.Context) (domain.Tx, error) {
	tx, err := m.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return tx, nil
}

// pgxTx unwraps the domain.Tx handed back into repository writes. Repos in
// this package only ever see transactions created by TxManager.
func pgxTx(tx domain.Tx) (pgx.Tx, error) {
	t, ok := tx.(pgx.Tx)
	if !ok {
		return nil, fmt.Errorf("postgres repository needs a pgx transaction, got %T", tx)
	}
	return t, nil
}
