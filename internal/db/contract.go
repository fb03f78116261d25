package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

const uniqueViolation = "23505"

// ContractRepository resolves (address, chain_id) to a contract_id,
// shared by both transfer repositories. Grounded on the Rust original's
// services/repositories/contract_repository.rs.
type ContractRepository struct {
	pool *pgxpool.Pool
}

func NewContractRepository(pool *pgxpool.Pool) *ContractRepository {
	return &ContractRepository{pool: pool}
}

// GetOrCreateContract is the sole constructor for contract rows: SELECT
// by (address, chain_id); on miss, INSERT with enabled=TRUE RETURNING id.
// Under concurrent first-writes the unique-constraint violation is
// retried as a SELECT, matching the idempotent-contract-resolution
// invariant of spec.md §8.
func (r *ContractRepository) GetOrCreateContract(ctx context.Context, address string, chainID uint32) (int32, error) {
	id, err := r.selectContract(ctx, address, chainID)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("db: get contract: %w", err)
	}

	id, err = r.insertContract(ctx, address, chainID)
	if err == nil {
		return id, nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		id, selErr := r.selectContract(ctx, address, chainID)
		if selErr != nil {
			return 0, fmt.Errorf("db: get contract after conflict: %w", selErr)
		}
		return id, nil
	}
	return 0, fmt.Errorf("db: insert contract: %w", err)
}

func (r *ContractRepository) selectContract(ctx context.Context, address string, chainID uint32) (int32, error) {
	var id int32
	err := r.pool.QueryRow(ctx,
		`SELECT id FROM contract WHERE address = $1 AND chain_id = $2`,
		address, chainID).Scan(&id)
	return id, err
}

func (r *ContractRepository) insertContract(ctx context.Context, address string, chainID uint32) (int32, error) {
	var id int32
	err := r.pool.QueryRow(ctx,
		`INSERT INTO contract (address, chain_id, enabled) VALUES ($1, $2, TRUE) RETURNING id`,
		address, chainID).Scan(&id)
	return id, err
}
