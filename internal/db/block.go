package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4/pgxpool"
)

// maxBulkInsertRows bounds how many rows InsertBlocksBulk puts in a
// single multi-row INSERT, splitting larger batches; see SPEC_FULL.md §4.3.
const maxBulkInsertRows = 500

// BlockRepository is C3, grounded on the Rust original's
// services/repositories/block.rs.
type BlockRepository struct {
	pool *pgxpool.Pool
}

func NewBlockRepository(pool *pgxpool.Pool) *BlockRepository {
	return &BlockRepository{pool: pool}
}

// GetIndexedBlocks returns the complete processed set for chainID as a
// Go set, satisfying the containment-test semantics spec.md §4.3 requires
// regardless of the underlying row representation.
func (r *BlockRepository) GetIndexedBlocks(ctx context.Context, chainID uint32) (map[uint64]struct{}, error) {
	rows, err := r.pool.Query(ctx, `SELECT block_number FROM block WHERE chain_id = $1`, chainID)
	if err != nil {
		return nil, fmt.Errorf("db: get indexed blocks: %w", err)
	}
	defer rows.Close()

	result := make(map[uint64]struct{})
	for rows.Next() {
		var n uint64
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("db: scan block number: %w", err)
		}
		result[n] = struct{}{}
	}
	return result, rows.Err()
}

// InsertBlock appends one row, idempotent under retry via the
// (chain_id, block_number) unique constraint.
func (r *BlockRepository) InsertBlock(ctx context.Context, blockNumber uint64, chainID uint32) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO block (block_number, chain_id) VALUES ($1, $2) ON CONFLICT (chain_id, block_number) DO NOTHING`,
		blockNumber, chainID)
	if err != nil {
		return fmt.Errorf("db: insert block: %w", err)
	}
	return nil
}

// InsertBlocksBulk batch-inserts rows, chunked at maxBulkInsertRows.
func (r *BlockRepository) InsertBlocksBulk(ctx context.Context, chainID uint32, blockNumbers []uint64) error {
	for start := 0; start < len(blockNumbers); start += maxBulkInsertRows {
		end := start + maxBulkInsertRows
		if end > len(blockNumbers) {
			end = len(blockNumbers)
		}
		if err := r.insertChunk(ctx, chainID, blockNumbers[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *BlockRepository) insertChunk(ctx context.Context, chainID uint32, chunk []uint64) error {
	if len(chunk) == 0 {
		return nil
	}

	query, args := buildBulkInsertQuery(chainID, chunk)
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("db: insert blocks bulk: %w", err)
	}
	return nil
}

// buildBulkInsertQuery renders a single multi-row INSERT for chunk,
// split out from insertChunk so its SQL-building logic is unit-testable
// without a live pgxpool.Pool.
func buildBulkInsertQuery(chainID uint32, chunk []uint64) (string, []interface{}) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO block (block_number, chain_id) VALUES ")
	args := make([]interface{}, 0, len(chunk)*2)
	for i, n := range chunk {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "($%d, $%d)", i*2+1, i*2+2)
		args = append(args, n, chainID)
	}
	sb.WriteString(" ON CONFLICT (chain_id, block_number) DO NOTHING")
	return sb.String(), args
}

// Reset deletes all rows for chainID; used only at startup when the
// operator requests a full re-index.
func (r *BlockRepository) Reset(ctx context.Context, chainID uint32) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM block WHERE chain_id = $1`, chainID)
	if err != nil {
		return fmt.Errorf("db: reset: %w", err)
	}
	return nil
}
