package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ERC721Transfer is one decoded Transfer(address,address,uint256) event.
type ERC721Transfer struct {
	ContractID  int32
	BlockNumber uint64
	ChainID     uint32
	TxHash      string
	TxIndex     uint
	From        string
	To          string
	TokenID     string // decimal string of a uint256
}

// ERC721Repository is C4's ERC-721 half, grounded on the Rust original's
// services/repositories/erc721_repository.rs.
type ERC721Repository struct {
	pool *pgxpool.Pool
}

func NewERC721Repository(pool *pgxpool.Pool) *ERC721Repository {
	return &ERC721Repository{pool: pool}
}

func (r *ERC721Repository) InsertTransfer(ctx context.Context, t ERC721Transfer) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO erc721_transfer (contract_id, block_number, chain_id, tx_hash, tx_index, "from", "to", token_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ContractID, t.BlockNumber, t.ChainID, t.TxHash, t.TxIndex, t.From, t.To, t.TokenID)
	if err != nil {
		return fmt.Errorf("db: insert erc721 transfer: %w", err)
	}
	return nil
}

// ERC1155Transfer is one decoded TransferSingle or TransferBatch event;
// single transfers populate TokenIDs/Amounts with a single element each.
type ERC1155Transfer struct {
	ContractID  int32
	BlockNumber uint64
	ChainID     uint32
	TxHash      string
	TxIndex     uint
	From        string
	To          string
	TokenIDs    []string
	Amounts     []string
}

// ERC1155Repository is C4's ERC-1155 half, grounded on the Rust
// original's services/repositories/erc1155_repository.rs.
type ERC1155Repository struct {
	pool *pgxpool.Pool
}

func NewERC1155Repository(pool *pgxpool.Pool) *ERC1155Repository {
	return &ERC1155Repository{pool: pool}
}

func (r *ERC1155Repository) InsertTransfer(ctx context.Context, t ERC1155Transfer) error {
	var tokenIDs, amounts pgtype.TextArray
	if err := tokenIDs.Set(t.TokenIDs); err != nil {
		return fmt.Errorf("db: encode token_ids: %w", err)
	}
	if err := amounts.Set(t.Amounts); err != nil {
		return fmt.Errorf("db: encode amounts: %w", err)
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO erc1155_transfer (contract_id, block_number, chain_id, tx_hash, tx_index, "from", "to", token_ids, amounts)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		t.ContractID, t.BlockNumber, t.ChainID, t.TxHash, t.TxIndex, t.From, t.To, tokenIDs, amounts)
	if err != nil {
		return fmt.Errorf("db: insert erc1155 transfer: %w", err)
	}
	return nil
}
