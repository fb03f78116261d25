package processor

import (
	"context"
	"strings"

	"github.com/chainwatch/evm-transfer-indexer/internal/db"
)

// erc721TransferTopic0 is keccak256("Transfer(address,address,uint256)").
const erc721TransferTopic0 = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

// ContractResolver is the shared contract lookup/creation dependency
// every decoder uses to resolve a contract_id before writing a transfer.
type ContractResolver interface {
	GetOrCreateContract(ctx context.Context, address string, chainID uint32) (int32, error)
}

// ERC721Writer persists one decoded ERC-721 transfer.
type ERC721Writer interface {
	InsertTransfer(ctx context.Context, t db.ERC721Transfer) error
}

// ERC721TransferDecoder matches Transfer(address,address,uint256) and
// persists it. Grounded on the Rust original's
// processors/erc721_transfer_event_processor.rs. The ERC-721 token id is
// decoded as uint256 -> decimal string, resolving the Open Question in
// spec.md §9 in favor of the ERC-1155-consistent representation rather
// than the historical 32-bit-truncating bug (see DESIGN.md).
type ERC721TransferDecoder struct {
	Contracts ContractResolver
	Transfers ERC721Writer
}

func (d *ERC721TransferDecoder) StoreIfApply(ctx context.Context, req Request) (Result, error) {
	if !strings.EqualFold(req.Topic0, erc721TransferTopic0) {
		return NotApplicable, nil
	}
	if req.Topic1 == nil || req.Topic2 == nil || req.Topic3 == nil {
		return NotApplicable, nil
	}

	from, err := decodeAddressTopic(*req.Topic1)
	if err != nil {
		return NotApplicable, err
	}
	to, err := decodeAddressTopic(*req.Topic2)
	if err != nil {
		return NotApplicable, err
	}
	tokenID, err := decodeUint256Topic(*req.Topic3)
	if err != nil {
		return NotApplicable, err
	}

	contractID, err := d.Contracts.GetOrCreateContract(ctx, req.Address, req.ChainID)
	if err != nil {
		return NotApplicable, newDatabaseError(err)
	}

	err = d.Transfers.InsertTransfer(ctx, db.ERC721Transfer{
		ContractID:  contractID,
		BlockNumber: req.BlockNumber,
		ChainID:     req.ChainID,
		TxHash:      req.TxHash,
		TxIndex:     req.TxIndex,
		From:        from,
		To:          to,
		TokenID:     tokenID,
	})
	if err != nil {
		return NotApplicable, newDatabaseError(err)
	}

	return Stored, nil
}
