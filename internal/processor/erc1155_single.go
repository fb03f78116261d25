package processor

import (
	"context"
	"strings"

	"github.com/chainwatch/evm-transfer-indexer/internal/db"
)

// erc1155TransferSingleTopic0 is
// keccak256("TransferSingle(address,address,address,uint256,uint256)").
const erc1155TransferSingleTopic0 = "0xc3d58168c5ae7397731d063d5bbf3d657854427343f4c083240f7aacaa2d0f62"

// ERC1155Writer persists one decoded ERC-1155 transfer (single or batch).
type ERC1155Writer interface {
	InsertTransfer(ctx context.Context, t db.ERC1155Transfer) error
}

// ERC1155TransferSingleDecoder matches TransferSingle and persists it
// with single-element TokenIDs/Amounts arrays. Grounded on the Rust
// original's processors/erc1155_transfer_single_event_processor.rs.
type ERC1155TransferSingleDecoder struct {
	Contracts ContractResolver
	Transfers ERC1155Writer
}

func (d *ERC1155TransferSingleDecoder) StoreIfApply(ctx context.Context, req Request) (Result, error) {
	if !strings.EqualFold(req.Topic0, erc1155TransferSingleTopic0) {
		return NotApplicable, nil
	}
	if req.Topic1 == nil || req.Topic2 == nil || req.Topic3 == nil {
		return NotApplicable, nil
	}

	// topic1 = operator (unused), topic2 = from, topic3 = to.
	from, err := decodeAddressTopic(*req.Topic2)
	if err != nil {
		return NotApplicable, err
	}
	to, err := decodeAddressTopic(*req.Topic3)
	if err != nil {
		return NotApplicable, err
	}

	id, amount, err := decodeUint256Pair(req.Data)
	if err != nil {
		return NotApplicable, err
	}

	contractID, err := d.Contracts.GetOrCreateContract(ctx, req.Address, req.ChainID)
	if err != nil {
		return NotApplicable, newDatabaseError(err)
	}

	err = d.Transfers.InsertTransfer(ctx, db.ERC1155Transfer{
		ContractID:  contractID,
		BlockNumber: req.BlockNumber,
		ChainID:     req.ChainID,
		TxHash:      req.TxHash,
		TxIndex:     req.TxIndex,
		From:        from,
		To:          to,
		TokenIDs:    []string{id},
		Amounts:     []string{amount},
	})
	if err != nil {
		return NotApplicable, newDatabaseError(err)
	}

	return Stored, nil
}
