package processor

import (
	"context"
	"strings"

	"github.com/chainwatch/evm-transfer-indexer/internal/db"
)

// erc1155TransferBatchTopic0 is
// keccak256("TransferBatch(address,address,address,uint256[],uint256[])").
const erc1155TransferBatchTopic0 = "0x4a39dc06d4c0dbc64b70af90fd698a233a518aa5d07e595d983b8c0526c8f7fb"

// ERC1155TransferBatchDecoder matches TransferBatch and persists one row
// whose TokenIDs/Amounts arrays mirror the batch. Grounded on the Rust
// original's processors/erc1155_transfer_batch_event_processor.rs.
type ERC1155TransferBatchDecoder struct {
	Contracts ContractResolver
	Transfers ERC1155Writer
}

func (d *ERC1155TransferBatchDecoder) StoreIfApply(ctx context.Context, req Request) (Result, error) {
	if !strings.EqualFold(req.Topic0, erc1155TransferBatchTopic0) {
		return NotApplicable, nil
	}
	if req.Topic1 == nil || req.Topic2 == nil || req.Topic3 == nil {
		return NotApplicable, nil
	}

	from, err := decodeAddressTopic(*req.Topic2)
	if err != nil {
		return NotApplicable, err
	}
	to, err := decodeAddressTopic(*req.Topic3)
	if err != nil {
		return NotApplicable, err
	}

	ids, amounts, err := decodeUint256ArrayPair(req.Data)
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
		TokenIDs:    ids,
		Amounts:     amounts,
	})
	if err != nil {
		return NotApplicable, newDatabaseError(err)
	}

	return Stored, nil
}

// NewDefaultRegistry wires the three decoders in insertion order behind
// a shared contract resolver and the two transfer writers, matching the
// dispatch contract of spec.md §4.7.
func NewDefaultRegistry(contracts ContractResolver, erc721 ERC721Writer, erc1155 ERC1155Writer) *Registry {
	return NewRegistry(
		&ERC721TransferDecoder{Contracts: contracts, Transfers: erc721},
		&ERC1155TransferSingleDecoder{Contracts: contracts, Transfers: erc1155},
		&ERC1155TransferBatchDecoder{Contracts: contracts, Transfers: erc1155},
	)
}
