package processor

import (
	"context"

	"github.com/chainwatch/evm-transfer-indexer/internal/db"
)

type contractCall struct {
	address string
	chainID uint32
}

type fakeContracts struct {
	id    int32
	err   error
	calls []contractCall
}

func (f *fakeContracts) GetOrCreateContract(ctx context.Context, address string, chainID uint32) (int32, error) {
	f.calls = append(f.calls, contractCall{address: address, chainID: chainID})
	if f.err != nil {
		return 0, f.err
	}
	return f.id, nil
}

type fakeERC721Writer struct {
	inserted []db.ERC721Transfer
	err      error
}

func (f *fakeERC721Writer) InsertTransfer(ctx context.Context, t db.ERC721Transfer) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, t)
	return nil
}

type fakeERC1155Writer struct {
	inserted []db.ERC1155Transfer
	err      error
}

func (f *fakeERC1155Writer) InsertTransfer(ctx context.Context, t db.ERC1155Transfer) error {
	if f.err != nil {
		return f.err
	}
	f.inserted = append(f.inserted, t)
	return nil
}
