package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestERC721TransferDecoder_StoreIfApply(t *testing.T) {
	from := "0x0000000000000000000000000000000000000abc"
	to := "0x0000000000000000000000000000000000000def"
	topic1 := topicFromAddress(t, from)
	topic2 := topicFromAddress(t, to)
	topic3 := topicFromUint(123)

	contracts := &fakeContracts{id: 7}
	writer := &fakeERC721Writer{}
	d := &ERC721TransferDecoder{Contracts: contracts, Transfers: writer}

	result, err := d.StoreIfApply(context.Background(), Request{
		ChainID:     1,
		BlockNumber: 100,
		Address:     "0x1111111111111111111111111111111111111111",
		Topic0:      erc721TransferTopic0,
		Topic1:      &topic1,
		Topic2:      &topic2,
		Topic3:      &topic3,
	})

	require.NoError(t, err)
	assert.Equal(t, Stored, result)
	require.Len(t, writer.inserted, 1)
	tr := writer.inserted[0]
	assert.Equal(t, from, tr.From)
	assert.Equal(t, to, tr.To)
	assert.Equal(t, "123", tr.TokenID)
	assert.Equal(t, int32(7), tr.ContractID)
	require.Len(t, contracts.calls, 1)
	assert.Equal(t, uint32(1), contracts.calls[0].chainID)
}

func TestERC721TransferDecoder_NonMatchingTopic0(t *testing.T) {
	d := &ERC721TransferDecoder{Contracts: &fakeContracts{}, Transfers: &fakeERC721Writer{}}

	result, err := d.StoreIfApply(context.Background(), Request{
		Topic0: "0xdeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeadbeef",
	})

	require.NoError(t, err)
	assert.Equal(t, NotApplicable, result)
}

func TestERC721TransferDecoder_MissingTopic3(t *testing.T) {
	from := topicFromAddress(t, "0x0000000000000000000000000000000000000abc")
	to := topicFromAddress(t, "0x0000000000000000000000000000000000000def")
	writer := &fakeERC721Writer{}
	d := &ERC721TransferDecoder{Contracts: &fakeContracts{}, Transfers: writer}

	result, err := d.StoreIfApply(context.Background(), Request{
		Topic0: erc721TransferTopic0,
		Topic1: &from,
		Topic2: &to,
		Topic3: nil,
	})

	require.NoError(t, err)
	assert.Equal(t, NotApplicable, result)
	assert.Empty(t, writer.inserted)
}

func TestERC721TransferDecoder_DatabaseErrorIsWrapped(t *testing.T) {
	from := topicFromAddress(t, "0x0000000000000000000000000000000000000abc")
	to := topicFromAddress(t, "0x0000000000000000000000000000000000000def")
	tokenID := topicFromUint(1)
	contracts := &fakeContracts{err: assertError("boom")}
	d := &ERC721TransferDecoder{Contracts: contracts, Transfers: &fakeERC721Writer{}}

	_, err := d.StoreIfApply(context.Background(), Request{
		Topic0: erc721TransferTopic0,
		Topic1: &from,
		Topic2: &to,
		Topic3: &tokenID,
	})

	require.Error(t, err)
	var perr *ProcessorError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, DatabaseError, perr.Kind)
}

type assertError string

func (e assertError) Error() string { return string(e) }
