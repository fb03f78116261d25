package processor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "ParseError", ParseError.String())
	assert.Equal(t, "DecodeError", DecodeError.String())
	assert.Equal(t, "ValidationError", ValidationError.String())
	assert.Equal(t, "DatabaseError", DatabaseError.String())
}

func TestProcessorError_Error(t *testing.T) {
	err := newParseError("bad hex", "0xzz")
	assert.Equal(t, "ParseError: bad hex. Data: 0xzz", err.Error())

	noData := newValidationError("missing field")
	assert.Equal(t, "ValidationError: missing field", noData.Error())
}

// TestRegistry_NonMatchingEvent covers scenario 4: no decoder recognizes
// topic0, so dispatch writes nothing anywhere.
func TestRegistry_NonMatchingEvent(t *testing.T) {
	contracts := &fakeContracts{id: 1}
	erc721 := &fakeERC721Writer{}
	erc1155 := &fakeERC1155Writer{}
	registry := NewDefaultRegistry(contracts, erc721, erc1155)

	registry.Dispatch(context.Background(), Request{
		Topic0: "0xdeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeaddeadbeef",
	})

	assert.Empty(t, contracts.calls)
	assert.Empty(t, erc721.inserted)
	assert.Empty(t, erc1155.inserted)
}

// TestRegistry_MatchingDeterminism: calling a decoder's StoreIfApply with
// the same request twice against equal repository state produces the same
// verdict each time.
func TestRegistry_MatchingDeterminism(t *testing.T) {
	from := topicFromAddress(t, "0x0000000000000000000000000000000000000abc")
	to := topicFromAddress(t, "0x0000000000000000000000000000000000000def")
	tokenID := topicFromUint(5)
	req := Request{
		Address: "0x4444444444444444444444444444444444444444",
		Topic0:  erc721TransferTopic0,
		Topic1:  &from,
		Topic2:  &to,
		Topic3:  &tokenID,
	}

	d := &ERC721TransferDecoder{Contracts: &fakeContracts{id: 2}, Transfers: &fakeERC721Writer{}}

	r1, err1 := d.StoreIfApply(context.Background(), req)
	r2, err2 := d.StoreIfApply(context.Background(), req)

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, r1, r2)
}

func TestRegistry_DispatchContinuesAfterDecoderError(t *testing.T) {
	failing := &fakeContracts{err: assertError("db down")}
	working := &fakeContracts{id: 1}
	erc721 := &fakeERC721Writer{}
	later := &fakeERC721Writer{}
	registry := NewRegistry(
		&ERC721TransferDecoder{Contracts: failing, Transfers: erc721},
		&ERC721TransferDecoder{Contracts: working, Transfers: later},
	)

	from := topicFromAddress(t, "0x0000000000000000000000000000000000000abc")
	to := topicFromAddress(t, "0x0000000000000000000000000000000000000def")
	tokenID := topicFromUint(1)

	// The first decoder's contract lookup errors; the second decoder still
	// runs and stores the transfer.
	registry.Dispatch(context.Background(), Request{
		Topic0: erc721TransferTopic0,
		Topic1: &from,
		Topic2: &to,
		Topic3: &tokenID,
	})

	assert.Empty(t, erc721.inserted)
	assert.Len(t, later.inserted, 1)
}
