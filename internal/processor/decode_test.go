package processor

import (
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func topicFromAddress(t *testing.T, addr string) string {
	t.Helper()
	addr = strings.TrimPrefix(strings.ToLower(addr), "0x")
	require.Len(t, addr, 40)
	return "0x" + strings.Repeat("0", 24) + addr
}

func topicFromUint(n int64) string {
	b := make([]byte, 32)
	big.NewInt(n).FillBytes(b)
	return "0x" + hex.EncodeToString(b)
}

func TestDecodeAddressTopic_RoundTrip(t *testing.T) {
	addr := "0x0000000000000000000000000000000000000abc"
	topic := topicFromAddress(t, addr)

	got, err := decodeAddressTopic(topic)

	require.NoError(t, err)
	assert.Equal(t, addr, got)
}

func TestDecodeAddressTopic_WrongLength(t *testing.T) {
	_, err := decodeAddressTopic("0xabcd")
	require.Error(t, err)

	var perr *ProcessorError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ValidationError, perr.Kind)
}

func TestDecodeUint256Topic_RoundTrip(t *testing.T) {
	got, err := decodeUint256Topic(topicFromUint(123))

	require.NoError(t, err)
	assert.Equal(t, "123", got)
}

func TestDecodeUint256Pair(t *testing.T) {
	data, err := uint256x2Args.Pack(big.NewInt(7), big.NewInt(42))
	require.NoError(t, err)

	id, amount, err := decodeUint256Pair("0x" + hex.EncodeToString(data))

	require.NoError(t, err)
	assert.Equal(t, "7", id)
	assert.Equal(t, "42", amount)
}

func TestDecodeUint256ArrayPair(t *testing.T) {
	ids := []*big.Int{big.NewInt(1), big.NewInt(2), big.NewInt(3)}
	amounts := []*big.Int{big.NewInt(10), big.NewInt(20), big.NewInt(30)}
	data, err := uint256ArrArgs.Pack(ids, amounts)
	require.NoError(t, err)

	gotIDs, gotAmounts, err := decodeUint256ArrayPair("0x" + hex.EncodeToString(data))

	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, gotIDs)
	assert.Equal(t, []string{"10", "20", "30"}, gotAmounts)
}

func TestDecodeUint256ArrayPair_MismatchedLength(t *testing.T) {
	// Two independently-encoded dynamic arrays of different lengths are
	// still valid ABI; the length mismatch is a domain invariant, not an
	// encoding error.
	data, err := uint256ArrArgs.Pack(
		[]*big.Int{big.NewInt(1), big.NewInt(2)},
		[]*big.Int{big.NewInt(10)},
	)
	require.NoError(t, err)

	_, _, err = decodeUint256ArrayPair("0x" + hex.EncodeToString(data))

	require.Error(t, err)
	var perr *ProcessorError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, ValidationError, perr.Kind)
}
