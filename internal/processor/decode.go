package processor

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

var (
	uint256Type, _ = abi.NewType("uint256", "", nil)
	addressType, _ = abi.NewType("address", "", nil)

	uint256ArrType, _ = abi.NewType("uint256[]", "", nil)

	uint256Args    = abi.Arguments{{Type: uint256Type}}
	addressArgs    = abi.Arguments{{Type: addressType}}
	uint256x2Args  = abi.Arguments{{Type: uint256Type}, {Type: uint256Type}}
	uint256ArrArgs = abi.Arguments{{Type: uint256ArrType}, {Type: uint256ArrType}}
)

// decodeHexBytes parses a 0x-prefixed hex string into raw bytes.
func decodeHexBytes(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	return hex.DecodeString(s)
}

// decodeAddressTopic interprets a 32-byte left-padded topic as an
// ABI-encoded address: decode the 32 bytes as `address`, take the low 20
// bytes, re-encode as lowercase 0x-prefixed hex (spec.md §4.7).
func decodeAddressTopic(topic string) (string, error) {
	raw, err := decodeHexBytes(topic)
	if err != nil {
		return "", newParseError("failed to parse address topic", topic)
	}
	if len(raw) != 32 {
		return "", newValidationError(fmt.Sprintf("address topic must be 32 bytes, got %d", len(raw)))
	}

	values, err := addressArgs.UnpackValues(raw)
	if err != nil {
		return "", newDecodeError("failed to decode address", topic)
	}
	addr, ok := values[0].(interface{ Hex() string })
	if !ok {
		return "", newDecodeError("unexpected address decode result", topic)
	}
	return strings.ToLower(addr.Hex()), nil
}

// decodeUint256Topic decodes a 32-byte topic as an unsigned 256-bit
// integer and returns its decimal string.
func decodeUint256Topic(topic string) (string, error) {
	raw, err := decodeHexBytes(topic)
	if err != nil {
		return "", newParseError("failed to parse uint256 topic", topic)
	}

	values, err := uint256Args.UnpackValues(raw)
	if err != nil {
		return "", newDecodeError("failed to decode uint256", topic)
	}
	n, ok := values[0].(*big.Int)
	if !ok {
		return "", newDecodeError("unexpected uint256 decode result", topic)
	}
	return n.String(), nil
}

// decodeUint256Pair decodes the TransferSingle `data` payload: two
// uint256 values (id, value).
func decodeUint256Pair(data string) (id, value string, err error) {
	raw, derr := decodeHexBytes(data)
	if derr != nil {
		return "", "", newParseError("failed to parse data", data)
	}

	values, uerr := uint256x2Args.UnpackValues(raw)
	if uerr != nil {
		return "", "", newDecodeError(uerr.Error(), data)
	}
	idVal, ok := values[0].(*big.Int)
	if !ok {
		return "", "", newDecodeError("missing 'id' in decoded data", data)
	}
	valVal, ok := values[1].(*big.Int)
	if !ok {
		return "", "", newDecodeError("missing 'value' in decoded data", data)
	}
	return idVal.String(), valVal.String(), nil
}

// decodeUint256ArrayPair decodes the TransferBatch `data` payload: two
// dynamic arrays of uint256 (ids[], values[]).
func decodeUint256ArrayPair(data string) (ids, values []string, err error) {
	raw, derr := decodeHexBytes(data)
	if derr != nil {
		return nil, nil, newParseError("failed to parse data", data)
	}

	decoded, uerr := uint256ArrArgs.UnpackValues(raw)
	if uerr != nil {
		return nil, nil, newDecodeError(uerr.Error(), data)
	}

	idSlice, ok := decoded[0].([]*big.Int)
	if !ok {
		return nil, nil, newValidationError("failed to extract token IDs as array")
	}
	valSlice, ok := decoded[1].([]*big.Int)
	if !ok {
		return nil, nil, newValidationError("failed to extract amounts as array")
	}
	if len(idSlice) != len(valSlice) {
		return nil, nil, newValidationError("ids and amounts arrays have mismatched length")
	}

	ids = make([]string, len(idSlice))
	values = make([]string, len(valSlice))
	for i := range idSlice {
		ids[i] = idSlice[i].String()
		values[i] = valSlice[i].String()
	}
	return ids, values, nil
}
