package decode

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strings"
	"unicode/utf8"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

const wordSize = 32

var two256 = new(big.Int).Lsh(big.NewInt(1), 256)

// ConvertResponseToReturnsType converts a raw result into the Go value for
// returns. Empty results ("0x" or "") convert to nil, as does everything for
// a "null" return type. An undeclared return type yields the generic JSON value.
func ConvertResponseToReturnsType(returns types.ReturnType, raw json.RawMessage) (interface{}, error) {
	raw = bytes.TrimSpace(raw)
	if isAbsent(raw) || returns == types.ReturnNull {
		return nil, nil
	}
	if s, ok := asString(raw); ok && (s == "" || s == "0x") {
		return nil, nil
	}
	if returns == "" {
		return generic(raw)
	}
	if returns.IsArray() {
		return convertArray(returns.Elem(), raw)
	}
	return convertScalar(returns, raw)
}

func convertScalar(rt types.ReturnType, raw json.RawMessage) (interface{}, error) {
	switch rt {
	case types.ReturnNumber:
		return parseBig(raw, false)
	case types.ReturnInt, types.ReturnInt256:
		return parseBig(raw, true)
	case types.ReturnBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return b, nil
		}
		n, err := parseBig(raw, false)
		if err != nil {
			return nil, xerrors.Errorf("converting %s to bool: %w", string(raw), err)
		}
		return n.Sign() != 0, nil
	case types.ReturnString:
		s, ok := asString(raw)
		if !ok {
			return string(raw), nil
		}
		if decoded, ok := decodeABIString(s); ok {
			return decoded, nil
		}
		return s, nil
	case types.ReturnAddress:
		b, err := hexBytes(raw)
		if err != nil {
			return nil, xerrors.Errorf("converting to address: %w", err)
		}
		return common.BytesToAddress(b), nil
	case types.ReturnHash, types.ReturnBytes32:
		b, err := hexBytes(raw)
		if err != nil {
			return nil, xerrors.Errorf("converting to hash: %w", err)
		}
		return common.BytesToHash(b), nil
	default:
		return generic(raw)
	}
}

func convertArray(elem types.ReturnType, raw json.RawMessage) (interface{}, error) {
	var items []json.RawMessage
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, xerrors.Errorf("decoding %s[] result: %w", elem, err)
		}
	} else {
		words, err := unrollArray(raw)
		if err != nil {
			return nil, xerrors.Errorf("decoding %s[] result: %w", elem, err)
		}
		items = words
	}

	out := make([]interface{}, len(items))
	for i, item := range items {
		v, err := convertScalar(elem, item)
		if err != nil {
			return nil, xerrors.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return out, nil
}

// unrollArray splits an ABI encoded dynamic array into its 32-byte words,
// each returned as a JSON hex string.
func unrollArray(raw json.RawMessage) ([]json.RawMessage, error) {
	s, ok := asString(raw)
	if !ok {
		return nil, xerrors.Errorf("expected hex string or array, got %s", string(raw))
	}
	data, err := hexutil.Decode(s)
	if err != nil {
		return nil, err
	}
	if len(data)%wordSize != 0 || len(data) < 2*wordSize {
		return nil, xerrors.Errorf("malformed abi array of %d bytes", len(data))
	}

	start, n, err := abiDynamic(data, wordSize)
	if err != nil {
		return nil, xerrors.Errorf("abi array: %w", err)
	}

	out := make([]json.RawMessage, n)
	for i := range out {
		word := data[start+uint64(i)*wordSize : start+uint64(i+1)*wordSize]
		b, _ := json.Marshal(hexutil.Encode(word))
		out[i] = b
	}
	return out, nil
}

// abiDynamic reads the head of an ABI encoded dynamic value: an offset word
// pointing at a length word followed by length elements of elemSize bytes.
// It returns where the elements start and how many there are, checked
// against len(data) without overflowing. data holds at least two words.
func abiDynamic(data []byte, elemSize uint64) (start, n uint64, err error) {
	size := uint64(len(data))

	offset := new(big.Int).SetBytes(data[:wordSize])
	if !offset.IsUint64() || offset.Uint64() > size-wordSize {
		return 0, 0, xerrors.Errorf("offset %s out of range", offset)
	}
	start = offset.Uint64()
	length := new(big.Int).SetBytes(data[start : start+wordSize])
	start += wordSize
	if !length.IsUint64() || length.Uint64() > (size-start)/elemSize {
		return 0, 0, xerrors.Errorf("length %s out of range", length)
	}
	return start, length.Uint64(), nil
}

// decodeABIString decodes an ABI encoded dynamic string. ok is false when s is
// not one, in which case the caller keeps s as is.
func decodeABIString(s string) (string, bool) {
	if !strings.HasPrefix(s, "0x") {
		return "", false
	}
	data, err := hexutil.Decode(s)
	if err != nil || len(data) < 2*wordSize || len(data)%wordSize != 0 {
		return "", false
	}
	start, n, err := abiDynamic(data, 1)
	if err != nil {
		return "", false
	}
	str := data[start : start+n]
	if !utf8.Valid(str) {
		return "", false
	}
	return string(str), true
}

// parseBig reads a JSON number, a decimal string or a 0x hex string. With
// signed, a full 32-byte hex word is read as two's complement.
func parseBig(raw json.RawMessage, signed bool) (*big.Int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, xerrors.New("empty value")
	}

	if raw[0] != '"' {
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return nil, xerrors.Errorf("not a number: %s", string(raw))
		}
		n, ok := new(big.Int).SetString(num.String(), 10)
		if !ok {
			return nil, xerrors.Errorf("not an integer: %s", num)
		}
		return n, nil
	}

	s, _ := asString(raw)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		digits := strings.TrimLeft(s[2:], "0")
		if digits == "" {
			return new(big.Int), nil
		}
		n, ok := new(big.Int).SetString(digits, 16)
		if !ok {
			return nil, xerrors.Errorf("not a hex number: %s", s)
		}
		if signed && len(s)-2 == 2*wordSize && n.Bit(255) == 1 {
			n.Sub(n, two256)
		}
		return n, nil
	}

	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, xerrors.Errorf("not a number: %q", s)
	}
	return n, nil
}

func hexBytes(raw json.RawMessage) ([]byte, error) {
	s, ok := asString(raw)
	if !ok || !strings.HasPrefix(s, "0x") {
		return nil, xerrors.Errorf("expected hex string, got %s", string(raw))
	}
	if !isHex(s[2:]) {
		return nil, xerrors.Errorf("invalid hex string %q", s)
	}
	return common.FromHex(s), nil
}

func isHex(s string) bool {
	for _, c := range s {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f' || c >= 'A' && c <= 'F') {
			return false
		}
	}
	return true
}

func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func generic(raw json.RawMessage) (interface{}, error) {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, xerrors.Errorf("decoding result: %w", err)
	}
	return v, nil
}
