package transact

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/xerrors"
)

const (
	wordSize     = 32
	selectorSize = 4

	DefaultSelectorCacheSize = 1024
)

// Encoder builds the call data for a contract function.
type Encoder interface {
	Encode(signature string, params []interface{}) ([]byte, error)
}

// SelectorEncoder encodes the 4-byte function selector followed by one
// 32-byte word per static parameter.
type SelectorEncoder struct {
	selectors *lru.Cache
}

var _ Encoder = (*SelectorEncoder)(nil)

func NewSelectorEncoder(cacheSize int) (*SelectorEncoder, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultSelectorCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, xerrors.Errorf("creating selector cache: %w", err)
	}
	return &SelectorEncoder{selectors: cache}, nil
}

// Selector returns the first four bytes of keccak256(signature).
func (e *SelectorEncoder) Selector(signature string) []byte {
	signature = strings.ReplaceAll(signature, " ", "")
	if v, ok := e.selectors.Get(signature); ok {
		return v.([]byte)
	}
	sel := crypto.Keccak256([]byte(signature))[:selectorSize]
	e.selectors.Add(signature, sel)
	return sel
}

func (e *SelectorEncoder) Encode(signature string, params []interface{}) ([]byte, error) {
	if signature == "" {
		return nil, xerrors.New("function signature is empty")
	}
	sel := e.Selector(signature)
	out := make([]byte, 0, selectorSize+wordSize*len(params))
	out = append(out, sel...)
	for i, p := range params {
		w, err := encodeWord(p)
		if err != nil {
			return nil, xerrors.Errorf("encoding param %d of %s: %w", i, signature, err)
		}
		out = append(out, w...)
	}
	return out, nil
}

func encodeWord(p interface{}) ([]byte, error) {
	switch v := p.(type) {
	case nil:
		return make([]byte, wordSize), nil
	case bool:
		if v {
			return math.U256Bytes(big.NewInt(1)), nil
		}
		return make([]byte, wordSize), nil
	case int:
		return math.U256Bytes(big.NewInt(int64(v))), nil
	case int64:
		return math.U256Bytes(big.NewInt(v)), nil
	case uint64:
		return math.U256Bytes(new(big.Int).SetUint64(v)), nil
	case *big.Int:
		if v == nil {
			return make([]byte, wordSize), nil
		}
		if v.BitLen() > 256 {
			return nil, xerrors.Errorf("integer %s overflows 256 bits", v)
		}
		return math.U256Bytes(new(big.Int).Set(v)), nil
	case common.Address:
		return common.LeftPadBytes(v.Bytes(), wordSize), nil
	case common.Hash:
		return v.Bytes(), nil
	case []byte:
		if len(v) > wordSize {
			return nil, xerrors.Errorf("%d bytes do not fit a word", len(v))
		}
		return common.RightPadBytes(v, wordSize), nil
	case string:
		return encodeString(v)
	default:
		return nil, xerrors.Errorf("unsupported param type %T", p)
	}
}

// encodeString accepts 0x hex, left-padded like addresses and numbers, or a
// decimal integer.
func encodeString(s string) ([]byte, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if len(s)%2 == 1 {
			s = "0x0" + s[2:]
		}
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, xerrors.Errorf("decoding %q: %w", s, err)
		}
		if len(b) > wordSize {
			return nil, xerrors.Errorf("%q does not fit a word", s)
		}
		return common.LeftPadBytes(b, wordSize), nil
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, xerrors.Errorf("param %q is neither hex nor decimal", s)
	}
	return encodeWord(n)
}
