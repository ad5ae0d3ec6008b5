package types

import "math/big"

// Transaction is a contract function invocation.
type Transaction struct {
	Name      string
	Signature string
	Returns   ReturnType
	From      string
	To        string
	Params    []interface{}

	Send  bool
	Gas   string
	Value string
}

// Clone returns a deep copy; params are copied through nested slices and maps.
func (tx *Transaction) Clone() *Transaction {
	if tx == nil {
		return nil
	}
	cp := *tx
	if tx.Params != nil {
		cp.Params = make([]interface{}, len(tx.Params))
		for i, p := range tx.Params {
			cp.Params[i] = cloneParam(p)
		}
	}
	return &cp
}

func cloneParam(p interface{}) interface{} {
	switch v := p.(type) {
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, e := range v {
			out[i] = cloneParam(e)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for k, e := range v {
			out[k] = cloneParam(e)
		}
		return out
	case []string:
		return append([]string(nil), v...)
	case []byte:
		return append([]byte(nil), v...)
	case []int64:
		return append([]int64(nil), v...)
	case []uint64:
		return append([]uint64(nil), v...)
	case *big.Int:
		if v == nil {
			return v
		}
		return new(big.Int).Set(v)
	case interface{ Clone() interface{} }:
		return v.Clone()
	default:
		return p
	}
}
