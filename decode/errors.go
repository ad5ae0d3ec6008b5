package decode

import (
	"bytes"
	"encoding/json"
	"math/big"
	"strconv"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

// ErrorTable maps well-known raw results to application errors.
type ErrorTable struct {
	// Generic maps a raw string result to a message, for every function that
	// is declared to return something.
	Generic map[string]string
	// Methods maps a function name to its numeric error results, keyed by the
	// decimal form of the result.
	Methods map[string]map[string]string
}

func DefaultErrorTable() ErrorTable {
	return ErrorTable{
		Generic: map[string]string{
			"0x": "no response or bad input",
		},
		Methods: map[string]map[string]string{},
	}
}

// Merge returns t overlaid with o.
func (t ErrorTable) Merge(o ErrorTable) ErrorTable {
	out := ErrorTable{
		Generic: map[string]string{},
		Methods: map[string]map[string]string{},
	}
	for _, src := range []ErrorTable{t, o} {
		for k, v := range src.Generic {
			out.Generic[k] = v
		}
		for name, codes := range src.Methods {
			if out.Methods[name] == nil {
				out.Methods[name] = map[string]string{}
			}
			for k, v := range codes {
				out.Methods[name][k] = v
			}
		}
	}
	return out
}

// HandleRPCError inspects a result that arrived as a success and reports
// whether it is really an error: an object with an "error" field, a generic
// error value, or a numeric error code listed for the function. The returned
// error keeps raw in Result.
func (p *Pipeline) HandleRPCError(name string, returns types.ReturnType, raw json.RawMessage) *types.RPCError {
	raw = bytes.TrimSpace(raw)
	if isAbsent(raw) {
		return nil
	}

	switch raw[0] {
	case '{':
		return errorObject(raw)
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		if msg, ok := p.errors.Generic[s]; ok && !returns.IsVoid() {
			return &types.RPCError{Code: types.CodeContractError, Message: msg, Result: copyRaw(raw)}
		}
		if returns.IsVoid() || returns == types.ReturnString || returns.IsArray() {
			return nil
		}
		n, err := parseBig(raw, true)
		if err != nil {
			return nil
		}
		return p.methodError(name, n, raw)
	default:
		if returns.IsVoid() {
			return nil
		}
		n, err := parseBig(raw, true)
		if err != nil {
			return nil
		}
		return p.methodError(name, n, raw)
	}
}

func (p *Pipeline) methodError(name string, n *big.Int, raw json.RawMessage) *types.RPCError {
	codes, ok := p.errors.Methods[name]
	if !ok {
		return nil
	}
	msg, ok := codes[n.String()]
	if !ok {
		return nil
	}
	code := types.CodeContractError
	if n.IsInt64() {
		code = n.Int64()
	}
	return &types.RPCError{Code: code, Message: msg, Result: copyRaw(raw)}
}

func errorObject(raw json.RawMessage) *types.RPCError {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	field, ok := obj["error"]
	if !ok || isAbsent(field) {
		return nil
	}

	rerr := &types.RPCError{Result: copyRaw(raw)}
	if msg, ok := obj["message"]; ok {
		_ = json.Unmarshal(msg, &rerr.Message)
	}

	var code json.Number
	var text string
	switch {
	case json.Unmarshal(field, &code) == nil:
		if c, err := strconv.ParseInt(code.String(), 10, 64); err == nil {
			rerr.Code = c
		} else {
			rerr.Code = types.CodeContractError
			rerr.Data = copyRaw(field)
		}
	case json.Unmarshal(field, &text) == nil:
		rerr.Code = types.CodeContractError
		if rerr.Message == "" {
			rerr.Message = text
		}
		rerr.Data = copyRaw(field)
	default:
		var inner types.RPCError
		if err := json.Unmarshal(field, &inner); err != nil {
			rerr.Code = types.CodeContractError
			rerr.Data = copyRaw(field)
			break
		}
		rerr.Code = inner.Code
		rerr.Data = inner.Data
		if inner.Message != "" {
			rerr.Message = inner.Message
		}
	}
	return rerr
}

func isAbsent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func copyRaw(raw json.RawMessage) json.RawMessage {
	return append(json.RawMessage(nil), raw...)
}
