package decode

import (
	"encoding/json"

	logging "github.com/ipfs/go-log/v2"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

var log = logging.Logger("decode")

// Pipeline turns raw node results into classified outcomes.
type Pipeline struct {
	errors ErrorTable
}

// NewPipeline returns a pipeline using errors merged over the default table.
func NewPipeline(errors ErrorTable) *Pipeline {
	return &Pipeline{errors: DefaultErrorTable().Merge(errors)}
}

// Classify decides the outcome of a raw result for the named function.
func (p *Pipeline) Classify(name string, returns types.ReturnType, raw json.RawMessage) types.Outcome {
	if isAbsent(raw) {
		return types.ProtocolFailure(types.ErrNoResponse)
	}
	if rerr := p.HandleRPCError(name, returns, raw); rerr != nil {
		return types.ApplicationFailure(rerr)
	}

	v, err := ConvertResponseToReturnsType(returns, raw)
	if err != nil {
		log.Debugw("result conversion failed", "function", name, "returns", returns, "error", err)
		return types.ApplicationFailure((&types.RPCError{
			Code:    types.CodeBadResult,
			Message: "result does not match return type " + string(returns),
			Result:  copyRaw(raw),
		}).WithCause(err))
	}
	return types.Success(v)
}

// ClassifyResolution is Classify for a resolution that may carry an error.
func (p *Pipeline) ClassifyResolution(name string, returns types.ReturnType, err error, raw json.RawMessage) types.Outcome {
	if err == nil {
		return p.Classify(name, returns, raw)
	}
	if types.IsProtocolError(err) {
		return types.ProtocolFailure(err)
	}
	var rerr *types.RPCError
	if xerrors.As(err, &rerr) {
		return types.ApplicationFailure(err)
	}
	return types.Rejection(err)
}
