package transact

import (
	"context"
	"encoding/json"

	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/decode"
	"github.com/ipfs-force-community/venus-ethrpc/types"
)

// Callback receives the outcome of an asynchronous contract call.
type Callback func(value interface{}, err error)

// Wrapper post-processes a converted result together with the caller's extra
// argument.
type Wrapper func(value interface{}, extra interface{}) interface{}

// ContractCaller runs contract calls end to end: submit, classify, convert and
// deliver.
type ContractCaller struct {
	transactor *Transactor
	pipeline   *decode.Pipeline
}

func NewContractCaller(transactor *Transactor, pipeline *decode.Pipeline) *ContractCaller {
	return &ContractCaller{transactor: transactor, pipeline: pipeline}
}

// CallContractFunction calls the function described by payload, which is
// copied and never modified.
//
// With a callback the call returns (nil, nil) at once and callback is invoked
// exactly once with the result or the failure. Without one the call blocks and
// returns the result, or the no-response error or the node's error.
func (c *ContractCaller) CallContractFunction(ctx context.Context, payload *types.Transaction, callback Callback, wrapper Wrapper, extra interface{}) (interface{}, error) {
	tx := payload.Clone()

	if callback == nil {
		out, err := c.invoke(ctx, tx, nil)
		if err != nil {
			return nil, err
		}
		return deliver(out, wrapper, extra)
	}

	_, err := c.invoke(ctx, tx, func(out types.Outcome) {
		callback(deliver(out, wrapper, extra))
	})
	return nil, err
}

// invoke submits tx and classifies its resolution. With done set the outcome
// goes to done and the returned outcome is empty; only fatal errors are
// returned.
func (c *ContractCaller) invoke(ctx context.Context, tx *types.Transaction, done func(types.Outcome)) (types.Outcome, error) {
	if tx == nil {
		out := types.Rejection(types.ErrNilCall)
		if done != nil {
			done(out)
			return types.Outcome{}, nil
		}
		return out, nil
	}

	if done == nil {
		raw, err := c.transactor.CallOrSendTransaction(ctx, tx, nil)
		return c.pipeline.ClassifyResolution(tx.Name, tx.Returns, err, raw), nil
	}

	_, err := c.transactor.CallOrSendTransaction(ctx, tx, func(err error, raw json.RawMessage) {
		done(c.pipeline.ClassifyResolution(tx.Name, tx.Returns, err, raw))
	})
	if err != nil {
		return types.Outcome{}, xerrors.Errorf("submitting %s: %w", tx.Name, err)
	}
	return types.Outcome{}, nil
}

func deliver(out types.Outcome, wrapper Wrapper, extra interface{}) (interface{}, error) {
	switch out.Kind {
	case types.OutcomeSuccess:
		if wrapper != nil {
			return wrapper(out.Value, extra), nil
		}
		return out.Value, nil
	case types.OutcomeProtocolError:
		if out.Err == nil || !xerrors.Is(out.Err, types.ErrNoResponse) {
			return nil, types.ErrNoResponse.WithCause(out.Err)
		}
		return nil, out.Err
	default:
		return nil, out.Err
	}
}
