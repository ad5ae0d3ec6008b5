package transport

import (
	"bytes"
	"encoding/json"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/xerrors"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

// Resolver is the registry side of the message handler.
type Resolver interface {
	Resolve(id types.RequestID, err error, result json.RawMessage) error
}

var ErrMissingResponseID = xerrors.New("response carries no id")

// MessageHandler turns inbound JSON-RPC responses into registry resolutions.
type MessageHandler struct {
	resolver Resolver
}

func NewMessageHandler(r Resolver) *MessageHandler {
	return &MessageHandler{resolver: r}
}

// HandleMessage resolves every response in msg, which may be a batch. Errors
// from individual responses are collected, the rest are still resolved.
func (h *MessageHandler) HandleMessage(msg []byte) error {
	msg = bytes.TrimSpace(msg)
	if len(msg) > 0 && msg[0] == '[' {
		var batch []json.RawMessage
		if err := json.Unmarshal(msg, &batch); err != nil {
			return xerrors.Errorf("decoding batch response: %w", err)
		}
		var merr *multierror.Error
		for _, m := range batch {
			if err := h.handleOne(m); err != nil {
				merr = multierror.Append(merr, err)
			}
		}
		return merr.ErrorOrNil()
	}
	return h.handleOne(msg)
}

type notification struct {
	Method string `json:"method"`
}

func (h *MessageHandler) handleOne(msg json.RawMessage) error {
	var resp types.RPCResponse
	if err := json.Unmarshal(msg, &resp); err != nil {
		return xerrors.Errorf("decoding response: %w", err)
	}

	if resp.ID == nil {
		var n notification
		if err := json.Unmarshal(msg, &n); err == nil && n.Method != "" {
			log.Debugw("ignoring notification", "method", n.Method)
			return nil
		}
		log.Warnf("dropping response without id: %s", string(msg))
		return ErrMissingResponseID
	}

	if len(resp.Error) > 0 && string(resp.Error) != "null" {
		rerr := &types.RPCError{}
		if err := json.Unmarshal(resp.Error, rerr); err != nil {
			// some nodes answer with a bare message
			rerr = &types.RPCError{Message: string(resp.Error)}
		}
		rerr.Result = append(json.RawMessage(nil), resp.Error...)
		return h.resolver.Resolve(*resp.ID, rerr, nil)
	}

	return h.resolver.Resolve(*resp.ID, nil, resp.Result)
}
