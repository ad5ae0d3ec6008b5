package rpc

import (
	"encoding/json"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

// NormalizeArgs turns the loosely typed requirement argument into a
// (requirement, callback) pair. A callback passed in the requirement position
// is shifted into the callback slot, but only when no callback was supplied.
// A requirement that is neither nil nor a string yields types.ErrBadRequirement
// alongside whatever callback could be determined.
func NormalizeArgs(requirement interface{}, callback types.ResultCallback) (types.TransportRequirement, types.ResultCallback, error) {
	switch r := requirement.(type) {
	case nil:
		return types.TransportAny, callback, nil
	case types.TransportRequirement:
		return r, callback, nil
	case string:
		return types.TransportRequirement(r), callback, nil
	case types.ResultCallback:
		if callback == nil {
			return types.TransportAny, r, nil
		}
	case func(error, json.RawMessage):
		if callback == nil {
			return types.TransportAny, r, nil
		}
	}
	return types.TransportAny, callback, types.ErrBadRequirement
}
