package rpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ipfs-force-community/venus-ethrpc/types"
)

func TestNormalizeArgs(t *testing.T) {
	var called string
	cb := types.ResultCallback(func(error, json.RawMessage) { called = "cb" })
	other := func(error, json.RawMessage) { called = "other" }

	req, got, err := NormalizeArgs(nil, cb)
	require.NoError(t, err)
	require.Equal(t, types.TransportAny, req)
	got(nil, nil)
	require.Equal(t, "cb", called)

	req, _, err = NormalizeArgs("SYNC", nil)
	require.NoError(t, err)
	require.Equal(t, types.TransportSync, req)

	req, _, err = NormalizeArgs(types.TransportDuplex, cb)
	require.NoError(t, err)
	require.Equal(t, types.TransportDuplex, req)

	// callback in the requirement slot is shifted
	req, got, err = NormalizeArgs(other, nil)
	require.NoError(t, err)
	require.Equal(t, types.TransportAny, req)
	got(nil, nil)
	require.Equal(t, "other", called)

	req, got, err = NormalizeArgs(cb, nil)
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, types.TransportAny, req)

	// but not when a callback was supplied as well
	_, got, err = NormalizeArgs(other, cb)
	require.ErrorIs(t, err, types.ErrBadRequirement)
	got(nil, nil)
	require.Equal(t, "cb", called)

	_, _, err = NormalizeArgs(42, cb)
	require.ErrorIs(t, err, types.ErrBadRequirement)
}
