package api

import (
	"testing"

	"github.com/multiformats/go-multiaddr"
	"github.com/stretchr/testify/require"
)

func TestDialArgs(t *testing.T) {
	ma, err := multiaddr.NewMultiaddr("/ip4/127.0.0.1/tcp/5679/http")
	require.NoError(t, err)

	addr, err := DialArgs(ma, "v0")
	require.NoError(t, err)
	require.Equal(t, "ws://127.0.0.1:5679/rpc/v0", addr)
}
