package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseParam(t *testing.T) {
	require.Equal(t, true, parseParam("true"))
	require.Equal(t, false, parseParam("FALSE"))
	require.Equal(t, "0x2a", parseParam("0x2a"))
	require.Equal(t, "42", parseParam("42"))
}
