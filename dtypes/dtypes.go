package dtypes

import (
	"github.com/google/uuid"
	"github.com/multiformats/go-multiaddr"
)

// ShutdownChan is a channel to which you send a value if you intend to shut
// down the daemon, including the RPC server.
type ShutdownChan chan struct{}

type APIEndpoint multiaddr.Multiaddr

// SessionID identifies this daemon process. It keys the request journal and
// is reported by the Session API.
type SessionID uuid.UUID

func (s SessionID) String() string {
	return uuid.UUID(s).String()
}
