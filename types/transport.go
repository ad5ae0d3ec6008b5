package types

// TransportRequirement constrains which transport serves a call. Anything other
// than the constants below names a transport kind.
type TransportRequirement string

const (
	TransportAny    TransportRequirement = ""
	TransportSync   TransportRequirement = "SYNC"
	TransportDuplex TransportRequirement = "DUPLEX"
)

func (r TransportRequirement) String() string {
	if r == TransportAny {
		return "ANY"
	}
	return string(r)
}

type TransportKind string

const (
	TransportHTTP      TransportKind = "http"
	TransportWebSocket TransportKind = "ws"
)
