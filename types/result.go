package types

type OutcomeKind int

const (
	OutcomeSuccess OutcomeKind = iota
	// OutcomeProtocolError: the node never answered.
	OutcomeProtocolError
	// OutcomeApplicationError: the node answered with an error or a revert.
	OutcomeApplicationError
	// OutcomeRejected: the request was refused before reaching a transport.
	OutcomeRejected
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeProtocolError:
		return "protocol_error"
	case OutcomeApplicationError:
		return "application_error"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Outcome is a classified result. Value is set only on success, Err otherwise.
type Outcome struct {
	Kind  OutcomeKind
	Value interface{}
	Err   error
}

func Success(v interface{}) Outcome {
	return Outcome{Kind: OutcomeSuccess, Value: v}
}

func ProtocolFailure(err error) Outcome {
	if err == nil {
		err = ErrNoResponse
	}
	return Outcome{Kind: OutcomeProtocolError, Err: err}
}

func ApplicationFailure(err error) Outcome {
	return Outcome{Kind: OutcomeApplicationError, Err: err}
}

func Rejection(err error) Outcome {
	return Outcome{Kind: OutcomeRejected, Err: err}
}

func (o Outcome) Failed() bool {
	return o.Kind != OutcomeSuccess
}
