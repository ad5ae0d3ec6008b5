package types

import (
	"fmt"
	"strconv"
	"sync/atomic"
)

// RequestID identifies an outstanding JSON-RPC request. Zero is never allocated
// and means the id was not set.
type RequestID uint64

func (id RequestID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

var _ fmt.Stringer = RequestID(0)

var UndefRequest RequestID

// IDAllocator hands out request ids unique for the life of the process.
type IDAllocator struct {
	last uint64
}

func NewIDAllocator(start uint64) *IDAllocator {
	return &IDAllocator{last: start}
}

func (a *IDAllocator) Next() RequestID {
	return RequestID(atomic.AddUint64(&a.last, 1))
}
