package types

import "strings"

// ReturnType declares how a raw result is converted before it reaches the caller.
type ReturnType string

const (
	ReturnNull    ReturnType = "null"
	ReturnNumber  ReturnType = "number"
	ReturnInt     ReturnType = "int"
	ReturnInt256  ReturnType = "int256"
	ReturnBool    ReturnType = "bool"
	ReturnString  ReturnType = "string"
	ReturnAddress ReturnType = "address"
	ReturnHash    ReturnType = "hash"
	ReturnBytes32 ReturnType = "bytes32"
)

const arraySuffix = "[]"

func (rt ReturnType) IsArray() bool {
	return strings.HasSuffix(string(rt), arraySuffix)
}

// Elem is the element type of an array return type, or rt itself.
func (rt ReturnType) Elem() ReturnType {
	return ReturnType(strings.TrimSuffix(string(rt), arraySuffix))
}

// IsVoid reports whether no value is expected back.
func (rt ReturnType) IsVoid() bool {
	return rt == "" || rt == ReturnNull
}
