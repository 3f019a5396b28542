package oratype

// Status is the tri-state of a decoded value.
type Status byte

const (
	Undefined Status = iota
	Null
	Present
)
