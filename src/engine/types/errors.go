package types

import "fmt"

// Error is a discrete numbered failure kind. Each engine component keeps its
// own code table starting at u100, mirroring the on-chain error constants the
// engine surfaces to callers.
type Error struct {
	Code uint
	Kind string
}

func NewError(code uint, kind string) *Error {
	return &Error{Code: code, Kind: kind}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (u%d)", e.Kind, e.Code)
}
