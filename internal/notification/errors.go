package notification

import (
	"errors"
	"fmt"
)

// ErrNoMetadata is returned when a multipart body carries no JSON part.
var ErrNoMetadata = errors.New("no metadata part in request")

// DecodeError reports a request body that could not be decoded.
// Structural errors mean the body itself was malformed.
type DecodeError struct {
	Structural bool
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode webhook: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// DispatchError reports a metadata item that could not be turned into an announcement.
type DispatchError struct {
	Key  string
	Type string
	Err  error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch %s %q: %v", e.Type, e.Key, e.Err)
}

func (e *DispatchError) Unwrap() error { return e.Err }

// SendError reports a failed delivery to one destination.
type SendError struct {
	Destination string
	Err         error
}

func (e *SendError) Error() string {
	return fmt.Sprintf("send to %s: %v", e.Destination, e.Err)
}

func (e *SendError) Unwrap() error { return e.Err }
