package source

import "fmt"

// TransportError is returned when a request failed, timed out or got a non-2xx response
type TransportError struct {
	Service string
	Target  string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: request failed: %v", e.Service, e.Target, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// UpstreamDataError is returned when a response came back but doesn't carry
// what we expected, e.g. repository not found or no items array
type UpstreamDataError struct {
	Service string
	Target  string
	Reason  string
	Err     error
}

func (e *UpstreamDataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s: %s: %v", e.Service, e.Target, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Service, e.Target, e.Reason)
}

func (e *UpstreamDataError) Unwrap() error { return e.Err }
