package weather

import (
	"errors"
	"fmt"
)

// ErrorKind categorises failures so callers can decide how to report them.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindNetwork covers transport errors, timeouts, non-2xx responses
	// and an open circuit breaker.
	KindNetwork
	// KindEmptyResult means the geocoder found no match.
	KindEmptyResult
	// KindMalformedResponse means the provider answered without the
	// fields we need.
	KindMalformedResponse
	// KindStorage covers schema, connection and query failures.
	KindStorage
	// KindNothingToExport means the store had no rows to export.
	KindNothingToExport
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "NETWORK_ERROR"
	case KindEmptyResult:
		return "EMPTY_RESULT_ERROR"
	case KindMalformedResponse:
		return "MALFORMED_RESPONSE_ERROR"
	case KindStorage:
		return "STORAGE_ERROR"
	case KindNothingToExport:
		return "NOTHING_TO_EXPORT"
	default:
		return "UNKNOWN_ERROR"
	}
}

// Error is the error type returned by providers, stores and the service.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Op)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindNetwork})
// works for any network failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Op == "" || t.Op == e.Op)
}

func NewError(kind ErrorKind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

func NetworkError(op string, err error) *Error {
	return NewError(KindNetwork, op, err)
}

func EmptyResultError(op string, err error) *Error {
	return NewError(KindEmptyResult, op, err)
}

func MalformedResponseError(op string, err error) *Error {
	return NewError(KindMalformedResponse, op, err)
}

func StorageError(op string, err error) *Error {
	return NewError(KindStorage, op, err)
}

// ErrNothingToExport is returned by export when the store is empty.
var ErrNothingToExport = NewError(KindNothingToExport, "export", nil)

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsNetwork(err error) bool {
	return KindOf(err) == KindNetwork
}

func IsEmptyResult(err error) bool {
	return KindOf(err) == KindEmptyResult
}

func IsMalformedResponse(err error) bool {
	return KindOf(err) == KindMalformedResponse
}

func IsStorage(err error) bool {
	return KindOf(err) == KindStorage
}

func IsNothingToExport(err error) bool {
	return KindOf(err) == KindNothingToExport
}
