// Package vnerr implements the networking plugin's error taxonomy: a small
// closed set of kinds that every component returns instead of ad hoc
// errors, so the RPC layer can map failures to HTTP status codes without
// inspecting error strings.
package vnerr

import (
	"errors"
	"fmt"
)

// Kind identifies which taxonomy bucket an Error belongs to.
type Kind int

const (
	// NotFound means the referenced entity does not exist in the catalog.
	NotFound Kind = iota
	// WrongKind means an entity exists but is not the kind the caller expected.
	WrongKind
	// NotConnected means an operation requires a link/namespace that isn't attached yet.
	NotConnected
	// AlreadyPresent means the entity the caller wants to create already exists.
	AlreadyPresent
	// Unimplemented means the requested interface/link kind has no driver support.
	Unimplemented
	// NetworkingError wraps a kernel/netlink/nftables-level failure, including retry timeouts.
	NetworkingError
	// EncodingError means a catalog blob or wire payload failed to (de)serialize.
	EncodingError
	// HardFailure is an unexpected, non-recoverable internal failure.
	HardFailure
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "NotFound"
	case WrongKind:
		return "WrongKind"
	case NotConnected:
		return "NotConnected"
	case AlreadyPresent:
		return "AlreadyPresent"
	case Unimplemented:
		return "Unimplemented"
	case NetworkingError:
		return "NetworkingError"
	case EncodingError:
		return "EncodingError"
	case HardFailure:
		return "HardFailure"
	default:
		return "Unknown"
	}
}

// Error is the concrete error type every component returns. It wraps an
// optional cause and carries a Kind for taxonomy dispatch at the RPC layer.
type Error struct {
	Kind   Kind
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	if e.Detail == "" && e.Cause == nil {
		return e.Kind.String()
	}
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Detail, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets errors.Is(err, ErrNotFound) style sentinel comparisons work
// across Kind alone, ignoring Detail/Cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func Wrap(kind Kind, detail string, cause error) *Error {
	return &Error{Kind: kind, Detail: detail, Cause: cause}
}

// Sentinel values for use with errors.Is when only the Kind matters.
var (
	ErrNotFound        = &Error{Kind: NotFound}
	ErrWrongKind       = &Error{Kind: WrongKind}
	ErrNotConnected    = &Error{Kind: NotConnected}
	ErrAlreadyPresent  = &Error{Kind: AlreadyPresent}
	ErrUnimplemented   = &Error{Kind: Unimplemented}
	ErrNetworkingError = &Error{Kind: NetworkingError}
	ErrEncodingError   = &Error{Kind: EncodingError}
	ErrHardFailure     = &Error{Kind: HardFailure}
)

// KindOf extracts the Kind from err if it is (or wraps) a *Error, with ok
// reporting whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
