package chain

import (
	"context"
	"errors"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"
)

// Kind is the closed set of failure categories a wallet interaction can produce.
type Kind int

const (
	KindUnknown Kind = iota
	KindNoProvider
	KindUnauthorized
	KindRejected
	KindChain
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindNoProvider:
		return "no wallet provider detected"
	case KindUnauthorized:
		return "account not authorized"
	case KindRejected:
		return "request rejected by wallet"
	case KindChain:
		return "chain error"
	case KindNetwork:
		return "network error"
	default:
		return "unknown error"
	}
}

// EIP-1193 provider error codes.
const (
	codeUserRejected   = 4001
	codeUnauthorized   = 4100
	codeUnsupported    = 4200
	codeDisconnected   = 4900
	codeChainNotLinked = 4901
)

// Sentinel errors, one per Kind. Match with errors.Is.
var (
	ErrNoProvider   = &Error{Kind: KindNoProvider}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrRejected     = &Error{Kind: KindRejected}
	ErrChain        = &Error{Kind: KindChain}
	ErrNetwork      = &Error{Kind: KindNetwork}
)

// Error is a classified provider or contract failure.
type Error struct {
	Kind Kind
	Op   string // provider method or client operation that failed
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Op != "" {
		return e.Op + ": " + e.Kind.String()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is the bare sentinel for e's Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// NewError builds a classified error of an explicit kind.
func NewError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the Kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Classify converts a raw provider failure into an *Error. Errors that are
// already classified are returned unchanged.
func Classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	return &Error{Kind: kindFor(err), Op: op, Err: err}
}

func kindFor(err error) Kind {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) {
		switch rpcErr.ErrorCode() {
		case codeUserRejected:
			return KindRejected
		case codeUnauthorized, codeUnsupported:
			return KindUnauthorized
		case codeDisconnected, codeChainNotLinked:
			return KindNetwork
		}
		return KindChain
	}

	var httpErr rpc.HTTPError
	if errors.As(err, &httpErr) {
		return KindNetwork
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindNetwork
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "user rejected"), strings.Contains(msg, "user denied"):
		return KindRejected
	case strings.Contains(msg, "revert"):
		return KindChain
	}
	return KindNetwork
}
