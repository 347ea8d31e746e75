// Package chaintest provides an in-memory wallet provider and a scriptable
// contract for exercising wallet-bound clients without a node.
package chaintest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// HandlerFunc answers one provider method. The returned value is JSON-encoded
// as the result; a nil value encodes as null.
type HandlerFunc func(params []json.RawMessage) (any, error)

// Call records one request made to the Provider.
type Call struct {
	Method string
	Params []json.RawMessage
}

// RPCError is a JSON-RPC error with a code, as a wallet would return it.
type RPCError struct {
	Code    int
	Message string
}

func (e *RPCError) Error() string  { return e.Message }
func (e *RPCError) ErrorCode() int { return e.Code }

// Common wallet errors.
var (
	ErrUserRejected   = &RPCError{Code: 4001, Message: "User rejected the request."}
	ErrMethodNotFound = &RPCError{Code: -32601, Message: "method not found"}
)

// Provider is a programmable chain.Provider.
type Provider struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	calls    []Call
}

// NewProvider returns a Provider with no methods installed.
func NewProvider() *Provider {
	return &Provider{handlers: make(map[string]HandlerFunc)}
}

// Handle installs h for method, replacing any previous handler.
func (p *Provider) Handle(method string, h HandlerFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handlers[method] = h
}

// Result makes method always answer v.
func (p *Provider) Result(method string, v any) {
	p.Handle(method, func([]json.RawMessage) (any, error) { return v, nil })
}

// Fail makes method always answer with err.
func (p *Provider) Fail(method string, err error) {
	p.Handle(method, func([]json.RawMessage) (any, error) { return nil, err })
}

// Request implements chain.Provider.
func (p *Provider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw := make([]json.RawMessage, len(params))
	for i, param := range params {
		b, err := json.Marshal(param)
		if err != nil {
			return nil, fmt.Errorf("encoding param %d of %s: %w", i, method, err)
		}
		raw[i] = b
	}

	p.mu.Lock()
	p.calls = append(p.calls, Call{Method: method, Params: raw})
	h, ok := p.handlers[method]
	p.mu.Unlock()

	if !ok {
		return nil, ErrMethodNotFound
	}
	result, err := h(raw)
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

// Calls returns every recorded request for method, or all requests when
// method is empty.
func (p *Provider) Calls(method string) []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Call
	for _, c := range p.calls {
		if method == "" || c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many times method was requested.
func (p *Provider) Count(method string) int {
	return len(p.Calls(method))
}
