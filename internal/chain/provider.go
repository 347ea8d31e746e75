package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

// Provider is the wallet capability every other operation is gated on: a
// single request entry point in the style of EIP-1193.
type Provider interface {
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
}

// RPCProvider is a Provider backed by a wallet or node JSON-RPC endpoint.
type RPCProvider struct {
	url    string
	client *rpc.Client
}

// Dial connects to a wallet endpoint. HTTP endpoints are not contacted until
// the first request.
func Dial(ctx context.Context, url string) (*RPCProvider, error) {
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, Classify("dial", fmt.Errorf("connecting to %s: %w", url, err))
	}
	return &RPCProvider{url: url, client: client}, nil
}

// Request sends one JSON-RPC call and returns the raw result.
func (p *RPCProvider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	var result json.RawMessage
	if err := p.client.CallContext(ctx, &result, method, params...); err != nil {
		return nil, Classify(method, err)
	}
	return result, nil
}

// URL returns the endpoint this provider talks to.
func (p *RPCProvider) URL() string { return p.url }

// Close releases the underlying connection.
func (p *RPCProvider) Close() { p.client.Close() }

// Traced wraps a Provider and writes one line per round trip to Out.
type Traced struct {
	Provider
	Out    io.Writer
	Format func(string) string // optional styling for each line
}

// Request forwards to the wrapped provider and logs method, latency and outcome.
func (t *Traced) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	start := time.Now()
	raw, err := t.Provider.Request(ctx, method, params...)
	line := fmt.Sprintf("→ %s (%s)", method, time.Since(start).Round(time.Millisecond))
	if err != nil {
		line += " ✗ " + err.Error()
	}
	if t.Format != nil {
		line = t.Format(line)
	}
	fmt.Fprintln(t.Out, line)
	return raw, err
}
