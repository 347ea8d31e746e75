package chain

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"
)

// ProbeResult is the outcome of probing one wallet endpoint.
type ProbeResult struct {
	URL     string
	ChainID *big.Int
	Latency time.Duration
	Err     error
}

// OK reports whether the endpoint answered.
func (r ProbeResult) OK() bool { return r.Err == nil }

// ProbeAll probes every candidate in parallel and returns one result per
// non-empty candidate, in candidate order. Nothing stays connected.
func ProbeAll(ctx context.Context, candidates ...string) []ProbeResult {
	var urls []string
	for _, url := range candidates {
		if url = strings.TrimSpace(url); url != "" {
			urls = append(urls, url)
		}
	}

	results := make([]ProbeResult, len(urls))
	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(idx int, u string) {
			defer wg.Done()
			d, err := probe(ctx, u)
			if err != nil {
				results[idx] = ProbeResult{URL: u, Err: Classify("probe", err)}
				return
			}
			d.Provider.Close()
			results[idx] = ProbeResult{URL: u, ChainID: d.ChainID, Latency: d.Latency}
		}(i, url)
	}
	wg.Wait()
	return results
}
