package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"
)

// probeTimeout bounds how long a single candidate endpoint may take to answer.
const probeTimeout = 5 * time.Second

// Detection is a provider that answered the probe, with what it reported.
type Detection struct {
	Provider *RPCProvider
	URL      string
	ChainID  *big.Int
	Latency  time.Duration
}

// Detect probes each candidate wallet endpoint in order with eth_chainId and
// returns the first that answers. Empty candidates are skipped. When nothing
// answers the error matches ErrNoProvider.
func Detect(ctx context.Context, candidates ...string) (*Detection, error) {
	var tried []string
	for _, url := range candidates {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		tried = append(tried, url)

		d, err := probe(ctx, url)
		if err == nil {
			return d, nil
		}
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, Classify("detect", ctx.Err())
		}
	}

	if len(tried) == 0 {
		return nil, NewError(KindNoProvider, "detect", errors.New("no wallet endpoint configured"))
	}
	return nil, NewError(KindNoProvider, "detect",
		fmt.Errorf("no wallet answered at %s", strings.Join(tried, ", ")))
}

func probe(ctx context.Context, url string) (*Detection, error) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	p, err := Dial(probeCtx, url)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	id, err := NewEVMClient(p).ChainID(probeCtx)
	if err != nil {
		p.Close()
		return nil, err
	}
	return &Detection{
		Provider: p,
		URL:      url,
		ChainID:  id,
		Latency:  time.Since(start),
	}, nil
}
