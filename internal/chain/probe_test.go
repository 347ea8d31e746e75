package chain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbeAllKeepsCandidateOrder(t *testing.T) {
	dead := rpcMock(t, nil)
	deadURL := dead.URL
	dead.Close()

	local := rpcMock(t, map[string]interface{}{"eth_chainId": "0x7a69"})
	defer local.Close()
	sepolia := rpcMock(t, map[string]interface{}{"eth_chainId": "0xaa36a7"})
	defer sepolia.Close()

	results := ProbeAll(context.Background(), local.URL, "", deadURL, sepolia.URL)
	require.Len(t, results, 3, "empty candidates are skipped")

	assert.Equal(t, local.URL, results[0].URL)
	assert.True(t, results[0].OK())
	assert.Equal(t, int64(31337), results[0].ChainID.Int64())

	assert.Equal(t, deadURL, results[1].URL)
	assert.False(t, results[1].OK())
	assert.Equal(t, KindNetwork, KindOf(results[1].Err))
	assert.Nil(t, results[1].ChainID)

	assert.Equal(t, int64(11155111), results[2].ChainID.Int64())
}

func TestProbeAllNone(t *testing.T) {
	assert.Empty(t, ProbeAll(context.Background()))
}
