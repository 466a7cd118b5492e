package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSwapNodeBackends(t *testing.T) {
	for _, backend := range []string{"", "file", "leveldb"} {
		node, err := NewSwapNode(Config{ConfigDir: t.TempDir(), Backend: backend})
		require.NoError(t, err, "backend %q", backend)
		assert.NotNil(t, node.Storage())
		assert.NotNil(t, node.Keystore())
	}
}

func TestNewSwapNodeUnknownBackend(t *testing.T) {
	_, err := NewSwapNode(Config{ConfigDir: t.TempDir(), Backend: "redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage backend")
}

func TestWalletStateBeforeStart(t *testing.T) {
	node, err := NewSwapNode(Config{ConfigDir: t.TempDir()})
	require.NoError(t, err)

	st := node.WalletState()
	assert.False(t, st.Connected)
	assert.Equal(t, "0.00", st.Balances.Usdc)

	st = node.DisconnectWallet(context.Background())
	assert.False(t, st.Connected)
}

func TestStartRequiresProfileKey(t *testing.T) {
	node, err := NewSwapNode(Config{ConfigDir: t.TempDir()})
	require.NoError(t, err)

	err = node.Start(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing")
}

func TestConnectWalletBeforeStart(t *testing.T) {
	node, err := NewSwapNode(Config{ConfigDir: t.TempDir()})
	require.NoError(t, err)

	_, err = node.ConnectWallet(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not started")
}
