package shared

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeNetwork(t *testing.T) {
	cases := []struct {
		input    string
		expected string
	}{
		{"", NetworkHardhat},
		{"   ", NetworkHardhat},
		{"hardhat", NetworkHardhat},
		{"localhost", NetworkHardhat},
		{"31337", NetworkHardhat},
		{"SEPOLIA", NetworkSepolia},
		{"  Mainnet ", NetworkMainnet},
		{"ethereum", NetworkMainnet},
		{"hedera-testnet", NetworkHederaTestnet},
		{"296", NetworkHederaTestnet},
	}

	for _, tc := range cases {
		result, err := NormalizeNetwork(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		require.Equal(t, tc.expected, result, "input %q", tc.input)
	}
}

func TestNormalizeNetworkUnsupported(t *testing.T) {
	_, err := NormalizeNetwork("devnet")
	require.Error(t, err)
}

func TestLookupNetwork(t *testing.T) {
	network, err := LookupNetwork("")
	require.NoError(t, err)
	require.Equal(t, int64(31337), network.ChainID)
	require.False(t, network.Hedera)

	network, err = LookupNetwork("hedera-mainnet")
	require.NoError(t, err)
	require.Equal(t, int64(295), network.ChainID)
	require.True(t, network.Hedera)
}

func TestResolveRPCURL(t *testing.T) {
	endpoint, err := ResolveRPCURL("hardhat", "")
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8545", endpoint)

	endpoint, err = ResolveRPCURL("hardhat", "  http://node:8545 ")
	require.NoError(t, err)
	require.Equal(t, "http://node:8545", endpoint)

	_, err = ResolveRPCURL("badnet", "")
	require.Error(t, err)
}
