package shared

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/ethclient"
)

const (
	NetworkHardhat       = "hardhat"
	NetworkSepolia       = "sepolia"
	NetworkMainnet       = "mainnet"
	NetworkHederaTestnet = "hedera-testnet"
	NetworkHederaMainnet = "hedera-mainnet"
)

// Network describes an EVM network the ColorCityNFT contract can live on.
type Network struct {
	Name          string
	ChainID       int64
	DefaultRPCURL string
	Hedera        bool
}

var networks = map[string]Network{
	NetworkHardhat: {
		Name:          NetworkHardhat,
		ChainID:       31337,
		DefaultRPCURL: "http://127.0.0.1:8545",
	},
	NetworkSepolia: {
		Name:          NetworkSepolia,
		ChainID:       11155111,
		DefaultRPCURL: "https://rpc.sepolia.org",
	},
	NetworkMainnet: {
		Name:          NetworkMainnet,
		ChainID:       1,
		DefaultRPCURL: "https://cloudflare-eth.com",
	},
	NetworkHederaTestnet: {
		Name:          NetworkHederaTestnet,
		ChainID:       296,
		DefaultRPCURL: "https://testnet.hashio.io/api",
		Hedera:        true,
	},
	NetworkHederaMainnet: {
		Name:          NetworkHederaMainnet,
		ChainID:       295,
		DefaultRPCURL: "https://mainnet.hashio.io/api",
		Hedera:        true,
	},
}

var networkAliases = map[string]string{
	"localhost": NetworkHardhat,
	"local":     NetworkHardhat,
	"31337":     NetworkHardhat,
	"11155111":  NetworkSepolia,
	"ethereum":  NetworkMainnet,
	"1":         NetworkMainnet,
	"296":       NetworkHederaTestnet,
	"295":       NetworkHederaMainnet,
}

// NormalizeNetwork maps a user supplied network name or chain ID onto one of
// the supported network names. An empty value selects the local hardhat node.
func NormalizeNetwork(network string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(network))
	if normalized == "" {
		return NetworkHardhat, nil
	}
	if alias, ok := networkAliases[normalized]; ok {
		return alias, nil
	}
	if _, ok := networks[normalized]; ok {
		return normalized, nil
	}
	return "", fmt.Errorf("unsupported network %q", network)
}

// LookupNetwork returns the network descriptor for name.
func LookupNetwork(name string) (Network, error) {
	normalized, err := NormalizeNetwork(name)
	if err != nil {
		return Network{}, err
	}
	return networks[normalized], nil
}

// ResolveRPCURL returns rpcURL when set, otherwise the default endpoint of network.
func ResolveRPCURL(network string, rpcURL string) (string, error) {
	if trimmed := strings.TrimSpace(rpcURL); trimmed != "" {
		return trimmed, nil
	}
	descriptor, err := LookupNetwork(network)
	if err != nil {
		return "", err
	}
	return descriptor.DefaultRPCURL, nil
}

// DialNetwork opens a JSON-RPC client for the given network.
func DialNetwork(ctx context.Context, network string, rpcURL string) (*ethclient.Client, error) {
	endpoint, err := ResolveRPCURL(network, rpcURL)
	if err != nil {
		return nil, err
	}
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}
	return client, nil
}
