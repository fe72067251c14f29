// Package shared provides common utilities used across the ColorCity SDK:
// the table of supported EVM networks, operator configuration loaded from
// environment variables or a .env file, address and private key parsing,
// ether amount conversion and logger construction.
//
// # Environment Variables
//
//	COLORCITY_NETWORK           hardhat (default), sepolia, mainnet, hedera-testnet, hedera-mainnet
//	COLORCITY_RPC_URL           JSON-RPC endpoint, defaults per network
//	COLORCITY_CONTRACT_ADDRESS  deployed ColorCityNFT address
//	COLORCITY_PRIVATE_KEY       hex signing key used for minting
//
// Each variable may be scoped to a network by prefixing the upper-cased
// network name, for example SEPOLIA_PRIVATE_KEY.
package shared
