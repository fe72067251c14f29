// Package erc721 binds the deployed ColorCityNFT contract over Ethereum
// JSON-RPC. Client implements ledger.Ledger: reads are eth_call requests
// with ABI encoded calldata, and MintItem signs an EIP-1559 transaction
// paying the fixed mint price, waits for its receipt and reads the minted
// token ID from the Transfer event.
//
// Any backend with the CallBackend surface works for reads; pass an
// *ethclient.Client (see shared.DialNetwork) for a live node.
package erc721
