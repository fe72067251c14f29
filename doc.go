// The ColorCity SDK for Go mints and browses tokens of the ColorCityNFT
// ERC-721 collection. It provides packages for talking to the deployed
// contract over JSON-RPC, decoding the base64 JSON metadata embedded in
// token URIs, and resolving the tokens held by an account into an ordered
// gallery.
//
// # Packages
//
//   - ledger: the token ledger protocol and a local reference ledger
//   - erc721: the ColorCityNFT contract binding over JSON-RPC
//   - metadata: the data-URI metadata codec
//   - gateway: off-chain (IPFS/HTTPS) metadata fetching
//   - collection: owner collection resolution and balance watching
//   - gallery: terminal and HTTP presentation of a collection
//   - shared: networks, operator configuration, keys and logging
//
// # Installation
//
//	go get github.com/colorcity-labs/colorcity-sdk-go@latest
package colorcity_sdk_go
