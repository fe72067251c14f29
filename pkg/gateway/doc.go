// Package gateway resolves ERC-721 token URIs that point off-chain.
//
// ColorCityNFT stores its metadata inline as a base64 data URI, but other
// collections publish ipfs:// or https:// URIs. Client implements
// metadata.Source for all three: data URIs are handed to metadata.Decode,
// ipfs:// URIs are rewritten onto an HTTP gateway and fetched, and every
// fetched document goes through metadata.Parse so that malformed records fail
// with a *metadata.DecodeError.
package gateway
