// Package ledger defines the token ledger protocol the collection resolver
// relies on, the error taxonomy for ledger calls, and Local, a reference
// ledger implementing the ColorCityNFT contract rules in process.
//
// A token has a single state, owned. MintItem appends a new token to the
// global set and to the caller's owner index; there is no transfer or burn.
// Local keeps its state in a Store, either in memory or in a badger
// database.
package ledger
