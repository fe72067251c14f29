// Package collection turns an owner address into the list of ColorCity
// tokens it holds.
//
// Resolver reads the owner's balance, walks the owner index one read at a
// time, fetches each token URI and decodes it through a metadata.Source.
// Indexes that fail are recorded in Collection.Failures instead of aborting
// the walk. Items are returned most recently minted first.
//
// Watcher wraps a Resolver for long running views: it polls an
// AccountSource and the account balance, re-resolves on change and
// publishes each new Collection wholesale through its OnUpdate callback.
package collection
