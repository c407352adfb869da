// Package stall resolves and remembers the address of a vendor stall.
//
// A stall is a resource account that the marketplace module creates from
// the owner's address and a caller chosen seed. After the create_stall
// transaction is confirmed, [Resolver] picks the stall address from the
// best available source:
//
//  1. the stall_addr field of the StallCreated event emitted by the
//     transaction,
//  2. local derivation with common.DeriveResourceAddress,
//  3. the owner address itself, as a degraded last resort.
//
// The chosen address and its [Source] are returned together so callers can
// surface a degraded result instead of finding out from a failed listing.
//
// [Registry] persists one [Record] per owner in an injected [Store].
package stall
