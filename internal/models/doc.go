// Package models defines the domain types shared by the likesync packages.
//
//   - [Slot] : one of the two account contexts, "from" (source) and "to" (destination)
//   - [Credential] : bearer access token plus optional refresh token for one slot
//   - [Item] : a liked track, flattened from the upstream saved-track payload
//   - [Transfer] and [TransferBatch] : journal records describing a library copy
//
// Items are immutable once fetched. The library writer only needs [Item.ID].
package models
