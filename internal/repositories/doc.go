// Package repositories implements local persistence.
//
// Key Implementations:
//   - [TokenStore] : one plain-text bearer token file per slot under the state directory
//   - [Journal] : SQLite record of transfer runs and per-batch outcomes
//
// The journal answers "how far did a failed transfer get" via the last successful batch index.
// It does not resume transfers.
package repositories
