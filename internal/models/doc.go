// Package models defines the core domain models for splitledger.
//
// # Models
//
//   - User: a registered member of the ledger, referenced by ID everywhere else
//   - Transaction: an expense paid by one or more users and shared by participants
//   - SplitRule: how a transaction's total is divided (equal, percentage, exact)
//   - Snapshot: the ordered users and transactions a store persists and restores
//
// # Design Principles
//
//  1. **Append-only**: users and transactions are never mutated or deleted once added
//  2. **Decimal inputs**: amounts entered by users are decimals, never floats
//  3. **Explicit split payloads**: only percentage and exact splits carry per-user values
//  4. **IDs, not pointers**: relationships are expressed with user ID strings
package models
