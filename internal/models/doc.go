// Package models defines domain entities for the donation tracker.
//
// The package contains two categories of types:
//
// 1. Registry records: mutable, in-memory records owned by the recipient registry
//   - [Recipient] : identity, cumulative totals, and a private request queue
//
// 2. Ledger records: flat structs persisted by the donor roster and the donation repository
//   - [Donor] : registered contributor with donation frequency and money total
//   - [Donation] : a single food or money contribution from a donor to a recipient
//
// Every record implements [Model] so it can be validated before it is written.
// The [Repository] interface defines standard data access operations for the ledger.
package models
