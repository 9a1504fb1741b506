// Package repositories implements SQLite persistence for the donation ledger.
//
// [DonationRepository] stores every food and money donation in the donations table
// created by [shared.RunMigrations]. Rows are hard-deleted: removing a donor or a
// recipient removes their donations with [DonationRepository.DeleteByDonor] and
// [DonationRepository.DeleteByRecipient].
//
// The [NextSequence] function atomically increments the donations_sequence counter so
// listings come back in recording order.
package repositories
