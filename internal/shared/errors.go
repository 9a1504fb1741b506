package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Registry errors
	ErrDuplicateRecipient = fmt.Errorf("recipient already exists")
	ErrRecipientNotFound  = fmt.Errorf("recipient not found")
	ErrMalformedRecord    = fmt.Errorf("malformed record")
	ErrStoreWrite         = fmt.Errorf("cannot write backing store")

	// Ledger errors
	ErrDuplicateDonor   = fmt.Errorf("donor already exists")
	ErrDonorNotFound    = fmt.Errorf("donor not found")
	ErrDonationNotFound = fmt.Errorf("donation not found")
	ErrRosterFull       = fmt.Errorf("no donor ids left")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrInvalidName     = fmt.Errorf("invalid name")
	ErrInvalidDate     = fmt.Errorf("invalid date")
	ErrInvalidQuantity = fmt.Errorf("invalid quantity")
	ErrInvalidAmount   = fmt.Errorf("invalid amount")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
