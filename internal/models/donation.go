package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/pantry/internal/shared"
)

var (
	_ Model = (*Donor)(nil)
	_ Model = (*Donation)(nil)
)

// Donor is a registered contributor of food or money.
type Donor struct {
	ID           int
	Name         string
	Contact      string
	Frequency    int     // number of donations made
	MoneyDonated float64 // running money total
}

// Validate checks the donor can be stored in the tab-separated roster file.
func (d *Donor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: donor name is empty", shared.ErrInvalidName)
	}
	if strings.ContainsAny(d.Name, "\r\n") || strings.ContainsAny(d.Contact, "\r\n") {
		return fmt.Errorf("%w: donor fields must be single-line", shared.ErrInvalidInput)
	}
	return nil
}

// DonationKind distinguishes food from money donations.
type DonationKind string

const (
	FoodDonation  DonationKind = "food"
	MoneyDonation DonationKind = "money"
)

// Donation is one ledger entry linking a donor to a recipient.
type Donation struct {
	ID          string
	Sequence    int
	DonorID     int
	DonorName   string
	RecipientID int
	Kind        DonationKind
	FoodType    string
	Quantity    int     // kg, food donations only
	MoneyAmount float64 // money donations only
	Date        string  // DD-MM-YYYY
	CreatedAt   time.Time
}

// NewFoodDonation creates a food [Donation].
func NewFoodDonation(donorID int, donorName string, recipientID int, foodType string, quantity int, date string) *Donation {
	return &Donation{
		DonorID:     donorID,
		DonorName:   donorName,
		RecipientID: recipientID,
		Kind:        FoodDonation,
		FoodType:    foodType,
		Quantity:    quantity,
		Date:        date,
		CreatedAt:   time.Now(),
	}
}

// NewMoneyDonation creates a money [Donation].
func NewMoneyDonation(donorID int, donorName string, recipientID int, amount float64, date string) *Donation {
	return &Donation{
		DonorID:     donorID,
		DonorName:   donorName,
		RecipientID: recipientID,
		Kind:        MoneyDonation,
		MoneyAmount: amount,
		Date:        date,
		CreatedAt:   time.Now(),
	}
}

// IsMoney reports whether this is a money donation.
func (d *Donation) IsMoney() bool { return d.Kind == MoneyDonation }

// Validate checks the donation is complete and its amounts are positive.
func (d *Donation) Validate() error {
	if d.DonorName == "" {
		return fmt.Errorf("%w: donor name is required", shared.ErrMissingArgument)
	}
	if !shared.ValidDate(d.Date) {
		return fmt.Errorf("%w: %q", shared.ErrInvalidDate, d.Date)
	}

	switch d.Kind {
	case FoodDonation:
		if d.Quantity <= 0 {
			return fmt.Errorf("%w: %d kg", shared.ErrInvalidQuantity, d.Quantity)
		}
	case MoneyDonation:
		if d.MoneyAmount <= 0 {
			return fmt.Errorf("%w: $%.2f", shared.ErrInvalidAmount, d.MoneyAmount)
		}
	default:
		return fmt.Errorf("%w: unknown donation kind %q", shared.ErrInvalidInput, d.Kind)
	}
	return nil
}
