// package ledger records donations against the donor roster and the recipient registry.
package ledger

import (
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pantry/internal/donors"
	"github.com/desertthunder/pantry/internal/models"
	"github.com/desertthunder/pantry/internal/registry"
	"github.com/desertthunder/pantry/internal/shared"
)

// DonationStore persists ledger entries. It is satisfied by repositories.DonationRepository.
type DonationStore interface {
	Create(d *models.Donation) error
	List(criteria map[string]any) ([]*models.Donation, error)
	Delete(id string) error
	DeleteByDonor(donorID int) (int, error)
	DeleteByRecipient(recipientID int) (int, error)
}

// Ledger ties donations to their donor and recipient and keeps all three stores in step.
type Ledger struct {
	recipients *registry.Registry
	roster     *donors.Roster
	donations  DonationStore
	logger     *log.Logger
}

// FoodInput describes a food donation as entered by the user.
type FoodInput struct {
	DonorName   string
	RecipientID int
	FoodType    string
	Quantity    int // kg
	Date        string
}

// MoneyInput describes a money donation as entered by the user.
type MoneyInput struct {
	DonorName   string
	RecipientID int
	Amount      float64
	Date        string
}

// New creates a [Ledger]. A nil logger discards output.
func New(recipients *registry.Registry, roster *donors.Roster, donations DonationStore, logger *log.Logger) *Ledger {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}
	return &Ledger{recipients: recipients, roster: roster, donations: donations, logger: logger}
}

func (l *Ledger) resolve(donorName string, recipientID int) (*models.Donor, *models.Recipient, error) {
	donor, ok := l.roster.FindByName(donorName)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", shared.ErrDonorNotFound, donorName)
	}
	rec, ok := l.recipients.FindByID(recipientID)
	if !ok {
		return nil, nil, fmt.Errorf("%w: id %d", shared.ErrRecipientNotFound, recipientID)
	}
	return donor, rec, nil
}

// RecordFood validates and records a food donation.
//
// The donor's frequency and the recipient's kg total and donation count move
// together; the registry is written regardless of its auto-save mode.
func (l *Ledger) RecordFood(in FoodInput) (*models.Donation, error) {
	donor, rec, err := l.resolve(in.DonorName, in.RecipientID)
	if err != nil {
		return nil, err
	}

	d := models.NewFoodDonation(donor.ID, donor.Name, rec.ID(), in.FoodType, in.Quantity, in.Date)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := l.donations.Create(d); err != nil {
		return nil, fmt.Errorf("failed to record donation: %w", err)
	}

	if err := l.roster.TrackFood(donor.ID); err != nil {
		return d, err
	}
	rec.ApplyFoodDonation(float64(in.Quantity))

	l.logger.Info("food donation recorded", "donor", donor.Name, "recipient", rec.ID(), "kg", in.Quantity, "food", in.FoodType)
	return d, l.persist()
}

// RecordMoney validates and records a money donation.
//
// The recipient's money total and donation count are updated; its kg total is not.
func (l *Ledger) RecordMoney(in MoneyInput) (*models.Donation, error) {
	donor, rec, err := l.resolve(in.DonorName, in.RecipientID)
	if err != nil {
		return nil, err
	}

	d := models.NewMoneyDonation(donor.ID, donor.Name, rec.ID(), in.Amount, in.Date)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	if err := l.donations.Create(d); err != nil {
		return nil, fmt.Errorf("failed to record donation: %w", err)
	}

	if err := l.roster.TrackMoney(donor.ID, in.Amount); err != nil {
		return d, err
	}
	rec.ApplyMoneyDonation(in.Amount)
	rec.IncrementDonationCount()

	l.logger.Info("money donation recorded", "donor", donor.Name, "recipient", rec.ID(), "amount", in.Amount)
	return d, l.persist()
}

func (l *Ledger) persist() error {
	return errors.Join(l.recipients.ForceSave(), l.roster.Save())
}

// DeleteDonor removes donor id and every donation it made, returning the number of donations removed.
func (l *Ledger) DeleteDonor(id int) (int, error) {
	if !l.roster.Delete(id) {
		return 0, fmt.Errorf("%w: id %d", shared.ErrDonorNotFound, id)
	}

	n, err := l.donations.DeleteByDonor(id)
	if err != nil {
		return 0, err
	}

	l.logger.Info("donor deleted", "id", id, "donations", n)
	return n, l.roster.Save()
}

// RemoveRecipient removes recipient id from the registry along with its donations.
//
// Pending requests for the recipient are discarded.
func (l *Ledger) RemoveRecipient(id int) (int, error) {
	removed, err := l.recipients.Remove(id)
	if !removed {
		return 0, fmt.Errorf("%w: id %d", shared.ErrRecipientNotFound, id)
	}

	n, derr := l.donations.DeleteByRecipient(id)
	if derr != nil {
		return 0, derr
	}

	l.logger.Info("recipient removed", "id", id, "donations", n)
	return n, err
}

// CleanupOrphans deletes donations whose donor or recipient no longer exists.
func (l *Ledger) CleanupOrphans() (int, error) {
	all, err := l.donations.List(nil)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, d := range all {
		_, donorOK := l.roster.FindByID(d.DonorID)
		_, recipientOK := l.recipients.FindByID(d.RecipientID)
		if donorOK && recipientOK {
			continue
		}
		if err := l.donations.Delete(d.ID); err != nil {
			return removed, err
		}
		removed++
	}

	if removed > 0 {
		l.logger.Warn("removed orphaned donations", "count", removed)
	}
	return removed, nil
}

// Donations returns every recorded donation in recording order.
func (l *Ledger) Donations() ([]*models.Donation, error) {
	return l.donations.List(nil)
}

// Recipients exposes the registry the ledger writes to.
func (l *Ledger) Recipients() *registry.Registry { return l.recipients }

// Roster exposes the donor roster the ledger writes to.
func (l *Ledger) Roster() *donors.Roster { return l.roster }
