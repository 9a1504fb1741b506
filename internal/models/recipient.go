package models

import (
	"fmt"
	"io"
	"strings"

	"github.com/desertthunder/pantry/internal/queue"
	"github.com/desertthunder/pantry/internal/shared"
)

var _ Model = (*Recipient)(nil)

// Recipient receives food and money and accumulates totals.
//
// Fields are unexported so the kg total and donation count can only move together
// through [Recipient.ApplyFoodDonation].
type Recipient struct {
	id            int
	name          string
	totalKg       float64
	donationCount int
	totalMoney    float64
	requests      *queue.RequestQueue
}

// NewRecipient creates a recipient with zeroed totals and an empty request queue.
func NewRecipient(id int, name string) *Recipient {
	return &Recipient{id: id, name: name, requests: queue.New()}
}

// RestoreRecipient rebuilds a recipient from persisted totals. The request queue starts empty.
func RestoreRecipient(id int, name string, totalKg float64, donationCount int, totalMoney float64) *Recipient {
	return &Recipient{
		id:            id,
		name:          name,
		totalKg:       totalKg,
		donationCount: donationCount,
		totalMoney:    totalMoney,
		requests:      queue.New(),
	}
}

func (r *Recipient) ID() int             { return r.id }
func (r *Recipient) Name() string        { return r.name }
func (r *Recipient) TotalKg() float64    { return r.totalKg }
func (r *Recipient) DonationCount() int  { return r.donationCount }
func (r *Recipient) TotalMoney() float64 { return r.totalMoney }

// Requests exposes the owned request queue, e.g. for urgent enqueues or display.
func (r *Recipient) Requests() *queue.RequestQueue { return r.requests }

// Validate checks the name can be stored in the line-oriented backing store.
func (r *Recipient) Validate() error {
	if strings.TrimSpace(r.name) == "" {
		return fmt.Errorf("%w: recipient %d has an empty name", shared.ErrInvalidName, r.id)
	}
	if strings.ContainsAny(r.name, "\r\n") {
		return fmt.Errorf("%w: recipient %d name contains a line break", shared.ErrInvalidName, r.id)
	}
	if r.totalKg < 0 || r.totalMoney < 0 || r.donationCount < 0 {
		return fmt.Errorf("%w: recipient %d has negative totals", shared.ErrInvalidInput, r.id)
	}
	return nil
}

// ApplyFoodDonation adds kg to the received total and counts one donation.
func (r *Recipient) ApplyFoodDonation(kg float64) {
	r.totalKg += kg
	r.donationCount++
}

// ApplyMoneyDonation adds amount to the money total. The donation count is left alone;
// callers that want money to count call [Recipient.IncrementDonationCount].
func (r *Recipient) ApplyMoneyDonation(amount float64) {
	r.totalMoney += amount
}

// IncrementDonationCount bumps the donation count by one.
func (r *Recipient) IncrementDonationCount() {
	r.donationCount++
}

// RequestFood queues a normal (non-urgent) request for quantity kg.
func (r *Recipient) RequestFood(quantity int) {
	r.requests.Enqueue(r.id, quantity, false)
}

// DistributeFood serves the front request, adding its quantity to the kg total.
//
// Distribution fulfils a queued request rather than recording a new donation, so the
// donation count does not change. Returns false with no mutation when nothing is pending.
func (r *Recipient) DistributeFood() (queue.Entry, bool) {
	e, ok := r.requests.Dequeue()
	if !ok {
		return queue.Entry{}, false
	}
	r.totalKg += float64(e.Quantity)
	return e, true
}

// PendingRequests returns the number of queued requests.
func (r *Recipient) PendingRequests() int {
	return r.requests.Size()
}

// Display writes a human-readable summary block for the recipient.
func (r *Recipient) Display(w io.Writer) error {
	_, err := fmt.Fprintf(w,
		"ID: %d\nName: %s\nTotal kg received: %.2f\nTotal money received: $%.2f\nNumber of donations: %d\n%s\n",
		r.id, r.name, r.totalKg, r.totalMoney, r.donationCount, strings.Repeat("-", 32),
	)
	return err
}
