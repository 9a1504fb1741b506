package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/pantry/internal/models"
)

var _ list.Item = recipientItem{}

// recipientItem wraps [models.Recipient] to implement [list.Item].
type recipientItem struct {
	recipient *models.Recipient
}

func (i recipientItem) FilterValue() string { return i.recipient.Name() }
func (i recipientItem) Title() string {
	return fmt.Sprintf("%s (ID %d)", i.recipient.Name(), i.recipient.ID())
}
func (i recipientItem) Description() string {
	desc := fmt.Sprintf("%.2f kg • $%.2f • %d donations", i.recipient.TotalKg(), i.recipient.TotalMoney(), i.recipient.DonationCount())
	if n := i.recipient.PendingRequests(); n > 0 {
		desc = fmt.Sprintf("%s • %d pending", desc, n)
	}
	return desc
}
