package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/pantry/internal/formatter"
	"github.com/desertthunder/pantry/internal/models"
	"github.com/desertthunder/pantry/internal/shared"
	"github.com/urfave/cli/v3"
)

type recipientJSON struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	TotalKg       float64 `json:"total_kg"`
	DonationCount int     `json:"donation_count"`
	TotalMoney    float64 `json:"total_money"`
	Pending       int     `json:"pending_requests"`
}

// RecipientList prints every recipient in registry order.
func (r *Runner) RecipientList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	switch {
	case cmd.Bool("json"):
		out := make([]recipientJSON, 0, r.registry.Size())
		for rec := range r.registry.All() {
			out = append(out, recipientJSON{
				ID:            rec.ID(),
				Name:          rec.Name(),
				TotalKg:       rec.TotalKg(),
				DonationCount: rec.DonationCount(),
				TotalMoney:    rec.TotalMoney(),
				Pending:       rec.PendingRequests(),
			})
		}
		return r.writeJSON(out, true)
	case cmd.Bool("brief"):
		return r.writeBytes(formatter.RecipientListing(r.registry.All()))
	}

	if r.registry.Size() == 0 {
		return r.writePlain("No recipients registered.\n")
	}
	return r.registry.DisplayAll(r.output)
}

// RecipientAdd registers a recipient.
func (r *Runner) RecipientAdd(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	id := int(cmd.Int("id"))
	name := cmd.String("name")
	if err := r.registry.AddRecipient(models.NewRecipient(id, name)); err != nil {
		return err
	}

	r.logger.Info("recipient added", "id", id, "name", name)
	return r.writePlain("Recipient %s added with ID %d.\n", name, id)
}

// RecipientUpdate adds kg received to a recipient's total.
func (r *Runner) RecipientUpdate(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	id := int(cmd.Int("id"))
	kg := cmd.Float("kg")
	if kg <= 0 {
		return fmt.Errorf("%w: %v kg", shared.ErrInvalidQuantity, kg)
	}

	found, err := r.registry.UpdateRecipient(id, kg)
	if !found {
		return fmt.Errorf("%w: id %d", shared.ErrRecipientNotFound, id)
	}
	if err != nil {
		return err
	}
	return r.writePlain("Recipient %d updated with %g kg.\n", id, kg)
}

// RecipientRemove removes a recipient along with its donations.
func (r *Runner) RecipientRemove(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	id := int(cmd.Int("id"))
	n, err := r.ledger.RemoveRecipient(id)
	if err != nil {
		return err
	}
	return r.writePlain("Recipient %d removed along with %d donations.\n", id, n)
}

// RecipientClear removes every recipient. Requires --yes.
func (r *Runner) RecipientClear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: clearing recipients cannot be undone, pass --yes to confirm", shared.ErrMissingArgument)
	}
	if err := r.open(); err != nil {
		return err
	}

	n := r.registry.Size()
	if err := r.registry.Clear(); err != nil {
		return err
	}

	orphans, err := r.ledger.CleanupOrphans()
	if err != nil {
		return err
	}
	return r.writePlain("Cleared %d recipients and %d donations.\n", n, orphans)
}

// RecipientTotal prints the kg distributed across all recipients.
func (r *Runner) RecipientTotal(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}
	return r.writePlain("Total food distributed: %.2f kg\n", r.registry.TotalDistributed())
}
