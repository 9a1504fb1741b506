package main

import (
	"context"
	"time"

	"github.com/desertthunder/pantry/internal/ledger"
	"github.com/desertthunder/pantry/internal/shared"
	"github.com/urfave/cli/v3"
)

// donationDate returns --date, or today when the flag is empty.
func donationDate(cmd *cli.Command) string {
	if d := cmd.String("date"); d != "" {
		return d
	}
	return time.Now().Format(shared.DateLayout)
}

// DonateFood records a food donation.
func (r *Runner) DonateFood(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	d, err := r.ledger.RecordFood(ledger.FoodInput{
		DonorName:   cmd.String("donor"),
		RecipientID: int(cmd.Int("recipient")),
		FoodType:    cmd.String("type"),
		Quantity:    int(cmd.Int("quantity")),
		Date:        donationDate(cmd),
	})
	if err != nil {
		return err
	}
	return r.writePlain("Recorded %d kg of %s from %s to recipient %d on %s.\n", d.Quantity, d.FoodType, d.DonorName, d.RecipientID, d.Date)
}

// DonateMoney records a money donation.
func (r *Runner) DonateMoney(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	d, err := r.ledger.RecordMoney(ledger.MoneyInput{
		DonorName:   cmd.String("donor"),
		RecipientID: int(cmd.Int("recipient")),
		Amount:      cmd.Float("amount"),
		Date:        donationDate(cmd),
	})
	if err != nil {
		return err
	}
	return r.writePlain("Recorded $%.2f from %s to recipient %d on %s.\n", d.MoneyAmount, d.DonorName, d.RecipientID, d.Date)
}
