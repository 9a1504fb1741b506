package main

import (
	"context"

	"github.com/desertthunder/pantry/internal/formatter"
	"github.com/urfave/cli/v3"
)

type donorJSON struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Contact      string  `json:"contact"`
	Frequency    int     `json:"frequency"`
	MoneyDonated float64 `json:"money_donated"`
}

// DonorRegister adds a donor under a generated ID and saves the roster.
func (r *Runner) DonorRegister(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	d, err := r.roster.Register(cmd.String("name"), cmd.String("contact"))
	if err != nil {
		return err
	}
	if err := r.roster.Save(); err != nil {
		return err
	}
	return r.writePlain("Donor %s registered with ID %d.\n", d.Name, d.ID)
}

// DonorList prints the roster.
func (r *Runner) DonorList(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	list := r.roster.List()
	if cmd.Bool("json") {
		out := make([]donorJSON, 0, len(list))
		for _, d := range list {
			out = append(out, donorJSON{
				ID:           d.ID,
				Name:         d.Name,
				Contact:      d.Contact,
				Frequency:    d.Frequency,
				MoneyDonated: d.MoneyDonated,
			})
		}
		return r.writeJSON(out, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.DonorReport(list))
}

// DonorDelete removes a donor along with its donations.
func (r *Runner) DonorDelete(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	id := int(cmd.Int("id"))
	n, err := r.ledger.DeleteDonor(id)
	if err != nil {
		return err
	}
	return r.writePlain("Donor %d deleted along with %d donations.\n", id, n)
}
