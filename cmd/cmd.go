// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand returns the setup command with config and database subcommands.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file or initialize the database",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Write an example config.toml to the --config path",
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
		},
	}
}

// recipientCommand handles the recipient registry
func recipientCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "recipient",
		Aliases: []string{"rec"},
		Usage:   "Manage recipients",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show every recipient",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "brief",
						Usage: "Show only ids and names",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
				},
				Action: r.RecipientList,
			},
			{
				Name:  "add",
				Usage: "Register a recipient",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "Recipient ID",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Recipient name",
						Required: true,
					},
				},
				Action: r.RecipientAdd,
			},
			{
				Name:  "update",
				Usage: "Record kg received by a recipient outside the ledger",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "Recipient ID",
						Required: true,
					},
					&cli.FloatFlag{
						Name:     "kg",
						Usage:    "Kilograms received",
						Required: true,
					},
				},
				Action: r.RecipientUpdate,
			},
			{
				Name:  "remove",
				Usage: "Remove a recipient and its donations",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "Recipient ID",
						Required: true,
					},
				},
				Action: r.RecipientRemove,
			},
			{
				Name:  "clear",
				Usage: "Remove every recipient",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "yes",
						Usage: "Confirm the irreversible clear",
					},
				},
				Action: r.RecipientClear,
			},
			{
				Name:   "total",
				Usage:  "Total food distributed across recipients",
				Action: r.RecipientTotal,
			},
		},
	}
}

// donorCommand handles the donor roster
func donorCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "donor",
		Usage: "Manage donors",
		Commands: []*cli.Command{
			{
				Name:  "register",
				Usage: "Register a donor with a generated ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Donor name",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "contact",
						Usage: "Phone number or email",
					},
				},
				Action: r.DonorRegister,
			},
			{
				Name:  "list",
				Usage: "Show every donor",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
					},
					&cli.BoolFlag{
						Name:  "pretty",
						Usage: "Pretty-print output",
						Value: true,
					},
				},
				Action: r.DonorList,
			},
			{
				Name:  "delete",
				Usage: "Delete a donor and the donations it made",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:     "id",
						Usage:    "Donor ID",
						Required: true,
					},
				},
				Action: r.DonorDelete,
			},
		},
	}
}

// donateCommand records donations
func donateCommand(r *Runner) *cli.Command {
	common := func() []cli.Flag {
		return []cli.Flag{
			&cli.StringFlag{
				Name:     "donor",
				Usage:    "Registered donor name",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "recipient",
				Usage:    "Recipient ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "date",
				Usage: "Donation date as DD-MM-YYYY (defaults to today)",
			},
		}
	}

	return &cli.Command{
		Name:  "donate",
		Usage: "Record a donation",
		Commands: []*cli.Command{
			{
				Name:  "food",
				Usage: "Record a food donation in kg",
				Flags: append(common(),
					&cli.StringFlag{
						Name:     "type",
						Usage:    "Food type",
						Required: true,
					},
					&cli.IntFlag{
						Name:     "quantity",
						Aliases:  []string{"q"},
						Usage:    "Quantity in kg",
						Required: true,
					},
				),
				Action: r.DonateFood,
			},
			{
				Name:  "money",
				Usage: "Record a money donation",
				Flags: append(common(),
					&cli.FloatFlag{
						Name:     "amount",
						Usage:    "Amount donated",
						Required: true,
					},
				),
				Action: r.DonateMoney,
			},
		},
	}
}

// reportCommand renders reports and exports
func reportCommand(r *Runner) *cli.Command {
	output := func() cli.Flag {
		return &cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the report to a file instead of stdout",
		}
	}

	return &cli.Command{
		Name:  "report",
		Usage: "Generate reports",
		Commands: []*cli.Command{
			{
				Name:  "donations",
				Usage: "List donations sorted by quantity, date or money",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "sort",
						Usage: "quantity, date or money",
						Value: "quantity",
					},
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "text, csv or markdown",
						Value:   "text",
					},
					output(),
				},
				Action: r.ReportDonations,
			},
			{
				Name:   "distribution",
				Usage:  "Per-recipient totals with ledger cross-check",
				Flags:  []cli.Flag{output()},
				Action: r.ReportDistribution,
			},
			{
				Name:   "donors",
				Usage:  "Donor roster with frequency and money totals",
				Flags:  []cli.Flag{output()},
				Action: r.ReportDonors,
			},
			{
				Name:   "summary",
				Usage:  "Overall donation totals",
				Flags:  []cli.Flag{output()},
				Action: r.ReportSummary,
			},
			{
				Name:   "distribution-summary",
				Usage:  "Totals across all recipients",
				Flags:  []cli.Flag{output()},
				Action: r.ReportDistributionSummary,
			},
			{
				Name:  "rankings",
				Usage: "Rank donors by frequency, kg or money",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "by",
						Usage: "frequency, kg or money",
						Value: "frequency",
					},
					output(),
				},
				Action: r.ReportRankings,
			},
		},
	}
}

// cleanupCommand removes orphaned donations
func cleanupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "cleanup",
		Usage:  "Delete donations whose donor or recipient no longer exists",
		Action: r.Cleanup,
	}
}

// sessionCommand runs a request-queue script
func sessionCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "session",
		Usage: "Run request, urgent and distribute commands from a script",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "file",
				Usage: "Script path (reads stdin when empty or -)",
			},
		},
		Action: r.Session,
	}
}

// consoleCommand returns the interactive console command.
func consoleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "console",
		Aliases: []string{"tui", "ui"},
		Usage:   "Launch the interactive request console",
		Action:  r.Console,
	}
}
