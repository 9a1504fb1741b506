package main

import (
	"context"

	"github.com/desertthunder/pantry/internal/formatter"
	"github.com/urfave/cli/v3"
)

// emit writes data to --output when set, otherwise to the runner's output.
func (r *Runner) emit(cmd *cli.Command, data []byte) error {
	path := cmd.String("output")
	if path == "" {
		return r.writeBytes(data)
	}

	if err := formatter.WriteExport(path, data); err != nil {
		return err
	}
	r.logger.Info("report written", "path", path, "bytes", len(data))
	return r.writePlain("Report written to %s\n", path)
}

// ReportDonations lists donations in the requested order and format.
func (r *Runner) ReportDonations(ctx context.Context, cmd *cli.Command) error {
	by, err := formatter.ParseSortBy(cmd.String("sort"))
	if err != nil {
		return err
	}
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	ds, err := r.ledger.Donations()
	if err != nil {
		return err
	}
	data, err := formatter.Render(ds, by, format)
	if err != nil {
		return err
	}
	return r.emit(cmd, data)
}

// ReportDistribution prints per-recipient totals.
func (r *Runner) ReportDistribution(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	ds, err := r.ledger.Donations()
	if err != nil {
		return err
	}
	data, err := formatter.DistributionReport(r.registry.All(), ds)
	if err != nil {
		return err
	}
	return r.emit(cmd, data)
}

// ReportDonors prints the donor roster as a table.
func (r *Runner) ReportDonors(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}
	return r.emit(cmd, formatter.DonorReport(r.roster.List()))
}

// ReportSummary prints overall donation totals.
func (r *Runner) ReportSummary(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	ds, err := r.ledger.Donations()
	if err != nil {
		return err
	}
	return r.emit(cmd, formatter.OverallSummary(ds))
}

// ReportDistributionSummary prints totals across all recipients.
func (r *Runner) ReportDistributionSummary(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}
	return r.emit(cmd, formatter.DistributionSummary(r.registry.All()))
}

// ReportRankings ranks donors by frequency, kg or money.
func (r *Runner) ReportRankings(ctx context.Context, cmd *cli.Command) error {
	by, err := formatter.ParseRankBy(cmd.String("by"))
	if err != nil {
		return err
	}
	if err := r.open(); err != nil {
		return err
	}

	ds, err := r.ledger.Donations()
	if err != nil {
		return err
	}
	return r.emit(cmd, formatter.DonorRankings(r.roster.List(), ds, by))
}

// Cleanup deletes donations whose donor or recipient is gone.
func (r *Runner) Cleanup(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(); err != nil {
		return err
	}

	n, err := r.ledger.CleanupOrphans()
	if err != nil {
		return err
	}
	return r.writePlain("Removed %d orphaned donations.\n", n)
}
