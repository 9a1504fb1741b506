// package formatter renders donation, donor and distribution reports as text, CSV or Markdown
package formatter

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"fmt"
	"iter"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/desertthunder/pantry/internal/models"
	"github.com/desertthunder/pantry/internal/shared"
)

const rule = "══════════════════════"

// SortBy selects the ordering of a donation report.
type SortBy string

const (
	SortByQuantity SortBy = "quantity" // highest kg first
	SortByDate     SortBy = "date"     // newest first
	SortByMoney    SortBy = "money"    // money donations first, highest amount first
)

// RankBy selects the metric donors are ranked by.
type RankBy string

const (
	RankByFrequency RankBy = "frequency"
	RankByKg        RankBy = "kg"
	RankByMoney     RankBy = "money"
)

// Format selects the report encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

// ParseSortBy validates a --sort flag value. Empty means [SortByQuantity].
func ParseSortBy(s string) (SortBy, error) {
	switch by := SortBy(strings.ToLower(strings.TrimSpace(s))); by {
	case "":
		return SortByQuantity, nil
	case SortByQuantity, SortByDate, SortByMoney:
		return by, nil
	default:
		return "", fmt.Errorf("%w: sort %q (want quantity, date or money)", shared.ErrInvalidFlag, s)
	}
}

// ParseRankBy validates a --by flag value. Empty means [RankByFrequency].
func ParseRankBy(s string) (RankBy, error) {
	switch by := RankBy(strings.ToLower(strings.TrimSpace(s))); by {
	case "":
		return RankByFrequency, nil
	case RankByFrequency, RankByKg, RankByMoney:
		return by, nil
	default:
		return "", fmt.Errorf("%w: rank %q (want frequency, kg or money)", shared.ErrInvalidFlag, s)
	}
}

// ParseFormat validates a --format flag value. Empty means [FormatText].
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatText, nil
	case "md":
		return FormatMarkdown, nil
	case FormatText, FormatCSV, FormatMarkdown:
		return f, nil
	default:
		return "", fmt.Errorf("%w: format %q (want text, csv or markdown)", shared.ErrInvalidFlag, s)
	}
}

// SortDonations returns a sorted copy of ds. The sort is stable so ties keep recording order.
//
// Dates are compared as calendar dates; entries with unparseable dates sort last.
func SortDonations(ds []*models.Donation, by SortBy) []*models.Donation {
	sorted := slices.Clone(ds)

	switch by {
	case SortByDate:
		slices.SortStableFunc(sorted, func(a, b *models.Donation) int {
			ta, errA := shared.ParseDate(a.Date)
			tb, errB := shared.ParseDate(b.Date)
			switch {
			case errA != nil && errB != nil:
				return 0
			case errA != nil:
				return 1
			case errB != nil:
				return -1
			}
			return tb.Compare(ta)
		})
	case SortByMoney:
		slices.SortStableFunc(sorted, func(a, b *models.Donation) int {
			if a.IsMoney() != b.IsMoney() {
				if a.IsMoney() {
					return -1
				}
				return 1
			}
			return cmp.Compare(b.MoneyAmount, a.MoneyAmount)
		})
	default:
		slices.SortStableFunc(sorted, func(a, b *models.Donation) int {
			return cmp.Compare(b.Quantity, a.Quantity)
		})
	}

	return sorted
}

func describe(d *models.Donation) string {
	if d.IsMoney() {
		return fmt.Sprintf("Date: %s | Donor: %s | Recipient ID: %d | Donation: Money | Amount: $%.2f",
			d.Date, d.DonorName, d.RecipientID, d.MoneyAmount)
	}
	return fmt.Sprintf("Date: %s | Donor: %s | Recipient ID: %d | Food: %s | Quantity: %d kg",
		d.Date, d.DonorName, d.RecipientID, d.FoodType, d.Quantity)
}

func totals(ds []*models.Donation) (kg int, money float64) {
	for _, d := range ds {
		if d.IsMoney() {
			money += d.MoneyAmount
		} else {
			kg += d.Quantity
		}
	}
	return kg, money
}

// DonationReport lists every donation in the requested order followed by money and food totals.
func DonationReport(ds []*models.Donation, by SortBy) []byte {
	var buf bytes.Buffer
	if len(ds) == 0 {
		buf.WriteString("No donations recorded.\n")
		return buf.Bytes()
	}

	buf.WriteString("=== Donation Report ===\n")
	for _, d := range SortDonations(ds, by) {
		buf.WriteString(describe(d) + "\n")
	}

	kg, money := totals(ds)
	fmt.Fprintf(&buf, "%s\nTotal Money Donated: $%.2f\nTotal Food Donated: %d kg\n%s\n", rule, money, kg, rule)
	return buf.Bytes()
}

// DistributionReport prints each recipient's block, adding the money the ledger
// attributes to it when there is any.
func DistributionReport(recipients iter.Seq[*models.Recipient], ds []*models.Donation) ([]byte, error) {
	moneyReceived := make(map[int]float64)
	for _, d := range ds {
		if d.IsMoney() {
			moneyReceived[d.RecipientID] += d.MoneyAmount
		}
	}

	var buf bytes.Buffer
	count := 0
	for rec := range recipients {
		if count == 0 {
			buf.WriteString("=== Recipient Distribution Report ===\n")
		}
		count++

		if err := rec.Display(&buf); err != nil {
			return nil, err
		}
		if m, ok := moneyReceived[rec.ID()]; ok {
			fmt.Fprintf(&buf, "Ledger Money Received: $%.2f\n", m)
		}
		fmt.Fprintf(&buf, "Pending Requests: %d\n", rec.PendingRequests())
	}

	if count == 0 {
		buf.WriteString("No recipients available for reporting.\n")
	}
	return buf.Bytes(), nil
}

func renderTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	return t.String() + "\n"
}

// DonorReport tabulates registered donors in registration order.
func DonorReport(donors []models.Donor) []byte {
	var buf bytes.Buffer
	if len(donors) == 0 {
		buf.WriteString("No donors available for reporting.\n")
		return buf.Bytes()
	}

	rows := make([][]string, 0, len(donors))
	for _, d := range donors {
		rows = append(rows, []string{
			strconv.Itoa(d.ID),
			d.Name,
			d.Contact,
			strconv.Itoa(d.Frequency),
			fmt.Sprintf("$%.2f", d.MoneyDonated),
		})
	}

	buf.WriteString("=== Donor Report ===\n")
	buf.WriteString(renderTable([]string{"ID", "Name", "Contact", "Donations", "Money"}, rows))
	return buf.Bytes()
}

// OverallSummary totals the donation ledger.
func OverallSummary(ds []*models.Donation) []byte {
	var buf bytes.Buffer
	kg, money := totals(ds)

	buf.WriteString("Overall Summary of Donations:\n")
	fmt.Fprintf(&buf, "Total Donations: %d\n", len(ds))
	fmt.Fprintf(&buf, "Total Food Donated: %d kg\n", kg)
	fmt.Fprintf(&buf, "Total Money Donated: $%.2f\n", money)
	buf.WriteString(strings.Repeat("-", 34) + "\n")
	return buf.Bytes()
}

// DistributionSummary totals what recipients have received.
func DistributionSummary(recipients iter.Seq[*models.Recipient]) []byte {
	var (
		count     int
		kg, money float64
		donations int
	)
	for rec := range recipients {
		count++
		kg += rec.TotalKg()
		money += rec.TotalMoney()
		donations += rec.DonationCount()
	}

	var buf bytes.Buffer
	buf.WriteString("=== Distribution Summary ===\n")
	fmt.Fprintf(&buf, "Total Recipients: %d\n", count)
	fmt.Fprintf(&buf, "Total Food Distributed: %.2f kg\n", kg)
	fmt.Fprintf(&buf, "Total Money Distributed: $%.2f\n", money)
	fmt.Fprintf(&buf, "Total Donations Received: %d\n", donations)
	buf.WriteString("===========================\n")
	return buf.Bytes()
}

// Ranking is one row of a donor ranking.
type Ranking struct {
	Rank  int
	Donor models.Donor
	Value float64
}

// RankDonors orders donors by the chosen metric, highest first. Kg totals are
// summed from the ledger by donor id.
func RankDonors(donors []models.Donor, ds []*models.Donation, by RankBy) []Ranking {
	kgByDonor := make(map[int]int)
	for _, d := range ds {
		if !d.IsMoney() {
			kgByDonor[d.DonorID] += d.Quantity
		}
	}

	out := make([]Ranking, 0, len(donors))
	for _, d := range donors {
		r := Ranking{Donor: d}
		switch by {
		case RankByKg:
			r.Value = float64(kgByDonor[d.ID])
		case RankByMoney:
			r.Value = d.MoneyDonated
		default:
			r.Value = float64(d.Frequency)
		}
		out = append(out, r)
	}

	slices.SortStableFunc(out, func(a, b Ranking) int { return cmp.Compare(b.Value, a.Value) })
	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

// DonorRankings renders [RankDonors] as a table.
func DonorRankings(donors []models.Donor, ds []*models.Donation, by RankBy) []byte {
	var buf bytes.Buffer
	if len(donors) == 0 {
		buf.WriteString("No donors available for ranking.\n")
		return buf.Bytes()
	}

	var title, column string
	switch by {
	case RankByKg:
		title, column = "Kg Donated", "Kg Donated"
	case RankByMoney:
		title, column = "Money Donated", "Amount Donated"
	default:
		title, column = "Frequency", "Donations"
	}

	rows := [][]string{}
	for _, r := range RankDonors(donors, ds, by) {
		var value string
		switch by {
		case RankByKg:
			value = fmt.Sprintf("%.0f kg", r.Value)
		case RankByMoney:
			value = fmt.Sprintf("$%.2f", r.Value)
		default:
			value = fmt.Sprintf("%.0f", r.Value)
		}
		rows = append(rows, []string{strconv.Itoa(r.Rank), r.Donor.Name, value})
	}

	fmt.Fprintf(&buf, "=== Donor Rankings by %s ===\n", title)
	buf.WriteString(renderTable([]string{"Rank", "Name", column}, rows))
	return buf.Bytes()
}

// RecipientListing is the short id and name list shown before recording a donation.
func RecipientListing(recipients iter.Seq[*models.Recipient]) []byte {
	var buf bytes.Buffer
	for rec := range recipients {
		fmt.Fprintf(&buf, "ID: %d | Name: %s\n", rec.ID(), rec.Name())
	}
	if buf.Len() == 0 {
		buf.WriteString("No recipients registered.\n")
	}
	return buf.Bytes()
}

// PendingRequests lists a recipient's queued requests in service order.
func PendingRequests(rec *models.Recipient) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Pending requests for %s (ID %d):\n", rec.Name(), rec.ID())

	i := 0
	for e := range rec.Requests().PeekAll() {
		i++
		fmt.Fprintf(&buf, "%d. %d kg\n", i, e.Quantity)
	}
	if i == 0 {
		buf.WriteString("No pending requests.\n")
	}
	return buf.Bytes()
}

// ExportDonationsCSV converts donations to CSV with columns: Sequence, Date, Donor ID, Donor, Recipient ID, Kind, Food, Quantity, Amount
func ExportDonationsCSV(ds []*models.Donation) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Sequence", "Date", "Donor ID", "Donor", "Recipient ID", "Kind", "Food", "Quantity", "Amount"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, d := range ds {
		record := []string{
			strconv.Itoa(d.Sequence),
			d.Date,
			strconv.Itoa(d.DonorID),
			d.DonorName,
			strconv.Itoa(d.RecipientID),
			string(d.Kind),
			d.FoodType,
			strconv.Itoa(d.Quantity),
			strconv.FormatFloat(d.MoneyAmount, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportDonationsMarkdown converts donations to a Markdown document with a totals header and a table
func ExportDonationsMarkdown(ds []*models.Donation) ([]byte, error) {
	var buf bytes.Buffer
	kg, money := totals(ds)

	buf.WriteString("# Donations\n\n")
	buf.WriteString(fmt.Sprintf("**Donations**: %d\n", len(ds)))
	buf.WriteString(fmt.Sprintf("**Food**: %d kg\n", kg))
	buf.WriteString(fmt.Sprintf("**Money**: $%.2f\n\n", money))

	if len(ds) == 0 {
		return buf.Bytes(), nil
	}

	buf.WriteString("| Date | Donor | Recipient | Donation |\n")
	buf.WriteString("| --- | --- | --- | --- |\n")
	for _, d := range ds {
		var what string
		if d.IsMoney() {
			what = fmt.Sprintf("$%.2f", d.MoneyAmount)
		} else {
			what = fmt.Sprintf("%d kg %s", d.Quantity, d.FoodType)
		}
		buf.WriteString(fmt.Sprintf("| %s | %s | %d | %s |\n", d.Date, escapeCell(d.DonorName), d.RecipientID, escapeCell(what)))
	}

	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// Render encodes donations in the requested format. Text output is a [DonationReport].
func Render(ds []*models.Donation, by SortBy, f Format) ([]byte, error) {
	sorted := SortDonations(ds, by)
	switch f {
	case FormatCSV:
		return ExportDonationsCSV(sorted)
	case FormatMarkdown:
		return ExportDonationsMarkdown(sorted)
	default:
		return DonationReport(ds, by), nil
	}
}

// WriteExport writes report data to path.
func WriteExport(path string, data []byte) error {
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}
