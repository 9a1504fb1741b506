package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/pantry/internal/models"
	"github.com/desertthunder/pantry/internal/shared"
)

var _ models.Repository[*models.Donation] = (*DonationRepository)(nil)

const donationColumns = `id, sequence, donor_id, donor_name, recipient_id, kind, food_type, quantity, money_amount, donated_on, created_at`

// DonationRepository implements [models.Repository] for [models.Donation] ledger entries.
type DonationRepository struct {
	db *sql.DB
}

// NewDonationRepository creates a new [DonationRepository] with the given database connection
func NewDonationRepository(db *sql.DB) *DonationRepository {
	return &DonationRepository{db: db}
}

// Create validates the donation, then inserts it with a generated ID and sequence
func (r *DonationRepository) Create(d *models.Donation) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(r.db, "donations")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO donations (` + donationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	id := shared.GenerateID()
	_, err = r.db.Exec(query,
		id, sequence, d.DonorID, d.DonorName, d.RecipientID, string(d.Kind),
		d.FoodType, d.Quantity, d.MoneyAmount, d.Date, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert donation: %w", err)
	}

	d.ID = id
	d.Sequence = sequence
	return nil
}

// Get retrieves a donation by ID
func (r *DonationRepository) Get(id string) (*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE id = ?`

	d, err := scanDonation(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrDonationNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query donation: %w", err)
	}
	return d, nil
}

// Delete removes a donation by ID
func (r *DonationRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM donations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete donation: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s", shared.ErrDonationNotFound, id)
	}
	return nil
}

// List retrieves donations in recording order, filtered by the optional
// criteria keys "donor_id" (int), "recipient_id" (int) and "kind" ([models.DonationKind] or string).
func (r *DonationRepository) List(criteria map[string]any) ([]*models.Donation, error) {
	query := `SELECT ` + donationColumns + ` FROM donations WHERE 1 = 1`
	args := []any{}

	if donorID, ok := criteria["donor_id"].(int); ok {
		query += " AND donor_id = ?"
		args = append(args, donorID)
	}

	if recipientID, ok := criteria["recipient_id"].(int); ok {
		query += " AND recipient_id = ?"
		args = append(args, recipientID)
	}

	switch kind := criteria["kind"].(type) {
	case models.DonationKind:
		query += " AND kind = ?"
		args = append(args, string(kind))
	case string:
		if kind != "" {
			query += " AND kind = ?"
			args = append(args, kind)
		}
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query donations: %w", err)
	}
	defer rows.Close()

	var donations []*models.Donation
	for rows.Next() {
		d, err := scanDonation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan donation: %w", err)
		}
		donations = append(donations, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return donations, nil
}

// DeleteByDonor removes every donation made by donorID and returns how many were removed
func (r *DonationRepository) DeleteByDonor(donorID int) (int, error) {
	return r.deleteWhere("donor_id = ?", donorID)
}

// DeleteByRecipient removes every donation made to recipientID and returns how many were removed
func (r *DonationRepository) DeleteByRecipient(recipientID int) (int, error) {
	return r.deleteWhere("recipient_id = ?", recipientID)
}

func (r *DonationRepository) deleteWhere(cond string, args ...any) (int, error) {
	result, err := r.db.Exec(`DELETE FROM donations WHERE `+cond, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete donations: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return int(rows), nil
}

// Count returns the number of recorded donations
func (r *DonationRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM donations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count donations: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDonation(s scanner) (*models.Donation, error) {
	var (
		d    models.Donation
		kind string
	)

	err := s.Scan(
		&d.ID, &d.Sequence, &d.DonorID, &d.DonorName, &d.RecipientID, &kind,
		&d.FoodType, &d.Quantity, &d.MoneyAmount, &d.Date, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	d.Kind = models.DonationKind(kind)
	return &d, nil
}
