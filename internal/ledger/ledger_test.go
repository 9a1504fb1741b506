package ledger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/desertthunder/pantry/internal/donors"
	"github.com/desertthunder/pantry/internal/models"
	"github.com/desertthunder/pantry/internal/registry"
	"github.com/desertthunder/pantry/internal/repositories"
	"github.com/desertthunder/pantry/internal/shared"
)

type fixture struct {
	ledger     *Ledger
	recipients *registry.Registry
	roster     *donors.Roster
	repo       *repositories.DonationRepository
	dir        string
}

func setup(t *testing.T) *fixture {
	t.Helper()
	dir := t.TempDir()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	recipients := registry.New(registry.NewFileStore(filepath.Join(dir, "recipients.dat")), registry.WithAutoSave(false))
	for _, rec := range []*models.Recipient{models.NewRecipient(101, "Food Bank"), models.NewRecipient(102, "Shelter")} {
		if err := recipients.AddRecipient(rec); err != nil {
			t.Fatalf("failed to add recipient: %v", err)
		}
	}

	roster, err := donors.Open(filepath.Join(dir, "donors.dat"))
	if err != nil {
		t.Fatalf("failed to open roster: %v", err)
	}
	for _, d := range []*models.Donor{{ID: 200, Name: "Alice"}, {ID: 300, Name: "Bob"}} {
		if err := roster.Add(d); err != nil {
			t.Fatalf("failed to add donor: %v", err)
		}
	}

	repo := repositories.NewDonationRepository(db)
	return &fixture{
		ledger:     New(recipients, roster, repo, nil),
		recipients: recipients,
		roster:     roster,
		repo:       repo,
		dir:        dir,
	}
}

func TestRecordFood(t *testing.T) {
	t.Run("updates donor, recipient and ledger", func(t *testing.T) {
		f := setup(t)

		d, err := f.ledger.RecordFood(FoodInput{DonorName: "Alice", RecipientID: 101, FoodType: "Rice", Quantity: 12, Date: "05-03-2025"})
		if err != nil {
			t.Fatalf("RecordFood failed: %v", err)
		}
		if d.ID == "" || d.DonorID != 200 || d.Kind != models.FoodDonation {
			t.Errorf("unexpected donation %+v", d)
		}

		rec, _ := f.recipients.FindByID(101)
		if rec.TotalKg() != 12 || rec.DonationCount() != 1 {
			t.Errorf("unexpected recipient totals %v %d", rec.TotalKg(), rec.DonationCount())
		}

		donor, _ := f.roster.FindByID(200)
		if donor.Frequency != 1 {
			t.Errorf("expected frequency 1, got %d", donor.Frequency)
		}

		if f.recipients.Dirty() || f.roster.Dirty() {
			t.Error("registry and roster should be written even with auto-save off")
		}

		reloaded, err := registry.Load(registry.NewFileStore(filepath.Join(f.dir, "recipients.dat")))
		if err != nil {
			t.Fatalf("reload failed: %v", err)
		}
		if rec, _ := reloaded.FindByID(101); rec.TotalKg() != 12 {
			t.Errorf("expected persisted total 12, got %v", rec.TotalKg())
		}
	})

	t.Run("validation", func(t *testing.T) {
		tc := []struct {
			name string
			in   FoodInput
			want error
		}{
			{"unknown donor", FoodInput{DonorName: "Zed", RecipientID: 101, Quantity: 1, Date: "01-01-2025"}, shared.ErrDonorNotFound},
			{"unknown recipient", FoodInput{DonorName: "Alice", RecipientID: 999, Quantity: 1, Date: "01-01-2025"}, shared.ErrRecipientNotFound},
			{"zero quantity", FoodInput{DonorName: "Alice", RecipientID: 101, Quantity: 0, Date: "01-01-2025"}, shared.ErrInvalidQuantity},
			{"bad date", FoodInput{DonorName: "Alice", RecipientID: 101, Quantity: 1, Date: "32-01-2025"}, shared.ErrInvalidDate},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				f := setup(t)
				if _, err := f.ledger.RecordFood(tt.in); !errors.Is(err, tt.want) {
					t.Fatalf("expected %v, got %v", tt.want, err)
				}

				rec, _ := f.recipients.FindByID(101)
				if rec.TotalKg() != 0 || rec.DonationCount() != 0 {
					t.Error("rejected donation must not change the recipient")
				}
				if n, _ := f.repo.Count(); n != 0 {
					t.Errorf("rejected donation must not be stored, found %d", n)
				}
			})
		}
	})
}

func TestRecordMoney(t *testing.T) {
	f := setup(t)

	if _, err := f.ledger.RecordMoney(MoneyInput{DonorName: "Bob", RecipientID: 102, Amount: 40.5, Date: "06-03-2025"}); err != nil {
		t.Fatalf("RecordMoney failed: %v", err)
	}

	rec, _ := f.recipients.FindByID(102)
	if rec.TotalMoney() != 40.5 || rec.DonationCount() != 1 || rec.TotalKg() != 0 {
		t.Errorf("unexpected recipient totals %v %d %v", rec.TotalMoney(), rec.DonationCount(), rec.TotalKg())
	}

	donor, _ := f.roster.FindByID(300)
	if donor.Frequency != 1 || donor.MoneyDonated != 40.5 {
		t.Errorf("unexpected donor totals %+v", donor)
	}

	if _, err := f.ledger.RecordMoney(MoneyInput{DonorName: "Bob", RecipientID: 102, Amount: 0, Date: "06-03-2025"}); !errors.Is(err, shared.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestDeletion(t *testing.T) {
	record := func(t *testing.T, f *fixture) {
		t.Helper()
		inputs := []FoodInput{
			{DonorName: "Alice", RecipientID: 101, FoodType: "Rice", Quantity: 1, Date: "01-01-2025"},
			{DonorName: "Alice", RecipientID: 102, FoodType: "Rice", Quantity: 2, Date: "01-01-2025"},
			{DonorName: "Bob", RecipientID: 101, FoodType: "Beans", Quantity: 3, Date: "01-01-2025"},
		}
		for _, in := range inputs {
			if _, err := f.ledger.RecordFood(in); err != nil {
				t.Fatalf("RecordFood failed: %v", err)
			}
		}
	}

	t.Run("DeleteDonor", func(t *testing.T) {
		f := setup(t)
		record(t, f)

		n, err := f.ledger.DeleteDonor(200)
		if err != nil || n != 2 {
			t.Fatalf("DeleteDonor: %d %v", n, err)
		}
		if _, ok := f.roster.FindByID(200); ok {
			t.Error("donor should be gone")
		}
		if _, err := f.ledger.DeleteDonor(200); !errors.Is(err, shared.ErrDonorNotFound) {
			t.Errorf("expected ErrDonorNotFound, got %v", err)
		}
	})

	t.Run("RemoveRecipient", func(t *testing.T) {
		f := setup(t)
		record(t, f)

		n, err := f.ledger.RemoveRecipient(101)
		if err != nil || n != 2 {
			t.Fatalf("RemoveRecipient: %d %v", n, err)
		}
		if f.recipients.Size() != 1 {
			t.Errorf("expected 1 recipient, got %d", f.recipients.Size())
		}
		if _, err := f.ledger.RemoveRecipient(101); !errors.Is(err, shared.ErrRecipientNotFound) {
			t.Errorf("expected ErrRecipientNotFound, got %v", err)
		}
	})

	t.Run("CleanupOrphans", func(t *testing.T) {
		f := setup(t)
		record(t, f)

		f.roster.Delete(300)
		f.recipients.Remove(102)

		n, err := f.ledger.CleanupOrphans()
		if err != nil || n != 2 {
			t.Fatalf("CleanupOrphans: %d %v", n, err)
		}

		left, err := f.ledger.Donations()
		if err != nil {
			t.Fatalf("Donations failed: %v", err)
		}
		if len(left) != 1 || left[0].DonorID != 200 || left[0].RecipientID != 101 {
			t.Errorf("unexpected remaining donations %+v", left)
		}

		if n, _ := f.ledger.CleanupOrphans(); n != 0 {
			t.Errorf("second cleanup should find nothing, got %d", n)
		}
	})
}
