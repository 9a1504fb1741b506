package registry

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/pantry/internal/models"
	"github.com/desertthunder/pantry/internal/shared"
)

// memStore is an in-memory [Store] that counts saves and can be told to fail.
type memStore struct {
	records []Record
	bad     []error
	saves   int
	saveErr error
	loadErr error
}

func (m *memStore) Load() ([]Record, []error, error) {
	return append([]Record(nil), m.records...), m.bad, m.loadErr
}

func (m *memStore) Save(records []Record) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.records = append([]Record(nil), records...)
	return nil
}

func (m *memStore) Clear() error {
	return m.Save(nil)
}

func ids(r *Registry) []int {
	var out []int
	for rec := range r.All() {
		out = append(out, rec.ID())
	}
	return out
}

func storedIDs(t *testing.T, path string) []int {
	t.Helper()
	records, _, err := NewFileStore(path).Load()
	if err != nil {
		t.Fatalf("failed to read store: %v", err)
	}
	var out []int
	for _, rec := range records {
		out = append(out, rec.ID)
	}
	return out
}

func TestRegistry(t *testing.T) {
	t.Run("AddRecipient", func(t *testing.T) {
		t.Run("indexes and preserves insertion order", func(t *testing.T) {
			r := New(&memStore{})
			for _, id := range []int{103, 101, 102} {
				if err := r.AddRecipient(models.NewRecipient(id, "R")); err != nil {
					t.Fatalf("add %d: %v", id, err)
				}
			}

			got := ids(r)
			if len(got) != 3 || got[0] != 103 || got[1] != 101 || got[2] != 102 {
				t.Errorf("unexpected order %v", got)
			}
			for _, id := range got {
				if _, ok := r.FindByID(id); !ok {
					t.Errorf("id %d missing from index", id)
				}
			}
		})

		t.Run("duplicate id is rejected and leaves the original untouched", func(t *testing.T) {
			r := New(&memStore{})
			original := models.NewRecipient(101, "Food Bank")
			original.ApplyFoodDonation(4)
			if err := r.AddRecipient(original); err != nil {
				t.Fatalf("add: %v", err)
			}

			err := r.AddRecipient(models.NewRecipient(101, "Impostor"))
			if !errors.Is(err, shared.ErrDuplicateRecipient) {
				t.Fatalf("expected ErrDuplicateRecipient, got %v", err)
			}
			if r.Size() != 1 {
				t.Errorf("expected size 1, got %d", r.Size())
			}

			got, _ := r.FindByID(101)
			if got.Name() != "Food Bank" || got.TotalKg() != 4 || got.DonationCount() != 1 {
				t.Errorf("original recipient changed: %s %v %d", got.Name(), got.TotalKg(), got.DonationCount())
			}
		})

		t.Run("rejects names the store cannot hold", func(t *testing.T) {
			r := New(&memStore{})
			err := r.AddRecipient(models.NewRecipient(1, "two\nlines"))
			if !errors.Is(err, shared.ErrInvalidName) {
				t.Fatalf("expected ErrInvalidName, got %v", err)
			}
			if r.Size() != 0 {
				t.Errorf("expected empty registry, got %d", r.Size())
			}
		})

		t.Run("nil recipient", func(t *testing.T) {
			if err := New(&memStore{}).AddRecipient(nil); !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("auto-save scenario", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "recipients.dat")
		r := New(NewFileStore(path))

		if err := r.AddRecipient(models.NewRecipient(101, "Food Bank")); err != nil {
			t.Fatalf("add 101: %v", err)
		}
		if got := storedIDs(t, path); len(got) != 1 || got[0] != 101 {
			t.Fatalf("expected store to hold [101], got %v", got)
		}

		r.SetAutoSave(false)
		if err := r.AddRecipient(models.NewRecipient(102, "Shelter")); err != nil {
			t.Fatalf("add 102: %v", err)
		}
		if got := storedIDs(t, path); len(got) != 1 {
			t.Fatalf("expected store to still hold only 101, got %v", got)
		}
		if !r.Dirty() {
			t.Error("expected registry to be dirty")
		}

		if err := r.ForceSave(); err != nil {
			t.Fatalf("ForceSave: %v", err)
		}
		if got := storedIDs(t, path); len(got) != 2 || got[1] != 102 {
			t.Fatalf("expected [101 102], got %v", got)
		}
		if r.Dirty() {
			t.Error("expected registry to be clean after ForceSave")
		}
	})

	t.Run("persist and reload round trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "recipients.dat")
		r := New(NewFileStore(path))

		for _, rec := range []*models.Recipient{
			models.NewRecipient(101, "Food Bank"),
			models.NewRecipient(102, "Shelter"),
		} {
			if err := r.AddRecipient(rec); err != nil {
				t.Fatalf("add: %v", err)
			}
		}

		fb, _ := r.FindByID(101)
		fb.ApplyFoodDonation(7.25)
		fb.ApplyMoneyDonation(19.99)
		fb.IncrementDonationCount()
		fb.RequestFood(3)

		if err := r.ForceSave(); err != nil {
			t.Fatalf("ForceSave: %v", err)
		}

		reloaded, err := Load(NewFileStore(path))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if reloaded.Size() != 2 {
			t.Fatalf("expected 2 recipients, got %d", reloaded.Size())
		}

		got, ok := reloaded.FindByID(101)
		if !ok {
			t.Fatal("101 missing after reload")
		}
		if got.Name() != "Food Bank" || got.TotalKg() != 7.25 || got.DonationCount() != 2 || got.TotalMoney() != 19.99 {
			t.Errorf("unexpected reloaded state: %s %v %d %v", got.Name(), got.TotalKg(), got.DonationCount(), got.TotalMoney())
		}
		if got.PendingRequests() != 0 {
			t.Errorf("request queues are not persisted, got %d pending", got.PendingRequests())
		}
	})

	t.Run("Load skips malformed records and keeps the rest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "recipients.dat")
		body := "101\nFood Bank\n1\n1\n0\nx01\nBroken\n1\n1\n0\n102\nShelter\n2\n2\n0\n"
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatalf("write: %v", err)
		}

		var logs bytes.Buffer
		r, err := Load(NewFileStore(path), WithLogger(shared.NewLogger(&logs)))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}

		got := ids(r)
		if len(got) != 2 || got[0] != 101 || got[1] != 102 {
			t.Errorf("expected [101 102], got %v", got)
		}
		if !strings.Contains(logs.String(), "malformed") {
			t.Errorf("expected malformed record to be logged, got %q", logs.String())
		}
	})

	t.Run("Load keeps the first of duplicate ids in the store", func(t *testing.T) {
		store := &memStore{records: []Record{
			{ID: 1, Name: "first", TotalKg: 1},
			{ID: 1, Name: "second", TotalKg: 2},
		}}
		r, err := Load(store)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		got, _ := r.FindByID(1)
		if r.Size() != 1 || got.Name() != "first" {
			t.Errorf("expected only the first record, got size %d name %s", r.Size(), got.Name())
		}
	})

	t.Run("Reload does not overwrite in-memory recipients", func(t *testing.T) {
		store := &memStore{records: []Record{{ID: 1, Name: "stored", TotalKg: 1}}}
		r, err := Load(store, WithAutoSave(false))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}

		rec, _ := r.FindByID(1)
		rec.ApplyFoodDonation(10)

		store.records = append(store.records, Record{ID: 2, Name: "new"})
		if err := r.Reload(); err != nil {
			t.Fatalf("Reload: %v", err)
		}

		rec, _ = r.FindByID(1)
		if rec.TotalKg() != 11 {
			t.Errorf("in-memory recipient overwritten: %v kg", rec.TotalKg())
		}
		if r.Size() != 2 {
			t.Errorf("expected new record loaded, size %d", r.Size())
		}
		if store.saves != 0 {
			t.Errorf("reload must not save, saw %d saves", store.saves)
		}
	})

	t.Run("Load surfaces unreadable stores", func(t *testing.T) {
		r, err := Load(&memStore{loadErr: errors.New("disk on fire")})
		if err == nil {
			t.Fatal("expected error")
		}
		if r == nil || r.Size() != 0 {
			t.Error("expected a usable empty registry")
		}
	})

	t.Run("Load keeps records read before a store failure", func(t *testing.T) {
		store := &memStore{
			records: []Record{{ID: 101, Name: "Food Bank"}, {ID: 102, Name: "Shelter"}},
			loadErr: errors.New("short read"),
		}
		r, err := Load(store)
		if err == nil {
			t.Fatal("expected error")
		}

		got := ids(r)
		if len(got) != 2 || got[0] != 101 || got[1] != 102 {
			t.Errorf("expected [101 102], got %v", got)
		}
	})

	t.Run("failed save keeps memory state", func(t *testing.T) {
		store := &memStore{saveErr: errors.New("read-only")}
		r := New(store)

		err := r.AddRecipient(models.NewRecipient(101, "Food Bank"))
		if !errors.Is(err, shared.ErrStoreWrite) {
			t.Fatalf("expected ErrStoreWrite, got %v", err)
		}
		if _, ok := r.FindByID(101); !ok {
			t.Error("recipient should remain in memory after failed save")
		}
		if !r.Dirty() {
			t.Error("registry should stay dirty after failed save")
		}
	})

	t.Run("UpdateRecipient", func(t *testing.T) {
		store := &memStore{}
		r := New(store)
		if err := r.AddRecipient(models.NewRecipient(101, "Food Bank")); err != nil {
			t.Fatalf("add: %v", err)
		}
		saves := store.saves

		found, err := r.UpdateRecipient(101, 2.5)
		if err != nil || !found {
			t.Fatalf("UpdateRecipient: %v %v", found, err)
		}
		rec, _ := r.FindByID(101)
		if rec.TotalKg() != 2.5 || rec.DonationCount() != 1 {
			t.Errorf("unexpected totals %v %d", rec.TotalKg(), rec.DonationCount())
		}
		if store.saves != saves+1 {
			t.Errorf("expected auto-save after update")
		}

		found, err = r.UpdateRecipient(999, 1)
		if found || err != nil {
			t.Errorf("expected not found without error, got %v %v", found, err)
		}
	})

	t.Run("Remove keeps index and order consistent", func(t *testing.T) {
		r := New(&memStore{})
		for _, id := range []int{1, 2, 3, 4} {
			if err := r.AddRecipient(models.NewRecipient(id, "R")); err != nil {
				t.Fatalf("add: %v", err)
			}
		}

		removed, err := r.Remove(2)
		if err != nil || !removed {
			t.Fatalf("Remove: %v %v", removed, err)
		}

		got := ids(r)
		if len(got) != 3 || got[0] != 1 || got[1] != 3 || got[2] != 4 {
			t.Errorf("unexpected order %v", got)
		}
		for _, id := range got {
			rec, ok := r.FindByID(id)
			if !ok || rec.ID() != id {
				t.Errorf("index broken for %d", id)
			}
		}
		if _, ok := r.FindByID(2); ok {
			t.Error("2 should be gone")
		}

		removed, _ = r.Remove(2)
		if removed {
			t.Error("second remove should report false")
		}

		if err := r.AddRecipient(models.NewRecipient(2, "again")); err != nil {
			t.Errorf("re-adding a removed id should work: %v", err)
		}
	})

	t.Run("distribution scenario", func(t *testing.T) {
		store := &memStore{}
		r := New(store)
		if err := r.AddRecipient(models.NewRecipient(101, "Food Bank")); err != nil {
			t.Fatalf("add: %v", err)
		}

		if err := r.RequestFood(101, 5, false); err != nil {
			t.Fatalf("request: %v", err)
		}
		if err := r.RequestFood(101, 9, true); err != nil {
			t.Fatalf("urgent request: %v", err)
		}

		rec, _ := r.FindByID(101)
		var order []int
		for e := range rec.Requests().PeekAll() {
			order = append(order, e.Quantity)
		}
		if len(order) != 2 || order[0] != 9 || order[1] != 5 {
			t.Fatalf("expected [9 5], got %v", order)
		}

		e, ok, err := r.DistributeFood(101)
		if err != nil || !ok || e.Quantity != 9 || rec.TotalKg() != 9 {
			t.Fatalf("first distribution: %+v %v %v kg=%v", e, ok, err, rec.TotalKg())
		}

		e, ok, err = r.DistributeFood(101)
		if err != nil || !ok || e.Quantity != 5 || rec.TotalKg() != 14 {
			t.Fatalf("second distribution: %+v %v %v kg=%v", e, ok, err, rec.TotalKg())
		}

		saves := store.saves
		_, ok, err = r.DistributeFood(101)
		if err != nil || ok {
			t.Fatalf("third distribution should report nothing pending: %v %v", ok, err)
		}
		if rec.TotalKg() != 14 {
			t.Errorf("total changed: %v", rec.TotalKg())
		}
		if store.saves != saves {
			t.Error("empty distribution must not save")
		}
		if store.records[0].TotalKg != 14 {
			t.Errorf("expected persisted total 14, got %v", store.records[0].TotalKg)
		}
	})

	t.Run("request helpers report unknown ids", func(t *testing.T) {
		r := New(&memStore{})
		if err := r.RequestFood(5, 1, false); !errors.Is(err, shared.ErrRecipientNotFound) {
			t.Errorf("expected ErrRecipientNotFound, got %v", err)
		}
		if _, _, err := r.DistributeFood(5); !errors.Is(err, shared.ErrRecipientNotFound) {
			t.Errorf("expected ErrRecipientNotFound, got %v", err)
		}
	})

	t.Run("TotalDistributed is recomputed", func(t *testing.T) {
		r := New(&memStore{})
		a := models.NewRecipient(1, "A")
		b := models.NewRecipient(2, "B")
		r.AddRecipient(a)
		r.AddRecipient(b)

		a.ApplyFoodDonation(1.5)
		b.ApplyFoodDonation(2)
		if got := r.TotalDistributed(); got != 3.5 {
			t.Errorf("expected 3.5, got %v", got)
		}

		b.ApplyFoodDonation(1)
		if got := r.TotalDistributed(); got != 4.5 {
			t.Errorf("expected 4.5, got %v", got)
		}
	})

	t.Run("DisplayAll", func(t *testing.T) {
		r := New(&memStore{})
		r.AddRecipient(models.NewRecipient(101, "Food Bank"))
		r.AddRecipient(models.NewRecipient(102, "Shelter"))

		var buf bytes.Buffer
		if err := r.DisplayAll(&buf); err != nil {
			t.Fatalf("DisplayAll: %v", err)
		}
		out := buf.String()
		if strings.Index(out, "Food Bank") > strings.Index(out, "Shelter") {
			t.Error("expected insertion order in listing")
		}
		if !strings.Contains(out, "Total kg received: 0.00") {
			t.Errorf("unexpected listing: %s", out)
		}
	})

	t.Run("Clear wipes memory and store", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "recipients.dat")
		r := New(NewFileStore(path))
		r.AddRecipient(models.NewRecipient(101, "Food Bank"))

		if err := r.Clear(); err != nil {
			t.Fatalf("Clear: %v", err)
		}
		if r.Size() != 0 {
			t.Errorf("expected empty registry, got %d", r.Size())
		}
		if _, ok := r.FindByID(101); ok {
			t.Error("index should be empty")
		}
		if got := storedIDs(t, path); len(got) != 0 {
			t.Errorf("expected empty store, got %v", got)
		}
	})

	t.Run("SeedDefaults batches into one save", func(t *testing.T) {
		store := &memStore{records: []Record{{ID: 101, Name: "Food Bank", TotalKg: 5}}}
		r, err := Load(store)
		if err != nil {
			t.Fatalf("Load: %v", err)
		}

		added, err := r.SeedDefaults([]shared.DefaultRecipient{
			{ID: 101, Name: "Food Bank"},
			{ID: 102, Name: "Shelter"},
			{ID: 103, Name: "Kitchen"},
		})
		if err != nil {
			t.Fatalf("SeedDefaults: %v", err)
		}
		if added != 2 {
			t.Errorf("expected 2 added, got %d", added)
		}
		if store.saves != 1 {
			t.Errorf("expected a single save, got %d", store.saves)
		}
		if !r.AutoSave() {
			t.Error("auto-save should be restored")
		}

		rec, _ := r.FindByID(101)
		if rec.TotalKg() != 5 {
			t.Error("existing recipient should be untouched")
		}

		added, err = r.SeedDefaults([]shared.DefaultRecipient{{ID: 101, Name: "Food Bank"}})
		if err != nil || added != 0 {
			t.Errorf("expected no-op reseed, got %d %v", added, err)
		}
		if store.saves != 1 {
			t.Errorf("clean reseed must not save, got %d saves", store.saves)
		}
	})

	t.Run("Close saves", func(t *testing.T) {
		store := &memStore{}
		r := New(store, WithAutoSave(false))
		r.AddRecipient(models.NewRecipient(1, "A"))
		if err := r.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if len(store.records) != 1 {
			t.Errorf("expected final save, got %v", store.records)
		}
	})
}
