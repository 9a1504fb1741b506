package registry

import (
	"fmt"
	"io"
	"iter"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pantry/internal/models"
	"github.com/desertthunder/pantry/internal/queue"
	"github.com/desertthunder/pantry/internal/shared"
)

// Registry is an insertion-ordered collection of recipients with an id index.
//
// recipients and index always describe the same set: index maps an id to its
// position in recipients and both are updated together on insert and remove.
type Registry struct {
	store      Store
	logger     *log.Logger
	recipients []*models.Recipient
	index      map[int]int
	autoSave   bool
	dirty      bool
}

// Option configures a [Registry].
type Option func(*Registry)

// WithLogger sets the logger used to report duplicate keys, skipped records and save failures.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithAutoSave sets the initial auto-save mode. Registries default to auto-save on.
func WithAutoSave(enabled bool) Option {
	return func(r *Registry) { r.autoSave = enabled }
}

// New creates an empty registry backed by store.
func New(store Store, opts ...Option) *Registry {
	r := &Registry{
		store:    store,
		index:    make(map[int]int),
		autoSave: true,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = shared.NewLogger(io.Discard)
	}
	return r
}

// Load creates a registry and populates it from store.
//
// Malformed records are skipped and logged. The returned registry is usable even
// when an error is returned for an unreadable store.
func Load(store Store, opts ...Option) (*Registry, error) {
	r := New(store, opts...)
	if err := r.Reload(); err != nil {
		return r, err
	}
	return r, nil
}

// Reload reads the store again and inserts every record whose id is not already present.
//
// Recipients already in memory are never overwritten, so calling Reload repeatedly
// is harmless. Auto-save is not triggered. Records read before a store failure
// are still inserted; the failure is returned afterwards.
func (r *Registry) Reload() error {
	records, bad, err := r.store.Load()
	for _, e := range bad {
		r.logger.Warn("skipping malformed recipient record", "error", e)
	}
	loaded := 0
	for _, rec := range records {
		if _, exists := r.index[rec.ID]; exists {
			r.logger.Debug("recipient already loaded, keeping in-memory copy", "id", rec.ID)
			continue
		}

		recipient := models.RestoreRecipient(rec.ID, rec.Name, rec.TotalKg, rec.DonationCount, rec.TotalMoney)
		if err := recipient.Validate(); err != nil {
			r.logger.Warn("skipping invalid recipient record", "id", rec.ID, "error", err)
			continue
		}

		r.insert(recipient)
		loaded++
	}

	r.logger.Debug("recipients loaded", "loaded", loaded, "skipped", len(bad), "total", len(r.recipients))
	if err != nil {
		r.logger.Error("failed to read recipients", "error", err, "loaded", loaded)
		return fmt.Errorf("failed to load recipients: %w", err)
	}
	return nil
}

func (r *Registry) insert(rec *models.Recipient) {
	r.index[rec.ID()] = len(r.recipients)
	r.recipients = append(r.recipients, rec)
}

// SetAutoSave toggles whether AddRecipient, UpdateRecipient and Remove rewrite the store immediately.
func (r *Registry) SetAutoSave(enabled bool) {
	r.autoSave = enabled
}

// AutoSave reports the current auto-save mode.
func (r *Registry) AutoSave() bool {
	return r.autoSave
}

// Dirty reports whether a registry mutation happened since the last successful save.
//
// Changes made directly through a pointer from [Registry.FindByID] are not tracked;
// callers making them are expected to call [Registry.ForceSave].
func (r *Registry) Dirty() bool {
	return r.dirty
}

// AddRecipient appends rec and indexes it.
//
// A duplicate id is reported and rejected with [shared.ErrDuplicateRecipient],
// leaving the registry untouched. With auto-save on the store is rewritten; a
// failed write is returned but the recipient stays in memory.
func (r *Registry) AddRecipient(rec *models.Recipient) error {
	if rec == nil {
		return fmt.Errorf("%w: nil recipient", shared.ErrInvalidInput)
	}
	if _, exists := r.index[rec.ID()]; exists {
		r.logger.Error("recipient already exists", "id", rec.ID())
		return fmt.Errorf("%w: id %d", shared.ErrDuplicateRecipient, rec.ID())
	}
	if err := rec.Validate(); err != nil {
		return err
	}

	r.insert(rec)
	r.dirty = true
	r.logger.Debug("recipient added", "id", rec.ID(), "name", rec.Name())

	return r.saveIfAuto()
}

// UpdateRecipient applies a food donation of kg to recipient id.
//
// Returns false when the id is unknown.
func (r *Registry) UpdateRecipient(id int, kg float64) (bool, error) {
	rec, ok := r.FindByID(id)
	if !ok {
		return false, nil
	}
	rec.ApplyFoodDonation(kg)
	r.dirty = true
	return true, r.saveIfAuto()
}

// Remove deletes recipient id and its index entry. Donations referencing it are
// left for the ledger to clean up.
func (r *Registry) Remove(id int) (bool, error) {
	pos, ok := r.index[id]
	if !ok {
		return false, nil
	}

	copy(r.recipients[pos:], r.recipients[pos+1:])
	r.recipients[len(r.recipients)-1] = nil
	r.recipients = r.recipients[:len(r.recipients)-1]

	delete(r.index, id)
	for i := pos; i < len(r.recipients); i++ {
		r.index[r.recipients[i].ID()] = i
	}

	r.dirty = true
	r.logger.Debug("recipient removed", "id", id)
	return true, r.saveIfAuto()
}

// FindByID returns the live recipient for id. Mutations through the pointer are
// visible to traversal and to the next save.
func (r *Registry) FindByID(id int) (*models.Recipient, bool) {
	pos, ok := r.index[id]
	if !ok {
		return nil, false
	}
	return r.recipients[pos], true
}

// RequestFood queues a request for recipient id. Urgent requests go to the front.
func (r *Registry) RequestFood(id, quantity int, urgent bool) error {
	rec, ok := r.FindByID(id)
	if !ok {
		return fmt.Errorf("%w: id %d", shared.ErrRecipientNotFound, id)
	}
	if urgent {
		rec.Requests().Enqueue(id, quantity, true)
	} else {
		rec.RequestFood(quantity)
	}
	r.logger.Debug("food requested", "id", id, "quantity", quantity, "urgent", urgent, "pending", rec.PendingRequests())
	return nil
}

// DistributeFood serves the front request of recipient id and, when one was
// served, rewrites the store regardless of the auto-save mode.
//
// The boolean is false when the recipient has no pending requests.
func (r *Registry) DistributeFood(id int) (queue.Entry, bool, error) {
	rec, ok := r.FindByID(id)
	if !ok {
		return queue.Entry{}, false, fmt.Errorf("%w: id %d", shared.ErrRecipientNotFound, id)
	}

	e, served := rec.DistributeFood()
	if !served {
		r.logger.Info("no pending requests", "id", id, "name", rec.Name())
		return queue.Entry{}, false, nil
	}

	r.dirty = true
	r.logger.Info("distributed food", "id", id, "name", rec.Name(), "kg", e.Quantity)
	return e, true, r.ForceSave()
}

// ForceSave rewrites the entire store from memory. It is the only write path.
//
// On failure the in-memory state is kept and the registry stays dirty.
func (r *Registry) ForceSave() error {
	if err := r.store.Save(r.records()); err != nil {
		r.logger.Error("failed to save recipients", "error", err)
		return fmt.Errorf("%w: %w", shared.ErrStoreWrite, err)
	}
	r.dirty = false
	r.logger.Debug("recipients saved", "count", len(r.recipients))
	return nil
}

func (r *Registry) saveIfAuto() error {
	if !r.autoSave {
		return nil
	}
	return r.ForceSave()
}

func (r *Registry) records() []Record {
	out := make([]Record, 0, len(r.recipients))
	for _, rec := range r.recipients {
		out = append(out, Record{
			ID:            rec.ID(),
			Name:          rec.Name(),
			TotalKg:       rec.TotalKg(),
			DonationCount: rec.DonationCount(),
			TotalMoney:    rec.TotalMoney(),
		})
	}
	return out
}

// Size returns the number of recipients.
func (r *Registry) Size() int {
	return len(r.recipients)
}

// All iterates recipients in insertion order.
func (r *Registry) All() iter.Seq[*models.Recipient] {
	return func(yield func(*models.Recipient) bool) {
		for _, rec := range r.recipients {
			if !yield(rec) {
				return
			}
		}
	}
}

// TotalDistributed sums the kg received by every recipient. It is recomputed on each call.
func (r *Registry) TotalDistributed() float64 {
	var total float64
	for _, rec := range r.recipients {
		total += rec.TotalKg()
	}
	return total
}

// DisplayAll writes every recipient to w in insertion order.
func (r *Registry) DisplayAll(w io.Writer) error {
	for _, rec := range r.recipients {
		if err := rec.Display(w); err != nil {
			return fmt.Errorf("failed to write recipient %d: %w", rec.ID(), err)
		}
	}
	return nil
}

// Clear removes every recipient from memory and empties the store. This cannot be undone.
func (r *Registry) Clear() error {
	r.recipients = nil
	r.index = make(map[int]int)
	r.dirty = true

	if err := r.store.Clear(); err != nil {
		r.logger.Error("failed to clear recipients store", "error", err)
		return fmt.Errorf("%w: %w", shared.ErrStoreWrite, err)
	}
	r.dirty = false
	r.logger.Info("recipients cleared")
	return nil
}

// SeedDefaults adds each default recipient whose id is absent, batching the
// inserts with auto-save off and writing once at the end.
//
// Returns the number of recipients added.
func (r *Registry) SeedDefaults(defaults []shared.DefaultRecipient) (int, error) {
	prev := r.autoSave
	r.SetAutoSave(false)

	added := 0
	for _, d := range defaults {
		if _, exists := r.FindByID(d.ID); exists {
			continue
		}
		if err := r.AddRecipient(models.NewRecipient(d.ID, d.Name)); err != nil {
			r.SetAutoSave(prev)
			return added, err
		}
		added++
	}

	r.SetAutoSave(prev)
	if !r.dirty {
		return added, nil
	}
	return added, r.ForceSave()
}

// Close persists the registry one final time.
func (r *Registry) Close() error {
	return r.ForceSave()
}
