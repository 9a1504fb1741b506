// package donors manages the roster of registered donors and its tab-separated backing file.
package donors

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/pantry/internal/models"
	"github.com/desertthunder/pantry/internal/shared"
)

const (
	MinID = 100
	MaxID = 999
)

// Roster holds donors in registration order.
type Roster struct {
	path   string
	logger *log.Logger
	rng    *rand.Rand
	donors []*models.Donor
	dirty  bool
}

// Option configures a [Roster].
type Option func(*Roster)

// WithLogger sets the logger used to report skipped rows and writes.
func WithLogger(l *log.Logger) Option {
	return func(r *Roster) { r.logger = l }
}

// WithRand sets the random source used for donor ids.
func WithRand(rng *rand.Rand) Option {
	return func(r *Roster) { r.rng = rng }
}

// Open loads the roster stored at path. A missing file yields an empty roster.
func Open(path string, opts ...Option) (*Roster, error) {
	r := &Roster{path: path}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = shared.NewLogger(io.Discard)
	}
	if r.rng == nil {
		r.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return r, fmt.Errorf("failed to open donors file: %w", err)
	}
	defer f.Close()

	if err := r.read(f); err != nil {
		return r, err
	}
	r.logger.Debug("donors loaded", "count", len(r.donors), "path", path)
	return r, nil
}

func (r *Roster) read(src io.Reader) error {
	reader := csv.NewReader(src)
	reader.Comma = '\t'
	reader.FieldsPerRecord = 5
	reader.LazyQuotes = true

	for {
		row, err := reader.Read()
		if err == io.EOF {
			return nil
		}

		var perr *csv.ParseError
		if errors.As(err, &perr) {
			r.logger.Warn("skipping malformed donor row", "line", perr.Line, "error", perr.Err)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read donors file: %w", err)
		}

		d, err := parseRow(row)
		if err != nil {
			r.logger.Warn("skipping malformed donor row", "error", err)
			continue
		}
		if _, exists := r.FindByID(d.ID); exists {
			r.logger.Warn("skipping duplicate donor row", "id", d.ID)
			continue
		}
		r.donors = append(r.donors, d)
	}
}

func parseRow(row []string) (*models.Donor, error) {
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return nil, fmt.Errorf("%w: donor id %q", shared.ErrMalformedRecord, row[0])
	}
	freq, err := strconv.Atoi(row[3])
	if err != nil {
		return nil, fmt.Errorf("%w: donor %d frequency %q", shared.ErrMalformedRecord, id, row[3])
	}
	money, err := strconv.ParseFloat(row[4], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: donor %d money %q", shared.ErrMalformedRecord, id, row[4])
	}

	d := &models.Donor{ID: id, Name: row[1], Contact: row[2], Frequency: freq, MoneyDonated: money}
	if err := d.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrMalformedRecord, err)
	}
	return d, nil
}

// Register adds a donor under a random unused id between [MinID] and [MaxID].
//
// Names identify donors when recording donations, so a name already on the
// roster is rejected with [shared.ErrDuplicateDonor].
func (r *Roster) Register(name, contact string) (*models.Donor, error) {
	if _, exists := r.FindByName(name); exists {
		return nil, fmt.Errorf("%w: name %q", shared.ErrDuplicateDonor, name)
	}

	id, err := r.nextID()
	if err != nil {
		return nil, err
	}

	d := &models.Donor{ID: id, Name: name, Contact: contact}
	if err := r.Add(d); err != nil {
		return nil, err
	}
	r.logger.Info("donor registered", "id", id, "name", name)
	return d, nil
}

func (r *Roster) nextID() (int, error) {
	used := 0
	for _, d := range r.donors {
		if d.ID >= MinID && d.ID <= MaxID {
			used++
		}
	}
	if used >= MaxID-MinID+1 {
		return 0, shared.ErrRosterFull
	}

	for {
		id := MinID + r.rng.IntN(MaxID-MinID+1)
		if _, taken := r.FindByID(id); !taken {
			return id, nil
		}
	}
}

// Add appends d. Duplicate ids are rejected with [shared.ErrDuplicateDonor].
func (r *Roster) Add(d *models.Donor) error {
	if d == nil {
		return fmt.Errorf("%w: nil donor", shared.ErrInvalidInput)
	}
	if _, exists := r.FindByID(d.ID); exists {
		return fmt.Errorf("%w: id %d", shared.ErrDuplicateDonor, d.ID)
	}
	if err := d.Validate(); err != nil {
		return err
	}
	r.donors = append(r.donors, d)
	r.dirty = true
	return nil
}

// FindByID returns the live donor for id.
func (r *Roster) FindByID(id int) (*models.Donor, bool) {
	for _, d := range r.donors {
		if d.ID == id {
			return d, true
		}
	}
	return nil, false
}

// FindByName returns the first donor with an exactly matching name.
func (r *Roster) FindByName(name string) (*models.Donor, bool) {
	for _, d := range r.donors {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Delete removes donor id, reporting whether it existed.
func (r *Roster) Delete(id int) bool {
	for i, d := range r.donors {
		if d.ID == id {
			r.donors = append(r.donors[:i], r.donors[i+1:]...)
			r.dirty = true
			r.logger.Info("donor deleted", "id", id, "name", d.Name)
			return true
		}
	}
	return false
}

// List returns copies of every donor in registration order.
func (r *Roster) List() []models.Donor {
	out := make([]models.Donor, 0, len(r.donors))
	for _, d := range r.donors {
		out = append(out, *d)
	}
	return out
}

// Size returns the number of donors.
func (r *Roster) Size() int {
	return len(r.donors)
}

// TrackFood counts one food donation for donor id.
func (r *Roster) TrackFood(id int) error {
	d, ok := r.FindByID(id)
	if !ok {
		return fmt.Errorf("%w: id %d", shared.ErrDonorNotFound, id)
	}
	d.Frequency++
	r.dirty = true
	return nil
}

// TrackMoney counts one money donation of amount for donor id.
func (r *Roster) TrackMoney(id int, amount float64) error {
	d, ok := r.FindByID(id)
	if !ok {
		return fmt.Errorf("%w: id %d", shared.ErrDonorNotFound, id)
	}
	d.Frequency++
	d.MoneyDonated += amount
	r.dirty = true
	return nil
}

// Dirty reports whether the roster changed since the last save.
func (r *Roster) Dirty() bool {
	return r.dirty
}

// Save rewrites the donors file through a temp file and rename.
func (r *Roster) Save() error {
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".donors-*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrStoreWrite, err)
	}
	defer os.Remove(tmp.Name())

	if err := r.write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("%w: %w", shared.ErrStoreWrite, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrStoreWrite, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrStoreWrite, err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrStoreWrite, err)
	}

	r.dirty = false
	r.logger.Debug("donors saved", "count", len(r.donors), "path", r.path)
	return nil
}

func (r *Roster) write(w io.Writer) error {
	writer := csv.NewWriter(w)
	writer.Comma = '\t'

	for _, d := range r.donors {
		row := []string{
			strconv.Itoa(d.ID),
			d.Name,
			d.Contact,
			strconv.Itoa(d.Frequency),
			strconv.FormatFloat(d.MoneyDonated, 'g', -1, 64),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write donor %d: %w", d.ID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}
