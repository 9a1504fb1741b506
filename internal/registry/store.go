package registry

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/pantry/internal/shared"
)

// linesPerRecord is the number of lines each recipient occupies in the backing store.
const linesPerRecord = 5

// Record is the persisted shape of a recipient. Request queues are not part of it.
type Record struct {
	ID            int
	Name          string
	TotalKg       float64
	DonationCount int
	TotalMoney    float64
}

// Store is a backing store for recipient records.
//
// Load returns the well-formed records in file order, one error per malformed
// record that was skipped, and a non-nil error only when the store itself
// could not be read. Save replaces the entire contents.
type Store interface {
	Load() ([]Record, []error, error)
	Save(records []Record) error
	Clear() error
}

// FileStore persists records as newline-delimited five-line groups:
//
//	<id>
//	<name>
//	<totalKgReceived>
//	<donationCount>
//	<totalMoneyReceived>
//
// Rewrites go through a temp file in the same directory and a rename, so an
// interrupted save leaves the previous contents in place.
type FileStore struct {
	Path string
}

// NewFileStore creates a [FileStore] for path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads and decodes the file. A missing file is an empty store.
func (s *FileStore) Load() ([]Record, []error, error) {
	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", s.Path, err)
	}
	defer f.Close()

	return Decode(f)
}

// Save rewrites the whole file from records.
func (s *FileStore) Save(records []Record) error {
	dir := filepath.Dir(s.Path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := Encode(tmp, records); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpName, s.Path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", s.Path, err)
	}
	return nil
}

// Clear empties the file.
func (s *FileStore) Clear() error {
	return s.Save(nil)
}

// Encode writes records in the five-line format.
//
// Floats use the shortest representation that parses back to the same value.
func Encode(w io.Writer, records []Record) error {
	bw := bufio.NewWriter(w)
	for _, rec := range records {
		fmt.Fprintf(bw, "%d\n%s\n%s\n%d\n%s\n",
			rec.ID,
			rec.Name,
			strconv.FormatFloat(rec.TotalKg, 'g', -1, 64),
			rec.DonationCount,
			strconv.FormatFloat(rec.TotalMoney, 'g', -1, 64),
		)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

// maxLineBytes bounds a single line. Anything longer is treated as corrupt.
const maxLineBytes = 64 * 1024

type line struct {
	no   int
	text string
	long bool
}

func (l line) blank() bool {
	return !l.long && strings.TrimSpace(l.text) == ""
}

func readLines(r io.Reader) ([]line, error) {
	br := bufio.NewReader(r)
	var lines []line
	for no := 1; ; no++ {
		text, err := br.ReadString('\n')
		if text != "" {
			text = strings.TrimRight(text, "\r\n")
			l := line{no: no, text: text}
			if len(text) > maxLineBytes {
				l = line{no: no, long: true}
			}
			lines = append(lines, l)
		}
		if errors.Is(err, io.EOF) {
			return lines, nil
		}
		if err != nil {
			return lines, fmt.Errorf("failed to read records: %w", err)
		}
	}
}

// Decode reads five-line groups from r.
//
// When a group fails to parse, Decode drops only its first line and retries
// the next five, so a missing or extra line costs one record rather than
// every record after it. A group that parses but is followed by a non-id line
// while a complete group starts inside it is treated as short a line. Each run
// of corrupt lines is reported once in the returned error slice. Blank lines
// where an id is expected are ignored and a trailing incomplete group is
// reported as malformed.
//
// On a read failure the records decoded so far are returned with the error.
func Decode(r io.Reader) ([]Record, []error, error) {
	lines, readErr := readLines(r)

	var (
		records   []Record
		bad       []error
		resyncing bool
	)

	for i := 0; i < len(lines); {
		if lines[i].blank() {
			i++
			continue
		}

		if remaining := len(lines) - i; remaining < linesPerRecord {
			if !resyncing {
				bad = append(bad, fmt.Errorf("line %d: %w: truncated record (%d of %d lines)", lines[i].no, shared.ErrMalformedRecord, remaining, linesPerRecord))
			}
			break
		}

		rec, err := parseGroup(lines[i : i+linesPerRecord])
		if err == nil && !startsRecord(lines, i+linesPerRecord) && overlapsRecord(lines, i) {
			err = fmt.Errorf("%w: record for id %d is missing a line", shared.ErrMalformedRecord, rec.ID)
		}
		if err != nil {
			if !resyncing {
				bad = append(bad, fmt.Errorf("line %d: %w", lines[i].no, err))
				resyncing = true
			}
			i++
			continue
		}

		records = append(records, rec)
		resyncing = false
		i += linesPerRecord
	}

	return records, bad, readErr
}

// startsRecord reports whether the first non-blank line at or after i is an
// id, or the input ends.
func startsRecord(lines []line, i int) bool {
	for ; i < len(lines); i++ {
		if lines[i].blank() {
			continue
		}
		if lines[i].long {
			return false
		}
		_, err := strconv.Atoi(strings.TrimSpace(lines[i].text))
		return err == nil
	}
	return true
}

// overlapsRecord reports whether a complete group starts inside the group at i.
// A group that parses but swallowed the next id this way is missing a line.
func overlapsRecord(lines []line, i int) bool {
	for k := i + 1; k < i+linesPerRecord && k+linesPerRecord <= len(lines); k++ {
		if _, err := parseGroup(lines[k : k+linesPerRecord]); err == nil {
			return true
		}
	}
	return false
}

func parseGroup(group []line) (Record, error) {
	texts := make([]string, len(group))
	for i, l := range group {
		if l.long {
			return Record{}, fmt.Errorf("%w: line %d exceeds %d bytes", shared.ErrMalformedRecord, l.no, maxLineBytes)
		}
		texts[i] = l.text
	}
	return parseRecord(texts)
}

func parseRecord(lines []string) (Record, error) {
	id, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil {
		return Record{}, fmt.Errorf("%w: id %q", shared.ErrMalformedRecord, lines[0])
	}

	name := lines[1]
	if strings.TrimSpace(name) == "" {
		return Record{}, fmt.Errorf("%w: empty name for id %d", shared.ErrMalformedRecord, id)
	}

	kg, err := strconv.ParseFloat(strings.TrimSpace(lines[2]), 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: total kg %q for id %d", shared.ErrMalformedRecord, lines[2], id)
	}

	count, err := strconv.Atoi(strings.TrimSpace(lines[3]))
	if err != nil {
		return Record{}, fmt.Errorf("%w: donation count %q for id %d", shared.ErrMalformedRecord, lines[3], id)
	}

	money, err := strconv.ParseFloat(strings.TrimSpace(lines[4]), 64)
	if err != nil {
		return Record{}, fmt.Errorf("%w: total money %q for id %d", shared.ErrMalformedRecord, lines[4], id)
	}

	return Record{ID: id, Name: name, TotalKg: kg, DonationCount: count, TotalMoney: money}, nil
}
