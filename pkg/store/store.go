/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

// Package store persists collection passes as monotonically numbered,
// catalog-indexed snapshots.
//
// # Layout
//
// The store root holds one numbered subdirectory per snapshot and a
// root-level append-only catalog file:
//
//	<root>/snapshots          catalog: number,timestamp,comment
//	<root>/<number>/<kind>    one delimited file per endpoint kind
//
// Each kind file is CSV with a header row of field names and one row
// per stored record. Snapshot numbers strictly increase and are never
// reused, even after deletion. Catalog entries are immutable once
// appended.
//
// The store assumes a single writer. Catalog appends are not protected
// by file locking; concurrent writer processes against the same root are
// unsupported. Catalog writes are at-least-once: an entry may be lost on
// crash before the data hits disk, but a surviving entry always refers
// to an allocated number.
package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/ybstat/ybstat/pkg/endpoint"
	yberrors "github.com/ybstat/ybstat/pkg/errors"
	"github.com/ybstat/ybstat/pkg/record"
)

const catalogFile = "snapshots"

var catalogHeader = []string{"number", "timestamp", "comment"}

// envelope columns shared by both record shapes.
var rowEnvelope = []string{"hostname_port", "timestamp", "synthetic", "key"}

var metricHeader = []string{
	"hostname_port", "timestamp", "synthetic",
	"metric_type", "entity_id", "name", "value", "gauge",
}

// Entry is one catalog line: an allocated snapshot number with its
// creation time and optional free-text comment.
type Entry struct {
	Number    int       `json:"number" yaml:"number"`
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
	Comment   string    `json:"comment,omitempty" yaml:"comment,omitempty"`
}

// Store reads and writes snapshots under a root directory.
type Store struct {
	root string
}

// New creates a Store rooted at dir. The directory is created lazily on
// the first Begin.
func New(dir string) *Store {
	return &Store{root: dir}
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// List returns all catalog entries ordered by number. A store with no
// catalog yet returns an empty list.
func (s *Store) List() ([]Entry, error) {
	f, err := os.Open(filepath.Join(s.root, catalogFile))
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, yberrors.Wrap(yberrors.ErrCodeInternal, "failed to open catalog", err)
	}
	defer f.Close()

	entries, err := readCatalog(f)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Number < entries[j].Number })
	return entries, nil
}

func readCatalog(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(catalogHeader)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, yberrors.Wrap(yberrors.ErrCodeCorrupt, "catalog is not valid CSV", err)
	}
	if len(rows) == 0 {
		return []Entry{}, nil
	}

	entries := make([]Entry, 0, len(rows)-1)
	for _, row := range rows[1:] { // skip header
		number, err := strconv.Atoi(row[0])
		if err != nil {
			return nil, yberrors.Wrap(yberrors.ErrCodeCorrupt,
				fmt.Sprintf("catalog contains invalid snapshot number %q", row[0]), err)
		}
		ts, err := time.Parse(time.RFC3339Nano, row[1])
		if err != nil {
			return nil, yberrors.Wrap(yberrors.ErrCodeCorrupt,
				fmt.Sprintf("catalog contains invalid timestamp %q", row[1]), err)
		}
		entries = append(entries, Entry{Number: number, Timestamp: ts, Comment: row[2]})
	}
	return entries, nil
}

// Begin allocates the next snapshot number (current catalog max + 1,
// numbers are never reused), creates its backing directory, and appends
// the catalog entry. Single-writer assumption: no locking against
// concurrent writers.
func (s *Store) Begin(comment string) (int, error) {
	entries, err := s.List()
	if err != nil {
		return 0, err
	}

	next := 1
	if n := len(entries); n > 0 {
		next = entries[n-1].Number + 1
	}

	if err := os.MkdirAll(filepath.Join(s.root, strconv.Itoa(next)), 0o755); err != nil {
		return 0, yberrors.Wrap(yberrors.ErrCodeWriteFailed,
			fmt.Sprintf("failed to create snapshot directory %d", next), err)
	}

	if err := s.appendCatalog(Entry{Number: next, Timestamp: time.Now(), Comment: comment}); err != nil {
		return 0, err
	}
	return next, nil
}

func (s *Store) appendCatalog(e Entry) error {
	path := filepath.Join(s.root, catalogFile)

	_, statErr := os.Stat(path)
	newCatalog := os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return yberrors.Wrap(yberrors.ErrCodeWriteFailed, "failed to open catalog for append", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if newCatalog {
		if err := w.Write(catalogHeader); err != nil {
			return yberrors.Wrap(yberrors.ErrCodeWriteFailed, "failed to write catalog header", err)
		}
	}
	row := []string{strconv.Itoa(e.Number), e.Timestamp.Format(time.RFC3339Nano), e.Comment}
	if err := w.Write(row); err != nil {
		return yberrors.Wrap(yberrors.ErrCodeWriteFailed, "failed to append catalog entry", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return yberrors.Wrap(yberrors.ErrCodeWriteFailed, "failed to flush catalog entry", err)
	}
	return nil
}

// Write flushes one kind's stored records as a single complete unit into
// the numbered snapshot directory. The full file content is built in
// memory and written once; a kind file is either complete or absent.
func (s *Store) Write(number int, set *record.Set) error {
	if err := set.Validate(); err != nil {
		return yberrors.Wrap(yberrors.ErrCodeInternal, "record set shape mismatch", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if set.Kind.IsMetric() {
		if err := writeMetrics(w, set); err != nil {
			return err
		}
	} else {
		if err := writeRows(w, set); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return yberrors.Wrap(yberrors.ErrCodeWriteFailed, "failed to encode stored records", err)
	}

	path := filepath.Join(s.root, strconv.Itoa(number), set.Kind.String())
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return yberrors.WrapWithContext(yberrors.ErrCodeWriteFailed,
			"failed to write snapshot kind file", err,
			map[string]any{"snapshot": number, "kind": set.Kind.String()})
	}
	return nil
}

func writeMetrics(w *csv.Writer, set *record.Set) error {
	if err := w.Write(metricHeader); err != nil {
		return yberrors.Wrap(yberrors.ErrCodeWriteFailed, "failed to write header", err)
	}
	for _, m := range set.Metrics {
		row := []string{
			m.HostnamePort,
			m.Timestamp.Format(time.RFC3339Nano),
			strconv.FormatBool(m.Synthetic),
			m.MetricType,
			m.EntityID,
			m.Name,
			strconv.FormatFloat(m.Value, 'g', -1, 64),
			strconv.FormatBool(m.Gauge),
		}
		if err := w.Write(row); err != nil {
			return yberrors.Wrap(yberrors.ErrCodeWriteFailed, "failed to write metric record", err)
		}
	}
	return nil
}

func writeRows(w *csv.Writer, set *record.Set) error {
	fields := set.FieldNames()
	header := append(append([]string{}, rowEnvelope...), fields...)
	if err := w.Write(header); err != nil {
		return yberrors.Wrap(yberrors.ErrCodeWriteFailed, "failed to write header", err)
	}
	for _, r := range set.Rows {
		row := make([]string, 0, len(header))
		row = append(row,
			r.HostnamePort,
			r.Timestamp.Format(time.RFC3339Nano),
			strconv.FormatBool(r.Synthetic),
			r.Key,
		)
		for _, name := range fields {
			row = append(row, r.Fields[name])
		}
		if err := w.Write(row); err != nil {
			return yberrors.Wrap(yberrors.ErrCodeWriteFailed, "failed to write stored record", err)
		}
	}
	return nil
}

// Load reads one kind's stored records from a snapshot. It fails with a
// NOT_FOUND error when the number or kind file is absent, and with a
// CORRUPT error when the content cannot be parsed back to the schema.
// A partial load is never returned.
func (s *Store) Load(number int, kind endpoint.Kind) (*record.Set, error) {
	path := filepath.Join(s.root, strconv.Itoa(number), kind.String())
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, yberrors.NewWithContext(yberrors.ErrCodeNotFound,
				fmt.Sprintf("snapshot %d has no stored records for kind %s", number, kind),
				map[string]any{"snapshot": number, "kind": kind.String()})
		}
		return nil, yberrors.Wrap(yberrors.ErrCodeInternal, "failed to open snapshot kind file", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, corrupt(number, kind, "not valid CSV", err)
	}
	if len(rows) == 0 {
		return nil, corrupt(number, kind, "missing header", errors.New("empty file"))
	}

	set := record.NewSet(kind, time.Time{})
	if kind.IsMetric() {
		if err := loadMetrics(set, rows, number); err != nil {
			return nil, err
		}
	} else {
		if err := loadRows(set, rows, number); err != nil {
			return nil, err
		}
	}

	// The capture timestamp of the pass is shared by all records.
	if len(set.Metrics) > 0 {
		set.CapturedAt = set.Metrics[0].Timestamp
	} else if len(set.Rows) > 0 {
		set.CapturedAt = set.Rows[0].Timestamp
	}
	return set, nil
}

func loadMetrics(set *record.Set, rows [][]string, number int) error {
	if len(rows[0]) != len(metricHeader) {
		return corrupt(number, set.Kind, "unexpected metric header", fmt.Errorf("got %d columns, want %d", len(rows[0]), len(metricHeader)))
	}
	for _, row := range rows[1:] {
		ts, err := time.Parse(time.RFC3339Nano, row[1])
		if err != nil {
			return corrupt(number, set.Kind, "invalid timestamp", err)
		}
		synthetic, err := strconv.ParseBool(row[2])
		if err != nil {
			return corrupt(number, set.Kind, "invalid synthetic flag", err)
		}
		value, err := strconv.ParseFloat(row[6], 64)
		if err != nil {
			return corrupt(number, set.Kind, "invalid metric value", err)
		}
		gauge, err := strconv.ParseBool(row[7])
		if err != nil {
			return corrupt(number, set.Kind, "invalid gauge flag", err)
		}
		set.AddMetrics(record.Metric{
			HostnamePort: row[0],
			Timestamp:    ts,
			Synthetic:    synthetic,
			MetricType:   row[3],
			EntityID:     row[4],
			Name:         row[5],
			Value:        value,
			Gauge:        gauge,
		})
	}
	return nil
}

func loadRows(set *record.Set, rows [][]string, number int) error {
	header := rows[0]
	if len(header) < len(rowEnvelope) {
		return corrupt(number, set.Kind, "header missing envelope columns", fmt.Errorf("got %d columns", len(header)))
	}
	for i, want := range rowEnvelope {
		if header[i] != want {
			return corrupt(number, set.Kind, "header missing envelope columns",
				fmt.Errorf("column %d is %q, want %q", i, header[i], want))
		}
	}
	fields := header[len(rowEnvelope):]

	for _, row := range rows[1:] {
		if len(row) != len(header) {
			return corrupt(number, set.Kind, "row width mismatch", fmt.Errorf("got %d columns, want %d", len(row), len(header)))
		}
		ts, err := time.Parse(time.RFC3339Nano, row[1])
		if err != nil {
			return corrupt(number, set.Kind, "invalid timestamp", err)
		}
		synthetic, err := strconv.ParseBool(row[2])
		if err != nil {
			return corrupt(number, set.Kind, "invalid synthetic flag", err)
		}
		rec := record.Row{
			HostnamePort: row[0],
			Timestamp:    ts,
			Synthetic:    synthetic,
			Key:          row[3],
			Fields:       make(map[string]string, len(fields)),
		}
		for i, name := range fields {
			rec.Fields[name] = row[len(rowEnvelope)+i]
		}
		set.AddRows(rec)
	}
	return nil
}

func corrupt(number int, kind endpoint.Kind, msg string, cause error) error {
	return yberrors.WrapWithContext(yberrors.ErrCodeCorrupt,
		fmt.Sprintf("snapshot %d kind %s: %s", number, kind, msg), cause,
		map[string]any{"snapshot": number, "kind": kind.String()})
}
