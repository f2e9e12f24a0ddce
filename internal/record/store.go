// Package record holds the in-memory table of care records.
//
// A Store performs no I/O and no locking; the owning service serializes
// access and persists after each mutation.
package record

import (
	"errors"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	appLog "carelog/internal/log"
	"carelog/internal/model"
)

// ErrNotFound is returned when an edit targets an unknown id.
var ErrNotFound = errors.New("record not found")

// Store keeps records in insertion order with an id index. Rows without an
// id (from legacy documents) are kept and listed but are not indexed, so no
// id-based command can address them.
type Store struct {
	records []model.Record
	index   map[string]int
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Replace drops the current contents and loads recs in order. A repeated id
// keeps its first position and the fields of its last occurrence. Rows with
// an empty id are all kept.
func (s *Store) Replace(recs []model.Record) {
	s.records = make([]model.Record, 0, len(recs))
	s.index = make(map[string]int, len(recs))
	for _, r := range recs {
		if r.ID == "" {
			appLog.Warn("record without id kept unindexed", "name", r.Name, "service_date", r.ServiceDate)
			s.records = append(s.records, r)
			continue
		}
		if i, ok := s.index[r.ID]; ok {
			appLog.Warn("duplicate record id; keeping the later row", "id", r.ID, "dropped_name", s.records[i].Name)
			s.records[i] = r
			continue
		}
		s.index[r.ID] = len(s.records)
		s.records = append(s.records, r)
	}
}

// Upsert creates or refreshes the record for id. The next eligible date is
// derived from serviceDate and expired is evaluated against today.
func (s *Store) Upsert(id, name string, serviceDate, today model.Date) model.Record {
	r := model.Record{
		ID:               id,
		Name:             name,
		ServiceDate:      serviceDate,
		NextEligibleDate: model.NextEligible(serviceDate),
	}
	r.Expired = r.IsExpired(today)

	if i, ok := s.index[id]; ok {
		s.records[i] = r
		return r
	}
	s.index[id] = len(s.records)
	s.records = append(s.records, r)
	return r
}

// UpdateFields overwrites every editable field of an existing record as
// given. Nothing is re-derived.
func (s *Store) UpdateFields(id, name string, serviceDate, nextEligible model.Date, expired bool) (model.Record, error) {
	i, ok := s.index[id]
	if !ok {
		return model.Record{}, ErrNotFound
	}
	s.records[i] = model.Record{
		ID:               id,
		Name:             name,
		ServiceDate:      serviceDate,
		NextEligibleDate: nextEligible,
		Expired:          expired,
	}
	return s.records[i], nil
}

// Delete removes the record for id and reports whether one existed.
func (s *Store) Delete(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	s.records = append(s.records[:i], s.records[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.records); j++ {
		if s.records[j].ID != "" {
			s.index[s.records[j].ID] = j
		}
	}
	return true
}

// FindByID returns the record for id.
func (s *Store) FindByID(id string) (model.Record, bool) {
	i, ok := s.index[id]
	if !ok {
		return model.Record{}, false
	}
	return s.records[i], true
}

// Query filters records in insertion order. A non-blank keyword matches when
// the name contains it ignoring case, or the id contains it exactly.
// expiredOnly additionally keeps only expired records.
func (s *Store) Query(keyword string, expiredOnly bool) []model.Record {
	keyword = strings.TrimSpace(keyword)
	var folded string
	if keyword != "" {
		folded = fold(keyword)
	}

	out := make([]model.Record, 0)
	for _, r := range s.records {
		if expiredOnly && !r.Expired {
			continue
		}
		if keyword != "" && !strings.Contains(fold(r.Name), folded) && !strings.Contains(r.ID, keyword) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// RecomputeExpired sets Expired on every record from today.
func (s *Store) RecomputeExpired(today model.Date) {
	for i := range s.records {
		s.records[i].Expired = s.records[i].IsExpired(today)
	}
}

// CountExpired returns how many records are currently flagged expired.
func (s *Store) CountExpired() int {
	n := 0
	for _, r := range s.records {
		if r.Expired {
			n++
		}
	}
	return n
}

// All returns a copy of every record in insertion order.
func (s *Store) All() []model.Record {
	out := make([]model.Record, len(s.records))
	copy(out, s.records)
	return out
}

// Recent returns up to n of the most recently inserted records, oldest first.
func (s *Store) Recent(n int) []model.Record {
	if n <= 0 {
		return []model.Record{}
	}
	start := len(s.records) - n
	if start < 0 {
		start = 0
	}
	out := make([]model.Record, len(s.records)-start)
	copy(out, s.records[start:])
	return out
}

func (s *Store) Len() int {
	return len(s.records)
}

// fold normalizes s for case-insensitive comparison. Casers are stateful, so
// a fresh one is used per call.
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
