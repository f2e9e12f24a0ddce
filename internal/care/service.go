// Package care is the session service behind every user interaction. It owns
// the record store and serializes each read-mutate-persist sequence.
package care

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"carelog/internal/clock"
	appLog "carelog/internal/log"
	"carelog/internal/model"
	"carelog/internal/persist"
	"carelog/internal/record"
)

// ErrValidation is returned when a required field is missing.
var ErrValidation = errors.New("id and name are required")

// ErrInvalidID is returned for ids the HTTP routes cannot address. It wraps
// ErrValidation.
var ErrInvalidID = fmt.Errorf("%w: id must not contain '/' or be %q", ErrValidation, reservedID)

// reservedID collides with GET /api/records/recent.
const reservedID = "recent"

// Message codes returned in an Outcome. They double as i18n message ids.
const (
	CodeSaved         = "record.saved"
	CodeUpdated       = "record.updated"
	CodeDeleted       = "record.deleted"
	CodeDeleteMissing = "record.delete_missing"
	CodeValidation    = "error.validation"
	CodeInvalidID     = "error.invalid_id"
	CodeNotFound      = "error.not_found"
	WarnLocalWrite    = "warn.local_write"
	WarnRemoteUpload  = "warn.remote_upload"
)

// Warning is a non-fatal persistence problem that accompanies a successful
// mutation.
type Warning struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// Outcome is the result of a command: a success flag, a message code and any
// persistence warnings. Err carries the taxonomy error when OK is false.
type Outcome struct {
	OK       bool
	Code     string
	Record   *model.Record
	Warnings []Warning
	Err      error
}

// Persister is the persistence gateway as seen by the service.
type Persister interface {
	Bootstrap(ctx context.Context) ([]model.Record, persist.Status, error)
	Save(ctx context.Context, records []model.Record) persist.SaveResult
}

// Service guards one Record Store and its persistence.
type Service struct {
	mu     sync.Mutex
	store  *record.Store
	gw     Persister
	clock  clock.Clock
	status persist.Status
	recent int
}

// NewService wires a service. recent is the size of the recently saved list.
func NewService(gw Persister, clk clock.Clock, recent int) *Service {
	if recent <= 0 {
		recent = 3
	}
	return &Service{
		store:  record.NewStore(),
		gw:     gw,
		clock:  clk,
		recent: recent,
		status: persist.StatusLocal,
	}
}

// Open loads the initial list. Bootstrap problems are logged and reflected in
// Status; Open itself never fails.
func (s *Service) Open(ctx context.Context) persist.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	recs, status, err := s.gw.Bootstrap(ctx)
	if err != nil {
		appLog.Warn("bootstrap finished with warnings", "status", status, "err", err)
	}
	s.store.Replace(recs)
	s.status = status
	s.store.RecomputeExpired(s.clock.Today())

	appLog.Info("record store ready", "status", status, "records", s.store.Len(), "expired", s.store.CountExpired())
	return status
}

// Status is the startup status reported by Open.
func (s *Service) Status() persist.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Today is the service's current date.
func (s *Service) Today() model.Date {
	return s.clock.Today()
}

// Add upserts a record from the add form. A zero serviceDate means today.
func (s *Service) Add(ctx context.Context, id, name string, serviceDate model.Date) Outcome {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return Outcome{Code: CodeValidation, Err: ErrValidation}
	}
	if strings.Contains(id, "/") || id == reservedID {
		return Outcome{Code: CodeInvalidID, Err: ErrInvalidID}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	today := s.clock.Today()
	if serviceDate.IsZero() {
		serviceDate = today
	}
	s.store.RecomputeExpired(today)
	r := s.store.Upsert(id, name, serviceDate, today)
	appLog.Info("record saved", "id", id, "service_date", r.ServiceDate, "next", r.NextEligibleDate)

	return s.persistLocked(ctx, CodeSaved, &r)
}

// Edit applies a manual field edit; nothing is re-derived.
func (s *Service) Edit(ctx context.Context, id, name string, serviceDate, nextEligible model.Date, expired bool) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.RecomputeExpired(s.clock.Today())
	r, err := s.store.UpdateFields(strings.TrimSpace(id), strings.TrimSpace(name), serviceDate, nextEligible, expired)
	if err != nil {
		return Outcome{Code: CodeNotFound, Err: err}
	}
	appLog.Info("record updated", "id", r.ID)

	return s.persistLocked(ctx, CodeUpdated, &r)
}

// Delete removes id. Deleting an absent id succeeds without touching storage.
func (s *Service) Delete(ctx context.Context, id string) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.store.Delete(strings.TrimSpace(id)) {
		return Outcome{OK: true, Code: CodeDeleteMissing}
	}
	appLog.Info("record deleted", "id", id)

	return s.persistLocked(ctx, CodeDeleted, nil)
}

// Lookup finds one record after refreshing expiry.
func (s *Service) Lookup(id string) (model.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.RecomputeExpired(s.clock.Today())
	return s.store.FindByID(strings.TrimSpace(id))
}

// Search filters records after refreshing expiry.
func (s *Service) Search(keyword string, expiredOnly bool) []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.RecomputeExpired(s.clock.Today())
	return s.store.Query(keyword, expiredOnly)
}

// List returns every record after refreshing expiry.
func (s *Service) List() []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.RecomputeExpired(s.clock.Today())
	return s.store.All()
}

// Recent returns the most recently saved records.
func (s *Service) Recent() []model.Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.RecomputeExpired(s.clock.Today())
	return s.store.Recent(s.recent)
}

// Refresh recomputes expiry and returns how many records are expired.
func (s *Service) Refresh() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store.RecomputeExpired(s.clock.Today())
	return s.store.CountExpired()
}

// persistLocked writes the full list once. Callers hold s.mu.
func (s *Service) persistLocked(ctx context.Context, code string, r *model.Record) Outcome {
	out := Outcome{OK: true, Code: code, Record: r}

	res := s.gw.Save(ctx, s.store.All())
	if res.LocalErr != nil {
		out.Warnings = append(out.Warnings, Warning{Code: WarnLocalWrite, Detail: res.LocalErr.Error()})
	}
	if res.RemoteErr != nil {
		out.Warnings = append(out.Warnings, Warning{Code: WarnRemoteUpload, Detail: res.RemoteErr.Error()})
	}
	return out
}
