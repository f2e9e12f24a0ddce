package model

import (
	"encoding/json"
	"strings"
)

// Record is one tracked person's care-appointment state.
type Record struct {
	// ID is the employee identifier and the unique key of the record.
	ID string `json:"id"`
	// Name is a display label; it is not unique.
	Name string `json:"name"`

	// ServiceDate is the date of the most recent service.
	ServiceDate Date `json:"service_date"`
	// NextEligibleDate is normally ServiceDate plus one month, but manual
	// edits may set it independently.
	NextEligibleDate Date `json:"next_eligible_date"`

	// Expired is derived from NextEligibleDate and today. A persisted value
	// is only a hint and is recomputed after every load.
	Expired bool `json:"expired"`
}

// NextEligible returns the eligibility date that follows a service on d.
func NextEligible(d Date) Date {
	return d.AddMonths(1)
}

// IsExpired reports whether the next eligible date has been reached on today.
func (r Record) IsExpired(today Date) bool {
	return !today.Before(r.NextEligibleDate)
}

// legacyRecord is the document layout written by the earlier spreadsheet-style
// tool: Korean keys and an "O"/"X" flag. It is still accepted when reading so
// that old remote documents restore cleanly.
type legacyRecord struct {
	ID          *string `json:"사번"`
	Name        string  `json:"이름"`
	ServiceDate Date    `json:"케어일자"`
	NextDate    Date    `json:"한달시점"`
	Flag        string  `json:"한달지남"`
}

// UnmarshalJSON accepts both the current layout and the legacy one.
func (r *Record) UnmarshalJSON(b []byte) error {
	type plain Record
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(b, &probe); err != nil {
		return err
	}
	if _, ok := probe["id"]; ok || !isLegacy(probe) {
		var p plain
		if err := json.Unmarshal(b, &p); err != nil {
			return err
		}
		*r = Record(p)
		return nil
	}

	var l legacyRecord
	if err := json.Unmarshal(b, &l); err != nil {
		return err
	}
	*r = Record{
		Name:             l.Name,
		ServiceDate:      l.ServiceDate,
		NextEligibleDate: l.NextDate,
		Expired:          strings.EqualFold(strings.TrimSpace(l.Flag), "O"),
	}
	if l.ID != nil {
		r.ID = *l.ID
	}
	return nil
}

func isLegacy(fields map[string]json.RawMessage) bool {
	for _, k := range []string{"사번", "이름", "케어일자", "한달시점", "한달지남"} {
		if _, ok := fields[k]; ok {
			return true
		}
	}
	return false
}
