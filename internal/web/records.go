package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"carelog/internal/care"
	"carelog/internal/export"
	appLog "carelog/internal/log"
	"carelog/internal/model"
	"carelog/internal/record"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

// addRequest is the body of POST /api/records. An empty service_date means
// today.
type addRequest struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	ServiceDate model.Date `json:"service_date"`
}

// editRequest is the body of PUT /api/records/{id}.
type editRequest struct {
	Name             string     `json:"name"`
	ServiceDate      model.Date `json:"service_date"`
	NextEligibleDate model.Date `json:"next_eligible_date"`
	Expired          bool       `json:"expired"`
}

type warningDTO struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// resultResponse is the JSON shape of every mutation response.
type resultResponse struct {
	OK       bool          `json:"ok"`
	Code     string        `json:"code"`
	Message  string        `json:"message"`
	Warnings []warningDTO  `json:"warnings"`
	Record   *model.Record `json:"record,omitempty"`
}

type recordsResponse struct {
	Records []model.Record `json:"records"`
	Count   int            `json:"count"`
	Message string         `json:"message,omitempty"`
}

type statusResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Today    string `json:"today"`
	Timezone string `json:"timezone"`
	Records  int    `json:"records"`
	Expired  int    `json:"expired"`
}

type lookupResponse struct {
	Record  model.Record `json:"record"`
	Message string       `json:"message"`
}

type scheduleResponse struct {
	ID    string       `json:"id"`
	Dates []model.Date `json:"dates"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.svc.Status()
	all := s.svc.List()
	expired := 0
	for _, rec := range all {
		if rec.Expired {
			expired++
		}
	}
	writeJSON(w, http.StatusOK, statusResponse{
		Status:   string(status),
		Message:  s.tr.T(langs(r), "status."+string(status), nil),
		Today:    s.svc.Today().String(),
		Timezone: s.loc.String(),
		Records:  len(all),
		Expired:  expired,
	})
}

// handleSearch returns records filtered by ?q= and ?expired=1. With neither
// filter it returns the whole list.
//
// GET /api/records?q=kim&expired=1
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	expiredOnly := parseBool(q.Get("expired"))

	recs := s.svc.Search(q.Get("q"), expiredOnly)
	resp := recordsResponse{Records: recs, Count: len(recs)}
	if len(recs) == 0 {
		resp.Message = s.tr.T(langs(r), "search.empty", nil)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRecent(w http.ResponseWriter, _ *http.Request) {
	recs := s.svc.Recent()
	writeJSON(w, http.StatusOK, recordsResponse{Records: recs, Count: len(recs)})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, ok := s.svc.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, s.tr.T(langs(r), care.CodeNotFound, map[string]any{"ID": id}))
		return
	}
	writeJSON(w, http.StatusOK, lookupResponse{
		Record: rec,
		Message: s.tr.T(langs(r), "record.existing", map[string]any{
			"ServiceDate":      rec.ServiceDate.String(),
			"NextEligibleDate": rec.NextEligibleDate.String(),
		}),
	})
}

// handleSchedule projects upcoming eligibility dates for one record.
//
// GET /api/records/{id}/schedule?count=6
func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	rec, ok := s.svc.Lookup(id)
	if !ok {
		writeError(w, http.StatusNotFound, s.tr.T(langs(r), care.CodeNotFound, map[string]any{"ID": id}))
		return
	}

	count := parseIntDefault(r.URL.Query().Get("count"), s.cfg.ScheduleCount)
	if count <= 0 || count > 120 {
		count = s.cfg.ScheduleCount
	}
	dates, err := export.Schedule(rec.ServiceDate, count)
	if err != nil {
		appLog.Error("schedule projection failed", err, "id", id)
		writeError(w, http.StatusInternalServerError, "failed to project schedule")
		return
	}
	writeJSON(w, http.StatusOK, scheduleResponse{ID: rec.ID, Dates: dates})
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if !s.decode(w, r, &req) {
		return
	}
	out := s.svc.Add(r.Context(), req.ID, req.Name, req.ServiceDate)
	s.writeOutcome(w, r, out, map[string]any{"ID": req.ID, "Name": req.Name})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req editRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.ServiceDate.IsZero() || req.NextEligibleDate.IsZero() {
		s.writeBadRequest(w, r, "service_date and next_eligible_date are required")
		return
	}
	out := s.svc.Edit(r.Context(), id, req.Name, req.ServiceDate, req.NextEligibleDate, req.Expired)
	s.writeOutcome(w, r, out, map[string]any{"ID": id})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	out := s.svc.Delete(r.Context(), id)
	s.writeOutcome(w, r, out, map[string]any{"ID": id})
}

// decode reads a JSON body into v, answering 400 itself on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.writeBadRequest(w, r, err.Error())
		return false
	}
	return true
}

func (s *Server) writeBadRequest(w http.ResponseWriter, r *http.Request, detail string) {
	writeJSON(w, http.StatusBadRequest, resultResponse{
		Code:     "error.bad_request",
		Message:  s.tr.T(langs(r), "error.bad_request", map[string]any{"Detail": detail}),
		Warnings: []warningDTO{},
	})
}

// writeOutcome converts a service outcome into a localized JSON response.
func (s *Server) writeOutcome(w http.ResponseWriter, r *http.Request, out care.Outcome, data map[string]any) {
	lang := langs(r)
	resp := resultResponse{
		OK:       out.OK,
		Code:     out.Code,
		Message:  s.tr.T(lang, out.Code, data),
		Warnings: make([]warningDTO, 0, len(out.Warnings)),
		Record:   out.Record,
	}
	for _, wn := range out.Warnings {
		resp.Warnings = append(resp.Warnings, warningDTO{
			Code:    wn.Code,
			Message: s.tr.T(lang, wn.Code, map[string]any{"Detail": wn.Detail}),
		})
	}

	status := http.StatusOK
	switch {
	case errors.Is(out.Err, care.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(out.Err, record.ErrNotFound):
		status = http.StatusNotFound
	case out.Err != nil:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, resp)
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return s == "on" || s == "yes"
	}
	return b
}
