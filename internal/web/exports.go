package web

import (
	"bytes"
	"net/http"

	"carelog/internal/export"
	appLog "carelog/internal/log"
	"carelog/internal/model"
)

func (s *Server) handleExportCSV(w http.ResponseWriter, _ *http.Request) {
	var buf bytes.Buffer
	// A byte order mark keeps spreadsheet tools from misreading Korean names.
	buf.WriteString("\ufeff")
	if err := export.WriteCSV(&buf, s.svc.List()); err != nil {
		appLog.Error("csv export failed", err)
		writeError(w, http.StatusInternalServerError, "failed to export")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="care-records.csv"`)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportICS(w http.ResponseWriter, _ *http.Request) {
	body := export.Calendar(s.svc.List(), s.loc, s.now())
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `inline; filename="care-schedule.ics"`)
	_, _ = w.Write([]byte(body))
}

type printView struct {
	Today    string
	Timezone string
	Records  []model.Record
	Expired  int
}

// handlePrint renders a plain roster page. It is the page the capture
// command turns into a PDF, so it marks itself ready once rendered.
func (s *Server) handlePrint(w http.ResponseWriter, _ *http.Request) {
	recs := s.svc.List()
	view := printView{
		Today:    s.svc.Today().String(),
		Timezone: s.loc.String(),
		Records:  recs,
	}
	for _, r := range recs {
		if r.Expired {
			view.Expired++
		}
	}

	var buf bytes.Buffer
	if err := s.printTmpl.Execute(&buf, view); err != nil {
		appLog.Error("print view render failed", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
