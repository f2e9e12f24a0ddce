// Package export renders the record list for outside consumers. Every
// function here is a pure projection of the records it is given.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"carelog/internal/model"
)

// CSVHeader is the header row of WriteCSV.
var CSVHeader = []string{"id", "name", "service_date", "next_eligible_date", "expired"}

// WriteCSV writes one row per record, in the given order, after a header row.
func WriteCSV(w io.Writer, records []model.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.ID,
			r.Name,
			r.ServiceDate.String(),
			r.NextEligibleDate.String(),
			strconv.FormatBool(r.Expired),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
