package export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"

	"carelog/internal/model"
)

const productID = "-//carelog//care schedule//EN"

// Calendar builds an iCalendar feed with one all-day event per record on its
// next eligible date. Event UIDs are stable per record id so subscribers
// update events in place.
func Calendar(records []model.Record, loc *time.Location, now time.Time) string {
	if loc == nil {
		loc = time.UTC
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	cal.SetXWRCalName("Care schedule")
	cal.SetXWRTimezone(loc.String())

	for _, r := range records {
		if r.NextEligibleDate.IsZero() {
			continue
		}
		start := r.NextEligibleDate.Time(loc)

		ev := cal.AddEvent(r.ID + "@carelog")
		ev.SetDtStampTime(now.UTC())
		ev.SetSummary(fmt.Sprintf("%s (%s) eligible", r.Name, r.ID))
		ev.SetDescription(fmt.Sprintf("Last care %s, next eligible %s", r.ServiceDate, r.NextEligibleDate))
		ev.SetAllDayStartAt(start)
		ev.SetAllDayEndAt(start.AddDate(0, 0, 1))
	}

	return cal.Serialize()
}
