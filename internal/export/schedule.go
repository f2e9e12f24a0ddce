package export

import (
	"time"

	"github.com/teambition/rrule-go"

	"carelog/internal/model"
)

// Schedule projects the next count eligibility dates for someone served on
// service and then on every eligible date after that. The cadence is monthly
// and anchored on the service day, clamped to the month end: a service on
// the 31st yields the 29th (or 28th) of February, then the 31st of March.
//
// The rule is FREQ=MONTHLY;BYMONTHDAY=<day>,-1;BYSETPOS=1: in each month it
// picks the earlier of the anchor day and the last day.
func Schedule(service model.Date, count int) ([]model.Date, error) {
	if count <= 0 || service.IsZero() {
		return []model.Date{}, nil
	}

	start := service.Time(time.UTC)
	r, err := rrule.NewRRule(rrule.ROption{
		Freq:       rrule.MONTHLY,
		Dtstart:    start,
		Bymonthday: []int{service.Day, -1},
		Bysetpos:   []int{1},
		Count:      count + 1,
	})
	if err != nil {
		return nil, err
	}

	out := make([]model.Date, 0, count)
	for _, t := range r.All() {
		d := model.DateOf(t)
		if !d.After(service) {
			continue
		}
		out = append(out, d)
		if len(out) == count {
			break
		}
	}
	return out, nil
}
