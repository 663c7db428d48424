package export

import (
	"fmt"
	"time"

	ical "github.com/arran4/golang-ical"
)

// CalendarEntry is one dated event to serialize into an ICS feed.
type CalendarEntry struct {
	UID      string
	Summary  string
	Location string
	Start    time.Time
	End      time.Time
}

// ICSExporter serializes calendar entries into an iCalendar feed.
type ICSExporter struct{}

// NewICSExporter constructs an ICS exporter.
func NewICSExporter() *ICSExporter {
	return &ICSExporter{}
}

// Render produces an ICS document containing one VEVENT per entry.
func (e *ICSExporter) Render(name string, entries []CalendarEntry) ([]byte, error) {
	if name == "" {
		return nil, fmt.Errorf("ics requires a calendar name")
	}
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//campushub//timetable-api//EN")
	cal.SetName(name)

	for _, entry := range entries {
		ev := cal.AddEvent(entry.UID)
		ev.SetSummary(entry.Summary)
		ev.SetStartAt(entry.Start)
		ev.SetEndAt(entry.End)
		ev.SetDtStampTime(entry.Start)
		if entry.Location != "" {
			ev.SetLocation(entry.Location)
		}
	}

	return []byte(cal.Serialize()), nil
}
