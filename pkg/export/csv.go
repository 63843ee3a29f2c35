package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/T9ner/echo-sub000/pkg/event"
)

// csvHeader is the fixed column set of a CSV export.
var csvHeader = []string{
	"Title",
	"Description",
	"Location",
	"Start Time",
	"End Time",
	"All Day",
	"Event Type",
	"Status",
	"Recurrence Type",
	"Recurrence Interval",
}

// WriteCSV writes the events to w as CSV, one row per event. Quoting follows
// encoding/csv: values containing commas or quotes are escaped, everything
// round-trips through a standard reader.
func WriteCSV(w io.Writer, events []event.Event) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	for _, e := range events {
		if err := writer.Write(csvRow(e)); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush csv: %w", err)
	}
	return nil
}

func csvRow(e event.Event) []string {
	interval := ""
	if e.RecurrenceInterval != nil {
		interval = strconv.Itoa(*e.RecurrenceInterval)
	}
	return []string{
		e.Title,
		e.Description,
		e.Location,
		e.StartTime.Format(time.RFC3339),
		e.EndTime.Format(time.RFC3339),
		strconv.FormatBool(e.AllDay),
		string(e.Type),
		string(e.Status),
		string(e.RecurrenceType),
		interval,
	}
}
