package export

import (
	"context"
	"io"
	"sync"

	"github.com/T9ner/echo-sub000/pkg/event"
	log "github.com/sirupsen/logrus"
)

// batchSize is how many creates fly at once during an import. A batch is
// awaited before the next one starts, so at most batchSize requests are in
// flight at any time.
const batchSize = 10

// ImportError records why one event of an import was rejected.
type ImportError struct {
	Index int
	Title string
	Err   error
}

// Summary reports an import outcome. Errors holds one entry per failed
// event; Successful + Failed equals the number of imported records.
type Summary struct {
	Successful int
	Failed     int
	Errors     []ImportError
}

// Importer drives bulk imports through the event service, so every created
// event passes validation and invalidates cached queries like any other
// write.
type Importer struct {
	service event.EventService
}

func NewImporter(service event.EventService) *Importer {
	return &Importer{service: service}
}

// ImportJSON imports an export document. A malformed document aborts before
// any event is created.
func (i *Importer) ImportJSON(ctx context.Context, r io.Reader) (*Summary, error) {
	creates, err := ParseJSON(r)
	if err != nil {
		return nil, err
	}
	return i.Import(ctx, creates), nil
}

// ImportICS imports an iCalendar stream.
func (i *Importer) ImportICS(ctx context.Context, r io.Reader) (*Summary, error) {
	creates, err := ParseICS(r)
	if err != nil {
		return nil, err
	}
	return i.Import(ctx, creates), nil
}

// Import creates the events in batches of ten. Creates within a batch run
// concurrently; individual failures are collected and never abort the rest.
// A cancelled context stops the import between batches and fails the events
// that were never attempted, keeping the summary complete.
func (i *Importer) Import(ctx context.Context, creates []event.EventCreate) *Summary {
	results := make([]error, len(creates))

	for start := 0; start < len(creates); start += batchSize {
		if err := ctx.Err(); err != nil {
			for idx := start; idx < len(creates); idx++ {
				results[idx] = err
			}
			break
		}
		end := min(start+batchSize, len(creates))

		var wg sync.WaitGroup
		for idx := start; idx < end; idx++ {
			wg.Add(1)
			go func(idx int) {
				defer wg.Done()
				_, err := i.service.CreateEvent(ctx, creates[idx])
				results[idx] = err
			}(idx)
		}
		wg.Wait()
	}

	summary := &Summary{}
	for idx, err := range results {
		if err == nil {
			summary.Successful++
			continue
		}
		summary.Failed++
		summary.Errors = append(summary.Errors, ImportError{
			Index: idx,
			Title: creates[idx].Title,
			Err:   err,
		})
	}

	log.Infof("import finished: %d created, %d failed", summary.Successful, summary.Failed)
	return summary
}
