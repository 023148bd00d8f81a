package console

import (
	"context"
	"fmt"
	"io"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
	"wedding-rsvp/internal/export"
	"wedding-rsvp/pkg/logger"
)

// Dashboard is the admin record list: a cache of the last select, a sort
// state and the aggregates. It is owned by one interaction loop and is not
// safe for concurrent use.
type Dashboard struct {
	store   Store
	log     logger.Logger
	records []rsvpdomain.RSVP
	loaded  bool
	loadErr error
	sort    rsvpdomain.SortState
}

func NewDashboard(store Store, log logger.Logger) *Dashboard {
	return &Dashboard{
		store: store,
		log:   log,
		sort:  rsvpdomain.DefaultSort(),
	}
}

// Load replaces the cache with every record, newest first. On failure the
// previous cache is dropped and the error is kept for LoadErr.
func (d *Dashboard) Load(ctx context.Context) error {
	records, err := d.store.Select(ctx)
	if err != nil {
		d.log.InternalError("console.dashboard: select rsvps failed", err)
		d.records = nil
		d.loaded = false
		d.loadErr = err
		return err
	}

	d.records = records
	d.loaded = true
	d.loadErr = nil
	return nil
}

func (d *Dashboard) Loaded() bool {
	return d.loaded
}

func (d *Dashboard) LoadErr() error {
	return d.loadErr
}

// SortBy selects a column. The active column flips direction; a new column
// starts descending.
func (d *Dashboard) SortBy(key rsvpdomain.SortKey) rsvpdomain.SortState {
	d.sort = d.sort.Select(key)
	return d.sort
}

func (d *Dashboard) Sort() rsvpdomain.SortState {
	return d.sort
}

// View returns the cached records in display order.
func (d *Dashboard) View() []rsvpdomain.RSVP {
	return rsvpdomain.Sorted(d.records, d.sort)
}

func (d *Dashboard) Stats() rsvpdomain.Summary {
	return rsvpdomain.Summarize(d.records)
}

func (d *Dashboard) Record(id string) (rsvpdomain.RSVP, bool) {
	index := d.indexOf(id)
	if index < 0 {
		return rsvpdomain.RSVP{}, false
	}
	return d.records[index].Clone(), true
}

// Edit opens an editor pre-filled from the cached record.
func (d *Dashboard) Edit(id string) (*Editor, error) {
	record, err := d.cached(id)
	if err != nil {
		return nil, err
	}
	return &Editor{
		Form: formFromRecord(record),
		dash: d,
		id:   record.ID,
		open: true,
	}, nil
}

// ConfirmDelete opens a prompt naming the record to delete.
func (d *Dashboard) ConfirmDelete(id string) (*DeletePrompt, error) {
	record, err := d.cached(id)
	if err != nil {
		return nil, err
	}
	return &DeletePrompt{
		dash: d,
		id:   record.ID,
		name: record.Name,
		open: true,
	}, nil
}

func (d *Dashboard) ExportCSV(w io.Writer, opts export.Options) error {
	return export.WriteCSV(w, d.View(), opts)
}

func (d *Dashboard) ExportPDF(w io.Writer, opts export.Options) error {
	return export.WritePDF(w, d.View(), opts)
}

func (d *Dashboard) cached(id string) (rsvpdomain.RSVP, error) {
	if !d.loaded {
		return rsvpdomain.RSVP{}, ErrNotLoaded
	}
	record, ok := d.Record(id)
	if !ok {
		return rsvpdomain.RSVP{}, fmt.Errorf("%w: %s", rsvpdomain.ErrRSVPNotFound, id)
	}
	return record, nil
}

// indexOf compares uuids in canonical form; other ids match as given.
func (d *Dashboard) indexOf(id string) int {
	if canonical, ok := rsvpdomain.NormalizeID(id); ok {
		id = canonical
	}
	for i := range d.records {
		if d.records[i].ID == id {
			return i
		}
	}
	return -1
}

func (d *Dashboard) replace(record rsvpdomain.RSVP) {
	if index := d.indexOf(record.ID); index >= 0 {
		d.records[index] = record
	}
}

func (d *Dashboard) remove(id string) {
	if index := d.indexOf(id); index >= 0 {
		d.records = append(d.records[:index:index], d.records[index+1:]...)
	}
}
