package export

import (
	"strings"
	"time"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
)

const (
	DefaultPrefix = "rsvp-submissions"

	submittedLayout = "Jan 2, 2006, 03:04 PM"
	filenameLayout  = "2006-01-02"
)

// Options controls how timestamps are rendered. Records are always written
// in the order given.
type Options struct {
	Location *time.Location
	Now      time.Time
}

func (o Options) location() *time.Location {
	if o.Location == nil {
		return time.Local
	}
	return o.Location
}

func (o Options) now() time.Time {
	if o.Now.IsZero() {
		return time.Now()
	}
	return o.Now
}

// Filename builds "<prefix>-YYYY-MM-DD.<ext>" for the given day.
func Filename(prefix, ext string, now time.Time) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "-" + now.Format(filenameLayout) + "." + strings.TrimPrefix(ext, ".")
}

func FormatSubmitted(at time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return at.In(loc).Format(submittedLayout)
}

func guestLabels(record rsvpdomain.RSVP) []string {
	labels := make([]string, 0, len(record.Guests))
	for _, guest := range record.Guests {
		label := guest.Name
		if guest.DietaryRestrictions != nil && *guest.DietaryRestrictions != "" {
			label += " (" + *guest.DietaryRestrictions + ")"
		}
		labels = append(labels, label)
	}
	return labels
}

func dietary(record rsvpdomain.RSVP) string {
	if record.PrimaryDietary == nil {
		return ""
	}
	return *record.PrimaryDietary
}
