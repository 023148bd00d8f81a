package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
)

var csvHeader = []string{"Name", "Email", "Dietary Restrictions", "Additional Guests", "Total Guests", "Submitted"}

// WriteCSV writes a header line and one line per record. Fields holding a
// quote, comma or line break are quote-wrapped with inner quotes doubled.
func WriteCSV(w io.Writer, records []rsvpdomain.RSVP, opts Options) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("export: write csv header: %w", err)
	}

	loc := opts.location()
	for _, record := range records {
		row := []string{
			record.Name,
			record.Email,
			dietary(record),
			strings.Join(guestLabels(record), "; "),
			strconv.Itoa(record.HeadCount()),
			FormatSubmitted(record.CreatedAt, loc),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("export: write csv row %s: %w", record.ID, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("export: flush csv: %w", err)
	}
	return nil
}
