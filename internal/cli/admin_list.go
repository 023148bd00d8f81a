package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"wedding-rsvp/internal/console"
	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
	"wedding-rsvp/internal/export"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type listGuest struct {
	Name                string  `json:"name" yaml:"name"`
	DietaryRestrictions *string `json:"dietary_restrictions" yaml:"dietary_restrictions"`
}

type listItem struct {
	ID             string      `json:"id" yaml:"id"`
	Name           string      `json:"name" yaml:"name"`
	Email          string      `json:"email" yaml:"email"`
	PrimaryDietary *string     `json:"primary_dietary" yaml:"primary_dietary"`
	Guests         []listGuest `json:"guests" yaml:"guests"`
	CreatedAt      time.Time   `json:"created_at" yaml:"created_at"`
}

type listOutput struct {
	Items       []listItem `json:"items" yaml:"items"`
	Total       int        `json:"total" yaml:"total"`
	TotalGuests int        `json:"total_guests" yaml:"total_guests"`
	SortColumn  string     `json:"sort_column" yaml:"sort_column"`
	SortDesc    bool       `json:"sort_desc" yaml:"sort_desc"`
}

func newAdminListCommand(opts *RootOptions, storeOpts *StoreOptions) *cobra.Command {
	var (
		format   string
		sortKeys []string
		timezone string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List RSVPs with submission and guest totals",
		Long: "List every RSVP. Each --sort value acts like a click on that column: " +
			"a new column starts descending, repeating the active column flips it.",
		Example: "  wedding-rsvp admin list --sort name --sort name\n  wedding-rsvp admin list --format json",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dash, cleanup, err := loadDashboard(cmd.Context(), opts, storeOpts, sortKeys)
			if err != nil {
				return err
			}
			defer cleanup()

			loc, err := loadLocation(timezone)
			if err != nil {
				return err
			}
			return writeList(cmd.OutOrStdout(), dash, format, loc)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "o", "text", "output format: text, json or yaml")
	cmd.Flags().StringArrayVar(&sortKeys, "sort", nil, "sort column: name, email, guests or submitted (repeatable)")
	cmd.Flags().StringVar(&timezone, "timezone", "", "IANA zone for submitted times (default local)")

	return cmd
}

func writeList(w io.Writer, dash *console.Dashboard, format string, loc *time.Location) error {
	view := dash.View()
	stats := dash.Stats()
	state := dash.Sort()

	switch strings.ToLower(format) {
	case "text", "":
		return writeListText(w, view, stats, state, loc)
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(toListOutput(view, stats, state))
	case "yaml":
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(toListOutput(view, stats, state)); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeListText(w io.Writer, records []rsvpdomain.RSVP, stats rsvpdomain.Summary, state rsvpdomain.SortState, loc *time.Location) error {
	fmt.Fprintf(w, "Total submissions: %d\nTotal guests: %d\n\n", stats.Submissions, stats.Guests)
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No RSVPs yet.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join([]string{
		columnTitle("NAME", rsvpdomain.SortByName, state),
		columnTitle("EMAIL", rsvpdomain.SortByEmail, state),
		columnTitle("GUESTS", rsvpdomain.SortByGuests, state),
		"DIETARY",
		columnTitle("SUBMITTED", rsvpdomain.SortBySubmitted, state),
		"ID",
	}, "\t"))

	for _, record := range records {
		dietary := ""
		if record.PrimaryDietary != nil {
			dietary = *record.PrimaryDietary
		}
		fmt.Fprintln(tw, strings.Join([]string{
			record.Name,
			record.Email,
			strconv.Itoa(record.HeadCount()),
			dietary,
			export.FormatSubmitted(record.CreatedAt, loc),
			record.ID,
		}, "\t"))
	}
	return tw.Flush()
}

func columnTitle(title string, key rsvpdomain.SortKey, state rsvpdomain.SortState) string {
	if state.Key != key {
		return title
	}
	if state.Direction == rsvpdomain.Descending {
		return title + " v"
	}
	return title + " ^"
}

func toListOutput(records []rsvpdomain.RSVP, stats rsvpdomain.Summary, state rsvpdomain.SortState) listOutput {
	items := make([]listItem, 0, len(records))
	for _, record := range records {
		guests := make([]listGuest, 0, len(record.Guests))
		for _, guest := range record.Guests {
			guests = append(guests, listGuest{Name: guest.Name, DietaryRestrictions: guest.DietaryRestrictions})
		}
		items = append(items, listItem{
			ID:             record.ID,
			Name:           record.Name,
			Email:          record.Email,
			PrimaryDietary: record.PrimaryDietary,
			Guests:         guests,
			CreatedAt:      record.CreatedAt,
		})
	}
	return listOutput{
		Items:       items,
		Total:       stats.Submissions,
		TotalGuests: stats.Guests,
		SortColumn:  string(state.Key),
		SortDesc:    state.Direction == rsvpdomain.Descending,
	}
}

func loadLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
