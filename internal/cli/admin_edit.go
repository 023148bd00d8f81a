package cli

import (
	"errors"
	"fmt"

	"wedding-rsvp/internal/console"

	"github.com/spf13/cobra"
)

func newAdminEditCommand(opts *RootOptions, storeOpts *StoreOptions) *cobra.Command {
	var (
		name, email, dietary string
		clearDietary         bool
		guests               []string
		clearGuests          bool
	)

	cmd := &cobra.Command{
		Use:   "edit ID",
		Short: "Edit one RSVP",
		Long: "Edit one RSVP. Flags that are not given keep the stored value. " +
			"Any --guest replaces the whole guest list.",
		Example: `  wedding-rsvp admin edit 3f0c... --email new@example.com --guest "Leo:vegan"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clearGuests && len(guests) > 0 {
				return errors.New("--guest and --clear-guests are mutually exclusive")
			}
			if clearDietary && cmd.Flags().Changed("dietary") {
				return errors.New("--dietary and --clear-dietary are mutually exclusive")
			}

			dash, cleanup, err := loadDashboard(cmd.Context(), opts, storeOpts, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			editor, err := dash.Edit(args[0])
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("name") {
				editor.Name = name
			}
			if flags.Changed("email") {
				editor.Email = email
			}
			if flags.Changed("dietary") {
				editor.PrimaryDietary = dietary
			}
			if clearDietary {
				editor.PrimaryDietary = ""
			}
			if clearGuests || len(guests) > 0 {
				replaceGuests(&editor.Form, guests)
			}

			if err := editor.Save(cmd.Context()); err != nil {
				if errors.Is(err, console.ErrBlankGuestName) {
					return errors.New("every guest needs a name")
				}
				return fmt.Errorf("error updating RSVP: %w", err)
			}

			record, _ := dash.Record(editor.ID())
			fmt.Fprintf(cmd.OutOrStdout(), "Updated RSVP %s (%s, %d guest(s)).\n", record.ID, record.Name, record.HeadCount())
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "primary guest name")
	cmd.Flags().StringVar(&email, "email", "", "contact email")
	cmd.Flags().StringVar(&dietary, "dietary", "", "dietary restrictions of the primary guest")
	cmd.Flags().BoolVar(&clearDietary, "clear-dietary", false, "remove the primary dietary note")
	cmd.Flags().StringArrayVar(&guests, "guest", nil, `replacement guest as "Name" or "Name:dietary" (repeatable)`)
	cmd.Flags().BoolVar(&clearGuests, "clear-guests", false, "remove all additional guests")

	return cmd
}

func replaceGuests(form *console.Form, values []string) {
	for _, row := range form.Guests() {
		form.RemoveGuest(row.Key)
	}
	for _, value := range values {
		guestName, guestDietary := parseGuest(value)
		form.SetGuest(form.AddGuest(), guestName, guestDietary)
	}
}
