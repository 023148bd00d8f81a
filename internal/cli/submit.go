package cli

import (
	"fmt"
	"strings"

	"wedding-rsvp/internal/console"

	"github.com/spf13/cobra"
)

type submitOptions struct {
	store   StoreOptions
	name    string
	email   string
	dietary string
	guests  []string
}

func NewSubmitCommand(opts *RootOptions) *cobra.Command {
	sub := &submitOptions{}

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Send an RSVP",
		Example: `  wedding-rsvp submit --name "Ana Lopez" --email ana@example.com \
    --guest "Leo:nut allergy" --guest "Mia"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, cleanup, err := opts.OpenStore(cmd.Context(), &sub.store)
			if err != nil {
				return err
			}
			defer cleanup()

			form := &console.Form{Name: sub.name, Email: sub.email, PrimaryDietary: sub.dietary}
			for _, value := range sub.guests {
				name, dietary := parseGuest(value)
				form.SetGuest(form.AddGuest(), name, dietary)
			}

			record, err := console.NewSubmitter(store, form, opts.Log).Submit(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Thank you! RSVP %s received for %d guest(s).\n", record.ID, record.HeadCount())
			return nil
		},
	}

	addStoreFlags(cmd, &sub.store, false)
	cmd.Flags().StringVar(&sub.name, "name", "", "primary guest name")
	cmd.Flags().StringVar(&sub.email, "email", "", "contact email")
	cmd.Flags().StringVar(&sub.dietary, "dietary", "", "dietary restrictions of the primary guest")
	cmd.Flags().StringArrayVar(&sub.guests, "guest", nil, `additional guest as "Name" or "Name:dietary" (repeatable)`)

	return cmd
}

// parseGuest splits "Name:dietary" at the first colon.
func parseGuest(value string) (string, string) {
	name, dietary, _ := strings.Cut(value, ":")
	return strings.TrimSpace(name), strings.TrimSpace(dietary)
}
