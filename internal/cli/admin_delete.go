package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAdminDeleteCommand(opts *RootOptions, storeOpts *StoreOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete one RSVP after confirmation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dash, cleanup, err := loadDashboard(cmd.Context(), opts, storeOpts, nil)
			if err != nil {
				return err
			}
			defer cleanup()

			prompt, err := dash.ConfirmDelete(args[0])
			if err != nil {
				return err
			}

			if !yes {
				answer, err := readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), fmt.Sprintf("Delete RSVP from %s? [y/N] ", prompt.Name()))
				if err != nil {
					return err
				}
				if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
					prompt.Cancel()
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}

			if err := prompt.Confirm(cmd.Context()); err != nil {
				return fmt.Errorf("error deleting RSVP: %w", err)
			}

			stats := dash.Stats()
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted RSVP from %s. %d submission(s), %d guest(s) remain.\n", prompt.Name(), stats.Submissions, stats.Guests)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}
