package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"wedding-rsvp/internal/console"
	rsvpdomain "wedding-rsvp/internal/domain/rsvp"

	"github.com/spf13/cobra"
)

func NewAdminCommand(opts *RootOptions) *cobra.Command {
	storeOpts := &StoreOptions{}

	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage RSVPs (requires an admin session unless --direct)",
	}
	addStoreFlags(cmd, storeOpts, true)

	cmd.AddCommand(newAdminLoginCommand(opts, storeOpts))
	cmd.AddCommand(newAdminListCommand(opts, storeOpts))
	cmd.AddCommand(newAdminExportCommand(opts, storeOpts))
	cmd.AddCommand(newAdminEditCommand(opts, storeOpts))
	cmd.AddCommand(newAdminDeleteCommand(opts, storeOpts))

	return cmd
}

func newAdminLoginCommand(opts *RootOptions, storeOpts *StoreOptions) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and print an access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("WEDDING_ADMIN_PASSWORD")
			}
			if password == "" {
				line, err := readLine(cmd.InOrStdin(), cmd.ErrOrStderr(), "Password: ")
				if err != nil {
					return err
				}
				password = line
			}

			store := console.NewHTTPStore(storeOpts.APIURL, "", storeOpts.Timeout)
			token, ttl, err := store.Login(cmd.Context(), email, password)
			if err != nil {
				if errors.Is(err, console.ErrUnauthorized) {
					return errors.New("invalid login credentials")
				}
				return err
			}

			opts.Log.Debug("cli: signed in", "email", email, "expires_in", ttl)
			fmt.Fprintf(cmd.OutOrStdout(), "export %s=%s\n", envAdminToken, token)
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password (env WEDDING_ADMIN_PASSWORD, prompted when empty)")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

// loadDashboard opens the store, loads every record and applies --sort keys
// in order, each as a column-header click.
func loadDashboard(ctx context.Context, opts *RootOptions, storeOpts *StoreOptions, sortKeys []string) (*console.Dashboard, func(), error) {
	store, cleanup, err := opts.OpenStore(ctx, storeOpts)
	if err != nil {
		return nil, nil, err
	}

	dash := console.NewDashboard(store, opts.Log)
	if err := dash.Load(ctx); err != nil {
		cleanup()
		if errors.Is(err, console.ErrUnauthorized) {
			return nil, nil, fmt.Errorf("%w: run `wedding-rsvp admin login` or pass --direct", err)
		}
		return nil, nil, fmt.Errorf("error loading RSVPs: %w", err)
	}

	for _, value := range sortKeys {
		key, err := rsvpdomain.ParseSortKey(value)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		dash.SortBy(key)
	}
	return dash, cleanup, nil
}

func readLine(in io.Reader, prompt io.Writer, label string) (string, error) {
	fmt.Fprint(prompt, label)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
