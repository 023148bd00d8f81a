package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"wedding-rsvp/internal/app"
	"wedding-rsvp/internal/config"
	"wedding-rsvp/internal/console"
	rsvpdomain "wedding-rsvp/internal/domain/rsvp"
	"wedding-rsvp/pkg/logger"

	"github.com/spf13/cobra"
)

const (
	envAPIURL     = "WEDDING_API_URL"
	envAdminToken = "WEDDING_ADMIN_TOKEN"
)

// RootOptions holds what every command shares.
type RootOptions struct {
	Log logger.Logger

	// OpenStore builds the store used by submit and admin commands.
	OpenStore func(ctx context.Context, opts *StoreOptions) (console.Store, func(), error)
}

// StoreOptions selects between the HTTP API and direct database access.
type StoreOptions struct {
	APIURL  string
	Token   string
	Direct  bool
	Timeout time.Duration
}

func NewRootCommand(log logger.Logger) *cobra.Command {
	opts := &RootOptions{Log: log}
	opts.OpenStore = opts.defaultStore
	return newRootCommand(opts)
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wedding-rsvp",
		Short:         "Wedding RSVP service and admin tools",
		Long:          "Collects wedding RSVPs over HTTP and lets signed-in admins list, edit, export and delete them.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSubmitCommand(opts))
	cmd.AddCommand(NewAdminCommand(opts))

	return cmd
}

// Execute runs the CLI and returns the process exit code.
func Execute(ctx context.Context, log logger.Logger, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(log)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func addStoreFlags(cmd *cobra.Command, opts *StoreOptions, withToken bool) {
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", defaultAPIURL(), "base URL of the RSVP API (env "+envAPIURL+")")
	cmd.PersistentFlags().BoolVar(&opts.Direct, "direct", false, "use the database from the environment instead of the API")
	cmd.PersistentFlags().DurationVar(&opts.Timeout, "timeout", 30*time.Second, "API request timeout")
	if withToken {
		cmd.PersistentFlags().StringVar(&opts.Token, "token", os.Getenv(envAdminToken), "admin access token (env "+envAdminToken+")")
	}
}

func defaultAPIURL() string {
	if value := strings.TrimSpace(os.Getenv(envAPIURL)); value != "" {
		return value
	}
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	return "http://localhost:" + port
}

func (o *RootOptions) defaultStore(_ context.Context, opts *StoreOptions) (console.Store, func(), error) {
	if !opts.Direct {
		return console.NewHTTPStore(opts.APIURL, opts.Token, opts.Timeout), func() {}, nil
	}

	cfg, err := config.Load(o.Log)
	if err != nil {
		return nil, nil, err
	}
	repo, dbConn, err := app.OpenRepository(cfg, o.Log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := app.CloseDB(dbConn); err != nil {
			o.Log.Error("cli: close db failed", "err", err)
		}
	}
	return console.NewDirectStore(rsvpdomain.NewService(repo)), cleanup, nil
}
