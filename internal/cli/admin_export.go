package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"wedding-rsvp/internal/archive"
	"wedding-rsvp/internal/config"
	"wedding-rsvp/internal/export"

	"github.com/spf13/cobra"
)

type exportOptions struct {
	format   string
	outDir   string
	prefix   string
	timezone string
	sortKeys []string
	bucket   string
	s3Prefix string
}

func newAdminExportCommand(opts *RootOptions, storeOpts *StoreOptions) *cobra.Command {
	exp := &exportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the current RSVP list as CSV or PDF",
		Long: "Write the list in its current sort order to <prefix>-YYYY-MM-DD.<csv|pdf>. " +
			"With --s3-bucket the file is also uploaded to S3-compatible storage.",
		Example: "  wedding-rsvp admin export --format pdf --sort guests\n  wedding-rsvp admin export --out - > rsvps.csv",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ext, contentType, err := exportFormat(exp.format)
			if err != nil {
				return err
			}
			loc, err := loadLocation(exp.timezone)
			if err != nil {
				return err
			}

			dash, cleanup, err := loadDashboard(cmd.Context(), opts, storeOpts, exp.sortKeys)
			if err != nil {
				return err
			}
			defer cleanup()

			now := time.Now().In(loc)
			encodeOpts := export.Options{Location: loc, Now: now}

			var body bytes.Buffer
			if ext == "pdf" {
				err = dash.ExportPDF(&body, encodeOpts)
			} else {
				err = dash.ExportCSV(&body, encodeOpts)
			}
			if err != nil {
				return fmt.Errorf("export %s: %w", ext, err)
			}

			filename := export.Filename(exp.prefix, ext, now)
			if exp.outDir == "-" {
				_, err = cmd.OutOrStdout().Write(body.Bytes())
				return err
			}

			target := filepath.Join(exp.outDir, filename)
			if err := os.MkdirAll(exp.outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			if err := os.WriteFile(target, body.Bytes(), 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			opts.Log.Info("cli: export written", "path", target, "records", len(dash.View()), "format", ext)
			fmt.Fprintln(cmd.OutOrStdout(), target)

			if exp.bucket == "" {
				return nil
			}
			return uploadExport(cmd, opts, exp, filename, contentType, body.Bytes())
		},
	}

	cmd.Flags().StringVarP(&exp.format, "format", "f", "csv", "export format: csv or pdf")
	cmd.Flags().StringVar(&exp.outDir, "out", ".", `output directory, or "-" for stdout`)
	cmd.Flags().StringVar(&exp.prefix, "prefix", envOr("EXPORT_PREFIX", export.DefaultPrefix), "file name prefix (env EXPORT_PREFIX)")
	cmd.Flags().StringVar(&exp.timezone, "timezone", os.Getenv("EXPORT_TIMEZONE"), "IANA zone for submitted times (env EXPORT_TIMEZONE)")
	cmd.Flags().StringArrayVar(&exp.sortKeys, "sort", nil, "sort column: name, email, guests or submitted (repeatable)")
	cmd.Flags().StringVar(&exp.bucket, "s3-bucket", os.Getenv("ARCHIVE_BUCKET"), "upload the export to this bucket (env ARCHIVE_BUCKET)")
	cmd.Flags().StringVar(&exp.s3Prefix, "s3-prefix", envOr("ARCHIVE_PREFIX", "exports"), "object key prefix (env ARCHIVE_PREFIX)")

	return cmd
}

func uploadExport(cmd *cobra.Command, opts *RootOptions, exp *exportOptions, filename, contentType string, body []byte) error {
	cfg, err := config.Load(opts.Log)
	if err != nil {
		return err
	}
	cfg.Archive.Bucket = exp.bucket
	cfg.Archive.Prefix = exp.s3Prefix

	client, err := archive.NewS3Client(cmd.Context(), cfg.Archive)
	if err != nil {
		return err
	}
	key, err := archive.NewUploader(client, cfg.Archive.Bucket, cfg.Archive.Prefix, opts.Log).
		Upload(cmd.Context(), filename, contentType, body)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "s3://%s/%s\n", cfg.Archive.Bucket, key)
	return nil
}

func exportFormat(format string) (string, string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "csv", "":
		return "csv", "text/csv", nil
	case "pdf":
		return "pdf", "application/pdf", nil
	default:
		return "", "", fmt.Errorf("unknown export format %q", format)
	}
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}
