package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-composer/internal/config"
	"github.com/rezonia/invoice-composer/internal/export"
)

var (
	exportStdout  bool
	exportTimeout time.Duration
)

var exportCmd = &cobra.Command{
	Use:   "export [files...]",
	Short: "Render drafts to PDF, XLSX or HTML documents",
	Long: `Validate each draft, render it and deliver the document to the configured
sink: a directory (--sink file --output-dir) or a Cloud Storage bucket
(--sink gcs --gcs-bucket). --stdout writes a single document to stdout.

Examples:
  invoice-composer export draft.json --output-dir out/
  invoice-composer export draft.json --export-format xlsx
  invoice-composer export draft.json --stdout > invoice.pdf
  invoice-composer export drafts/ --sink gcs --gcs-bucket my-invoices`,
	Args: cobra.MinimumNArgs(1),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	d := config.Defaults()
	exportCmd.Flags().String("export-format", d["export-format"].(string), "Document format: pdf, xlsx or html")
	exportCmd.Flags().String("sink", d["sink"].(string), "Where documents go: file or gcs")
	exportCmd.Flags().String("output-dir", d["output-dir"].(string), "Directory for the file sink")
	exportCmd.Flags().String("gcs-bucket", d["gcs-bucket"].(string), "Bucket for the gcs sink")
	exportCmd.Flags().String("gcs-prefix", d["gcs-prefix"].(string), "Object prefix for the gcs sink")
	exportCmd.Flags().BoolVar(&exportStdout, "stdout", false, "Write the document to stdout")
	exportCmd.Flags().DurationVar(&exportTimeout, "timeout", 2*time.Minute, "Timeout per draft")
}

func runExport(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to export")
	}
	if exportStdout && len(files) > 1 {
		return fmt.Errorf("--stdout accepts a single draft, got %d", len(files))
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	var sink export.Sink
	if exportStdout {
		sink = export.NewWriterSink(os.Stdout)
	} else {
		s, closer, err := a.ConfiguredSink(cmd.Context())
		if err != nil {
			return err
		}
		if closer != nil {
			defer closer.Close()
		}
		sink = s
	}

	pipeline, err := a.Pipeline(cfg.ExportFormat, sink)
	if err != nil {
		return err
	}

	failed := 0
	for _, file := range files {
		printVerbose("Exporting: %s\n", file)

		d, err := readDraft(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", file, err)
			failed++
			continue
		}

		f := a.NewForm()
		if err := f.Load(d); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", file, err)
			failed++
			continue
		}
		rec, err := f.Build()
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", file, err)
			failed++
			continue
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), exportTimeout)
		res, err := pipeline.Export(ctx, rec)
		cancel()
		if err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", file, err)
			failed++
			continue
		}

		if !exportStdout {
			fmt.Printf("✓ %s → %s (%d bytes, %d pages)\n", file, res.Location, res.Size, res.Pages)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d drafts were not exported", failed, len(files))
	}
	return nil
}
