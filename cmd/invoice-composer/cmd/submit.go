package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var submitTimeout time.Duration

var submitCmd = &cobra.Command{
	Use:   "submit [files...]",
	Short: "Validate and save invoice drafts",
	Long: `Validate each draft and save it to the configured persistence service.

A draft that fails validation is not sent. A rejected or failed save is
reported and the remaining drafts are still processed.

Examples:
  invoice-composer submit draft.json --store sqlite
  invoice-composer submit drafts/ --store remote --remote-url https://example.com/api`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().DurationVar(&submitTimeout, "timeout", time.Minute, "Timeout per draft")
}

// SubmitResult is the outcome of saving one draft
type SubmitResult struct {
	File  string `json:"file"`
	ID    string `json:"id,omitempty"`
	Total string `json:"total,omitempty"`
	Error string `json:"error,omitempty"`
}

func runSubmit(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to submit")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	results := make([]*SubmitResult, 0, len(files))
	failed := 0
	for _, file := range files {
		printVerbose("Submitting: %s\n", file)

		result := &SubmitResult{File: file}
		results = append(results, result)

		d, err := readDraft(file)
		if err != nil {
			result.Error = err.Error()
			failed++
			continue
		}

		f := a.NewForm()
		if err := f.Load(d); err != nil {
			result.Error = err.Error()
			failed++
			continue
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), submitTimeout)
		rec, err := f.Submit(ctx)
		cancel()
		if err != nil {
			result.Error = err.Error()
			failed++
			continue
		}

		result.ID = rec.ID()
		result.Total = a.Formatter.Format(rec.Total(), rec.Currency())
	}

	switch outputFormat {
	case "json":
		if err := writeJSON(os.Stdout, results); err != nil {
			return err
		}
	case "table":
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tID\tTOTAL")
		fmt.Fprintln(tw, "----\t--\t-----")
		for _, r := range results {
			if r.Error != "" {
				fmt.Fprintf(tw, "%s\tERROR: %s\t\n", r.File, r.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.File, r.ID, r.Total)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d drafts were not saved", failed, len(files))
	}
	return nil
}
