package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-composer/internal/totals"
)

var previewCmd = &cobra.Command{
	Use:   "preview [files...]",
	Short: "Show line subtotals and the total of drafts",
	Long: `Compute the live subtotals and total of one or more drafts.

Numbers that do not parse count as zero, so incomplete drafts still get a
total. Use validate to find the fields that block saving.

Examples:
  invoice-composer preview draft.json
  invoice-composer preview drafts/ -f table`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

// PreviewResult is the preview of one draft file
type PreviewResult struct {
	File    string          `json:"file"`
	Summary *totals.Summary `json:"summary,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func runPreview(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to preview")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	results := make([]*PreviewResult, 0, len(files))
	for _, file := range files {
		printVerbose("Previewing: %s\n", file)

		result := &PreviewResult{File: file}
		results = append(results, result)

		d, err := readDraft(file)
		if err != nil {
			result.Error = err.Error()
			continue
		}
		f := a.NewForm()
		if err := f.Load(d); err != nil {
			result.Error = err.Error()
			continue
		}
		summary := f.Preview()
		result.Summary = &summary
	}

	switch outputFormat {
	case "json":
		return writeJSON(os.Stdout, results)
	case "table":
		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FILE\tLINES\tCURRENCY\tTOTAL")
		fmt.Fprintln(tw, "----\t-----\t--------\t-----")
		for _, r := range results {
			if r.Error != "" {
				fmt.Fprintf(tw, "%s\tERROR: %s\t\t\n", r.File, r.Error)
				continue
			}
			fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.File, len(r.Summary.Lines), r.Summary.Currency, r.Summary.Formatted)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}
