package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-composer/internal/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate invoice drafts",
	Long: `Validate one or more drafts the same way a submission does, without saving.

Checks performed, first failure wins:
  - client name, id type, id number, email, phone are not blank
  - email and phone formats (with --strict-contact)
  - issue date is YYYY-MM-DD (blank means today)
  - at least one item
  - every item has a description, a quantity > 0 and a price >= 0

Examples:
  invoice-composer validate draft.json
  invoice-composer validate drafts/*.json --strict-contact`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// ValidationResult holds the result of validating a single draft
type ValidationResult struct {
	File  string `json:"file"`
	Valid bool   `json:"valid"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
	Item  int    `json:"item,omitempty"`
	Error string `json:"error,omitempty"`
	Total string `json:"total,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to validate")
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	results := make([]*ValidationResult, 0, len(files))
	allValid := true

	for _, file := range files {
		result := &ValidationResult{File: file}
		results = append(results, result)

		d, err := readDraft(file)
		if err != nil {
			result.Error = err.Error()
			allValid = false
			continue
		}

		f := a.NewForm()
		if err := f.Load(d); err != nil {
			result.Error = err.Error()
			allValid = false
			continue
		}

		rec, err := f.Build()
		if err != nil {
			allValid = false
			result.Error = err.Error()
			var verr *model.ValidationError
			if errors.As(err, &verr) {
				result.Code = verr.Code
				result.Field = verr.Field
				result.Item = verr.Item + 1
				result.Error = verr.Message
			}
			continue
		}

		result.Valid = true
		result.Total = a.Formatter.Format(rec.Total(), rec.Currency())
	}

	if outputFormat == "json" {
		if err := writeJSON(os.Stdout, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s: VALID (total %s)\n", r.File, r.Total)
				continue
			}
			fmt.Printf("✗ %s: INVALID\n", r.File)
			switch {
			case r.Item > 0:
				fmt.Printf("  - item %d %s: %s (%s)\n", r.Item, r.Field, r.Error, r.Code)
			case r.Field != "":
				fmt.Printf("  - %s: %s (%s)\n", r.Field, r.Error, r.Code)
			default:
				fmt.Printf("  - %s\n", r.Error)
			}
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}
