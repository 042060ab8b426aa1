package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rezonia/invoice-composer/internal/model"
)

// collectFiles expands globs and directories into draft files. "-" reads
// a single draft from stdin.
func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		if arg == "-" {
			files = append(files, arg)
			continue
		}

		matches, err := filepath.Glob(arg)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", arg, err)
		}

		if len(matches) == 0 {
			info, err := os.Stat(arg)
			if err != nil {
				return nil, fmt.Errorf("file not found: %s", arg)
			}

			if info.IsDir() {
				err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
					if err != nil {
						return err
					}
					if !info.IsDir() && isDraftFile(path) {
						files = append(files, path)
					}
					return nil
				})
				if err != nil {
					return nil, err
				}
			} else {
				files = append(files, arg)
			}
			continue
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				continue
			}
			if !info.IsDir() && isDraftFile(match) {
				files = append(files, match)
			}
		}
	}

	return files, nil
}

func isDraftFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func readDraft(path string) (model.Draft, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return model.Draft{}, fmt.Errorf("failed to read file: %w", err)
	}

	var d model.Draft
	if err := json.Unmarshal(data, &d); err != nil {
		return model.Draft{}, fmt.Errorf("invalid draft JSON: %w", err)
	}
	return d, nil
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
