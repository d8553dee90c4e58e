package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/uiadoption/pkg/analyzer"
	"github.com/matzehuels/uiadoption/pkg/components"
	"github.com/matzehuels/uiadoption/pkg/config"
	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/inventory"
	"github.com/matzehuels/uiadoption/pkg/library"
	"github.com/matzehuels/uiadoption/pkg/source"
)

// Output formats for analyze and report show.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func validateFormat(format string) error {
	switch format {
	case formatTable, formatJSON, formatYAML:
		return nil
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown format %q (want table, json or yaml)", format)
}

// newAnalyzer builds an analyzer from the configured library definitions.
func newAnalyzer(cfg *config.Config, fetcher source.Fetcher, logger *log.Logger) (*analyzer.Analyzer, error) {
	defs, err := cfg.Definitions()
	if err != nil {
		return nil, err
	}
	return analyzer.New(
		fetcher,
		library.NewClassifier(defs),
		components.NewCounter(nil, logger),
		analyzer.WithTimeout(cfg.Timeout),
		analyzer.WithLogger(logger),
	), nil
}

type analyzeOpts struct {
	name   string
	format string
}

func (c *CLI) analyzeCommand() *cobra.Command {
	opts := analyzeOpts{format: formatTable}

	cmd := &cobra.Command{
		Use:   "analyze [dir]",
		Short: "Analyze a single local checkout",
		Long: `Analyze classifies one directory already on disk and counts its component usage.

Examples:
  uiadoption analyze
  uiadoption analyze ../portal --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(opts.format); err != nil {
				return err
			}
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			a, err := newAnalyzer(cfg, nil, c.Logger)
			if err != nil {
				return err
			}

			name := opts.name
			if name == "" {
				abs, err := filepath.Abs(dir)
				if err != nil {
					return errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", dir)
				}
				name = filepath.Base(abs)
			}
			res, err := a.AnalyzeDir(cmd.Context(), name, dir)
			if err != nil {
				return err
			}
			return writeResult(os.Stdout, res, opts.format)
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "repository name in the output (default: directory name)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: table, json or yaml")
	return cmd
}

// writeResult prints one result in the requested format.
func writeResult(w io.Writer, res inventory.Result, format string) error {
	switch format {
	case formatJSON:
		return writeJSON(w, res)
	case formatYAML:
		return writeYAML(w, res)
	}

	fmt.Fprintln(w, StyleTitle.Render(res.Repo))
	fmt.Fprintln(w, keyValue("Library", fmt.Sprintf("%s (%s)", res.Variant.Label(), res.Variant)))
	fmt.Fprintln(w, keyValue("Versions", joinVersions(res.Versions)))
	fmt.Fprintln(w, keyValue("Components", strconv.Itoa(res.Count)))
	if len(res.Elements) > 0 {
		fmt.Fprintln(w, newTable([]string{"Component", "Uses"}, elementRows(res.Elements), 1).Render())
	}
	return nil
}

// elementRows sorts component counts by descending use, then name.
func elementRows(elements map[string]int) [][]string {
	names := make([]string, 0, len(elements))
	for name := range elements {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		a, b := elements[names[i]], elements[names[j]]
		if a != b {
			return a > b
		}
		return names[i] < names[j]
	})
	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, strconv.Itoa(elements[name])}
	}
	return rows
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
