package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/uiadoption/pkg/config"
	"github.com/matzehuels/uiadoption/pkg/errors"
	"github.com/matzehuels/uiadoption/pkg/inventory"
	"github.com/matzehuels/uiadoption/pkg/report"
)

// reportCommand groups the commands that work on stored reports.
func (c *CLI) reportCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render, inspect and list stored reports",
	}
	cmd.PersistentFlags().StringVarP(&output, "output", "o", "", "report directory (default \"report\")")

	// outputDir resolves the report directory from the flag or config.
	outputDir := func(cmd *cobra.Command) (*config.Config, error) {
		cfg, err := c.loadConfig()
		if err != nil {
			return nil, err
		}
		if cmd.Flags().Changed("output") {
			cfg.OutputDir = output
		}
		return cfg, nil
	}

	cmd.AddCommand(c.reportRenderCommand(outputDir))
	cmd.AddCommand(c.reportShowCommand(outputDir))
	cmd.AddCommand(c.reportBrowseCommand(outputDir))
	cmd.AddCommand(c.reportHistoryCommand())
	return cmd
}

type configFunc func(cmd *cobra.Command) (*config.Config, error)

func (c *CLI) reportRenderCommand(load configFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Re-render index.html from the stored reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			entries, err := report.List(cfg.OutputDir)
			if err != nil {
				return err
			}
			path, err := report.NewRenderer(cfg.OutputDir, c.Logger).Render()
			if err != nil {
				return err
			}
			printSuccess("Rendered %d report(s)", len(entries))
			printFile(path)
			printNextStep("Serve it", appName+" serve")
			return nil
		},
	}
}

func (c *CLI) reportShowCommand(load configFunc) *cobra.Command {
	format := formatTable
	top := 20

	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show a stored report (default: the latest)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			rep, name, err := loadReport(cfg.OutputDir, args)
			if err != nil {
				return err
			}
			switch format {
			case formatJSON:
				return writeJSON(os.Stdout, rep)
			case formatYAML:
				return writeYAML(os.Stdout, rep)
			}

			printKeyValue("Report", name)
			printKeyValue("Generated", rep.GeneratedAt.Local().Format(time.DateTime))
			if rep.Org != "" {
				printKeyValue("Organization", rep.Org)
			}
			if rep.RunID != "" {
				printKeyValue("Run", rep.RunID)
			}
			printStats(rep.Stats)
			printResults(rep.Data, top)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: table, json or yaml")
	cmd.Flags().IntVar(&top, "top", top, "repositories to list in table output, 0 for all")
	return cmd
}

func (c *CLI) reportBrowseCommand(load configFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [name]",
		Short: "Browse a stored report interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load(cmd)
			if err != nil {
				return err
			}
			rep, name, err := loadReport(cfg.OutputDir, args)
			if err != nil {
				return err
			}
			if len(rep.Data) == 0 {
				printInfo("Report %s has no repositories using a UI framework", name)
				return nil
			}
			_, err = tea.NewProgram(newResultListModel(name, rep.Data), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

func (c *CLI) reportHistoryCommand() *cobra.Command {
	var (
		path   string
		limit  = 20
		format = formatTable
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded scan runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("history") {
				cfg.HistoryPath = path
			}
			if cfg.HistoryPath == "" {
				return errors.New(errors.ErrCodeInvalidConfig, "no history database: pass --history or set UIADOPTION_HISTORY")
			}

			h, err := report.OpenHistory(cfg.HistoryPath)
			if err != nil {
				return err
			}
			defer h.Close()
			runs, err := h.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			switch format {
			case formatJSON:
				return writeJSON(os.Stdout, runs)
			case formatYAML:
				return writeYAML(os.Stdout, runs)
			}
			if len(runs) == 0 {
				printInfo("No runs recorded in %s", cfg.HistoryPath)
				return nil
			}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{
					r.GeneratedAt.Local().Format(time.DateTime),
					r.Org,
					strconv.Itoa(r.Processed),
					strconv.Itoa(r.Total),
					strconv.Itoa(r.UILibraries),
					strconv.Itoa(r.Collected),
				}
			}
			fmt.Println(newTable([]string{"Generated", "Org", "Processed", "Framework", "Current UI lib", "Reported"}, rows, 2, 3, 4, 5).Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "history", "", "SQLite history database (env UIADOPTION_HISTORY)")
	cmd.Flags().IntVarP(&limit, "limit", "n", limit, "runs to list, 0 for all")
	cmd.Flags().StringVarP(&format, "format", "f", format, "output format: table, json or yaml")
	return cmd
}

// loadReport loads the report named by args[0], or the latest one.
func loadReport(dir string, args []string) (*inventory.Report, string, error) {
	var (
		entry report.Entry
		err   error
	)
	if len(args) == 1 {
		entry, err = report.Find(dir, args[0])
	} else {
		entry, err = report.Latest(dir)
	}
	if err != nil {
		return nil, "", err
	}
	rep, err := report.Load(entry.Path)
	if err != nil {
		return nil, "", err
	}
	return rep, entry.Name, nil
}
