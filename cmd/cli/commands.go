package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"opsdash/domain/analytics"
	"opsdash/domain/core"
	"opsdash/domain/dataset"
	"opsdash/internal"
	"opsdash/internal/analysis"
	"opsdash/internal/config"
	"opsdash/internal/container"
)

// cliApp lazily builds the container so that --help works without config
type cliApp struct {
	container *container.Container
	verbose   bool
}

func newRootCmd() *cobra.Command {
	a := &cliApp{}

	rootCmd := &cobra.Command{
		Use:           "opsdash",
		Short:         "Import operations datasets and derive KPIs, charts and scenarios",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.container != nil {
				return a.container.Close()
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log store and import activity to stderr")

	rootCmd.AddCommand(
		a.newImportCmd(),
		a.newListCmd(),
		a.newKPIsCmd(),
		a.newChartCmd(),
		a.newScenarioCmd(),
		a.newAnalyzeCmd(),
		a.newClearCmd(),
	)
	return rootCmd
}

// load builds the container from the environment. The memory backend does not
// outlive a single command, so the CLI reads and writes the file backend instead.
func (a *cliApp) load(cmd *cobra.Command) (*container.Container, error) {
	if a.container != nil {
		return a.container, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Store.Backend == config.BackendMemory {
		cfg.Store.Backend = config.BackendFile
	}

	logger := internal.NewNopLogger()
	if a.verbose {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}
	c, err := container.New(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, err
	}
	a.container = c
	return c, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *cliApp) newImportCmd() *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a CSV, JSON or XLSX file into a domain",
		Long: `Parse, profile and store a data file.

Example: opsdash import berths.csv --domain terminal`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dataset.ParseDomain(domain)
			if err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			c, err := a.load(cmd)
			if err != nil {
				return err
			}

			result, err := c.Service.ImportFile(cmd.Context(), args[0], d, data)
			if err != nil {
				return err
			}
			ds := result.Dataset
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %s as %s\n", ds.Name, ds.ID)
			fmt.Fprintf(out, "  %d rows, %d columns, %s quality (%s%% complete)\n",
				ds.RowCount, ds.ColumnCount, ds.Summary.DataQuality, strconv.FormatFloat(ds.Summary.Completeness, 'f', -1, 64))
			if result.Persist.Warning != "" {
				fmt.Fprintf(out, "  warning: %s\n", result.Persist.Warning)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&domain, "domain", "d", "", "Operation domain (terminal, courier, workforce, energy)")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func (a *cliApp) newListCmd() *cobra.Command {
	var domain string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored datasets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			var list []*dataset.Dataset
			if domain != "" {
				d, err := dataset.ParseDomain(domain)
				if err != nil {
					return err
				}
				list, err = c.Service.ListByDomain(cmd.Context(), d)
				if err != nil {
					return err
				}
			} else if list, err = c.Service.ListDatasets(cmd.Context()); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tDOMAIN\tROWS\tCOLUMNS\tQUALITY")
			for _, ds := range list {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n", ds.ID, ds.Name, ds.Domain, ds.RowCount, ds.ColumnCount, ds.Summary.DataQuality)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&domain, "domain", "d", "", "Only list datasets of this domain")
	return cmd
}

func (a *cliApp) newKPIsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kpis [domain]",
		Short: "Print the KPI record of a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dataset.ParseDomain(args[0])
			if err != nil {
				return err
			}
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			kpis, hasData, err := c.Service.GetKPIs(cmd.Context(), d)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"domain": d, "kpis": kpis, "hasRealData": hasData})
		},
	}
}

func (a *cliApp) newChartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chart [domain] [line|bar|pie|area]",
		Short: "Print chart records for a domain",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := dataset.ParseDomain(args[0])
			if err != nil {
				return err
			}
			shape, err := analytics.ParseShape(args[1])
			if err != nil {
				return err
			}
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			records, err := c.Service.GetChartData(cmd.Context(), d, shape)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}
}

func (a *cliApp) newScenarioCmd() *cobra.Command {
	var level float64

	cmd := &cobra.Command{
		Use:   "scenario [dataset-id] [column]",
		Short: "Project a numeric column at a workforce level",
		Long: `Run a what-if projection of one numeric column.

Example: opsdash scenario 0190c2a4-... turn_time --level 120`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := core.ParseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			result, err := c.Service.RunScenario(cmd.Context(), id, args[1], level)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), result)
		},
	}

	cmd.Flags().Float64Var(&level, "level", 100, "Workforce level in percent of baseline (50-150)")
	return cmd
}

func (a *cliApp) newAnalyzeCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "analyze [dataset-id]",
		Short: "Print the analysis report of a dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := analysis.ParseFormat(format)
			if err != nil {
				return err
			}
			id, err := core.ParseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			report, err := c.Service.AnalyzeDataset(cmd.Context(), id)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), report.Render(f))
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Output format (markdown or html)")
	return cmd
}

func (a *cliApp) newClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every stored dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.load(cmd)
			if err != nil {
				return err
			}
			if err := c.Service.ClearDatasets(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "All datasets cleared")
			return nil
		},
	}
}
