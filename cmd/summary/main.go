package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"sellerpulse/internal/config"
	"sellerpulse/internal/dataprocessing"
	"sellerpulse/internal/exporter"
	"sellerpulse/internal/files"
	"sellerpulse/internal/infrastructure"
	"sellerpulse/internal/services"
	"sellerpulse/internal/validation"
	"sellerpulse/pkg/contracts"
	"sellerpulse/pkg/contracts/domain"
)

// cli holds the flag values shared by every subcommand.
type cli struct {
	configFile string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

// reportFlags are the per-run overrides of the report configuration.
type reportFlags struct {
	dir       string
	out       string
	prefix    string
	mode      string
	from      string
	to        string
	selection string
	schema    string
	compact   bool

	cogs, gst, tds, other, cycle float64
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "sellerpulse-summary",
		Short: "Summarize marketplace order payment exports",
		Long: `Reads one or more "Order Payments" workbooks and prints the gross profit,
funds flow, quantity, NEFT-wise and productwise summary as JSON.

Workbooks are read from the configured uploads directory unless files are
passed as arguments.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: config.yaml search path)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(c.newReportCmd(), c.newFilesCmd(), newVersionCmd())
	return root
}

func (c *cli) init() error {
	var err error
	if c.configFile != "" {
		c.cfg, err = config.LoadFrom(c.configFile)
	} else {
		c.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	level := slog.LevelWarn
	if c.verbose {
		level = slog.LevelDebug
	}
	c.logger = infrastructure.WithComponent(
		infrastructure.NewLoggerWithWriter(c.stderr, &slog.HandlerOptions{Level: level}), "cli")
	return nil
}

func (c *cli) newReportCmd() *cobra.Command {
	var f reportFlags

	cmd := &cobra.Command{
		Use:   "report [workbook.xlsx ...]",
		Short: "Generate the order payments summary",
		Example: `  sellerpulse-summary report --mode ads_adjusted --from 2025-04-01 --to 2025-04-30
  sellerpulse-summary report april.xlsx may.xlsx --out ./reports --cogs 40000 --gst 1200 --tds 150 --other 0`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runReport(cmd, f, args)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.dir, "dir", "", "directory of workbooks (default: configured uploads dir)")
	fl.StringVar(&f.out, "out", "", "write CSV and xlsx exports into this directory")
	fl.StringVar(&f.prefix, "prefix", "order_payments", "file name prefix for exports")
	fl.StringVar(&f.mode, "mode", "", "standard or ads_adjusted")
	fl.StringVar(&f.from, "from", "", "first payment date, YYYY-MM-DD")
	fl.StringVar(&f.to, "to", "", "last payment date, YYYY-MM-DD")
	fl.StringVar(&f.selection, "selection", "", "all, first or latest")
	fl.StringVar(&f.schema, "schema", "", "column schema version, or auto")
	fl.BoolVar(&f.compact, "compact", false, "print JSON on one line")
	fl.Float64Var(&f.cogs, "cogs", 0, "cost of goods sold")
	fl.Float64Var(&f.gst, "gst", 0, "GST payable")
	fl.Float64Var(&f.tds, "tds", 0, "TDS")
	fl.Float64Var(&f.other, "other", 0, "other charges")
	fl.Float64Var(&f.cycle, "cycle-days", 0, "average payment cycle in days")
	return cmd
}

func (c *cli) runReport(cmd *cobra.Command, f reportFlags, args []string) error {
	store, err := c.openStore(f.dir, args)
	if err != nil {
		return err
	}

	registry, err := services.BuildSchemaRegistry(c.cfg.Report.Schemas)
	if err != nil {
		return err
	}
	svc := services.NewReportService(store, dataprocessing.NewPipeline(c.logger, registry),
		c.cfg.Report, infrastructure.NoopReportMetrics(), c.logger)

	q := services.SummaryQuery{
		Mode:      f.mode,
		From:      f.from,
		To:        f.to,
		Selection: f.selection,
		Schema:    f.schema,
		Constants: constantOverrides(cmd, f),
	}

	ctx := infrastructure.EnsureTraceID(cmd.Context())
	report, err := svc.Summary(ctx, q)
	if err != nil {
		infrastructure.WithError(c.logger, err).DebugContext(ctx, "Report failed")
		return err
	}

	enc := json.NewEncoder(c.stdout)
	if !f.compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if f.out == "" {
		return nil
	}
	if err := validation.NewFileValidator(c.logger).ValidateOutputDirectory(f.out); err != nil {
		return err
	}
	paths, err := exporter.NewReportExporter(f.out, c.logger).ExportReport(report, f.prefix)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Fprintln(c.stderr, "wrote", p)
	}
	return nil
}

// constantOverrides takes only the constants whose flags were set, so an
// explicit zero still overrides the configuration.
func constantOverrides(cmd *cobra.Command, f reportFlags) domain.Constants {
	var k domain.Constants
	set := func(name string, v float64) *float64 {
		if cmd.Flags().Changed(name) {
			return domain.Float(v)
		}
		return nil
	}
	k.CostOfGoodsSold = set("cogs", f.cogs)
	k.GSTPayable = set("gst", f.gst)
	k.TDS = set("tds", f.tds)
	k.OtherCharges = set("other", f.other)
	if cmd.Flags().Changed("cycle-days") {
		k.AveragePaymentCycleDays = domain.Float(f.cycle)
	}
	return k
}

// openStore reads explicit workbook arguments into memory, or else opens dir
// (the configured uploads directory when empty).
func (c *cli) openStore(dir string, args []string) (files.Store, error) {
	if len(args) == 0 {
		if dir == "" {
			dir = c.cfg.Paths.UploadsDir
		}
		store, err := files.NewDirStore(dir, c.logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	}

	validator := validation.NewFileValidator(c.logger)
	store := files.NewMemoryStore()
	for _, path := range args {
		if err := validator.ValidateExcelFile(path); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		modTime := time.Now()
		if info, err := os.Stat(path); err == nil {
			modTime = info.ModTime()
		}
		store.Put(filepath.Base(path), data, modTime)
	}
	return store, nil
}

func (c *cli) newFilesCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List the stored order payment workbooks",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = c.cfg.Paths.UploadsDir
			}
			store, err := files.NewDirStore(dir, c.logger)
			if err != nil {
				return err
			}
			stored, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, fi := range stored {
				fmt.Fprintf(c.stdout, "%s\t%d\t%s\n", fi.Name, fi.Size, fi.ModTime.Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "directory of workbooks (default: configured uploads dir)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Printing the version needs no configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), contracts.GetFullVersionString())
		},
	}
}
