package main

import (
	"context"
	"fmt"
	"io"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/unbound-force/testscope/internal/analysis"
	"github.com/unbound-force/testscope/internal/codemodel"
	"github.com/unbound-force/testscope/internal/config"
	"github.com/unbound-force/testscope/internal/report"
	"github.com/unbound-force/testscope/internal/signatures"
	"github.com/unbound-force/testscope/internal/taxonomy"
)

// logger is the application-wide structured logger (writes to stderr).
var logger = charmlog.NewWithOptions(os.Stderr, charmlog.Options{
	ReportTimestamp: false,
})

// Set by build flags.
var version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "testscope",
		Short: "Testscope -- test characterization via reachability analysis",
		Long: `Testscope analyzes Java test corpora from extracted code models
and characterizes every test method: scope classification, focal
classes, call/assertion sequences, fixtures, mocks, and inputs.`,
		Version: version,
	}

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newSchemaCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// analyzeParams holds the parsed flags for the analyze command.
type analyzeParams struct {
	modelPath   string
	configPath  string
	format      string
	class       string
	interactive bool
	stdout      io.Writer
	stderr      io.Writer
}

// runAnalyze is the extracted, testable body of the analyze command.
func runAnalyze(ctx context.Context, p analyzeParams) error {
	if p.stderr != nil {
		logger.SetOutput(p.stderr)
	}
	if p.format != "text" && p.format != "json" && p.format != "html" {
		return fmt.Errorf("invalid format %q: must be 'text', 'json', or 'html'", p.format)
	}
	if p.format == "html" {
		return fmt.Errorf("HTML report format is not yet implemented")
	}

	cfg, err := config.Load(p.configPath)
	if err != nil {
		return err
	}
	applyLogLevel(cfg.Logging.Level)

	tables := signatures.Default()
	if cfg.Analysis.SignatureTables != "" {
		tables, err = signatures.LoadFile(cfg.Analysis.SignatureTables)
		if err != nil {
			return err
		}
	}

	logger.Info("loading code model", "path", p.modelPath)
	model, err := codemodel.LoadFile(p.modelPath)
	if err != nil {
		return err
	}

	analyzer := analysis.New(model, tables, cfg, logger, version)
	pa, err := analyzer.AnalyzeProject(ctx)
	if err != nil {
		return err
	}

	if p.class != "" {
		filtered := filterClasses(pa.Classes, p.class)
		if len(filtered) == 0 {
			return fmt.Errorf("test class %q not found in project %q", p.class, pa.Project)
		}
		pa.Classes = filtered
		pa.Totals = taxonomy.ComputeTotals(filtered)
	}

	if pa.Totals.TestClasses == 0 {
		logger.Warn("no test classes found to analyze")
	} else {
		logger.Info("analysis complete",
			"classes", pa.Totals.TestClasses,
			"methods", pa.Totals.TestMethods,
			"skipped", pa.Totals.Skipped)
	}

	if p.interactive {
		return runInteractiveAnalyze(*pa)
	}

	switch p.format {
	case "json":
		return report.WriteJSON(p.stdout, *pa, reportVersion)
	default:
		return report.WriteText(p.stdout, *pa)
	}
}

// reportVersion is the JSON output schema version.
const reportVersion = "0.1.0"

// filterClasses keeps the analyses whose class name matches exactly,
// or whose simple name matches when the filter is unqualified.
func filterClasses(classes []taxonomy.TestClassAnalysis, filter string) []taxonomy.TestClassAnalysis {
	var out []taxonomy.TestClassAnalysis
	for _, tca := range classes {
		if tca.Class == filter || codemodel.SimpleName(tca.Class) == filter {
			out = append(out, tca)
		}
	}
	return out
}

func applyLogLevel(level string) {
	switch level {
	case "debug":
		logger.SetLevel(charmlog.DebugLevel)
	case "warn":
		logger.SetLevel(charmlog.WarnLevel)
	case "error":
		logger.SetLevel(charmlog.ErrorLevel)
	default:
		logger.SetLevel(charmlog.InfoLevel)
	}
}

func newAnalyzeCmd() *cobra.Command {
	var (
		configPath  string
		format      string
		class       string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "analyze [code-model.json]",
		Short: "Characterize the test methods of a code model",
		Long: `Analyze an extracted code model and report the characterization
of every test method it contains: scope, focal classes, the ordered
call/assertion sequence, fixtures, mocks, and structured inputs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd.Context(), analyzeParams{
				modelPath:   args[0],
				configPath:  configPath,
				format:      format,
				class:       class,
				interactive: interactive,
				stdout:      os.Stdout,
				stderr:      os.Stderr,
			})
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "",
		"path to a YAML configuration file")
	cmd.Flags().StringVar(&format, "format", "text",
		"output format: text, json, or html")
	cmd.Flags().StringVarP(&class, "class", "c", "",
		"analyze a specific test class (default: all)")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false,
		"launch interactive TUI for browsing results")

	return cmd
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [report|model]",
		Short: "Print a JSON Schema used by testscope",
		Long: `Print a JSON Schema (Draft 2020-12). "report" (the default)
documents the structure of testscope analyze --format=json output;
"model" documents the code model input format. Useful for validating
data or generating client types.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			which := "report"
			if len(args) == 1 {
				which = args[0]
			}
			switch which {
			case "report":
				_, err := fmt.Fprintln(cmd.OutOrStdout(), report.Schema)
				return err
			case "model":
				_, err := fmt.Fprintln(cmd.OutOrStdout(), codemodel.Schema)
				return err
			default:
				return fmt.Errorf("unknown schema %q: must be 'report' or 'model'", which)
			}
		},
	}
}
