package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/zgpcy/azure-cost-report/internal/app"
	"github.com/zgpcy/azure-cost-report/internal/clock"
	"github.com/zgpcy/azure-cost-report/internal/config"
	"github.com/zgpcy/azure-cost-report/internal/console"
	"github.com/zgpcy/azure-cost-report/internal/daterange"
	"github.com/zgpcy/azure-cost-report/internal/enrich"
	"github.com/zgpcy/azure-cost-report/internal/logger"
	"github.com/zgpcy/azure-cost-report/internal/metrics"
	"github.com/zgpcy/azure-cost-report/internal/report"
	"github.com/zgpcy/azure-cost-report/internal/usage"
	"github.com/zgpcy/azure-cost-report/internal/version"
)

// Exit codes
const (
	ExitOK          = 0
	ExitError       = 1
	ExitInterrupted = 130
)

// ErrInvalidFlag is returned for flag values outside their accepted range
var ErrInvalidFlag = errors.New("invalid flag value")

// Backends are the Azure clients one run talks to
type Backends struct {
	Source usage.Source
	Types  enrich.TypeFinder
}

// BackendFactory builds the Azure clients for a validated configuration
type BackendFactory func(cfg *config.Config, log *logger.Logger) (Backends, error)

type flags struct {
	configPath   string
	envFile      string
	subscription string
	start        string
	end          string
	lastDays     int
	source       string
	logLevel     string
	logFormat    string
	total        bool
}

// App is the azure-cost-report command line
type App struct {
	root  *cobra.Command
	flags flags

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	clock    clock.Clock
	backends BackendFactory
}

// Option customizes an App
type Option func(*App)

// WithIO replaces stdin, stdout and stderr
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) {
		a.in, a.out, a.errOut = in, out, errOut
	}
}

// WithClock replaces the clock used by --last-days
func WithClock(c clock.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithBackends replaces the Azure client factory
func WithBackends(f BackendFactory) Option {
	return func(a *App) { a.backends = f }
}

// New creates the command line application
func New(opts ...Option) *App {
	a := &App{
		in:       os.Stdin,
		out:      os.Stdout,
		errOut:   os.Stderr,
		clock:    clock.RealClock{},
		backends: AzureBackends,
	}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "azure-cost-report",
		Short: "Relatório de custos Azure por serviço",
		Long: "Consulta a API de Consumo do Azure para um intervalo de datas e imprime\n" +
			"uma tabela de custos por serviço com o tipo de recurso de cada serviço.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          a.run,
	}
	root.SetVersionTemplate(`{{printf "azure-cost-report %s\n" .Version}}`)
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "C", "", "Path to a YAML, TOML or JSON configuration file")
	pf.StringVar(&a.flags.envFile, "env-file", config.DefaultDotEnvFile, "Dotenv file loaded before reading environment variables")

	f := root.Flags()
	f.StringVarP(&a.flags.subscription, "subscription", "s", "", "Azure subscription ID")
	f.StringVar(&a.flags.start, "start", "", "Start date (YYYY-MM-DD); skips the interactive prompt")
	f.StringVar(&a.flags.end, "end", "", "End date (YYYY-MM-DD); skips the interactive prompt")
	f.IntVar(&a.flags.lastDays, "last-days", 0, "Report the last N days instead of prompting for dates; bare --last-days or 0 uses days_to_query")
	f.Lookup("last-days").NoOptDefVal = "0"
	f.StringVar(&a.flags.source, "source", "", "Usage source: consumption or costmanagement")
	f.StringVar(&a.flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.StringVar(&a.flags.logFormat, "log-format", "", "Log format: text or json")
	f.BoolVar(&a.flags.total, "total", false, "Print the sum of all rows below the table")

	root.MarkFlagsRequiredTogether("start", "end")
	root.MarkFlagsMutuallyExclusive("start", "last-days")

	root.AddCommand(a.versionCommand())

	a.root = root
	return a
}

// Execute runs the command with ctx
func (a *App) Execute(ctx context.Context) error {
	return a.root.ExecuteContext(ctx)
}

func (a *App) versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Mostra a versão",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "azure-cost-report %s\n", version.String())
		},
	}
}

// overrides maps explicitly set flags onto the configuration
func (a *App) overrides(cmd *cobra.Command) config.Override {
	return func(cfg *config.Config) {
		f := cmd.Flags()
		if f.Changed("subscription") {
			cfg.SubscriptionID = a.flags.subscription
		}
		if f.Changed("source") {
			cfg.Source = a.flags.source
		}
		if f.Changed("log-level") {
			cfg.LogLevel = a.flags.logLevel
		}
		if f.Changed("log-format") {
			cfg.LogFormat = a.flags.logFormat
		}
		if f.Changed("last-days") && a.flags.lastDays > 0 {
			cfg.DateRange.DaysToQuery = a.flags.lastDays
		}
	}
}

func (a *App) run(cmd *cobra.Command, _ []string) error {
	if a.flags.lastDays < 0 {
		return fmt.Errorf("%w: --last-days must not be negative, got %d", ErrInvalidFlag, a.flags.lastDays)
	}

	if !console.IsTerminal(a.out) {
		console.Plain()
	}

	if err := config.LoadDotEnv(a.flags.envFile); err != nil {
		return err
	}

	cfg, err := config.Load(a.flags.configPath, a.overrides(cmd))
	if err != nil {
		return err
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, a.errOut)
	log.Info("Azure Cost Report starting",
		"version", version.Version,
		"config_path", a.flags.configPath,
		"source", cfg.Source,
		"resource_type", cfg.ResourceType,
		"timezone", cfg.Timezone,
		"api_timeout_seconds", cfg.APITimeout)

	dates, err := a.dateSource(cmd, cfg)
	if err != nil {
		return err
	}

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	backends, err := a.backends(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create Azure clients: %w", err)
	}

	con := console.New(a.out, a.errOut)
	m := metrics.New()

	runner := app.New(app.Options{
		SubscriptionID: cfg.SubscriptionID,
		Dates:          dates,
		Source:         backends.Source,
		Enricher:       enrich.NewResolver(backends.Types, con, log, m),
		Printer:        report.NewPrinter(a.out, loc, a.flags.total),
		Console:        con,
		Logger:         log,
		Metrics:        m,
	})

	return runner.Run(cmd.Context())
}

// dateSource picks batch (--start/--end), relative (--last-days) or interactive input
func (a *App) dateSource(cmd *cobra.Command, cfg *config.Config) (app.DateSource, error) {
	switch {
	case cmd.Flags().Changed("start"):
		dr, err := daterange.Parse(a.flags.start, a.flags.end)
		if err != nil {
			return nil, fmt.Errorf("invalid --start/--end: %w", err)
		}
		return app.FixedRange(dr), nil

	case cmd.Flags().Changed("last-days"):
		dr, err := daterange.Relative(a.clock.Now(), cfg.DateRange.DaysToQuery, *cfg.DateRange.EndDateOffset)
		if err != nil {
			return nil, fmt.Errorf("invalid --last-days: %w", err)
		}
		return app.FixedRange(dr), nil

	default:
		return daterange.NewCollector(a.in, a.out), nil
	}
}

// ExitCode maps a run error to the process exit status
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, daterange.ErrAborted), errors.Is(err, context.Canceled):
		return ExitInterrupted
	default:
		return ExitError
	}
}

// ReportError prints err unless the run already showed it to the operator
func ReportError(w io.Writer, err error) {
	if err == nil || errors.Is(err, app.ErrUsageFetch) || ExitCode(err) == ExitInterrupted {
		return
	}
	fmt.Fprintf(w, "%s %v\n", console.BoldRed("Erro:"), err)
}
