package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zgpcy/azure-cost-report/internal/console"
	"github.com/zgpcy/azure-cost-report/internal/daterange"
	"github.com/zgpcy/azure-cost-report/internal/filter"
	"github.com/zgpcy/azure-cost-report/internal/logger"
	"github.com/zgpcy/azure-cost-report/internal/metrics"
	"github.com/zgpcy/azure-cost-report/internal/report"
	"github.com/zgpcy/azure-cost-report/internal/usage"
)

// Messages shown to the operator
const (
	MsgFilter     = "Filtro usado: %s\n"
	MsgFetchError = "Erro ao obter os detalhes de uso: %v"
	MsgFetching   = "Obtendo detalhes de uso..."
)

// ErrUsageFetch is returned when the usage listing fails; no table is printed
var ErrUsageFetch = errors.New("failed to fetch usage details")

// DateSource yields the date range to report on
type DateSource interface {
	Collect(ctx context.Context) (daterange.DateRange, error)
}

// DateSourceFunc adapts a function to DateSource
type DateSourceFunc func(ctx context.Context) (daterange.DateRange, error)

// Collect calls f(ctx)
func (f DateSourceFunc) Collect(ctx context.Context) (daterange.DateRange, error) {
	return f(ctx)
}

// FixedRange returns a DateSource that always yields r
func FixedRange(r daterange.DateRange) DateSource {
	return DateSourceFunc(func(context.Context) (daterange.DateRange, error) {
		return r, nil
	})
}

// Enricher turns usage records into report rows
type Enricher interface {
	Enrich(ctx context.Context, records []usage.Record) []report.Row
}

// Printer renders report rows
type Printer interface {
	Print(rows []report.Row) error
}

// Console shows progress and errors to the operator
type Console interface {
	Printf(format string, a ...any)
	Error(format string, a ...any)
	Status(message string) console.Status
}

// Options wires a Runner. Logger and Metrics may be nil.
type Options struct {
	SubscriptionID string
	Dates          DateSource
	Source         usage.Source
	Enricher       Enricher
	Printer        Printer
	Console        Console
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
}

// Runner produces one cost report
type Runner struct {
	scope    string
	dates    DateSource
	source   usage.Source
	enricher Enricher
	printer  Printer
	console  Console
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

// New creates a Runner
func New(opts Options) *Runner {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	return &Runner{
		scope:    usage.Scope(opts.SubscriptionID),
		dates:    opts.Dates,
		source:   opts.Source,
		enricher: opts.Enricher,
		printer:  opts.Printer,
		console:  opts.Console,
		logger:   log.WithFields("subscription", opts.SubscriptionID),
		metrics:  m,
	}
}

// Run collects the date range, fetches every usage record, enriches them
// and prints the table. Records are fetched in full before anything is
// printed, so a failed listing prints no rows.
func (r *Runner) Run(ctx context.Context) error {
	defer r.metrics.Log(r.logger)

	dr, err := r.dates.Collect(ctx)
	if err != nil {
		return fmt.Errorf("failed to collect date range: %w", err)
	}

	odata := filter.UsageEnd(dr)
	r.console.Printf(MsgFilter, odata)
	r.logger.Info("Fetching usage details",
		"source", r.source.Name(),
		"range", dr.String(),
		"days", dr.Days())

	records, err := r.fetch(ctx, odata)
	if err != nil {
		r.logger.Error("Usage listing failed", "source", r.source.Name(), "error", err)
		r.console.Error(MsgFetchError, err)
		return fmt.Errorf("%w: %w", ErrUsageFetch, err)
	}

	rows := r.enricher.Enrich(ctx, records)
	if err := r.printer.Print(rows); err != nil {
		return err
	}
	r.metrics.ObserveRows(len(rows))

	r.logger.Info("Report printed", "rows", len(rows))
	return nil
}

func (r *Runner) fetch(ctx context.Context, odata string) ([]usage.Record, error) {
	status := r.console.Status(MsgFetching)
	defer status.Stop()

	start := time.Now()
	records, err := r.source.ListUsage(ctx, r.scope, odata)
	r.metrics.ObserveFetch(string(r.source.Name()), len(records), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("Usage details fetched", "records", len(records), "duration", time.Since(start))
	return records, nil
}
