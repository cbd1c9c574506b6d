package enrich

import (
	"context"
	"errors"
	"strings"

	"github.com/zgpcy/azure-cost-report/internal/logger"
	"github.com/zgpcy/azure-cost-report/internal/metrics"
	"github.com/zgpcy/azure-cost-report/internal/report"
	"github.com/zgpcy/azure-cost-report/internal/usage"
)

// Unknown is shown when a service name or resource type cannot be determined
const Unknown = "Desconhecido"

// MsgLookupFailed prefixes the message printed when a type lookup fails
const MsgLookupFailed = "Erro ao acessar a API de Gerenciamento de Recursos: %v"

// ErrResourceNotFound is returned by a TypeFinder when no resource matches
var ErrResourceNotFound = errors.New("resource not found")

// TypeFinder resolves a resource name to its resource type.
// Implementations wrap ErrResourceNotFound when nothing matches.
type TypeFinder interface {
	FindType(ctx context.Context, name string) (string, error)
}

// ErrorPrinter shows lookup failures to the user
type ErrorPrinter interface {
	Error(format string, a ...any)
}

// ServiceName returns the last "/" separated segment of an instance ID.
// An empty ID or one ending in "/" yields Unknown.
func ServiceName(instanceID string) string {
	name := instanceID
	if i := strings.LastIndex(instanceID, "/"); i >= 0 {
		name = instanceID[i+1:]
	}
	if name == "" {
		return Unknown
	}
	return name
}

// Resolver maps service names to resource types, memoizing every answer
// for the lifetime of the Resolver. Not safe for concurrent use.
type Resolver struct {
	finder  TypeFinder
	printer ErrorPrinter
	logger  *logger.Logger
	metrics *metrics.Metrics

	cache map[string]string
}

// NewResolver creates a Resolver. printer, log and m may be nil.
func NewResolver(finder TypeFinder, printer ErrorPrinter, log *logger.Logger, m *metrics.Metrics) *Resolver {
	if log == nil {
		log = logger.Discard()
	}
	return &Resolver{
		finder:  finder,
		printer: printer,
		logger:  log,
		metrics: m,
		cache:   make(map[string]string),
	}
}

// ResourceType returns the resource type of the named resource.
// Lookup failures and misses return Unknown and are never fatal.
func (r *Resolver) ResourceType(ctx context.Context, name string) string {
	if t, ok := r.cache[name]; ok {
		r.observe(metrics.LookupCacheHit)
		return t
	}

	t := Unknown
	if name == Unknown {
		r.cache[name] = t
		return t
	}

	found, err := r.finder.FindType(ctx, name)
	switch {
	case err == nil:
		t = found
		r.observe(metrics.LookupFound)
	case errors.Is(err, ErrResourceNotFound):
		r.logger.Debug("No resource matches service name", "service", name)
		r.observe(metrics.LookupNotFound)
	default:
		r.logger.Warn("Resource type lookup failed", "service", name, "error", err)
		if r.printer != nil {
			r.printer.Error(MsgLookupFailed, err)
		}
		r.observe(metrics.LookupError)
	}

	r.cache[name] = t
	return t
}

func (r *Resolver) observe(result metrics.LookupResult) {
	if r.metrics != nil {
		r.metrics.ObserveLookup(result)
	}
}

// Enrich turns usage records into report rows, keeping their order
func (r *Resolver) Enrich(ctx context.Context, records []usage.Record) []report.Row {
	rows := make([]report.Row, 0, len(records))
	for _, rec := range records {
		service := ServiceName(rec.InstanceID)
		rows = append(rows, report.Row{
			Service:      service,
			Cost:         rec.Cost,
			UsageDate:    rec.UsageEnd,
			ResourceType: r.ResourceType(ctx, service),
		})
	}
	return rows
}
