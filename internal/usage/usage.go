package usage

import (
	"context"
	"fmt"
	"time"
)

// SourceType names the Azure API a Source reads usage from
type SourceType string

// Supported usage sources
const (
	SourceConsumption    SourceType = "consumption"
	SourceCostManagement SourceType = "costmanagement"
)

// Source is the interface every usage backend must implement
type Source interface {
	// ListUsage returns every usage record for scope matching filter.
	// Pagination is handled by the SDK; any error aborts the whole listing.
	ListUsage(ctx context.Context, scope, filter string) ([]Record, error)

	// Name returns the source name
	Name() SourceType
}

// Record is one billed usage line as read from the provider.
// Fields are copied out of the SDK model and never mutated.
type Record struct {
	InstanceID string    // Hierarchical path, e.g. /subscriptions/.../virtualMachines/vm-1
	Cost       float64   // Pre-tax cost
	Currency   string    // Billing currency when the API reports one
	UsageEnd   time.Time // UTC end of the usage window
}

// Scope returns the subscription scope path for an ID
func Scope(subscriptionID string) string {
	return fmt.Sprintf("/subscriptions/%s", subscriptionID)
}
