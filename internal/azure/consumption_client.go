package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/consumption/armconsumption"
	"github.com/zgpcy/azure-cost-report/internal/config"
	"github.com/zgpcy/azure-cost-report/internal/logger"
	"github.com/zgpcy/azure-cost-report/internal/usage"
)

// usageDetailsLister is the subset of *armconsumption.UsageDetailsClient in use
type usageDetailsLister interface {
	NewListPager(scope string, options *armconsumption.UsageDetailsClientListOptions) *runtime.Pager[armconsumption.UsageDetailsClientListResponse]
}

// ConsumptionClient lists usage details through the Consumption API and
// implements usage.Source
type ConsumptionClient struct {
	client  usageDetailsLister
	timeout time.Duration
	logger  *logger.Logger
}

// Verify that ConsumptionClient implements usage.Source
var _ usage.Source = (*ConsumptionClient)(nil)

// NewConsumptionClient creates a usage details client
func NewConsumptionClient(cred azcore.TokenCredential, cfg *config.Config, log *logger.Logger) (*ConsumptionClient, error) {
	client, err := armconsumption.NewUsageDetailsClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumption client: %w", err)
	}

	return &ConsumptionClient{
		client:  client,
		timeout: cfg.Timeout(),
		logger:  log,
	}, nil
}

// Name returns the source type
func (c *ConsumptionClient) Name() usage.SourceType {
	return usage.SourceConsumption
}

// ListUsage walks every page of usage details for scope. The API timeout
// applies to each page request.
func (c *ConsumptionClient) ListUsage(ctx context.Context, scope, filter string) ([]usage.Record, error) {
	c.logger.Debug("Listing usage details",
		"scope", scope,
		"filter", filter)

	pager := c.client.NewListPager(scope, &armconsumption.UsageDetailsClientListOptions{
		Filter: to.Ptr(filter),
	})

	var records []usage.Record
	for page := 1; pager.More(); page++ {
		resp, err := c.nextPage(ctx, pager)
		if err != nil {
			return nil, fmt.Errorf("usage details page %d: %w", page, err)
		}

		for _, item := range resp.Value {
			record, ok := convertUsageDetail(item)
			if !ok {
				c.logger.Warn("Skipping usage detail without properties or date", "page", page)
				continue
			}
			records = append(records, record)
		}

		c.logger.Debug("Fetched usage details page",
			"page", page,
			"items", len(resp.Value),
			"records_total", len(records))
	}

	return records, nil
}

func (c *ConsumptionClient) nextPage(ctx context.Context, pager *runtime.Pager[armconsumption.UsageDetailsClientListResponse]) (armconsumption.UsageDetailsClientListResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return pager.NextPage(ctx)
}

// convertUsageDetail copies the fields the report needs out of either
// usage detail shape. Modern records carry instanceName/costInUSD; legacy
// ones carry resourceId/cost. Details without properties or a date are
// rejected.
func convertUsageDetail(item armconsumption.UsageDetailClassification) (usage.Record, bool) {
	switch d := item.(type) {
	case *armconsumption.ModernUsageDetail:
		p := d.Properties
		if p == nil || p.Date == nil {
			return usage.Record{}, false
		}
		cost := p.CostInUSD
		if cost == nil {
			cost = p.CostInBillingCurrency
		}
		return usage.Record{
			InstanceID: deref(p.InstanceName),
			Cost:       deref(cost),
			Currency:   deref(p.BillingCurrencyCode),
			UsageEnd:   p.Date.UTC(),
		}, true

	case *armconsumption.LegacyUsageDetail:
		p := d.Properties
		if p == nil || p.Date == nil {
			return usage.Record{}, false
		}
		return usage.Record{
			InstanceID: firstNonEmpty(p.ResourceID, p.ResourceName),
			Cost:       deref(p.Cost),
			Currency:   deref(p.BillingCurrency),
			UsageEnd:   p.Date.UTC(),
		}, true

	default:
		return usage.Record{}, false
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}

func firstNonEmpty(values ...*string) string {
	for _, v := range values {
		if v != nil && *v != "" {
			return *v
		}
	}
	return ""
}
