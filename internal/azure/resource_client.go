package azure

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/zgpcy/azure-cost-report/internal/config"
	"github.com/zgpcy/azure-cost-report/internal/enrich"
	"github.com/zgpcy/azure-cost-report/internal/filter"
	"github.com/zgpcy/azure-cost-report/internal/logger"
)

// resourceLister is the subset of *armresources.Client in use
type resourceLister interface {
	NewListPager(options *armresources.ClientListOptions) *runtime.Pager[armresources.ClientListResponse]
}

// ResourceClient resolves resource types through the Resource Management API
// and implements enrich.TypeFinder
type ResourceClient struct {
	client       resourceLister
	resourceType string
	timeout      time.Duration
	logger       *logger.Logger
}

// Verify that ResourceClient implements enrich.TypeFinder
var _ enrich.TypeFinder = (*ResourceClient)(nil)

// NewResourceClient creates a resource lookup client for one subscription
func NewResourceClient(cred azcore.TokenCredential, cfg *config.Config, log *logger.Logger) (*ResourceClient, error) {
	client, err := armresources.NewClient(cfg.SubscriptionID, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource management client: %w", err)
	}

	return &ResourceClient{
		client:       client,
		resourceType: cfg.ResourceType,
		timeout:      cfg.Timeout(),
		logger:       log,
	}, nil
}

// FindType returns the type of the first resource of the configured kind
// named name. It returns enrich.ErrResourceNotFound when nothing matches.
func (c *ResourceClient) FindType(ctx context.Context, name string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	f := filter.ResourceByName(c.resourceType, name)
	c.logger.Debug("Looking up resource type", "name", name, "filter", f)

	pager := c.client.NewListPager(&armresources.ClientListOptions{
		Filter: to.Ptr(f),
	})

	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return "", fmt.Errorf("resource lookup for %q failed: %w", name, err)
		}
		for _, res := range page.Value {
			if res != nil && res.Type != nil && *res.Type != "" {
				return *res.Type, nil
			}
		}
	}

	return "", fmt.Errorf("%w: %s %q", enrich.ErrResourceNotFound, c.resourceType, name)
}
