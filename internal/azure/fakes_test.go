package azure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/consumption/armconsumption"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armresources"
	"github.com/zgpcy/azure-cost-report/internal/logger"
)

var errAPI = errors.New("503 Service Unavailable")

// newFakePager serves pages in order, failing at failAt (1-based, 0 never)
func newFakePager[T any](pages []T, failAt int, calls *int) *runtime.Pager[T] {
	next := 0
	return runtime.NewPager(runtime.PagingHandler[T]{
		More: func(T) bool {
			return next < len(pages)
		},
		Fetcher: func(ctx context.Context, _ *T) (T, error) {
			var zero T
			if calls != nil {
				*calls++
			}
			if err := ctx.Err(); err != nil {
				return zero, err
			}
			if failAt > 0 && next+1 == failAt {
				return zero, errAPI
			}
			if next >= len(pages) {
				return zero, errors.New("no more pages")
			}
			page := pages[next]
			next++
			return page, nil
		},
	})
}

type fakeUsageDetails struct {
	pages     []armconsumption.UsageDetailsClientListResponse
	failAt    int
	gotScope  string
	gotFilter string
	fetches   int
}

func (f *fakeUsageDetails) NewListPager(scope string, options *armconsumption.UsageDetailsClientListOptions) *runtime.Pager[armconsumption.UsageDetailsClientListResponse] {
	f.gotScope = scope
	if options != nil && options.Filter != nil {
		f.gotFilter = *options.Filter
	}
	return newFakePager(f.pages, f.failAt, &f.fetches)
}

type fakeResources struct {
	pages   map[string][]armresources.ClientListResponse
	failAt  int
	filters []string
	fetches int
}

func (f *fakeResources) NewListPager(options *armresources.ClientListOptions) *runtime.Pager[armresources.ClientListResponse] {
	var filter string
	if options != nil && options.Filter != nil {
		filter = *options.Filter
	}
	f.filters = append(f.filters, filter)
	return newFakePager(f.pages[filter], f.failAt, &f.fetches)
}

type fakeCostQuerier struct {
	result   armcostmanagement.QueryResult
	err      error
	gotScope string
	gotQuery armcostmanagement.QueryDefinition
}

func (f *fakeCostQuerier) Usage(_ context.Context, scope string, parameters armcostmanagement.QueryDefinition, _ *armcostmanagement.QueryClientUsageOptions) (armcostmanagement.QueryClientUsageResponse, error) {
	f.gotScope = scope
	f.gotQuery = parameters
	if f.err != nil {
		return armcostmanagement.QueryClientUsageResponse{}, f.err
	}
	return armcostmanagement.QueryClientUsageResponse{QueryResult: f.result}, nil
}

func modernDetail(instance string, costUSD float64, date time.Time) *armconsumption.ModernUsageDetail {
	return &armconsumption.ModernUsageDetail{
		Kind: to.Ptr(armconsumption.UsageDetailsKindModern),
		Properties: &armconsumption.ModernUsageDetailProperties{
			InstanceName:        to.Ptr(instance),
			CostInUSD:           to.Ptr(costUSD),
			BillingCurrencyCode: to.Ptr("USD"),
			Date:                to.Ptr(date),
		},
	}
}

func legacyDetail(resourceID string, cost float64, date time.Time) *armconsumption.LegacyUsageDetail {
	return &armconsumption.LegacyUsageDetail{
		Kind: to.Ptr(armconsumption.UsageDetailsKindLegacy),
		Properties: &armconsumption.LegacyUsageDetailProperties{
			ResourceID:      to.Ptr(resourceID),
			Cost:            to.Ptr(cost),
			BillingCurrency: to.Ptr("BRL"),
			Date:            to.Ptr(date),
		},
	}
}

func usagePage(items ...armconsumption.UsageDetailClassification) armconsumption.UsageDetailsClientListResponse {
	return armconsumption.UsageDetailsClientListResponse{
		UsageDetailsListResult: armconsumption.UsageDetailsListResult{Value: items},
	}
}

func resourcePage(types ...string) armresources.ClientListResponse {
	var value []*armresources.GenericResourceExpanded
	for _, t := range types {
		value = append(value, &armresources.GenericResourceExpanded{Type: to.Ptr(t)})
	}
	return armresources.ClientListResponse{
		ResourceListResult: armresources.ResourceListResult{Value: value},
	}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	return logger.Discard()
}
