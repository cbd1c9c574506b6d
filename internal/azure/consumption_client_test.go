package azure

import (
	"context"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/consumption/armconsumption"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zgpcy/azure-cost-report/internal/usage"
)

const testFilter = "properties/usageEnd ge '2024-01-01T00:00:00Z' and properties/usageEnd le '2024-01-31T00:00:00Z'"

func newTestConsumptionClient(t *testing.T, fake *fakeUsageDetails) *ConsumptionClient {
	return &ConsumptionClient{
		client:  fake,
		timeout: time.Second,
		logger:  testLogger(t),
	}
}

func TestConsumptionClient_ListUsage_AllPages(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	fake := &fakeUsageDetails{
		pages: []armconsumption.UsageDetailsClientListResponse{
			usagePage(
				modernDetail("rg1/vm-prod-01", 123.456, day),
				legacyDetail("/subscriptions/s/resourceGroups/rg2/providers/Microsoft.Compute/virtualMachines/vm-2", 7.5, day.AddDate(0, 0, 1)),
			),
			usagePage(modernDetail("storage-1", 0.01, day.AddDate(0, 0, 2))),
		},
	}
	client := newTestConsumptionClient(t, fake)

	records, err := client.ListUsage(context.Background(), usage.Scope("sub-1"), testFilter)
	require.NoError(t, err)

	assert.Equal(t, "/subscriptions/sub-1", fake.gotScope)
	assert.Equal(t, testFilter, fake.gotFilter)
	assert.Equal(t, 2, fake.fetches)

	require.Len(t, records, 3)
	assert.Equal(t, usage.Record{InstanceID: "rg1/vm-prod-01", Cost: 123.456, Currency: "USD", UsageEnd: day}, records[0])
	assert.Equal(t, "/subscriptions/s/resourceGroups/rg2/providers/Microsoft.Compute/virtualMachines/vm-2", records[1].InstanceID)
	assert.Equal(t, 7.5, records[1].Cost)
	assert.Equal(t, "BRL", records[1].Currency)
	assert.Equal(t, "storage-1", records[2].InstanceID)
}

func TestConsumptionClient_ListUsage_PageErrorAbandonsListing(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	fake := &fakeUsageDetails{
		pages: []armconsumption.UsageDetailsClientListResponse{
			usagePage(modernDetail("vm-1", 1, day)),
			usagePage(modernDetail("vm-2", 2, day)),
		},
		failAt: 2,
	}
	client := newTestConsumptionClient(t, fake)

	records, err := client.ListUsage(context.Background(), usage.Scope("sub-1"), testFilter)
	require.Error(t, err)
	assert.ErrorIs(t, err, errAPI)
	assert.Contains(t, err.Error(), "page 2")
	assert.Nil(t, records, "no partial results on failure")
}

func TestConsumptionClient_ListUsage_FirstCallFails(t *testing.T) {
	fake := &fakeUsageDetails{
		pages:  []armconsumption.UsageDetailsClientListResponse{usagePage()},
		failAt: 1,
	}
	client := newTestConsumptionClient(t, fake)

	_, err := client.ListUsage(context.Background(), usage.Scope("sub-1"), testFilter)
	assert.ErrorIs(t, err, errAPI)
}

func TestConsumptionClient_ListUsage_Empty(t *testing.T) {
	fake := &fakeUsageDetails{
		pages: []armconsumption.UsageDetailsClientListResponse{usagePage()},
	}
	client := newTestConsumptionClient(t, fake)

	records, err := client.ListUsage(context.Background(), usage.Scope("sub-1"), testFilter)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestConsumptionClient_ListUsage_SkipsUndatedDetails(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	undated := modernDetail("vm-undated", 9, day)
	undated.Properties.Date = nil

	fake := &fakeUsageDetails{
		pages: []armconsumption.UsageDetailsClientListResponse{
			usagePage(undated, modernDetail("vm-dated", 1, day)),
		},
	}
	client := newTestConsumptionClient(t, fake)

	records, err := client.ListUsage(context.Background(), usage.Scope("sub-1"), testFilter)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "vm-dated", records[0].InstanceID)
	assert.False(t, records[0].UsageEnd.IsZero())
}

func TestConsumptionClient_Name(t *testing.T) {
	client := newTestConsumptionClient(t, &fakeUsageDetails{})
	assert.Equal(t, usage.SourceConsumption, client.Name())
}

func TestConvertUsageDetail(t *testing.T) {
	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	local := time.Date(2024, 1, 15, 9, 0, 0, 0, time.FixedZone("UTC+9", 9*60*60))

	billingOnly := modernDetail("vm-b", 0, day)
	billingOnly.Properties.CostInUSD = nil
	billingOnly.Properties.CostInBillingCurrency = func() *float64 { v := 42.0; return &v }()

	modernUndated := modernDetail("vm-u", 1, day)
	modernUndated.Properties.Date = nil
	legacyUndated := legacyDetail("/x/undated", 1, day)
	legacyUndated.Properties.Date = nil

	legacyByName := legacyDetail("", 3, day)
	legacyByName.Properties.ResourceName = func() *string { v := "vm-named"; return &v }()

	tests := []struct {
		name   string
		item   armconsumption.UsageDetailClassification
		want   usage.Record
		wantOK bool
	}{
		{
			name:   "modern",
			item:   modernDetail("a/b/c", 1.25, day),
			want:   usage.Record{InstanceID: "a/b/c", Cost: 1.25, Currency: "USD", UsageEnd: day},
			wantOK: true,
		},
		{
			name:   "modern normalizes to UTC",
			item:   modernDetail("c", 1, local),
			want:   usage.Record{InstanceID: "c", Cost: 1, Currency: "USD", UsageEnd: day},
			wantOK: true,
		},
		{
			name:   "modern falls back to billing currency cost",
			item:   billingOnly,
			want:   usage.Record{InstanceID: "vm-b", Cost: 42, Currency: "USD", UsageEnd: day},
			wantOK: true,
		},
		{
			name:   "legacy",
			item:   legacyDetail("/x/y", 2, day),
			want:   usage.Record{InstanceID: "/x/y", Cost: 2, Currency: "BRL", UsageEnd: day},
			wantOK: true,
		},
		{
			name:   "legacy falls back to resource name",
			item:   legacyByName,
			want:   usage.Record{InstanceID: "vm-named", Cost: 3, Currency: "BRL", UsageEnd: day},
			wantOK: true,
		},
		{
			name: "modern without properties",
			item: &armconsumption.ModernUsageDetail{},
		},
		{
			name: "legacy without properties",
			item: &armconsumption.LegacyUsageDetail{},
		},
		{
			name: "modern without date",
			item: modernUndated,
		},
		{
			name: "legacy without date",
			item: legacyUndated,
		},
		{
			name: "base kind",
			item: &armconsumption.UsageDetail{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := convertUsageDetail(tt.item)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want.InstanceID, got.InstanceID)
				assert.Equal(t, tt.want.Cost, got.Cost)
				assert.Equal(t, tt.want.Currency, got.Currency)
				assert.True(t, tt.want.UsageEnd.Equal(got.UsageEnd), "UsageEnd = %v", got.UsageEnd)
				assert.Equal(t, time.UTC, got.UsageEnd.Location())
			}
		})
	}
}
