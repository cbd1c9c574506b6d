package azure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/costmanagement/armcostmanagement"
	"github.com/zgpcy/azure-cost-report/internal/config"
	"github.com/zgpcy/azure-cost-report/internal/daterange"
	"github.com/zgpcy/azure-cost-report/internal/filter"
	"github.com/zgpcy/azure-cost-report/internal/logger"
	"github.com/zgpcy/azure-cost-report/internal/usage"
)

// Column names read from a cost query result
const (
	columnUsageDate  = "UsageDate"
	columnResourceID = "ResourceId"
	columnCurrency   = "Currency"
)

// costColumns are the names the aggregated cost column may come back as
var costColumns = []string{"Cost", "PreTaxCost", "totalCost"}

// costQuerier is the subset of *armcostmanagement.QueryClient in use
type costQuerier interface {
	Usage(ctx context.Context, scope string, parameters armcostmanagement.QueryDefinition, options *armcostmanagement.QueryClientUsageOptions) (armcostmanagement.QueryClientUsageResponse, error)
}

// CostManagementClient reads daily actual cost per resource through the
// Cost Management query API and implements usage.Source
type CostManagementClient struct {
	client   costQuerier
	currency string
	timeout  time.Duration
	logger   *logger.Logger
}

// Verify that CostManagementClient implements usage.Source
var _ usage.Source = (*CostManagementClient)(nil)

// NewCostManagementClient creates a new Azure Cost Management client
func NewCostManagementClient(cred azcore.TokenCredential, cfg *config.Config, log *logger.Logger) (*CostManagementClient, error) {
	client, err := armcostmanagement.NewQueryClient(cred, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cost management client: %w", err)
	}

	return &CostManagementClient{
		client:   client,
		currency: cfg.Currency,
		timeout:  cfg.Timeout(),
		logger:   log,
	}, nil
}

// Name returns the source type
func (c *CostManagementClient) Name() usage.SourceType {
	return usage.SourceCostManagement
}

// ListUsage queries daily cost grouped by resource. The query API takes a
// time period instead of an OData filter, so the range is recovered from
// the usageEnd filter.
func (c *CostManagementClient) ListUsage(ctx context.Context, scope, odata string) ([]usage.Record, error) {
	r, err := filter.ParseUsageEnd(odata)
	if err != nil {
		return nil, fmt.Errorf("cost management source needs a usageEnd range: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	c.logger.Debug("Querying Azure Cost Management API",
		"scope", scope,
		"start_date", r.Start.Format(daterange.Layout),
		"end_date", r.End.Format(daterange.Layout))

	resp, err := c.client.Usage(ctx, scope, buildQuery(r), nil)
	if err != nil {
		return nil, fmt.Errorf("cost query failed for date range %s to %s: %w",
			r.Start.Format(daterange.Layout), r.End.Format(daterange.Layout), err)
	}

	return c.parseResponse(resp.QueryResult), nil
}

// buildQuery builds an actual cost query summed per day and resource
func buildQuery(r daterange.DateRange) armcostmanagement.QueryDefinition {
	start, end := r.Start, r.End

	return armcostmanagement.QueryDefinition{
		Type:      to.Ptr(armcostmanagement.ExportTypeActualCost),
		Timeframe: to.Ptr(armcostmanagement.TimeframeTypeCustom),
		TimePeriod: &armcostmanagement.QueryTimePeriod{
			From: &start,
			To:   &end,
		},
		Dataset: &armcostmanagement.QueryDataset{
			Granularity: to.Ptr(armcostmanagement.GranularityTypeDaily),
			Aggregation: map[string]*armcostmanagement.QueryAggregation{
				"totalCost": {
					Name:     to.Ptr("Cost"),
					Function: to.Ptr(armcostmanagement.FunctionTypeSum),
				},
			},
			Grouping: []*armcostmanagement.QueryGrouping{
				{
					Type: to.Ptr(armcostmanagement.QueryColumnTypeDimension),
					Name: to.Ptr(columnResourceID),
				},
			},
		},
	}
}

// buildColumnMap creates a map of column names to their indices
func buildColumnMap(columns []*armcostmanagement.QueryColumn) map[string]int {
	columnMap := make(map[string]int)
	for i, col := range columns {
		if col != nil && col.Name != nil {
			columnMap[*col.Name] = i
		}
	}
	return columnMap
}

// getStringFromRow extracts a string value from a row by column name
func getStringFromRow(row []interface{}, columnMap map[string]int, columnName string) string {
	if idx, ok := columnMap[columnName]; ok && len(row) > idx && row[idx] != nil {
		value := fmt.Sprintf("%v", row[idx])
		if value != "" && value != "<nil>" {
			return value
		}
	}
	return ""
}

// parseCost extracts and converts cost value to float64
func parseCost(value interface{}) float64 {
	switch v := value.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0.0
	}
}

// formatDateValue converts various date types to string
func formatDateValue(value interface{}) string {
	switch v := value.(type) {
	case int, int64:
		return fmt.Sprintf("%d", v)
	case float64:
		return fmt.Sprintf("%.0f", v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

// extractDigits extracts only digit characters from a string
func extractDigits(s string) string {
	var digits strings.Builder
	for _, ch := range s {
		if ch >= '0' && ch <= '9' {
			digits.WriteRune(ch)
		}
	}
	return digits.String()
}

// parseDate turns 20240115, "20240115" or "2024-01-15T00:00:00" into a UTC date
func parseDate(value interface{}) (time.Time, error) {
	digits := extractDigits(formatDateValue(value))
	if len(digits) < 8 {
		return time.Time{}, fmt.Errorf("unrecognized usage date %v", value)
	}
	return time.Parse("20060102", digits[:8])
}

// findCostColumn returns the index of the first known cost column
func findCostColumn(columnMap map[string]int) (int, bool) {
	for _, name := range costColumns {
		if idx, ok := columnMap[name]; ok {
			return idx, true
		}
	}
	return 0, false
}

// parseRow parses a single row from the Azure API response
func (c *CostManagementClient) parseRow(row []interface{}, columnMap map[string]int, costIdx, dateIdx int) (usage.Record, error) {
	date, err := parseDate(row[dateIdx])
	if err != nil {
		return usage.Record{}, err
	}

	currency := getStringFromRow(row, columnMap, columnCurrency)
	if currency == "" {
		currency = c.currency
	}

	return usage.Record{
		InstanceID: getStringFromRow(row, columnMap, columnResourceID),
		Cost:       parseCost(row[costIdx]),
		Currency:   currency,
		UsageEnd:   date,
	}, nil
}

// parseResponse converts Azure API response to usage records
func (c *CostManagementClient) parseResponse(result armcostmanagement.QueryResult) []usage.Record {
	var records []usage.Record

	if result.Properties == nil || result.Properties.Rows == nil {
		return records
	}

	// Build column index map
	columnMap := buildColumnMap(result.Properties.Columns)

	// Verify required columns exist
	costIdx, hasCost := findCostColumn(columnMap)
	dateIdx, hasDate := columnMap[columnUsageDate]

	if !hasCost || !hasDate {
		c.logger.Warn("Cost query result is missing required columns",
			"has_cost", hasCost,
			"has_usage_date", hasDate)
		return records
	}

	// Parse each row
	for _, row := range result.Properties.Rows {
		if len(row) <= costIdx || len(row) <= dateIdx {
			continue
		}

		record, err := c.parseRow(row, columnMap, costIdx, dateIdx)
		if err != nil {
			c.logger.Debug("Skipping cost row", "error", err)
			continue
		}
		records = append(records, record)
	}

	return records
}
