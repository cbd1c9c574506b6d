// Package azure adapts the Azure SDK clients used by the cost report.
//
// This package handles:
//   - Authentication using Azure Default Credentials
//   - Usage listing through the Consumption API (ConsumptionClient), which
//     tolerates both the modern and the legacy usage detail shapes
//   - Daily cost per resource through the Cost Management query API
//     (CostManagementClient), an alternate usage.Source
//   - Resource type lookups through the Resource Management API
//     (ResourceClient)
//
// Each SDK client is held behind a one-method interface with the SDK's own
// signature, so tests substitute pagers built with azcore/runtime.NewPager.
//
// Example usage:
//
//	cred, err := azure.NewCredential()
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	source, err := azure.NewConsumptionClient(cred, cfg, log)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	records, err := source.ListUsage(ctx, usage.Scope(cfg.SubscriptionID), filter.UsageEnd(r))
package azure
