// Package usage defines the usage source abstraction layer.
//
// A Source returns the usage records of one subscription scope for an
// OData filter. Two implementations live in the azure package:
//
//	consumption     Microsoft.Consumption usageDetails (default)
//	costmanagement  Microsoft.CostManagement query, grouped by resource
//
// Records keep only what the report needs: the instance path the service
// name is derived from, the cost, and the usage end timestamp.
package usage
