// Package config provides configuration management for the cost report.
//
// Configuration sources (in order of precedence):
//  1. Command-line flags (applied by the cli package)
//  2. Environment variables, including those loaded from a .env file
//  3. Configuration file (YAML, TOML or JSON, chosen by extension)
//  4. Default values (lowest priority)
//
// Supported environment variables:
//   - AZURE_SUBSCRIPTION_ID / AZURE_COST_SUBSCRIPTION_ID: Subscription to report on
//   - AZURE_COST_SOURCE: consumption (default) or costmanagement
//   - AZURE_COST_RESOURCE_TYPE: Resource kind used for type lookups
//   - AZURE_COST_TIMEZONE: Time zone used to print usage dates
//   - AZURE_COST_CURRENCY: Currency label when the API omits one
//   - AZURE_COST_LOG_LEVEL: Log level (debug, info, warn, error)
//   - AZURE_COST_LOG_FORMAT: Log format (text, json)
//   - AZURE_COST_API_TIMEOUT: Per-call Azure API timeout in seconds (1-300)
//   - AZURE_COST_END_DATE_OFFSET: Days between today and the end of --last-days ranges
//   - AZURE_COST_DAYS_TO_QUERY: Default length of --last-days ranges
//
// Example configuration file (config.yaml):
//
//	subscription_id: "00000000-0000-0000-0000-000000000000"
//	source: consumption
//	resource_type: Microsoft.Compute/virtualMachines
//	timezone: America/Sao_Paulo
//	log_level: info
//	api_timeout: 30
//
//	date_range:
//	  end_date_offset: 0
//	  days_to_query: 30
package config
