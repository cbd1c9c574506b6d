// Package app runs the report use case: date range, filter, usage
// listing, enrichment and the printed table.
package app
