// Package enrich derives the service name and resource type shown for
// each usage record.
//
// The service name is the last segment of the record's instance ID. The
// resource type comes from the Resource Management API, looked up by
// that name and memoized per run, so each distinct name costs at most
// one API call. Failed lookups fall back to "Desconhecido" and the run
// continues.
package enrich
