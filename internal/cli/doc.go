// Package cli implements the azure-cost-report command.
//
// Configuration is layered: flags override environment variables (a
// .env file is loaded first), which override the optional config file,
// which overrides defaults. Dates come from --start/--end, from
// --last-days relative to today, or interactively from stdin.
package cli
