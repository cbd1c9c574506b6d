// Package daterange collects and validates the reporting period.
//
// A DateRange is always a pair of UTC calendar dates with Start strictly
// before End. Ranges come from three places:
//   - Collector: an interactive prompt loop that re-asks on bad input
//   - Parse: the same validation for --start/--end flags
//   - Relative: the last N days, computed from a clock
//
// The Collector is a small state machine (awaiting start, awaiting end,
// validating, done) that returns ErrAborted when input ends or the context
// is cancelled.
package daterange
