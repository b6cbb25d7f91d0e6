// Package schedule provides the records produced by the extractor and consumed by the importer.
//
// A Schedule maps period name -> date -> time range -> Entry. Periods keep the order in which
// they were found; days are ordered by calendar date and slots by start time, so the encoded
// file is stable across runs. The package also owns the schedule file encodings (JSON and YAML),
// which preserve that ordering and validate dates and time ranges when a file is read back.
package schedule
