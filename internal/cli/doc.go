// Package cli implements the two commands of the schedule tools.
//
// schedule-extract asks for a period, a surname initial and an output directory, then
// scrapes the published timetable into a schedule file. schedule-import asks for a
// schedule file and replicates it into the Notion classes and sessions databases.
// Both commands report a handled failure as text and still exit 0.
package cli
