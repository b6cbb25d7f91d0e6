// Package scraper fetches the university's class-schedule page and extracts a schedule from it.
//
// The page holds one tab per academic period. Each period lists course headings followed by
// meeting blocks; a block names a weekly time slot, a classroom and a table of dates. The
// scraper turns every (course, block, date) triple into a schedule slot, skipping courses split
// by surname when the caller belongs to the other half of the alphabet.
package scraper
