package scraper

import (
	"errors"
	"fmt"
)

// ErrPeriodNotFound is returned when the requested period has no tab on the page.
var ErrPeriodNotFound = errors.New("period not found")

// ScrapeError reports markup the extractor needed but could not find or parse.
type ScrapeError struct {
	Op  string // what was being extracted
	Err error
}

func (e *ScrapeError) Error() string {
	return fmt.Sprintf("scrape %s: %v", e.Op, e.Err)
}

func (e *ScrapeError) Unwrap() error {
	return e.Err
}

func missing(selector string) error {
	return fmt.Errorf("missing element %q", selector)
}
