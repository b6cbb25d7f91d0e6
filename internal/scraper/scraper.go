package scraper

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/unive-tools/schedule-sync/internal/logger"
	"github.com/unive-tools/schedule-sync/internal/schedule"
)

const (
	ScheduleURL = "https://www.unive.it/data/it/1592/orario-lezioni"
	UserAgent   = "unive-schedule/1.0 (github.com/unive-tools/schedule-sync)"
	Timeout     = 30 * time.Second
)

// Page markup the extractor relies on.
const (
	selTabContent = "div.tab-content"
	selPeriodName = "h4.card-title"
	selCardBody   = "div.card-body"
	selTimeCell   = "div.col-lg-4.col-md-7"
	selRoomCell   = "div.col-lg-2.col-md-4"
	selDateTable  = "tbody"
)

// surnameMarker flags a course taught in two groups split by surname.
const surnameMarker = "cognomi"

// "Mon 09:15 - 11:00" -> "09:15 - 11:00"
var timePattern = regexp.MustCompile(`\d{2}:\d{2} - \d{2}:\d{2}`)

// Query selects what to extract
type Query struct {
	// Period is the tab title to extract, e.g. "I Semestre". Empty means every period.
	Period string
	Half   SurnameHalf
}

// Scraper handles fetching and parsing the schedule page
type Scraper struct {
	fetcher   Fetcher
	url       string
	userAgent string
	timeout   time.Duration
}

// Option configures a Scraper
type Option func(*Scraper)

// WithURL overrides the page URL
func WithURL(url string) Option {
	return func(s *Scraper) {
		if url != "" {
			s.url = url
		}
	}
}

// WithFetcher replaces the HTTP fetcher, typically with a fake in tests
func WithFetcher(f Fetcher) Option {
	return func(s *Scraper) {
		if f != nil {
			s.fetcher = f
		}
	}
}

// WithUserAgent sets the User-Agent of the default HTTP fetcher
func WithUserAgent(ua string) Option {
	return func(s *Scraper) {
		if ua != "" {
			s.userAgent = ua
		}
	}
}

// WithTimeout sets the request timeout of the default HTTP fetcher
func WithTimeout(d time.Duration) Option {
	return func(s *Scraper) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a new Scraper instance
func New(opts ...Option) *Scraper {
	s := &Scraper{
		url:       ScheduleURL,
		userAgent: UserAgent,
		timeout:   Timeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.fetcher == nil {
		s.fetcher = NewHTTPFetcher(s.timeout, s.userAgent)
	}
	return s
}

// URL returns the page the scraper reads
func (s *Scraper) URL() string {
	return s.url
}

// FetchSchedule downloads the page once and extracts the schedule for q.
func (s *Scraper) FetchSchedule(ctx context.Context, q Query) (*schedule.Schedule, error) {
	body, err := s.fetcher.FetchDocument(ctx, s.url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return s.parseSchedule(body, q)
}

// parseSchedule extracts the schedule from HTML
func (s *Scraper) parseSchedule(r io.Reader, q Query) (*schedule.Schedule, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	tabs := doc.Find(selTabContent).First()
	if tabs.Length() == 0 {
		return nil, &ScrapeError{Op: "periods", Err: missing(selTabContent)}
	}
	containers := tabs.ChildrenFiltered("div")

	sched := schedule.New()

	if q.Period != "" {
		for i := range containers.Nodes {
			container := containers.Eq(i)
			name, err := periodName(container)
			if err != nil {
				return nil, err
			}
			if name == q.Period {
				if err := parsePeriod(sched, name, container, q.Half); err != nil {
					return nil, err
				}
				sched.Sort()
				return sched, nil
			}
		}
		return nil, &ScrapeError{Op: "period selection", Err: fmt.Errorf("%w: %q", ErrPeriodNotFound, q.Period)}
	}

	for i := range containers.Nodes {
		container := containers.Eq(i)
		name, err := periodName(container)
		if err != nil {
			return nil, err
		}
		if err := parsePeriod(sched, name, container, q.Half); err != nil {
			return nil, err
		}
	}

	sched.Sort()
	return sched, nil
}

func periodName(container *goquery.Selection) (string, error) {
	title := container.Find(selPeriodName).First()
	if title.Length() == 0 {
		return "", &ScrapeError{Op: "period title", Err: missing(selPeriodName)}
	}
	name := normalizeSpace(title.Text())
	if name == "" {
		return "", &ScrapeError{Op: "period title", Err: fmt.Errorf("empty %q", selPeriodName)}
	}
	return name, nil
}

// parsePeriod walks the card body of one period tab. Each h5 heading opens a course
// and the div blocks up to the next heading are its weekly meetings.
func parsePeriod(sched *schedule.Schedule, period string, container *goquery.Selection, half SurnameHalf) error {
	body := container.Find(selCardBody).First()
	if body.Length() == 0 {
		return &ScrapeError{Op: "period " + period, Err: missing(selCardBody)}
	}
	sched.AddPeriod(period)

	// courses keep first-seen order so repeated slots resolve the same way on every run
	order := make([]string, 0)
	blocks := make(map[string][]*goquery.Selection)
	current := ""

	var walkErr error
	body.Children().EachWithBreak(func(_ int, el *goquery.Selection) bool {
		switch goquery.NodeName(el) {
		case "h5":
			heading, err := courseHeading(el)
			if err != nil {
				walkErr = &ScrapeError{Op: "period " + period, Err: err}
				return false
			}
			current = ""
			if courseIncluded(heading, half) {
				current = heading
				if _, ok := blocks[heading]; !ok {
					order = append(order, heading)
					blocks[heading] = nil
				}
			}
		case "div":
			if current != "" {
				blocks[current] = append(blocks[current], el)
			}
		}
		return true
	})
	if walkErr != nil {
		return walkErr
	}

	for _, heading := range order {
		course := courseName(heading)
		for _, block := range blocks[heading] {
			tr, dates, classroom, err := extractBlock(block)
			if err != nil {
				return &ScrapeError{Op: fmt.Sprintf("course %q", course), Err: err}
			}
			entry := schedule.Entry{Course: course, Classroom: classroom}
			for _, date := range dates {
				if err := sched.Set(period, date, tr, entry); err != nil {
					return &ScrapeError{Op: fmt.Sprintf("course %q", course), Err: err}
				}
			}
		}
	}

	logger.Debug("parsed period", logger.Fields{
		"period":  period,
		"courses": len(order),
	})
	return nil
}

// courseHeading returns the heading's course title: the first text of its link,
// or the heading text when there is no link.
func courseHeading(h5 *goquery.Selection) (string, error) {
	text := ""
	link := h5.Find("a").First()
	if link.Length() > 0 {
		first := link.Contents().First()
		if goquery.NodeName(first) == "#text" {
			text = first.Text()
		} else {
			text = link.Text()
		}
	} else {
		text = h5.Text()
	}

	text = normalizeSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty course heading")
	}
	return text, nil
}

// extractBlock reads one meeting block: its time range, its dates and its classroom.
func extractBlock(block *goquery.Selection) (schedule.TimeRange, []string, string, error) {
	timeCell := block.Find(selTimeCell).First()
	if timeCell.Length() == 0 {
		return schedule.TimeRange{}, nil, "", missing(selTimeCell)
	}
	roomCell := block.Find(selRoomCell).First()
	if roomCell.Length() == 0 {
		return schedule.TimeRange{}, nil, "", missing(selRoomCell)
	}

	tr, err := extractTimeRange(timeCell.Text())
	if err != nil {
		return schedule.TimeRange{}, nil, "", err
	}

	table := block.Find(selDateTable).First()
	if table.Length() == 0 {
		return schedule.TimeRange{}, nil, "", missing(selDateTable)
	}

	return tr, extractDates(table), normalizeSpace(roomCell.Text()), nil
}

// extractTimeRange finds the "HH:MM - HH:MM" part of a cell such as "Lunedì 09:15 - 11:00".
func extractTimeRange(text string) (schedule.TimeRange, error) {
	match := timePattern.FindString(text)
	if match == "" {
		return schedule.TimeRange{}, fmt.Errorf("no time range in %q", normalizeSpace(text))
	}
	return schedule.ParseTimeRange(match)
}

// extractDates returns the first cell of every row of a date table
func extractDates(table *goquery.Selection) []string {
	dates := make([]string, 0)
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		td := tr.Find("td").First()
		if td.Length() == 0 {
			return
		}
		if date := strings.TrimSpace(td.Text()); date != "" {
			dates = append(dates, date)
		}
	})
	return dates
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
