package importer

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/unive-tools/schedule-sync/internal/logger"
	"github.com/unive-tools/schedule-sync/internal/notion"
	"github.com/unive-tools/schedule-sync/internal/schedule"
)

// RecordStore is what the importer needs from Notion. *notion.Client and
// *notion.DryRunStore implement it.
type RecordStore interface {
	CreateRecord(ctx context.Context, collectionID string, props notion.Properties) (string, error)
	QueryRecords(ctx context.Context, collectionID string) ([]notion.Record, error)
}

// Options configures an Importer. Empty property names fall back to the defaults.
type Options struct {
	ClassesDatabaseID  string
	SessionsDatabaseID string

	ClassTitleProperty    string
	ClassFullNameProperty string

	SessionTitleProperty     string
	SessionDateProperty      string
	SessionClassProperty     string
	SessionClassroomProperty string

	// TimeOffset is appended to every session timestamp, e.g. "Z" or "+01:00".
	TimeOffset string

	// CacheSize bounds the class name cache; 0 queries Notion for every session.
	CacheSize int

	// Output receives the progress lines, stdout when nil.
	Output io.Writer
}

func (o *Options) setDefaults() {
	defaults := []struct {
		field *string
		value string
	}{
		{&o.ClassTitleProperty, "Name"},
		{&o.ClassFullNameProperty, "Full Name"},
		{&o.SessionTitleProperty, "Name"},
		{&o.SessionDateProperty, "Date"},
		{&o.SessionClassProperty, "Class"},
		{&o.SessionClassroomProperty, "Classroom"},
		{&o.TimeOffset, "Z"},
	}
	for _, d := range defaults {
		if *d.field == "" {
			*d.field = d.value
		}
	}
	if o.Output == nil {
		o.Output = os.Stdout
	}
}

// Result counts what an import did
type Result struct {
	ClassesFound   int
	ClassesCreated int
	Sessions       int
}

// Importer writes schedules into Notion through a RecordStore
type Importer struct {
	store  RecordStore
	opts   Options
	cache  *lru.Cache[string, string]
	result Result
}

// New creates an importer. It fails when a database id is missing.
func New(store RecordStore, opts Options) (*Importer, error) {
	if store == nil {
		return nil, fmt.Errorf("record store is required")
	}
	if opts.ClassesDatabaseID == "" {
		return nil, fmt.Errorf("classes database id is required")
	}
	if opts.SessionsDatabaseID == "" {
		return nil, fmt.Errorf("sessions database id is required")
	}
	opts.setDefaults()

	imp := &Importer{store: store, opts: opts}
	if opts.CacheSize > 0 {
		cache, err := lru.New[string, string](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("creating class cache: %w", err)
		}
		imp.cache = cache
	}
	return imp, nil
}

func cacheKey(name string) string {
	return strings.ToLower(name)
}

// ResolveOrCreateClass returns the id of the class whose full name equals name,
// ignoring case, creating the class when none exists. A failed query is returned
// without attempting the create.
func (imp *Importer) ResolveOrCreateClass(ctx context.Context, name string) (string, error) {
	if imp.cache != nil {
		if id, ok := imp.cache.Get(cacheKey(name)); ok {
			logger.IncrCounter("importer.cache.hits")
			return id, nil
		}
	}

	records, err := imp.store.QueryRecords(ctx, imp.opts.ClassesDatabaseID)
	if err != nil {
		return "", fmt.Errorf("querying classes for %q: %w", name, err)
	}

	for _, rec := range records {
		if strings.EqualFold(rec.Text(imp.opts.ClassFullNameProperty), name) {
			imp.remember(name, rec.ID)
			imp.result.ClassesFound++
			fmt.Fprintf(imp.opts.Output, "Class %s found in Notion\n", name)
			return rec.ID, nil
		}
	}

	id, err := imp.store.CreateRecord(ctx, imp.opts.ClassesDatabaseID, notion.Properties{
		imp.opts.ClassTitleProperty:    notion.Title(name),
		imp.opts.ClassFullNameProperty: notion.RichText(name),
	})
	if err != nil {
		return "", fmt.Errorf("creating class %q: %w", name, err)
	}

	imp.remember(name, id)
	imp.result.ClassesCreated++
	fmt.Fprintf(imp.opts.Output, "Class %s successfully added to Notion!\n", name)
	return id, nil
}

func (imp *Importer) remember(name, id string) {
	if imp.cache != nil {
		imp.cache.Add(cacheKey(name), id)
	}
}

// timestamp joins an ISO date and HH:MM into the form the sessions date property takes.
func (imp *Importer) timestamp(date, clock string) string {
	return date + "T" + clock + ":00" + imp.opts.TimeOffset
}

// InsertSession creates one session page linked to classID. Dates are yyyy-mm-dd
// and times HH:MM.
func (imp *Importer) InsertSession(ctx context.Context, name, classID, startDate, startTime, endDate, endTime, classroom string) error {
	props := notion.Properties{
		imp.opts.SessionTitleProperty:     notion.Title(name),
		imp.opts.SessionDateProperty:      notion.DateRange(imp.timestamp(startDate, startTime), imp.timestamp(endDate, endTime)),
		imp.opts.SessionClassProperty:     notion.Relation(classID),
		imp.opts.SessionClassroomProperty: notion.RichText(classroom),
	}

	if _, err := imp.store.CreateRecord(ctx, imp.opts.SessionsDatabaseID, props); err != nil {
		return fmt.Errorf("adding session %s on %s %s-%s: %w", name, startDate, startTime, endTime, err)
	}

	imp.result.Sessions++
	fmt.Fprintf(imp.opts.Output, "Session %s on %s %s-%s successfully added to Notion!\n", name, startDate, startTime, endTime)
	return nil
}

// Import walks periods, days and slots in order, resolving each slot's class and
// inserting its session. The first error stops the import and is returned together
// with the counts reached so far.
func (imp *Importer) Import(ctx context.Context, s *schedule.Schedule) (*Result, error) {
	start := time.Now()
	defer func() {
		logger.RecordTiming("import", time.Since(start))
	}()

	for _, p := range s.Periods {
		for _, d := range p.Days {
			date := d.ISODate()
			for _, slot := range d.Slots {
				if err := ctx.Err(); err != nil {
					return imp.snapshot(), err
				}

				classID, err := imp.ResolveOrCreateClass(ctx, slot.Entry.Course)
				if err != nil {
					return imp.snapshot(), err
				}

				err = imp.InsertSession(ctx, slot.Entry.Course, classID,
					date, slot.Time.Start, date, slot.Time.End, slot.Entry.Classroom)
				if err != nil {
					return imp.snapshot(), err
				}
			}
		}
		logger.Info("period imported", logger.Fields{
			"period":   p.Name,
			"sessions": imp.result.Sessions,
		})
	}

	return imp.snapshot(), nil
}

func (imp *Importer) snapshot() *Result {
	r := imp.result
	return &r
}
