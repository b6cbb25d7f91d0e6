package schedule

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Entry is one class meeting: the course it belongs to and where it takes place.
type Entry struct {
	Course    string `json:"Course" yaml:"Course"`
	Classroom string `json:"Classroom" yaml:"Classroom"`
}

// Slot is a time range on a given day and the class held in it.
type Slot struct {
	Time  TimeRange
	Entry Entry
}

// Day groups the slots of one calendar date within a period.
type Day struct {
	Key   string    // date as published, dd/mm/yyyy
	Date  time.Time // parsed Key
	Slots []*Slot
}

// PeriodSchedule holds every dated slot of one academic period.
type PeriodSchedule struct {
	Name string
	Days []*Day
}

// Schedule is the full extraction result, one PeriodSchedule per period.
type Schedule struct {
	Periods []*PeriodSchedule
}

// New creates an empty schedule
func New() *Schedule {
	return &Schedule{Periods: make([]*PeriodSchedule, 0)}
}

// Period returns the named period, or nil
func (s *Schedule) Period(name string) *PeriodSchedule {
	for _, p := range s.Periods {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AddPeriod returns the named period, appending an empty one if it does not exist yet.
func (s *Schedule) AddPeriod(name string) *PeriodSchedule {
	if p := s.Period(name); p != nil {
		return p
	}
	p := &PeriodSchedule{Name: name, Days: make([]*Day, 0)}
	s.Periods = append(s.Periods, p)
	return p
}

// Set stores entry at period/dateKey/tr. A slot already present for the same
// time range is overwritten.
func (s *Schedule) Set(period, dateKey string, tr TimeRange, entry Entry) error {
	date, err := ParseDate(dateKey)
	if err != nil {
		return err
	}

	p := s.AddPeriod(period)
	day := p.Day(dateKey)
	if day == nil {
		day = &Day{Key: dateKey, Date: date, Slots: make([]*Slot, 0)}
		p.Days = append(p.Days, day)
	}

	if slot := day.Slot(tr); slot != nil {
		slot.Entry = entry
		return nil
	}
	day.Slots = append(day.Slots, &Slot{Time: tr, Entry: entry})
	return nil
}

// Day returns the day with the given key, or nil
func (p *PeriodSchedule) Day(key string) *Day {
	for _, d := range p.Days {
		if d.Key == key {
			return d
		}
	}
	return nil
}

// Slot returns the slot covering exactly tr, or nil
func (d *Day) Slot(tr TimeRange) *Slot {
	for _, slot := range d.Slots {
		if slot.Time == tr {
			return slot
		}
	}
	return nil
}

// ISODate returns the day's date as yyyy-mm-dd
func (d *Day) ISODate() string {
	return d.Date.Format(isoLayout)
}

// Sort orders days by calendar date and slots by start time.
// Equal keys keep their insertion order.
func (s *Schedule) Sort() {
	for _, p := range s.Periods {
		sort.SliceStable(p.Days, func(i, j int) bool {
			return p.Days[i].Date.Before(p.Days[j].Date)
		})
		for _, d := range p.Days {
			sort.SliceStable(d.Slots, func(i, j int) bool {
				return d.Slots[i].Time.StartMinutes() < d.Slots[j].Time.StartMinutes()
			})
		}
	}
}

// Validate checks the invariants a schedule read from outside must hold.
func (s *Schedule) Validate() error {
	periods := make(map[string]bool, len(s.Periods))
	for _, p := range s.Periods {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("period with empty name")
		}
		if periods[p.Name] {
			return fmt.Errorf("duplicate period %q", p.Name)
		}
		periods[p.Name] = true

		days := make(map[string]bool, len(p.Days))
		for _, d := range p.Days {
			if days[d.Key] {
				return fmt.Errorf("period %q: duplicate date %q", p.Name, d.Key)
			}
			days[d.Key] = true

			if _, err := ParseDate(d.Key); err != nil {
				return fmt.Errorf("period %q: %w", p.Name, err)
			}

			slots := make(map[TimeRange]bool, len(d.Slots))
			for _, slot := range d.Slots {
				if err := slot.Time.Validate(); err != nil {
					return fmt.Errorf("period %q, date %s: %w", p.Name, d.Key, err)
				}
				if slots[slot.Time] {
					return fmt.Errorf("period %q, date %s: duplicate time range %q", p.Name, d.Key, slot.Time)
				}
				slots[slot.Time] = true

				if strings.TrimSpace(slot.Entry.Course) == "" {
					return fmt.Errorf("period %q, date %s, %s: empty course", p.Name, d.Key, slot.Time)
				}
			}
		}
	}
	return nil
}

// Len returns the number of slots across all periods and days
func (s *Schedule) Len() int {
	n := 0
	for _, p := range s.Periods {
		for _, d := range p.Days {
			n += len(d.Slots)
		}
	}
	return n
}

// Courses returns the distinct course names in first-seen order
func (s *Schedule) Courses() []string {
	seen := make(map[string]bool)
	courses := make([]string, 0)
	for _, p := range s.Periods {
		for _, d := range p.Days {
			for _, slot := range d.Slots {
				if !seen[slot.Entry.Course] {
					seen[slot.Entry.Course] = true
					courses = append(courses, slot.Entry.Course)
				}
			}
		}
	}
	return courses
}
